package ai

import (
	"context"
	"fmt"
	"iter"

	"google.golang.org/genai"

	"github.com/smartblog/smartblog/pkg/config"
)

// geminiClient adapts the Gemini SDK to the client seam.
type geminiClient struct {
	client *genai.Client
	model  string
}

func newGeminiClient(ctx context.Context, cfg config.AIConfig) (*geminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	return &geminiClient{client: client, model: cfg.Model}, nil
}

// generate starts a streaming completion. The first upstream response is
// pulled eagerly so rate limits and other attempt-level failures surface
// here, before any chunk reaches the caller. Chunks without text are
// skipped. The returned stream is single-use; breaking out of it stops the
// upstream iterator.
func (g *geminiClient) generate(ctx context.Context, req Request) (Stream, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	if len(req.Image) > 0 {
		parts = append(parts, genai.NewPartFromBytes(req.Image, req.ImageMIME))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	next, stop := iter.Pull2(g.client.Models.GenerateContentStream(ctx, g.model, contents, nil))

	first, err, ok := next()
	if err != nil {
		stop()
		return nil, fmt.Errorf("generating content: %w", err)
	}

	return func(yield func(string, error) bool) {
		defer stop()

		resp, respErr, valid := first, error(nil), ok
		for valid {
			if respErr != nil {
				yield("", respErr)
				return
			}
			if text := resp.Text(); text != "" {
				if !yield(text, nil) {
					return
				}
			}
			resp, respErr, valid = next()
		}
	}, nil
}
