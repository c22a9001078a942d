// Package ai proxies text/image generation requests to the Gemini API,
// streaming result chunks back as they arrive. Rate-limited attempts are
// retried exactly once after a fixed delay.
package ai

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/smartblog/smartblog/pkg/config"
)

var (
	// ErrNoCredential is returned when no API key is configured. Checked on
	// every request, before any upstream work.
	ErrNoCredential = errors.New("GEMINI_API_KEY not configured")

	// ErrRateLimited is returned when the upstream rate limit persists after
	// the one allowed retry.
	ErrRateLimited = errors.New("ai usage limit reached")
)

// RetryMessage is the guidance surfaced to callers alongside ErrRateLimited.
const RetryMessage = "AI usage limit reached. Please wait about 30 seconds and try again."

// Request carries a prompt and an optional inline image.
type Request struct {
	Prompt    string
	Image     []byte
	ImageMIME string
}

// Stream is a lazy, single-use sequence of text chunks. A non-nil error
// terminates the sequence; breaking out of the range releases the upstream
// stream.
type Stream = iter.Seq2[string, error]

// client is the seam between retry policy and the upstream SDK. generate
// must surface attempt-level failures as its error return, before the stream
// emits anything.
type client interface {
	generate(ctx context.Context, req Request) (Stream, error)
}

// Service is the generation proxy. The zero credential state is valid: every
// Generate call fails with ErrNoCredential until a key is configured.
type Service struct {
	client     client
	retryDelay time.Duration
}

// New creates the generation service. A missing API key is not a startup
// error; it disables generation per request instead.
func New(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	s := &Service{retryDelay: cfg.RetryDelay}

	if cfg.APIKey == "" {
		return s, nil
	}

	gc, err := newGeminiClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	s.client = gc

	return s, nil
}

// Generate invokes the upstream model in streaming mode and returns the
// chunk sequence. A rate-limited first attempt is retried once after the
// configured delay; the wait is context-aware, so a departed caller does not
// hold the backoff.
func (s *Service) Generate(ctx context.Context, req Request) (Stream, error) {
	if s.client == nil {
		return nil, ErrNoCredential
	}

	var stream Stream
	attempt := 0
	op := func() error {
		attempt++
		slog.Debug("calling model", "attempt", attempt)

		st, err := s.client.generate(ctx, req)
		if err != nil {
			if isRateLimit(err) {
				slog.Warn("rate limited, waiting before retry", "delay", s.retryDelay, "attempt", attempt)
				return err
			}
			return backoff.Permanent(err)
		}
		stream = st
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.retryDelay), 1), ctx)

	if err := backoff.Retry(op, policy); err != nil {
		if isRateLimit(err) {
			return nil, fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return nil, fmt.Errorf("ai model error: %w", err)
	}

	return stream, nil
}

// isRateLimit reports whether the upstream error is rate-limit shaped: a 429
// status in the message, or a quota-exhaustion marker, case-insensitively.
func isRateLimit(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if strings.Contains(msg, "429") {
		return true
	}
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "resource_exhausted") ||
		strings.Contains(lower, "resourceexhausted") ||
		strings.Contains(lower, "quota")
}
