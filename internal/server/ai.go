package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/smartblog/smartblog/pkg/ai"
)

// maxImageMemory bounds the in-memory portion of multipart parsing.
const maxImageMemory = 32 << 20

// handleGenerate proxies a prompt (plus optional image) to the generation
// service and streams text chunks back as they arrive. The response is
// text/plain and flushed per chunk; once streaming begins, upstream errors
// can only terminate the stream.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageMemory); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid multipart body", err.Error())
		return
	}

	prompt := r.FormValue("prompt")
	if prompt == "" {
		writeError(w, http.StatusUnprocessableEntity, "validation failed", "field required: prompt")
		return
	}

	req := ai.Request{Prompt: prompt}

	if file, header, err := r.FormFile("image"); err == nil {
		data, readErr := io.ReadAll(file)
		_ = file.Close()
		if readErr != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid image attachment", readErr.Error())
			return
		}
		req.Image = data
		req.ImageMIME = header.Header.Get("Content-Type")
		if req.ImageMIME == "" {
			req.ImageMIME = http.DetectContentType(data)
		}
	}

	stream, err := s.ai.Generate(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ai.ErrNoCredential):
			writeError(w, http.StatusInternalServerError, "configuration error", "GEMINI_API_KEY not configured.")
		case errors.Is(err, ai.ErrRateLimited):
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded", ai.RetryMessage)
		default:
			writeError(w, http.StatusInternalServerError, "upstream error", err.Error())
		}
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	flusher, _ := w.(http.Flusher)

	for chunk, streamErr := range stream {
		if streamErr != nil {
			// Headers are gone; all we can do is cut the stream short.
			slog.Error("generation stream failed", "error", streamErr)
			return
		}
		if _, werr := io.WriteString(w, chunk); werr != nil {
			// Client went away; stop pulling from upstream.
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}
