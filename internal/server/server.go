// Package server provides the HTTP surface: post CRUD routes, the AI
// generation route, and the middleware stack around them.
package server

import (
	"context"
	"net/http"

	"github.com/smartblog/smartblog/pkg/ai"
	"github.com/smartblog/smartblog/pkg/health"
	"github.com/smartblog/smartblog/pkg/post"
	"github.com/smartblog/smartblog/pkg/store"
)

// Version is set at build time.
var Version = "dev"

// Generator produces a lazy chunk stream for a prompt. Satisfied by
// *ai.Service.
type Generator interface {
	Generate(ctx context.Context, req ai.Request) (ai.Stream, error)
}

// Server routes requests to the post repository and the AI proxy.
type Server struct {
	mux    *http.ServeMux
	posts  *post.Service
	ai     Generator
	mode   store.Mode
	health *health.Checker
}

// New creates a server over the given services. mode names the storage
// backend bound at startup and is reported on the root endpoint.
func New(posts *post.Service, gen Generator, mode store.Mode, checker *health.Checker) *Server {
	if checker == nil {
		checker = health.NewChecker()
		checker.SetReady(string(mode))
	}
	s := &Server{
		mux:    http.NewServeMux(),
		posts:  posts,
		ai:     gen,
		mode:   mode,
		health: checker,
	}
	s.registerRoutes()
	return s
}

// Handler returns the full handler chain: CORS, request logging, routes.
func (s *Server) Handler() http.Handler {
	return withCORS(withRequestLog(s.mux))
}

// registerRoutes registers all API routes. The original API mounted the post
// router with a trailing slash, so both spellings are routed.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.HandleFunc("GET /healthz", s.health.LivenessHandler())
	s.mux.HandleFunc("GET /readyz", s.health.ReadinessHandler())

	s.mux.HandleFunc("POST /api/posts", s.handleCreatePost)
	s.mux.HandleFunc("POST /api/posts/{$}", s.handleCreatePost)
	s.mux.HandleFunc("GET /api/posts", s.handleListPosts)
	s.mux.HandleFunc("GET /api/posts/{$}", s.handleListPosts)
	s.mux.HandleFunc("GET /api/posts/{id}", s.handleGetPost)
	s.mux.HandleFunc("PATCH /api/posts/{id}", s.handleUpdatePost)
	s.mux.HandleFunc("DELETE /api/posts/{id}", s.handleDeletePost)

	s.mux.HandleFunc("POST /api/ai/generate", s.handleGenerate)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to Smart Blog Editor API",
		"storage": string(s.mode),
	})
}
