// Package store binds a persistence backend exactly once per process. The
// networked store is probed at startup; if it is unreachable for any reason
// the embedded local store is initialized instead. The selection is never
// revisited, even if reachability changes later.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/smartblog/smartblog/pkg/config"
	"github.com/smartblog/smartblog/pkg/post"
	"github.com/smartblog/smartblog/pkg/store/local"
	"github.com/smartblog/smartblog/pkg/store/mongo"
)

// Mode names the backend bound at startup. Informational only; all behavior
// flows through the returned Store.
type Mode string

const (
	// ModeOnline means the networked MongoDB backend is active.
	ModeOnline Mode = "online"
	// ModeLocal means the embedded sqlite backend is active.
	ModeLocal Mode = "local"
)

// Select probes the networked store and binds a backend. It returns an error
// only when the local fallback itself cannot be initialized, which is fatal
// at startup.
func Select(ctx context.Context, cfg *config.Config) (post.Store, Mode, error) {
	st, err := mongo.Connect(ctx, cfg.Mongo)
	if err == nil {
		slog.Info("mongodb is running, using online backend", "uri", cfg.Mongo.URI)
		return st, ModeOnline, nil
	}

	slog.Warn("mongodb unreachable, using local file storage", "error", err)

	fallback, err := local.Open(cfg.Local.Path)
	if err != nil {
		return nil, "", fmt.Errorf("initializing local store: %w", err)
	}

	slog.Info("local backend ready", "path", cfg.Local.Path)
	return fallback, ModeLocal, nil
}
