package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartblog/smartblog/pkg/config"
)

// An unreachable deployment must fall back to the local backend, and the
// selected store must be fully usable.
func TestSelect_FallsBackToLocal(t *testing.T) {
	cfg := &config.Config{
		Mongo: config.MongoConfig{
			URI:          "mongodb://127.0.0.1:1",
			Database:     "blog_db",
			Collection:   "posts",
			ProbeTimeout: 200 * time.Millisecond,
		},
		Local: config.LocalConfig{
			Path: filepath.Join(t.TempDir(), "posts.db"),
		},
	}

	st, mode, err := Select(context.Background(), cfg)
	require.NoError(t, err)
	defer st.Close(context.Background())

	assert.Equal(t, ModeLocal, mode)
	assert.Equal(t, "local", st.Name())

	posts, err := st.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestSelect_LocalInitFailureIsFatal(t *testing.T) {
	cfg := &config.Config{
		Mongo: config.MongoConfig{
			URI:          "mongodb://127.0.0.1:1",
			ProbeTimeout: 200 * time.Millisecond,
		},
		Local: config.LocalConfig{
			// A directory path cannot be opened as a database file.
			Path: t.TempDir(),
		},
	}

	_, _, err := Select(context.Background(), cfg)
	assert.Error(t, err)
}
