package post

import (
	"context"
	"fmt"
)

// Store is the capability set a persistence backend must provide. Each
// implementation owns its identifier scheme; an id that fails to parse under
// that scheme resolves to ErrNotFound, indistinguishable from a missing
// record.
type Store interface {
	// Insert stores a new record and returns the canonical post including
	// the backend-assigned id.
	Insert(ctx context.Context, draft Draft) (Post, error)
	// FindAll returns every record in backend-native order.
	FindAll(ctx context.Context) ([]Post, error)
	// FindByID returns the record matched by id, or ErrNotFound.
	FindByID(ctx context.Context, id string) (Post, error)
	// Update merges fields into the record matched by id.
	Update(ctx context.Context, id string, fields map[string]any) error
	// Delete removes the record matched by id.
	Delete(ctx context.Context, id string) error
	// Name identifies the backend in logs and diagnostics.
	Name() string
	// Close releases backend resources.
	Close(ctx context.Context) error
}

// Service implements the post repository over whichever Store was bound at
// startup. It stamps timestamps, rejects empty patches, and guarantees the
// canonical record shape; everything else is delegated.
type Service struct {
	store Store
}

// NewService creates a repository service over the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Add inserts a new post. Missing timestamps are stamped with the current
// time; caller-supplied values are kept verbatim.
func (s *Service) Add(ctx context.Context, draft Draft) (Post, error) {
	now := Now()
	if draft.CreatedAt == "" {
		draft.CreatedAt = now
	}
	if draft.UpdatedAt == "" {
		draft.UpdatedAt = now
	}

	created, err := s.store.Insert(ctx, draft)
	if err != nil {
		return Post{}, fmt.Errorf("inserting post: %w", err)
	}
	return created, nil
}

// List returns all posts in backend-native order. An empty store yields an
// empty slice, never nil and never an error.
func (s *Service) List(ctx context.Context) ([]Post, error) {
	posts, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	if posts == nil {
		posts = []Post{}
	}
	return posts, nil
}

// Get returns the post matched by id, or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (Post, error) {
	return s.store.FindByID(ctx, id)
}

// Update merges the supplied fields of patch into an existing post. An empty
// patch is rejected before the store is contacted. updated_at is refreshed
// with the current time unless the patch supplies one.
func (s *Service) Update(ctx context.Context, id string, patch Patch) error {
	if patch.IsEmpty() {
		return ErrEmptyPatch
	}

	fields := patch.Fields()
	if _, ok := fields["updated_at"]; !ok {
		fields["updated_at"] = Now()
	}

	return s.store.Update(ctx, id, fields)
}

// Delete removes the post matched by id. Deleting an id that never existed
// and one already deleted return the same ErrNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}
