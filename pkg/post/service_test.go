package post

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store keyed by sequential string ids.
type fakeStore struct {
	posts   map[string]Post
	nextID  int
	calls   int
	failAll bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{posts: make(map[string]Post), nextID: 1}
}

var errBackend = errors.New("backend failure")

func (f *fakeStore) Insert(_ context.Context, draft Draft) (Post, error) {
	f.calls++
	if f.failAll {
		return Post{}, errBackend
	}
	p := Post{
		ID:        strconv.Itoa(f.nextID),
		Title:     draft.Title,
		Content:   draft.Content,
		Status:    draft.Status,
		CreatedAt: draft.CreatedAt,
		UpdatedAt: draft.UpdatedAt,
	}
	f.posts[p.ID] = p
	f.nextID++
	return p, nil
}

func (f *fakeStore) FindAll(_ context.Context) ([]Post, error) {
	f.calls++
	if f.failAll {
		return nil, errBackend
	}
	var out []Post
	for i := 1; i < f.nextID; i++ {
		if p, ok := f.posts[strconv.Itoa(i)]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) FindByID(_ context.Context, id string) (Post, error) {
	f.calls++
	p, ok := f.posts[id]
	if !ok {
		return Post{}, ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) Update(_ context.Context, id string, fields map[string]any) error {
	f.calls++
	p, ok := f.posts[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := fields["title"]; ok {
		p.Title = v.(string)
	}
	if v, ok := fields["content"]; ok {
		p.Content = v
	}
	if v, ok := fields["status"]; ok {
		p.Status = v.(string)
	}
	if v, ok := fields["updated_at"]; ok {
		p.UpdatedAt = v.(string)
	}
	f.posts[id] = p
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.calls++
	if _, ok := f.posts[id]; !ok {
		return ErrNotFound
	}
	delete(f.posts, id)
	return nil
}

func (f *fakeStore) Name() string                  { return "fake" }
func (f *fakeStore) Close(_ context.Context) error { return nil }

func TestAdd_StampsTimestamps(t *testing.T) {
	svc := NewService(newFakeStore())

	created, err := svc.Add(context.Background(), Draft{
		Title:   "Hello",
		Content: map[string]any{"root": map[string]any{}},
		Status:  "draft",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "draft", created.Status)
	assert.NotEmpty(t, created.CreatedAt)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	_, err = time.Parse(TimeLayout, created.CreatedAt)
	assert.NoError(t, err)
}

func TestAdd_KeepsSuppliedTimestamps(t *testing.T) {
	svc := NewService(newFakeStore())

	created, err := svc.Add(context.Background(), Draft{
		Title:     "Hello",
		Content:   map[string]any{"root": map[string]any{}},
		Status:    "draft",
		CreatedAt: "2023-01-01T00:00:00Z",
		UpdatedAt: "2023-01-02T00:00:00Z",
	})
	require.NoError(t, err)

	assert.Equal(t, "2023-01-01T00:00:00Z", created.CreatedAt)
	assert.Equal(t, "2023-01-02T00:00:00Z", created.UpdatedAt)
}

func TestRoundTrip(t *testing.T) {
	svc := NewService(newFakeStore())

	content := map[string]any{"root": map[string]any{"children": []any{"hi"}}}
	created, err := svc.Add(context.Background(), Draft{Title: "Hello", Content: content, Status: "draft"})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, content, got.Content)
	assert.Equal(t, created.Status, got.Status)
	assert.NotEmpty(t, got.CreatedAt)
	assert.NotEmpty(t, got.UpdatedAt)
}

func TestGet_NotFound(t *testing.T) {
	svc := NewService(newFakeStore())

	_, err := svc.Get(context.Background(), "nonexistent-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_EmptyStoreReturnsEmptySlice(t *testing.T) {
	svc := NewService(newFakeStore())

	posts, err := svc.List(context.Background())
	require.NoError(t, err)
	require.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestList_InsertionOrder(t *testing.T) {
	svc := NewService(newFakeStore())

	for _, title := range []string{"first", "second", "third"} {
		_, err := svc.Add(context.Background(), Draft{Title: title, Content: map[string]any{}, Status: "draft"})
		require.NoError(t, err)
	}

	posts, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "first", posts[0].Title)
	assert.Equal(t, "third", posts[2].Title)
}

func TestUpdate_MergesNotReplaces(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	content := map[string]any{"root": map[string]any{}}
	created, err := svc.Add(context.Background(), Draft{Title: "Hello", Content: content, Status: "draft"})
	require.NoError(t, err)

	published := "published"
	err = svc.Update(context.Background(), created.ID, Patch{Status: &published})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, "Hello", got.Title)
	assert.Equal(t, content, got.Content)
	assert.Equal(t, "published", got.Status)
	assert.NotEqual(t, created.UpdatedAt, got.UpdatedAt, "updated_at should advance")
	assert.Equal(t, created.CreatedAt, got.CreatedAt, "created_at is immutable")
}

func TestUpdate_EmptyPatchRejectedWithoutStoreContact(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	err := svc.Update(context.Background(), "1", Patch{})
	assert.ErrorIs(t, err, ErrEmptyPatch)
	assert.Zero(t, store.calls, "store must not be contacted for an empty patch")
}

func TestUpdate_RespectsSuppliedUpdatedAt(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	created, err := svc.Add(context.Background(), Draft{Title: "Hello", Content: map[string]any{}, Status: "draft"})
	require.NoError(t, err)

	supplied := "2024-06-01T12:00:00Z"
	err = svc.Update(context.Background(), created.ID, Patch{UpdatedAt: &supplied})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, supplied, got.UpdatedAt)
}

func TestUpdate_NotFound(t *testing.T) {
	svc := NewService(newFakeStore())

	title := "new"
	err := svc.Update(context.Background(), "99", Patch{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_IsTerminal(t *testing.T) {
	svc := NewService(newFakeStore())

	created, err := svc.Add(context.Background(), Draft{Title: "Hello", Content: map[string]any{}, Status: "draft"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))

	_, err = svc.Get(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.Delete(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrNotFound, "repeated delete matches never-existed")
}

func TestBackendErrorsPropagate(t *testing.T) {
	store := newFakeStore()
	store.failAll = true
	svc := NewService(store)

	_, err := svc.Add(context.Background(), Draft{Title: "x", Content: map[string]any{}, Status: "draft"})
	assert.ErrorIs(t, err, errBackend)

	_, err = svc.List(context.Background())
	assert.ErrorIs(t, err, errBackend)
}

func TestPatch_Fields(t *testing.T) {
	title := "t"
	status := "published"

	t.Run("only supplied fields", func(t *testing.T) {
		p := Patch{Title: &title}
		fields := p.Fields()
		assert.Equal(t, map[string]any{"title": "t"}, fields)
	})

	t.Run("all fields", func(t *testing.T) {
		updated := "2024-01-01T00:00:00Z"
		p := Patch{Title: &title, Content: map[string]any{"a": 1}, Status: &status, UpdatedAt: &updated}
		assert.Len(t, p.Fields(), 4)
	})

	t.Run("empty", func(t *testing.T) {
		assert.True(t, Patch{}.IsEmpty())
		assert.False(t, Patch{Status: &status}.IsEmpty())
	})
}
