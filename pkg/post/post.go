// Package post defines the canonical blog post record and the repository
// service that operates on it. The service is backend-agnostic: all storage
// heterogeneity lives behind the Store interface it is constructed with.
package post

import (
	"errors"
	"time"
)

// Timestamp layout for created_at/updated_at. Values are ISO-8601 strings in
// UTC; callers may supply their own on create/update and the service keeps
// them verbatim.
const TimeLayout = time.RFC3339

var (
	// ErrNotFound is returned when an id does not resolve to a stored post.
	// Malformed ids, missing records and failed backend writes against a
	// single id all collapse to this error.
	ErrNotFound = errors.New("post not found")

	// ErrEmptyPatch is returned by Update when the patch carries no fields.
	ErrEmptyPatch = errors.New("empty update")
)

// Post is the canonical, backend-independent record shape.
type Post struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   any    `json:"content"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Draft is the payload accepted on create. Content is an arbitrary
// JSON-compatible document (a rich-text tree); its internal shape is never
// inspected.
type Draft struct {
	Title     string `json:"title"`
	Content   any    `json:"content"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Patch is a partial update. Nil fields are absent and never merged.
type Patch struct {
	Title     *string `json:"title"`
	Content   any     `json:"content"`
	Status    *string `json:"status"`
	UpdatedAt *string `json:"updated_at"`
}

// Fields returns the patch as a column/field map containing only the
// supplied values.
func (p Patch) Fields() map[string]any {
	fields := make(map[string]any)
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Content != nil {
		fields["content"] = p.Content
	}
	if p.Status != nil {
		fields["status"] = *p.Status
	}
	if p.UpdatedAt != nil {
		fields["updated_at"] = *p.UpdatedAt
	}
	return fields
}

// IsEmpty reports whether the patch carries no fields at all.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Status == nil && p.UpdatedAt == nil
}

// Now returns the current UTC time in the canonical timestamp layout.
func Now() string {
	return time.Now().UTC().Format(TimeLayout)
}
