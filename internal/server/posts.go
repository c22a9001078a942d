package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/smartblog/smartblog/pkg/post"
)

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var draft post.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body", err.Error())
		return
	}

	if msg, ok := validateDraft(draft); !ok {
		writeError(w, http.StatusUnprocessableEntity, "validation failed", msg)
		return
	}

	created, err := s.posts.Add(r.Context(), draft)
	if err != nil {
		slog.Error("creating post", "error", err)
		writeError(w, http.StatusInternalServerError, "An error occurred", "There was an error adding the post data.")
		return
	}

	writeData(w, "Post added successfully.", created)
}

// validateDraft enforces the create schema: non-empty title and status,
// content present. Content and status shapes beyond presence are not
// inspected.
func validateDraft(draft post.Draft) (string, bool) {
	switch {
	case draft.Title == "":
		return "field required: title", false
	case draft.Content == nil:
		return "field required: content", false
	case draft.Status == "":
		return "field required: status", false
	}
	return "", true
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.posts.List(r.Context())
	if err != nil {
		slog.Error("listing posts", "error", err)
		writeError(w, http.StatusInternalServerError, "An error occurred", "There was an error retrieving the posts.")
		return
	}

	items := make([]any, 0, len(posts))
	for _, p := range posts {
		items = append(items, p)
	}

	if len(items) == 0 {
		writeData(w, "Empty list returned", items...)
		return
	}
	writeData(w, "Posts data retrieved successfully", items...)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	p, err := s.posts.Get(r.Context(), id)
	if errors.Is(err, post.ErrNotFound) {
		writeError(w, http.StatusNotFound, "An error occurred.", "Post doesn't exist.")
		return
	}
	if err != nil {
		slog.Error("retrieving post", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "An error occurred", "There was an error retrieving the post data.")
		return
	}

	writeData(w, "Post data retrieved successfully", p)
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var patch post.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body", err.Error())
		return
	}

	if err := s.posts.Update(r.Context(), id, patch); err != nil {
		if !errors.Is(err, post.ErrNotFound) && !errors.Is(err, post.ErrEmptyPatch) {
			slog.Error("updating post", "id", id, "error", err)
		}
		writeError(w, http.StatusNotFound, "An error occurred", "There was an error updating the post data.")
		return
	}

	writeData(w, "Post name updated successfully",
		fmt.Sprintf("Post with ID: %s name update is successful", id))
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.posts.Delete(r.Context(), id); err != nil {
		if !errors.Is(err, post.ErrNotFound) {
			slog.Error("deleting post", "id", id, "error", err)
		}
		writeError(w, http.StatusNotFound, "An error occurred",
			fmt.Sprintf("Post with id %s doesn't exist", id))
		return
	}

	writeData(w, "Post deleted successfully", fmt.Sprintf("Post with ID: %s removed", id))
}
