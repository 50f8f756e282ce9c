package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avorn/posts-be/internal/auth"
	"github.com/avorn/posts-be/internal/models"
	"github.com/avorn/posts-be/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// PostHandler handles HTTP requests for posts. Reads are open to any
// authenticated caller; mutations are owner-scoped.
type PostHandler struct {
	service services.PostServiceProvider
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(service services.PostServiceProvider) *PostHandler {
	return &PostHandler{service: service}
}

// PostPayload defines the request body for create and update.
type PostPayload struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

func (p PostPayload) validate() string {
	switch {
	case p.Title == "":
		return "title is required"
	case p.Text == "":
		return "text is required"
	}
	return ""
}

// Create handles new post creation; the owner is the authenticated caller.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		log.Error().Msg("Missing identity in request context")
		respondError(w, http.StatusInternalServerError, "missing caller identity")
		return
	}

	var payload PostPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if reason := payload.validate(); reason != "" {
		respondError(w, http.StatusBadRequest, reason)
		return
	}

	post, err := h.service.CreatePost(r.Context(), identity.UserID, services.PostInput{
		Title: payload.Title,
		Text:  payload.Text,
	})
	if err != nil {
		log.Error().Err(err).Int64("user_id", identity.UserID).Msg("Failed to create post")
		respondError(w, http.StatusInternalServerError, "failed to create post")
		return
	}

	respondOK(w, http.StatusCreated, post)
}

// Get handles retrieving a post by its ID; not owner-restricted.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	post, err := h.service.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}
		log.Error().Err(err).Int64("post_id", id).Msg("Failed to get post")
		respondError(w, http.StatusInternalServerError, "failed to get post")
		return
	}

	respondOK(w, http.StatusOK, post)
}

// GetAll handles retrieving the full post collection.
func (h *PostHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.GetAllPosts(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list posts")
		respondError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}
	respondOK(w, http.StatusOK, posts)
}

// Update handles replacing the fields of a post owned by the caller. A post
// owned by someone else responds as not found.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		log.Error().Msg("Missing identity in request context")
		respondError(w, http.StatusInternalServerError, "missing caller identity")
		return
	}

	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var payload PostPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if reason := payload.validate(); reason != "" {
		respondError(w, http.StatusBadRequest, reason)
		return
	}

	post, err := h.service.UpdatePost(r.Context(), identity.UserID, id, services.PostInput{
		Title: payload.Title,
		Text:  payload.Text,
	})
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}
		log.Error().Err(err).Int64("post_id", id).Msg("Failed to update post")
		respondError(w, http.StatusInternalServerError, "failed to update post")
		return
	}

	respondOK(w, http.StatusOK, post)
}

// Delete handles removing a post owned by the caller.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		log.Error().Msg("Missing identity in request context")
		respondError(w, http.StatusInternalServerError, "missing caller identity")
		return
	}

	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	post, err := h.service.DeletePost(r.Context(), identity.UserID, id)
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}
		log.Error().Err(err).Int64("post_id", id).Msg("Failed to delete post")
		respondError(w, http.StatusInternalServerError, "failed to delete post")
		return
	}

	respondOK(w, http.StatusOK, post)
}
