package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/avorn/posts-be/internal/models"
	"github.com/avorn/posts-be/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests for user management. Every route is
// admin-gated by the router.
type UserHandler struct {
	service services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider) *UserHandler {
	return &UserHandler{service: service}
}

// UserPayload defines the request body for create and update.
type UserPayload struct {
	Login     string `json:"login"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsAdmin   bool   `json:"is_admin"`
}

func (p UserPayload) validate() string {
	switch {
	case p.Login == "":
		return "login is required"
	case p.Password == "":
		return "password is required"
	case p.FirstName == "":
		return "first_name is required"
	case p.LastName == "":
		return "last_name is required"
	}
	return ""
}

// Create handles new user creation by an admin.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload UserPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if reason := payload.validate(); reason != "" {
		respondError(w, http.StatusBadRequest, reason)
		return
	}

	user, err := h.service.CreateUser(r.Context(), services.UserInput{
		Login:     payload.Login,
		Password:  payload.Password,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		IsAdmin:   payload.IsAdmin,
	})
	if err != nil {
		if errors.Is(err, services.ErrDuplicateLogin) {
			respondError(w, http.StatusConflict, "login already taken")
			return
		}
		log.Error().Err(err).Str("login", payload.Login).Msg("Failed to create user")
		respondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	respondOK(w, http.StatusCreated, user)
}

// Get handles retrieving a user by their ID.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Error().Err(err).Int64("user_id", id).Msg("Failed to get user")
		respondError(w, http.StatusInternalServerError, "failed to get user")
		return
	}

	respondOK(w, http.StatusOK, user)
}

// GetAll handles retrieving the full user collection.
func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.GetAllUsers(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		respondError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	respondOK(w, http.StatusOK, users)
}

// Update handles replacing every field of an existing user.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var payload UserPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if reason := payload.validate(); reason != "" {
		respondError(w, http.StatusBadRequest, reason)
		return
	}

	user, err := h.service.UpdateUser(r.Context(), id, services.UserInput{
		Login:     payload.Login,
		Password:  payload.Password,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		IsAdmin:   payload.IsAdmin,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, services.ErrDuplicateLogin):
			respondError(w, http.StatusConflict, "login already taken")
		default:
			log.Error().Err(err).Int64("user_id", id).Msg("Failed to update user")
			respondError(w, http.StatusInternalServerError, "failed to update user")
		}
		return
	}

	respondOK(w, http.StatusOK, user)
}

// Delete handles the permanent deletion of a user account.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	user, err := h.service.DeleteUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Error().Err(err).Int64("user_id", id).Msg("Failed to delete user")
		respondError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	respondOK(w, http.StatusOK, user)
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}
