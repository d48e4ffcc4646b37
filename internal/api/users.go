package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/store"
)

// UsersHandler handles the people who report and claim items.
type UsersHandler struct {
	Store *store.Store
}

type registerUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

// Register handles POST /api/users/register.
func (h *UsersHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Store.RegisterUser(r.Context(), req.Name, req.Email, req.Phone, req.Role)
	if err != nil {
		serviceError(w, r, "failed to register user", err)
		return
	}

	slog.Info("user registered", "user_id", user.ID, "role", user.Role)
	jsonResponse(w, http.StatusCreated, user)
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		serviceError(w, r, "failed to list users", err)
		return
	}
	jsonResponse(w, http.StatusOK, users)
}

// Get handles GET /api/users/{id}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.Store.GetUser(r.Context(), id)
	if err != nil {
		serviceError(w, r, "failed to get user", err)
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// Notifications handles GET /api/notifications/{userId}.
func (h *UsersHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "userId")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	notes, err := h.Store.ListNotifications(r.Context(), id)
	if err != nil {
		serviceError(w, r, "failed to list notifications", err)
		return
	}
	jsonResponse(w, http.StatusOK, notes)
}
