// internal/api/handler/account.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"groupcart/internal/domain"
	"groupcart/internal/service"
	"groupcart/internal/util"
)

// AccountHandler handles HTTP requests for users and groups.
type AccountHandler struct {
	service service.AccountService
	logger  *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateUserRequest represents the request body for user creation.
type CreateUserRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Color     string `json:"color"`
}

// CreateUser handles account creation.
// POST /users
func (h *AccountHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrValidation)
		return
	}
	if req.Username == "" {
		respondWithError(w, h.logger, util.ErrValidation)
		return
	}

	user, err := h.service.CreateUser(r.Context(), req.Username, req.FirstName, req.LastName, req.Color)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusCreated, user)
}

// GetUser handles user lookup.
// GET /users/{username}
func (h *AccountHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, user)
}

// UpdateUserRequest represents the request body for user updates.
type UpdateUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	GroupID   string `json:"groupId"`
	Color     string `json:"color"`
}

// UpdateUser handles profile and membership changes.
// PATCH /users/{username}
func (h *AccountHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrValidation)
		return
	}

	user, err := h.service.UpdateUser(r.Context(), domain.User{
		Username:  chi.URLParam(r, "username"),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		GroupID:   req.GroupID,
		Color:     req.Color,
	})
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, user)
}

// CreateGroupRequest represents the request body for group creation.
type CreateGroupRequest struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Users []string `json:"users"`
}

// CreateGroup handles group creation.
// POST /groups
func (h *AccountHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrValidation)
		return
	}

	group, err := h.service.CreateGroup(r.Context(), req.ID, req.Name, req.Users)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusCreated, group)
}

// GetGroup handles group lookup.
// GET /groups/{groupID}
func (h *AccountHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.service.GetGroup(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, group)
}
