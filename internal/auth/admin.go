package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/akt-prep/backend/internal/identity"
	"github.com/akt-prep/backend/internal/models"
	"github.com/gorilla/mux"
)

// RegisterAdminRoutes mounts the account-management endpoints. The caller
// wraps the router with the admin middleware.
func (h *Handler) RegisterAdminRoutes(admin *mux.Router) {
	admin.HandleFunc("/users", h.ListUsers).Methods("GET")
	admin.HandleFunc("/users", h.CreateUser).Methods("POST")
	admin.HandleFunc("/users/{id}", h.DeleteUser).Methods("DELETE")
}

// requireAdminAPI answers 503 when the deployment has no elevated
// credentials, such as a hosted provider without a service-role key.
func (h *Handler) requireAdminAPI(w http.ResponseWriter) bool {
	if h.admin == nil {
		writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "Admin surface is not configured"})
		return false
	}
	return true
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdminAPI(w) {
		return
	}

	users, err := h.admin.ListUsers(r.Context())
	if err != nil {
		log.Printf("[auth] list users error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list users"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdminAPI(w) {
		return
	}

	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if req.Email == "" || req.TempPassword == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Email and temp_password are required"})
		return
	}
	if len(req.TempPassword) < 8 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Password must be at least 8 characters"})
		return
	}

	user, err := h.admin.CreateUser(r.Context(), req.Email, req.TempPassword)
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "An account with this email already exists"})
			return
		}
		log.Printf("[auth] create user error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create user"})
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdminAPI(w) {
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.admin.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "User not found"})
			return
		}
		log.Printf("[auth] delete user error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete user"})
		return
	}

	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "User deleted"})
}
