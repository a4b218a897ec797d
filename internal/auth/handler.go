package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/akt-prep/backend/internal/authz"
	"github.com/akt-prep/backend/internal/identity"
	"github.com/akt-prep/backend/internal/models"
	"github.com/akt-prep/backend/internal/quiz"
)

type Handler struct {
	provider identity.Provider
	admin    identity.AdminAPI
	gate     *authz.Gate
	sessions *quiz.Manager
}

func NewHandler(provider identity.Provider, admin identity.AdminAPI, gate *authz.Gate, sessions *quiz.Manager) *Handler {
	return &Handler{provider: provider, admin: admin, gate: gate, sessions: sessions}
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Email and password are required"})
		return
	}
	if len(req.Password) < 8 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Password must be at least 8 characters"})
		return
	}

	if err := h.provider.SignUp(r.Context(), req.Email, req.Password); err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "An account with this email already exists"})
			return
		}
		log.Printf("[auth] sign-up error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create account"})
		return
	}

	writeJSON(w, http.StatusCreated, models.MessageResponse{Message: "Account created successfully"})
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Email and password are required"})
		return
	}

	creds, err := h.provider.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid email or password"})
			return
		}
		log.Printf("[auth] sign-in error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to sign in"})
		return
	}

	// A sign-in starts a fresh training session.
	h.sessions.Reset(creds.User.ID)

	writeJSON(w, http.StatusOK, models.AuthResponse{
		AccessToken: creds.AccessToken,
		ExpiresIn:   creds.ExpiresIn,
		User: models.UserInfo{
			ID:    creds.User.ID,
			Email: creds.User.Email,
			Role:  h.gate.Role(creds.User.Email),
		},
	})
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)
	h.sessions.Drop(userID)

	token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	if err := h.provider.SignOut(r.Context(), token); err != nil {
		// The local session is already gone, so a provider hiccup should not
		// fail the request.
		log.Printf("[auth] sign-out error: %v", err)
	}

	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Signed out"})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)
	email, _ := r.Context().Value("user_email").(string)
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	writeJSON(w, http.StatusOK, models.UserInfo{
		ID:    userID,
		Email: email,
		Role:  h.gate.Role(email),
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
