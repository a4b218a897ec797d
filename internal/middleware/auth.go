package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/akt-prep/backend/internal/authz"
	"github.com/akt-prep/backend/internal/identity"
	"github.com/akt-prep/backend/internal/models"
)

// TokenVerifier resolves the identity behind an access token.
type TokenVerifier interface {
	Verify(token string) (*identity.Identity, error)
}

// Auth rejects requests without a valid bearer token and stores the caller's
// ID and email on the request context under "user_id" and "user_email".
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
				return
			}

			ident, err := verifier.Verify(token)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid or expired token"})
				return
			}

			ctx := context.WithValue(r.Context(), "user_id", ident.ID)
			ctx = context.WithValue(ctx, "user_email", ident.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin allows only callers whose email is on the admin list. It must
// run after Auth.
func RequireAdmin(gate *authz.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, _ := r.Context().Value("user_email").(string)
			if !gate.IsAdmin(email) {
				writeJSON(w, http.StatusForbidden, models.ErrorResponse{Error: "Admin access required"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
