package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Supabase talks to a hosted GoTrue instance over its REST surface. Tokens
// are verified locally against the project's JWT secret, so no network call
// happens per request.
type Supabase struct {
	baseURL    string
	anonKey    string
	serviceKey string
	jwtSecret  []byte
	client     *http.Client
}

func NewSupabase(baseURL, anonKey, serviceKey, jwtSecret string) *Supabase {
	return &Supabase{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		serviceKey: serviceKey,
		jwtSecret:  []byte(jwtSecret),
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// AdminAPI returns the elevated account-management surface, or nil when no
// service-role key was configured.
func (s *Supabase) AdminAPI() AdminAPI {
	if s.serviceKey == "" {
		return nil
	}
	return &supabaseAdmin{c: s}
}

func (s *Supabase) SignUp(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	err := s.do(ctx, http.MethodPost, "/auth/v1/signup", s.anonKey, s.anonKey, body, nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && isEmailTaken(apiErr) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (s *Supabase) SignIn(ctx context.Context, email, password string) (*Credentials, error) {
	body := map[string]string{"email": email, "password": password}
	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
		User        struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}

	err := s.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", s.anonKey, s.anonKey, body, &out)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnauthorized) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return &Credentials{
		AccessToken: out.AccessToken,
		ExpiresIn:   out.ExpiresIn,
		User:        Identity{ID: out.User.ID, Email: out.User.Email},
	}, nil
}

func (s *Supabase) SignOut(ctx context.Context, accessToken string) error {
	return s.do(ctx, http.MethodPost, "/auth/v1/logout", s.anonKey, accessToken, nil, nil)
}

func (s *Supabase) Verify(token string) (*Identity, error) {
	return parseToken(s.jwtSecret, token)
}

// supabaseAdmin calls the /admin endpoints with the service-role key.
type supabaseAdmin struct {
	c *Supabase
}

// supabaseUser is the account shape GoTrue returns.
type supabaseUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (u supabaseUser) toUser() User {
	return User{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

func (a *supabaseAdmin) ListUsers(ctx context.Context) ([]User, error) {
	var out struct {
		Users []supabaseUser `json:"users"`
	}
	if err := a.c.do(ctx, http.MethodGet, "/auth/v1/admin/users?per_page=1000", a.c.serviceKey, a.c.serviceKey, nil, &out); err != nil {
		return nil, err
	}

	users := make([]User, 0, len(out.Users))
	for _, u := range out.Users {
		users = append(users, u.toUser())
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (a *supabaseAdmin) CreateUser(ctx context.Context, email, tempPassword string) (*User, error) {
	body := map[string]interface{}{
		"email":         email,
		"password":      tempPassword,
		"email_confirm": true,
		"user_metadata": map[string]string{"role": "trainee"},
	}

	var out supabaseUser
	err := a.c.do(ctx, http.MethodPost, "/auth/v1/admin/users", a.c.serviceKey, a.c.serviceKey, body, &out)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && isEmailTaken(apiErr) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	user := out.toUser()
	return &user, nil
}

func (a *supabaseAdmin) DeleteUser(ctx context.Context, id string) error {
	err := a.c.do(ctx, http.MethodDelete, "/auth/v1/admin/users/"+url.PathEscape(id), a.c.serviceKey, a.c.serviceKey, nil, nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// do issues one request and decodes a 2xx response into out when out is
// non-nil. Non-2xx responses come back as *APIError.
func (s *Supabase) do(ctx context.Context, method, path, apikey, bearer string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", apikey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return &APIError{Status: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// isEmailTaken recognizes the duplicate-signup responses GoTrue has used
// across versions.
func isEmailTaken(err *APIError) bool {
	if err.Status == http.StatusConflict {
		return true
	}
	msg := strings.ToLower(err.Message)
	return strings.Contains(msg, "already registered") || strings.Contains(msg, "already been registered")
}

// readErrorMessage extracts a human-readable message from an error response.
// GoTrue is inconsistent about the field name, so several are tried.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}

	var body struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return strings.TrimSpace(string(raw))
	}
	for _, m := range []string{body.ErrorDescription, body.Msg, body.Message, body.Error} {
		if m != "" {
			return m
		}
	}
	return strings.TrimSpace(string(raw))
}
