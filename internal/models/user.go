package models

// Role is derived per request by the authorization gate, never stored.
type Role string

const (
	RoleTrainee Role = "trainee"
	RoleAdmin   Role = "admin"
)

// UserInfo is the identity block returned by sign-in and /auth/me.
type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateUserRequest struct {
	Email        string `json:"email"`
	TempPassword string `json:"temp_password"`
}

type AuthResponse struct {
	AccessToken string   `json:"access_token"`
	ExpiresIn   int64    `json:"expires_in"`
	User        UserInfo `json:"user"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
