package identity

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Identity is the authenticated principal carried by a verified access token.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// User is an account record as reported by the provider's admin surface.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Credentials are issued on a successful sign-in.
type Credentials struct {
	AccessToken string
	ExpiresIn   int64
	User        Identity
}

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrNotFound           = errors.New("user not found")
)

// APIError reports a provider response that does not map to a known failure.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("identity provider returned %d: %s", e.Status, e.Message)
}

// Provider is the boundary to the identity service. Implementations must be
// safe for concurrent use.
type Provider interface {
	// SignUp registers a new account. ErrEmailTaken is returned when the
	// address is already registered.
	SignUp(ctx context.Context, email, password string) error

	// SignIn exchanges an email and password for credentials.
	// ErrInvalidCredentials is returned when the pair is rejected.
	SignIn(ctx context.Context, email, password string) (*Credentials, error)

	// SignOut revokes the session behind the given access token.
	SignOut(ctx context.Context, accessToken string) error

	// Verify checks an access token and returns the identity it carries.
	Verify(token string) (*Identity, error)
}

// AdminAPI manages provider accounts with elevated credentials.
type AdminAPI interface {
	ListUsers(ctx context.Context) ([]User, error)
	CreateUser(ctx context.Context, email, tempPassword string) (*User, error)
	DeleteUser(ctx context.Context, id string) error
}
