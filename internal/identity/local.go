package identity

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const localTokenTTL = 72 * time.Hour

// Local keeps accounts in the application database and issues its own
// HMAC-signed tokens. It serves deployments without a hosted identity
// service and implements both Provider and AdminAPI.
type Local struct {
	db     *sql.DB
	secret []byte
}

func NewLocal(db *sql.DB, jwtSecret string) *Local {
	return &Local{db: db, secret: []byte(jwtSecret)}
}

func (l *Local) SignUp(ctx context.Context, email, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = l.db.ExecContext(ctx,
		`INSERT INTO identities (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		uuid.NewString(), email, string(hashed), time.Now().Unix(),
	)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (l *Local) SignIn(ctx context.Context, email, password string) (*Credentials, error) {
	var id, hashed string
	err := l.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM identities WHERE email = $1`, email,
	).Scan(&id, &hashed)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := signToken(l.secret, id, email, localTokenTTL)
	if err != nil {
		return nil, err
	}
	return &Credentials{
		AccessToken: token,
		ExpiresIn:   int64(localTokenTTL.Seconds()),
		User:        Identity{ID: id, Email: email},
	}, nil
}

// SignOut is a no-op: local tokens are stateless and expire on their own.
func (l *Local) SignOut(ctx context.Context, accessToken string) error {
	return nil
}

func (l *Local) Verify(token string) (*Identity, error) {
	return parseToken(l.secret, token)
}

func (l *Local) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, email, created_at FROM identities ORDER BY created_at, email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		var createdAt int64
		if err := rows.Scan(&u.ID, &u.Email, &createdAt); err != nil {
			return nil, err
		}
		u.CreatedAt = time.Unix(createdAt, 0).UTC()
		users = append(users, u)
	}
	return users, rows.Err()
}

func (l *Local) CreateUser(ctx context.Context, email, tempPassword string) (*User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	createdAt := time.Now().Unix()
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO identities (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		id, email, string(hashed), createdAt,
	)
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return &User{ID: id, Email: email, CreatedAt: time.Unix(createdAt, 0).UTC()}, nil
}

func (l *Local) DeleteUser(ctx context.Context, id string) error {
	res, err := l.db.ExecContext(ctx, `DELETE FROM identities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// isDuplicate matches the unique-violation text of both supported drivers.
func isDuplicate(err error) bool {
	return strings.Contains(err.Error(), "duplicate key") ||
		strings.Contains(err.Error(), "UNIQUE constraint")
}
