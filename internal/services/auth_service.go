package services

import (
	"context"
	"database/sql"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Identity describes an authenticated caller: the admin flag drives the
// user-management surface, UserID drives post ownership checks.
type Identity struct {
	UserID int64
	Admin  bool
}

// AuthServiceProvider defines the interface for credential verification.
type AuthServiceProvider interface {
	Authenticate(ctx context.Context, login, password string) (Identity, error)
}

// AuthService verifies credentials against the user table. It deliberately
// bypasses the cache: authentication always reads the source of truth.
type AuthService struct {
	db *sql.DB
}

// NewAuthService creates a new AuthService.
func NewAuthService(db *sql.DB) *AuthService {
	return &AuthService{db: db}
}

// Authenticate looks up the user by login and compares the password against
// the stored bcrypt hash. An unknown login and a wrong password both return
// ErrBadCredentials.
func (s *AuthService) Authenticate(ctx context.Context, login, password string) (Identity, error) {
	if login == "" || password == "" {
		return Identity{}, ErrBadCredentials
	}

	var (
		id      int64
		hash    string
		isAdmin bool
	)
	row := s.db.QueryRowContext(ctx, "SELECT id, password, is_admin FROM users WHERE login = ?", login)
	if err := row.Scan(&id, &hash, &isAdmin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Identity{}, ErrBadCredentials
		}
		return Identity{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return Identity{}, ErrBadCredentials
	}
	return Identity{UserID: id, Admin: isAdmin}, nil
}
