package auth

import (
	"errors"
	"time"

	"petshop/internal/domain/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user is inactive")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already exists")
	// ErrUnauthenticated covers bad signatures, expired or revoked sessions and stale token versions.
	ErrUnauthenticated = errors.New("unauthenticated")
)

type IDGenerator interface {
	NewID(prefix string) string
	NewSessionID() string
}

type Clock interface {
	Now() time.Time
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID       string
	Role         model.Role
	SessionID    string
	TokenVersion int
}
