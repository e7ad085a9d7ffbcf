package repository

import (
	"context"
	"time"

	"petshop/internal/domain/model"
)

// SessionRepository is the server side session store.
type SessionRepository interface {
	Create(ctx context.Context, s model.Session) error
	// FindActiveByID fails with ErrNotFound for unknown, revoked and expired sessions.
	FindActiveByID(ctx context.Context, id string, now time.Time) (model.Session, error)
	Touch(ctx context.Context, id string, seenAt time.Time) error
	Revoke(ctx context.Context, id string, revokedAt time.Time) error
	// RevokeAllByUserID keeps exceptID alive when it is not empty.
	RevokeAllByUserID(ctx context.Context, userID string, exceptID string, revokedAt time.Time) error
}
