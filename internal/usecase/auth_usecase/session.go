package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"petshop/internal/domain/model"
	"petshop/internal/repository"
)

type SessionTokenParser interface {
	Parse(raw string, now time.Time) (SessionClaims, error)
}

// SessionResolver turns a presented token into a Principal by checking the
// signature, the stored session and the user's current token version.
type SessionResolver struct {
	tokens   SessionTokenParser
	sessions repository.SessionRepository
	users    repository.UserRepository
	clock    Clock
}

func NewSessionResolver(tokens SessionTokenParser, sessions repository.SessionRepository, users repository.UserRepository, clock Clock) *SessionResolver {
	return &SessionResolver{tokens: tokens, sessions: sessions, users: users, clock: clock}
}

func (r *SessionResolver) Authenticate(ctx context.Context, raw string) (Principal, error) {
	now := r.clock.Now()

	claims, err := r.tokens.Parse(raw, now)
	if err != nil {
		return Principal{}, err
	}

	s, err := r.sessions.FindActiveByID(ctx, claims.SessionID, now)
	if errors.Is(err, repository.ErrNotFound) {
		return Principal{}, fmt.Errorf("%w: session not active", ErrUnauthenticated)
	}
	if err != nil {
		return Principal{}, err
	}
	if subtle.ConstantTimeCompare([]byte(s.TokenHash), []byte(HashToken(raw))) != 1 || s.UserID != claims.Subject {
		return Principal{}, fmt.Errorf("%w: token does not match session", ErrUnauthenticated)
	}

	user, err := r.users.FindByID(ctx, s.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return Principal{}, fmt.Errorf("%w: user gone", ErrUnauthenticated)
	}
	if err != nil {
		return Principal{}, err
	}
	if !user.IsActive {
		return Principal{}, ErrUserInactive
	}
	if user.TokenVersion != claims.TokenVersion {
		return Principal{}, fmt.Errorf("%w: token version changed", ErrUnauthenticated)
	}

	// best effort; a failed touch does not fail the request
	_ = r.sessions.Touch(ctx, s.ID, now)

	return Principal{
		UserID:       user.ID,
		Role:         user.RoleID,
		SessionID:    s.ID,
		TokenVersion: user.TokenVersion,
	}, nil
}

type LogoutUsecase struct {
	sessions repository.SessionRepository
	clock    Clock
}

func NewLogoutUsecase(sessions repository.SessionRepository, clock Clock) *LogoutUsecase {
	return &LogoutUsecase{sessions: sessions, clock: clock}
}

// Execute revokes the session. Logging out twice is not an error.
func (u *LogoutUsecase) Execute(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrUnauthenticated
	}
	err := u.sessions.Revoke(ctx, sessionID, u.clock.Now())
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

type MeUsecase struct {
	users repository.UserRepository
}

func NewMeUsecase(users repository.UserRepository) *MeUsecase {
	return &MeUsecase{users: users}
}

func (u *MeUsecase) Execute(ctx context.Context, p Principal) (model.User, error) {
	user, err := u.users.FindByID(ctx, p.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, ErrUnauthenticated
	}
	if err != nil {
		return model.User{}, err
	}
	safe := *user
	safe.PasswordHash = ""
	return safe, nil
}
