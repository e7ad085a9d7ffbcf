package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"petshop/internal/domain/model"
	"petshop/internal/repository"
)

type LoginInput struct {
	// username or email
	Login      string
	Password   string
	RememberMe bool
	UserAgent  string
}

type LoginOutput struct {
	User       model.User
	Token      string
	ExpiresAt  time.Time
	RememberMe bool
}

type SessionTokenIssuer interface {
	Issue(sessionID, userID string, tokenVersion int, issuedAt, expiresAt time.Time) (string, error)
}

type LoginUsecase struct {
	userRepo      repository.UserRepository
	sessions      repository.SessionRepository
	verifier      PasswordVerifier
	issuer        SessionTokenIssuer
	idGen         IDGenerator
	clock         Clock
	sessionTTL    time.Duration
	rememberMeTTL time.Duration
}

func NewLoginUsecase(
	userRepo repository.UserRepository,
	sessions repository.SessionRepository,
	verifier PasswordVerifier,
	issuer SessionTokenIssuer,
	idGen IDGenerator,
	clock Clock,
	sessionTTL time.Duration,
	rememberMeTTL time.Duration,
) *LoginUsecase {
	return &LoginUsecase{
		userRepo:      userRepo,
		sessions:      sessions,
		verifier:      verifier,
		issuer:        issuer,
		idGen:         idGen,
		clock:         clock,
		sessionTTL:    sessionTTL,
		rememberMeTTL: rememberMeTTL,
	}
}

// Execute checks the password, opens a session and signs a token for it.
// Unknown users and wrong passwords both report ErrInvalidCredentials.
func (u *LoginUsecase) Execute(ctx context.Context, in LoginInput) (LoginOutput, error) {
	var out LoginOutput

	login := strings.TrimSpace(in.Login)
	if login == "" || in.Password == "" {
		return out, ErrInvalidCredentials
	}

	var (
		user *model.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = u.userRepo.FindByEmail(ctx, login)
	} else {
		user, err = u.userRepo.FindByUsername(ctx, login)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return out, ErrInvalidCredentials
	}
	if err != nil {
		return out, err
	}

	if !u.verifier.Verify(in.Password, user.PasswordHash) {
		return out, ErrInvalidCredentials
	}
	if !user.IsActive {
		return out, ErrUserInactive
	}

	now := u.clock.Now()
	ttl := u.sessionTTL
	if in.RememberMe {
		ttl = u.rememberMeTTL
	}
	expiresAt := now.Add(ttl)

	sessionID := u.idGen.NewSessionID()
	token, err := u.issuer.Issue(sessionID, user.ID, user.TokenVersion, now, expiresAt)
	if err != nil {
		return out, err
	}

	userAgent := in.UserAgent
	if len(userAgent) > 500 {
		userAgent = userAgent[:500]
	}
	if err := u.sessions.Create(ctx, model.Session{
		ID:         sessionID,
		UserID:     user.ID,
		TokenHash:  HashToken(token),
		RememberMe: in.RememberMe,
		UserAgent:  userAgent,
		ExpiresAt:  expiresAt,
		LastSeenAt: now,
		CreatedAt:  now,
	}); err != nil {
		return out, err
	}

	user.LastLoginAt = &now
	if err := u.userRepo.Update(ctx, user); err != nil {
		return out, err
	}

	safe := *user
	safe.PasswordHash = ""
	out.User = safe
	out.Token = token
	out.ExpiresAt = expiresAt
	out.RememberMe = in.RememberMe
	return out, nil
}
