package auth_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"petshop/internal/domain/model"
	"petshop/internal/repository"
)

type memUsers struct {
	mu    sync.Mutex
	byID  map[string]model.User
	fails error
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]model.User{}}
}

func (m *memUsers) Create(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fails != nil {
		return m.fails
	}
	m.byID[user.ID] = *user
	return nil
}

func (m *memUsers) FindByID(ctx context.Context, userID string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) find(match func(model.User) bool) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return m.find(func(u model.User) bool { return u.Username == username })
}

func (m *memUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.find(func(u model.User) bool { return u.Email == strings.ToLower(email) })
}

func (m *memUsers) List(ctx context.Context, f repository.UserListFilter) ([]model.User, int64, error) {
	panic("not used in auth tests")
}

func (m *memUsers) Update(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[user.ID]; !ok {
		return repository.ErrNotFound
	}
	m.byID[user.ID] = *user
	return nil
}

func (m *memUsers) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := m.FindByUsername(ctx, username)
	return err == nil, nil
}

func (m *memUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	return err == nil, nil
}

func (m *memUsers) Count(ctx context.Context) (int64, error) {
	panic("not used in auth tests")
}

func (m *memUsers) CountByRole(ctx context.Context, role model.Role) (int64, error) {
	panic("not used in auth tests")
}

func (m *memUsers) Recent(ctx context.Context, limit int) ([]model.User, error) {
	panic("not used in auth tests")
}

func (m *memUsers) IncrementTokenVersion(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.TokenVersion++
	m.byID[userID] = u
	return nil
}

func (m *memUsers) setActive(userID string, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.byID[userID]
	u.IsActive = active
	m.byID[userID] = u
}

type memSessions struct {
	mu      sync.Mutex
	byID    map[string]model.Session
	touches int
}

func newMemSessions() *memSessions {
	return &memSessions{byID: map[string]model.Session{}}
}

func (m *memSessions) Create(ctx context.Context, s model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[s.ID] = s
	return nil
}

func (m *memSessions) FindActiveByID(ctx context.Context, id string, now time.Time) (model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok || !s.ActiveAt(now) {
		return model.Session{}, repository.ErrNotFound
	}
	return s, nil
}

func (m *memSessions) Touch(ctx context.Context, id string, seenAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.LastSeenAt = seenAt
	m.byID[id] = s
	m.touches++
	return nil
}

func (m *memSessions) Revoke(ctx context.Context, id string, revokedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok || s.RevokedAt != nil {
		return repository.ErrNotFound
	}
	s.RevokedAt = &revokedAt
	m.byID[id] = s
	return nil
}

func (m *memSessions) RevokeAllByUserID(ctx context.Context, userID string, exceptID string, revokedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.byID {
		if s.UserID == userID && id != exceptID && s.RevokedAt == nil {
			s.RevokedAt = &revokedAt
			m.byID[id] = s
		}
	}
	return nil
}

type seqIDs struct{ n int }

func (g *seqIDs) NewID(prefix string) string {
	g.n++
	return fmt.Sprintf("%s%04d", prefix, g.n)
}

func (g *seqIDs) NewSessionID() string {
	g.n++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", g.n)
}

// clock can be moved forward by tests.
type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }
