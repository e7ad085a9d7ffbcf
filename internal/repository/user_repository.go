package repository

import (
	"context"

	"petshop/internal/domain/model"
)

type UserListFilter struct {
	Role  *model.Role
	Q     string
	Page  int
	Limit int
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	// Find* return ErrNotFound when nothing matches.
	FindByID(ctx context.Context, userID string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, f UserListFilter) ([]model.User, int64, error)
	Update(ctx context.Context, user *model.User) error

	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Count(ctx context.Context) (int64, error)
	CountByRole(ctx context.Context, role model.Role) (int64, error)
	Recent(ctx context.Context, limit int) ([]model.User, error)

	IncrementTokenVersion(ctx context.Context, userID string) error
}
