package repository

import (
	"context"

	"petshop/internal/domain/model"
)

type CategoryListQuery struct {
	ActiveOnly bool
	// nil means every pet type
	PetType *model.PetType
}

type CategoryRepository interface {
	List(ctx context.Context, q CategoryListQuery) ([]model.Category, error)
	FindByID(ctx context.Context, id string) (model.Category, error)
	Create(ctx context.Context, c model.Category) (model.Category, error)
	Update(ctx context.Context, c model.Category) error
	// SoftDelete flips is_active off.
	SoftDelete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	CountProducts(ctx context.Context, categoryID string) (int64, error)
}
