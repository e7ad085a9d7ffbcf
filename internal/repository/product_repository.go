package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"petshop/internal/domain/model"
)

const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortName      = "name"
)

type ProductListQuery struct {
	Page       int
	Limit      int
	Q          string
	CategoryID string
	PetType    *model.PetType
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Sort       string
	// staff listings see inactive products too
	IncludeInactive bool
}

type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id string) (model.Product, error)

	// active and in stock
	Featured(ctx context.Context, limit int) ([]model.Product, error)
	Newest(ctx context.Context, limit int) ([]model.Product, error)
	// Related returns other active products of the same category.
	Related(ctx context.Context, product model.Product, limit int) ([]model.Product, error)
	LowStock(ctx context.Context, threshold int64) ([]model.Product, error)
	Count(ctx context.Context) (int64, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id string) error
}
