package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"petshop/internal/domain/model"
	repo "petshop/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	DefaultProductPageSize = 12
	defaultHomeListSize    = 8
	relatedProductsLimit   = 4
)

// ProductUsecase serves the public catalog.
type ProductUsecase struct {
	productRepo repo.ProductRepository
}

func NewProductUsecase(productRepo repo.ProductRepository) *ProductUsecase {
	return &ProductUsecase{productRepo: productRepo}
}

type ListProductsInput struct {
	Page       int
	Limit      int
	Q          string
	CategoryID string
	PetType    string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Sort       string
}

type ProductListOutput struct {
	Items      []model.Product `json:"items"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

type ProductDetailOutput struct {
	Product model.Product   `json:"product"`
	Related []model.Product `json:"related"`
}

func validateListInput(in *ListProductsInput) error {
	if in.Page == 0 {
		in.Page = 1
	}
	if in.Limit == 0 {
		in.Limit = DefaultProductPageSize
	}
	if in.Page < 1 {
		return NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	in.Q = strings.TrimSpace(in.Q)
	if len(in.Q) > 100 {
		return NewHTTPError(http.StatusBadRequest, "q too long")
	}
	if in.MinPrice != nil && in.MinPrice.IsNegative() {
		return NewHTTPError(http.StatusBadRequest, "min_price must be >= 0")
	}
	if in.MaxPrice != nil && in.MaxPrice.IsNegative() {
		return NewHTTPError(http.StatusBadRequest, "max_price must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && in.MinPrice.GreaterThan(*in.MaxPrice) {
		return NewHTTPError(http.StatusBadRequest, "min_price must be <= max_price")
	}
	if in.PetType != "" && !model.PetType(in.PetType).Valid() {
		return NewHTTPError(http.StatusBadRequest, "invalid pet_type")
	}
	switch in.Sort {
	case "", repo.SortNewest, repo.SortPriceAsc, repo.SortPriceDesc, repo.SortName:
	default:
		return NewHTTPError(http.StatusBadRequest, "invalid sort")
	}
	return nil
}

func toListQuery(in ListProductsInput, includeInactive bool) repo.ProductListQuery {
	q := repo.ProductListQuery{
		Page:            in.Page,
		Limit:           in.Limit,
		Q:               in.Q,
		CategoryID:      strings.TrimSpace(in.CategoryID),
		MinPrice:        in.MinPrice,
		MaxPrice:        in.MaxPrice,
		Sort:            in.Sort,
		IncludeInactive: includeInactive,
	}
	// "All" is not a filter
	if in.PetType != "" && model.PetType(in.PetType) != model.PetTypeAll {
		pt := model.PetType(in.PetType)
		q.PetType = &pt
	}
	return q
}

func newListOutput(items []model.Product, total int64, page, limit int) ProductListOutput {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return ProductListOutput{Items: items, Total: total, Page: page, Limit: limit, TotalPages: pages}
}

func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if err := validateListInput(&in); err != nil {
		return ProductListOutput{}, err
	}

	items, total, err := u.productRepo.List(ctx, toListQuery(in, false))
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return newListOutput(items, total, in.Page, in.Limit), nil
}

// GetProductDetail returns an active product and a few from the same category.
func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID string) (ProductDetailOutput, error) {
	if strings.TrimSpace(productID) == "" {
		return ProductDetailOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductDetailOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return ProductDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return ProductDetailOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	related, err := u.productRepo.Related(ctx, p, relatedProductsLimit)
	if err != nil {
		return ProductDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return ProductDetailOutput{Product: p, Related: related}, nil
}

func (u *ProductUsecase) Featured(ctx context.Context, limit int) ([]model.Product, error) {
	if limit <= 0 || limit > 50 {
		limit = defaultHomeListSize
	}
	items, err := u.productRepo.Featured(ctx, limit)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

func (u *ProductUsecase) Newest(ctx context.Context, limit int) ([]model.Product, error) {
	if limit <= 0 || limit > 50 {
		limit = defaultHomeListSize
	}
	items, err := u.productRepo.Newest(ctx, limit)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}
