package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"petshop/internal/domain/model"
	repo "petshop/internal/repository"
	"petshop/internal/validator"

	"github.com/shopspring/decimal"
)

const DefaultLowStockThreshold = 10

// StaffProductUsecase is product management for staff and admins.
type StaffProductUsecase struct {
	tx           repo.TransactionManager
	productRepo  repo.ProductRepository
	categoryRepo repo.CategoryRepository
	ids          IDGenerator
	clock        Clock
}

func NewStaffProductUsecase(
	tx repo.TransactionManager,
	productRepo repo.ProductRepository,
	categoryRepo repo.CategoryRepository,
	ids IDGenerator,
	clock Clock,
) *StaffProductUsecase {
	return &StaffProductUsecase{
		tx:           tx,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		ids:          ids,
		clock:        clock,
	}
}

type ProductInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int64
	CategoryID    string
	ImageURL      string
	Color         string
	Size          string
	Material      string
	IsActive      bool
}

func (u *StaffProductUsecase) validate(ctx context.Context, in *ProductInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.CategoryID = strings.TrimSpace(in.CategoryID)

	err := validator.New().
		Required("name", in.Name).
		MaxLen("name", in.Name, 255).
		Check(!in.Price.IsNegative(), "price", "must be >= 0").
		Check(in.StockQuantity >= 0, "stock_quantity", "must be >= 0").
		Required("category_id", in.CategoryID).
		MaxLen("image_url", in.ImageURL, 500).
		MaxLen("color", in.Color, 50).
		MaxLen("size", in.Size, 50).
		MaxLen("material", in.Material, 100).
		Err()
	if err != nil {
		return validationError(err)
	}

	if _, err := u.categoryRepo.FindByID(ctx, in.CategoryID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusBadRequest, "unknown category")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// List includes inactive products.
func (u *StaffProductUsecase) List(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if err := validateListInput(&in); err != nil {
		return ProductListOutput{}, err
	}

	items, total, err := u.productRepo.List(ctx, toListQuery(in, true))
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return newListOutput(items, total, in.Page, in.Limit), nil
}

func (u *StaffProductUsecase) Create(ctx context.Context, actorUserID string, in ProductInput) (model.Product, error) {
	if actorUserID == "" {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := u.validate(ctx, &in); err != nil {
		return model.Product{}, err
	}

	now := u.clock.Now()
	p, err := u.productRepo.Create(ctx, model.Product{
		ID:            u.ids.NewID(model.IDPrefixProduct),
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		StockQuantity: in.StockQuantity,
		CategoryID:    in.CategoryID,
		ImageURL:      in.ImageURL,
		Color:         in.Color,
		Size:          in.Size,
		Material:      in.Material,
		IsActive:      in.IsActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

// Update rewrites every editable field. Stock changes go through UpdateStock.
func (u *StaffProductUsecase) Update(ctx context.Context, actorUserID string, productID string, in ProductInput) (model.Product, error) {
	if actorUserID == "" {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	current, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	in.StockQuantity = current.StockQuantity
	if err := u.validate(ctx, &in); err != nil {
		return model.Product{}, err
	}

	updated := model.Product{
		ID:            productID,
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		StockQuantity: current.StockQuantity,
		CategoryID:    in.CategoryID,
		ImageURL:      in.ImageURL,
		Color:         in.Color,
		Size:          in.Size,
		Material:      in.Material,
		IsActive:      in.IsActive,
		CreatedAt:     current.CreatedAt,
		UpdatedAt:     u.clock.Now(),
	}
	if err := u.productRepo.Update(ctx, updated); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return updated, nil
}

// Delete hides the product and records who did it.
func (u *StaffProductUsecase) Delete(ctx context.Context, actorUserID string, productID string) error {
	if actorUserID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		err := r.Products().SoftDelete(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorUserID,
			Action:       model.AuditActionDeleteProduct,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			BeforeJSON:   `{"is_active":true}`,
			AfterJSON:    `{"is_active":false}`,
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
}

type stockSnapshot struct {
	Stock int64 `json:"stock"`
}

// UpdateStock sets the absolute stock level and writes an adjustment plus an audit row.
func (u *StaffProductUsecase) UpdateStock(ctx context.Context, actorUserID string, productID string, newStock int64, reason string) error {
	if actorUserID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if newStock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return NewHTTPError(http.StatusBadRequest, "reason required")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.Inventory().SetStock(ctx, productID, newStock); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		now := u.clock.Now()
		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			ProductID:   productID,
			ActorUserID: actorUserID,
			Delta:       newStock - p.StockQuantity,
			Reason:      reason,
			CreatedAt:   now,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		before, _ := json.Marshal(stockSnapshot{Stock: p.StockQuantity})
		after, _ := json.Marshal(stockSnapshot{Stock: newStock})
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorUserID,
			Action:       model.AuditActionUpdateStock,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			BeforeJSON:   string(before),
			AfterJSON:    string(after),
			CreatedAt:    now,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
}

func (u *StaffProductUsecase) LowStock(ctx context.Context, threshold int64) ([]model.Product, error) {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	items, err := u.productRepo.LowStock(ctx, threshold)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}
