package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"petshop/internal/domain/model"
	repo "petshop/internal/repository"
	"petshop/internal/validator"
)

type CategoryUsecase struct {
	tx           repo.TransactionManager
	categoryRepo repo.CategoryRepository
	ids          IDGenerator
	clock        Clock
}

func NewCategoryUsecase(tx repo.TransactionManager, categoryRepo repo.CategoryRepository, ids IDGenerator, clock Clock) *CategoryUsecase {
	return &CategoryUsecase{tx: tx, categoryRepo: categoryRepo, ids: ids, clock: clock}
}

type CategoryInput struct {
	Name        string
	Description string
	PetType     string
	IsActive    bool
}

type CategoryDetailOutput struct {
	Category     model.Category `json:"category"`
	ProductCount int64          `json:"product_count"`
}

// ListActive lists active categories; petType narrows to that pet plus "All".
func (u *CategoryUsecase) ListActive(ctx context.Context, petType string) ([]model.Category, error) {
	q := repo.CategoryListQuery{ActiveOnly: true}
	if petType != "" {
		pt := model.PetType(petType)
		if !pt.Valid() {
			return nil, NewHTTPError(http.StatusBadRequest, "invalid pet_type")
		}
		if pt != model.PetTypeAll {
			q.PetType = &pt
		}
	}

	items, err := u.categoryRepo.List(ctx, q)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

// ListAll is the admin view, inactive rows included.
func (u *CategoryUsecase) ListAll(ctx context.Context) ([]model.Category, error) {
	items, err := u.categoryRepo.List(ctx, repo.CategoryListQuery{})
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

func (u *CategoryUsecase) Get(ctx context.Context, id string) (CategoryDetailOutput, error) {
	c, err := u.categoryRepo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && !c.IsActive) {
		return CategoryDetailOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CategoryDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	n, err := u.categoryRepo.CountProducts(ctx, id)
	if err != nil {
		return CategoryDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return CategoryDetailOutput{Category: c, ProductCount: n}, nil
}

func validateCategory(in *CategoryInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.PetType == "" {
		in.PetType = string(model.PetTypeAll)
	}
	return validationError(validator.New().
		Required("name", in.Name).
		MaxLen("name", in.Name, 255).
		Check(model.PetType(in.PetType).Valid(), "pet_type", "must be Dog, Cat or All").
		Err())
}

func (u *CategoryUsecase) Create(ctx context.Context, in CategoryInput) (model.Category, error) {
	if err := validateCategory(&in); err != nil {
		return model.Category{}, err
	}

	c, err := u.categoryRepo.Create(ctx, model.Category{
		ID:          u.ids.NewID(model.IDPrefixCategory),
		Name:        in.Name,
		Description: in.Description,
		PetType:     model.PetType(in.PetType),
		IsActive:    in.IsActive,
	})
	if err != nil {
		return model.Category{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return c, nil
}

func (u *CategoryUsecase) Update(ctx context.Context, id string, in CategoryInput) (model.Category, error) {
	if id == "" {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := validateCategory(&in); err != nil {
		return model.Category{}, err
	}

	c := model.Category{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		PetType:     model.PetType(in.PetType),
		IsActive:    in.IsActive,
	}
	err := u.categoryRepo.Update(ctx, c)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Category{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Category{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return c, nil
}

// Delete deactivates the category. Its products stay as they are.
func (u *CategoryUsecase) Delete(ctx context.Context, actorUserID string, id string) error {
	if id == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		err := r.Categories().SoftDelete(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorUserID,
			Action:       model.AuditActionDeleteCategory,
			ResourceType: model.AuditResourceCategory,
			ResourceID:   id,
			BeforeJSON:   `{"is_active":true}`,
			AfterJSON:    `{"is_active":false}`,
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
}
