package repository

import (
	"context"
	"strings"

	"petshop/internal/domain/model"
	repo "petshop/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// List filters, sorts and pages products. Category is preloaded.
func (r *ProductGormRepository) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Product{})

	if !q.IncludeInactive {
		tx = tx.Where("products.is_active = ?", true)
	}

	if strings.TrimSpace(q.Q) != "" {
		like := likePattern(q.Q)
		tx = tx.Where("(products.name ILIKE ? OR products.description ILIKE ?)", like, like)
	}

	if q.CategoryID != "" {
		tx = tx.Where("products.category_id = ?", q.CategoryID)
	}

	if q.PetType != nil {
		tx = tx.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.pet_type IN ?", []model.PetType{*q.PetType, model.PetTypeAll})
	}

	if q.MinPrice != nil {
		tx = tx.Where("products.price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		tx = tx.Where("products.price <= ?", *q.MaxPrice)
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	switch q.Sort {
	case repo.SortPriceAsc:
		tx = tx.Order("products.price asc").Order("products.id asc")
	case repo.SortPriceDesc:
		tx = tx.Order("products.price desc").Order("products.id desc")
	case repo.SortName:
		tx = tx.Order("products.name asc").Order("products.id asc")
	default:
		tx = tx.Order("products.created_at desc").Order("products.id desc")
	}

	if err := tx.Preload("Category").
		Offset(pageOffset(q.Page, q.Limit)).
		Limit(q.Limit).
		Find(&products).Error; err != nil {
		return []model.Product{}, 0, err
	}

	return products, total, nil
}

func (r *ProductGormRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&p).Error
	if err != nil {
		return model.Product{}, mapErr(err)
	}
	return p, nil
}

func (r *ProductGormRepository) Featured(ctx context.Context, limit int) ([]model.Product, error) {
	var out []model.Product
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND stock_quantity > 0", true).
		Order("stock_quantity desc").Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return []model.Product{}, err
	}
	return out, nil
}

func (r *ProductGormRepository) Newest(ctx context.Context, limit int) ([]model.Product, error) {
	var out []model.Product
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at desc").Order("id desc").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return []model.Product{}, err
	}
	return out, nil
}

func (r *ProductGormRepository) Related(ctx context.Context, product model.Product, limit int) ([]model.Product, error) {
	var out []model.Product
	err := r.db.WithContext(ctx).
		Where("category_id = ? AND id <> ? AND is_active = ?", product.CategoryID, product.ID, true).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return []model.Product{}, err
	}
	return out, nil
}

// LowStock lists active products whose stock is below threshold, lowest first.
func (r *ProductGormRepository) LowStock(ctx context.Context, threshold int64) ([]model.Product, error) {
	var out []model.Product
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND stock_quantity < ?", true, threshold).
		Order("stock_quantity asc").Order("name asc").
		Find(&out).Error
	if err != nil {
		return []model.Product{}, err
	}
	return out, nil
}

func (r *ProductGormRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Where("is_active = ?", true).Count(&n).Error
	return n, err
}

func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Omit("Category").Create(&p).Error; err != nil {
		return model.Product{}, mapErr(err)
	}
	return p, nil
}

func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"name":           p.Name,
		"description":    p.Description,
		"price":          p.Price,
		"stock_quantity": p.StockQuantity,
		"category_id":    p.CategoryID,
		"image_url":      p.ImageURL,
		"color":          p.Color,
		"size":           p.Size,
		"material":       p.Material,
		"is_active":      p.IsActive,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// SoftDelete hides the product. Order history keeps pointing at it.
func (r *ProductGormRepository) SoftDelete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
