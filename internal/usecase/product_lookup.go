package usecase

import (
	"context"
	"errors"

	"petshop/internal/domain/model"
	"petshop/internal/pricing"
	repo "petshop/internal/repository"
)

// productLookup feeds the pricing engine from the product repository.
type productLookup struct {
	products repo.ProductRepository
}

func newProductLookup(products repo.ProductRepository) pricing.ProductLookup {
	return productLookup{products: products}
}

func (l productLookup) GetProduct(ctx context.Context, productID string) (pricing.ProductSnapshot, error) {
	p, err := l.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return pricing.ProductSnapshot{}, pricing.ErrProductNotFound
	}
	if err != nil {
		return pricing.ProductSnapshot{}, err
	}
	return toSnapshot(p), nil
}

func toSnapshot(p model.Product) pricing.ProductSnapshot {
	return pricing.ProductSnapshot{
		ProductID:     p.ID,
		Name:          p.Name,
		UnitPrice:     p.Price,
		StockQuantity: p.StockQuantity,
		IsActive:      p.IsActive,
	}
}

func toLines(items []model.CartItem) []pricing.Line {
	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, pricing.Line{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return lines
}
