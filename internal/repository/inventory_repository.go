package repository

import (
	"context"

	"petshop/internal/domain/model"
)

type InventoryRepository interface {
	SetStock(ctx context.Context, productID string, newStock int64) error

	// DecreaseStockIfEnough reports false when the stock would go negative.
	DecreaseStockIfEnough(ctx context.Context, productID string, qty int64) (bool, error)

	IncreaseStock(ctx context.Context, productID string, qty int64) error

	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error
}
