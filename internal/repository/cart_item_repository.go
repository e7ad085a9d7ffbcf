package repository

import (
	"context"

	"petshop/internal/domain/model"
)

type CartItemRepository interface {
	// lines in insertion order
	ListByCartID(ctx context.Context, cartID string) ([]model.CartItem, error)
	// UpsertByCartAndProduct adds addQty to an existing line or creates one with newID.
	UpsertByCartAndProduct(ctx context.Context, cartID, productID string, addQty int64, newID string) (model.CartItem, error)
	UpdateQuantity(ctx context.Context, cartItemID string, qty int64) error
	DeleteByID(ctx context.Context, cartItemID string) error
	FindByID(ctx context.Context, cartItemID string) (model.CartItem, error)
	IsOwnedByUser(ctx context.Context, cartItemID, userID string) (bool, error)
	// SumQuantity is the total unit count across the lines of the cart.
	SumQuantity(ctx context.Context, cartID string) (int64, error)
}
