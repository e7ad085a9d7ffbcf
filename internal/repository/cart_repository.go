package repository

import (
	"context"

	"petshop/internal/domain/model"
)

type CartRepository interface {
	// GetOrCreateByUserID returns the user's cart, creating it on first use.
	GetOrCreateByUserID(ctx context.Context, userID string, newID string) (model.Cart, error)
	FindByUserID(ctx context.Context, userID string) (model.Cart, error)
	// Clear removes every line of the cart.
	Clear(ctx context.Context, cartID string) error
}
