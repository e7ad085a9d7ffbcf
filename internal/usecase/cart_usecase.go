package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"petshop/internal/domain/model"
	"petshop/internal/pricing"
	repo "petshop/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase owns the /cart operations. Prices are never stored on the
// cart; every read goes through the pricing engine.
type CartUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	lookup       pricing.ProductLookup
	engine       *pricing.CartPricingEngine
	ids          IDGenerator
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
	engine *pricing.CartPricingEngine,
	ids IDGenerator,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		lookup:       newProductLookup(productRepo),
		engine:       engine,
		ids:          ids,
	}
}

type CartItemResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	Name          string          `json:"name"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Quantity      int64           `json:"quantity"`
	StockQuantity int64           `json:"stock_quantity"`
	LineTotal     decimal.Decimal `json:"line_total"`
}

type PricingSummary struct {
	Subtotal          decimal.Decimal `json:"subtotal"`
	ShippingFee       decimal.Decimal `json:"shipping_fee"`
	Tax               decimal.Decimal `json:"tax"`
	Total             decimal.Decimal `json:"total"`
	ItemCount         int64           `json:"item_count"`
	SkippedProductIDs []string        `json:"skipped_product_ids,omitempty"`
}

type CartResponse struct {
	CartID  string             `json:"cart_id"`
	Items   []CartItemResponse `json:"items"`
	Summary PricingSummary     `json:"summary"`
}

type AddCartInput struct {
	ProductID string
	// 0 means one unit
	Quantity int64
}

type UpdateCartItemInput struct {
	Quantity int64
}

// GetCart returns the user's cart, creating an empty one on first use.
func (u *CartUsecase) GetCart(ctx context.Context, userID string) (CartResponse, error) {
	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID, u.ids.NewID(model.IDPrefixCart))
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.buildCartResponse(ctx, cart.ID)
}

// AddToCart validates stock first, so a failed add leaves the cart untouched.
func (u *CartUsecase) AddToCart(ctx context.Context, userID string, in AddCartInput) (CartResponse, error) {
	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}

	if _, err := u.engine.ValidateAddToCart(ctx, u.lookup, productID, qty); err != nil {
		return CartResponse{}, pricingError(err)
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID, u.ids.NewID(model.IDPrefixCart))
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if _, err := u.cartItemRepo.UpsertByCartAndProduct(ctx, cart.ID, productID, qty, u.ids.NewID(model.IDPrefixCartItem)); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// UpdateCartItem sets a line's quantity. Zero or less removes the line.
func (u *CartUsecase) UpdateCartItem(ctx context.Context, userID string, cartItemID string, in UpdateCartItemInput) (CartResponse, error) {
	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cartItemID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := u.ensureOwned(ctx, userID, cartItemID); err != nil {
		return CartResponse{}, err
	}

	item, err := u.cartItemRepo.FindByID(ctx, cartItemID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	switch pricing.ReconcileQuantityUpdate(in.Quantity) {
	case pricing.ActionRemove:
		if err := u.cartItemRepo.DeleteByID(ctx, cartItemID); err != nil {
			return CartResponse{}, itemWriteError(err)
		}
	default:
		p, err := u.lookup.GetProduct(ctx, item.ProductID)
		if err != nil {
			return CartResponse{}, pricingError(err)
		}
		if err := pricing.CheckStock(p, in.Quantity); err != nil {
			return CartResponse{}, pricingError(err)
		}
		if err := u.cartItemRepo.UpdateQuantity(ctx, cartItemID, in.Quantity); err != nil {
			return CartResponse{}, itemWriteError(err)
		}
	}

	return u.buildCartResponse(ctx, item.CartID)
}

func (u *CartUsecase) RemoveCartItem(ctx context.Context, userID string, cartItemID string) (CartResponse, error) {
	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cartItemID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := u.ensureOwned(ctx, userID, cartItemID); err != nil {
		return CartResponse{}, err
	}

	item, err := u.cartItemRepo.FindByID(ctx, cartItemID)
	if err != nil {
		return CartResponse{}, itemWriteError(err)
	}
	if err := u.cartItemRepo.DeleteByID(ctx, cartItemID); err != nil {
		return CartResponse{}, itemWriteError(err)
	}

	return u.buildCartResponse(ctx, item.CartID)
}

// ClearCart empties the cart. A user without a cart gets an empty response.
func (u *CartUsecase) ClearCart(ctx context.Context, userID string) (CartResponse, error) {
	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return emptyCartResponse(""), nil
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cartRepo.Clear(ctx, cart.ID); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return emptyCartResponse(cart.ID), nil
}

// CountItems is the badge number: total units, not distinct lines.
func (u *CartUsecase) CountItems(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	n, err := u.cartItemRepo.SumQuantity(ctx, cart.ID)
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return n, nil
}

func (u *CartUsecase) ensureOwned(ctx context.Context, userID, cartItemID string) error {
	owned, err := u.cartItemRepo.IsOwnedByUser(ctx, cartItemID, userID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	return nil
}

func (u *CartUsecase) buildCartResponse(ctx context.Context, cartID string) (CartResponse, error) {
	items, err := u.cartItemRepo.ListByCartID(ctx, cartID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	res, err := u.engine.ComputeTotal(ctx, toLines(items), u.lookup)
	if err != nil {
		return CartResponse{}, pricingError(err)
	}

	lineIDs := make(map[string]string, len(items))
	for _, it := range items {
		lineIDs[it.ProductID] = it.ID
	}

	out := CartResponse{
		CartID:  cartID,
		Items:   make([]CartItemResponse, 0, len(res.Lines)),
		Summary: toSummary(res),
	}
	for _, l := range res.Lines {
		out.Items = append(out.Items, CartItemResponse{
			ID:            lineIDs[l.ProductID],
			ProductID:     l.ProductID,
			Name:          l.Product.Name,
			UnitPrice:     l.Product.UnitPrice,
			Quantity:      l.Quantity,
			StockQuantity: l.Product.StockQuantity,
			LineTotal:     l.LineTotal,
		})
	}
	return out, nil
}

func toSummary(res pricing.Result) PricingSummary {
	return PricingSummary{
		Subtotal:          res.Subtotal,
		ShippingFee:       res.ShippingFee,
		Tax:               res.Tax,
		Total:             res.Total,
		ItemCount:         res.ItemCount,
		SkippedProductIDs: res.SkippedProductIDs,
	}
}

func emptyCartResponse(cartID string) CartResponse {
	return CartResponse{
		CartID: cartID,
		Items:  []CartItemResponse{},
		Summary: PricingSummary{
			Subtotal:    decimal.Zero,
			ShippingFee: decimal.Zero,
			Tax:         decimal.Zero,
			Total:       decimal.Zero,
		},
	}
}

func itemWriteError(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	return NewHTTPError(http.StatusInternalServerError, "db error")
}
