package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"petshop/internal/domain/model"
	"petshop/internal/pricing"
	repo "petshop/internal/repository"
	"petshop/internal/validator"

	"go.uber.org/zap"
)

// CheckoutUsecase turns a cart into an order.
type CheckoutUsecase struct {
	tx     repo.TransactionManager
	users  repo.UserRepository
	carts  *CartUsecase
	// sequential: order lookups share the transaction connection
	engine *pricing.CartPricingEngine
	ids    IDGenerator
	clock  Clock
	log    *zap.Logger
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	users repo.UserRepository,
	carts *CartUsecase,
	engine *pricing.CartPricingEngine,
	ids IDGenerator,
	clock Clock,
	log *zap.Logger,
) *CheckoutUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckoutUsecase{tx: tx, users: users, carts: carts, engine: engine.Sequential(), ids: ids, clock: clock, log: log}
}

type CheckoutForm struct {
	FullName        string              `json:"full_name"`
	Email           string              `json:"email"`
	Phone           string              `json:"phone"`
	ShippingAddress string              `json:"shipping_address"`
	Notes           string              `json:"notes"`
	PaymentMethod   model.PaymentMethod `json:"payment_method"`
}

type CheckoutView struct {
	Form CheckoutForm `json:"form"`
	Cart CartResponse `json:"cart"`
}

type PlaceOrderInput struct {
	CheckoutForm
	// optional; a repeated key returns the first order
	IdempotencyKey string
}

// Prepare prefills the checkout form from the profile and prices the cart.
func (u *CheckoutUsecase) Prepare(ctx context.Context, userID string) (CheckoutView, error) {
	if userID == "" {
		return CheckoutView{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return CheckoutView{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err != nil {
		return CheckoutView{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	cart, err := u.carts.GetCart(ctx, userID)
	if err != nil {
		return CheckoutView{}, err
	}
	if len(cart.Items) == 0 {
		return CheckoutView{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}

	return CheckoutView{
		Form: CheckoutForm{
			FullName:        user.FullName,
			Email:           user.Email,
			Phone:           user.Phone,
			ShippingAddress: user.Address,
			PaymentMethod:   model.PaymentCOD,
		},
		Cart: cart,
	}, nil
}

func validateCheckoutForm(f *CheckoutForm) error {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.ShippingAddress = strings.TrimSpace(f.ShippingAddress)
	f.Notes = strings.TrimSpace(f.Notes)
	if f.PaymentMethod == "" {
		f.PaymentMethod = model.PaymentCOD
	}

	return validator.New().
		Required("full_name", f.FullName).
		MaxLen("full_name", f.FullName, 255).
		Email("email", f.Email).
		Required("phone", f.Phone).
		Phone("phone", f.Phone).
		Required("shipping_address", f.ShippingAddress).
		MaxLen("shipping_address", f.ShippingAddress, 500).
		MaxLen("notes", f.Notes, 1000).
		Check(f.PaymentMethod == model.PaymentCOD || f.PaymentMethod == model.PaymentBankTransfer,
			"payment_method", "is not supported").
		Err()
}

// PlaceOrder prices the cart, takes stock line by line and writes the
// order in one transaction. Any failure rolls every decrement back.
func (u *CheckoutUsecase) PlaceOrder(ctx context.Context, userID string, in PlaceOrderInput) (OrderOutput, error) {
	if userID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validateCheckoutForm(&in.CheckoutForm); err != nil {
		return OrderOutput{}, validationError(err)
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if len(key) > 255 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if key != "" {
			existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if found {
				items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
				if err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				out = toOrderOutput(existing, items)
				return nil
			}
		}

		cart, err := r.Carts().FindByUserID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusBadRequest, "cart empty")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		cartItems, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(cartItems) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart empty")
		}

		priced, err := u.engine.ComputeTotal(ctx, toLines(cartItems), newProductLookup(r.Products()))
		if err != nil {
			return pricingError(err)
		}
		if len(priced.SkippedProductIDs) > 0 {
			return NewHTTPError(http.StatusConflict, "cart contains unavailable products")
		}

		orderID := u.ids.NewID(model.IDPrefixOrder)
		orderItems := make([]model.OrderItem, 0, len(priced.Lines))
		for _, l := range priced.Lines {
			if !l.Product.IsActive {
				return NewHTTPError(http.StatusConflict, "product unavailable: "+l.Product.Name)
			}

			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, l.ProductID, l.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusConflict, "insufficient stock: "+l.Product.Name)
			}

			orderItems = append(orderItems, model.OrderItem{
				OrderID:             orderID,
				ProductID:           l.ProductID,
				ProductNameSnapshot: l.Product.Name,
				UnitPrice:           l.Product.UnitPrice,
				Quantity:            l.Quantity,
			})
		}

		now := u.clock.Now()
		order := model.Order{
			ID:              orderID,
			UserID:          userID,
			Status:          model.OrderStatusPending,
			FullName:        in.FullName,
			Email:           in.Email,
			Phone:           in.Phone,
			ShippingAddress: in.ShippingAddress,
			Notes:           in.Notes,
			PaymentMethod:   in.PaymentMethod,
			Subtotal:        priced.Subtotal.Round(2),
			ShippingFee:     priced.ShippingFee.Round(2),
			Tax:             priced.Tax.Round(2),
			TotalAmount:     priced.Total.Round(2),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if key != "" {
			order.IdempotencyKey = &key
		}

		if _, err := r.Orders().Create(ctx, order); err != nil {
			if errors.Is(err, repo.ErrConflict) {
				return NewHTTPError(http.StatusConflict, "idempotency conflict")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(order, orderItems)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	u.log.Info("order placed",
		zap.String("order_id", out.ID),
		zap.String("user_id", userID),
		zap.String("total", out.TotalAmount.String()),
	)
	return out, nil
}
