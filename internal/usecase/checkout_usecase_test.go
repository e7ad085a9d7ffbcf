package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"petshop/internal/domain/model"
	"petshop/internal/pricing"
	repo "petshop/internal/repository"
	"petshop/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	store    *memStore
	tx       *memTx
	users    *UserRepoMock
	cart     *usecase.CartUsecase
	checkout *usecase.CheckoutUsecase
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	store := newMemStore()
	store.addProduct(chewToy, "Chew Toy", 100000, 10)
	store.addProduct(catTower, "Cat Tower", 450000, 3)

	engine := pricing.NewCartPricingEngine(pricing.DefaultRules())
	ids := &seqIDs{}
	tx := &memTx{store: store}
	users := new(UserRepoMock)
	cart := usecase.NewCartUsecase(memCarts{store}, memCarts{store}, memProducts{store}, engine, ids)
	checkout := usecase.NewCheckoutUsecase(tx, users, cart, engine, ids, fixedClock{t: testNow}, nil)

	return &checkoutFixture{store: store, tx: tx, users: users, cart: cart, checkout: checkout}
}

func validForm() usecase.CheckoutForm {
	return usecase.CheckoutForm{
		FullName:        "Mai Tran",
		Email:           "mai@example.com",
		Phone:           "0901234567",
		ShippingAddress: "12 Le Loi, District 1",
	}
}

func TestCheckoutUsecase_Prepare_PrefillsFromProfile(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	f.users.On("FindByID", mock.Anything, customer1).Return(&model.User{
		ID:       customer1,
		FullName: "Mai Tran",
		Email:    "mai@example.com",
		Phone:    "0901234567",
		Address:  "12 Le Loi",
	}, nil)

	_, err := f.cart.AddToCart(ctx, customer1, usecase.AddCartInput{ProductID: chewToy, Quantity: 2})
	require.NoError(t, err)

	view, err := f.checkout.Prepare(ctx, customer1)
	require.NoError(t, err)
	assert.Equal(t, "Mai Tran", view.Form.FullName)
	assert.Equal(t, "12 Le Loi", view.Form.ShippingAddress)
	assert.Equal(t, model.PaymentCOD, view.Form.PaymentMethod)
	assertDecimal(t, "250000", view.Cart.Summary.Total, "total")
}

func TestCheckoutUsecase_Prepare_EmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)
	f.users.On("FindByID", mock.Anything, customer1).Return(&model.User{ID: customer1}, nil)

	_, err := f.checkout.Prepare(context.Background(), customer1)
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestCheckoutUsecase_PlaceOrder_Success(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := f.cart.AddToCart(ctx, customer1, usecase.AddCartInput{ProductID: chewToy, Quantity: 2})
	require.NoError(t, err)
	_, err = f.cart.AddToCart(ctx, customer1, usecase.AddCartInput{ProductID: catTower, Quantity: 1})
	require.NoError(t, err)

	out, err := f.checkout.PlaceOrder(ctx, customer1, usecase.PlaceOrderInput{CheckoutForm: validForm()})
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusPending, out.Status)
	assert.Equal(t, model.PaymentCOD, out.PaymentMethod)
	assertDecimal(t, "650000", out.Subtotal, "subtotal")
	assertDecimal(t, "0", out.ShippingFee, "shipping")
	assertDecimal(t, "65000", out.Tax, "tax")
	assertDecimal(t, "715000", out.TotalAmount, "total")
	require.Len(t, out.Items, 2)
	assert.Equal(t, "Chew Toy", out.Items[0].Name)

	assert.Equal(t, int64(8), f.store.stock(chewToy))
	assert.Equal(t, int64(2), f.store.stock(catTower))
	assert.Empty(t, f.store.lines())
	assert.Contains(t, f.store.orders, out.ID)
}

// The transaction's product repository refuses overlapping queries, so a
// multi-line order only succeeds when lines are priced one after another.
func TestCheckoutUsecase_PlaceOrder_PricesLinesOneAtATime(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	f.store.addProduct("PID000LEASH", "Leash", 80000, 4)

	for _, id := range []string{chewToy, catTower, "PID000LEASH"} {
		_, err := f.cart.AddToCart(ctx, customer1, usecase.AddCartInput{ProductID: id, Quantity: 1})
		require.NoError(t, err)
	}

	out, err := f.checkout.PlaceOrder(ctx, customer1, usecase.PlaceOrderInput{CheckoutForm: validForm()})
	require.NoError(t, err)
	require.Len(t, out.Items, 3)
	assertDecimal(t, "630000", out.Subtotal, "subtotal")
	assert.Equal(t, int64(3), f.store.stock("PID000LEASH"))
}

func TestCheckoutUsecase_PlaceOrder_InsufficientStockRollsBack(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := f.cart.AddToCart(ctx, customer1, usecase.AddCartInput{ProductID: chewToy, Quantity: 2})
	require.NoError(t, err)
	_, err = f.cart.AddToCart(ctx, customer1, usecase.AddCartInput{ProductID: catTower, Quantity: 3})
	require.NoError(t, err)

	// someone else bought the last towers after they were added
	p := f.store.products[catTower]
	p.StockQuantity = 1
	f.store.products[catTower] = p

	_, err = f.checkout.PlaceOrder(ctx, customer1, usecase.PlaceOrderInput{CheckoutForm: validForm()})
	assertHTTPStatus(t, err, http.StatusConflict)

	assert.Equal(t, int64(10), f.store.stock(chewToy), "earlier decrement must roll back")
	assert.Equal(t, int64(1), f.store.stock(catTower))
	assert.Len(t, f.store.lines(), 2)
	assert.Empty(t, f.store.orders)
}

func TestCheckoutUsecase_PlaceOrder_RefusesMissingProducts(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := f.cart.AddToCart(ctx, customer1, usecase.AddCartInput{ProductID: chewToy, Quantity: 1})
	require.NoError(t, err)
	delete(f.store.products, chewToy)

	_, err = f.checkout.PlaceOrder(ctx, customer1, usecase.PlaceOrderInput{CheckoutForm: validForm()})
	assertHTTPStatus(t, err, http.StatusConflict)
	assert.Empty(t, f.store.orders)
}

func TestCheckoutUsecase_PlaceOrder_IdempotencyKeyReturnsFirstOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := f.cart.AddToCart(ctx, customer1, usecase.AddCartInput{ProductID: chewToy, Quantity: 1})
	require.NoError(t, err)

	in := usecase.PlaceOrderInput{CheckoutForm: validForm(), IdempotencyKey: "key-1"}
	first, err := f.checkout.PlaceOrder(ctx, customer1, in)
	require.NoError(t, err)

	second, err := f.checkout.PlaceOrder(ctx, customer1, in)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.store.orders, 1)
	assert.Equal(t, int64(9), f.store.stock(chewToy))
}

func TestCheckoutUsecase_PlaceOrder_EmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.checkout.PlaceOrder(context.Background(), customer1, usecase.PlaceOrderInput{CheckoutForm: validForm()})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestCheckoutUsecase_PlaceOrder_ValidatesForm(t *testing.T) {
	f := newCheckoutFixture(t)

	form := validForm()
	form.Email = "not-an-email"
	form.ShippingAddress = ""
	form.PaymentMethod = "crypto"

	_, err := f.checkout.PlaceOrder(context.Background(), customer1, usecase.PlaceOrderInput{CheckoutForm: form})
	assertHTTPStatus(t, err, http.StatusBadRequest)

	he, _ := usecase.AsHTTPError(err)
	assert.Contains(t, he.Fields, "email")
	assert.Contains(t, he.Fields, "shipping_address")
	assert.Contains(t, he.Fields, "payment_method")
	assert.Equal(t, 0, f.tx.calls)
}

// compile-time check that the fake satisfies the port
var _ repo.TransactionManager = (*memTx)(nil)
