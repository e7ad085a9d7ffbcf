// Package pricing prices carts and validates cart quantities against stock.
//
// Prices are read fresh through a ProductLookup on every call; nothing is
// cached between calls, so two computations over unchanged storage return the
// same result.
package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrPersistenceFailure = errors.New("persistence failure")
	ErrInvalidQuantity    = errors.New("invalid quantity")
)

const defaultMaxConcurrentLookups = 8

// Line is one product and quantity pair in a cart.
type Line struct {
	ProductID string
	Quantity  int64
}

// ProductSnapshot is the product state at pricing time.
type ProductSnapshot struct {
	ProductID     string
	Name          string
	UnitPrice     decimal.Decimal
	StockQuantity int64
	IsActive      bool
}

// ProductLookup must return ErrProductNotFound (or wrap it) for unknown ids.
type ProductLookup interface {
	GetProduct(ctx context.Context, productID string) (ProductSnapshot, error)
}

// LookupFunc adapts a function to ProductLookup.
type LookupFunc func(ctx context.Context, productID string) (ProductSnapshot, error)

func (f LookupFunc) GetProduct(ctx context.Context, productID string) (ProductSnapshot, error) {
	return f(ctx, productID)
}

type PricedLine struct {
	Line
	Product   ProductSnapshot
	LineTotal decimal.Decimal
}

// Result is derived on every read and never persisted.
type Result struct {
	Subtotal    decimal.Decimal
	ShippingFee decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
	// sum of quantities over every line, priced or skipped
	ItemCount int64
	Lines     []PricedLine
	// lines whose product lookup missed; excluded from Subtotal
	SkippedProductIDs []string
}

type QuantityAction int

const (
	ActionUpdate QuantityAction = iota
	ActionRemove
)

type Option func(*CartPricingEngine)

func WithMaxConcurrentLookups(n int) Option {
	return func(e *CartPricingEngine) {
		if n > 0 {
			e.maxConcurrent = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *CartPricingEngine) {
		if l != nil {
			e.log = l
		}
	}
}

type CartPricingEngine struct {
	rules         Rules
	maxConcurrent int
	log           *zap.Logger
}

func NewCartPricingEngine(rules Rules, opts ...Option) *CartPricingEngine {
	e := &CartPricingEngine{
		rules:         rules,
		maxConcurrent: defaultMaxConcurrentLookups,
		log:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sequential returns a copy that looks products up one at a time. Lookups
// bound to a database transaction share one connection and must use it.
func (e *CartPricingEngine) Sequential() *CartPricingEngine {
	c := *e
	c.maxConcurrent = 1
	return &c
}

// ComputeSubtotal sums unitPrice*quantity over lines whose product exists.
func (e *CartPricingEngine) ComputeSubtotal(ctx context.Context, lines []Line, lookup ProductLookup) (decimal.Decimal, error) {
	priced, _, err := e.priceLines(ctx, lines, lookup)
	if err != nil {
		return decimal.Zero, err
	}
	return sumLines(priced), nil
}

func (e *CartPricingEngine) ComputeShippingFee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.Sign() <= 0 {
		return decimal.Zero
	}
	if subtotal.GreaterThanOrEqual(e.rules.FreeShippingThreshold) {
		return decimal.Zero
	}
	return e.rules.FlatShippingFee
}

func (e *CartPricingEngine) ComputeTax(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.Sign() <= 0 {
		return decimal.Zero
	}
	return subtotal.Mul(e.rules.TaxRate)
}

// ComputeTotal prices the lines and derives shipping, tax and total from the subtotal.
func (e *CartPricingEngine) ComputeTotal(ctx context.Context, lines []Line, lookup ProductLookup) (Result, error) {
	priced, skipped, err := e.priceLines(ctx, lines, lookup)
	if err != nil {
		return Result{}, err
	}

	var itemCount int64
	for _, l := range lines {
		itemCount += l.Quantity
	}

	subtotal := sumLines(priced)
	shipping := e.ComputeShippingFee(subtotal)
	tax := e.ComputeTax(subtotal)

	return Result{
		Subtotal:          subtotal,
		ShippingFee:       shipping,
		Tax:               tax,
		Total:             subtotal.Add(shipping).Add(tax),
		ItemCount:         itemCount,
		Lines:             priced,
		SkippedProductIDs: skipped,
	}, nil
}

// ValidateAddToCart looks the product up and checks the requested quantity against its stock.
// Inactive products cannot be added and report ErrProductNotFound.
func (e *CartPricingEngine) ValidateAddToCart(ctx context.Context, lookup ProductLookup, productID string, requested int64) (ProductSnapshot, error) {
	if requested < 1 {
		return ProductSnapshot{}, ErrInvalidQuantity
	}

	p, err := lookup.GetProduct(ctx, productID)
	if errors.Is(err, ErrProductNotFound) {
		return ProductSnapshot{}, ErrProductNotFound
	}
	if err != nil {
		return ProductSnapshot{}, fmt.Errorf("%w: product %s: %w", ErrPersistenceFailure, productID, err)
	}
	if !p.IsActive {
		return ProductSnapshot{}, ErrProductNotFound
	}

	if err := CheckStock(p, requested); err != nil {
		return ProductSnapshot{}, err
	}
	return p, nil
}

// CheckStock fails when the product holds fewer units than requested.
func CheckStock(p ProductSnapshot, requested int64) error {
	if requested < 1 {
		return ErrInvalidQuantity
	}
	if p.StockQuantity < requested {
		return ErrInsufficientStock
	}
	return nil
}

// ReconcileQuantityUpdate maps a requested quantity to the action on the line.
// A line never stays at zero or below.
func ReconcileQuantityUpdate(newQuantity int64) QuantityAction {
	if newQuantity <= 0 {
		return ActionRemove
	}
	return ActionUpdate
}

// priceLines looks products up concurrently. Output order follows input order.
func (e *CartPricingEngine) priceLines(ctx context.Context, lines []Line, lookup ProductLookup) ([]PricedLine, []string, error) {
	if len(lines) == 0 {
		return []PricedLine{}, nil, nil
	}

	slots := make([]PricedLine, len(lines))
	found := make([]bool, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrent)

	for i := range lines {
		g.Go(func() error {
			l := lines[i]
			p, err := lookup.GetProduct(gctx, l.ProductID)
			if errors.Is(err, ErrProductNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("%w: product %s: %w", ErrPersistenceFailure, l.ProductID, err)
			}

			slots[i] = PricedLine{
				Line:      l,
				Product:   p,
				LineTotal: p.UnitPrice.Mul(decimal.NewFromInt(l.Quantity)),
			}
			found[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	priced := make([]PricedLine, 0, len(lines))
	var skipped []string
	for i, ok := range found {
		if ok {
			priced = append(priced, slots[i])
			continue
		}
		skipped = append(skipped, lines[i].ProductID)
		e.log.Warn("cart line skipped: product not found",
			zap.String("product_id", lines[i].ProductID),
			zap.Int64("quantity", lines[i].Quantity),
		)
	}

	return priced, skipped, nil
}

func sumLines(lines []PricedLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal)
	}
	return total
}
