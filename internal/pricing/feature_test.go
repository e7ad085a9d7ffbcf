package pricing_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"petshop/internal/pricing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"
)

type pricingTestContext struct {
	engine  *pricing.CartPricingEngine
	catalog *mapLookup
	lines   []pricing.Line
	result  pricing.Result
	err     error
}

func (c *pricingTestContext) reset() {
	c.engine = pricing.NewCartPricingEngine(pricing.DefaultRules())
	c.catalog = &mapLookup{products: map[string]pricing.ProductSnapshot{}}
	c.lines = nil
	c.result = pricing.Result{}
	c.err = nil
}

func (c *pricingTestContext) aProductPricedWithInStock(id string, price, stock int) error {
	c.catalog.products[id] = product(id, int64(price), int64(stock))
	return nil
}

func (c *pricingTestContext) theCartContainsOf(qty int, id string) error {
	for i := range c.lines {
		if c.lines[i].ProductID == id {
			c.lines[i].Quantity += int64(qty)
			return nil
		}
	}
	c.lines = append(c.lines, pricing.Line{ProductID: id, Quantity: int64(qty)})
	return nil
}

func (c *pricingTestContext) theCartIsEmpty() error {
	c.lines = nil
	return nil
}

func (c *pricingTestContext) iPriceTheCart() error {
	c.result, c.err = c.engine.ComputeTotal(context.Background(), c.lines, c.catalog)
	return c.err
}

func (c *pricingTestContext) iAddOfToTheCart(qty int, id string) error {
	_, c.err = c.engine.ValidateAddToCart(context.Background(), c.catalog, id, int64(qty))
	if c.err != nil {
		return nil
	}
	return c.theCartContainsOf(qty, id)
}

func (c *pricingTestContext) iSetTheQuantityOfTo(id string, qty int) error {
	for i := range c.lines {
		if c.lines[i].ProductID != id {
			continue
		}
		switch pricing.ReconcileQuantityUpdate(int64(qty)) {
		case pricing.ActionRemove:
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		case pricing.ActionUpdate:
			c.lines[i].Quantity = int64(qty)
		}
		return nil
	}
	return fmt.Errorf("no line for %q", id)
}

func (c *pricingTestContext) addingFailsWith(msg string) error {
	if c.err == nil {
		return errors.New("expected adding to fail")
	}
	if !strings.Contains(c.err.Error(), msg) {
		return fmt.Errorf("expected error containing %q, got %q", msg, c.err.Error())
	}
	return nil
}

func (c *pricingTestContext) theCartHasNoLineFor(id string) error {
	for _, l := range c.lines {
		if l.ProductID == id {
			return fmt.Errorf("line for %q still present with quantity %d", id, l.Quantity)
		}
	}
	return nil
}

func (c *pricingTestContext) theCartHasLines(n int) error {
	if len(c.lines) != n {
		return fmt.Errorf("expected %d lines, got %d", n, len(c.lines))
	}
	return nil
}

func expectAmount(name string, want int, got decimal.Decimal) error {
	if !decimal.NewFromInt(int64(want)).Equal(got) {
		return fmt.Errorf("expected %s %d, got %s", name, want, got.String())
	}
	return nil
}

func (c *pricingTestContext) theSubtotalIs(v int) error {
	return expectAmount("subtotal", v, c.result.Subtotal)
}

func (c *pricingTestContext) theShippingFeeIs(v int) error {
	return expectAmount("shipping fee", v, c.result.ShippingFee)
}

func (c *pricingTestContext) theTaxIs(v int) error {
	return expectAmount("tax", v, c.result.Tax)
}

func (c *pricingTestContext) theTotalIs(v int) error {
	return expectAmount("total", v, c.result.Total)
}

func (c *pricingTestContext) theItemCountIs(v int) error {
	if c.result.ItemCount != int64(v) {
		return fmt.Errorf("expected item count %d, got %d", v, c.result.ItemCount)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &pricingTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^a product "([^"]*)" priced (\d+) with (\d+) in stock$`, tc.aProductPricedWithInStock)
	ctx.Step(`^the cart contains (\d+) of "([^"]*)"$`, tc.theCartContainsOf)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)

	ctx.Step(`^I price the cart$`, tc.iPriceTheCart)
	ctx.Step(`^I add (\d+) of "([^"]*)" to the cart$`, tc.iAddOfToTheCart)
	ctx.Step(`^I set the quantity of "([^"]*)" to (-?\d+)$`, tc.iSetTheQuantityOfTo)

	ctx.Step(`^adding fails with "([^"]*)"$`, tc.addingFailsWith)
	ctx.Step(`^the cart has no line for "([^"]*)"$`, tc.theCartHasNoLineFor)
	ctx.Step(`^the cart has (\d+) lines?$`, tc.theCartHasLines)
	ctx.Step(`^the subtotal is (\d+)$`, tc.theSubtotalIs)
	ctx.Step(`^the shipping fee is (\d+)$`, tc.theShippingFeeIs)
	ctx.Step(`^the tax is (\d+)$`, tc.theTaxIs)
	ctx.Step(`^the total is (\d+)$`, tc.theTotalIs)
	ctx.Step(`^the item count is (\d+)$`, tc.theItemCountIs)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
