package pricing

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Rules holds the shipping and tax parameters.
type Rules struct {
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	TaxRate               decimal.Decimal
}

func DefaultRules() Rules {
	return Rules{
		FreeShippingThreshold: decimal.NewFromInt(500000),
		FlatShippingFee:       decimal.NewFromInt(30000),
		TaxRate:               decimal.RequireFromString("0.10"),
	}
}

var ErrInvalidRules = errors.New("invalid pricing rules")

// values are strings so decimals are parsed exactly, never through float64
type rulesFile struct {
	FreeShippingThreshold string `yaml:"free_shipping_threshold"`
	FlatShippingFee       string `yaml:"flat_shipping_fee"`
	TaxRate               string `yaml:"tax_rate"`
}

// LoadRules reads a YAML rules file. An empty path yields DefaultRules.
func LoadRules(path string) (Rules, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read pricing rules %s: %w", path, err)
	}
	return ParseRules(data)
}

// ParseRules overlays the keys present in data onto DefaultRules.
func ParseRules(data []byte) (Rules, error) {
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Rules{}, fmt.Errorf("%w: %w", ErrInvalidRules, err)
	}

	r := DefaultRules()
	var err error
	if r.FreeShippingThreshold, err = overlay(r.FreeShippingThreshold, f.FreeShippingThreshold, "free_shipping_threshold"); err != nil {
		return Rules{}, err
	}
	if r.FlatShippingFee, err = overlay(r.FlatShippingFee, f.FlatShippingFee, "flat_shipping_fee"); err != nil {
		return Rules{}, err
	}
	if r.TaxRate, err = overlay(r.TaxRate, f.TaxRate, "tax_rate"); err != nil {
		return Rules{}, err
	}

	if r.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return Rules{}, fmt.Errorf("%w: tax_rate must be <= 1", ErrInvalidRules)
	}
	return r, nil
}

func overlay(def decimal.Decimal, raw string, key string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %w", ErrInvalidRules, key, err)
	}
	if v.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s must be >= 0", ErrInvalidRules, key)
	}
	return v, nil
}
