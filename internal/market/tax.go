package market

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/checkout-gateway/internal/order"
)

// ErrRateNotFound is returned by a RateSource when no rate is configured for
// a country/class pair. The percentage calculator treats it as a zero rate.
var ErrRateNotFound = errors.New("tax rate not found")

// RateSource looks up percentage tax rates by country code and tax class.
type RateSource interface {
	Rate(ctx context.Context, countryCode, taxClass string) (decimal.Decimal, error)
}

// StaticRates is a RateSource backed by an in-memory map keyed by
// "<country>/<class>". A "*" country or class acts as a wildcard fallback.
type StaticRates map[string]decimal.Decimal

func (s StaticRates) Rate(_ context.Context, countryCode, taxClass string) (decimal.Decimal, error) {
	for _, key := range []string{
		countryCode + "/" + taxClass,
		countryCode + "/*",
		"*/" + taxClass,
		"*/*",
	} {
		if rate, ok := s[key]; ok {
			return rate, nil
		}
	}
	return decimal.Zero, errors.Wrapf(ErrRateNotFound, "%s/%s", countryCode, taxClass)
}

var oneHundred = decimal.NewFromInt(100)

// PercentageCalculator is a TaxCalculator applying a flat percentage rate per
// tax jurisdiction and item class, resolved through a RateSource.
type PercentageCalculator struct {
	rates RateSource
}

// NewPercentageCalculator creates a PercentageCalculator over the given rate
// source.
func NewPercentageCalculator(rates RateSource) *PercentageCalculator {
	return &PercentageCalculator{rates: rates}
}

// TaxRate resolves the percentage rate for the item. The shipping address
// country takes precedence over the market's assigned country; a missing rate
// resolves to zero rather than an error.
func (c *PercentageCalculator) TaxRate(ctx context.Context, item order.LineItem, m Market, addr order.Address) (decimal.Decimal, error) {
	return c.rate(ctx, m, addr.CountryCode, item.Class)
}

// SalesTax computes the tax carried by extendedPrice. For tax-inclusive
// markets that is the portion embedded in the price
// (extended × rate / (100 + rate)); for tax-exclusive markets it is the
// amount added on top (extended × rate / 100).
func (c *PercentageCalculator) SalesTax(ctx context.Context, item order.LineItem, m Market, addr order.Address, extendedPrice decimal.Decimal) (decimal.Decimal, error) {
	rate, err := c.rate(ctx, m, addr.CountryCode, item.Class)
	if err != nil {
		return decimal.Zero, err
	}
	return taxOn(extendedPrice, rate, m.PricesIncludeTax), nil
}

func (c *PercentageCalculator) rate(ctx context.Context, m Market, addrCountry, class string) (decimal.Decimal, error) {
	country := ThreeLetterCountry(addrCountry)
	if country == "" && len(m.Countries) > 0 {
		country = ThreeLetterCountry(m.Countries[0])
	}
	rate, err := c.rates.Rate(ctx, country, class)
	if err != nil {
		if errors.Is(err, ErrRateNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, errors.Wrap(err, "tax rate lookup")
	}
	return rate, nil
}

// taxOn returns the tax portion of amount at the given percentage rate.
func taxOn(amount, rate decimal.Decimal, inclusive bool) decimal.Decimal {
	if rate.IsZero() {
		return decimal.Zero
	}
	if inclusive {
		return amount.Mul(rate).Div(oneHundred.Add(rate)).Round(2)
	}
	return amount.Mul(rate).Div(oneHundred).Round(2)
}
