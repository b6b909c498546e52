// Package market models the market/currency context of an order and the tax
// and shipping calculators the request factory depends on.
package market

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/checkout-gateway/internal/order"
)

// Market describes a sales market: assigned countries, price/tax mode and the
// default culture used for gateway language fields.
type Market struct {
	ID               string
	Countries        []string
	PricesIncludeTax bool
	DefaultLanguage  string
	Currency         string
}

// TwoLetterCountry resolves the market's first assigned country to an ISO
// 3166-1 alpha-2 code. It returns an empty string when the market has no
// resolvable country; callers treat that as a configuration error.
func (m Market) TwoLetterCountry() string {
	if len(m.Countries) == 0 {
		return ""
	}
	return TwoLetterCountry(m.Countries[0])
}

// ErrUnknownMarket is returned by a Source for an unconfigured market id.
var ErrUnknownMarket = errors.New("unknown market")

// Source resolves markets by id.
type Source interface {
	Market(id string) (*Market, error)
}

// StaticSource is a Source backed by an in-memory map, keyed by market id.
type StaticSource map[string]Market

func (s StaticSource) Market(id string) (*Market, error) {
	m, ok := s[id]
	if !ok {
		return nil, errors.Wrap(ErrUnknownMarket, id)
	}
	return &m, nil
}

// TaxCalculator computes sales tax for a line item in a market. SalesTax
// returns the tax carried by extendedPrice: the embedded portion for
// tax-inclusive markets, the amount to add on top for tax-exclusive ones.
// TaxRate returns the authoritative percentage rate (e.g. 25 for 25%);
// VAT percentages must always derive from this rate, never from dividing
// amounts.
type TaxCalculator interface {
	SalesTax(ctx context.Context, item order.LineItem, m Market, addr order.Address, extendedPrice decimal.Decimal) (decimal.Decimal, error)
	TaxRate(ctx context.Context, item order.LineItem, m Market, addr order.Address) (decimal.Decimal, error)
}

// ShippingCalculator computes the shipping fee and its tax for a shipment.
type ShippingCalculator interface {
	ShippingCost(ctx context.Context, shp order.Shipment, m Market) (decimal.Decimal, error)
	ShippingTax(ctx context.Context, shp order.Shipment, m Market) (decimal.Decimal, error)
}
