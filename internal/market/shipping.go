package market

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xenking/checkout-gateway/internal/order"
)

// ShippingTaxClass is the tax class used when looking up shipping fee rates.
const ShippingTaxClass = "SHIPPING"

// FlatRateShipping is a ShippingCalculator charging a fixed fee per market,
// taxed through the same rate source as line items.
type FlatRateShipping struct {
	fees  map[string]decimal.Decimal
	rates RateSource
}

// NewFlatRateShipping creates a FlatRateShipping from per-market fees in
// major units. Markets without an entry ship for free.
func NewFlatRateShipping(fees map[string]decimal.Decimal, rates RateSource) *FlatRateShipping {
	return &FlatRateShipping{fees: fees, rates: rates}
}

func (s *FlatRateShipping) ShippingCost(_ context.Context, _ order.Shipment, m Market) (decimal.Decimal, error) {
	return s.fees[m.ID], nil
}

func (s *FlatRateShipping) ShippingTax(ctx context.Context, shp order.Shipment, m Market) (decimal.Decimal, error) {
	cost := s.fees[m.ID]
	if cost.IsZero() {
		return decimal.Zero, nil
	}
	country := ThreeLetterCountry(shp.Address.CountryCode)
	if country == "" && len(m.Countries) > 0 {
		country = ThreeLetterCountry(m.Countries[0])
	}
	rate, err := s.rates.Rate(ctx, country, ShippingTaxClass)
	if err != nil {
		// Unconfigured shipping rate means untaxed shipping.
		return decimal.Zero, nil
	}
	return taxOn(cost, rate, m.PricesIncludeTax), nil
}
