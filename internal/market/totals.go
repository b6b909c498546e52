package market

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/checkout-gateway/internal/order"
)

// OrderTotals computes order-level totals from the order's shipments without
// re-deriving per-item gateway breakdowns. Used by the update operation.
type OrderTotals struct {
	taxes    TaxCalculator
	shipping ShippingCalculator
	returns  order.ReturnCalculator
}

// NewOrderTotals creates an OrderTotals calculator.
func NewOrderTotals(taxes TaxCalculator, shipping ShippingCalculator, returns order.ReturnCalculator) *OrderTotals {
	return &OrderTotals{taxes: taxes, shipping: shipping, returns: returns}
}

// Totals sums extended prices, sales tax and shipping over all shipments.
// Total always includes tax, matching the gateway's amount semantics.
func (c *OrderTotals) Totals(ctx context.Context, o *order.Context, m Market) (order.Totals, error) {
	total := decimal.Zero
	taxTotal := decimal.Zero

	for _, shp := range o.Shipments {
		for _, item := range shp.LineItems {
			extended := order.ExtendedPrice(item)
			if item.ReturnQuantity > 0 {
				var err error
				extended, err = c.returns.ExtendedPrice(ctx, item, o.Currency)
				if err != nil {
					return order.Totals{}, errors.Wrap(err, "return extended price")
				}
			}
			tax, err := c.taxes.SalesTax(ctx, item, m, shp.Address, extended)
			if err != nil {
				return order.Totals{}, errors.Wrap(err, "sales tax")
			}
			taxTotal = taxTotal.Add(tax)
			if m.PricesIncludeTax {
				total = total.Add(extended)
			} else {
				total = total.Add(extended).Add(tax)
			}
		}

		cost, err := c.shipping.ShippingCost(ctx, shp, m)
		if err != nil {
			return order.Totals{}, errors.Wrap(err, "shipping cost")
		}
		tax, err := c.shipping.ShippingTax(ctx, shp, m)
		if err != nil {
			return order.Totals{}, errors.Wrap(err, "shipping tax")
		}
		taxTotal = taxTotal.Add(tax)
		if m.PricesIncludeTax {
			total = total.Add(cost)
		} else {
			total = total.Add(cost).Add(tax)
		}
	}

	return order.Totals{Total: total, TaxTotal: taxTotal}, nil
}
