package checkout

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/checkout-gateway/internal/market"
	"github.com/xenking/checkout-gateway/internal/money"
	"github.com/xenking/checkout-gateway/internal/order"
)

var tenThousand = decimal.NewFromInt(10_000)

// shippingItem synthesizes the single SHIPPING order item for a shipment,
// applying the market's tax-inclusive/exclusive rule the same way line items
// do. It is emitted even when shipping is free.
func (f *Factory) shippingItem(ctx context.Context, shp order.Shipment, m market.Market) (OrderItem, error) {
	cost, err := f.shipping.ShippingCost(ctx, shp, m)
	if err != nil {
		return OrderItem{}, errors.Wrap(err, "shipping cost")
	}
	tax, err := f.shipping.ShippingTax(ctx, shp, m)
	if err != nil {
		return OrderItem{}, errors.Wrap(err, "shipping tax")
	}

	amount := cost
	if !m.PricesIncludeTax {
		amount = cost.Add(tax)
	}

	unitPrice, err := money.FromDecimal(cost)
	if err != nil {
		return OrderItem{}, err
	}
	amountMinor, err := money.FromDecimal(amount)
	if err != nil {
		return OrderItem{}, err
	}
	vatMinor, err := money.FromDecimal(tax)
	if err != nil {
		return OrderItem{}, err
	}

	return OrderItem{
		Reference:    ShippingReference,
		Name:         "Shipping fee",
		Type:         ItemTypeShippingFee,
		Class:        ClassNotApplicable,
		Quantity:     1,
		QuantityUnit: quantityUnitPieces,
		UnitPrice:    unitPrice,
		Amount:       amountMinor,
		VatAmount:    vatMinor,
		VatPercent:   shippingVatPercent(cost, tax, m.PricesIncludeTax),
	}, nil
}

// shippingVatPercent derives the shipping VAT percentage in basis points.
// Free shipping is zero by definition; the division base in inclusive markets
// is the cost net of the embedded tax.
func shippingVatPercent(cost, tax decimal.Decimal, inclusive bool) int {
	if cost.IsZero() {
		return 0
	}
	base := cost
	if inclusive {
		base = cost.Sub(tax)
		if base.IsZero() {
			return 0
		}
	}
	return int(tax.Div(base).Mul(tenThousand).Round(0).IntPart())
}
