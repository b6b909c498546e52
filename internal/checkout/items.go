package checkout

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/checkout-gateway/internal/market"
	"github.com/xenking/checkout-gateway/internal/money"
	"github.com/xenking/checkout-gateway/internal/order"
)

// orderItems maps line items to gateway order items, preserving input order.
// For return flows (ReturnQuantity > 0) the quantity and extended price come
// from return data instead of the original order data.
func (f *Factory) orderItems(ctx context.Context, m market.Market, currency string, addr order.Address, items []order.LineItem) ([]OrderItem, error) {
	out := make([]OrderItem, 0, len(items))
	for _, item := range items {
		mapped, err := f.orderItem(ctx, m, currency, addr, item)
		if err != nil {
			return nil, errors.Wrapf(err, "line item %s", item.ID)
		}
		out = append(out, mapped)
	}
	return out, nil
}

func (f *Factory) orderItem(ctx context.Context, m market.Market, currency string, addr order.Address, item order.LineItem) (OrderItem, error) {
	quantity := item.Quantity
	extended := order.ExtendedPrice(item)
	if item.ReturnQuantity > 0 {
		quantity = item.ReturnQuantity
		var err error
		extended, err = f.returns.ExtendedPrice(ctx, item, currency)
		if err != nil {
			return OrderItem{}, errors.Wrap(err, "return extended price")
		}
	}

	salesTax, err := f.taxes.SalesTax(ctx, item, m, addr, extended)
	if err != nil {
		return OrderItem{}, errors.Wrap(err, "sales tax")
	}

	// VAT percent always derives from the authoritative tax rate. Dividing
	// vatAmount by the extended amount is undefined for zero-priced items.
	rate, err := f.taxes.TaxRate(ctx, item, m, addr)
	if err != nil {
		return OrderItem{}, errors.Wrap(err, "tax rate")
	}
	vatPercent := money.BasisPoints(rate)

	amount := extended
	if !m.PricesIncludeTax {
		amount = extended.Add(salesTax)
	}

	unitPrice, err := money.FromDecimal(item.PlacedPrice)
	if err != nil {
		return OrderItem{}, err
	}
	amountMinor, err := money.FromDecimal(amount)
	if err != nil {
		return OrderItem{}, err
	}
	vatMinor, err := money.FromDecimal(salesTax)
	if err != nil {
		return OrderItem{}, err
	}

	class := item.Class
	if class == "" {
		class = ClassNotApplicable
	}

	return OrderItem{
		Reference:    item.ID,
		Name:         item.Name,
		Type:         ItemTypeProduct,
		Class:        class,
		Quantity:     quantity,
		QuantityUnit: quantityUnitPieces,
		UnitPrice:    unitPrice,
		Amount:       amountMinor,
		VatAmount:    vatMinor,
		VatPercent:   vatPercent,
	}, nil
}
