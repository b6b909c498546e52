// Package order holds the transient commerce-order context handed to the
// request factory. Nothing here is persisted; every value lives for a single
// build call.
package order

import (
	"context"

	"github.com/shopspring/decimal"
)

// Address is the shipping address of a shipment, used for tax jurisdiction.
type Address struct {
	Line1       string
	City        string
	PostalCode  string
	CountryCode string
}

// LineItem is a single purchasable line of a shipment. PlacedPrice is the
// unit price in major currency units. A non-zero ReturnQuantity marks the
// item as part of a return flow: quantities and extended prices are then
// taken from return data instead of the original order data.
type LineItem struct {
	ID             string
	Name           string
	Quantity       int
	PlacedPrice    decimal.Decimal
	ReturnQuantity int
	Class          string
}

// Shipment groups line items delivered to one address.
type Shipment struct {
	Address   Address
	LineItems []LineItem
}

// Context is the in-progress order handed to the request factory.
type Context struct {
	GroupID   string
	MarketID  string
	Currency  string
	Shipments []Shipment
}

// FirstShipment returns the order's first shipment, or nil when the order has
// none.
func (c *Context) FirstShipment() *Shipment {
	if len(c.Shipments) == 0 {
		return nil
	}
	return &c.Shipments[0]
}

// Totals holds order-level totals as computed by a TotalsCalculator.
type Totals struct {
	Total    decimal.Decimal
	TaxTotal decimal.Decimal
}

// ReturnCalculator computes the extended price of a returned line item.
type ReturnCalculator interface {
	ExtendedPrice(ctx context.Context, item LineItem, currency string) (decimal.Decimal, error)
}

// StandardReturnCalculator prices returns at the originally placed unit price
// times the returned quantity.
type StandardReturnCalculator struct{}

func (StandardReturnCalculator) ExtendedPrice(_ context.Context, item LineItem, _ string) (decimal.Decimal, error) {
	return item.PlacedPrice.Mul(decimal.NewFromInt(int64(item.ReturnQuantity))), nil
}

// ExtendedPrice is the standard extended price of a line item: quantity times
// placed unit price.
func ExtendedPrice(item LineItem) decimal.Decimal {
	return item.PlacedPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
}
