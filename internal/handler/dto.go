package handler

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/checkout-gateway/internal/order"
)

// Inbound DTOs mirror the commerce order snapshot. Prices are decimal strings
// or numbers in major units.

type addressDTO struct {
	Line1       string `json:"line1,omitempty"`
	City        string `json:"city,omitempty"`
	PostalCode  string `json:"postalCode,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
}

func (a addressDTO) toAddress() order.Address {
	return order.Address{
		Line1:       a.Line1,
		City:        a.City,
		PostalCode:  a.PostalCode,
		CountryCode: a.CountryCode,
	}
}

type lineItemDTO struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Quantity       int             `json:"quantity"`
	PlacedPrice    decimal.Decimal `json:"placedPrice"`
	ReturnQuantity int             `json:"returnQuantity,omitempty"`
	Class          string          `json:"class,omitempty"`
}

func (l lineItemDTO) toLineItem() order.LineItem {
	return order.LineItem{
		ID:             l.ID,
		Name:           l.Name,
		Quantity:       l.Quantity,
		PlacedPrice:    l.PlacedPrice,
		ReturnQuantity: l.ReturnQuantity,
		Class:          l.Class,
	}
}

type shipmentDTO struct {
	Address   addressDTO    `json:"address"`
	LineItems []lineItemDTO `json:"lineItems"`
}

func (s shipmentDTO) toShipment() order.Shipment {
	items := make([]order.LineItem, len(s.LineItems))
	for i, l := range s.LineItems {
		items[i] = l.toLineItem()
	}
	return order.Shipment{Address: s.Address.toAddress(), LineItems: items}
}

type orderDTO struct {
	GroupID   string        `json:"orderGroupId"`
	MarketID  string        `json:"marketId"`
	Currency  string        `json:"currency"`
	Shipments []shipmentDTO `json:"shipments"`
}

func (o orderDTO) toContext() *order.Context {
	shipments := make([]order.Shipment, len(o.Shipments))
	for i, s := range o.Shipments {
		shipments[i] = s.toShipment()
	}
	return &order.Context{
		GroupID:   o.GroupID,
		MarketID:  o.MarketID,
		Currency:  o.Currency,
		Shipments: shipments,
	}
}

type paymentOrderDTO struct {
	Order                orderDTO          `json:"order"`
	Description          string            `json:"description,omitempty"`
	UserAgent            string            `json:"userAgent,omitempty"`
	Language             string            `json:"language,omitempty"`
	ConsumerProfileRef   string            `json:"consumerProfileRef,omitempty"`
	GeneratePaymentToken bool              `json:"generatePaymentToken,omitempty"`
	MetaData             map[string]string `json:"metaData,omitempty"`
}

type consumerSessionDTO struct {
	MarketID string `json:"marketId"`
	Email    string `json:"email,omitempty"`
	Msisdn   string `json:"msisdn,omitempty"`
	SSN      string `json:"ssn,omitempty"`
}

// settlementDTO is the shared request shape for captures and reversals. When
// Items is empty the whole shipment is settled.
type settlementDTO struct {
	MarketID        string        `json:"marketId"`
	Currency        string        `json:"currency"`
	Shipment        shipmentDTO   `json:"shipment"`
	Items           []lineItemDTO `json:"items,omitempty"`
	Description     string        `json:"description,omitempty"`
	ExcludeShipping bool          `json:"excludeShipping,omitempty"`
}

func (s settlementDTO) items(shp order.Shipment) []order.LineItem {
	if len(s.Items) == 0 {
		return shp.LineItems
	}
	items := make([]order.LineItem, len(s.Items))
	for i, l := range s.Items {
		items[i] = l.toLineItem()
	}
	return items
}

type cancelDTO struct {
	Description string `json:"description,omitempty"`
}

type updateDTO struct {
	Order orderDTO `json:"order"`
}

type shippingDetailsDTO struct {
	URL string `json:"url"`
}
