// Package checkout assembles the normalized request payloads for the payment
// order gateway: per-item pricing and tax breakdowns, a synthetic shipping
// item, aggregated totals and fully resolved merchant URLs.
package checkout

import (
	"github.com/xenking/checkout-gateway/internal/money"
)

// Operation identifies what a gateway request is supposed to perform.
type Operation string

const (
	OperationPurchase        Operation = "Purchase"
	OperationCapture         Operation = "Capture"
	OperationReversal        Operation = "Reversal"
	OperationCancel          Operation = "Cancel"
	OperationAbort           Operation = "Abort"
	OperationUpdate          Operation = "Update"
	OperationConsumerSession Operation = "InitiateConsumerSession"
)

// ItemType classifies an order item for the gateway.
type ItemType string

const (
	ItemTypeProduct     ItemType = "PRODUCT"
	ItemTypeShippingFee ItemType = "SHIPPING_FEE"
)

// ShippingReference is the reserved item reference for the synthetic shipping
// fee item. Exactly one such item exists per shipment per request.
const ShippingReference = "SHIPPING"

// ClassNotApplicable is the item class of non-product items.
const ClassNotApplicable = "NOTAPPLICABLE"

// quantityUnitPieces is the only quantity unit the assembly emits.
const quantityUnitPieces = "PCS"

// OrderItem is one gateway-shaped order line. All amounts are integer minor
// units; VatPercent is in basis points (percent × 100).
type OrderItem struct {
	Reference           string
	Name                string
	Type                ItemType
	Class               string
	Quantity            int
	QuantityUnit        string
	UnitPrice           money.Amount
	Amount              money.Amount
	VatAmount           money.Amount
	VatPercent          int
	DiscountPrice       money.Amount
	DiscountDescription string
	ImageURL            string
	ItemURL             string
	Description         string
}

// MerchantURLs is the resolved merchant URL set for a payment order. Empty
// fields are omitted on the wire.
type MerchantURLs struct {
	HostURLs          []string
	CompleteURL       string
	TermsOfServiceURL string
	CancelURL         string
	PaymentURL        string
	CallbackURL       string
	LogoURL           string
}

// PayeeInfo identifies the merchant and the request to the gateway.
type PayeeInfo struct {
	PayeeID        string
	PayeeReference string
}

// Payer carries a gateway-side consumer profile reference.
type Payer struct {
	ConsumerProfileRef string
}

// PaymentOrderRequest is the payment-order creation payload.
type PaymentOrderRequest struct {
	Operation            Operation
	Currency             string
	Amount               money.Amount
	VatAmount            money.Amount
	Description          string
	UserAgent            string
	Language             string
	GeneratePaymentToken bool
	URLs                 MerchantURLs
	PayeeInfo            PayeeInfo
	Payer                *Payer
	MetaData             map[string]string
	OrderItems           []OrderItem
}

// CaptureRequest captures a previously authorized payment, fully or for a
// subset of line items.
type CaptureRequest struct {
	Operation      Operation
	Amount         money.Amount
	VatAmount      money.Amount
	Description    string
	PayeeReference string
	OrderItems     []OrderItem
}

// ReversalRequest reverses a captured payment, fully or for a return subset.
type ReversalRequest struct {
	Operation      Operation
	Amount         money.Amount
	VatAmount      money.Amount
	Description    string
	PayeeReference string
	OrderItems     []OrderItem
}

// CancelRequest cancels a not-yet-captured payment order.
type CancelRequest struct {
	Operation      Operation
	Description    string
	PayeeReference string
}

// AbortRequest aborts an in-progress payment order.
type AbortRequest struct {
	Operation      Operation
	AbortReason    string
	PayeeReference string
}

// UpdateRequest updates the order amounts of an open payment order.
type UpdateRequest struct {
	Operation Operation
	Amount    money.Amount
	VatAmount money.Amount
}

// NationalIdentifier identifies a consumer by national id or SSN.
type NationalIdentifier struct {
	SocialSecurityNumber string
	CountryCode          string
}

// ConsumerSessionRequest initiates a gateway consumer identification session
// prior to checkout.
type ConsumerSessionRequest struct {
	Operation           Operation
	Language            string
	ConsumerCountryCode string
	Email               string
	Msisdn              string
	NationalIdentifier  *NationalIdentifier
}

// sumItems aggregates item amounts. By construction the request totals always
// equal the sum of their items.
func sumItems(items []OrderItem) (amount, vat money.Amount) {
	for _, it := range items {
		amount += it.Amount
		vat += it.VatAmount
	}
	return amount, vat
}
