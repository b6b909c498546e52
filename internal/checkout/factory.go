package checkout

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/checkout-gateway/internal/market"
	"github.com/xenking/checkout-gateway/internal/money"
	"github.com/xenking/checkout-gateway/internal/order"
	"github.com/xenking/checkout-gateway/internal/refgen"
)

// TotalsCalculator computes order-level totals for the update operation
// without re-deriving per-item breakdowns.
type TotalsCalculator interface {
	Totals(ctx context.Context, o *order.Context, m market.Market) (order.Totals, error)
}

// Factory builds gateway request payloads. It is stateless and safe for
// concurrent use; every build operation is a pure function of its inputs
// aside from payee reference generation.
type Factory struct {
	taxes    market.TaxCalculator
	shipping market.ShippingCalculator
	returns  order.ReturnCalculator
	totals   TotalsCalculator
	config   ConfigProvider
	urls     *URLResolver
	refs     refgen.Generator
}

// NewFactory creates a Factory with explicit collaborators. Ambient request
// state (user agent, culture) is never read here; callers pass it per build.
func NewFactory(
	taxes market.TaxCalculator,
	shipping market.ShippingCalculator,
	returns order.ReturnCalculator,
	totals TotalsCalculator,
	config ConfigProvider,
	urls *URLResolver,
	refs refgen.Generator,
) *Factory {
	return &Factory{
		taxes:    taxes,
		shipping: shipping,
		returns:  returns,
		totals:   totals,
		config:   config,
		urls:     urls,
		refs:     refs,
	}
}

// PaymentOrderParams carries the per-request inputs that the original flow
// read from ambient request state, plus optional payer identification.
type PaymentOrderParams struct {
	Description          string
	UserAgent            string
	Language             string
	ConsumerProfileRef   string
	GeneratePaymentToken bool
	MetaData             map[string]string
}

// BuildPaymentOrder assembles the payment-order creation request: line items
// of the order's first shipment, the synthetic shipping item, aggregated
// totals and resolved merchant URLs.
func (f *Factory) BuildPaymentOrder(ctx context.Context, o *order.Context, m *market.Market, p PaymentOrderParams) (*PaymentOrderRequest, error) {
	if o == nil {
		return nil, ErrMissingOrder
	}
	if m == nil {
		return nil, ErrMissingMarket
	}
	if m.TwoLetterCountry() == "" {
		return nil, &ConfigurationError{MarketID: m.ID, Reason: "no country assigned"}
	}

	shipment := o.FirstShipment()
	if shipment == nil {
		return nil, errors.Wrap(ErrMissingShipment, o.GroupID)
	}

	items, err := f.orderItems(ctx, *m, o.Currency, shipment.Address, shipment.LineItems)
	if err != nil {
		return nil, err
	}
	shippingItem, err := f.shippingItem(ctx, *shipment, *m)
	if err != nil {
		return nil, err
	}
	items = append(items, shippingItem)

	cfg, err := f.config.Configuration(m.ID)
	if err != nil {
		return nil, err
	}
	urls, err := f.urls.MerchantURLs(cfg, o.GroupID)
	if err != nil {
		return nil, err
	}

	amount, vat := sumItems(items)

	language := p.Language
	if language == "" {
		language = m.DefaultLanguage
	}

	var payer *Payer
	if p.ConsumerProfileRef != "" {
		payer = &Payer{ConsumerProfileRef: p.ConsumerProfileRef}
	}

	// The order group id always travels in metadata so gateway callbacks can
	// be correlated back to the order.
	meta := make(map[string]string, len(p.MetaData)+1)
	for k, v := range p.MetaData {
		meta[k] = v
	}
	meta["orderGroupId"] = o.GroupID

	return &PaymentOrderRequest{
		Operation:            OperationPurchase,
		Currency:             o.Currency,
		Amount:               amount,
		VatAmount:            vat,
		Description:          p.Description,
		UserAgent:            p.UserAgent,
		Language:             language,
		GeneratePaymentToken: p.GeneratePaymentToken,
		URLs:                 urls,
		PayeeInfo: PayeeInfo{
			PayeeID:        cfg.MerchantID,
			PayeeReference: f.refs.Next(),
		},
		Payer:      payer,
		MetaData:   meta,
		OrderItems: items,
	}, nil
}

// ConsumerSessionParams carries optional payer identification for consumer
// session initiation.
type ConsumerSessionParams struct {
	Email  string
	Msisdn string
	SSN    string
}

// BuildConsumerSession assembles the consumer identification request. The
// consumer country is derived from the market's default culture; the
// national-identifier block appears only when an SSN is supplied.
func (f *Factory) BuildConsumerSession(m *market.Market, p ConsumerSessionParams) (*ConsumerSessionRequest, error) {
	if m == nil {
		return nil, ErrMissingMarket
	}
	region, err := market.RegionFromCulture(m.DefaultLanguage)
	if err != nil {
		return nil, &ConfigurationError{MarketID: m.ID, Reason: "default language has no region: " + m.DefaultLanguage}
	}

	var national *NationalIdentifier
	if p.SSN != "" {
		national = &NationalIdentifier{
			SocialSecurityNumber: p.SSN,
			CountryCode:          region,
		}
	}

	return &ConsumerSessionRequest{
		Operation:           OperationConsumerSession,
		Language:            m.DefaultLanguage,
		ConsumerCountryCode: region,
		Email:               p.Email,
		Msisdn:              p.Msisdn,
		NationalIdentifier:  national,
	}, nil
}

// CaptureParams controls capture and reversal item mapping. SkipShipping
// leaves out the synthetic shipping item; the zero value includes it.
type CaptureParams struct {
	Description  string
	SkipShipping bool
}

// BuildCapture assembles a capture request for a subset of line items, e.g. a
// partial capture of one shipment.
func (f *Factory) BuildCapture(ctx context.Context, items []order.LineItem, m *market.Market, shp *order.Shipment, currency string, p CaptureParams) (*CaptureRequest, error) {
	mapped, err := f.settlementItems(ctx, items, m, shp, currency, p.SkipShipping)
	if err != nil {
		return nil, err
	}
	amount, vat := sumItems(mapped)

	description := p.Description
	if description == "" {
		description = "Capturing payment."
	}

	return &CaptureRequest{
		Operation:      OperationCapture,
		Amount:         amount,
		VatAmount:      vat,
		Description:    description,
		PayeeReference: f.refs.Next(),
		OrderItems:     mapped,
	}, nil
}

// BuildReversal assembles a reversal request, typically for a return subset.
func (f *Factory) BuildReversal(ctx context.Context, items []order.LineItem, m *market.Market, shp *order.Shipment, currency string, p CaptureParams) (*ReversalRequest, error) {
	mapped, err := f.settlementItems(ctx, items, m, shp, currency, p.SkipShipping)
	if err != nil {
		return nil, err
	}
	amount, vat := sumItems(mapped)

	description := p.Description
	if description == "" {
		description = "Reversing payment."
	}

	return &ReversalRequest{
		Operation:      OperationReversal,
		Amount:         amount,
		VatAmount:      vat,
		Description:    description,
		PayeeReference: f.refs.Next(),
		OrderItems:     mapped,
	}, nil
}

// settlementItems is the shared item mapping for capture and reversal.
func (f *Factory) settlementItems(ctx context.Context, items []order.LineItem, m *market.Market, shp *order.Shipment, currency string, skipShipping bool) ([]OrderItem, error) {
	if m == nil {
		return nil, ErrMissingMarket
	}
	if shp == nil {
		return nil, ErrMissingShipment
	}

	mapped, err := f.orderItems(ctx, *m, currency, shp.Address, items)
	if err != nil {
		return nil, err
	}
	if !skipShipping {
		shippingItem, err := f.shippingItem(ctx, *shp, *m)
		if err != nil {
			return nil, err
		}
		mapped = append(mapped, shippingItem)
	}
	return mapped, nil
}

// BuildCancel assembles a cancel request. No order mapping is involved.
func (f *Factory) BuildCancel(description string) *CancelRequest {
	if description == "" {
		description = "Cancelling purchase order."
	}
	return &CancelRequest{
		Operation:      OperationCancel,
		Description:    description,
		PayeeReference: f.refs.Next(),
	}
}

// BuildAbort assembles an abort request.
func (f *Factory) BuildAbort() *AbortRequest {
	return &AbortRequest{
		Operation:      OperationAbort,
		AbortReason:    "CancelledByConsumer",
		PayeeReference: f.refs.Next(),
	}
}

// BuildUpdate assembles an update request from current order totals, without
// re-deriving line items.
func (f *Factory) BuildUpdate(ctx context.Context, o *order.Context, m *market.Market) (*UpdateRequest, error) {
	if o == nil {
		return nil, ErrMissingOrder
	}
	if m == nil {
		return nil, ErrMissingMarket
	}

	totals, err := f.totals.Totals(ctx, o, *m)
	if err != nil {
		return nil, errors.Wrap(err, "order totals")
	}
	amount, err := money.FromDecimal(totals.Total)
	if err != nil {
		return nil, err
	}
	vat, err := money.FromDecimal(totals.TaxTotal)
	if err != nil {
		return nil, err
	}

	return &UpdateRequest{
		Operation: OperationUpdate,
		Amount:    amount,
		VatAmount: vat,
	}, nil
}
