package checkout

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/checkout-gateway/internal/market"
	"github.com/xenking/checkout-gateway/internal/order"
	"github.com/xenking/checkout-gateway/internal/refgen"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// --- Fixtures ---

func sweMarket(inclusive bool) *market.Market {
	return &market.Market{
		ID:               "SWE",
		Countries:        []string{"SWE"},
		PricesIncludeTax: inclusive,
		DefaultLanguage:  "sv-SE",
		Currency:         "SEK",
	}
}

func testConfig() StaticConfig {
	return StaticConfig{
		"SWE": {
			MerchantID:  "merchant-1",
			CompleteURL: "/complete/{orderGroupId}",
			CancelURL:   "/cancel/{orderGroupId}",
			CallbackURL: "https://shop.example/api/callback/{orderGroupId}",
			HostURLs:    []string{"https://shop.example"},
		},
	}
}

func newTestFactory(t *testing.T, inclusive bool, shippingFee string) *Factory {
	t.Helper()

	rates := market.StaticRates{
		"SWE/FASHION":  dec("25"),
		"SWE/SHIPPING": dec("25"),
	}
	taxes := market.NewPercentageCalculator(rates)

	fees := map[string]decimal.Decimal{}
	if shippingFee != "" {
		fees["SWE"] = dec(shippingFee)
	}
	shipping := market.NewFlatRateShipping(fees, rates)
	returns := order.StandardReturnCalculator{}
	totals := market.NewOrderTotals(taxes, shipping, returns)

	resolver, err := NewURLResolver("https://shop.example")
	require.NoError(t, err)

	return NewFactory(taxes, shipping, returns, totals, testConfig(), resolver, refgen.Static("ref-1"))
}

func testOrder(items ...order.LineItem) *order.Context {
	return &order.Context{
		GroupID:  "42",
		MarketID: "SWE",
		Currency: "SEK",
		Shipments: []order.Shipment{{
			Address:   order.Address{CountryCode: "SE", City: "Stockholm"},
			LineItems: items,
		}},
	}
}

func fashionItem(id string, price string, qty int) order.LineItem {
	return order.LineItem{
		ID:          id,
		Name:        "Item " + id,
		Quantity:    qty,
		PlacedPrice: dec(price),
		Class:       "FASHION",
	}
}

// --- BuildPaymentOrder ---

func TestBuildPaymentOrder_Validation(t *testing.T) {
	f := newTestFactory(t, false, "49.00")

	_, err := f.BuildPaymentOrder(context.Background(), nil, sweMarket(false), PaymentOrderParams{})
	require.ErrorIs(t, err, ErrMissingOrder)

	_, err = f.BuildPaymentOrder(context.Background(), testOrder(), nil, PaymentOrderParams{})
	require.ErrorIs(t, err, ErrMissingMarket)
}

func TestBuildPaymentOrder_MarketWithoutCountry(t *testing.T) {
	f := newTestFactory(t, false, "49.00")
	m := &market.Market{ID: "BARE", DefaultLanguage: "sv-SE"}

	_, err := f.BuildPaymentOrder(context.Background(), testOrder(fashionItem("1", "10.00", 1)), m, PaymentOrderParams{})

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "BARE", cfgErr.MarketID)
}

func TestBuildPaymentOrder_ItemCountAndShipping(t *testing.T) {
	f := newTestFactory(t, false, "49.00")
	o := testOrder(
		fashionItem("1", "100.00", 1),
		fashionItem("2", "50.00", 2),
		fashionItem("3", "19.90", 1),
	)

	req, err := f.BuildPaymentOrder(context.Background(), o, sweMarket(false), PaymentOrderParams{Description: "order 42"})
	require.NoError(t, err)

	require.Len(t, req.OrderItems, 4)
	shippingCount := 0
	for _, it := range req.OrderItems {
		if it.Reference == ShippingReference {
			shippingCount++
			assert.Equal(t, ItemTypeShippingFee, it.Type)
			assert.Equal(t, ClassNotApplicable, it.Class)
			assert.Equal(t, 1, it.Quantity)
		}
	}
	assert.Equal(t, 1, shippingCount)

	// Input order preserved, shipping last.
	assert.Equal(t, "1", req.OrderItems[0].Reference)
	assert.Equal(t, "2", req.OrderItems[1].Reference)
	assert.Equal(t, "3", req.OrderItems[2].Reference)
}

func TestBuildPaymentOrder_TotalsMatchItemSums(t *testing.T) {
	for _, inclusive := range []bool{true, false} {
		f := newTestFactory(t, inclusive, "49.00")
		o := testOrder(
			fashionItem("1", "99.95", 3),
			fashionItem("2", "0.01", 7),
		)

		req, err := f.BuildPaymentOrder(context.Background(), o, sweMarket(inclusive), PaymentOrderParams{})
		require.NoError(t, err)

		var amount, vat int64
		for _, it := range req.OrderItems {
			amount += it.Amount.Int64()
			vat += it.VatAmount.Int64()
		}
		assert.Equal(t, amount, req.Amount.Int64())
		assert.Equal(t, vat, req.VatAmount.Int64())
	}
}

func TestBuildPaymentOrder_TaxExclusive(t *testing.T) {
	f := newTestFactory(t, false, "")
	o := testOrder(fashionItem("1", "100.00", 1))

	req, err := f.BuildPaymentOrder(context.Background(), o, sweMarket(false), PaymentOrderParams{})
	require.NoError(t, err)

	item := req.OrderItems[0]
	// 100.00 + 25% tax on top = 125.00.
	assert.Equal(t, int64(12500), item.Amount.Int64())
	assert.Equal(t, int64(2500), item.VatAmount.Int64())
	assert.Equal(t, 2500, item.VatPercent)
	assert.Equal(t, int64(10000), item.UnitPrice.Int64())
}

func TestBuildPaymentOrder_TaxInclusive(t *testing.T) {
	f := newTestFactory(t, true, "")
	o := testOrder(fashionItem("1", "100.00", 1))

	req, err := f.BuildPaymentOrder(context.Background(), o, sweMarket(true), PaymentOrderParams{})
	require.NoError(t, err)

	item := req.OrderItems[0]
	// Price already carries the tax: 100.00 stays 100.00, embedded VAT 20.00.
	assert.Equal(t, int64(10000), item.Amount.Int64())
	assert.Equal(t, int64(2000), item.VatAmount.Int64())
	assert.Equal(t, 2500, item.VatPercent)
}

func TestBuildPaymentOrder_ZeroPricedItem(t *testing.T) {
	f := newTestFactory(t, false, "")
	o := testOrder(fashionItem("free", "0", 1))

	req, err := f.BuildPaymentOrder(context.Background(), o, sweMarket(false), PaymentOrderParams{})
	require.NoError(t, err)

	item := req.OrderItems[0]
	assert.Equal(t, int64(0), item.Amount.Int64())
	assert.Equal(t, int64(0), item.VatAmount.Int64())
	// Percent still comes from the market rate, not from dividing amounts.
	assert.Equal(t, 2500, item.VatPercent)
}

func TestBuildPaymentOrder_FreeShipping(t *testing.T) {
	f := newTestFactory(t, false, "")
	o := testOrder(fashionItem("1", "10.00", 1))

	req, err := f.BuildPaymentOrder(context.Background(), o, sweMarket(false), PaymentOrderParams{})
	require.NoError(t, err)

	shipping := req.OrderItems[len(req.OrderItems)-1]
	require.Equal(t, ShippingReference, shipping.Reference)
	assert.Equal(t, int64(0), shipping.Amount.Int64())
	assert.Equal(t, 0, shipping.VatPercent)
}

func TestBuildPaymentOrder_ShippingVatPercent(t *testing.T) {
	// Exclusive: 49.00 fee, 12.25 tax, percent = tax/cost = 25%.
	f := newTestFactory(t, false, "49.00")
	o := testOrder(fashionItem("1", "10.00", 1))

	req, err := f.BuildPaymentOrder(context.Background(), o, sweMarket(false), PaymentOrderParams{})
	require.NoError(t, err)

	shipping := req.OrderItems[len(req.OrderItems)-1]
	assert.Equal(t, int64(6125), shipping.Amount.Int64())
	assert.Equal(t, int64(1225), shipping.VatAmount.Int64())
	assert.Equal(t, 2500, shipping.VatPercent)

	// Inclusive: fee carries 9.80 embedded tax, percent = tax/(cost-tax) = 25%.
	f = newTestFactory(t, true, "49.00")
	req, err = f.BuildPaymentOrder(context.Background(), o, sweMarket(true), PaymentOrderParams{})
	require.NoError(t, err)

	shipping = req.OrderItems[len(req.OrderItems)-1]
	assert.Equal(t, int64(4900), shipping.Amount.Int64())
	assert.Equal(t, int64(980), shipping.VatAmount.Int64())
	assert.Equal(t, 2500, shipping.VatPercent)
}

func TestBuildPaymentOrder_PayerOnlyWithProfileRef(t *testing.T) {
	f := newTestFactory(t, false, "")
	o := testOrder(fashionItem("1", "10.00", 1))

	req, err := f.BuildPaymentOrder(context.Background(), o, sweMarket(false), PaymentOrderParams{})
	require.NoError(t, err)
	assert.Nil(t, req.Payer)

	req, err = f.BuildPaymentOrder(context.Background(), o, sweMarket(false), PaymentOrderParams{ConsumerProfileRef: "profile-9"})
	require.NoError(t, err)
	require.NotNil(t, req.Payer)
	assert.Equal(t, "profile-9", req.Payer.ConsumerProfileRef)
}

func TestBuildPaymentOrder_URLsAndPayee(t *testing.T) {
	f := newTestFactory(t, false, "")
	o := testOrder(fashionItem("1", "10.00", 1))

	req, err := f.BuildPaymentOrder(context.Background(), o, sweMarket(false), PaymentOrderParams{UserAgent: "agent/1.0"})
	require.NoError(t, err)

	assert.Equal(t, OperationPurchase, req.Operation)
	assert.Equal(t, "SEK", req.Currency)
	assert.Equal(t, "sv-SE", req.Language)
	assert.Equal(t, "agent/1.0", req.UserAgent)
	assert.Equal(t, "merchant-1", req.PayeeInfo.PayeeID)
	assert.Equal(t, "ref-1", req.PayeeInfo.PayeeReference)
	assert.Equal(t, "https://shop.example/complete/42", req.URLs.CompleteURL)
	assert.Equal(t, "https://shop.example/cancel/42", req.URLs.CancelURL)
	assert.Equal(t, "42", req.MetaData["orderGroupId"])
}

func TestBuildPaymentOrder_UnknownMerchantConfig(t *testing.T) {
	f := newTestFactory(t, false, "")
	o := testOrder(fashionItem("1", "10.00", 1))
	o.MarketID = "NOR"
	m := &market.Market{ID: "NOR", Countries: []string{"NOR"}, DefaultLanguage: "nb-NO", Currency: "NOK"}

	_, err := f.BuildPaymentOrder(context.Background(), o, m, PaymentOrderParams{})

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "NOR", cfgErr.MarketID)
}

// --- Capture / Reversal ---

func TestBuildCapture_IncludesShippingByDefault(t *testing.T) {
	f := newTestFactory(t, false, "49.00")
	o := testOrder(fashionItem("1", "100.00", 2))
	shp := o.FirstShipment()

	req, err := f.BuildCapture(context.Background(), shp.LineItems, sweMarket(false), shp, "SEK", CaptureParams{})
	require.NoError(t, err)

	require.Len(t, req.OrderItems, 2)
	assert.Equal(t, OperationCapture, req.Operation)
	assert.Equal(t, "Capturing payment.", req.Description)
	assert.Equal(t, "ref-1", req.PayeeReference)

	var amount, vat int64
	for _, it := range req.OrderItems {
		amount += it.Amount.Int64()
		vat += it.VatAmount.Int64()
	}
	assert.Equal(t, amount, req.Amount.Int64())
	assert.Equal(t, vat, req.VatAmount.Int64())
}

func TestBuildReversal_ReturnSubsetWithoutShipping(t *testing.T) {
	f := newTestFactory(t, false, "49.00")
	returned := order.LineItem{
		ID:             "1",
		Name:           "Item 1",
		Quantity:       3,
		ReturnQuantity: 1,
		PlacedPrice:    dec("100.00"),
		Class:          "FASHION",
	}
	shp := &order.Shipment{Address: order.Address{CountryCode: "SE"}}

	req, err := f.BuildReversal(context.Background(), []order.LineItem{returned}, sweMarket(false), shp, "SEK", CaptureParams{SkipShipping: true, Description: "return of item 1"})
	require.NoError(t, err)

	require.Len(t, req.OrderItems, 1)
	item := req.OrderItems[0]
	// Return quantity and return-priced extended amount, not the order's.
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, int64(12500), item.Amount.Int64())
	assert.Equal(t, OperationReversal, req.Operation)
	assert.Equal(t, "return of item 1", req.Description)
}

// --- Cancel / Abort / Update ---

func TestBuildCancelAndAbort(t *testing.T) {
	f := newTestFactory(t, false, "")

	cancel := f.BuildCancel("")
	assert.Equal(t, OperationCancel, cancel.Operation)
	assert.Equal(t, "Cancelling purchase order.", cancel.Description)
	assert.Equal(t, "ref-1", cancel.PayeeReference)

	abort := f.BuildAbort()
	assert.Equal(t, OperationAbort, abort.Operation)
	assert.Equal(t, "CancelledByConsumer", abort.AbortReason)
}

func TestBuildUpdate(t *testing.T) {
	f := newTestFactory(t, false, "49.00")
	o := testOrder(fashionItem("1", "100.00", 1))

	req, err := f.BuildUpdate(context.Background(), o, sweMarket(false))
	require.NoError(t, err)

	assert.Equal(t, OperationUpdate, req.Operation)
	// 125.00 item total + 61.25 shipping incl tax.
	assert.Equal(t, int64(18625), req.Amount.Int64())
	assert.Equal(t, int64(3725), req.VatAmount.Int64())

	_, err = f.BuildUpdate(context.Background(), nil, sweMarket(false))
	require.ErrorIs(t, err, ErrMissingOrder)
}

// --- Consumer session ---

func TestBuildConsumerSession(t *testing.T) {
	f := newTestFactory(t, false, "")

	req, err := f.BuildConsumerSession(sweMarket(false), ConsumerSessionParams{Email: "a@b.se", Msisdn: "+46707777777"})
	require.NoError(t, err)

	assert.Equal(t, OperationConsumerSession, req.Operation)
	assert.Equal(t, "SE", req.ConsumerCountryCode)
	assert.Equal(t, "sv-SE", req.Language)
	assert.Nil(t, req.NationalIdentifier)

	req, err = f.BuildConsumerSession(sweMarket(false), ConsumerSessionParams{SSN: "199001011234"})
	require.NoError(t, err)
	require.NotNil(t, req.NationalIdentifier)
	assert.Equal(t, "199001011234", req.NationalIdentifier.SocialSecurityNumber)
	assert.Equal(t, "SE", req.NationalIdentifier.CountryCode)

	_, err = f.BuildConsumerSession(nil, ConsumerSessionParams{})
	require.ErrorIs(t, err, ErrMissingMarket)
}
