package checkout

import (
	"encoding/json"
	"testing"

	"github.com/go-faster/jx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/checkout-gateway/internal/money"
)

func decodePayload(t *testing.T, data []byte) map[string]any {
	t.Helper()
	require.True(t, jx.Valid(data), "invalid JSON: %s", data)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestPaymentOrderRequest_Encode(t *testing.T) {
	req := &PaymentOrderRequest{
		Operation:   OperationPurchase,
		Currency:    "SEK",
		Amount:      money.Amount(12500),
		VatAmount:   money.Amount(2500),
		Description: "order 42",
		UserAgent:   "agent/1.0",
		Language:    "sv-SE",
		URLs: MerchantURLs{
			HostURLs:    []string{"https://shop.example"},
			CompleteURL: "https://shop.example/complete/42",
			CallbackURL: "https://shop.example/api/callback/42",
		},
		PayeeInfo: PayeeInfo{PayeeID: "merchant-1", PayeeReference: "ref-1"},
		MetaData:  map[string]string{"orderGroupId": "42"},
		OrderItems: []OrderItem{{
			Reference:    "1",
			Name:         "Item 1",
			Type:         ItemTypeProduct,
			Class:        "FASHION",
			Quantity:     1,
			QuantityUnit: "PCS",
			UnitPrice:    money.Amount(10000),
			Amount:       money.Amount(12500),
			VatAmount:    money.Amount(2500),
			VatPercent:   2500,
		}},
	}

	data, err := json.Marshal(req)
	require.NoError(t, err)
	payload := decodePayload(t, data)

	assert.Equal(t, "Purchase", payload["operation"])
	assert.Equal(t, "SEK", payload["currency"])
	assert.Equal(t, float64(12500), payload["amount"])
	assert.Equal(t, float64(2500), payload["vatAmount"])
	assert.Equal(t, false, payload["generatePaymentToken"])

	urls := payload["urls"].(map[string]any)
	assert.Equal(t, "https://shop.example/complete/42", urls["completeUrl"])
	_, hasCancel := urls["cancelUrl"]
	assert.False(t, hasCancel, "empty URL fields must be omitted")

	payee := payload["payeeInfo"].(map[string]any)
	assert.Equal(t, "merchant-1", payee["payeeId"])
	assert.Equal(t, "ref-1", payee["payeeReference"])

	_, hasPayer := payload["payer"]
	assert.False(t, hasPayer, "payer omitted without consumer profile ref")

	meta := payload["metaData"].(map[string]any)
	assert.Equal(t, "42", meta["orderGroupId"])

	items := payload["orderItems"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "1", item["reference"])
	assert.Equal(t, "PRODUCT", item["type"])
	assert.Equal(t, "PCS", item["quantityUnit"])
	assert.Equal(t, float64(2500), item["vatPercent"])
}

func TestPaymentOrderRequest_EncodePayer(t *testing.T) {
	req := &PaymentOrderRequest{
		Operation: OperationPurchase,
		Currency:  "SEK",
		Payer:     &Payer{ConsumerProfileRef: "profile-9"},
	}

	data, err := json.Marshal(req)
	require.NoError(t, err)
	payload := decodePayload(t, data)

	payer := payload["payer"].(map[string]any)
	assert.Equal(t, "profile-9", payer["consumerProfileRef"])
	_, hasMeta := payload["metaData"]
	assert.False(t, hasMeta)
}

func TestCaptureRequest_Encode(t *testing.T) {
	req := &CaptureRequest{
		Operation:      OperationCapture,
		Amount:         money.Amount(6125),
		VatAmount:      money.Amount(1225),
		Description:    "Capturing payment.",
		PayeeReference: "ref-2",
		OrderItems:     []OrderItem{{Reference: "SHIPPING", Type: ItemTypeShippingFee}},
	}

	data, err := json.Marshal(req)
	require.NoError(t, err)
	payload := decodePayload(t, data)

	assert.Equal(t, "Capture", payload["operation"])
	assert.Equal(t, float64(6125), payload["amount"])
	assert.Equal(t, "ref-2", payload["payeeReference"])
	items := payload["orderItems"].([]any)
	require.Len(t, items, 1)
}

func TestConsumerSessionRequest_Encode(t *testing.T) {
	req := &ConsumerSessionRequest{
		Operation:           OperationConsumerSession,
		Language:            "sv-SE",
		ConsumerCountryCode: "SE",
		Email:               "a@b.se",
	}

	data, err := json.Marshal(req)
	require.NoError(t, err)
	payload := decodePayload(t, data)

	assert.Equal(t, "InitiateConsumerSession", payload["operation"])
	assert.Equal(t, "SE", payload["consumerCountryCode"])
	assert.Equal(t, "a@b.se", payload["email"])
	_, hasMsisdn := payload["msisdn"]
	assert.False(t, hasMsisdn)
	_, hasNational := payload["nationalIdentifier"]
	assert.False(t, hasNational)
}

func TestUpdateAndCancelAndAbort_Encode(t *testing.T) {
	update := &UpdateRequest{Operation: OperationUpdate, Amount: 18625, VatAmount: 3725}
	data, err := json.Marshal(update)
	require.NoError(t, err)
	payload := decodePayload(t, data)
	assert.Equal(t, "Update", payload["operation"])
	assert.Equal(t, float64(18625), payload["amount"])

	cancel := &CancelRequest{Operation: OperationCancel, Description: "d", PayeeReference: "r"}
	data, err = json.Marshal(cancel)
	require.NoError(t, err)
	payload = decodePayload(t, data)
	assert.Equal(t, "Cancel", payload["operation"])

	abort := &AbortRequest{Operation: OperationAbort, AbortReason: "CancelledByConsumer", PayeeReference: "r"}
	data, err = json.Marshal(abort)
	require.NoError(t, err)
	payload = decodePayload(t, data)
	assert.Equal(t, "CancelledByConsumer", payload["abortReason"])
}
