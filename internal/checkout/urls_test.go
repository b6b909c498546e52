package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolver(t *testing.T) *URLResolver {
	t.Helper()
	r, err := NewURLResolver("https://shop.example")
	require.NoError(t, err)
	return r
}

func TestNewURLResolver_RejectsRelativeBase(t *testing.T) {
	_, err := NewURLResolver("/not/absolute")
	require.Error(t, err)
}

func TestResolve_AbsoluteWithPlaceholder(t *testing.T) {
	r := newResolver(t)
	got, err := r.Resolve("https://pay.example/{orderGroupId}", "42")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/42", got)
}

func TestResolve_RelativeAgainstSiteBase(t *testing.T) {
	r := newResolver(t)
	got, err := r.Resolve("/checkout/{orderGroupId}", "42")
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example/checkout/42", got)
}

func TestResolve_EmptyStaysEmpty(t *testing.T) {
	r := newResolver(t)
	got, err := r.Resolve("", "42")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestResolve_LiteralWithoutPlaceholder(t *testing.T) {
	r := newResolver(t)
	got, err := r.Resolve("https://shop.example/terms", "42")
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example/terms", got)
}

func TestMerchantURLs_CancelOmittedWhenPaymentConfigured(t *testing.T) {
	r := newResolver(t)
	cfg := Configuration{
		PaymentURL: "https://pay.example/{orderGroupId}",
		CancelURL:  "/cancel/{orderGroupId}",
	}
	urls, err := r.MerchantURLs(cfg, "42")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/42", urls.PaymentURL)
	assert.Equal(t, "", urls.CancelURL)
}

func TestMerchantURLs_CancelResolvedWithoutPayment(t *testing.T) {
	r := newResolver(t)
	cfg := Configuration{
		CancelURL:   "/cancel/{orderGroupId}",
		CompleteURL: "/complete/{orderGroupId}",
		CallbackURL: "https://shop.example/api/callback/{orderGroupId}",
		HostURLs:    []string{"https://shop.example"},
	}
	urls, err := r.MerchantURLs(cfg, "1001")
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example/cancel/1001", urls.CancelURL)
	assert.Equal(t, "https://shop.example/complete/1001", urls.CompleteURL)
	assert.Equal(t, "https://shop.example/api/callback/1001", urls.CallbackURL)
	assert.Equal(t, []string{"https://shop.example"}, urls.HostURLs)
	assert.Equal(t, "", urls.PaymentURL)
}
