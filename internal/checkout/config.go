package checkout

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Configuration is the per-market merchant configuration. URL fields may
// contain the literal {orderGroupId} placeholder and may be absolute or
// site-relative; empty fields are omitted from outbound requests.
type Configuration struct {
	MerchantID        string
	TermsOfServiceURL string
	CallbackURL       string
	PaymentURL        string
	CancelURL         string
	CompleteURL       string
	LogoURL           string
	HostURLs          []string
}

// ConfigProvider resolves merchant configuration per market.
type ConfigProvider interface {
	Configuration(marketID string) (Configuration, error)
}

// Sentinel validation errors for required factory inputs.
var (
	ErrMissingOrder    = errors.New("order context is required")
	ErrMissingMarket   = errors.New("market is required")
	ErrMissingShipment = errors.New("order has no shipment")
)

// ConfigurationError indicates the request cannot be built because the named
// market is misconfigured.
type ConfigurationError struct {
	MarketID string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("market %s: %s", e.MarketID, e.Reason)
}

// StaticConfig is a ConfigProvider backed by a map keyed by market id.
type StaticConfig map[string]Configuration

func (s StaticConfig) Configuration(marketID string) (Configuration, error) {
	cfg, ok := s[marketID]
	if !ok {
		return Configuration{}, &ConfigurationError{MarketID: marketID, Reason: "no merchant configuration"}
	}
	return cfg, nil
}
