package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/checkout-gateway/internal/checkout"
	"github.com/xenking/checkout-gateway/internal/market"
)

// Config holds the complete application configuration, loadable from
// environment variables (CHECKOUT_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL for tax rates (CHECKOUT_DATABASE_URL or DATABASE_URL); static rates are used when unset" flag:"database-url"`
	SiteBaseURL string `usage:"Absolute site base URL for resolving relative merchant URLs" flag:"site-base-url"`
	Gateway     GatewayConfig
	Graceful    GracefulConfig

	Markets      map[string]MarketConfig   `usage:"Market definitions keyed by market id"`
	Merchants    map[string]MerchantConfig `usage:"Merchant configuration keyed by market id"`
	TaxRates     map[string]string         `usage:"Static percentage tax rates keyed by <country>/<class>" flag:"tax-rates"`
	ShippingFees map[string]string         `usage:"Flat shipping fees per market id in major units" flag:"shipping-fees"`
}

// GatewayConfig points at the payment order gateway. Endpoints that need the
// gateway report unavailable when BaseURL is unset.
type GatewayConfig struct {
	BaseURL string        `usage:"Payment gateway base URL" flag:"gateway-url"`
	Token   string        `usage:"Payment gateway bearer token (CHECKOUT_GATEWAY_TOKEN)" flag:"gateway-token"`
	Timeout time.Duration `default:"10s" usage:"Gateway request timeout" flag:"gateway-timeout"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// MarketConfig defines one sales market.
type MarketConfig struct {
	Countries        []string `usage:"Assigned ISO country codes, first is the market's tax jurisdiction"`
	PricesIncludeTax bool     `usage:"Whether catalog prices already include tax" flag:"prices-include-tax"`
	DefaultLanguage  string   `usage:"Default culture, e.g. sv-SE" flag:"default-language"`
	Currency         string   `usage:"ISO currency code"`
}

// MerchantConfig is the per-market merchant setup. URL fields may be
// site-relative and may carry the {orderGroupId} placeholder.
type MerchantConfig struct {
	MerchantID        string   `usage:"Gateway payee id" flag:"merchant-id"`
	TermsOfServiceURL string   `flag:"terms-of-service-url"`
	CallbackURL       string   `flag:"callback-url"`
	PaymentURL        string   `flag:"payment-url"`
	CancelURL         string   `flag:"cancel-url"`
	CompleteURL       string   `flag:"complete-url"`
	LogoURL           string   `flag:"logo-url"`
	HostURLs          []string `flag:"host-urls"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "CHECKOUT",
		Files:     []string{"config.yaml", "/etc/checkout/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.SiteBaseURL == "" {
		return nil, errors.New("site base URL is required: set CHECKOUT_SITE_BASE_URL")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables that use
// standard names like DATABASE_URL and PORT to the application's CHECKOUT_
// prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}

// marketSource converts configured markets into a static source.
func (c *Config) marketSource() market.StaticSource {
	src := make(market.StaticSource, len(c.Markets))
	for id, m := range c.Markets {
		src[id] = market.Market{
			ID:               id,
			Countries:        m.Countries,
			PricesIncludeTax: m.PricesIncludeTax,
			DefaultLanguage:  m.DefaultLanguage,
			Currency:         m.Currency,
		}
	}
	return src
}

// merchantConfig converts configured merchants into a static provider.
func (c *Config) merchantConfig() checkout.StaticConfig {
	cfg := make(checkout.StaticConfig, len(c.Merchants))
	for id, m := range c.Merchants {
		cfg[id] = checkout.Configuration{
			MerchantID:        m.MerchantID,
			TermsOfServiceURL: m.TermsOfServiceURL,
			CallbackURL:       m.CallbackURL,
			PaymentURL:        m.PaymentURL,
			CancelURL:         m.CancelURL,
			CompleteURL:       m.CompleteURL,
			LogoURL:           m.LogoURL,
			HostURLs:          m.HostURLs,
		}
	}
	return cfg
}

// staticRates parses the configured fallback tax rates.
func (c *Config) staticRates() (market.StaticRates, error) {
	rates := make(market.StaticRates, len(c.TaxRates))
	for key, raw := range c.TaxRates {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "parse tax rate %q", key)
		}
		rates[key] = rate
	}
	return rates, nil
}

// shippingFeeTable parses the configured flat shipping fees.
func (c *Config) shippingFeeTable() (map[string]decimal.Decimal, error) {
	fees := make(map[string]decimal.Decimal, len(c.ShippingFees))
	for id, raw := range c.ShippingFees {
		fee, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "parse shipping fee for market %q", id)
		}
		fees[id] = fee
	}
	return fees, nil
}
