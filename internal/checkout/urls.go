package checkout

import (
	"net/url"
	"strings"

	"github.com/go-faster/errors"
)

// OrderIDPlaceholder is the token merchants may embed in configured URLs; it
// is replaced with the order group id at build time.
const OrderIDPlaceholder = "{orderGroupId}"

// URLResolver rewrites configured merchant URLs into fully qualified,
// order-scoped URLs. Relative URLs are resolved against the site base URL.
type URLResolver struct {
	base *url.URL
}

// NewURLResolver creates a resolver for the given site base URL.
func NewURLResolver(siteBaseURL string) (*URLResolver, error) {
	base, err := url.Parse(siteBaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse site base URL")
	}
	if !base.IsAbs() {
		return nil, errors.Errorf("site base URL %q is not absolute", siteBaseURL)
	}
	return &URLResolver{base: base}, nil
}

// Resolve substitutes the order-id placeholder and qualifies the URL. Empty
// input resolves to empty output, which omits the field from the request.
func (r *URLResolver) Resolve(configured, orderGroupID string) (string, error) {
	if configured == "" {
		return "", nil
	}
	substituted := strings.ReplaceAll(configured, OrderIDPlaceholder, orderGroupID)

	u, err := url.Parse(substituted)
	if err != nil {
		return "", errors.Wrapf(err, "parse merchant URL %q", configured)
	}
	if u.IsAbs() {
		return u.String(), nil
	}
	return r.base.ResolveReference(u).String(), nil
}

// MerchantURLs resolves the full URL set for an order. The cancel URL is
// mutually exclusive with the payment URL: gateways with an embedded payment
// UI do not also receive a separate cancel redirect.
func (r *URLResolver) MerchantURLs(cfg Configuration, orderGroupID string) (MerchantURLs, error) {
	var urls MerchantURLs
	var err error

	if urls.CompleteURL, err = r.Resolve(cfg.CompleteURL, orderGroupID); err != nil {
		return MerchantURLs{}, err
	}
	if urls.TermsOfServiceURL, err = r.Resolve(cfg.TermsOfServiceURL, orderGroupID); err != nil {
		return MerchantURLs{}, err
	}
	if urls.PaymentURL, err = r.Resolve(cfg.PaymentURL, orderGroupID); err != nil {
		return MerchantURLs{}, err
	}
	if cfg.PaymentURL == "" {
		if urls.CancelURL, err = r.Resolve(cfg.CancelURL, orderGroupID); err != nil {
			return MerchantURLs{}, err
		}
	}
	if urls.CallbackURL, err = r.Resolve(cfg.CallbackURL, orderGroupID); err != nil {
		return MerchantURLs{}, err
	}
	if urls.LogoURL, err = r.Resolve(cfg.LogoURL, orderGroupID); err != nil {
		return MerchantURLs{}, err
	}
	urls.HostURLs = cfg.HostURLs

	return urls, nil
}
