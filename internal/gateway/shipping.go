package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/xenking/checkout-gateway/internal/market"
)

// ShippingAddress is the address block of a gateway shipping-details
// response. The gateway reports two-letter country codes.
type ShippingAddress struct {
	Addressee   string `json:"addressee,omitempty"`
	StreetAddr  string `json:"streetAddress,omitempty"`
	City        string `json:"city,omitempty"`
	ZipCode     string `json:"zipCode,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
}

// ShippingDetails is the consumer shipping information the gateway exposes
// after consumer identification.
type ShippingDetails struct {
	Email           string          `json:"email,omitempty"`
	Msisdn          string          `json:"msisdn,omitempty"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
}

// NormalizeCountry converts the address country code to its three-letter
// form, which is what the commerce side expects. Unknown codes pass through
// unchanged.
func (d *ShippingDetails) NormalizeCountry() {
	if d.ShippingAddress.CountryCode == "" {
		return
	}
	if alpha3 := market.ThreeLetterCountry(d.ShippingAddress.CountryCode); alpha3 != "" {
		d.ShippingAddress.CountryCode = alpha3
	}
}

// ShippingDetails fetches consumer shipping details from the gateway-provided
// URL and normalizes the country code.
func (c *Client) ShippingDetails(ctx context.Context, detailsURL string) (*ShippingDetails, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, detailsURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch shipping details")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Status: resp.StatusCode, Body: body}
	}

	var details ShippingDetails
	if err := json.Unmarshal(body, &details); err != nil {
		return nil, errors.Wrap(err, "decode shipping details")
	}
	details.NormalizeCountry()
	return &details, nil
}
