// Package gateway is the thin HTTP transport to the payment-order gateway.
// Retry and backoff are deliberately absent: request construction and
// transport surface errors to the checkout orchestration layer, which owns
// the retry policy.
package gateway

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xenking/checkout-gateway/internal/checkout"
)

// Encoder is any outbound payload with a jx encoding. All checkout request
// types implement it.
type Encoder interface {
	Encode(e *jx.Encoder)
}

// Client posts assembled requests to the gateway.
type Client struct {
	base  *url.URL
	token string
	http  *http.Client
}

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	timeout time.Duration
	tracer  trace.TracerProvider
	meter   metric.MeterProvider
}

// WithTimeout overrides the default 10s request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.timeout = d }
}

// WithTelemetry wires tracer and meter providers into the HTTP transport.
func WithTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) Option {
	return func(c *clientConfig) {
		c.tracer = tp
		c.meter = mp
	}
}

// NewClient creates a gateway client for the given base URL and bearer token.
func NewClient(baseURL, token string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse gateway base URL")
	}

	cfg := clientConfig{timeout: 10 * time.Second}
	for _, opt := range opts {
		opt(&cfg)
	}

	var otelOpts []otelhttp.Option
	if cfg.tracer != nil {
		otelOpts = append(otelOpts, otelhttp.WithTracerProvider(cfg.tracer))
	}
	if cfg.meter != nil {
		otelOpts = append(otelOpts, otelhttp.WithMeterProvider(cfg.meter))
	}

	return &Client{
		base:  base,
		token: token,
		http: &http.Client{
			Timeout:   cfg.timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport, otelOpts...),
		},
	}, nil
}

// StatusError is a non-2xx gateway response.
type StatusError struct {
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return "gateway responded " + http.StatusText(e.Status)
}

// Post encodes payload and posts it to path under the gateway base URL,
// returning the raw response body.
func (c *Client) Post(ctx context.Context, path string, payload Encoder) ([]byte, error) {
	var e jx.Encoder
	payload.Encode(&e)

	ref, err := url.Parse(path)
	if err != nil {
		return nil, errors.Wrapf(err, "parse path %q", path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base.ResolveReference(ref).String(), bytes.NewReader(e.Bytes()))
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "post to gateway")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Status: resp.StatusCode, Body: body}
	}
	return body, nil
}

// CreatePaymentOrder posts a payment-order creation request and returns the
// gateway's identifier for the created order.
func (c *Client) CreatePaymentOrder(ctx context.Context, req *checkout.PaymentOrderRequest) (string, error) {
	body, err := c.Post(ctx, "/psp/paymentorders", req)
	if err != nil {
		return "", err
	}
	id, err := paymentOrderID(body)
	if err != nil {
		return "", errors.Wrap(err, "decode payment order response")
	}
	return id, nil
}

// paymentOrderID pulls paymentOrder.id out of a creation response.
func paymentOrderID(body []byte) (string, error) {
	var id string
	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "paymentOrder" {
			return d.Skip()
		}
		return d.Obj(func(d *jx.Decoder, key string) error {
			if key != "id" {
				return d.Skip()
			}
			v, err := d.Str()
			if err != nil {
				return err
			}
			id = v
			return nil
		})
	})
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", errors.New("response has no paymentOrder.id")
	}
	return id, nil
}
