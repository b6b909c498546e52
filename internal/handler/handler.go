// Package handler exposes request assembly over HTTP. Each endpoint decodes
// an order snapshot, delegates to the checkout factory, and returns the
// assembled gateway payload so the commerce frontend can inspect or forward
// it.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/checkout-gateway/internal/checkout"
	"github.com/xenking/checkout-gateway/internal/gateway"
	"github.com/xenking/checkout-gateway/internal/market"
)

// Handler routes checkout assembly endpoints. The gateway client is optional;
// without one the shipping-details endpoint reports 503.
type Handler struct {
	factory *checkout.Factory
	markets market.Source
	gateway *gateway.Client
}

// NewHandler constructs a Handler with the required collaborators.
func NewHandler(factory *checkout.Factory, markets market.Source, gw *gateway.Client) *Handler {
	return &Handler{
		factory: factory,
		markets: markets,
		gateway: gw,
	}
}

// Register mounts all endpoints on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/payment-orders", h.PaymentOrder)
	mux.HandleFunc("POST /api/consumer-sessions", h.ConsumerSession)
	mux.HandleFunc("POST /api/captures", h.Capture)
	mux.HandleFunc("POST /api/reversals", h.Reversal)
	mux.HandleFunc("POST /api/cancellations", h.Cancel)
	mux.HandleFunc("POST /api/abortions", h.Abort)
	mux.HandleFunc("POST /api/updates", h.Update)
	mux.HandleFunc("POST /api/shipping-details", h.ShippingDetails)
}

// PaymentOrder assembles a payment-order creation request.
func (h *Handler) PaymentOrder(w http.ResponseWriter, r *http.Request) {
	var req paymentOrderDTO
	if err := decode(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, err)
		return
	}

	m, err := h.markets.Market(req.Order.MarketID)
	if err != nil {
		respondError(w, r, mapStatus(err), err)
		return
	}

	built, err := h.factory.BuildPaymentOrder(r.Context(), req.Order.toContext(), m, checkout.PaymentOrderParams{
		Description:          req.Description,
		UserAgent:            req.UserAgent,
		Language:             req.Language,
		ConsumerProfileRef:   req.ConsumerProfileRef,
		GeneratePaymentToken: req.GeneratePaymentToken,
		MetaData:             req.MetaData,
	})
	if err != nil {
		respondError(w, r, mapStatus(err), err)
		return
	}
	respond(w, r, built)
}

// ConsumerSession assembles a consumer identification request.
func (h *Handler) ConsumerSession(w http.ResponseWriter, r *http.Request) {
	var req consumerSessionDTO
	if err := decode(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, err)
		return
	}

	m, err := h.markets.Market(req.MarketID)
	if err != nil {
		respondError(w, r, mapStatus(err), err)
		return
	}

	built, err := h.factory.BuildConsumerSession(m, checkout.ConsumerSessionParams{
		Email:  req.Email,
		Msisdn: req.Msisdn,
		SSN:    req.SSN,
	})
	if err != nil {
		respondError(w, r, mapStatus(err), err)
		return
	}
	respond(w, r, built)
}

// Capture assembles a capture request for a line-item subset.
func (h *Handler) Capture(w http.ResponseWriter, r *http.Request) {
	var req settlementDTO
	if err := decode(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, err)
		return
	}

	m, err := h.markets.Market(req.MarketID)
	if err != nil {
		respondError(w, r, mapStatus(err), err)
		return
	}

	shp := req.Shipment.toShipment()
	built, err := h.factory.BuildCapture(r.Context(), req.items(shp), m, &shp, req.Currency, checkout.CaptureParams{
		Description:  req.Description,
		SkipShipping: req.ExcludeShipping,
	})
	if err != nil {
		respondError(w, r, mapStatus(err), err)
		return
	}
	respond(w, r, built)
}

// Reversal assembles a reversal request for a return subset.
func (h *Handler) Reversal(w http.ResponseWriter, r *http.Request) {
	var req settlementDTO
	if err := decode(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, err)
		return
	}

	m, err := h.markets.Market(req.MarketID)
	if err != nil {
		respondError(w, r, mapStatus(err), err)
		return
	}

	shp := req.Shipment.toShipment()
	built, err := h.factory.BuildReversal(r.Context(), req.items(shp), m, &shp, req.Currency, checkout.CaptureParams{
		Description:  req.Description,
		SkipShipping: req.ExcludeShipping,
	})
	if err != nil {
		respondError(w, r, mapStatus(err), err)
		return
	}
	respond(w, r, built)
}

// Cancel assembles a cancel request.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelDTO
	if err := decode(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, err)
		return
	}
	respond(w, r, h.factory.BuildCancel(req.Description))
}

// Abort assembles an abort request.
func (h *Handler) Abort(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h.factory.BuildAbort())
}

// Update assembles an update request from current order totals.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateDTO
	if err := decode(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, err)
		return
	}

	m, err := h.markets.Market(req.Order.MarketID)
	if err != nil {
		respondError(w, r, mapStatus(err), err)
		return
	}

	built, err := h.factory.BuildUpdate(r.Context(), req.Order.toContext(), m)
	if err != nil {
		respondError(w, r, mapStatus(err), err)
		return
	}
	respond(w, r, built)
}

// ShippingDetails fetches consumer shipping details from the gateway and
// returns them with the country code normalized to three letters.
func (h *Handler) ShippingDetails(w http.ResponseWriter, r *http.Request) {
	if h.gateway == nil {
		respondError(w, r, http.StatusServiceUnavailable, errors.New("gateway is not configured"))
		return
	}

	var req shippingDetailsDTO
	if err := decode(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, err)
		return
	}
	if req.URL == "" {
		respondError(w, r, http.StatusBadRequest, errors.New("url is required"))
		return
	}

	details, err := h.gateway.ShippingDetails(r.Context(), req.URL)
	if err != nil {
		var statusErr *gateway.StatusError
		if errors.As(err, &statusErr) {
			respondError(w, r, http.StatusBadGateway, err)
			return
		}
		respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	respond(w, r, details)
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "decode request body")
	}
	return nil
}

// mapStatus maps assembly errors to HTTP statuses: missing inputs are client
// errors, misconfigured markets are unprocessable, everything else is a
// server error.
func mapStatus(err error) int {
	switch {
	case errors.Is(err, checkout.ErrMissingOrder),
		errors.Is(err, checkout.ErrMissingMarket),
		errors.Is(err, checkout.ErrMissingShipment):
		return http.StatusBadRequest
	case errors.Is(err, market.ErrUnknownMarket):
		return http.StatusUnprocessableEntity
	}
	var cfgErr *checkout.ConfigurationError
	if errors.As(err, &cfgErr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func respond(w http.ResponseWriter, r *http.Request, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, errors.Wrap(err, "encode response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		zctx.From(r.Context()).Debug("write response", zap.Error(err))
	}
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondError(w http.ResponseWriter, r *http.Request, code int, err error) {
	if code >= http.StatusInternalServerError {
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorBody{Code: code, Message: err.Error()})
}
