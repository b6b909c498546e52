// Package app wires configuration, storage, the request factory and the HTTP
// server into a running service.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/checkout-gateway/internal/checkout"
	"github.com/xenking/checkout-gateway/internal/gateway"
	"github.com/xenking/checkout-gateway/internal/handler"
	"github.com/xenking/checkout-gateway/internal/market"
	"github.com/xenking/checkout-gateway/internal/order"
	"github.com/xenking/checkout-gateway/internal/refgen"
	"github.com/xenking/checkout-gateway/internal/storage/postgres"
	"github.com/xenking/checkout-gateway/pkg/health"
	"github.com/xenking/checkout-gateway/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	// Tax rates come from PostgreSQL when a database is configured, from the
	// static config table otherwise.
	var rates market.RateSource
	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}
		healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
		rates = postgres.NewTaxRateStore(pool)
	} else {
		static, err := cfg.staticRates()
		if err != nil {
			return errors.Wrap(err, "static tax rates")
		}
		rates = static
	}

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Calculators and the request factory.
	fees, err := cfg.shippingFeeTable()
	if err != nil {
		return errors.Wrap(err, "shipping fees")
	}
	taxes := market.NewPercentageCalculator(rates)
	shipping := market.NewFlatRateShipping(fees, rates)
	returns := order.StandardReturnCalculator{}
	totals := market.NewOrderTotals(taxes, shipping, returns)

	urls, err := checkout.NewURLResolver(cfg.SiteBaseURL)
	if err != nil {
		return errors.Wrap(err, "site base URL")
	}
	factory := checkout.NewFactory(taxes, shipping, returns, totals, cfg.merchantConfig(), urls, refgen.NewUnique())

	// Gateway client is optional; shipping-details reports 503 without it.
	var gw *gateway.Client
	if cfg.Gateway.BaseURL != "" {
		gw, err = gateway.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.Token,
			gateway.WithTimeout(cfg.Gateway.Timeout),
			gateway.WithTelemetry(m.TracerProvider(), m.MeterProvider()),
		)
		if err != nil {
			return errors.Wrap(err, "create gateway client")
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	handler.NewHandler(factory, cfg.marketSource(), gw).Register(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.AccessLog(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
