package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/checkout-gateway/internal/market"
)

var _ market.RateSource = (*TaxRateStore)(nil)

// TaxRateStore implements market.RateSource backed by PostgreSQL. Rates are
// keyed by three-letter country code and tax class; a "*" row in either
// column acts as a wildcard fallback, matching the static source semantics.
type TaxRateStore struct {
	pool *pgxpool.Pool
}

// NewTaxRateStore returns a TaxRateStore that uses the given pool.
func NewTaxRateStore(pool *pgxpool.Pool) *TaxRateStore {
	return &TaxRateStore{pool: pool}
}

// Rate looks up the percentage rate for a country/class pair, preferring the
// most specific match. Returns market.ErrRateNotFound when nothing matches.
func (s *TaxRateStore) Rate(ctx context.Context, countryCode, taxClass string) (decimal.Decimal, error) {
	const query = `
		SELECT rate_percent FROM tax_rates
		WHERE (country_code = $1 OR country_code = '*')
		  AND (tax_class = $2 OR tax_class = '*')
		ORDER BY (country_code = $1) DESC, (tax_class = $2) DESC
		LIMIT 1`

	var rate decimal.Decimal
	err := s.pool.QueryRow(ctx, query, countryCode, taxClass).Scan(&rate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, errors.Wrapf(market.ErrRateNotFound, "%s/%s", countryCode, taxClass)
		}
		return decimal.Zero, errors.Wrapf(err, "querying tax rate %s/%s", countryCode, taxClass)
	}
	return rate, nil
}

// Upsert inserts or updates a single rate row. Used by the ingest command.
func (s *TaxRateStore) Upsert(ctx context.Context, countryCode, taxClass string, ratePercent decimal.Decimal) error {
	const query = `
		INSERT INTO tax_rates (country_code, tax_class, rate_percent, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (country_code, tax_class)
		DO UPDATE SET rate_percent = EXCLUDED.rate_percent, updated_at = now()`

	if _, err := s.pool.Exec(ctx, query, countryCode, taxClass, ratePercent); err != nil {
		return errors.Wrapf(err, "upserting tax rate %s/%s", countryCode, taxClass)
	}
	return nil
}

// UpsertBatch writes many rate rows in one round trip.
func (s *TaxRateStore) UpsertBatch(ctx context.Context, rates []TaxRate) error {
	if len(rates) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	const query = `
		INSERT INTO tax_rates (country_code, tax_class, rate_percent, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (country_code, tax_class)
		DO UPDATE SET rate_percent = EXCLUDED.rate_percent, updated_at = now()`
	for _, r := range rates {
		batch.Queue(query, r.CountryCode, r.TaxClass, r.RatePercent)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range rates {
		if _, err := results.Exec(); err != nil {
			return errors.Wrap(err, "executing rate batch")
		}
	}
	return nil
}

// TaxRate is one rate row for bulk ingestion.
type TaxRate struct {
	CountryCode string
	TaxClass    string
	RatePercent decimal.Decimal
}
