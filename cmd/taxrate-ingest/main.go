// Command taxrate-ingest loads percentage tax rates from gzipped JSON-lines
// files into PostgreSQL. Each line is one rate object:
//
//	{"country": "SWE", "class": "FASHION", "rate": "25"}
//
// A "*" country or class acts as a wildcard fallback at lookup time. Files
// are scanned concurrently; later files win on duplicate keys.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/checkout-gateway/internal/storage/postgres"
)

const batchSize = 500

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.jsonl.gz rate files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("tax rate ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("tax rate ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.jsonl.gz"))
	if err != nil {
		return errors.Wrap(err, "glob rate files")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.jsonl.gz files in %s", dataDir)
	}
	sort.Strings(files)

	slog.Info("scanning rate files", slog.Int("files", len(files)))

	perFile := make([][]postgres.TaxRate, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(scanFile(gctx, f, &perFile[i]))
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Merge in file order so later files override earlier ones.
	merged := make(map[string]postgres.TaxRate)
	for _, rates := range perFile {
		for _, r := range rates {
			merged[r.CountryCode+"/"+r.TaxClass] = r
		}
	}
	rates := make([]postgres.TaxRate, 0, len(merged))
	for _, r := range merged {
		rates = append(rates, r)
	}

	slog.Info("rates parsed", slog.Int("count", len(rates)))
	if len(rates) == 0 {
		return nil
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	store := postgres.NewTaxRateStore(pool)
	for start := 0; start < len(rates); start += batchSize {
		end := min(start+batchSize, len(rates))
		if err := store.UpsertBatch(ctx, rates[start:end]); err != nil {
			return errors.Wrapf(err, "upsert batch at %d", start)
		}
		slog.Info("write progress", slog.Int("written", end), slog.Int("total", len(rates)))
	}

	return nil
}

// scanFile streams one gzipped JSON-lines file into *out.
func scanFile(ctx context.Context, path string, out *[]postgres.TaxRate) func() error {
	return func() error {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "open %s", path)
		}
		defer func() { _ = f.Close() }()

		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()

		var rates []postgres.TaxRate
		scanner := bufio.NewScanner(gz)
		line := 0
		for scanner.Scan() {
			if err := ctx.Err(); err != nil {
				return err
			}
			line++
			raw := scanner.Bytes()
			if len(raw) == 0 {
				continue
			}
			rate, err := parseRate(raw)
			if err != nil {
				return errors.Wrapf(err, "%s:%d", path, line)
			}
			rates = append(rates, rate)
		}
		if err := scanner.Err(); err != nil {
			return errors.Wrapf(err, "scan %s", path)
		}

		slog.Info("file scanned", slog.String("file", filepath.Base(path)), slog.Int("rates", len(rates)))
		*out = rates
		return nil
	}
}

// parseRate decodes one rate line. The rate value may be a JSON number or a
// decimal string.
func parseRate(raw []byte) (postgres.TaxRate, error) {
	var rate postgres.TaxRate
	d := jx.DecodeBytes(raw)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "country":
			v, err := d.Str()
			if err != nil {
				return err
			}
			rate.CountryCode = v
		case "class":
			v, err := d.Str()
			if err != nil {
				return err
			}
			rate.TaxClass = v
		case "rate":
			var raw string
			if d.Next() == jx.String {
				v, err := d.Str()
				if err != nil {
					return err
				}
				raw = v
			} else {
				num, err := d.Num()
				if err != nil {
					return err
				}
				raw = num.String()
			}
			v, err := decimal.NewFromString(raw)
			if err != nil {
				return errors.Wrap(err, "parse rate")
			}
			rate.RatePercent = v
		default:
			return d.Skip()
		}
		return nil
	})
	if err != nil {
		return postgres.TaxRate{}, err
	}
	if rate.CountryCode == "" || rate.TaxClass == "" {
		return postgres.TaxRate{}, errors.New("country and class are required")
	}
	if rate.RatePercent.IsNegative() {
		return postgres.TaxRate{}, errors.New("rate must not be negative")
	}
	return rate, nil
}
