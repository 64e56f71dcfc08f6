package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/SscSPs/exchange_rates_service/internal/core/domain"
	portssvc "github.com/SscSPs/exchange_rates_service/internal/core/ports/services"
	"github.com/SscSPs/exchange_rates_service/internal/middleware"
	"github.com/SscSPs/exchange_rates_service/internal/platform/app"
	"github.com/SscSPs/exchange_rates_service/internal/platform/config"
	"github.com/SscSPs/exchange_rates_service/pkg/database"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// backfillOptions are the resolved command-line settings.
type backfillOptions struct {
	Currencies []string
	StartYear  int
	EndYear    int
	Service    string
	Migrate    bool
}

// backfillSummary counts yearly batches by outcome.
type backfillSummary struct {
	Successes int
	Failures  int
	Stored    int
}

func parseOptions(args []string, now time.Time) (backfillOptions, error) {
	fs := pflag.NewFlagSet("fxrates_backfill", pflag.ContinueOnError)
	fs.StringSlice("currency", []string{"USD", "EUR", "GBP"}, "base currencies to backfill (repeatable or comma separated)")
	fs.Int("start-year", 0, "first year to backfill (default: end-year minus 5)")
	fs.Int("end-year", 0, "last year to backfill (default: current year)")
	fs.String("service", "", "restrict the provider chain to one provider: "+strings.Join(config.DefaultFallbackOrder, ", "))
	fs.Bool("migrate", false, "apply database migrations before backfilling")
	if err := fs.Parse(args); err != nil {
		return backfillOptions{}, err
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return backfillOptions{}, err
	}

	opts := backfillOptions{
		EndYear:   v.GetInt("end-year"),
		StartYear: v.GetInt("start-year"),
		Service:   strings.ToLower(strings.TrimSpace(v.GetString("service"))),
		Migrate:   v.GetBool("migrate"),
	}
	if opts.EndYear == 0 {
		opts.EndYear = now.Year()
	}
	if opts.StartYear == 0 {
		opts.StartYear = opts.EndYear - 5
	}
	if opts.StartYear > opts.EndYear {
		return backfillOptions{}, fmt.Errorf("start-year %d is after end-year %d", opts.StartYear, opts.EndYear)
	}

	seen := make(map[string]struct{})
	for _, c := range v.GetStringSlice("currency") {
		code := strings.ToUpper(strings.TrimSpace(c))
		if code == "" {
			continue
		}
		if len(code) != 3 {
			return backfillOptions{}, fmt.Errorf("invalid currency code %q", c)
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		opts.Currencies = append(opts.Currencies, code)
	}
	if len(opts.Currencies) == 0 {
		return backfillOptions{}, fmt.Errorf("at least one currency is required")
	}

	if opts.Service != "" && !slices.Contains(config.DefaultFallbackOrder, opts.Service) {
		return backfillOptions{}, fmt.Errorf("unknown service %q", opts.Service)
	}
	return opts, nil
}

// buildBatches returns one batch per year holding a Jan 1 request per currency.
func buildBatches(currencies []string, startYear, endYear int) [][]domain.HistoricalBase {
	batches := make([][]domain.HistoricalBase, 0, endYear-startYear+1)
	for year := startYear; year <= endYear; year++ {
		day := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		batch := make([]domain.HistoricalBase, 0, len(currencies))
		for _, c := range currencies {
			batch = append(batch, domain.HistoricalBase{BaseCurrency: c, Date: day})
		}
		batches = append(batches, batch)
	}
	return batches
}

func runBackfill(ctx context.Context, writer portssvc.ExchangeRateWriterSvc, batches [][]domain.HistoricalBase, logger *slog.Logger) backfillSummary {
	var summary backfillSummary
	for _, batch := range batches {
		if len(batch) == 0 {
			continue
		}
		year := batch[0].Date.Year()
		if ctx.Err() != nil {
			logger.Warn("Backfill interrupted", slog.Int("year", year))
			summary.Failures++
			continue
		}

		result, err := writer.StoreHistoricalRatesBulk(ctx, batch)
		if err != nil {
			summary.Failures++
			logger.Error("Backfill batch failed", slog.Int("year", year), slog.String("error", err.Error()))
			continue
		}

		stored := 0
		for _, byDate := range result {
			stored += len(byDate)
		}
		summary.Successes++
		summary.Stored += stored
		logger.Info("Backfill batch stored",
			slog.Int("year", year),
			slog.Int("rate_sets", stored),
			slog.String("provider", writer.LastSuccessfulProvider()))
	}
	return summary
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	opts, err := parseOptions(os.Args[1:], time.Now().UTC())
	if err != nil {
		logger.Error("Invalid arguments", slog.String("error", err.Error()))
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = middleware.WithLogger(ctx, logger)

	if opts.Migrate {
		if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, true)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}

	order := cfg.FallbackOrder
	if opts.Service != "" {
		order = []string{opts.Service}
	}

	comps, err := app.Build(ctx, cfg, dbPool, order, logger)
	if err != nil {
		database.ClosePgxPool(dbPool)
		logger.Error("Failed to wire services", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Starting backfill",
		slog.Any("currencies", opts.Currencies),
		slog.Int("start_year", opts.StartYear),
		slog.Int("end_year", opts.EndYear),
		slog.Any("providers", order))

	summary := runBackfill(ctx, comps.Services.ExchangeRate, buildBatches(opts.Currencies, opts.StartYear, opts.EndYear), logger)

	logger.Info("Backfill finished",
		slog.Int("successful_batches", summary.Successes),
		slog.Int("failed_batches", summary.Failures),
		slog.Int("rate_sets_stored", summary.Stored))

	comps.Close()
	database.ClosePgxPool(dbPool)
	if summary.Failures > 0 {
		os.Exit(1)
	}
}
