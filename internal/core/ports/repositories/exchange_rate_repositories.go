package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/exchange_rates_service/internal/core/domain"
)

// ExchangeRateReader defines read operations over current and historical rate rows.
type ExchangeRateReader interface {
	GetRates(ctx context.Context, baseCurrency string) ([]domain.RatePoint, error)
	GetAllRates(ctx context.Context) ([]domain.RatePoint, error)
	// GetRatesBulk groups current rows by base currency.
	GetRatesBulk(ctx context.Context, baseCurrencies []string) (map[string][]domain.RatePoint, error)
	// GetRate returns apperrors.ErrNotFound when the pair is absent.
	GetRate(ctx context.Context, baseCurrency, targetCurrency string) (*domain.RatePoint, error)
	// GetRateBulk is keyed by domain.PairKey; every requested pair has a key.
	GetRateBulk(ctx context.Context, pairs []domain.CurrencyPair) (map[string][]domain.RatePoint, error)

	// GetHistoricalRates matches on the calendar day of at.
	GetHistoricalRates(ctx context.Context, baseCurrency string, at time.Time) ([]domain.RatePoint, error)
	// GetBulkHistoricalRates is keyed by domain.BulkHistoricalKey.
	GetBulkHistoricalRates(ctx context.Context, requests []domain.HistoricalBase) (map[string][]domain.RatePoint, error)
	// GetHistoricalRate returns apperrors.ErrNotFound when no row exists for that day.
	GetHistoricalRate(ctx context.Context, baseCurrency, targetCurrency string, at time.Time) (*domain.RatePoint, error)
	// GetBulkHistoricalRate is keyed by domain.HistoricalPairKey; every requested pair has a key.
	GetBulkHistoricalRate(ctx context.Context, pairs []domain.HistoricalCurrencyPair) (map[string][]domain.RatePoint, error)

	// GetPreviousHistoricalRate returns the latest row observed at or before at, or nil.
	GetPreviousHistoricalRate(ctx context.Context, baseCurrency, targetCurrency string, at time.Time) (*domain.RatePoint, error)
	// GetNextHistoricalRate returns the earliest row observed at or after at, or nil.
	GetNextHistoricalRate(ctx context.Context, baseCurrency, targetCurrency string, at time.Time) (*domain.RatePoint, error)
	// GetBoundingHistoricalRates returns [previous, next] when both exist and are
	// distinct rows, otherwise an empty slice.
	GetBoundingHistoricalRates(ctx context.Context, baseCurrency, targetCurrency string, at time.Time) ([]domain.RatePoint, error)
}

// ExchangeRateWriter defines upserts. Each call is one atomic batch.
type ExchangeRateWriter interface {
	UpdateRates(ctx context.Context, baseCurrency string, rates map[string]float64, provider string) error
	UpdateRatesBulk(ctx context.Context, sets []domain.RateSet, provider string) error
	UpdateRatesHistory(ctx context.Context, baseCurrency string, rates map[string]float64, at time.Time, provider string) error
	UpdateRatesHistoryBulk(ctx context.Context, sets []domain.HistoricalRateSet, provider string) error
}

// ExchangeRateRepositoryFacade combines all exchange rate-related repository interfaces
// This is a facade for clients that need access to all operations
type ExchangeRateRepositoryFacade interface {
	ExchangeRateReader
	ExchangeRateWriter
}

// ExchangeRateRepositoryWithTx extends ExchangeRateRepositoryFacade with transaction capabilities
type ExchangeRateRepositoryWithTx interface {
	ExchangeRateRepositoryFacade
	TransactionManager
}
