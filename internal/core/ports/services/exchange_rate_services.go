package services

import (
	"context"
	"time"

	"github.com/SscSPs/exchange_rates_service/internal/core/domain"
)

// ExchangeRateProvider is implemented by every upstream rate source. Store*
// methods fetch from upstream and persist, Get* methods read the repository.
type ExchangeRateProvider interface {
	// Name is the label persisted on every row this provider writes.
	Name() string

	StoreRates(ctx context.Context, baseCurrency string) (*domain.RateSet, error)
	StoreRatesBulk(ctx context.Context, baseCurrencies []string) (map[string]domain.RateSet, error)

	GetRates(ctx context.Context, baseCurrency string) ([]domain.RatePoint, error)
	GetAllRates(ctx context.Context) ([]domain.RatePoint, error)
}

// HistoricalSupport is implemented by providers that can serve past dates.
type HistoricalSupport interface {
	ExchangeRateProvider

	StoreHistoricalRates(ctx context.Context, baseCurrency string, at time.Time) (*domain.HistoricalRateSet, error)
	// StoreHistoricalRatesBulk returns base currency -> YYYY-MM-DD -> set.
	StoreHistoricalRatesBulk(ctx context.Context, requests []domain.HistoricalBase) (map[string]map[string]domain.HistoricalRateSet, error)

	// GetHistoricalRates falls back to a fetch when nothing is stored for that day.
	GetHistoricalRates(ctx context.Context, baseCurrency string, at time.Time) ([]domain.RatePoint, error)
	// GetHistoricalRate fetches the day once when the pair is missing and
	// returns apperrors.ErrNotFound if it is still absent.
	GetHistoricalRate(ctx context.Context, baseCurrency, targetCurrency string, at time.Time) (*domain.RatePoint, error)
}

// ExchangeRateReaderSvc serves stored rates straight from the repository.
type ExchangeRateReaderSvc interface {
	GetRates(ctx context.Context, baseCurrency string) ([]domain.RatePoint, error)
	GetAllRates(ctx context.Context) ([]domain.RatePoint, error)
	GetRatesBulk(ctx context.Context, baseCurrencies []string) (map[string][]domain.RatePoint, error)
	GetRate(ctx context.Context, baseCurrency, targetCurrency string) (*domain.RatePoint, error)
	GetRateBulk(ctx context.Context, pairs []domain.CurrencyPair) (map[string][]domain.RatePoint, error)
	GetHistoricalRates(ctx context.Context, baseCurrency string, at time.Time) ([]domain.RatePoint, error)
	GetBulkHistoricalRates(ctx context.Context, requests []domain.HistoricalBase) (map[string][]domain.RatePoint, error)
	GetHistoricalRate(ctx context.Context, baseCurrency, targetCurrency string, at time.Time) (*domain.RatePoint, error)
	GetBulkHistoricalRate(ctx context.Context, pairs []domain.HistoricalCurrencyPair) (map[string][]domain.RatePoint, error)
	GetPreviousHistoricalRate(ctx context.Context, baseCurrency, targetCurrency string, at time.Time) (*domain.RatePoint, error)
	GetNextHistoricalRate(ctx context.Context, baseCurrency, targetCurrency string, at time.Time) (*domain.RatePoint, error)
	GetBoundingHistoricalRates(ctx context.Context, baseCurrency, targetCurrency string, at time.Time) ([]domain.RatePoint, error)
}

// ExchangeRateWriterSvc fetches and persists rates through the provider fallback chain.
type ExchangeRateWriterSvc interface {
	StoreRates(ctx context.Context, baseCurrency string) (*domain.RateSet, error)
	StoreRatesBulk(ctx context.Context, baseCurrencies []string) (map[string]domain.RateSet, error)
	StoreHistoricalRates(ctx context.Context, baseCurrency string, at time.Time) (*domain.HistoricalRateSet, error)
	StoreHistoricalRatesBulk(ctx context.Context, requests []domain.HistoricalBase) (map[string]map[string]domain.HistoricalRateSet, error)

	// LastSuccessfulProvider is empty until a store call succeeds.
	LastSuccessfulProvider() string
}

// ExchangeRateSvcFacade combines all exchange rate-related service interfaces
type ExchangeRateSvcFacade interface {
	ExchangeRateReaderSvc
	ExchangeRateWriterSvc
}
