package providers_test

import (
	"context"
	"time"

	"github.com/SscSPs/exchange_rates_service/internal/core/domain"
	portsrepo "github.com/SscSPs/exchange_rates_service/internal/core/ports/repositories"
	"github.com/stretchr/testify/mock"
)

// MockExchangeRateRepository is a testify mock of the full repository facade.
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) GetRates(ctx context.Context, baseCurrency string) ([]domain.RatePoint, error) {
	args := m.Called(ctx, baseCurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RatePoint), args.Error(1)
}

func (m *MockExchangeRateRepository) GetAllRates(ctx context.Context) ([]domain.RatePoint, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RatePoint), args.Error(1)
}

func (m *MockExchangeRateRepository) GetRatesBulk(ctx context.Context, baseCurrencies []string) (map[string][]domain.RatePoint, error) {
	args := m.Called(ctx, baseCurrencies)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.RatePoint), args.Error(1)
}

func (m *MockExchangeRateRepository) GetRate(ctx context.Context, baseCurrency, targetCurrency string) (*domain.RatePoint, error) {
	args := m.Called(ctx, baseCurrency, targetCurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RatePoint), args.Error(1)
}

func (m *MockExchangeRateRepository) GetHistoricalRates(ctx context.Context, baseCurrency string, at time.Time) ([]domain.RatePoint, error) {
	args := m.Called(ctx, baseCurrency, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RatePoint), args.Error(1)
}

func (m *MockExchangeRateRepository) GetBulkHistoricalRates(ctx context.Context, requests []domain.HistoricalBase) (map[string][]domain.RatePoint, error) {
	args := m.Called(ctx, requests)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.RatePoint), args.Error(1)
}

func (m *MockExchangeRateRepository) GetHistoricalRate(ctx context.Context, baseCurrency, targetCurrency string, at time.Time) (*domain.RatePoint, error) {
	args := m.Called(ctx, baseCurrency, targetCurrency, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RatePoint), args.Error(1)
}

func (m *MockExchangeRateRepository) GetPreviousHistoricalRate(ctx context.Context, baseCurrency, targetCurrency string, at time.Time) (*domain.RatePoint, error) {
	args := m.Called(ctx, baseCurrency, targetCurrency, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RatePoint), args.Error(1)
}

func (m *MockExchangeRateRepository) GetNextHistoricalRate(ctx context.Context, baseCurrency, targetCurrency string, at time.Time) (*domain.RatePoint, error) {
	args := m.Called(ctx, baseCurrency, targetCurrency, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RatePoint), args.Error(1)
}

func (m *MockExchangeRateRepository) GetBoundingHistoricalRates(ctx context.Context, baseCurrency, targetCurrency string, at time.Time) ([]domain.RatePoint, error) {
	args := m.Called(ctx, baseCurrency, targetCurrency, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RatePoint), args.Error(1)
}

func (m *MockExchangeRateRepository) GetRateBulk(ctx context.Context, pairs []domain.CurrencyPair) (map[string][]domain.RatePoint, error) {
	args := m.Called(ctx, pairs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.RatePoint), args.Error(1)
}

func (m *MockExchangeRateRepository) GetBulkHistoricalRate(ctx context.Context, pairs []domain.HistoricalCurrencyPair) (map[string][]domain.RatePoint, error) {
	args := m.Called(ctx, pairs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.RatePoint), args.Error(1)
}

func (m *MockExchangeRateRepository) UpdateRates(ctx context.Context, baseCurrency string, rates map[string]float64, provider string) error {
	args := m.Called(ctx, baseCurrency, rates, provider)
	return args.Error(0)
}

func (m *MockExchangeRateRepository) UpdateRatesBulk(ctx context.Context, sets []domain.RateSet, provider string) error {
	args := m.Called(ctx, sets, provider)
	return args.Error(0)
}

func (m *MockExchangeRateRepository) UpdateRatesHistory(ctx context.Context, baseCurrency string, rates map[string]float64, at time.Time, provider string) error {
	args := m.Called(ctx, baseCurrency, rates, at, provider)
	return args.Error(0)
}

func (m *MockExchangeRateRepository) UpdateRatesHistoryBulk(ctx context.Context, sets []domain.HistoricalRateSet, provider string) error {
	args := m.Called(ctx, sets, provider)
	return args.Error(0)
}

// Ensure mock implements the interface
var _ portsrepo.ExchangeRateRepositoryFacade = (*MockExchangeRateRepository)(nil)
