package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/exchange_rates_service/internal/core/domain"
	portsrepo "github.com/SscSPs/exchange_rates_service/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/exchange_rates_service/internal/core/ports/services"
	"github.com/stretchr/testify/mock"
)

// --- Mock ExchangeRateReader ---
type MockExchangeRateReader struct {
	mock.Mock
}

func (m *MockExchangeRateReader) GetRates(ctx context.Context, baseCurrency string) ([]domain.RatePoint, error) {
	args := m.Called(ctx, baseCurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RatePoint), args.Error(1)
}

func (m *MockExchangeRateReader) GetAllRates(ctx context.Context) ([]domain.RatePoint, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RatePoint), args.Error(1)
}

func (m *MockExchangeRateReader) GetRatesBulk(ctx context.Context, baseCurrencies []string) (map[string][]domain.RatePoint, error) {
	args := m.Called(ctx, baseCurrencies)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.RatePoint), args.Error(1)
}

func (m *MockExchangeRateReader) GetRate(ctx context.Context, baseCurrency, targetCurrency string) (*domain.RatePoint, error) {
	args := m.Called(ctx, baseCurrency, targetCurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RatePoint), args.Error(1)
}

func (m *MockExchangeRateReader) GetHistoricalRates(ctx context.Context, baseCurrency string, at time.Time) ([]domain.RatePoint, error) {
	args := m.Called(ctx, baseCurrency, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RatePoint), args.Error(1)
}

func (m *MockExchangeRateReader) GetBulkHistoricalRates(ctx context.Context, requests []domain.HistoricalBase) (map[string][]domain.RatePoint, error) {
	args := m.Called(ctx, requests)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.RatePoint), args.Error(1)
}

func (m *MockExchangeRateReader) GetHistoricalRate(ctx context.Context, baseCurrency, targetCurrency string, at time.Time) (*domain.RatePoint, error) {
	args := m.Called(ctx, baseCurrency, targetCurrency, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RatePoint), args.Error(1)
}

func (m *MockExchangeRateReader) GetPreviousHistoricalRate(ctx context.Context, baseCurrency, targetCurrency string, at time.Time) (*domain.RatePoint, error) {
	args := m.Called(ctx, baseCurrency, targetCurrency, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RatePoint), args.Error(1)
}

func (m *MockExchangeRateReader) GetNextHistoricalRate(ctx context.Context, baseCurrency, targetCurrency string, at time.Time) (*domain.RatePoint, error) {
	args := m.Called(ctx, baseCurrency, targetCurrency, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RatePoint), args.Error(1)
}

func (m *MockExchangeRateReader) GetBoundingHistoricalRates(ctx context.Context, baseCurrency, targetCurrency string, at time.Time) ([]domain.RatePoint, error) {
	args := m.Called(ctx, baseCurrency, targetCurrency, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RatePoint), args.Error(1)
}

func (m *MockExchangeRateReader) GetRateBulk(ctx context.Context, pairs []domain.CurrencyPair) (map[string][]domain.RatePoint, error) {
	args := m.Called(ctx, pairs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.RatePoint), args.Error(1)
}

func (m *MockExchangeRateReader) GetBulkHistoricalRate(ctx context.Context, pairs []domain.HistoricalCurrencyPair) (map[string][]domain.RatePoint, error) {
	args := m.Called(ctx, pairs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.RatePoint), args.Error(1)
}

// Ensure mock implements the interface
var _ portsrepo.ExchangeRateReader = (*MockExchangeRateReader)(nil)

// --- Mock providers ---

// MockProvider implements only the forward capability.
type MockProvider struct {
	mock.Mock
	name string
}

func newMockProvider(name string) *MockProvider {
	return &MockProvider{name: name}
}

func (m *MockProvider) Name() string { return m.name }

func (m *MockProvider) StoreRates(ctx context.Context, baseCurrency string) (*domain.RateSet, error) {
	args := m.Called(ctx, baseCurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateSet), args.Error(1)
}

func (m *MockProvider) StoreRatesBulk(ctx context.Context, baseCurrencies []string) (map[string]domain.RateSet, error) {
	args := m.Called(ctx, baseCurrencies)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.RateSet), args.Error(1)
}

func (m *MockProvider) GetRates(ctx context.Context, baseCurrency string) ([]domain.RatePoint, error) {
	args := m.Called(ctx, baseCurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RatePoint), args.Error(1)
}

func (m *MockProvider) GetAllRates(ctx context.Context) ([]domain.RatePoint, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RatePoint), args.Error(1)
}

var _ portssvc.ExchangeRateProvider = (*MockProvider)(nil)

// MockHistoricalProvider adds the historical capability.
type MockHistoricalProvider struct {
	MockProvider
}

func newMockHistoricalProvider(name string) *MockHistoricalProvider {
	return &MockHistoricalProvider{MockProvider: MockProvider{name: name}}
}

func (m *MockHistoricalProvider) StoreHistoricalRates(ctx context.Context, baseCurrency string, at time.Time) (*domain.HistoricalRateSet, error) {
	args := m.Called(ctx, baseCurrency, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HistoricalRateSet), args.Error(1)
}

func (m *MockHistoricalProvider) StoreHistoricalRatesBulk(ctx context.Context, requests []domain.HistoricalBase) (map[string]map[string]domain.HistoricalRateSet, error) {
	args := m.Called(ctx, requests)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]map[string]domain.HistoricalRateSet), args.Error(1)
}

func (m *MockHistoricalProvider) GetHistoricalRates(ctx context.Context, baseCurrency string, at time.Time) ([]domain.RatePoint, error) {
	args := m.Called(ctx, baseCurrency, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RatePoint), args.Error(1)
}

func (m *MockHistoricalProvider) GetHistoricalRate(ctx context.Context, baseCurrency, targetCurrency string, at time.Time) (*domain.RatePoint, error) {
	args := m.Called(ctx, baseCurrency, targetCurrency, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RatePoint), args.Error(1)
}

var _ portssvc.HistoricalSupport = (*MockHistoricalProvider)(nil)

// recordingObserver captures FallbackObserver events.
type recordingObserver struct {
	attempts  []string
	exhausted []string
}

func (o *recordingObserver) ObserveAttempt(provider, operation, outcome string, _ time.Duration) {
	o.attempts = append(o.attempts, provider+":"+operation+":"+outcome)
}

func (o *recordingObserver) ObserveExhausted(operation string) {
	o.exhausted = append(o.exhausted, operation)
}
