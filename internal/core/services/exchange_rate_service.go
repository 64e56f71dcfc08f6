package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/exchange_rates_service/internal/apperrors"
	"github.com/SscSPs/exchange_rates_service/internal/core/domain"
	portsrepo "github.com/SscSPs/exchange_rates_service/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/exchange_rates_service/internal/core/ports/services"
)

// Attempt outcomes reported to a FallbackObserver.
const (
	OutcomeSuccess  = "success"
	OutcomeEmpty    = "empty"
	OutcomeError    = "error"
	OutcomeMismatch = "capability_mismatch"
)

// Operation names used in logs, metrics and AllProvidersExhaustedError.
const (
	OpStoreRates               = "StoreRates"
	OpStoreRatesBulk           = "StoreRatesBulk"
	OpStoreHistoricalRates     = "StoreHistoricalRates"
	OpStoreHistoricalRatesBulk = "StoreHistoricalRatesBulk"
)

// FallbackObserver receives one event per provider attempt.
type FallbackObserver interface {
	ObserveAttempt(provider, operation, outcome string, elapsed time.Duration)
	ObserveExhausted(operation string)
}

type providerEntry struct {
	provider   portssvc.ExchangeRateProvider
	historical portssvc.HistoricalSupport
}

// exchangeRateService runs store operations through an ordered provider chain
// and serves reads from the repository. Single-day historical reads that miss
// are fetched through the chain and looked up once more.
type exchangeRateService struct {
	BaseService
	repo      portsrepo.ExchangeRateReader
	providers []providerEntry
	observer  FallbackObserver

	mu             sync.RWMutex
	lastSuccessful string
}

// ExchangeRateServiceOption is a functional option for configuring the exchange rate service
type ExchangeRateServiceOption func(*exchangeRateService)

// WithFallbackObserver reports every provider attempt to observer.
func WithFallbackObserver(observer FallbackObserver) ExchangeRateServiceOption {
	return func(s *exchangeRateService) {
		s.observer = observer
	}
}

// NewExchangeRateService builds the fallback service. Providers are tried in
// the given order; historical capability is resolved here, once.
func NewExchangeRateService(repo portsrepo.ExchangeRateReader, providers []portssvc.ExchangeRateProvider, options ...ExchangeRateServiceOption) portssvc.ExchangeRateSvcFacade {
	svc := &exchangeRateService{repo: repo}
	for _, p := range providers {
		if p == nil {
			continue
		}
		entry := providerEntry{provider: p}
		if h, ok := p.(portssvc.HistoricalSupport); ok {
			entry.historical = h
		}
		svc.providers = append(svc.providers, entry)
	}

	for _, option := range options {
		option(svc)
	}
	return svc
}

// LastSuccessfulProvider returns the name of the provider that served the latest successful store.
func (s *exchangeRateService) LastSuccessfulProvider() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSuccessful
}

func (s *exchangeRateService) markSuccess(name string) {
	s.mu.Lock()
	s.lastSuccessful = name
	s.mu.Unlock()
}

func (s *exchangeRateService) observe(provider, operation, outcome string, elapsed time.Duration) {
	if s.observer != nil {
		s.observer.ObserveAttempt(provider, operation, outcome, elapsed)
	}
}

// runFallback tries each provider in order until call returns a non-empty
// result without error. Errors and empty results both move on to the next
// provider. needsHistory turns a provider without HistoricalSupport into a
// failed attempt.
func runFallback[T any](
	ctx context.Context,
	s *exchangeRateService,
	operation string,
	needsHistory bool,
	call func(ctx context.Context, entry providerEntry) (T, error),
	isEmpty func(T) bool,
) (T, error) {
	var zero T
	var lastErr error

	for _, entry := range s.providers {
		name := entry.provider.Name()
		start := time.Now()

		if needsHistory && entry.historical == nil {
			lastErr = fmt.Errorf("%w: %s", apperrors.ErrCapabilityMismatch, name)
			s.observe(name, operation, OutcomeMismatch, time.Since(start))
			s.LogWarn(ctx, "Provider cannot serve historical operation, trying next",
				slog.String("provider", name), slog.String("operation", operation))
			continue
		}

		result, err := call(ctx, entry)
		elapsed := time.Since(start)
		if err != nil {
			lastErr = err
			s.observe(name, operation, OutcomeError, elapsed)
			s.LogWarn(ctx, "Provider failed, trying next",
				slog.String("provider", name), slog.String("operation", operation), slog.String("error", err.Error()))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if isEmpty(result) {
			s.observe(name, operation, OutcomeEmpty, elapsed)
			s.LogWarn(ctx, "Provider returned no rates, trying next",
				slog.String("provider", name), slog.String("operation", operation))
			continue
		}

		s.observe(name, operation, OutcomeSuccess, elapsed)
		s.markSuccess(name)
		s.LogInfo(ctx, "Provider succeeded", slog.String("provider", name), slog.String("operation", operation))
		return result, nil
	}

	if s.observer != nil {
		s.observer.ObserveExhausted(operation)
	}
	return zero, &apperrors.AllProvidersExhaustedError{Operation: operation, Last: lastErr}
}

func (s *exchangeRateService) StoreRates(ctx context.Context, baseCurrency string) (*domain.RateSet, error) {
	base, err := normalizeCode(baseCurrency)
	if err != nil {
		return nil, err
	}
	return runFallback(ctx, s, OpStoreRates, false,
		func(ctx context.Context, e providerEntry) (*domain.RateSet, error) {
			return e.provider.StoreRates(ctx, base)
		},
		func(r *domain.RateSet) bool { return r.IsEmpty() },
	)
}

func (s *exchangeRateService) StoreRatesBulk(ctx context.Context, baseCurrencies []string) (map[string]domain.RateSet, error) {
	bases, err := normalizeCodes(baseCurrencies)
	if err != nil {
		return nil, err
	}
	return runFallback(ctx, s, OpStoreRatesBulk, false,
		func(ctx context.Context, e providerEntry) (map[string]domain.RateSet, error) {
			return e.provider.StoreRatesBulk(ctx, bases)
		},
		func(r map[string]domain.RateSet) bool { return len(r) == 0 },
	)
}

func (s *exchangeRateService) StoreHistoricalRates(ctx context.Context, baseCurrency string, at time.Time) (*domain.HistoricalRateSet, error) {
	base, err := normalizeCode(baseCurrency)
	if err != nil {
		return nil, err
	}
	return runFallback(ctx, s, OpStoreHistoricalRates, true,
		func(ctx context.Context, e providerEntry) (*domain.HistoricalRateSet, error) {
			return e.historical.StoreHistoricalRates(ctx, base, at)
		},
		func(r *domain.HistoricalRateSet) bool { return r.IsEmpty() },
	)
}

func (s *exchangeRateService) StoreHistoricalRatesBulk(ctx context.Context, requests []domain.HistoricalBase) (map[string]map[string]domain.HistoricalRateSet, error) {
	if len(requests) == 0 {
		return nil, fmt.Errorf("%w: at least one historical request is required", apperrors.ErrValidation)
	}
	normalized := make([]domain.HistoricalBase, 0, len(requests))
	for _, req := range requests {
		base, err := normalizeCode(req.BaseCurrency)
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, domain.HistoricalBase{BaseCurrency: base, Date: req.Date})
	}
	return runFallback(ctx, s, OpStoreHistoricalRatesBulk, true,
		func(ctx context.Context, e providerEntry) (map[string]map[string]domain.HistoricalRateSet, error) {
			return e.historical.StoreHistoricalRatesBulk(ctx, normalized)
		},
		func(r map[string]map[string]domain.HistoricalRateSet) bool { return len(r) == 0 },
	)
}

func (s *exchangeRateService) GetRates(ctx context.Context, baseCurrency string) ([]domain.RatePoint, error) {
	return s.repo.GetRates(ctx, strings.ToUpper(baseCurrency))
}

func (s *exchangeRateService) GetAllRates(ctx context.Context) ([]domain.RatePoint, error) {
	return s.repo.GetAllRates(ctx)
}

func (s *exchangeRateService) GetRatesBulk(ctx context.Context, baseCurrencies []string) (map[string][]domain.RatePoint, error) {
	bases, err := normalizeCodes(baseCurrencies)
	if err != nil {
		return nil, err
	}
	return s.repo.GetRatesBulk(ctx, bases)
}

func (s *exchangeRateService) GetRate(ctx context.Context, baseCurrency, targetCurrency string) (*domain.RatePoint, error) {
	return s.repo.GetRate(ctx, strings.ToUpper(baseCurrency), strings.ToUpper(targetCurrency))
}

func (s *exchangeRateService) GetRateBulk(ctx context.Context, pairs []domain.CurrencyPair) (map[string][]domain.RatePoint, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: at least one currency pair is required", apperrors.ErrValidation)
	}
	normalized := make([]domain.CurrencyPair, 0, len(pairs))
	for _, pair := range pairs {
		base, target, err := normalizePair(pair.BaseCurrency, pair.TargetCurrency)
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, domain.CurrencyPair{BaseCurrency: base, TargetCurrency: target})
	}
	return s.repo.GetRateBulk(ctx, normalized)
}

func (s *exchangeRateService) GetHistoricalRates(ctx context.Context, baseCurrency string, at time.Time) ([]domain.RatePoint, error) {
	base := strings.ToUpper(baseCurrency)
	points, err := s.repo.GetHistoricalRates(ctx, base, at)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if len(points) > 0 {
		return points, nil
	}
	if !s.fetchMissingHistory(ctx, base, at) {
		return points, err
	}
	return s.repo.GetHistoricalRates(ctx, base, at)
}

func (s *exchangeRateService) GetBulkHistoricalRates(ctx context.Context, requests []domain.HistoricalBase) (map[string][]domain.RatePoint, error) {
	return s.repo.GetBulkHistoricalRates(ctx, requests)
}

func (s *exchangeRateService) GetHistoricalRate(ctx context.Context, baseCurrency, targetCurrency string, at time.Time) (*domain.RatePoint, error) {
	base, target := strings.ToUpper(baseCurrency), strings.ToUpper(targetCurrency)
	point, err := s.repo.GetHistoricalRate(ctx, base, target, at)
	if err == nil || !errors.Is(err, apperrors.ErrNotFound) {
		return point, err
	}
	if !s.fetchMissingHistory(ctx, base, at) {
		return nil, err
	}
	return s.repo.GetHistoricalRate(ctx, base, target, at)
}

func (s *exchangeRateService) GetBulkHistoricalRate(ctx context.Context, pairs []domain.HistoricalCurrencyPair) (map[string][]domain.RatePoint, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: at least one currency pair is required", apperrors.ErrValidation)
	}
	normalized := make([]domain.HistoricalCurrencyPair, 0, len(pairs))
	for _, pair := range pairs {
		base, target, err := normalizePair(pair.BaseCurrency, pair.TargetCurrency)
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, domain.HistoricalCurrencyPair{BaseCurrency: base, TargetCurrency: target, Date: pair.Date})
	}
	return s.repo.GetBulkHistoricalRate(ctx, normalized)
}

// fetchMissingHistory runs StoreHistoricalRates for a read that found nothing.
// It reports whether the chain stored anything worth a second lookup.
func (s *exchangeRateService) fetchMissingHistory(ctx context.Context, base string, at time.Time) bool {
	if len(s.providers) == 0 {
		return false
	}
	s.LogInfo(ctx, "Historical rates missing, fetching from providers",
		slog.String("base", base), slog.String("date", domain.DateKey(at)))
	if _, err := s.StoreHistoricalRates(ctx, base, at); err != nil {
		s.LogWarn(ctx, "Fetching missing historical rates failed",
			slog.String("base", base), slog.String("date", domain.DateKey(at)), slog.String("error", err.Error()))
		return false
	}
	return true
}

func (s *exchangeRateService) GetPreviousHistoricalRate(ctx context.Context, baseCurrency, targetCurrency string, at time.Time) (*domain.RatePoint, error) {
	return s.repo.GetPreviousHistoricalRate(ctx, strings.ToUpper(baseCurrency), strings.ToUpper(targetCurrency), at)
}

func (s *exchangeRateService) GetNextHistoricalRate(ctx context.Context, baseCurrency, targetCurrency string, at time.Time) (*domain.RatePoint, error) {
	return s.repo.GetNextHistoricalRate(ctx, strings.ToUpper(baseCurrency), strings.ToUpper(targetCurrency), at)
}

func (s *exchangeRateService) GetBoundingHistoricalRates(ctx context.Context, baseCurrency, targetCurrency string, at time.Time) ([]domain.RatePoint, error) {
	return s.repo.GetBoundingHistoricalRates(ctx, strings.ToUpper(baseCurrency), strings.ToUpper(targetCurrency), at)
}

func normalizeCode(code string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if len(c) != 3 {
		return "", fmt.Errorf("%w: currency code %q must be 3 letters", apperrors.ErrValidation, code)
	}
	return c, nil
}

func normalizePair(base, target string) (string, string, error) {
	b, err := normalizeCode(base)
	if err != nil {
		return "", "", err
	}
	t, err := normalizeCode(target)
	if err != nil {
		return "", "", err
	}
	return b, t, nil
}

func normalizeCodes(codes []string) ([]string, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("%w: at least one currency code is required", apperrors.ErrValidation)
	}
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		c, err := normalizeCode(code)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)
