package providers

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/SscSPs/exchange_rates_service/internal/apperrors"
	"github.com/SscSPs/exchange_rates_service/internal/core/domain"
	portsrepo "github.com/SscSPs/exchange_rates_service/internal/core/ports/repositories"
	"github.com/SscSPs/exchange_rates_service/internal/core/services"
)

// maxRate mirrors the NUMERIC(20,10) column bound.
const maxRate = 1e10

// baseProvider holds what every adapter shares: its persisted name, the
// repository it writes through and the HTTP fetcher it reads from.
type baseProvider struct {
	services.BaseService
	name    string
	repo    portsrepo.ExchangeRateRepositoryFacade
	fetcher *httpFetcher
}

func (p *baseProvider) Name() string {
	return p.name
}

func (p *baseProvider) GetRates(ctx context.Context, baseCurrency string) ([]domain.RatePoint, error) {
	return p.repo.GetRates(ctx, strings.ToUpper(baseCurrency))
}

func (p *baseProvider) GetAllRates(ctx context.Context) ([]domain.RatePoint, error) {
	return p.repo.GetAllRates(ctx)
}

// cleanRates drops self-evidently bad values before they reach the repository.
func (p *baseProvider) cleanRates(ctx context.Context, base string, raw map[string]float64) map[string]float64 {
	rates := make(map[string]float64, len(raw))
	for code, rate := range raw {
		code = strings.ToUpper(strings.TrimSpace(code))
		if len(code) != 3 || math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 || rate >= maxRate {
			p.LogWarn(ctx, "Dropping unusable rate",
				slog.String("provider", p.name), slog.String("base", base),
				slog.String("target", code), slog.Float64("rate", rate))
			continue
		}
		rates[code] = rate
	}
	return rates
}

// persistForward writes set to the current and history tables.
func (p *baseProvider) persistForward(ctx context.Context, set *domain.RateSet) error {
	if set.IsEmpty() {
		return nil
	}
	if err := p.repo.UpdateRates(ctx, set.BaseCurrency, set.Rates, p.name); err != nil {
		return err
	}
	return p.repo.UpdateRatesHistory(ctx, set.BaseCurrency, set.Rates, set.Timestamp, p.name)
}

// persistForwardBulk writes every set as one batch per table.
func (p *baseProvider) persistForwardBulk(ctx context.Context, sets map[string]domain.RateSet) error {
	if len(sets) == 0 {
		return nil
	}
	current := make([]domain.RateSet, 0, len(sets))
	history := make([]domain.HistoricalRateSet, 0, len(sets))
	for _, set := range sets {
		current = append(current, set)
		history = append(history, domain.HistoricalRateSet{
			BaseCurrency: set.BaseCurrency,
			Rates:        set.Rates,
			Date:         set.Timestamp,
		})
	}
	if err := p.repo.UpdateRatesBulk(ctx, current, p.name); err != nil {
		return err
	}
	return p.repo.UpdateRatesHistoryBulk(ctx, history, p.name)
}

func (p *baseProvider) persistHistorical(ctx context.Context, set *domain.HistoricalRateSet) error {
	if set.IsEmpty() {
		return nil
	}
	return p.repo.UpdateRatesHistory(ctx, set.BaseCurrency, set.Rates, set.Date, p.name)
}

func (p *baseProvider) persistHistoricalBulk(ctx context.Context, sets map[string]map[string]domain.HistoricalRateSet) error {
	var batch []domain.HistoricalRateSet
	for _, byDate := range sets {
		for _, set := range byDate {
			batch = append(batch, set)
		}
	}
	if len(batch) == 0 {
		return nil
	}
	return p.repo.UpdateRatesHistoryBulk(ctx, batch, p.name)
}

// historicalStorer fetches and persists one base currency for one day.
type historicalStorer func(ctx context.Context, baseCurrency string, at time.Time) (*domain.HistoricalRateSet, error)

// readHistoricalRates returns stored rows for the day, fetching them first
// when nothing is stored.
func (p *baseProvider) readHistoricalRates(ctx context.Context, store historicalStorer, baseCurrency string, at time.Time) ([]domain.RatePoint, error) {
	base := strings.ToUpper(baseCurrency)
	points, err := p.repo.GetHistoricalRates(ctx, base, at)
	if err != nil {
		return nil, err
	}
	if len(points) > 0 {
		return points, nil
	}

	p.LogDebug(ctx, "No stored historical rates, fetching",
		slog.String("provider", p.name), slog.String("base", base), slog.String("date", domain.DateKey(at)))
	if _, err := store(ctx, base, at); err != nil {
		return nil, err
	}
	return p.repo.GetHistoricalRates(ctx, base, at)
}

// readHistoricalRate returns one stored pair, fetching the day once when it is missing.
func (p *baseProvider) readHistoricalRate(ctx context.Context, store historicalStorer, baseCurrency, targetCurrency string, at time.Time) (*domain.RatePoint, error) {
	base := strings.ToUpper(baseCurrency)
	target := strings.ToUpper(targetCurrency)

	point, err := p.repo.GetHistoricalRate(ctx, base, target, at)
	if err == nil {
		return point, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	if _, err := store(ctx, base, at); err != nil {
		return nil, err
	}
	return p.repo.GetHistoricalRate(ctx, base, target, at)
}
