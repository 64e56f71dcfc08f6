package providers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/exchange_rates_service/internal/core/domain"
	"github.com/SscSPs/exchange_rates_service/internal/core/ports/caches"
	portsrepo "github.com/SscSPs/exchange_rates_service/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/exchange_rates_service/internal/core/ports/services"
	"github.com/SscSPs/exchange_rates_service/internal/core/services"
	"github.com/SscSPs/exchange_rates_service/internal/platform/config"
	"github.com/SscSPs/exchange_rates_service/internal/platform/metrics"
)

const (
	worldBankIndicator = "PA.NUS.FCRF"
	worldBankPerPage   = 1000
	worldBankCacheName = "world_bank"
)

// WorldBankCacheKey is the response cache key for one year of the indicator.
func WorldBankCacheKey(year int) string {
	return fmt.Sprintf("world_bank_exchange_rates_%d", year)
}

// WorldBankProvider derives cross rates from the World Bank official exchange
// rate indicator. Data is annual, so every date resolves to its year.
type WorldBankProvider struct {
	baseProvider
	cfg       config.WorldBankConfig
	extractor *services.WorldBankRateExtractor
	cache     caches.ResponseCache
	metrics   *metrics.Metrics
	now       func() time.Time
}

// WorldBankOption configures a WorldBankProvider.
type WorldBankOption func(*WorldBankProvider)

// WithClock overrides the clock used to pick the current year.
func WithClock(now func() time.Time) WorldBankOption {
	return func(p *WorldBankProvider) {
		p.now = now
	}
}

// NewWorldBankProvider creates the World Bank adapter. cache may be nil.
func NewWorldBankProvider(
	cfg config.WorldBankConfig,
	repo portsrepo.ExchangeRateRepositoryFacade,
	extractor *services.WorldBankRateExtractor,
	cache caches.ResponseCache,
	opts HTTPOptions,
	options ...WorldBankOption,
) *WorldBankProvider {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	p := &WorldBankProvider{
		baseProvider: baseProvider{
			name:    config.ProviderWorldBank,
			repo:    repo,
			fetcher: newHTTPFetcher(config.ProviderWorldBank, nil, opts),
		},
		cfg:       cfg,
		extractor: extractor,
		cache:     cache,
		metrics:   opts.Metrics,
		now:       time.Now,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *WorldBankProvider) pageURL(year, page int) string {
	u := fmt.Sprintf("%s/country/all/indicator/%s?date=%d&format=json&per_page=%d",
		p.cfg.BaseURL, worldBankIndicator, year, worldBankPerPage)
	if page > 1 {
		u += fmt.Sprintf("&page=%d", page)
	}
	return u
}

// fetchYear returns every page of one year's dataset stitched together,
// served from the cache when possible.
func (p *WorldBankProvider) fetchYear(ctx context.Context, year int) ([]byte, error) {
	key := WorldBankCacheKey(year)
	if p.cache != nil {
		raw, ok, err := p.cache.Get(ctx, key)
		if err != nil {
			p.LogWarn(ctx, "World Bank cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		}
		if ok {
			p.metrics.RecordCacheHit(worldBankCacheName)
			return raw, nil
		}
		p.metrics.RecordCacheMiss(worldBankCacheName)
	}

	var raw []byte
	err := p.LogDuration(ctx, "Fetched World Bank dataset", func() error {
		first, err := p.fetcher.get(ctx, p.pageURL(year, 1))
		if err != nil {
			return err
		}
		raw, err = services.StitchPages(ctx, first, func(ctx context.Context, page int) ([]byte, error) {
			return p.fetcher.get(ctx, p.pageURL(year, page))
		})
		return err
	}, slog.String("provider", p.name), slog.Int("year", year))
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, key, raw, p.cfg.CacheTTL); err != nil {
			p.LogWarn(ctx, "World Bank cache write failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}
	return raw, nil
}

// latestDataset returns the current year's dataset, or last year's when the
// current year has no country values yet.
func (p *WorldBankProvider) latestDataset(ctx context.Context) ([]byte, error) {
	year := p.now().UTC().Year()
	raw, err := p.fetchYear(ctx, year)
	if err != nil {
		return nil, err
	}
	if p.hasCountryData(ctx, raw) {
		return raw, nil
	}
	p.LogInfo(ctx, "No World Bank data for current year, using previous year", slog.Int("year", year))
	return p.fetchYear(ctx, year-1)
}

// hasCountryData reports whether raw maps any currency besides the USD anchor.
func (p *WorldBankProvider) hasCountryData(ctx context.Context, raw []byte) bool {
	return len(p.extractor.ParseToUsdRates(ctx, raw)) > 1
}

func (p *WorldBankProvider) datasetTimestamp(raw []byte) time.Time {
	if ts, ok := services.ParseMetadata(raw).LastUpdatedAt(); ok {
		return ts
	}
	return p.now().UTC()
}

func utcDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (p *WorldBankProvider) StoreRates(ctx context.Context, baseCurrency string) (*domain.RateSet, error) {
	base := strings.ToUpper(baseCurrency)
	raw, err := p.latestDataset(ctx)
	if err != nil {
		return nil, err
	}
	set := &domain.RateSet{
		BaseCurrency: base,
		Rates:        p.cleanRates(ctx, base, p.extractor.ExtractForCurrency(ctx, base, raw)),
		Timestamp:    p.datasetTimestamp(raw),
	}
	if err := p.persistForward(ctx, set); err != nil {
		return nil, err
	}
	return set, nil
}

// StoreRatesBulk parses the latest dataset once and rebases it on every currency.
func (p *WorldBankProvider) StoreRatesBulk(ctx context.Context, baseCurrencies []string) (map[string]domain.RateSet, error) {
	raw, err := p.latestDataset(ctx)
	if err != nil {
		return nil, err
	}
	ts := p.datasetTimestamp(raw)

	codes := make([]string, 0, len(baseCurrencies))
	for _, c := range baseCurrencies {
		codes = append(codes, strings.ToUpper(c))
	}
	sets := make(map[string]domain.RateSet, len(codes))
	for base, rates := range p.extractor.ExtractForMultipleCurrencies(ctx, codes, raw) {
		cleaned := p.cleanRates(ctx, base, rates)
		if len(cleaned) == 0 {
			continue
		}
		sets[base] = domain.RateSet{BaseCurrency: base, Rates: cleaned, Timestamp: ts}
	}
	if err := p.persistForwardBulk(ctx, sets); err != nil {
		return nil, err
	}
	return sets, nil
}

func (p *WorldBankProvider) StoreHistoricalRates(ctx context.Context, baseCurrency string, at time.Time) (*domain.HistoricalRateSet, error) {
	base := strings.ToUpper(baseCurrency)
	raw, err := p.fetchYear(ctx, at.Year())
	if err != nil {
		return nil, err
	}
	set := &domain.HistoricalRateSet{
		BaseCurrency: base,
		Rates:        p.cleanRates(ctx, base, p.extractor.ExtractForCurrency(ctx, base, raw)),
		Date:         utcDay(at),
	}
	if err := p.persistHistorical(ctx, set); err != nil {
		return nil, err
	}
	return set, nil
}

// StoreHistoricalRatesBulk fetches each distinct year once and fans the
// parsed dataset out across the requests for that year.
func (p *WorldBankProvider) StoreHistoricalRatesBulk(ctx context.Context, requests []domain.HistoricalBase) (map[string]map[string]domain.HistoricalRateSet, error) {
	byYear := make(map[int][]domain.HistoricalBase)
	var years []int
	for _, req := range requests {
		y := req.Date.Year()
		if _, ok := byYear[y]; !ok {
			years = append(years, y)
		}
		byYear[y] = append(byYear[y], req)
	}

	result := make(map[string]map[string]domain.HistoricalRateSet)
	for _, year := range years {
		raw, err := p.fetchYear(ctx, year)
		if err != nil {
			return nil, err
		}
		usdRates := p.extractor.ParseToUsdRates(ctx, raw)
		for _, req := range byYear[year] {
			base := strings.ToUpper(req.BaseCurrency)
			rates := p.cleanRates(ctx, base, p.extractor.ComputeCrossCurrencyRates(base, usdRates))
			if len(rates) == 0 {
				continue
			}
			day := utcDay(req.Date)
			if result[base] == nil {
				result[base] = make(map[string]domain.HistoricalRateSet)
			}
			result[base][domain.DateKey(day)] = domain.HistoricalRateSet{BaseCurrency: base, Rates: rates, Date: day}
		}
	}

	if err := p.persistHistoricalBulk(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *WorldBankProvider) GetHistoricalRates(ctx context.Context, baseCurrency string, at time.Time) ([]domain.RatePoint, error) {
	return p.readHistoricalRates(ctx, p.StoreHistoricalRates, baseCurrency, at)
}

func (p *WorldBankProvider) GetHistoricalRate(ctx context.Context, baseCurrency, targetCurrency string, at time.Time) (*domain.RatePoint, error) {
	return p.readHistoricalRate(ctx, p.StoreHistoricalRates, baseCurrency, targetCurrency, at)
}

// GetAvailableCurrencies lists the currencies the latest dataset can price.
func (p *WorldBankProvider) GetAvailableCurrencies(ctx context.Context) ([]string, error) {
	raw, err := p.latestDataset(ctx)
	if err != nil {
		return nil, err
	}
	return p.extractor.GetAvailableCurrencies(ctx, raw), nil
}

var _ portssvc.HistoricalSupport = (*WorldBankProvider)(nil)
