package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/exchange_rates_service/internal/apperrors"
	"github.com/SscSPs/exchange_rates_service/internal/core/domain"
	portsrepo "github.com/SscSPs/exchange_rates_service/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/exchange_rates_service/internal/core/ports/services"
	"github.com/SscSPs/exchange_rates_service/internal/platform/config"
)

type exchangeRateAPIResponse struct {
	Result             string             `json:"result"`
	ErrorType          string             `json:"error-type"`
	BaseCode           string             `json:"base_code"`
	TimeLastUpdateUnix int64              `json:"time_last_update_unix"`
	Year               int                `json:"year"`
	Month              int                `json:"month"`
	Day                int                `json:"day"`
	ConversionRates    map[string]float64 `json:"conversion_rates"`
}

// ExchangeRateAPIProvider serves rates from exchangerate-api.com.
type ExchangeRateAPIProvider struct {
	baseProvider
	cfg config.ExchangeRateAPIConfig
}

// NewExchangeRateAPIProvider creates the exchangerate-api.com adapter.
func NewExchangeRateAPIProvider(cfg config.ExchangeRateAPIConfig, repo portsrepo.ExchangeRateRepositoryFacade, opts HTTPOptions) *ExchangeRateAPIProvider {
	if cfg.Version == "" {
		cfg.Version = "v6"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &ExchangeRateAPIProvider{
		baseProvider: baseProvider{
			name:    config.ProviderExchangeRateAPI,
			repo:    repo,
			fetcher: newHTTPFetcher(config.ProviderExchangeRateAPI, nil, opts),
		},
		cfg: cfg,
	}
}

func (p *ExchangeRateAPIProvider) endpoint(path string) string {
	return fmt.Sprintf("%s/%s/%s/%s", p.cfg.BaseURL, p.cfg.Version, p.cfg.Token, path)
}

func (p *ExchangeRateAPIProvider) fetch(ctx context.Context, path string) (*exchangeRateAPIResponse, error) {
	body, err := p.fetcher.get(ctx, p.endpoint(path))
	if err != nil {
		return nil, err
	}
	var resp exchangeRateAPIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperrors.NewProviderError(p.name, "malformed response", err)
	}
	if resp.Result != "" && resp.Result != "success" {
		return nil, apperrors.NewProviderError(p.name, "upstream error: "+resp.ErrorType, nil)
	}
	return &resp, nil
}

func (p *ExchangeRateAPIProvider) fetchLatest(ctx context.Context, base string) (*domain.RateSet, error) {
	resp, err := p.fetch(ctx, "latest/"+base)
	if err != nil {
		return nil, err
	}
	ts := time.Now().UTC()
	if resp.TimeLastUpdateUnix > 0 {
		ts = time.Unix(resp.TimeLastUpdateUnix, 0).UTC()
	}
	if resp.BaseCode != "" {
		base = strings.ToUpper(resp.BaseCode)
	}
	return &domain.RateSet{
		BaseCurrency: base,
		Rates:        p.cleanRates(ctx, base, resp.ConversionRates),
		Timestamp:    ts,
	}, nil
}

func (p *ExchangeRateAPIProvider) StoreRates(ctx context.Context, baseCurrency string) (*domain.RateSet, error) {
	var set *domain.RateSet
	err := p.LogDuration(ctx, "Stored latest rates", func() error {
		var err error
		if set, err = p.fetchLatest(ctx, strings.ToUpper(baseCurrency)); err != nil {
			return err
		}
		return p.persistForward(ctx, set)
	}, slog.String("provider", p.name), slog.String("base", baseCurrency))
	if err != nil {
		return nil, err
	}
	return set, nil
}

// StoreRatesBulk fetches every currency before writing anything; one failed
// fetch fails the whole batch.
func (p *ExchangeRateAPIProvider) StoreRatesBulk(ctx context.Context, baseCurrencies []string) (map[string]domain.RateSet, error) {
	sets := make(map[string]domain.RateSet, len(baseCurrencies))
	for _, code := range baseCurrencies {
		set, err := p.fetchLatest(ctx, strings.ToUpper(code))
		if err != nil {
			return nil, err
		}
		if set.IsEmpty() {
			continue
		}
		sets[set.BaseCurrency] = *set
	}
	if err := p.persistForwardBulk(ctx, sets); err != nil {
		return nil, err
	}
	return sets, nil
}

func (p *ExchangeRateAPIProvider) fetchHistorical(ctx context.Context, base string, at time.Time) (*domain.HistoricalRateSet, error) {
	y, m, d := at.Date()
	resp, err := p.fetch(ctx, fmt.Sprintf("history/%s/%d/%d/%d", base, y, int(m), d))
	if err != nil {
		return nil, err
	}
	date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if resp.Year > 0 && resp.Month > 0 && resp.Day > 0 {
		date = time.Date(resp.Year, time.Month(resp.Month), resp.Day, 0, 0, 0, 0, time.UTC)
	}
	if resp.BaseCode != "" {
		base = strings.ToUpper(resp.BaseCode)
	}
	return &domain.HistoricalRateSet{
		BaseCurrency: base,
		Rates:        p.cleanRates(ctx, base, resp.ConversionRates),
		Date:         date,
	}, nil
}

func (p *ExchangeRateAPIProvider) StoreHistoricalRates(ctx context.Context, baseCurrency string, at time.Time) (*domain.HistoricalRateSet, error) {
	set, err := p.fetchHistorical(ctx, strings.ToUpper(baseCurrency), at)
	if err != nil {
		return nil, err
	}
	if err := p.persistHistorical(ctx, set); err != nil {
		return nil, err
	}
	return set, nil
}

func (p *ExchangeRateAPIProvider) StoreHistoricalRatesBulk(ctx context.Context, requests []domain.HistoricalBase) (map[string]map[string]domain.HistoricalRateSet, error) {
	return storeHistoricalSequential(ctx, &p.baseProvider, p.fetchHistorical, requests)
}

func (p *ExchangeRateAPIProvider) GetHistoricalRates(ctx context.Context, baseCurrency string, at time.Time) ([]domain.RatePoint, error) {
	return p.readHistoricalRates(ctx, p.StoreHistoricalRates, baseCurrency, at)
}

func (p *ExchangeRateAPIProvider) GetHistoricalRate(ctx context.Context, baseCurrency, targetCurrency string, at time.Time) (*domain.RatePoint, error) {
	return p.readHistoricalRate(ctx, p.StoreHistoricalRates, baseCurrency, targetCurrency, at)
}

var _ portssvc.HistoricalSupport = (*ExchangeRateAPIProvider)(nil)

// storeHistoricalSequential issues one request per (base, date), then writes
// everything in one batch. Any fetch error fails the batch.
func storeHistoricalSequential(
	ctx context.Context,
	p *baseProvider,
	fetch func(ctx context.Context, base string, at time.Time) (*domain.HistoricalRateSet, error),
	requests []domain.HistoricalBase,
) (map[string]map[string]domain.HistoricalRateSet, error) {
	result := make(map[string]map[string]domain.HistoricalRateSet)
	for _, req := range requests {
		set, err := fetch(ctx, strings.ToUpper(req.BaseCurrency), req.Date)
		if err != nil {
			return nil, err
		}
		if set.IsEmpty() {
			continue
		}
		if result[set.BaseCurrency] == nil {
			result[set.BaseCurrency] = make(map[string]domain.HistoricalRateSet)
		}
		result[set.BaseCurrency][domain.DateKey(set.Date)] = *set
	}
	if err := p.persistHistoricalBulk(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}
