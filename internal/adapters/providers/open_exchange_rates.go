package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/SscSPs/exchange_rates_service/internal/apperrors"
	"github.com/SscSPs/exchange_rates_service/internal/core/domain"
	portsrepo "github.com/SscSPs/exchange_rates_service/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/exchange_rates_service/internal/core/ports/services"
	"github.com/SscSPs/exchange_rates_service/internal/platform/config"
)

type openExchangeRatesResponse struct {
	Error       bool               `json:"error"`
	Description string             `json:"description"`
	Timestamp   int64              `json:"timestamp"`
	Base        string             `json:"base"`
	Rates       map[string]float64 `json:"rates"`
}

// OpenExchangeRatesProvider serves rates from openexchangerates.org.
type OpenExchangeRatesProvider struct {
	baseProvider
	cfg config.OpenExchangeRatesConfig
}

// NewOpenExchangeRatesProvider creates the openexchangerates.org adapter.
// The app id is sent as "Authorization: Token <app_id>".
func NewOpenExchangeRatesProvider(cfg config.OpenExchangeRatesConfig, repo portsrepo.ExchangeRateRepositoryFacade, opts HTTPOptions) *OpenExchangeRatesProvider {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	headers := map[string]string{"Authorization": "Token " + cfg.AppID}
	return &OpenExchangeRatesProvider{
		baseProvider: baseProvider{
			name:    config.ProviderOpenExchangeRates,
			repo:    repo,
			fetcher: newHTTPFetcher(config.ProviderOpenExchangeRates, headers, opts),
		},
		cfg: cfg,
	}
}

func (p *OpenExchangeRatesProvider) fetch(ctx context.Context, path, base string) (*openExchangeRatesResponse, error) {
	endpoint := fmt.Sprintf("%s/%s?base=%s", p.cfg.BaseURL, path, url.QueryEscape(base))
	body, err := p.fetcher.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	var resp openExchangeRatesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperrors.NewProviderError(p.name, "malformed response", err)
	}
	if resp.Error {
		return nil, apperrors.NewProviderError(p.name, "upstream error: "+resp.Description, nil)
	}
	return &resp, nil
}

func (p *OpenExchangeRatesProvider) fetchLatest(ctx context.Context, base string) (*domain.RateSet, error) {
	resp, err := p.fetch(ctx, "latest.json", base)
	if err != nil {
		return nil, err
	}
	ts := time.Now().UTC()
	if resp.Timestamp > 0 {
		ts = time.Unix(resp.Timestamp, 0).UTC()
	}
	if resp.Base != "" {
		base = strings.ToUpper(resp.Base)
	}
	return &domain.RateSet{BaseCurrency: base, Rates: p.cleanRates(ctx, base, resp.Rates), Timestamp: ts}, nil
}

func (p *OpenExchangeRatesProvider) StoreRates(ctx context.Context, baseCurrency string) (*domain.RateSet, error) {
	set, err := p.fetchLatest(ctx, strings.ToUpper(baseCurrency))
	if err != nil {
		return nil, err
	}
	if err := p.persistForward(ctx, set); err != nil {
		return nil, err
	}
	return set, nil
}

func (p *OpenExchangeRatesProvider) StoreRatesBulk(ctx context.Context, baseCurrencies []string) (map[string]domain.RateSet, error) {
	sets := make(map[string]domain.RateSet, len(baseCurrencies))
	for _, code := range baseCurrencies {
		set, err := p.fetchLatest(ctx, strings.ToUpper(code))
		if err != nil {
			return nil, err
		}
		if !set.IsEmpty() {
			sets[set.BaseCurrency] = *set
		}
	}
	if err := p.persistForwardBulk(ctx, sets); err != nil {
		return nil, err
	}
	return sets, nil
}

func (p *OpenExchangeRatesProvider) fetchHistorical(ctx context.Context, base string, at time.Time) (*domain.HistoricalRateSet, error) {
	day := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
	resp, err := p.fetch(ctx, fmt.Sprintf("historical/%s.json", domain.DateKey(day)), base)
	if err != nil {
		return nil, err
	}
	if resp.Base != "" {
		base = strings.ToUpper(resp.Base)
	}
	return &domain.HistoricalRateSet{BaseCurrency: base, Rates: p.cleanRates(ctx, base, resp.Rates), Date: day}, nil
}

func (p *OpenExchangeRatesProvider) StoreHistoricalRates(ctx context.Context, baseCurrency string, at time.Time) (*domain.HistoricalRateSet, error) {
	set, err := p.fetchHistorical(ctx, strings.ToUpper(baseCurrency), at)
	if err != nil {
		return nil, err
	}
	if err := p.persistHistorical(ctx, set); err != nil {
		return nil, err
	}
	return set, nil
}

func (p *OpenExchangeRatesProvider) StoreHistoricalRatesBulk(ctx context.Context, requests []domain.HistoricalBase) (map[string]map[string]domain.HistoricalRateSet, error) {
	return storeHistoricalSequential(ctx, &p.baseProvider, p.fetchHistorical, requests)
}

func (p *OpenExchangeRatesProvider) GetHistoricalRates(ctx context.Context, baseCurrency string, at time.Time) ([]domain.RatePoint, error) {
	return p.readHistoricalRates(ctx, p.StoreHistoricalRates, baseCurrency, at)
}

func (p *OpenExchangeRatesProvider) GetHistoricalRate(ctx context.Context, baseCurrency, targetCurrency string, at time.Time) (*domain.RatePoint, error) {
	return p.readHistoricalRate(ctx, p.StoreHistoricalRates, baseCurrency, targetCurrency, at)
}

var _ portssvc.HistoricalSupport = (*OpenExchangeRatesProvider)(nil)
