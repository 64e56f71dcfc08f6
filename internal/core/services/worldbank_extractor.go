package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// usdCurrency anchors the World Bank PA.NUS.FCRF series (local currency units per USD).
const usdCurrency = "USD"

// currencyCountryPriority lists, per currency, the countries whose value wins a
// collision, best first.
var currencyCountryPriority = map[string][]string{
	"EUR": {"EMU", "DEU", "FRA"},
	"USD": {"USA"},
	"GBP": {"GBR"},
}

// WorldBankMetadata is the first element of a World Bank indicator response.
type WorldBankMetadata struct {
	Page        int
	Pages       int
	PerPage     int
	Total       int
	SourceID    string
	LastUpdated string
}

// LastUpdatedAt parses LastUpdated, reporting false when it is missing or malformed.
func (m WorldBankMetadata) LastUpdatedAt() (time.Time, bool) {
	if m.LastUpdated == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", m.LastUpdated)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// PageFetcher returns the raw body of one page of an indicator query.
type PageFetcher func(ctx context.Context, page int) ([]byte, error)

// WorldBankRateExtractor turns a World Bank country-indicator dataset into rate tables.
type WorldBankRateExtractor struct {
	BaseService
	mapper *CurrencyMapper
}

// NewWorldBankRateExtractor builds an extractor around mapper.
func NewWorldBankRateExtractor(mapper *CurrencyMapper) *WorldBankRateExtractor {
	return &WorldBankRateExtractor{mapper: mapper}
}

// ParseMetadata reads the pagination/update metadata of raw.
func ParseMetadata(raw []byte) WorldBankMetadata {
	meta := gjson.GetBytes(raw, "0")
	if !meta.IsObject() {
		return WorldBankMetadata{}
	}
	return WorldBankMetadata{
		Page:        int(meta.Get("page").Int()),
		Pages:       int(meta.Get("pages").Int()),
		PerPage:     int(meta.Get("per_page").Int()),
		Total:       int(meta.Get("total").Int()),
		SourceID:    meta.Get("sourceid").String(),
		LastUpdated: meta.Get("lastupdated").String(),
	}
}

// StitchPages concatenates the data arrays of every page into a single
// [metadata, data] document. first is page 1; fetch is called for pages 2..N.
func StitchPages(ctx context.Context, first []byte, fetch PageFetcher) ([]byte, error) {
	meta := gjson.GetBytes(first, "0")
	pages := int(meta.Get("pages").Int())
	if !meta.IsObject() || pages <= 1 {
		return first, nil
	}

	items := collectItems(first)
	for page := 2; page <= pages; page++ {
		raw, err := fetch(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d of %d: %w", page, pages, err)
		}
		items = append(items, collectItems(raw)...)
	}

	var b strings.Builder
	b.WriteString("[")
	b.WriteString(meta.Raw)
	b.WriteString(",[")
	b.WriteString(strings.Join(items, ","))
	b.WriteString("]]")
	return []byte(b.String()), nil
}

func collectItems(raw []byte) []string {
	data := gjson.GetBytes(raw, "1")
	if !data.IsArray() {
		return nil
	}
	items := make([]string, 0, int(data.Get("#").Int()))
	data.ForEach(func(_, item gjson.Result) bool {
		items = append(items, item.Raw)
		return true
	})
	return items
}

// ParseToUsdRates builds currency -> units per USD from raw. USD is always 1.
func (e *WorldBankRateExtractor) ParseToUsdRates(ctx context.Context, raw []byte) map[string]float64 {
	result := make(map[string]float64)
	data := gjson.GetBytes(raw, "1")
	if !data.IsArray() {
		return result
	}

	sources := make(map[string]string)
	data.ForEach(func(_, item gjson.Result) bool {
		iso3 := strings.ToUpper(strings.TrimSpace(item.Get("countryiso3code").String()))
		if iso3 == "" {
			return true
		}
		value := item.Get("value")
		if !value.Exists() || value.Type == gjson.Null {
			return true
		}
		if e.mapper.IsAggregateRegion(iso3) {
			return true
		}
		currency, ok := e.mapper.MapCountryToCurrency(ctx, iso3)
		if !ok {
			return true
		}

		rate := value.Float()
		existing, seen := result[currency]
		if !seen {
			result[currency] = rate
			sources[currency] = iso3
			return true
		}
		if outranks(currency, sources[currency], iso3) {
			return true
		}
		result[currency] = e.AggregateCurrencyRate(currency, existing, rate, iso3)
		if priorityRank(currency, iso3) >= 0 {
			sources[currency] = iso3
		}
		return true
	})

	result[usdCurrency] = 1.0
	return result
}

// AggregateCurrencyRate resolves a collision between two countries sharing a
// currency: a country on the currency's priority list overrides, anything else
// keeps the first value seen.
func (e *WorldBankRateExtractor) AggregateCurrencyRate(currency string, existingRate, newRate float64, newCountryIso3 string) float64 {
	if priorityRank(currency, newCountryIso3) >= 0 {
		return newRate
	}
	return existingRate
}

// outranks reports whether current holds a strictly better priority slot than candidate.
func outranks(currency, current, candidate string) bool {
	cur := priorityRank(currency, current)
	cand := priorityRank(currency, candidate)
	return cur >= 0 && (cand < 0 || cur < cand)
}

func priorityRank(currency, iso3 string) int {
	for i, code := range currencyCountryPriority[currency] {
		if code == iso3 {
			return i
		}
	}
	return -1
}

// ComputeCrossCurrencyRates rebases usdRates on baseCurrency:
// rate[c] = usdRates[c] / usdRates[base]. Empty when base is absent or zero.
func (e *WorldBankRateExtractor) ComputeCrossCurrencyRates(baseCurrency string, usdRates map[string]float64) map[string]float64 {
	baseRate, ok := usdRates[baseCurrency]
	if !ok || baseRate == 0 {
		return map[string]float64{}
	}

	rates := make(map[string]float64, len(usdRates))
	for currency, usdRate := range usdRates {
		if currency == baseCurrency {
			rates[currency] = 1.0
			continue
		}
		rates[currency] = usdRate / baseRate
	}
	return rates
}

// ExtractForCurrency parses raw and rebases it on code.
func (e *WorldBankRateExtractor) ExtractForCurrency(ctx context.Context, code string, raw []byte) map[string]float64 {
	return e.ComputeCrossCurrencyRates(code, e.ParseToUsdRates(ctx, raw))
}

// ExtractForMultipleCurrencies parses raw once and rebases it on every code.
// Codes with no usable base rate are omitted.
func (e *WorldBankRateExtractor) ExtractForMultipleCurrencies(ctx context.Context, codes []string, raw []byte) map[string]map[string]float64 {
	usdRates := e.ParseToUsdRates(ctx, raw)
	result := make(map[string]map[string]float64, len(codes))
	for _, code := range codes {
		rates := e.ComputeCrossCurrencyRates(code, usdRates)
		if len(rates) == 0 {
			continue
		}
		result[code] = rates
	}
	return result
}

// GetAvailableCurrencies lists the currencies present in raw, sorted.
func (e *WorldBankRateExtractor) GetAvailableCurrencies(ctx context.Context, raw []byte) []string {
	usdRates := e.ParseToUsdRates(ctx, raw)
	currencies := make([]string, 0, len(usdRates))
	for code := range usdRates {
		currencies = append(currencies, code)
	}
	sort.Strings(currencies)
	return currencies
}
