package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/biter777/countries"
)

// aggregateRegions are World Bank codes for regions, income groups and lending
// groups. They do not belong to a single country so they have no currency.
// EMU is deliberately absent: it is resolved to EUR through an override.
// The list tracks the aggregate codes the live PA.NUS.FCRF endpoint returns,
// not every grouping in the World Bank catalogue.
var aggregateRegions = []string{
	"AFE", "AFR", "AFW", "ARB", "CEB", "CSS", "EAP", "EAR", "EAS", "ECA",
	"ECS", "EUU", "FCS", "HIC", "HPC", "IBD", "IBT", "IDA", "IDB", "IDX",
	"INX", "LAC", "LCN", "LDC", "LIC", "LMC", "LMY", "LTE", "MEA", "MIC",
	"MNA", "NAC", "NOC", "OEC", "OED", "OSS", "PRE", "PSS", "PST", "SAS",
	"SSA", "SSF", "SST", "TEA", "TEC", "TLA", "TMN", "TSA", "TSS", "UMC",
	"WLD",
}

// defaultOverrides covers codes the country database cannot resolve, or
// resolves to a currency the World Bank series is not quoted in.
var defaultOverrides = map[string]string{
	"EMU": "EUR",
	"TCA": "USD",
	"VIR": "USD",
	"TLS": "USD",
	"XKX": "EUR",
	"CHI": "GBP",
}

// multiCurrencyPriority pins the currency used for countries with more than
// one legal tender.
var multiCurrencyPriority = map[string]string{
	"ZWE": "ZWL",
	"CUB": "CUP",
	"LSO": "LSL",
	"NAM": "NAD",
	"BTN": "BTN",
}

// CurrencyMapper resolves ISO3 country codes to ISO4217 currency codes.
type CurrencyMapper struct {
	BaseService
	mu         sync.RWMutex
	overrides  map[string]string
	priorities map[string]string
	aggregates map[string]struct{}
}

// NewCurrencyMapper builds a mapper seeded with the built-in tables.
func NewCurrencyMapper() *CurrencyMapper {
	m := &CurrencyMapper{
		overrides:  make(map[string]string, len(defaultOverrides)),
		priorities: make(map[string]string, len(multiCurrencyPriority)),
		aggregates: make(map[string]struct{}, len(aggregateRegions)),
	}
	for k, v := range defaultOverrides {
		m.overrides[k] = v
	}
	for k, v := range multiCurrencyPriority {
		m.priorities[k] = v
	}
	for _, code := range aggregateRegions {
		m.aggregates[code] = struct{}{}
	}
	return m
}

// IsAggregateRegion reports whether iso3 is a multi-country grouping.
func (m *CurrencyMapper) IsAggregateRegion(iso3 string) bool {
	_, ok := m.aggregates[strings.ToUpper(iso3)]
	return ok
}

// AddCurrencyOverride registers or replaces an override for every later lookup.
func (m *CurrencyMapper) AddCurrencyOverride(iso3, currency string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[strings.ToUpper(iso3)] = strings.ToUpper(currency)
}

// MapCountryToCurrency returns the currency for iso3, or "" and false when the
// country is an aggregate or cannot be resolved. Lookup failures are logged.
func (m *CurrencyMapper) MapCountryToCurrency(ctx context.Context, iso3 string) (string, bool) {
	code := strings.ToUpper(strings.TrimSpace(iso3))
	if code == "" || m.IsAggregateRegion(code) {
		return "", false
	}

	m.mu.RLock()
	override, ok := m.overrides[code]
	m.mu.RUnlock()
	if ok {
		return override, true
	}

	if currency, ok := m.priorities[code]; ok {
		return currency, true
	}

	currency, err := lookupCountryCurrency(code)
	if err != nil {
		m.LogWarn(ctx, "Could not map country to currency", slog.String("iso3", code), slog.String("error", err.Error()))
		return "", false
	}
	return currency, true
}

func lookupCountryCurrency(iso3 string) (string, error) {
	country := countries.ByName(iso3)
	if country == countries.Unknown || !country.IsValid() {
		return "", fmt.Errorf("country %s not found in country database", iso3)
	}
	cur := country.Currency()
	if cur == countries.CurrencyUnknown || !cur.IsValid() {
		return "", fmt.Errorf("country %s has no currency on record", iso3)
	}
	return cur.Alpha(), nil
}
