package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day layout used for historical keys and query params.
const DateLayout = "2006-01-02"

// RatePoint is one stored base->target rate. ObservedAt is nil for current rates
// and set for historical rows.
type RatePoint struct {
	ID             string          `json:"id"`
	BaseCurrency   string          `json:"baseCurrency"`
	TargetCurrency string          `json:"targetCurrency"`
	Rate           decimal.Decimal `json:"rate"`
	Provider       *string         `json:"provider,omitempty"`
	ObservedAt     *time.Time      `json:"observedAt,omitempty"`
	LastUpdate     time.Time       `json:"lastUpdate"`
}

// IsHistorical reports whether the point is pinned to an instant.
func (p RatePoint) IsHistorical() bool {
	return p.ObservedAt != nil
}

// RateSet is one base currency's full target->rate table as reported by a provider.
type RateSet struct {
	BaseCurrency string             `json:"baseCurrency"`
	Rates        map[string]float64 `json:"rates"`
	Timestamp    time.Time          `json:"timestamp"`
}

// IsEmpty reports whether the set carries no usable rates.
func (s *RateSet) IsEmpty() bool {
	return s == nil || len(s.Rates) == 0
}

// HistoricalRateSet is a RateSet pinned to a date.
type HistoricalRateSet struct {
	BaseCurrency string             `json:"baseCurrency"`
	Rates        map[string]float64 `json:"rates"`
	Date         time.Time          `json:"date"`
}

// IsEmpty reports whether the set carries no usable rates.
func (s *HistoricalRateSet) IsEmpty() bool {
	return s == nil || len(s.Rates) == 0
}

// HistoricalBase is a single (base currency, date) request of a bulk historical fetch.
type HistoricalBase struct {
	BaseCurrency string    `json:"baseCurrency"`
	Date         time.Time `json:"date"`
}

// Key returns the "BASE_YYYY-MM-DD" key used by bulk historical lookups.
func (h HistoricalBase) Key() string {
	return BulkHistoricalKey(h.BaseCurrency, h.Date)
}

// CurrencyPair is one element of a bulk current-rate lookup.
type CurrencyPair struct {
	BaseCurrency   string `json:"baseCurrency"`
	TargetCurrency string `json:"targetCurrency"`
}

func (p CurrencyPair) Key() string {
	return PairKey(p.BaseCurrency, p.TargetCurrency)
}

// HistoricalCurrencyPair is one element of a bulk historical pair lookup.
type HistoricalCurrencyPair struct {
	BaseCurrency   string    `json:"baseCurrency"`
	TargetCurrency string    `json:"targetCurrency"`
	Date           time.Time `json:"date"`
}

func (p HistoricalCurrencyPair) Key() string {
	return HistoricalPairKey(p.BaseCurrency, p.TargetCurrency, p.Date)
}

// PairKey is "BASE_TARGET".
func PairKey(base, target string) string {
	return base + "_" + target
}

// HistoricalPairKey is "BASE_TARGET_YYYY-MM-DD".
func HistoricalPairKey(base, target string, date time.Time) string {
	return fmt.Sprintf("%s_%s_%s", base, target, DateKey(date))
}

// BulkHistoricalKey builds the "BASE_YYYY-MM-DD" key.
func BulkHistoricalKey(base string, date time.Time) string {
	return fmt.Sprintf("%s_%s", base, DateKey(date))
}

// DateKey formats t as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
