package dto

import (
	"sort"
	"time"

	"github.com/SscSPs/exchange_rates_service/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RateResponse is one stored base->target rate.
type RateResponse struct {
	ID             string          `json:"id"`
	BaseCurrency   string          `json:"baseCurrency"`
	TargetCurrency string          `json:"targetCurrency"`
	Rate           decimal.Decimal `json:"rate" swaggertype:"string"`
	Provider       *string         `json:"provider,omitempty"`
	ObservedAt     *time.Time      `json:"observedAt,omitempty"`
	LastUpdate     time.Time       `json:"lastUpdate"`
}

// RateTableResponse lists every stored target for one base currency.
type RateTableResponse struct {
	BaseCurrency string         `json:"baseCurrency"`
	Date         string         `json:"date,omitempty"`
	Rates        []RateResponse `json:"rates"`
}

// BulkRatesResponse maps each requested base currency to its rows.
type BulkRatesResponse struct {
	Rates map[string][]RateResponse `json:"rates"`
}

// BoundsResponse carries the stored rows either side of an instant and, when
// both exist, the linearly interpolated rate.
type BoundsResponse struct {
	BaseCurrency     string           `json:"baseCurrency"`
	TargetCurrency   string           `json:"targetCurrency"`
	At               time.Time        `json:"at"`
	Before           *RateResponse    `json:"before,omitempty"`
	After            *RateResponse    `json:"after,omitempty"`
	InterpolatedRate *decimal.Decimal `json:"interpolatedRate,omitempty" swaggertype:"string"`
}

// RefreshRequest asks the provider chain to refresh current rates.
type RefreshRequest struct {
	Currencies []string `json:"currencies" binding:"required,min=1,max=50,dive,currency_code"`
}

// HistoricalRefreshItem is one (base currency, day) pair to backfill.
type HistoricalRefreshItem struct {
	BaseCurrency string `json:"base_currency" binding:"required,currency_code"`
	Date         string `json:"date" binding:"required,datetime=2006-01-02"`
}

// HistoricalRefreshRequest asks the provider chain to backfill historical rates.
type HistoricalRefreshRequest struct {
	Requests []HistoricalRefreshItem `json:"requests" binding:"required,min=1,max=500,dive"`
}

// RefreshedSet summarizes one stored rate table.
type RefreshedSet struct {
	BaseCurrency string    `json:"baseCurrency"`
	Date         string    `json:"date,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	RateCount    int       `json:"rateCount"`
}

// RefreshResponse reports which provider served a refresh and what it stored.
type RefreshResponse struct {
	Provider  string         `json:"provider"`
	Refreshed []RefreshedSet `json:"refreshed"`
}

// ToRateResponse converts a domain.RatePoint to RateResponse DTO
func ToRateResponse(p domain.RatePoint) RateResponse {
	return RateResponse{
		ID:             p.ID,
		BaseCurrency:   p.BaseCurrency,
		TargetCurrency: p.TargetCurrency,
		Rate:           p.Rate,
		Provider:       p.Provider,
		ObservedAt:     p.ObservedAt,
		LastUpdate:     p.LastUpdate,
	}
}

// ToRateResponses converts a slice of domain.RatePoint to RateResponse DTOs.
func ToRateResponses(points []domain.RatePoint) []RateResponse {
	responses := make([]RateResponse, len(points))
	for i, p := range points {
		responses[i] = ToRateResponse(p)
	}
	return responses
}

// ToBulkRatesResponse converts grouped rows, keeping empty groups.
func ToBulkRatesResponse(grouped map[string][]domain.RatePoint) BulkRatesResponse {
	out := BulkRatesResponse{Rates: make(map[string][]RateResponse, len(grouped))}
	for base, points := range grouped {
		out.Rates[base] = ToRateResponses(points)
	}
	return out
}

// ToRefreshResponse summarizes forward refresh results, sorted by base currency.
func ToRefreshResponse(provider string, sets map[string]domain.RateSet) RefreshResponse {
	out := RefreshResponse{Provider: provider, Refreshed: make([]RefreshedSet, 0, len(sets))}
	for _, set := range sets {
		out.Refreshed = append(out.Refreshed, RefreshedSet{
			BaseCurrency: set.BaseCurrency,
			Timestamp:    set.Timestamp,
			RateCount:    len(set.Rates),
		})
	}
	sort.Slice(out.Refreshed, func(i, j int) bool {
		return out.Refreshed[i].BaseCurrency < out.Refreshed[j].BaseCurrency
	})
	return out
}

// ToHistoricalRefreshResponse summarizes backfill results, sorted by base then date.
func ToHistoricalRefreshResponse(provider string, sets map[string]map[string]domain.HistoricalRateSet) RefreshResponse {
	out := RefreshResponse{Provider: provider, Refreshed: []RefreshedSet{}}
	for _, byDate := range sets {
		for key, set := range byDate {
			out.Refreshed = append(out.Refreshed, RefreshedSet{
				BaseCurrency: set.BaseCurrency,
				Date:         key,
				Timestamp:    set.Date,
				RateCount:    len(set.Rates),
			})
		}
	}
	sort.Slice(out.Refreshed, func(i, j int) bool {
		a, b := out.Refreshed[i], out.Refreshed[j]
		if a.BaseCurrency != b.BaseCurrency {
			return a.BaseCurrency < b.BaseCurrency
		}
		return a.Date < b.Date
	})
	return out
}
