package mapping

import (
	"github.com/SscSPs/exchange_rates_service/internal/core/domain"
	"github.com/SscSPs/exchange_rates_service/internal/models"
)

// ToDomainRatePoint converts a row model to a domain RatePoint.
func ToDomainRatePoint(m models.CurrencyExchangeRate) domain.RatePoint {
	return domain.RatePoint{
		ID:             m.ID,
		BaseCurrency:   m.BaseCurrencyCode,
		TargetCurrency: m.TargetCurrencyCode,
		Rate:           m.ExchangeRate,
		Provider:       m.Provider,
		ObservedAt:     m.DateTime,
		LastUpdate:     m.LastUpdateDate,
	}
}

// ToDomainRatePoints converts a slice of row models.
func ToDomainRatePoints(ms []models.CurrencyExchangeRate) []domain.RatePoint {
	points := make([]domain.RatePoint, len(ms))
	for i, m := range ms {
		points[i] = ToDomainRatePoint(m)
	}
	return points
}
