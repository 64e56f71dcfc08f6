package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyExchangeRate is a row of currency_exchange_rates or, when DateTime
// is set, of currency_exchange_rates_history.
type CurrencyExchangeRate struct {
	ID                 string          `db:"id"`
	BaseCurrencyCode   string          `db:"base_currency_code"`
	TargetCurrencyCode string          `db:"target_currency_code"`
	ExchangeRate       decimal.Decimal `db:"exchange_rate"`
	Provider           *string         `db:"provider"`
	DateTime           *time.Time      `db:"date_time"`
	LastUpdateDate     time.Time       `db:"last_update_date"`
	CreatedAt          time.Time       `db:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at"`
}
