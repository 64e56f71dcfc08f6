package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// InterpolationScale is the number of fractional digits kept on interpolated rates.
const InterpolationScale = 10

// Interpolate returns the rate linearly interpolated in time between two
// historical points bracketing at. Both points must be historical and belong
// to the same currency pair.
func Interpolate(before, after RatePoint, at time.Time) (decimal.Decimal, error) {
	if before.ObservedAt == nil || after.ObservedAt == nil {
		return decimal.Zero, fmt.Errorf("interpolate: both points must be historical")
	}
	if before.BaseCurrency != after.BaseCurrency || before.TargetCurrency != after.TargetCurrency {
		return decimal.Zero, fmt.Errorf("interpolate: pair mismatch %s/%s vs %s/%s",
			before.BaseCurrency, before.TargetCurrency, after.BaseCurrency, after.TargetCurrency)
	}

	from, to := *before.ObservedAt, *after.ObservedAt
	if to.Before(from) {
		before, after = after, before
		from, to = to, from
	}
	span := to.Sub(from)
	if span <= 0 || !at.After(from) {
		return before.Rate, nil
	}
	if !at.Before(to) {
		return after.Rate, nil
	}

	weight := decimal.NewFromInt(int64(at.Sub(from))).Div(decimal.NewFromInt(int64(span)))
	delta := after.Rate.Sub(before.Rate)
	return before.Rate.Add(delta.Mul(weight)).Round(InterpolationScale), nil
}
