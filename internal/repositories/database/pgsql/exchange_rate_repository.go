package pgsql

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/exchange_rates_service/internal/apperrors"
	"github.com/SscSPs/exchange_rates_service/internal/core/domain"
	portsrepo "github.com/SscSPs/exchange_rates_service/internal/core/ports/repositories"
	"github.com/SscSPs/exchange_rates_service/internal/models"
	"github.com/SscSPs/exchange_rates_service/internal/utils/mapping"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	currentTable = "currency_exchange_rates"
	historyTable = "currency_exchange_rates_history"

	// rateScale matches NUMERIC(20,10).
	rateScale = 10
	// upsertChunkSize keeps a single statement well under the 65535 bind parameter limit.
	upsertChunkSize = 1000
)

// maxStorableRate is the first value that no longer fits NUMERIC(20,10).
var maxStorableRate = decimal.New(1, 20-rateScale)

const currentColumns = `id, base_currency_code, target_currency_code, exchange_rate, provider, last_update_date, created_at, updated_at`

const historyColumns = `id, base_currency_code, target_currency_code, exchange_rate, provider, date_time, last_update_date, created_at, updated_at`

// PgxExchangeRateRepository stores current and historical rates in PostgreSQL.
type PgxExchangeRateRepository struct {
	BaseRepository
	storeInverse bool
}

// RepositoryOption is a functional option for configuring the repository.
type RepositoryOption func(*PgxExchangeRateRepository)

// WithInverseRates makes every upsert also write target->base = 1/rate rows.
func WithInverseRates(enabled bool) RepositoryOption {
	return func(r *PgxExchangeRateRepository) {
		r.storeInverse = enabled
	}
}

// NewPgxExchangeRateRepository creates a new PgxExchangeRateRepository.
func NewPgxExchangeRateRepository(db *pgxpool.Pool, options ...RepositoryOption) *PgxExchangeRateRepository {
	r := &PgxExchangeRateRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
	for _, option := range options {
		option(r)
	}
	return r
}

var _ portsrepo.ExchangeRateRepositoryWithTx = (*PgxExchangeRateRepository)(nil)

// rateRow is one row to upsert. observedAt is zero for the current table.
type rateRow struct {
	base, target string
	rate         decimal.Decimal
	observedAt   time.Time
}

func (r rateRow) key() string {
	return r.base + "|" + r.target + "|" + r.observedAt.UTC().Format(time.RFC3339Nano)
}

// --- writes ---

// UpdateRates upserts the current table for one base currency.
func (r *PgxExchangeRateRepository) UpdateRates(ctx context.Context, baseCurrency string, rates map[string]float64, provider string) error {
	rows, err := r.buildRows(baseCurrency, rates, time.Time{})
	if err != nil {
		return err
	}
	return r.upsert(ctx, currentTable, rows, provider)
}

// UpdateRatesBulk upserts the current table for several base currencies in one transaction.
func (r *PgxExchangeRateRepository) UpdateRatesBulk(ctx context.Context, sets []domain.RateSet, provider string) error {
	if len(sets) == 0 {
		return fmt.Errorf("%w: no rate sets given", apperrors.ErrInvalidArgument)
	}
	var rows []rateRow
	for i, set := range sets {
		if set.BaseCurrency == "" {
			return fmt.Errorf("%w: rate set %d has no base currency", apperrors.ErrInvalidArgument, i)
		}
		setRows, err := r.buildRows(set.BaseCurrency, set.Rates, time.Time{})
		if err != nil {
			return err
		}
		rows = append(rows, setRows...)
	}
	return r.upsert(ctx, currentTable, rows, provider)
}

// UpdateRatesHistory upserts the history table for one base currency at one instant.
func (r *PgxExchangeRateRepository) UpdateRatesHistory(ctx context.Context, baseCurrency string, rates map[string]float64, at time.Time, provider string) error {
	if at.IsZero() {
		return fmt.Errorf("%w: historical rates need a timestamp", apperrors.ErrInvalidArgument)
	}
	rows, err := r.buildRows(baseCurrency, rates, at)
	if err != nil {
		return err
	}
	return r.upsert(ctx, historyTable, rows, provider)
}

// UpdateRatesHistoryBulk upserts several historical sets in one transaction.
func (r *PgxExchangeRateRepository) UpdateRatesHistoryBulk(ctx context.Context, sets []domain.HistoricalRateSet, provider string) error {
	if len(sets) == 0 {
		return fmt.Errorf("%w: no historical rate sets given", apperrors.ErrInvalidArgument)
	}
	var rows []rateRow
	for i, set := range sets {
		if set.BaseCurrency == "" {
			return fmt.Errorf("%w: historical rate set %d has no base currency", apperrors.ErrInvalidArgument, i)
		}
		if set.Date.IsZero() {
			return fmt.Errorf("%w: historical rate set %d (%s) has no date", apperrors.ErrInvalidArgument, i, set.BaseCurrency)
		}
		setRows, err := r.buildRows(set.BaseCurrency, set.Rates, set.Date)
		if err != nil {
			return err
		}
		rows = append(rows, setRows...)
	}
	return r.upsert(ctx, historyTable, rows, provider)
}

func (r *PgxExchangeRateRepository) buildRows(baseCurrency string, rates map[string]float64, at time.Time) ([]rateRow, error) {
	base := strings.ToUpper(strings.TrimSpace(baseCurrency))
	if len(base) != 3 {
		return nil, fmt.Errorf("%w: base currency %q must be 3 letters", apperrors.ErrInvalidArgument, baseCurrency)
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("%w: no rates given for %s", apperrors.ErrInvalidArgument, base)
	}

	rows := make([]rateRow, 0, len(rates))
	for target, value := range rates {
		t := strings.ToUpper(strings.TrimSpace(target))
		if len(t) != 3 {
			return nil, fmt.Errorf("%w: target currency %q for %s must be 3 letters", apperrors.ErrInvalidArgument, target, base)
		}
		if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
			return nil, fmt.Errorf("%w: rate %s/%s must be positive, got %v", apperrors.ErrInvalidArgument, base, t, value)
		}
		rate := decimal.NewFromFloat(value).Round(rateScale)
		if !rate.IsPositive() || rate.GreaterThanOrEqual(maxStorableRate) {
			return nil, fmt.Errorf("%w: rate %s/%s out of storable range: %v", apperrors.ErrInvalidArgument, base, t, value)
		}
		rows = append(rows, rateRow{base: base, target: t, rate: rate, observedAt: at})
	}
	return rows, nil
}

// withInverses adds target->base rows (1/rate truncated to the storage scale)
// ahead of the direct rows so a direct quote always wins the dedupe.
func withInverses(rows []rateRow) []rateRow {
	out := make([]rateRow, 0, len(rows)*2)
	one := decimal.NewFromInt(1)
	for _, row := range rows {
		if row.base == row.target {
			continue
		}
		inverse := one.DivRound(row.rate, rateScale+2).Truncate(rateScale)
		if !inverse.IsPositive() || inverse.GreaterThanOrEqual(maxStorableRate) {
			continue
		}
		out = append(out, rateRow{base: row.target, target: row.base, rate: inverse, observedAt: row.observedAt})
	}
	return append(out, rows...)
}

// dedupe keeps the last row per conflict key. ON CONFLICT DO UPDATE cannot
// touch the same row twice in one statement.
func dedupe(rows []rateRow) []rateRow {
	index := make(map[string]int, len(rows))
	out := make([]rateRow, 0, len(rows))
	for _, row := range rows {
		k := row.key()
		if i, ok := index[k]; ok {
			out[i] = row
			continue
		}
		index[k] = len(out)
		out = append(out, row)
	}
	return out
}

func (r *PgxExchangeRateRepository) upsert(ctx context.Context, table string, rows []rateRow, provider string) error {
	if r.storeInverse {
		rows = withInverses(rows)
	}
	rows = dedupe(rows)

	var providerArg *string
	if provider != "" {
		providerArg = &provider
	}
	now := time.Now().UTC()

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		for start := 0; start < len(rows); start += upsertChunkSize {
			end := min(start+upsertChunkSize, len(rows))
			query, args := buildUpsert(table, rows[start:end], providerArg, now)
			if _, err := tx.Exec(ctx, query, args...); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to upsert %d rows into %s", len(rows), table), err)
	}
	return nil
}

func buildUpsert(table string, rows []rateRow, provider *string, now time.Time) (string, []any) {
	history := table == historyTable
	perRow := 6
	if history {
		perRow = 7
	}

	var b strings.Builder
	args := make([]any, 0, len(rows)*perRow)
	if history {
		b.WriteString("INSERT INTO " + table + " (id, base_currency_code, target_currency_code, exchange_rate, provider, date_time, last_update_date, created_at, updated_at) VALUES ")
	} else {
		b.WriteString("INSERT INTO " + table + " (id, base_currency_code, target_currency_code, exchange_rate, provider, last_update_date, created_at, updated_at) VALUES ")
	}

	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		n := i * perRow
		if history {
			fmt.Fprintf(&b, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6, n+7, n+7, n+7)
			args = append(args, uuid.NewString(), row.base, row.target, row.rate, provider, row.observedAt.UTC(), now)
		} else {
			fmt.Fprintf(&b, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6, n+6, n+6)
			args = append(args, uuid.NewString(), row.base, row.target, row.rate, provider, now)
		}
	}

	if history {
		b.WriteString(` ON CONFLICT (base_currency_code, target_currency_code, date_time) DO UPDATE SET`)
	} else {
		b.WriteString(` ON CONFLICT (base_currency_code, target_currency_code) DO UPDATE SET`)
	}
	b.WriteString(`
			exchange_rate = EXCLUDED.exchange_rate,
			provider = EXCLUDED.provider,
			last_update_date = EXCLUDED.last_update_date,
			updated_at = EXCLUDED.updated_at`)
	return b.String(), args
}

// --- current reads ---

// GetRates lists the current table for one base currency.
func (r *PgxExchangeRateRepository) GetRates(ctx context.Context, baseCurrency string) ([]domain.RatePoint, error) {
	query := `SELECT ` + currentColumns + ` FROM ` + currentTable + `
		WHERE base_currency_code = $1 ORDER BY target_currency_code`
	return r.queryCurrent(ctx, query, strings.ToUpper(baseCurrency))
}

// GetAllRates lists the whole current table.
func (r *PgxExchangeRateRepository) GetAllRates(ctx context.Context) ([]domain.RatePoint, error) {
	query := `SELECT ` + currentColumns + ` FROM ` + currentTable + `
		ORDER BY base_currency_code, target_currency_code`
	return r.queryCurrent(ctx, query)
}

// GetRatesBulk returns current rows grouped by base. Every requested base has a key.
func (r *PgxExchangeRateRepository) GetRatesBulk(ctx context.Context, baseCurrencies []string) (map[string][]domain.RatePoint, error) {
	bases := upperAll(baseCurrencies)
	result := make(map[string][]domain.RatePoint, len(bases))
	for _, b := range bases {
		result[b] = []domain.RatePoint{}
	}
	if len(bases) == 0 {
		return result, nil
	}

	query := `SELECT ` + currentColumns + ` FROM ` + currentTable + `
		WHERE base_currency_code = ANY($1) ORDER BY base_currency_code, target_currency_code`
	points, err := r.queryCurrent(ctx, query, bases)
	if err != nil {
		return nil, err
	}
	for _, p := range points {
		result[p.BaseCurrency] = append(result[p.BaseCurrency], p)
	}
	return result, nil
}

// GetRate returns one current pair or apperrors.ErrNotFound.
func (r *PgxExchangeRateRepository) GetRate(ctx context.Context, baseCurrency, targetCurrency string) (*domain.RatePoint, error) {
	query := `SELECT ` + currentColumns + ` FROM ` + currentTable + `
		WHERE base_currency_code = $1 AND target_currency_code = $2`
	base, target := strings.ToUpper(baseCurrency), strings.ToUpper(targetCurrency)

	m, err := scanCurrent(r.Pool.QueryRow(ctx, query, base, target))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("exchange rate %s/%s not found", base, target))
		}
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to get exchange rate", err)
	}
	p := mapping.ToDomainRatePoint(m)
	return &p, nil
}

// GetRateBulk returns current rows keyed "BASE_TARGET". Every requested pair has a key.
func (r *PgxExchangeRateRepository) GetRateBulk(ctx context.Context, pairs []domain.CurrencyPair) (map[string][]domain.RatePoint, error) {
	result := make(map[string][]domain.RatePoint, len(pairs))
	bases := make([]string, 0, len(pairs))
	targets := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		base, target := strings.ToUpper(pair.BaseCurrency), strings.ToUpper(pair.TargetCurrency)
		key := domain.PairKey(base, target)
		if _, dup := result[key]; dup {
			continue
		}
		result[key] = []domain.RatePoint{}
		bases = append(bases, base)
		targets = append(targets, target)
	}
	if len(bases) == 0 {
		return result, nil
	}

	query := `SELECT c.id, c.base_currency_code, c.target_currency_code, c.exchange_rate, c.provider,
			c.last_update_date, c.created_at, c.updated_at
		FROM ` + currentTable + ` c
		JOIN unnest($1::text[], $2::text[]) AS req(base, target)
			ON c.base_currency_code = req.base
			AND c.target_currency_code = req.target
		ORDER BY c.base_currency_code, c.target_currency_code`
	points, err := r.queryCurrent(ctx, query, bases, targets)
	if err != nil {
		return nil, err
	}
	for _, p := range points {
		key := domain.PairKey(p.BaseCurrency, p.TargetCurrency)
		result[key] = append(result[key], p)
	}
	return result, nil
}

// --- historical reads ---

// GetHistoricalRates lists rows for base observed on the calendar day (UTC) of at.
func (r *PgxExchangeRateRepository) GetHistoricalRates(ctx context.Context, baseCurrency string, at time.Time) ([]domain.RatePoint, error) {
	from, to := dayRange(at)
	query := `SELECT ` + historyColumns + ` FROM ` + historyTable + `
		WHERE base_currency_code = $1 AND date_time >= $2 AND date_time < $3
		ORDER BY target_currency_code, date_time DESC`
	return r.queryHistory(ctx, query, strings.ToUpper(baseCurrency), from, to)
}

// GetBulkHistoricalRates returns rows keyed "BASE_YYYY-MM-DD". Every request has a key.
func (r *PgxExchangeRateRepository) GetBulkHistoricalRates(ctx context.Context, requests []domain.HistoricalBase) (map[string][]domain.RatePoint, error) {
	result := make(map[string][]domain.RatePoint, len(requests))
	if len(requests) == 0 {
		return result, nil
	}

	bases := make([]string, 0, len(requests))
	days := make([]time.Time, 0, len(requests))
	for _, req := range requests {
		base := strings.ToUpper(req.BaseCurrency)
		day, _ := dayRange(req.Date)
		key := domain.BulkHistoricalKey(base, day)
		if _, dup := result[key]; dup {
			continue
		}
		result[key] = []domain.RatePoint{}
		bases = append(bases, base)
		days = append(days, day)
	}

	query := `SELECT h.id, h.base_currency_code, h.target_currency_code, h.exchange_rate, h.provider,
			h.date_time, h.last_update_date, h.created_at, h.updated_at
		FROM ` + historyTable + ` h
		JOIN unnest($1::text[], $2::timestamptz[]) AS req(base, day_start)
			ON h.base_currency_code = req.base
			AND h.date_time >= req.day_start
			AND h.date_time < req.day_start + INTERVAL '1 day'
		ORDER BY h.base_currency_code, h.date_time, h.target_currency_code`
	points, err := r.queryHistory(ctx, query, bases, days)
	if err != nil {
		return nil, err
	}
	for _, p := range points {
		key := domain.BulkHistoricalKey(p.BaseCurrency, p.ObservedAt.UTC())
		result[key] = append(result[key], p)
	}
	return result, nil
}

// GetHistoricalRate returns the latest row for the pair on the day of at, or apperrors.ErrNotFound.
func (r *PgxExchangeRateRepository) GetHistoricalRate(ctx context.Context, baseCurrency, targetCurrency string, at time.Time) (*domain.RatePoint, error) {
	from, to := dayRange(at)
	base, target := strings.ToUpper(baseCurrency), strings.ToUpper(targetCurrency)
	query := `SELECT ` + historyColumns + ` FROM ` + historyTable + `
		WHERE base_currency_code = $1 AND target_currency_code = $2 AND date_time >= $3 AND date_time < $4
		ORDER BY date_time DESC LIMIT 1`

	p, err := r.queryOneHistory(ctx, query, base, target, from, to)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("historical exchange rate %s/%s on %s not found", base, target, domain.DateKey(from)))
	}
	return p, nil
}

// GetBulkHistoricalRate returns rows keyed "BASE_TARGET_YYYY-MM-DD". Every requested pair has a key.
func (r *PgxExchangeRateRepository) GetBulkHistoricalRate(ctx context.Context, pairs []domain.HistoricalCurrencyPair) (map[string][]domain.RatePoint, error) {
	result := make(map[string][]domain.RatePoint, len(pairs))
	bases := make([]string, 0, len(pairs))
	targets := make([]string, 0, len(pairs))
	days := make([]time.Time, 0, len(pairs))
	for _, pair := range pairs {
		base, target := strings.ToUpper(pair.BaseCurrency), strings.ToUpper(pair.TargetCurrency)
		day, _ := dayRange(pair.Date)
		key := domain.HistoricalPairKey(base, target, day)
		if _, dup := result[key]; dup {
			continue
		}
		result[key] = []domain.RatePoint{}
		bases = append(bases, base)
		targets = append(targets, target)
		days = append(days, day)
	}
	if len(bases) == 0 {
		return result, nil
	}

	query := `SELECT h.id, h.base_currency_code, h.target_currency_code, h.exchange_rate, h.provider,
			h.date_time, h.last_update_date, h.created_at, h.updated_at
		FROM ` + historyTable + ` h
		JOIN unnest($1::text[], $2::text[], $3::timestamptz[]) AS req(base, target, day_start)
			ON h.base_currency_code = req.base
			AND h.target_currency_code = req.target
			AND h.date_time >= req.day_start
			AND h.date_time < req.day_start + INTERVAL '1 day'
		ORDER BY h.base_currency_code, h.target_currency_code, h.date_time`
	points, err := r.queryHistory(ctx, query, bases, targets, days)
	if err != nil {
		return nil, err
	}
	for _, p := range points {
		key := domain.HistoricalPairKey(p.BaseCurrency, p.TargetCurrency, p.ObservedAt.UTC())
		result[key] = append(result[key], p)
	}
	return result, nil
}

// GetPreviousHistoricalRate returns the latest row observed at or before at, or nil.
func (r *PgxExchangeRateRepository) GetPreviousHistoricalRate(ctx context.Context, baseCurrency, targetCurrency string, at time.Time) (*domain.RatePoint, error) {
	query := `SELECT ` + historyColumns + ` FROM ` + historyTable + `
		WHERE base_currency_code = $1 AND target_currency_code = $2 AND date_time <= $3
		ORDER BY date_time DESC LIMIT 1`
	return r.queryOneHistory(ctx, query, strings.ToUpper(baseCurrency), strings.ToUpper(targetCurrency), at.UTC())
}

// GetNextHistoricalRate returns the earliest row observed at or after at, or nil.
func (r *PgxExchangeRateRepository) GetNextHistoricalRate(ctx context.Context, baseCurrency, targetCurrency string, at time.Time) (*domain.RatePoint, error) {
	query := `SELECT ` + historyColumns + ` FROM ` + historyTable + `
		WHERE base_currency_code = $1 AND target_currency_code = $2 AND date_time >= $3
		ORDER BY date_time ASC LIMIT 1`
	return r.queryOneHistory(ctx, query, strings.ToUpper(baseCurrency), strings.ToUpper(targetCurrency), at.UTC())
}

// GetBoundingHistoricalRates returns [previous, next] when both exist and are
// different rows; otherwise an empty slice.
func (r *PgxExchangeRateRepository) GetBoundingHistoricalRates(ctx context.Context, baseCurrency, targetCurrency string, at time.Time) ([]domain.RatePoint, error) {
	before, err := r.GetPreviousHistoricalRate(ctx, baseCurrency, targetCurrency, at)
	if err != nil {
		return nil, err
	}
	after, err := r.GetNextHistoricalRate(ctx, baseCurrency, targetCurrency, at)
	if err != nil {
		return nil, err
	}
	if before == nil || after == nil || before.ID == after.ID {
		return []domain.RatePoint{}, nil
	}
	return []domain.RatePoint{*before, *after}, nil
}

// --- helpers ---

func (r *PgxExchangeRateRepository) queryCurrent(ctx context.Context, query string, args ...any) ([]domain.RatePoint, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to query exchange rates", err)
	}
	defer rows.Close()

	var out []models.CurrencyExchangeRate
	for rows.Next() {
		m, err := scanCurrent(rows)
		if err != nil {
			return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to scan exchange rate", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to iterate exchange rates", err)
	}
	return mapping.ToDomainRatePoints(out), nil
}

func (r *PgxExchangeRateRepository) queryHistory(ctx context.Context, query string, args ...any) ([]domain.RatePoint, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to query historical exchange rates", err)
	}
	defer rows.Close()

	var out []models.CurrencyExchangeRate
	for rows.Next() {
		m, err := scanHistory(rows)
		if err != nil {
			return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to scan historical exchange rate", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to iterate historical exchange rates", err)
	}
	return mapping.ToDomainRatePoints(out), nil
}

func (r *PgxExchangeRateRepository) queryOneHistory(ctx context.Context, query string, args ...any) (*domain.RatePoint, error) {
	m, err := scanHistory(r.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to get historical exchange rate", err)
	}
	p := mapping.ToDomainRatePoint(m)
	return &p, nil
}

func scanCurrent(row pgx.Row) (models.CurrencyExchangeRate, error) {
	var m models.CurrencyExchangeRate
	err := row.Scan(&m.ID, &m.BaseCurrencyCode, &m.TargetCurrencyCode, &m.ExchangeRate, &m.Provider,
		&m.LastUpdateDate, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func scanHistory(row pgx.Row) (models.CurrencyExchangeRate, error) {
	var m models.CurrencyExchangeRate
	var observedAt time.Time
	err := row.Scan(&m.ID, &m.BaseCurrencyCode, &m.TargetCurrencyCode, &m.ExchangeRate, &m.Provider,
		&observedAt, &m.LastUpdateDate, &m.CreatedAt, &m.UpdatedAt)
	if err == nil {
		observedAt = observedAt.UTC()
		m.DateTime = &observedAt
	}
	return m, err
}

// dayRange returns [midnight, next midnight) in UTC for the calendar day of at.
func dayRange(at time.Time) (time.Time, time.Time) {
	from := domain.StartOfDay(at.UTC())
	return from, from.AddDate(0, 0, 1)
}

func upperAll(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		u := strings.ToUpper(strings.TrimSpace(c))
		if _, ok := seen[u]; ok || u == "" {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}
