package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/exchange_rates_service/internal/core/domain"
	portssvc "github.com/SscSPs/exchange_rates_service/internal/core/ports/services"
	"github.com/SscSPs/exchange_rates_service/internal/dto"
	"github.com/SscSPs/exchange_rates_service/internal/middleware"
	"github.com/gin-gonic/gin"
)

// maxBulkBases bounds GET /rates?bases=.
const maxBulkBases = 50

// exchangeRateHandler handles HTTP requests related to exchange rates.
type exchangeRateHandler struct {
	exchangeRateService portssvc.ExchangeRateReaderSvc
}

// newExchangeRateHandler creates a new exchangeRateHandler.
func newExchangeRateHandler(ers portssvc.ExchangeRateReaderSvc) *exchangeRateHandler {
	return &exchangeRateHandler{
		exchangeRateService: ers,
	}
}

// RegisterExchangeRateRoutes registers the read-only rate routes.
func RegisterExchangeRateRoutes(rg *gin.RouterGroup, exchangeRateService portssvc.ExchangeRateReaderSvc) {
	h := newExchangeRateHandler(exchangeRateService)

	rates := rg.Group("/rates")
	{
		rates.GET("", h.getRatesBulk)
		rates.GET("/:base", h.getRates)
		rates.GET("/:base/:target", h.getRate)
	}

	pairs := rg.Group("/pairs")
	{
		pairs.GET("", h.getRateBulk)
		pairs.GET("/history", h.getBulkHistoricalRate)
	}

	history := rg.Group("/history")
	{
		history.GET("/:base", h.getHistoricalRates)
		history.GET("/:base/:target", h.getHistoricalRate)
		history.GET("/:base/:target/bounds", h.getBounds)
	}
}

func currencyParam(c *gin.Context, name string) (string, error) {
	code := c.Param(name)
	if !dto.IsCurrencyCode(code) {
		return "", fmt.Errorf("%s must be a 3-letter currency code", name)
	}
	return strings.ToUpper(code), nil
}

func dateQuery(c *gin.Context) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return time.Time{}, fmt.Errorf("date query parameter is required (YYYY-MM-DD)")
	}
	d, err := time.Parse(domain.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be formatted as YYYY-MM-DD")
	}
	return d, nil
}

// pairsQuery parses pairs=USD_EUR,GBP_JPY.
func pairsQuery(c *gin.Context) ([]domain.CurrencyPair, error) {
	var pairs []domain.CurrencyPair
	for _, part := range strings.Split(c.Query("pairs"), ",") {
		raw := strings.TrimSpace(part)
		if raw == "" {
			continue
		}
		base, target, ok := strings.Cut(raw, "_")
		if !ok || !dto.IsCurrencyCode(base) || !dto.IsCurrencyCode(target) {
			return nil, fmt.Errorf("invalid currency pair %q, expected BASE_TARGET", raw)
		}
		pairs = append(pairs, domain.CurrencyPair{BaseCurrency: strings.ToUpper(base), TargetCurrency: strings.ToUpper(target)})
	}
	if len(pairs) == 0 || len(pairs) > maxBulkBases {
		return nil, fmt.Errorf("pairs must list between 1 and %d currency pairs", maxBulkBases)
	}
	return pairs, nil
}

// getRates godoc
// @Summary List current rates for a base currency
// @Tags rates
// @Produce json
// @Param base path string true "Base currency code" MinLength(3) MaxLength(3)
// @Success 200 {object} dto.RateTableResponse
// @Failure 400 {object} map[string]string "Invalid currency code"
// @Failure 404 {object} map[string]string "No rates stored"
// @Failure 500 {object} map[string]string "Failed to retrieve rates"
// @Router /rates/{base} [get]
func (h *exchangeRateHandler) getRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	base, err := currencyParam(c, "base")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	points, err := h.exchangeRateService.GetRates(c.Request.Context(), base)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve rates")
		return
	}
	if len(points) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No rates stored for " + base})
		return
	}
	c.JSON(http.StatusOK, dto.RateTableResponse{BaseCurrency: base, Rates: dto.ToRateResponses(points)})
}

// getRatesBulk godoc
// @Summary List current rates for several base currencies
// @Tags rates
// @Produce json
// @Param bases query string true "Comma-separated base currency codes"
// @Success 200 {object} dto.BulkRatesResponse
// @Failure 400 {object} map[string]string "Invalid currency codes"
// @Failure 500 {object} map[string]string "Failed to retrieve rates"
// @Router /rates [get]
func (h *exchangeRateHandler) getRatesBulk(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var bases []string
	for _, part := range strings.Split(c.Query("bases"), ",") {
		code := strings.TrimSpace(part)
		if code == "" {
			continue
		}
		if !dto.IsCurrencyCode(code) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid currency code: " + code})
			return
		}
		bases = append(bases, strings.ToUpper(code))
	}
	if len(bases) == 0 || len(bases) > maxBulkBases {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("bases must list between 1 and %d currency codes", maxBulkBases)})
		return
	}

	grouped, err := h.exchangeRateService.GetRatesBulk(c.Request.Context(), bases)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve rates")
		return
	}
	c.JSON(http.StatusOK, dto.ToBulkRatesResponse(grouped))
}

// getRate godoc
// @Summary Get the current rate for a currency pair
// @Tags rates
// @Produce json
// @Param base path string true "Base currency code"
// @Param target path string true "Target currency code"
// @Success 200 {object} dto.RateResponse
// @Failure 400 {object} map[string]string "Invalid currency code"
// @Failure 404 {object} map[string]string "Rate not found"
// @Failure 500 {object} map[string]string "Failed to retrieve rate"
// @Router /rates/{base}/{target} [get]
func (h *exchangeRateHandler) getRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	base, err := currencyParam(c, "base")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	target, err := currencyParam(c, "target")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logger = logger.With(slog.String("base", base), slog.String("target", target))
	point, err := h.exchangeRateService.GetRate(c.Request.Context(), base, target)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve rate")
		return
	}
	c.JSON(http.StatusOK, dto.ToRateResponse(*point))
}

// getRateBulk godoc
// @Summary Get current rates for several currency pairs
// @Tags rates
// @Produce json
// @Param pairs query string true "Comma-separated pairs, e.g. USD_EUR,GBP_JPY"
// @Success 200 {object} dto.BulkRatesResponse
// @Failure 400 {object} map[string]string "Invalid currency pairs"
// @Failure 500 {object} map[string]string "Failed to retrieve rates"
// @Router /pairs [get]
func (h *exchangeRateHandler) getRateBulk(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	pairs, err := pairsQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	grouped, err := h.exchangeRateService.GetRateBulk(c.Request.Context(), pairs)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve rates")
		return
	}
	c.JSON(http.StatusOK, dto.ToBulkRatesResponse(grouped))
}

// getBulkHistoricalRate godoc
// @Summary Get stored historical rates for several currency pairs on a day
// @Tags history
// @Produce json
// @Param pairs query string true "Comma-separated pairs, e.g. USD_EUR,GBP_JPY"
// @Param date query string true "Day (YYYY-MM-DD)"
// @Success 200 {object} dto.BulkRatesResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to retrieve rates"
// @Router /pairs/history [get]
func (h *exchangeRateHandler) getBulkHistoricalRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	pairs, err := pairsQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	day, err := dateQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requests := make([]domain.HistoricalCurrencyPair, 0, len(pairs))
	for _, p := range pairs {
		requests = append(requests, domain.HistoricalCurrencyPair{BaseCurrency: p.BaseCurrency, TargetCurrency: p.TargetCurrency, Date: day})
	}
	grouped, err := h.exchangeRateService.GetBulkHistoricalRate(c.Request.Context(), requests)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve historical rates")
		return
	}
	c.JSON(http.StatusOK, dto.ToBulkRatesResponse(grouped))
}

// getHistoricalRates godoc
// @Summary List stored historical rates for a base currency on a day
// @Tags history
// @Produce json
// @Param base path string true "Base currency code"
// @Param date query string true "Day (YYYY-MM-DD)"
// @Success 200 {object} dto.RateTableResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "No rates stored for that day"
// @Failure 500 {object} map[string]string "Failed to retrieve rates"
// @Router /history/{base} [get]
func (h *exchangeRateHandler) getHistoricalRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	base, err := currencyParam(c, "base")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	day, err := dateQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	points, err := h.exchangeRateService.GetHistoricalRates(c.Request.Context(), base, day)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve historical rates")
		return
	}
	if len(points) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("No rates stored for %s on %s", base, domain.DateKey(day))})
		return
	}
	c.JSON(http.StatusOK, dto.RateTableResponse{
		BaseCurrency: base,
		Date:         domain.DateKey(day),
		Rates:        dto.ToRateResponses(points),
	})
}

// getHistoricalRate godoc
// @Summary Get a stored historical rate for a currency pair on a day
// @Tags history
// @Produce json
// @Param base path string true "Base currency code"
// @Param target path string true "Target currency code"
// @Param date query string true "Day (YYYY-MM-DD)"
// @Success 200 {object} dto.RateResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Rate not found"
// @Failure 500 {object} map[string]string "Failed to retrieve rate"
// @Router /history/{base}/{target} [get]
func (h *exchangeRateHandler) getHistoricalRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	base, err := currencyParam(c, "base")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	target, err := currencyParam(c, "target")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	day, err := dateQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	point, err := h.exchangeRateService.GetHistoricalRate(c.Request.Context(), base, target, day)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve historical rate")
		return
	}
	c.JSON(http.StatusOK, dto.ToRateResponse(*point))
}

// getBounds godoc
// @Summary Get the stored rates around an instant and the interpolated rate
// @Tags history
// @Produce json
// @Param base path string true "Base currency code"
// @Param target path string true "Target currency code"
// @Param at query string true "Instant (RFC3339)"
// @Success 200 {object} dto.BoundsResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "No historical rates around that instant"
// @Failure 500 {object} map[string]string "Failed to retrieve rates"
// @Router /history/{base}/{target}/bounds [get]
func (h *exchangeRateHandler) getBounds(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ctx := c.Request.Context()
	base, err := currencyParam(c, "base")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	target, err := currencyParam(c, "target")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	at, err := time.Parse(time.RFC3339, c.Query("at"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at must be an RFC3339 timestamp"})
		return
	}

	resp := dto.BoundsResponse{BaseCurrency: base, TargetCurrency: target, At: at}

	bounds, err := h.exchangeRateService.GetBoundingHistoricalRates(ctx, base, target, at)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve bounding rates")
		return
	}
	if len(bounds) == 2 {
		before, after := dto.ToRateResponse(bounds[0]), dto.ToRateResponse(bounds[1])
		resp.Before, resp.After = &before, &after
		rate, err := domain.Interpolate(bounds[0], bounds[1], at)
		if err != nil {
			respondError(c, logger, err, "Failed to interpolate rate")
			return
		}
		resp.InterpolatedRate = &rate
		c.JSON(http.StatusOK, resp)
		return
	}

	// Fewer than two distinct rows: report whichever side exists.
	prev, err := h.exchangeRateService.GetPreviousHistoricalRate(ctx, base, target, at)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve previous rate")
		return
	}
	next, err := h.exchangeRateService.GetNextHistoricalRate(ctx, base, target, at)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve next rate")
		return
	}
	if prev == nil && next == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No historical rates stored for " + base + "/" + target})
		return
	}
	if prev != nil {
		r := dto.ToRateResponse(*prev)
		resp.Before = &r
	}
	if next != nil {
		r := dto.ToRateResponse(*next)
		resp.After = &r
	}
	// Both sides resolved to one row stored exactly at the instant.
	if prev != nil && next != nil && prev.ID == next.ID {
		rate := prev.Rate
		resp.InterpolatedRate = &rate
	}
	c.JSON(http.StatusOK, resp)
}
