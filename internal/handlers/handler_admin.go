package handlers

import (
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

// adminHandler triggers provider fetches on demand.
type adminHandler struct {
	writer portssvc.ExchangeRateWriterSvc
}

// RegisterAdminRoutes registers the refresh routes. rg is expected to carry AuthMiddleware.
func RegisterAdminRoutes(rg *gin.RouterGroup, writer portssvc.ExchangeRateWriterSvc) {
	h := &adminHandler{writer: writer}

	admin := rg.Group("/admin")
	{
		admin.POST("/refresh", h.refresh)
		admin.POST("/refresh/historical", h.refreshHistorical)
	}
}

// refresh godoc
// @Summary Refresh current rates through the provider chain
// @Tags admin
// @Accept json
// @Produce json
// @Param request body dto.RefreshRequest true "Base currencies to refresh"
// @Success 200 {object} dto.RefreshResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "All providers failed"
// @Security BearerAuth
// @Router /admin/refresh [post]
func (h *adminHandler) refresh(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for refresh", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	operatorID, _ := middleware.GetOperatorIDFromContext(c)
	logger.Info("Refresh requested", slog.String("operator_id", operatorID), slog.Any("currencies", req.Currencies))

	ctx := c.Request.Context()
	var sets map[string]domain.RateSet
	if len(req.Currencies) == 1 {
		set, err := h.writer.StoreRates(ctx, req.Currencies[0])
		if err != nil {
			respondError(c, logger, err, "Failed to refresh rates")
			return
		}
		sets = map[string]domain.RateSet{set.BaseCurrency: *set}
	} else {
		var err error
		if sets, err = h.writer.StoreRatesBulk(ctx, req.Currencies); err != nil {
			respondError(c, logger, err, "Failed to refresh rates")
			return
		}
	}

	provider := h.writer.LastSuccessfulProvider()
	logger.Info("Refresh completed", slog.String("provider", provider), slog.Int("bases", len(sets)))
	c.JSON(http.StatusOK, dto.ToRefreshResponse(provider, sets))
}

// refreshHistorical godoc
// @Summary Backfill historical rates through the provider chain
// @Tags admin
// @Accept json
// @Produce json
// @Param request body dto.HistoricalRefreshRequest true "Base currency and day pairs"
// @Success 200 {object} dto.RefreshResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "All providers failed"
// @Security BearerAuth
// @Router /admin/refresh/historical [post]
func (h *adminHandler) refreshHistorical(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.HistoricalRefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for historical refresh", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	requests := make([]domain.HistoricalBase, 0, len(req.Requests))
	for _, item := range req.Requests {
		day, err := time.Parse(domain.DateLayout, item.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date: " + item.Date})
			return
		}
		requests = append(requests, domain.HistoricalBase{BaseCurrency: strings.ToUpper(item.BaseCurrency), Date: day})
	}

	operatorID, _ := middleware.GetOperatorIDFromContext(c)
	logger.Info("Historical refresh requested", slog.String("operator_id", operatorID), slog.Int("requests", len(requests)))

	ctx := c.Request.Context()
	var sets map[string]map[string]domain.HistoricalRateSet
	if len(requests) == 1 {
		set, err := h.writer.StoreHistoricalRates(ctx, requests[0].BaseCurrency, requests[0].Date)
		if err != nil {
			respondError(c, logger, err, "Failed to refresh historical rates")
			return
		}
		sets = map[string]map[string]domain.HistoricalRateSet{
			set.BaseCurrency: {domain.DateKey(set.Date): *set},
		}
	} else {
		var err error
		if sets, err = h.writer.StoreHistoricalRatesBulk(ctx, requests); err != nil {
			respondError(c, logger, err, "Failed to refresh historical rates")
			return
		}
	}

	provider := h.writer.LastSuccessfulProvider()
	logger.Info("Historical refresh completed", slog.String("provider", provider))
	c.JSON(http.StatusOK, dto.ToHistoricalRefreshResponse(provider, sets))
}
