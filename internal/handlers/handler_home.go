package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/exchange_rates_service/internal/core/ports/services"
	"github.com/SscSPs/exchange_rates_service/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// getServiceInfo godoc
// @Summary Show the provider chain and the provider that last served a refresh.
// @Tags root
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func getServiceInfo(cfg *config.Config, writer portssvc.ExchangeRateWriterSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":                "exchange_rates_service",
			"fallbackOrder":          cfg.FallbackOrder,
			"lastSuccessfulProvider": writer.LastSuccessfulProvider(),
		})
	}
}

func registerServiceInfoRoutes(group *gin.RouterGroup, cfg *config.Config, writer portssvc.ExchangeRateWriterSvc) {
	group.GET("/", getServiceInfo(cfg, writer))
}
