package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/exchange_rates_service/internal/apperrors"
	"github.com/SscSPs/exchange_rates_service/internal/core/domain"
	portssvc "github.com/SscSPs/exchange_rates_service/internal/core/ports/services"
	"github.com/SscSPs/exchange_rates_service/internal/dto"
	"github.com/SscSPs/exchange_rates_service/internal/handlers"
	"github.com/SscSPs/exchange_rates_service/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const testJWTSecret = "handler-test-secret"

type HandlersTestSuite struct {
	suite.Suite
	router  *gin.Engine
	service *MockExchangeRateService
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func (suite *HandlersTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(dto.RegisterValidators())
}

func (suite *HandlersTestSuite) SetupTest() {
	suite.service = new(MockExchangeRateService)
	cfg := &config.Config{
		JWTSecret:     testJWTSecret,
		IsProduction:  true,
		FallbackOrder: []string{config.ProviderExchangeRateAPI, config.ProviderWorldBank},
	}
	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, cfg, &portssvc.ServiceContainer{ExchangeRate: suite.service}, handlers.RouteDeps{
		Gatherer: prometheus.NewRegistry(),
	})
}

func (suite *HandlersTestSuite) do(method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlersTestSuite) adminToken() string {
	claims := jwt.RegisteredClaims{
		Subject:   "ops-1",
		Audience:  jwt.ClaimStrings{"exchange-rates-admin"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	suite.Require().NoError(err)
	return token
}

func ratePoint(id, base, target, rate string, observedAt *time.Time) domain.RatePoint {
	provider := "exchange_rate_api"
	return domain.RatePoint{
		ID:             id,
		BaseCurrency:   base,
		TargetCurrency: target,
		Rate:           decimal.RequireFromString(rate),
		Provider:       &provider,
		ObservedAt:     observedAt,
	}
}

func (suite *HandlersTestSuite) TestHealthAndMetrics() {
	w := suite.do(http.MethodGet, "/health", "", "")
	suite.Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodGet, "/metrics", "", "")
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestServiceInfo() {
	suite.service.On("LastSuccessfulProvider").Return("world_bank").Once()

	w := suite.do(http.MethodGet, "/api/v1/", "", "")

	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"service":"exchange_rates_service","fallbackOrder":["exchange_rate_api","world_bank"],"lastSuccessfulProvider":"world_bank"}`, w.Body.String())
}

func (suite *HandlersTestSuite) TestGetRates() {
	points := []domain.RatePoint{ratePoint("1", "USD", "EUR", "0.83", nil), ratePoint("2", "USD", "GBP", "0.71", nil)}
	suite.service.On("GetRates", mock.Anything, "USD").Return(points, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/rates/usd", "", "")

	suite.Require().Equal(http.StatusOK, w.Code)
	var resp dto.RateTableResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("USD", resp.BaseCurrency)
	suite.Len(resp.Rates, 2)
	suite.Equal("0.83", resp.Rates[0].Rate.String())
	suite.service.AssertExpectations(suite.T())
}

func (suite *HandlersTestSuite) TestGetRates_Empty() {
	suite.service.On("GetRates", mock.Anything, "CHF").Return([]domain.RatePoint{}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/rates/CHF", "", "")

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestGetRates_InvalidCode() {
	w := suite.do(http.MethodGet, "/api/v1/rates/US1", "", "")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.service.AssertNotCalled(suite.T(), "GetRates", mock.Anything, mock.Anything)
}

func (suite *HandlersTestSuite) TestGetRatesBulk() {
	grouped := map[string][]domain.RatePoint{
		"USD": {ratePoint("1", "USD", "EUR", "0.83", nil)},
		"EUR": {},
	}
	suite.service.On("GetRatesBulk", mock.Anything, []string{"USD", "EUR"}).Return(grouped, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/rates?bases=usd,EUR", "", "")

	suite.Require().Equal(http.StatusOK, w.Code)
	var resp dto.BulkRatesResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Rates["USD"], 1)
	suite.Contains(resp.Rates, "EUR")

	w = suite.do(http.MethodGet, "/api/v1/rates", "", "")
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodGet, "/api/v1/rates?bases=USD,EURO", "", "")
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestGetRate() {
	point := ratePoint("1", "USD", "EUR", "0.83", nil)
	suite.service.On("GetRate", mock.Anything, "USD", "EUR").Return(&point, nil).Once()
	suite.service.On("GetRate", mock.Anything, "USD", "XAU").Return(nil, apperrors.NewNotFoundError("exchange rate USD/XAU not found")).Once()

	w := suite.do(http.MethodGet, "/api/v1/rates/USD/eur", "", "")
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"targetCurrency":"EUR"`)

	w = suite.do(http.MethodGet, "/api/v1/rates/USD/XAU", "", "")
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestGetRate_UnexpectedError() {
	suite.service.On("GetRate", mock.Anything, "USD", "EUR").Return(nil, errors.New("connection reset")).Once()

	w := suite.do(http.MethodGet, "/api/v1/rates/USD/EUR", "", "")

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.NotContains(w.Body.String(), "connection reset")
}

func (suite *HandlersTestSuite) TestGetHistoricalRates() {
	day := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	points := []domain.RatePoint{ratePoint("1", "USD", "EUR", "0.91", &day)}
	suite.service.On("GetHistoricalRates", mock.Anything, "USD", day).Return(points, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/history/USD?date=2023-05-01", "", "")

	suite.Require().Equal(http.StatusOK, w.Code)
	var resp dto.RateTableResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("2023-05-01", resp.Date)
	suite.Len(resp.Rates, 1)

	w = suite.do(http.MethodGet, "/api/v1/history/USD", "", "")
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodGet, "/api/v1/history/USD?date=05/01/2023", "", "")
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestGetHistoricalRate() {
	day := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	point := ratePoint("1", "USD", "EUR", "0.91", &day)
	suite.service.On("GetHistoricalRate", mock.Anything, "USD", "EUR", day).Return(&point, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/history/usd/eur?date=2023-05-01", "", "")

	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"observedAt":"2023-05-01T00:00:00Z"`)
}

func (suite *HandlersTestSuite) TestGetBounds_Interpolates() {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)
	at := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)
	bounds := []domain.RatePoint{ratePoint("1", "USD", "EUR", "0.90", &from), ratePoint("2", "USD", "EUR", "1.00", &to)}
	suite.service.On("GetBoundingHistoricalRates", mock.Anything, "USD", "EUR", at).Return(bounds, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/history/USD/EUR/bounds?at=2024-01-06T00:00:00Z", "", "")

	suite.Require().Equal(http.StatusOK, w.Code)
	var resp dto.BoundsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().NotNil(resp.InterpolatedRate)
	suite.True(decimal.RequireFromString("0.95").Equal(*resp.InterpolatedRate))
	suite.Equal("1", resp.Before.ID)
	suite.Equal("2", resp.After.ID)
}

func (suite *HandlersTestSuite) TestGetBounds_OneSide() {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	prev := ratePoint("1", "USD", "EUR", "0.90", &from)
	suite.service.On("GetBoundingHistoricalRates", mock.Anything, "USD", "EUR", at).Return([]domain.RatePoint{}, nil).Once()
	suite.service.On("GetPreviousHistoricalRate", mock.Anything, "USD", "EUR", at).Return(&prev, nil).Once()
	suite.service.On("GetNextHistoricalRate", mock.Anything, "USD", "EUR", at).Return(nil, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/history/USD/EUR/bounds?at=2024-03-01T00:00:00Z", "", "")

	suite.Require().Equal(http.StatusOK, w.Code)
	var resp dto.BoundsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.NotNil(resp.Before)
	suite.Nil(resp.After)
	suite.Nil(resp.InterpolatedRate)
}

func (suite *HandlersTestSuite) TestGetBounds_ExactMatch() {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	row := ratePoint("7", "USD", "EUR", "0.90", &at)
	suite.service.On("GetBoundingHistoricalRates", mock.Anything, "USD", "EUR", at).Return([]domain.RatePoint{}, nil).Once()
	suite.service.On("GetPreviousHistoricalRate", mock.Anything, "USD", "EUR", at).Return(&row, nil).Once()
	suite.service.On("GetNextHistoricalRate", mock.Anything, "USD", "EUR", at).Return(&row, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/history/USD/EUR/bounds?at=2024-01-01T00:00:00Z", "", "")

	suite.Require().Equal(http.StatusOK, w.Code)
	var resp dto.BoundsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().NotNil(resp.InterpolatedRate)
	suite.True(decimal.RequireFromString("0.9").Equal(*resp.InterpolatedRate))
}

func (suite *HandlersTestSuite) TestGetBounds_NoneAndBadInstant() {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.service.On("GetBoundingHistoricalRates", mock.Anything, "USD", "EUR", at).Return([]domain.RatePoint{}, nil).Once()
	suite.service.On("GetPreviousHistoricalRate", mock.Anything, "USD", "EUR", at).Return(nil, nil).Once()
	suite.service.On("GetNextHistoricalRate", mock.Anything, "USD", "EUR", at).Return(nil, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/history/USD/EUR/bounds?at=2024-01-01T00:00:00Z", "", "")
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.do(http.MethodGet, "/api/v1/history/USD/EUR/bounds?at=yesterday", "", "")
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestGetRateBulk() {
	grouped := map[string][]domain.RatePoint{
		"USD_EUR": {ratePoint("1", "USD", "EUR", "0.83", nil)},
		"GBP_JPY": {},
	}
	suite.service.On("GetRateBulk", mock.Anything, []domain.CurrencyPair{
		{BaseCurrency: "USD", TargetCurrency: "EUR"},
		{BaseCurrency: "GBP", TargetCurrency: "JPY"},
	}).Return(grouped, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/pairs?pairs=usd_eur,GBP_JPY", "", "")

	suite.Require().Equal(http.StatusOK, w.Code)
	var resp dto.BulkRatesResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Rates["USD_EUR"], 1)
	suite.Contains(resp.Rates, "GBP_JPY")

	for _, query := range []string{"", "?pairs=USDEUR", "?pairs=USD_EURO", "?pairs=,"} {
		w = suite.do(http.MethodGet, "/api/v1/pairs"+query, "", "")
		suite.Equal(http.StatusBadRequest, w.Code, query)
	}
	suite.service.AssertNumberOfCalls(suite.T(), "GetRateBulk", 1)
}

func (suite *HandlersTestSuite) TestGetBulkHistoricalRate() {
	day := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	grouped := map[string][]domain.RatePoint{
		"USD_EUR_2020-01-01": {ratePoint("1", "USD", "EUR", "0.89", &day)},
	}
	suite.service.On("GetBulkHistoricalRate", mock.Anything, []domain.HistoricalCurrencyPair{
		{BaseCurrency: "USD", TargetCurrency: "EUR", Date: day},
	}).Return(grouped, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/pairs/history?pairs=USD_EUR&date=2020-01-01", "", "")

	suite.Require().Equal(http.StatusOK, w.Code)
	var resp dto.BulkRatesResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Rates["USD_EUR_2020-01-01"], 1)

	w = suite.do(http.MethodGet, "/api/v1/pairs/history?pairs=USD_EUR", "", "")
	suite.Equal(http.StatusBadRequest, w.Code)
}
