package handlers_test

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/SscSPs/exchange_rates_service/internal/apperrors"
	"github.com/SscSPs/exchange_rates_service/internal/core/domain"
	"github.com/SscSPs/exchange_rates_service/internal/dto"
	"github.com/stretchr/testify/mock"
)

func (suite *HandlersTestSuite) TestRefresh_RequiresToken() {
	w := suite.do(http.MethodPost, "/api/v1/admin/refresh", `{"currencies":["USD"]}`, "")

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.service.AssertNotCalled(suite.T(), "StoreRates", mock.Anything, mock.Anything)
}

func (suite *HandlersTestSuite) TestRefresh_SingleCurrency() {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	set := &domain.RateSet{BaseCurrency: "USD", Rates: map[string]float64{"EUR": 0.83, "GBP": 0.71, "JPY": 108.5}, Timestamp: ts}
	suite.service.On("StoreRates", mock.Anything, "USD").Return(set, nil).Once()
	suite.service.On("LastSuccessfulProvider").Return("exchange_rate_api").Once()

	w := suite.do(http.MethodPost, "/api/v1/admin/refresh", `{"currencies":["USD"]}`, suite.adminToken())

	suite.Require().Equal(http.StatusOK, w.Code)
	var resp dto.RefreshResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("exchange_rate_api", resp.Provider)
	suite.Require().Len(resp.Refreshed, 1)
	suite.Equal(3, resp.Refreshed[0].RateCount)
	suite.True(ts.Equal(resp.Refreshed[0].Timestamp))
	suite.service.AssertExpectations(suite.T())
}

func (suite *HandlersTestSuite) TestRefresh_Bulk() {
	sets := map[string]domain.RateSet{
		"USD": {BaseCurrency: "USD", Rates: map[string]float64{"EUR": 0.83}},
		"EUR": {BaseCurrency: "EUR", Rates: map[string]float64{"USD": 1.2}},
	}
	suite.service.On("StoreRatesBulk", mock.Anything, []string{"usd", "EUR"}).Return(sets, nil).Once()
	suite.service.On("LastSuccessfulProvider").Return("world_bank").Once()

	w := suite.do(http.MethodPost, "/api/v1/admin/refresh", `{"currencies":["usd","EUR"]}`, suite.adminToken())

	suite.Require().Equal(http.StatusOK, w.Code)
	var resp dto.RefreshResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp.Refreshed, 2)
	suite.Equal("EUR", resp.Refreshed[0].BaseCurrency)
	suite.Equal("USD", resp.Refreshed[1].BaseCurrency)
}

func (suite *HandlersTestSuite) TestRefresh_InvalidBody() {
	token := suite.adminToken()

	for _, body := range []string{`{}`, `{"currencies":[]}`, `{"currencies":["US"]}`, `{"currencies":["U$D"]}`, `not json`} {
		w := suite.do(http.MethodPost, "/api/v1/admin/refresh", body, token)
		suite.Equal(http.StatusBadRequest, w.Code, body)
	}
	suite.service.AssertNotCalled(suite.T(), "StoreRates", mock.Anything, mock.Anything)
}

func (suite *HandlersTestSuite) TestRefresh_AllProvidersExhausted() {
	exhausted := &apperrors.AllProvidersExhaustedError{Operation: "StoreRates"}
	suite.service.On("StoreRates", mock.Anything, "USD").Return(nil, exhausted).Once()

	w := suite.do(http.MethodPost, "/api/v1/admin/refresh", `{"currencies":["USD"]}`, suite.adminToken())

	suite.Equal(http.StatusBadGateway, w.Code)
	suite.Contains(w.Body.String(), "Unknown error")
}

func (suite *HandlersTestSuite) TestRefreshHistorical() {
	day := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	set := &domain.HistoricalRateSet{BaseCurrency: "USD", Rates: map[string]float64{"EUR": 0.89}, Date: day}
	suite.service.On("StoreHistoricalRates", mock.Anything, "USD", day).Return(set, nil).Once()
	suite.service.On("LastSuccessfulProvider").Return("open_exchange_rates").Once()

	w := suite.do(http.MethodPost, "/api/v1/admin/refresh/historical",
		`{"requests":[{"base_currency":"usd","date":"2020-01-01"}]}`, suite.adminToken())

	suite.Require().Equal(http.StatusOK, w.Code)
	var resp dto.RefreshResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp.Refreshed, 1)
	suite.Equal("2020-01-01", resp.Refreshed[0].Date)
	suite.Equal("open_exchange_rates", resp.Provider)
}

func (suite *HandlersTestSuite) TestRefreshHistorical_Bulk() {
	y2020 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	y2021 := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	requests := []domain.HistoricalBase{{BaseCurrency: "USD", Date: y2020}, {BaseCurrency: "USD", Date: y2021}}
	result := map[string]map[string]domain.HistoricalRateSet{
		"USD": {
			"2021-01-01": {BaseCurrency: "USD", Rates: map[string]float64{"EUR": 0.82}, Date: y2021},
			"2020-01-01": {BaseCurrency: "USD", Rates: map[string]float64{"EUR": 0.89}, Date: y2020},
		},
	}
	suite.service.On("StoreHistoricalRatesBulk", mock.Anything, requests).Return(result, nil).Once()
	suite.service.On("LastSuccessfulProvider").Return("world_bank").Once()

	w := suite.do(http.MethodPost, "/api/v1/admin/refresh/historical",
		`{"requests":[{"base_currency":"USD","date":"2020-01-01"},{"base_currency":"USD","date":"2021-01-01"}]}`, suite.adminToken())

	suite.Require().Equal(http.StatusOK, w.Code)
	var resp dto.RefreshResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp.Refreshed, 2)
	suite.Equal("2020-01-01", resp.Refreshed[0].Date)
	suite.Equal("2021-01-01", resp.Refreshed[1].Date)
}

func (suite *HandlersTestSuite) TestRefreshHistorical_InvalidDate() {
	w := suite.do(http.MethodPost, "/api/v1/admin/refresh/historical",
		`{"requests":[{"base_currency":"USD","date":"2020-13-45"}]}`, suite.adminToken())

	suite.Equal(http.StatusBadRequest, w.Code)
}
