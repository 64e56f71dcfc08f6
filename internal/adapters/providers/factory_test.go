package providers_test

import (
	"testing"

	"github.com/SscSPs/exchange_rates_service/internal/adapters/providers"
	"github.com/SscSPs/exchange_rates_service/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildChain(t *testing.T) {
	cfg := &config.Config{}
	deps := providers.Dependencies{Repo: new(MockExchangeRateRepository)}

	chain, err := providers.BuildChain(cfg, []string{config.ProviderWorldBank, config.ProviderExchangeRateAPI}, deps)
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, config.ProviderWorldBank, chain[0].Name())
	assert.Equal(t, config.ProviderExchangeRateAPI, chain[1].Name())

	_, err = providers.BuildChain(cfg, []string{"ecb"}, deps)
	assert.Error(t, err)

	_, err = providers.BuildChain(cfg, nil, deps)
	assert.Error(t, err)
}
