package providers

import (
	"fmt"

	"github.com/SscSPs/exchange_rates_service/internal/core/ports/caches"
	portsrepo "github.com/SscSPs/exchange_rates_service/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/exchange_rates_service/internal/core/ports/services"
	"github.com/SscSPs/exchange_rates_service/internal/core/services"
	"github.com/SscSPs/exchange_rates_service/internal/platform/config"
)

// Dependencies are the collaborators shared by every adapter.
type Dependencies struct {
	Repo      portsrepo.ExchangeRateRepositoryFacade
	Cache     caches.ResponseCache
	Extractor *services.WorldBankRateExtractor
	HTTP      HTTPOptions
}

// BuildChain constructs the adapters named in order, in that order.
func BuildChain(cfg *config.Config, order []string, deps Dependencies) ([]portssvc.ExchangeRateProvider, error) {
	if deps.Extractor == nil {
		deps.Extractor = services.NewWorldBankRateExtractor(services.NewCurrencyMapper())
	}

	chain := make([]portssvc.ExchangeRateProvider, 0, len(order))
	for _, name := range order {
		switch name {
		case config.ProviderExchangeRateAPI:
			chain = append(chain, NewExchangeRateAPIProvider(cfg.ExchangeRateAPI, deps.Repo, deps.HTTP))
		case config.ProviderOpenExchangeRates:
			chain = append(chain, NewOpenExchangeRatesProvider(cfg.OpenExchangeRates, deps.Repo, deps.HTTP))
		case config.ProviderWorldBank:
			chain = append(chain, NewWorldBankProvider(cfg.WorldBank, deps.Repo, deps.Extractor, deps.Cache, deps.HTTP))
		default:
			return nil, fmt.Errorf("unknown exchange rate provider %q", name)
		}
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("no exchange rate providers configured")
	}
	return chain, nil
}
