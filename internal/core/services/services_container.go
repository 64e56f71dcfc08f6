package services

import (
	portsrepo "github.com/SscSPs/exchange_rates_service/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/exchange_rates_service/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// providers is the fallback order.
func NewServiceContainer(repos portsrepo.RepositoryProvider, providers []portssvc.ExchangeRateProvider, options ...ExchangeRateServiceOption) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		ExchangeRate: NewExchangeRateService(repos.ExchangeRateRepo, providers, options...),
	}
}
