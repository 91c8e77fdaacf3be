package service

import (
	"context"

	"github.com/alexivanou/checkout-address/internal/model"
	"github.com/alexivanou/checkout-address/internal/shipping"
)

// ResolveAddressType maps a shipping-option type code to an address type
func (s *Service) ResolveAddressType(code string) model.AddressType {
	return shipping.AddressType(&model.ShippingOption{Type: &model.ShippingOptionType{Code: code}})
}

// SearchCities proxies a city lookup. Failures yield an empty list and an
// informational error.
func (s *Service) SearchCities(ctx context.Context, provider, query string) ([]model.CityResult, error) {
	return s.searcher.SearchCities(ctx, s.provider(provider), query)
}

// SearchOffices proxies an office lookup
func (s *Service) SearchOffices(ctx context.Context, provider string, cityID int, query string) ([]model.OfficeResult, error) {
	return s.searcher.SearchOffices(ctx, s.provider(provider), cityID, query)
}

// SearchQuarters proxies a quarter lookup
func (s *Service) SearchQuarters(ctx context.Context, provider string, cityID int, query string) ([]model.QuarterResult, error) {
	return s.searcher.SearchQuarters(ctx, s.provider(provider), cityID, query)
}

// SearchStreets proxies a street lookup
func (s *Service) SearchStreets(ctx context.Context, provider string, cityID int, query string) ([]model.StreetResult, error) {
	return s.searcher.SearchStreets(ctx, s.provider(provider), cityID, query)
}

func (s *Service) provider(provider string) string {
	if provider == "" {
		return s.opts.DefaultProvider
	}
	return provider
}
