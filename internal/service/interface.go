package service

import (
	"context"

	"github.com/alexivanou/checkout-address/internal/checkout"
	"github.com/alexivanou/checkout-address/internal/model"
)

// ServiceInterface defines the service interface for testing
type ServiceInterface interface {
	ResolveAddressType(code string) model.AddressType
	SearchCities(ctx context.Context, provider, query string) ([]model.CityResult, error)
	SearchOffices(ctx context.Context, provider string, cityID int, query string) ([]model.OfficeResult, error)
	SearchQuarters(ctx context.Context, provider string, cityID int, query string) ([]model.QuarterResult, error)
	SearchStreets(ctx context.Context, provider string, cityID int, query string) ([]model.StreetResult, error)

	Open(ctx context.Context, cartID string, req model.OpenCheckoutRequest) (model.CheckoutState, error)
	State(ctx context.Context, cartID string) (model.CheckoutState, error)
	Type(ctx context.Context, cartID, field, query string) (model.CheckoutState, error)
	Select(ctx context.Context, cartID, field, id string) (model.CheckoutState, error)
	SetField(ctx context.Context, cartID, name, value string) (model.CheckoutState, error)
	Submit(ctx context.Context, cartID string) (checkout.ValidationOutcome, error)
	Discard(ctx context.Context, cartID string) error
}
