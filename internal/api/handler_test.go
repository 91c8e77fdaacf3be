package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/alexivanou/checkout-address/internal/checkout"
	"github.com/alexivanou/checkout-address/internal/courier"
	"github.com/alexivanou/checkout-address/internal/model"
	"github.com/alexivanou/checkout-address/internal/service"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockService is a mock implementation of ServiceInterface
type MockService struct {
	mock.Mock
}

func (m *MockService) ResolveAddressType(code string) model.AddressType {
	args := m.Called(code)
	return args.Get(0).(model.AddressType)
}

func (m *MockService) SearchCities(ctx context.Context, provider, query string) ([]model.CityResult, error) {
	args := m.Called(ctx, provider, query)
	return args.Get(0).([]model.CityResult), args.Error(1)
}

func (m *MockService) SearchOffices(ctx context.Context, provider string, cityID int, query string) ([]model.OfficeResult, error) {
	args := m.Called(ctx, provider, cityID, query)
	return args.Get(0).([]model.OfficeResult), args.Error(1)
}

func (m *MockService) SearchQuarters(ctx context.Context, provider string, cityID int, query string) ([]model.QuarterResult, error) {
	args := m.Called(ctx, provider, cityID, query)
	return args.Get(0).([]model.QuarterResult), args.Error(1)
}

func (m *MockService) SearchStreets(ctx context.Context, provider string, cityID int, query string) ([]model.StreetResult, error) {
	args := m.Called(ctx, provider, cityID, query)
	return args.Get(0).([]model.StreetResult), args.Error(1)
}

func (m *MockService) Open(ctx context.Context, cartID string, req model.OpenCheckoutRequest) (model.CheckoutState, error) {
	args := m.Called(ctx, cartID, req)
	return args.Get(0).(model.CheckoutState), args.Error(1)
}

func (m *MockService) State(ctx context.Context, cartID string) (model.CheckoutState, error) {
	args := m.Called(ctx, cartID)
	return args.Get(0).(model.CheckoutState), args.Error(1)
}

func (m *MockService) Type(ctx context.Context, cartID, field, query string) (model.CheckoutState, error) {
	args := m.Called(ctx, cartID, field, query)
	return args.Get(0).(model.CheckoutState), args.Error(1)
}

func (m *MockService) Select(ctx context.Context, cartID, field, id string) (model.CheckoutState, error) {
	args := m.Called(ctx, cartID, field, id)
	return args.Get(0).(model.CheckoutState), args.Error(1)
}

func (m *MockService) SetField(ctx context.Context, cartID, name, value string) (model.CheckoutState, error) {
	args := m.Called(ctx, cartID, name, value)
	return args.Get(0).(model.CheckoutState), args.Error(1)
}

func (m *MockService) Submit(ctx context.Context, cartID string) (checkout.ValidationOutcome, error) {
	args := m.Called(ctx, cartID)
	return args.Get(0).(checkout.ValidationOutcome), args.Error(1)
}

func (m *MockService) Discard(ctx context.Context, cartID string) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

func TestHandler_AddressType(t *testing.T) {
	mockService := new(MockService)
	mockService.On("ResolveAddressType", "office").Return(model.AddressTypeOffice)
	handler := NewHandler(mockService, nil)

	req, _ := http.NewRequest("GET", "/api/v1/shipping/address-type?code=office", nil)
	rr := httptest.NewRecorder()
	handler.AddressType(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"address_type":"office"}`, rr.Body.String())
}

func TestHandler_SearchLocations(t *testing.T) {
	sofia := model.CityResult{ID: "41", Label: "София", Data: model.CityData{CityID: 41, CityName: "София"}}

	tests := []struct {
		name           string
		kind           string
		query          url.Values
		mockSetup      func(*MockService)
		expectedStatus int
		expectedBody   string
		searchFailed   bool
	}{
		{
			name:  "cities",
			kind:  "cities",
			query: url.Values{"provider": {"econt_econt"}, "query": {"Соф"}},
			mockSetup: func(ms *MockService) {
				ms.On("SearchCities", mock.Anything, "econt_econt", "Соф").Return([]model.CityResult{sofia}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"city_name":"София"`,
		},
		{
			name:  "offices",
			kind:  "offices",
			query: url.Values{"cityId": {"41"}},
			mockSetup: func(ms *MockService) {
				ms.On("SearchOffices", mock.Anything, "", 41, "").Return([]model.OfficeResult{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"offices":[]`,
		},
		{
			name:  "failed search stays 200",
			kind:  "streets",
			query: url.Values{"cityId": {"41"}, "query": {"Вит"}},
			mockSetup: func(ms *MockService) {
				ms.On("SearchStreets", mock.Anything, "", 41, "Вит").
					Return([]model.StreetResult{}, &courier.SearchError{Kind: model.KindStreet, StatusCode: 500, Err: courier.ErrUpstreamStatus})
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"streets":[]`,
			searchFailed:   true,
		},
		{
			name:           "missing city id",
			kind:           "quarters",
			query:          url.Values{"query": {"Лоз"}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown kind",
			kind:           "villages",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			if tt.mockSetup != nil {
				tt.mockSetup(mockService)
			}
			handler := NewHandler(mockService, nil)

			req := httptest.NewRequest("GET", "/api/v1/shipping/"+tt.kind, nil)
			req.URL.RawQuery = tt.query.Encode()
			req = mux.SetURLVars(req, map[string]string{"kind": tt.kind})
			rr := httptest.NewRecorder()
			handler.SearchLocations(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, rr.Body.String(), tt.expectedBody)
			}
			assert.Equal(t, tt.searchFailed, rr.Header().Get(searchFailedHeader) == "true")
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_Checkout(t *testing.T) {
	state := model.CheckoutState{CartID: "cart_1", AddressType: model.AddressTypeAddress, ProviderID: "econt_econt"}

	tests := []struct {
		name           string
		method         string
		body           string
		vars           map[string]string
		call           func(h *Handler) http.HandlerFunc
		mockSetup      func(*MockService)
		expectedStatus int
	}{
		{
			name:   "open",
			method: "POST",
			body:   `{"shipping_option":{"provider_id":"econt_econt","type":{"code":"address"}},"email":"ivan@example.bg"}`,
			vars:   map[string]string{"cartID": "cart_1"},
			call:   func(h *Handler) http.HandlerFunc { return h.OpenCheckout },
			mockSetup: func(ms *MockService) {
				ms.On("Open", mock.Anything, "cart_1", mock.MatchedBy(func(req model.OpenCheckoutRequest) bool {
					return req.Email == "ivan@example.bg" && req.ShippingOption.Type.Code == "address"
				})).Return(state, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "open with empty body",
			method: "POST",
			vars:   map[string]string{"cartID": "cart_1"},
			call:   func(h *Handler) http.HandlerFunc { return h.OpenCheckout },
			mockSetup: func(ms *MockService) {
				ms.On("Open", mock.Anything, "cart_1", model.OpenCheckoutRequest{}).Return(state, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "open with malformed body",
			method:         "POST",
			body:           `{"email":`,
			vars:           map[string]string{"cartID": "cart_1"},
			call:           func(h *Handler) http.HandlerFunc { return h.OpenCheckout },
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "state of unknown cart",
			method: "GET",
			vars:   map[string]string{"cartID": "nope"},
			call:   func(h *Handler) http.HandlerFunc { return h.GetCheckout },
			mockSetup: func(ms *MockService) {
				ms.On("State", mock.Anything, "nope").Return(model.CheckoutState{}, service.ErrSessionNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "type",
			method: "PUT",
			body:   `{"query":"Соф"}`,
			vars:   map[string]string{"cartID": "cart_1", "field": "city"},
			call:   func(h *Handler) http.HandlerFunc { return h.TypeQuery },
			mockSetup: func(ms *MockService) {
				ms.On("Type", mock.Anything, "cart_1", "city", "Соф").Return(state, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "select unknown result",
			method: "PUT",
			body:   `{"id":"999"}`,
			vars:   map[string]string{"cartID": "cart_1", "field": "city"},
			call:   func(h *Handler) http.HandlerFunc { return h.SelectResult },
			mockSetup: func(ms *MockService) {
				ms.On("Select", mock.Anything, "cart_1", "city", "999").Return(model.CheckoutState{}, checkout.ErrResultNotFound)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "set field outside the mode",
			method: "PUT",
			body:   `{"value":"3"}`,
			vars:   map[string]string{"cartID": "cart_1", "name": "blok"},
			call:   func(h *Handler) http.HandlerFunc { return h.SetField },
			mockSetup: func(ms *MockService) {
				ms.On("SetField", mock.Anything, "cart_1", "blok", "3").Return(model.CheckoutState{}, checkout.ErrFieldNotInMode)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "set field with an invalid value",
			method: "PUT",
			body:   `{"value":"maybe"}`,
			vars:   map[string]string{"cartID": "cart_1", "name": "same_as_billing"},
			call:   func(h *Handler) http.HandlerFunc { return h.SetField },
			mockSetup: func(ms *MockService) {
				ms.On("SetField", mock.Anything, "cart_1", "same_as_billing", "maybe").Return(model.CheckoutState{}, checkout.ErrInvalidValue)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "discard",
			method: "DELETE",
			vars:   map[string]string{"cartID": "cart_1"},
			call:   func(h *Handler) http.HandlerFunc { return h.DiscardCheckout },
			mockSetup: func(ms *MockService) {
				ms.On("Discard", mock.Anything, "cart_1").Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:   "unexpected error",
			method: "GET",
			vars:   map[string]string{"cartID": "cart_1"},
			call:   func(h *Handler) http.HandlerFunc { return h.GetCheckout },
			mockSetup: func(ms *MockService) {
				ms.On("State", mock.Anything, "cart_1").Return(model.CheckoutState{}, errors.New("boom"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			if tt.mockSetup != nil {
				tt.mockSetup(mockService)
			}
			handler := NewHandler(mockService, nil)

			req := httptest.NewRequest(tt.method, "/api/v1/checkout/x", strings.NewReader(tt.body))
			req = mux.SetURLVars(req, tt.vars)
			rr := httptest.NewRecorder()
			tt.call(handler)(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_SubmitCheckout(t *testing.T) {
	tests := []struct {
		name           string
		result         checkout.ValidationOutcome
		err            error
		expectedStatus int
	}{
		{
			name:           "accepted",
			result:         checkout.ValidationOutcome{Valid: true},
			expectedStatus: http.StatusOK,
		},
		{
			name: "invalid",
			result: checkout.ValidationOutcome{Valid: false, Errors: map[string]string{
				checkout.FieldStreet: "Required if quarter not provided",
			}},
			err: &service.ValidationError{Outcome: checkout.ValidationOutcome{Errors: map[string]string{
				checkout.FieldStreet: "Required if quarter not provided",
			}}},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "backend refused",
			result:         checkout.ValidationOutcome{Valid: true},
			err:            service.ErrSubmitFailed,
			expectedStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			mockService.On("Submit", mock.Anything, "cart_1").Return(tt.result, tt.err)
			handler := NewHandler(mockService, nil)

			req := httptest.NewRequest("POST", "/api/v1/checkout/cart_1/submit", nil)
			req = mux.SetURLVars(req, map[string]string{"cartID": "cart_1"})
			rr := httptest.NewRecorder()
			handler.SubmitCheckout(rr, req)

			require.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusUnprocessableEntity {
				var resp model.SubmitResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.False(t, resp.Valid)
				assert.Contains(t, resp.Errors, checkout.FieldStreet)
			}
		})
	}
}
