// Package courier talks to the commerce backend's courier location search.
//
// Every lookup fails soft: whatever goes wrong, the caller gets an empty,
// non-nil result. The returned error only tells the caller that the emptiness
// came from a failure rather than from a lack of matches.
package courier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/alexivanou/checkout-address/internal/config"
	"github.com/alexivanou/checkout-address/internal/model"
	"go.uber.org/zap"
)

const (
	// MinQueryLength is the shortest trimmed query sent for cities, quarters and streets.
	MinQueryLength = 2

	apiKeyHeader = "x-publishable-api-key"
)

// Client performs location lookups against {backend}/store/shipping/*
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a search client for the configured backend
func NewClient(cfg config.BackendConfig, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.PublishableKey,
		httpClient: httpClient,
		logger:     logger,
	}
}

// SearchCities looks up cities by name
func (c *Client) SearchCities(ctx context.Context, provider, query string) ([]model.CityResult, error) {
	if tooShort(query) {
		return []model.CityResult{}, nil
	}
	params := url.Values{}
	params.Set("provider", provider)
	params.Set("query", query)

	resp, err := fetch[model.CitiesResponse](ctx, c, model.KindCity, "/store/shipping/cities", params)
	if err != nil {
		return []model.CityResult{}, err
	}
	return orEmpty(resp.Cities), nil
}

// SearchOffices lists pickup offices in a city. The query is optional; an empty
// query lists every office of the city.
func (c *Client) SearchOffices(ctx context.Context, provider string, cityID int, query string) ([]model.OfficeResult, error) {
	params := url.Values{}
	params.Set("provider", provider)
	params.Set("cityId", strconv.Itoa(cityID))
	if strings.TrimSpace(query) != "" {
		params.Set("query", query)
	}

	resp, err := fetch[model.OfficesResponse](ctx, c, model.KindOffice, "/store/shipping/offices", params)
	if err != nil {
		return []model.OfficeResult{}, err
	}
	return orEmpty(resp.Offices), nil
}

// SearchQuarters looks up quarters of a city
func (c *Client) SearchQuarters(ctx context.Context, provider string, cityID int, query string) ([]model.QuarterResult, error) {
	if tooShort(query) {
		return []model.QuarterResult{}, nil
	}
	params := url.Values{}
	params.Set("provider", provider)
	params.Set("cityId", strconv.Itoa(cityID))
	params.Set("query", query)

	resp, err := fetch[model.QuartersResponse](ctx, c, model.KindQuarter, "/store/shipping/quarters", params)
	if err != nil {
		return []model.QuarterResult{}, err
	}
	return orEmpty(resp.Quarters), nil
}

// SearchStreets looks up streets of a city
func (c *Client) SearchStreets(ctx context.Context, provider string, cityID int, query string) ([]model.StreetResult, error) {
	if tooShort(query) {
		return []model.StreetResult{}, nil
	}
	params := url.Values{}
	params.Set("provider", provider)
	params.Set("cityId", strconv.Itoa(cityID))
	params.Set("query", query)

	resp, err := fetch[model.StreetsResponse](ctx, c, model.KindStreet, "/store/shipping/streets", params)
	if err != nil {
		return []model.StreetResult{}, err
	}
	return orEmpty(resp.Streets), nil
}

func fetch[R any](ctx context.Context, c *Client, kind model.LocationKind, path string, params url.Values) (*R, error) {
	logger := c.logger.With(zap.String("kind", string(kind)), zap.String("provider", params.Get("provider")))

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		logger.Error("Failed to build search request", zap.Error(err))
		return nil, &SearchError{Kind: kind, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("Search cancelled")
		} else {
			logger.Error("Error searching locations", zap.Error(err))
		}
		return nil, &SearchError{Kind: kind, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Error("Failed to search locations",
			zap.Int("status", resp.StatusCode),
			zap.String("status_text", http.StatusText(resp.StatusCode)),
		)
		return nil, &SearchError{Kind: kind, StatusCode: resp.StatusCode, Err: ErrUpstreamStatus}
	}

	var out R
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		logger.Error("Error decoding search response", zap.Error(err))
		return nil, &SearchError{Kind: kind, StatusCode: resp.StatusCode, Err: err}
	}
	return &out, nil
}

func tooShort(query string) bool {
	return len([]rune(strings.TrimSpace(query))) < MinQueryLength
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
