// Package cart updates carts on the commerce backend.
package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/alexivanou/checkout-address/internal/config"
	"github.com/alexivanou/checkout-address/internal/model"
	"go.uber.org/zap"
)

const apiKeyHeader = "x-publishable-api-key"

// ErrUpdateRejected is returned when the backend answers a cart update with a non-2xx status
var ErrUpdateRejected = errors.New("cart update rejected")

// Client sends the shipping address of a cart to the backend.
// Unlike the location search, failures are reported to the caller.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a cart client for the configured backend
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

type shippingAddress struct {
	model.FlatAddress
	Metadata map[string]any `json:"metadata,omitempty"`
}

type updateRequest struct {
	Email           string             `json:"email,omitempty"`
	ShippingAddress shippingAddress    `json:"shipping_address"`
	BillingAddress  *model.FlatAddress `json:"billing_address,omitempty"`
}

// UpdateShippingAddress posts the submission to /store/carts/{cartID}. When
// the billing address follows the shipping address it is sent as a copy
// without the courier metadata.
func (c *Client) UpdateShippingAddress(ctx context.Context, cartID string, sub model.Submission) error {
	body := updateRequest{
		Email:           sub.Email,
		ShippingAddress: shippingAddress{FlatAddress: sub.ShippingAddress},
	}
	if sub.SameAsBilling {
		billing := sub.ShippingAddress
		body.BillingAddress = &billing
	}
	if len(sub.Metadata) > 0 || sub.ProviderID != "" {
		meta := make(map[string]any, len(sub.Metadata)+2)
		for k, v := range sub.Metadata {
			meta[k] = json.RawMessage(v)
		}
		meta["address_type"] = sub.AddressType
		if sub.ProviderID != "" {
			meta["shipping_provider_id"] = sub.ProviderID
		}
		body.ShippingAddress.Metadata = meta
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode cart update: %w", err)
	}

	reqURL := fmt.Sprintf("%s/store/carts/%s", c.baseURL, url.PathEscape(cartID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build cart request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Error updating cart", zap.String("cart_id", cartID), zap.Error(err))
		return fmt.Errorf("failed to update cart %s: %w", cartID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("Cart update rejected",
			zap.String("cart_id", cartID),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", detail),
		)
		return fmt.Errorf("%w: status %d", ErrUpdateRejected, resp.StatusCode)
	}

	c.logger.Info("Cart shipping address updated",
		zap.String("cart_id", cartID),
		zap.String("address_type", string(sub.AddressType)),
	)
	return nil
}
