// Package pricing contains the HTTP client for the external pricing
// service, which performs the actual currency conversion and margin
// strategy. Its response body is opaque to this service.
package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/globalprice/products-api/internal/domain"
	"github.com/globalprice/products-api/internal/infrastructure/config"
)

// Client is the HTTP client for the pricing service
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// Compile-time check that Client implements domain.PricingClient.
var _ domain.PricingClient = (*Client)(nil)

// NewClient creates a pricing service client. Every call is bounded by the
// configured timeout so a hung collaborator cannot stall request handling.
func NewClient(cfg *config.PricingConfig, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  logger,
	}
}

// Convert posts a conversion request and returns the raw response body.
// Exactly one attempt is made per call; retry policy belongs to the caller.
func (c *Client) Convert(ctx context.Context, convReq *domain.ConversionRequest) (json.RawMessage, error) {
	body, err := json.Marshal(convReq)
	if err != nil {
		return nil, err
	}

	reqURL := c.baseURL + "/convert"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "Pricing service request failed",
			slog.String("url", reqURL),
			slog.String("error", err.Error()),
		)
		return nil, &domain.UnreachableError{Endpoint: c.baseURL, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.ErrorContext(ctx, "Pricing service response unreadable",
			slog.String("error", err.Error()),
		)
		return nil, &domain.UpstreamError{StatusCode: resp.StatusCode, Body: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "Pricing service rejected conversion",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(raw)),
		)
		return nil, &domain.UpstreamError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	// A 200 with a body we cannot parse is still an upstream protocol
	// failure, not a success.
	if !json.Valid(raw) {
		c.logger.ErrorContext(ctx, "Pricing service returned malformed JSON",
			slog.String("body", string(raw)),
		)
		return nil, &domain.UpstreamError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	return json.RawMessage(raw), nil
}
