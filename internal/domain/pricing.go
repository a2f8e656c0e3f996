package domain

import (
	"context"
	"encoding/json"
	"fmt"
)

// ConversionRequest is the outbound payload sent to the pricing service.
// Optional overrides are pointers so absent values stay off the wire and
// the pricing service applies its own defaults. ForcePanic is serialized
// only when true.
type ConversionRequest struct {
	BasePrice           float64  `json:"base_price"`
	TargetCurrency      string   `json:"target_currency"`
	AdminFee            *float64 `json:"admin_fee,omitempty"`
	VolatilityThreshold *float64 `json:"volatility_threshold,omitempty"`
	MaxPanicMargin      *float64 `json:"max_panic_margin,omitempty"`
	ForcePanic          bool     `json:"force_panic,omitempty"`
}

// PricingClient defines the contract for the external pricing service.
// The result body is opaque to this service and passed through verbatim.
type PricingClient interface {
	Convert(ctx context.Context, req *ConversionRequest) (json.RawMessage, error)
}

// UpstreamError means the pricing service was reachable but answered with a
// non-success status. Body carries its raw response text for diagnostics.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("pricing service rejected conversion: status %d", e.StatusCode)
}

// UnreachableError means the pricing service could not be reached at all
// (connection refused, DNS failure, timeout).
type UnreachableError struct {
	Endpoint string
	Err      error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("pricing service unreachable at %s: %v", e.Endpoint, e.Err)
}

func (e *UnreachableError) Unwrap() error {
	return e.Err
}
