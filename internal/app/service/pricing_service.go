package service

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/globalprice/products-api/internal/app/dto"
	"github.com/globalprice/products-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// PricingService orchestrates the price-conversion path: it resolves the
// product, builds the outbound conversion request and maps the pricing
// service's outcome into a response or a typed error.
type PricingService struct {
	repo               domain.ProductRepository
	client             domain.PricingClient
	tracer             trace.Tracer
	logger             *slog.Logger
	conversionsCounter metric.Int64Counter
}

// NewPricingService creates a new pricing service
func NewPricingService(
	repo domain.ProductRepository,
	client domain.PricingClient,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *PricingService {
	conversionsCounter, _ := meter.Int64Counter(
		"products.conversions",
		metric.WithDescription("Total number of price conversion requests"),
	)

	return &PricingService{
		repo:               repo,
		client:             client,
		tracer:             tracer,
		logger:             logger,
		conversionsCounter: conversionsCounter,
	}
}

func (s *PricingService) countConversion(ctx context.Context, result string) {
	s.conversionsCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("result", result)),
	)
}

// GetPriceInCurrency resolves the product and asks the pricing service for
// its price in the target currency. The product lookup happens before any
// outbound call, so unknown ids cost no network round trip.
func (s *PricingService) GetPriceInCurrency(ctx context.Context, id int64, currency string, params url.Values) (*dto.PricedProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "PricingService.GetPriceInCurrency")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("product.id", id),
		attribute.String("conversion.currency", strings.ToUpper(currency)),
	)

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Product not found")
		s.countConversion(ctx, "not_found")
		return nil, err
	}

	convReq := buildConversionRequest(product.BasePrice, currency, params)

	s.logger.InfoContext(ctx, "Requesting price conversion",
		slog.Int64("product_id", id),
		slog.String("target_currency", convReq.TargetCurrency),
		slog.Float64("base_price", convReq.BasePrice),
	)

	result, err := s.client.Convert(ctx, convReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Conversion failed")
		s.logger.WarnContext(ctx, "Price conversion failed",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
		s.countConversion(ctx, "failure")
		return nil, err
	}

	s.countConversion(ctx, "success")
	span.SetStatus(codes.Ok, "Price converted successfully")
	return dto.ToPricedProductResponse(product, result), nil
}

// buildConversionRequest assembles the outbound payload. Override
// parameters that are absent or fail to parse are left out entirely so the
// pricing service falls back to its own defaults; a malformed override is
// never an error.
func buildConversionRequest(basePrice float64, currency string, params url.Values) *domain.ConversionRequest {
	return &domain.ConversionRequest{
		BasePrice:           basePrice,
		TargetCurrency:      strings.ToUpper(currency),
		AdminFee:            floatParam(params, "admin_fee"),
		VolatilityThreshold: floatParam(params, "volatility_threshold"),
		MaxPanicMargin:      floatParam(params, "max_panic_margin"),
		ForcePanic:          boolParam(params, "force_panic"),
	}
}

func floatParam(params url.Values, key string) *float64 {
	raw := params.Get(key)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &value
}

// boolParam treats "true", "1", "yes" and "on" (any case) as true.
// Anything else, including an absent parameter, is false.
func boolParam(params url.Values, key string) bool {
	switch strings.ToLower(params.Get(key)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}
