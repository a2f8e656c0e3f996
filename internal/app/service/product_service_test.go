package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/globalprice/products-api/internal/app/dto"
	"github.com/globalprice/products-api/internal/domain"
	"github.com/globalprice/products-api/internal/infrastructure/repository/memory"
)

func newTestProductService(t *testing.T) *ProductService {
	t.Helper()
	tracer := tracenoop.NewTracerProvider().Tracer("test")
	meter := metricnoop.NewMeterProvider().Meter("test")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := memory.NewProductRepository(tracer, logger)
	return NewProductService(repo, tracer, meter, logger)
}

func strPtr(v string) *string { return &v }

func TestCreateProduct(t *testing.T) {
	svc := newTestProductService(t)

	product, err := svc.CreateProduct(context.Background(), &dto.CreateProductRequest{
		Name:      strPtr("iPhone 15 Pro"),
		BasePrice: floatPtr(7000.00),
	})
	require.NoError(t, err)

	assert.Positive(t, product.ID)
	assert.Equal(t, "iPhone 15 Pro", product.Name)
	assert.Equal(t, "", product.Description, "description defaults to empty string")
	assert.InDelta(t, 7000.00, product.BasePrice, 0.001)

	// Immediately retrievable and listed
	found, err := svc.GetProductByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, product, found)

	list, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreateProduct_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     *dto.CreateProductRequest
		wantErr error
	}{
		{
			name:    "missing name",
			req:     &dto.CreateProductRequest{BasePrice: floatPtr(10)},
			wantErr: domain.ErrMissingRequiredFields,
		},
		{
			name:    "empty name",
			req:     &dto.CreateProductRequest{Name: strPtr(""), BasePrice: floatPtr(10)},
			wantErr: domain.ErrMissingRequiredFields,
		},
		{
			name:    "missing base_price",
			req:     &dto.CreateProductRequest{Name: strPtr("Widget")},
			wantErr: domain.ErrMissingRequiredFields,
		},
		{
			name:    "negative base_price",
			req:     &dto.CreateProductRequest{Name: strPtr("Widget"), BasePrice: floatPtr(-1)},
			wantErr: domain.ErrInvalidProductPrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestProductService(t)
			_, err := svc.CreateProduct(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUpdateProduct_Partial(t *testing.T) {
	svc := newTestProductService(t)

	created, err := svc.CreateProduct(context.Background(), &dto.CreateProductRequest{
		Name:        strPtr("iPhone 15 Pro"),
		Description: strPtr("Smartphone Apple Titanium"),
		BasePrice:   floatPtr(7000.00),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateProduct(context.Background(), created.ID, &dto.UpdateProductRequest{
		BasePrice: floatPtr(7500.5),
	})
	require.NoError(t, err)

	assert.InDelta(t, 7500.5, updated.BasePrice, 0.001)
	assert.Equal(t, "iPhone 15 Pro", updated.Name, "name must be untouched")
	assert.Equal(t, "Smartphone Apple Titanium", updated.Description, "description must be untouched")
}

func TestUpdateProduct_NotFound(t *testing.T) {
	svc := newTestProductService(t)
	_, err := svc.UpdateProduct(context.Background(), 99, &dto.UpdateProductRequest{Name: strPtr("x")})
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestDeleteProduct(t *testing.T) {
	svc := newTestProductService(t)

	created, err := svc.CreateProduct(context.Background(), &dto.CreateProductRequest{
		Name:      strPtr("Widget"),
		BasePrice: floatPtr(1),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(context.Background(), created.ID))

	_, err = svc.GetProductByID(context.Background(), created.ID)
	require.ErrorIs(t, err, domain.ErrProductNotFound, "deleted id must not resolve")

	err = svc.DeleteProduct(context.Background(), created.ID)
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}
