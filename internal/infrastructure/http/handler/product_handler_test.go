package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globalprice/products-api/internal/app/service"
	"github.com/globalprice/products-api/internal/infrastructure/config"
	httpserver "github.com/globalprice/products-api/internal/infrastructure/http"
	"github.com/globalprice/products-api/internal/infrastructure/http/handler"
	"github.com/globalprice/products-api/internal/infrastructure/pricing"
	"github.com/globalprice/products-api/internal/infrastructure/repository/memory"
	"github.com/globalprice/products-api/internal/infrastructure/telemetry"
)

// setupAPI assembles the service against an in-memory store and a pricing
// collaborator reachable at pricingURL, returning the routed handler.
func setupAPI(t *testing.T, pricingURL string) http.Handler {
	t.Helper()

	cfg := config.LoadConfig()
	cfg.Pricing.BaseURL = pricingURL

	telem := telemetry.NewNoOpTelemetry(&cfg.OTLP)
	telem.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	tracer := telem.TracerProvider.Tracer("test")
	meter := telem.MeterProvider.Meter("test")

	repo := memory.NewProductRepository(tracer, telem.Logger)
	client := pricing.NewClient(&cfg.Pricing, telem.Logger)

	products := service.NewProductService(repo, tracer, meter, telem.Logger)
	priced := service.NewPricingService(repo, client, tracer, meter, telem.Logger)

	h := handler.NewProductHandler(products, priced, telem.Logger)
	return httpserver.NewServer(&cfg.Server, h, telem).Handler()
}

func doJSON(t *testing.T, api http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	api.ServeHTTP(rr, req)

	var decoded map[string]any
	if rr.Body.Len() > 0 && strings.HasPrefix(rr.Body.String(), "{") {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &decoded))
	}
	return rr, decoded
}

func createProduct(t *testing.T, api http.Handler, body string) int64 {
	t.Helper()
	rr, decoded := doJSON(t, api, http.MethodPost, "/products", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return int64(decoded["id"].(float64))
}

func TestStatusEndpoint(t *testing.T) {
	api := setupAPI(t, "http://localhost:5001")

	rr, decoded := doJSON(t, api, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Product service is running", decoded["status"])
}

func TestCreateAndGetProduct(t *testing.T) {
	api := setupAPI(t, "http://localhost:5001")

	rr, decoded := doJSON(t, api, http.MethodPost, "/products",
		`{"name":"iPhone 15 Pro","base_price":7000.00}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "iPhone 15 Pro", decoded["name"])
	assert.Equal(t, "", decoded["description"])
	assert.InDelta(t, 7000.00, decoded["base_price"].(float64), 0.001)

	id := int64(decoded["id"].(float64))
	assert.Positive(t, id)

	rr, decoded = doJSON(t, api, http.MethodGet, fmt.Sprintf("/products/%d", id), "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "iPhone 15 Pro", decoded["name"])

	rr, _ = doJSON(t, api, http.MethodGet, "/products", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestCreateProduct_MissingFields(t *testing.T) {
	api := setupAPI(t, "http://localhost:5001")

	for _, body := range []string{
		`{"base_price":10}`,
		`{"name":"Widget"}`,
		`{}`,
	} {
		rr, decoded := doJSON(t, api, http.MethodPost, "/products", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
		assert.Contains(t, decoded, "error")
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	api := setupAPI(t, "http://localhost:5001")

	rr, decoded := doJSON(t, api, http.MethodGet, "/products/12345", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, decoded, "error")

	rr, _ = doJSON(t, api, http.MethodGet, "/products/not-a-number", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateProduct_Partial(t *testing.T) {
	api := setupAPI(t, "http://localhost:5001")
	id := createProduct(t, api, `{"name":"iPhone 15 Pro","description":"Titanium","base_price":7000.00}`)

	rr, decoded := doJSON(t, api, http.MethodPut, fmt.Sprintf("/products/%d", id),
		`{"base_price":7500.5}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.InDelta(t, 7500.5, decoded["base_price"].(float64), 0.001)
	assert.Equal(t, "iPhone 15 Pro", decoded["name"])
	assert.Equal(t, "Titanium", decoded["description"])
}

func TestUpdateProduct_MissingBody(t *testing.T) {
	api := setupAPI(t, "http://localhost:5001")
	id := createProduct(t, api, `{"name":"Widget","base_price":1}`)

	rr, decoded := doJSON(t, api, http.MethodPut, fmt.Sprintf("/products/%d", id), "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decoded, "error")
}

func TestUpdateProduct_NotFound(t *testing.T) {
	api := setupAPI(t, "http://localhost:5001")

	rr, _ := doJSON(t, api, http.MethodPut, "/products/999", `{"name":"Ghost"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteProduct(t *testing.T) {
	api := setupAPI(t, "http://localhost:5001")
	id := createProduct(t, api, `{"name":"Widget","base_price":1}`)

	rr, decoded := doJSON(t, api, http.MethodDelete, fmt.Sprintf("/products/%d", id), "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Product deleted successfully", decoded["message"])

	rr, _ = doJSON(t, api, http.MethodGet, fmt.Sprintf("/products/%d", id), "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, _ = doJSON(t, api, http.MethodDelete, fmt.Sprintf("/products/%d", id), "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetPriceInCurrency_Success(t *testing.T) {
	collaborator := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/convert", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"converted_amount":50.0,"currency":"USD"}`))
	}))
	defer collaborator.Close()

	api := setupAPI(t, collaborator.URL)
	id := createProduct(t, api, `{"name":"iPhone 15 Pro","base_price":7000.00}`)

	rr, decoded := doJSON(t, api, http.MethodGet, fmt.Sprintf("/products/%d/price/usd", id), "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	assert.Equal(t, "iPhone 15 Pro", decoded["name"])
	conversion, ok := decoded["price_in_currency"].(map[string]any)
	require.True(t, ok, "price_in_currency must embed the collaborator payload")
	assert.InDelta(t, 50.0, conversion["converted_amount"].(float64), 0.001)
	assert.Equal(t, "USD", conversion["currency"])
}

func TestGetPriceInCurrency_InvalidOverridesDropped(t *testing.T) {
	var received map[string]any
	collaborator := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"converted_amount":1.0}`))
	}))
	defer collaborator.Close()

	api := setupAPI(t, collaborator.URL)
	id := createProduct(t, api, `{"name":"Widget","base_price":10}`)

	rr, _ := doJSON(t, api, http.MethodGet,
		fmt.Sprintf("/products/%d/price/eur?admin_fee=not_a_number&force_panic=YES", id), "")
	require.Equal(t, http.StatusOK, rr.Code, "invalid overrides must never fail the request")

	assert.NotContains(t, received, "admin_fee")
	assert.Equal(t, true, received["force_panic"])
	assert.Equal(t, "EUR", received["target_currency"])
}

func TestGetPriceInCurrency_ProductNotFound(t *testing.T) {
	called := false
	collaborator := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer collaborator.Close()

	api := setupAPI(t, collaborator.URL)

	rr, _ := doJSON(t, api, http.MethodGet, "/products/999/price/usd", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.False(t, called, "missing product must not reach the collaborator")
}

func TestGetPriceInCurrency_UpstreamRejected(t *testing.T) {
	collaborator := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"unsupported currency"}`))
	}))
	defer collaborator.Close()

	api := setupAPI(t, collaborator.URL)
	id := createProduct(t, api, `{"name":"Widget","base_price":10}`)

	rr, decoded := doJSON(t, api, http.MethodGet, fmt.Sprintf("/products/%d/price/xxx", id), "")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, decoded, "error")
	assert.Contains(t, decoded["details"], "unsupported currency")
}

func TestGetPriceInCurrency_CollaboratorUnreachable(t *testing.T) {
	collaborator := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	collaborator.Close() // connection refused from here on

	api := setupAPI(t, collaborator.URL)
	id := createProduct(t, api, `{"name":"Widget","base_price":10}`)

	rr, decoded := doJSON(t, api, http.MethodGet, fmt.Sprintf("/products/%d/price/usd", id), "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, decoded, "error")
	assert.Contains(t, decoded, "tip")
}
