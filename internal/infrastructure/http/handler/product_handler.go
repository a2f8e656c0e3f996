package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/globalprice/products-api/internal/app/dto"
	"github.com/globalprice/products-api/internal/app/service"
	"github.com/globalprice/products-api/internal/domain"
	"github.com/globalprice/products-api/internal/infrastructure/http/response"
	"github.com/go-chi/chi/v5"
)

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	products *service.ProductService
	pricing  *service.PricingService
	logger   *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(products *service.ProductService, pricing *service.PricingService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		pricing:  pricing,
		logger:   logger,
	}
}

// productID parses the {id} URL parameter. A non-integer id cannot refer
// to any record, so it maps to not found rather than bad request.
func productID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// Status handles GET /
func (h *ProductHandler) Status(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, dto.StatusResponse{
		Status:  "Product service is running",
		Service: "GlobalPrice Primary API",
	})
}

// CreateProduct handles POST /products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body",
			slog.String("error", err.Error()),
		)
		response.Error(w, http.StatusBadRequest, domain.ErrMissingRequiredFields)
		return
	}

	product, err := h.products.CreateProduct(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingRequiredFields),
			errors.Is(err, domain.ErrInvalidProductName),
			errors.Is(err, domain.ErrInvalidProductPrice):
			response.Error(w, http.StatusBadRequest, err)
		default:
			response.Error(w, http.StatusInternalServerError, err)
		}
		return
	}

	response.JSON(w, http.StatusCreated, product)
}

// GetProduct handles GET /products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		response.Error(w, http.StatusNotFound, domain.ErrProductNotFound)
		return
	}

	product, err := h.products.GetProductByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			response.Error(w, http.StatusNotFound, err)
		} else {
			response.Error(w, http.StatusInternalServerError, err)
		}
		return
	}

	response.JSON(w, http.StatusOK, product)
}

// ListProducts handles GET /products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListProducts(r.Context())
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}

	response.JSON(w, http.StatusOK, products)
}

// UpdateProduct handles PUT /products/{id}. Only fields present in the
// body are changed; a missing or malformed body is a validation error.
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		response.Error(w, http.StatusNotFound, domain.ErrProductNotFound)
		return
	}

	var req dto.UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body",
			slog.String("error", err.Error()),
		)
		response.Error(w, http.StatusBadRequest, errors.New("request body must be valid JSON"))
		return
	}

	product, err := h.products.UpdateProduct(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			response.Error(w, http.StatusNotFound, err)
		case errors.Is(err, domain.ErrInvalidProductName),
			errors.Is(err, domain.ErrInvalidProductPrice):
			response.Error(w, http.StatusBadRequest, err)
		default:
			response.Error(w, http.StatusInternalServerError, err)
		}
		return
	}

	response.JSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		response.Error(w, http.StatusNotFound, domain.ErrProductNotFound)
		return
	}

	if err := h.products.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			response.Error(w, http.StatusNotFound, err)
		} else {
			response.Error(w, http.StatusInternalServerError, err)
		}
		return
	}

	response.JSON(w, http.StatusOK, dto.MessageResponse{Message: "Product deleted successfully"})
}

// GetPriceInCurrency handles GET /products/{id}/price/{currency}
func (h *ProductHandler) GetPriceInCurrency(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		response.Error(w, http.StatusNotFound, domain.ErrProductNotFound)
		return
	}
	currency := chi.URLParam(r, "currency")

	priced, err := h.pricing.GetPriceInCurrency(r.Context(), id, currency, r.URL.Query())
	if err != nil {
		var upstream *domain.UpstreamError
		var unreachable *domain.UnreachableError
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			response.Error(w, http.StatusNotFound, err)
		case errors.As(err, &upstream):
			response.UpstreamError(w, upstream)
		case errors.As(err, &unreachable):
			response.Unreachable(w, unreachable)
		default:
			response.Error(w, http.StatusInternalServerError, err)
		}
		return
	}

	response.JSON(w, http.StatusOK, priced)
}
