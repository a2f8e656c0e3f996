package dto

import (
	"encoding/json"

	"github.com/globalprice/products-api/internal/domain"
)

// CreateProductRequest represents the request to create a product.
// Name and BasePrice are pointers so a missing field can be told apart
// from a zero value.
type CreateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	BasePrice   *float64 `json:"base_price"`
}

// UpdateProductRequest represents a partial update. Only non-nil fields
// are applied to the stored record.
type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	BasePrice   *float64 `json:"base_price"`
}

// ProductResponse represents the product response
type ProductResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	BasePrice   float64 `json:"base_price"`
}

// PricedProductResponse is a product augmented with the conversion result
// returned by the pricing service, embedded verbatim.
type PricedProductResponse struct {
	ProductResponse
	PriceInCurrency json.RawMessage `json:"price_in_currency"`
}

// MessageResponse carries a confirmation message
type MessageResponse struct {
	Message string `json:"message"`
}

// StatusResponse is the root status block
type StatusResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *domain.Product) *ProductResponse {
	return &ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		BasePrice:   p.BasePrice,
	}
}

// ToProductResponseList converts a list of domain Products to ProductResponse list
func ToProductResponseList(products []*domain.Product) []*ProductResponse {
	responses := make([]*ProductResponse, len(products))
	for i, p := range products {
		responses[i] = ToProductResponse(p)
	}
	return responses
}

// ToPricedProductResponse merges a product with the raw conversion result
func ToPricedProductResponse(p *domain.Product, conversion json.RawMessage) *PricedProductResponse {
	return &PricedProductResponse{
		ProductResponse: *ToProductResponse(p),
		PriceInCurrency: conversion,
	}
}
