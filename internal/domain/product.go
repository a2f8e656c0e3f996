package domain

import (
	"errors"
)

var (
	ErrMissingRequiredFields = errors.New("name and base_price are required")
	ErrInvalidProductName    = errors.New("product name is required")
	ErrInvalidProductPrice   = errors.New("product base_price must not be negative")
)

// Product represents the product entity. The ID is assigned by the
// repository on creation and never changes afterwards.
type Product struct {
	ID          int64
	Name        string
	Description string
	BasePrice   float64
}

// NewProduct creates a new product with validation. The ID stays zero
// until the repository persists the record.
func NewProduct(name, description string, basePrice float64) (*Product, error) {
	product := &Product{
		Name:        name,
		Description: description,
		BasePrice:   basePrice,
	}

	if err := product.Validate(); err != nil {
		return nil, err
	}

	return product, nil
}

// Validate performs business validation on the product
func (p *Product) Validate() error {
	if p.Name == "" {
		return ErrInvalidProductName
	}
	if p.BasePrice < 0 {
		return ErrInvalidProductPrice
	}
	return nil
}
