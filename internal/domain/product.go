package domain

import "fmt"

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Product struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	PriceCents       int64    `json:"price_cents"`
	StockQuantity    int      `json:"stock_quantity"`
	Featured         bool     `json:"featured"`
	CategoryID       *string  `json:"category_id,omitempty"`
	MainImageURL     string   `json:"main_image_url,omitempty"`
	AdditionalImages []string `json:"additional_images,omitempty"`
}

// Validate enforces the boundary constraints on a product before it is
// written: required name and description, positive price, non-negative
// stock.
func (p *Product) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: product name is required", ErrValidation)
	}
	if p.Description == "" {
		return fmt.Errorf("%w: product description is required", ErrValidation)
	}
	if p.PriceCents <= 0 {
		return fmt.Errorf("%w: product price must be greater than 0", ErrValidation)
	}
	if p.StockQuantity < 0 {
		return fmt.Errorf("%w: stock quantity cannot be negative", ErrValidation)
	}
	return nil
}
