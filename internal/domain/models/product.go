package models

import "github.com/shopspring/decimal"

// Product mirrors the catalog entries owned by the remote store. The EAN code
// is the scannable identifier terminals work with; the backend's own ID is
// only needed for admin mutations.
type Product struct {
	ID          string          `json:"id"`
	EAN         string          `json:"ean"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}

// Label is the printable label row derived from a product.
type Label struct {
	EAN         string `csv:"ean"`
	Description string `csv:"description"`
	Price       string `csv:"price"`
	ImageURL    string `csv:"image_url"`
}
