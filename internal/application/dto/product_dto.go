package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	Name string `json:"name"`
	Unit string `json:"unit"`
}

// ProductResponse representación de un producto en la API.
type ProductResponse struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	Unit                 string          `json:"unit"`
	Quantity             decimal.Decimal `json:"quantity"`
	AveragePurchasePrice decimal.Decimal `json:"average_purchase_price"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}
