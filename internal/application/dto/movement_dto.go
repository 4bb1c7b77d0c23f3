package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplyMovementRequest body para POST /api/products/:id/movements.
type ApplyMovementRequest struct {
	Type        string           `json:"type"` // in | out
	Quantity    decimal.Decimal  `json:"quantity"`
	Price       *decimal.Decimal `json:"price,omitempty"` // obligatorio en entradas
	Date        *time.Time       `json:"date,omitempty"`  // vacío = ahora
	Description string           `json:"description,omitempty"`
	Warehouse   string           `json:"warehouse,omitempty"`
	Supplier    string           `json:"supplier,omitempty"`
}

// DeleteMovementRequest body para DELETE /api/movements/:id.
// El borrado está protegido por contraseña: se re-verifica la del usuario autenticado.
type DeleteMovementRequest struct {
	Password string `json:"password"`
}

// MovementResponse representación de un movimiento en la API.
type MovementResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	Type        string          `json:"type"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description,omitempty"`
	Warehouse   string          `json:"warehouse,omitempty"`
	Supplier    string          `json:"supplier,omitempty"`

	PreviousQuantity     decimal.Decimal `json:"previous_quantity"`
	NewQuantity          decimal.Decimal `json:"new_quantity"`
	PreviousAveragePrice decimal.Decimal `json:"previous_average_price"`
	NewAveragePrice      decimal.Decimal `json:"new_average_price"`
}

// FeedSnapshotResponse snapshot completo del historial que emite el stream SSE.
type FeedSnapshotResponse struct {
	Loading   bool               `json:"loading"`
	Error     string             `json:"error,omitempty"`
	Movements []MovementResponse `json:"movements"`
}
