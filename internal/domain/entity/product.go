package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del inventario con su saldo corriente.
// Quantity y AveragePurchasePrice se actualizan solo dentro de la misma
// transacción que registra o elimina un movimiento (ver application/inventory
// y application/history).
type Product struct {
	ID                   string
	Name                 string
	Unit                 string          // unidad de medida (ej. "kg", "und", "lt")
	Quantity             decimal.Decimal // existencia actual
	AveragePurchasePrice decimal.Decimal // costo promedio ponderado de compra
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
