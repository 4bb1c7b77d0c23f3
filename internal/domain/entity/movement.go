package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeIn  = "in"  // entrada
	MovementTypeOut = "out" // salida
)

// Movement representa un movimiento de inventario (entrada o salida) de un producto.
// Es inmutable una vez escrito; solo puede eliminarse vía el flujo de borrado compensado.
//
// Cada movimiento carga su propio estado de deshacer: el par de snapshots
// Previous*/New* captura la cantidad y el costo promedio del producto
// inmediatamente antes y después de aplicarlo. Eliminar un movimiento restaura
// el producto al snapshot previo en O(1), sin recalcular el historial.
type Movement struct {
	ID          string
	ProductID   string
	Type        string          // in, out
	Quantity    decimal.Decimal // siempre positiva; el signo lo da Type
	Price       decimal.Decimal // precio unitario al momento de la transacción
	TotalPrice  decimal.Decimal // Quantity * Price
	Date        time.Time
	Description string
	Warehouse   string
	Supplier    string // opcional; vacío en salidas

	// Snapshot del producto antes y después del movimiento.
	PreviousQuantity     decimal.Decimal
	NewQuantity          decimal.Decimal
	PreviousAveragePrice decimal.Decimal
	NewAveragePrice      decimal.Decimal

	CreatedAt time.Time
	CreatedBy string // UserID
}
