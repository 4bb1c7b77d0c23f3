package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para productos.
// GetForUpdate bloquea la fila (SELECT FOR UPDATE) y solo tiene sentido dentro de una tx.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetForUpdate(id string) (*entity.Product, error)
	List() ([]*entity.Product, error)
	// UpdateStock fija cantidad y costo promedio del producto. Lo usan tanto el
	// registro de movimientos como el borrado compensado (restauración del snapshot).
	UpdateStock(id string, quantity, averagePrice decimal.Decimal) error
}
