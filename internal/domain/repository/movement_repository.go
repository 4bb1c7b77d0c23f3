package repository

import "github.com/jhoicas/kardex-api/internal/domain/entity"

// MovementRepository define el puerto de persistencia para movimientos de inventario.
type MovementRepository interface {
	Create(movement *entity.Movement) error
	GetByID(id string) (*entity.Movement, error)
	ListByProduct(productID string) ([]*entity.Movement, error)
	Delete(id string) error
}
