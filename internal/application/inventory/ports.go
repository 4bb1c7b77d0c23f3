package inventory

import (
	"context"

	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario: o se aplican todas las escrituras o ninguna.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// ChangePublisher notifica que el historial de movimientos de un producto cambió,
// para que los feeds en vivo vuelvan a consultar. Fire-and-forget.
type ChangePublisher interface {
	MovementsChanged(ctx context.Context, productID string)
}
