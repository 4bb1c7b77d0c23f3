package history

import (
	"context"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// CancelFunc libera una suscripción. Debe poder llamarse más de una vez.
type CancelFunc func()

// MovementSource es la consulta viva sobre el almacén: entrega el snapshot
// COMPLETO de movimientos del producto en cada cambio (no deltas). El orden de
// llegada no está garantizado; ordenar es responsabilidad del feed.
// Un err no-nil en el callback señala fallo de la consulta (terminal para ese envío).
type MovementSource interface {
	Watch(ctx context.Context, productID string, fn func(movs []*entity.Movement, err error)) (CancelFunc, error)
}

// Authenticator es la puerta de confirmación por contraseña del flujo de borrado.
// Devuelve (false, nil) cuando el usuario cancela o la contraseña no coincide.
type Authenticator interface {
	Authenticate(ctx context.Context, userID, password string) (bool, error)
}

// Notifier es el destino de notificaciones de resultado. Fire-and-forget.
type Notifier interface {
	ShowSuccess(msg string)
	ShowError(msg string)
}
