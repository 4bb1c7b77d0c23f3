package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

// DeleteMovementUseCase elimina un movimiento y compensa los totales del producto
// padre, de forma atómica y protegida por contraseña.
//
// La compensación no recalcula nada: restaura PreviousQuantity y
// PreviousAveragePrice tal como vienen en el movimiento, para entradas y salidas
// por igual (el snapshot ya codifica la dirección; no hay que distinguirla aquí).
type DeleteMovementUseCase struct {
	txRunner inventory.TxRunner
	auth     Authenticator
	notifier Notifier
	events   inventory.ChangePublisher
	log      *logger.Logger

	mu       sync.Mutex
	inFlight map[string]struct{} // movimientos con borrado en curso
}

// NewDeleteMovementUseCase construye el caso de uso.
func NewDeleteMovementUseCase(
	txRunner inventory.TxRunner,
	auth Authenticator,
	notifier Notifier,
	events inventory.ChangePublisher,
	log *logger.Logger,
) *DeleteMovementUseCase {
	return &DeleteMovementUseCase{
		txRunner: txRunner,
		auth:     auth,
		notifier: notifier,
		events:   events,
		log:      log,
		inFlight: map[string]struct{}{},
	}
}

// DeleteInput entrada del flujo de borrado. Movement es el registro ya cargado en
// el feed: sus campos de snapshot se consideran confiables y no se re-consultan.
type DeleteInput struct {
	UserID   string
	Password string
	Movement *entity.Movement
}

// Delete ejecuta el flujo completo:
//  1. puerta: verifica la contraseña del usuario; si no coincide o se cancela,
//     aborta en silencio sin ninguna escritura (ErrUnauthorized, sin notificación);
//  2. commit: en una sola transacción restaura el producto al snapshot previo
//     del movimiento y elimina el registro. O se aplican ambas escrituras o ninguna.
//
// Solo se admite un borrado en curso por movimiento; un segundo intento
// concurrente devuelve ErrConflict. El estado pendiente se limpia siempre,
// incluso en fallo.
func (uc *DeleteMovementUseCase) Delete(ctx context.Context, in DeleteInput) error {
	if in.Movement == nil || in.Movement.ID == "" || in.UserID == "" {
		return domain.ErrInvalidInput
	}
	m := in.Movement

	if !uc.acquire(m.ID) {
		return domain.ErrConflict
	}
	defer uc.release(m.ID)

	ok, err := uc.auth.Authenticate(ctx, in.UserID, in.Password)
	if err != nil {
		return fmt.Errorf("verificar contraseña: %w", err)
	}
	if !ok {
		// Cancelación o contraseña incorrecta: abortar sin escrituras ni notificación.
		return domain.ErrUnauthorized
	}

	err = uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository, productRepo repository.ProductRepository) error {
		if err := productRepo.UpdateStock(m.ProductID, m.PreviousQuantity, m.PreviousAveragePrice); err != nil {
			return err
		}
		return movRepo.Delete(m.ID)
	})
	if err != nil {
		uc.log.Error().Err(err).Str("movement_id", m.ID).Msg("transacción de borrado compensado falló")
		uc.notifier.ShowError("no se pudo eliminar el movimiento")
		return err
	}

	uc.log.Info().
		Str("movement_id", m.ID).
		Str("product_id", m.ProductID).
		Str("restored_quantity", m.PreviousQuantity.String()).
		Msg("movimiento eliminado, saldo restaurado")
	uc.notifier.ShowSuccess("movimiento eliminado correctamente")

	if uc.events != nil {
		uc.events.MovementsChanged(ctx, m.ProductID)
	}
	return nil
}

func (uc *DeleteMovementUseCase) acquire(movementID string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if _, busy := uc.inFlight[movementID]; busy {
		return false
	}
	uc.inFlight[movementID] = struct{}{}
	return true
}

func (uc *DeleteMovementUseCase) release(movementID string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.inFlight, movementID)
}
