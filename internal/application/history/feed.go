package history

import (
	"context"
	"sort"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

// Snapshot es el view-model que publica el feed: lista ordenada + flag de carga.
// Err queda fijado solo cuando la consulta viva falló; en ese caso la lista es vacía.
type Snapshot struct {
	Movements []*entity.Movement
	Loading   bool
	Err       error
}

// MovementFeed expone el historial vivo y ordenado de movimientos de un producto.
// En cada push del almacén reemplaza la lista completa con el snapshot recién
// ordenado (no hay merge incremental: los historiales por producto son cortos).
type MovementFeed struct {
	source MovementSource
	log    *logger.Logger
}

// NewMovementFeed construye el feed sobre una fuente viva.
func NewMovementFeed(source MovementSource, log *logger.Logger) *MovementFeed {
	return &MovementFeed{source: source, log: log}
}

// Subscribe establece la consulta viva para un producto y entrega un Snapshot a
// fn en cada cambio. Loading pasa a false tras el primer envío o el primer error,
// lo que llegue antes. Un fallo de la consulta degrada a lista vacía con Err
// fijado y se registra en el log; nunca se propaga como pánico al caller.
// La CancelFunc devuelta libera la suscripción (obligatorio al cerrar la vista).
func (f *MovementFeed) Subscribe(ctx context.Context, productID string, fn func(Snapshot)) (CancelFunc, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}

	cancel, err := f.source.Watch(ctx, productID, func(movs []*entity.Movement, err error) {
		if err != nil {
			f.log.Error().Err(err).Str("product_id", productID).Msg("consulta viva de movimientos falló")
			fn(Snapshot{Movements: []*entity.Movement{}, Loading: false, Err: err})
			return
		}
		fn(Snapshot{Movements: SortByDateDesc(movs), Loading: false})
	})
	if err != nil {
		// Fallo al establecer la suscripción: mismo degradado que un error en stream.
		f.log.Error().Err(err).Str("product_id", productID).Msg("no se pudo suscribir al historial")
		fn(Snapshot{Movements: []*entity.Movement{}, Loading: false, Err: err})
		return func() {}, nil
	}
	return cancel, nil
}

// SortByDateDesc devuelve una copia ordenada por fecha descendente.
// Fechas cero ordenan al final (se tratan como el mínimo posible).
// Orden estable: empates conservan el orden de llegada.
func SortByDateDesc(movs []*entity.Movement) []*entity.Movement {
	out := make([]*entity.Movement, len(movs))
	copy(out, movs)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].Date, out[j].Date
		if di.IsZero() {
			return false
		}
		if dj.IsZero() {
			return true
		}
		return di.After(dj)
	})
	return out
}
