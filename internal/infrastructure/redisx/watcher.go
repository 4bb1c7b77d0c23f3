package redisx

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/kardex-api/internal/application/history"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

var _ history.MovementSource = (*MovementWatcher)(nil)

// MovementWatcher implementa la consulta viva del historial: snapshot inicial
// desde PostgreSQL y re-consulta completa en cada aviso pub/sub del producto.
// Siempre entrega el resultado completo, nunca deltas.
type MovementWatcher struct {
	rdb  *redis.Client
	movs repository.MovementRepository
	log  *logger.Logger
}

// NewMovementWatcher construye el watcher.
func NewMovementWatcher(rdb *redis.Client, movs repository.MovementRepository, log *logger.Logger) *MovementWatcher {
	return &MovementWatcher{rdb: rdb, movs: movs, log: log}
}

// Watch se suscribe al canal del producto y entrega snapshots a fn: uno inicial
// y uno por cada aviso de cambio. Un fallo de consulta se entrega como err y
// termina la entrega (error terminal de la suscripción). La cancelación cierra
// la suscripción pub/sub; puede invocarse más de una vez sin efecto adicional.
func (w *MovementWatcher) Watch(ctx context.Context, productID string, fn func(movs []*entity.Movement, err error)) (history.CancelFunc, error) {
	sub := w.rdb.Subscribe(ctx, ChannelMovements(productID))
	// Receive confirma que la suscripción quedó establecida antes del primer snapshot.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	watchCtx, cancelCtx := context.WithCancel(ctx)

	deliver := func() bool {
		movs, err := w.movs.ListByProduct(productID)
		if err != nil {
			fn(nil, err)
			return false
		}
		fn(movs, nil)
		return true
	}

	go func() {
		defer func() { _ = sub.Close() }()
		if !deliver() { // snapshot inicial
			return
		}
		ch := sub.Channel()
		for {
			select {
			case <-watchCtx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				if !deliver() {
					return
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			cancelCtx()
			_ = sub.Close()
		})
	}
	return cancel, nil
}
