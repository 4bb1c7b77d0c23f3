package redisx

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/kardex-api/internal/application/inventory"
)

const movementChannelPrefix = "kardex:movements:"

// ChannelMovements devuelve el canal pub/sub de cambios del historial de un producto.
func ChannelMovements(productID string) string {
	return movementChannelPrefix + productID
}

var _ inventory.ChangePublisher = (*MovementNotifier)(nil)

// MovementNotifier publica avisos de cambio de historial por producto.
// Fire-and-forget: un fallo de publish solo se registra; los feeds perderían un
// refresh, no consistencia (la BD es la fuente de verdad).
type MovementNotifier struct {
	rdb *redis.Client
}

// NewMovementNotifier construye el notificador.
func NewMovementNotifier(rdb *redis.Client) *MovementNotifier {
	return &MovementNotifier{rdb: rdb}
}

// MovementsChanged avisa a los suscriptores del producto que su historial cambió.
func (n *MovementNotifier) MovementsChanged(ctx context.Context, productID string) {
	if err := n.rdb.Publish(ctx, ChannelMovements(productID), "changed").Err(); err != nil {
		log.Warn().Err(err).Str("product_id", productID).Msg("publish de cambio de movimientos falló")
	}
}
