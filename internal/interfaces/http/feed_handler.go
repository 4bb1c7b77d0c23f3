package http

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/application/history"
)

// FeedHandler expone el historial vivo de un producto como stream SSE.
// Cada evento lleva el snapshot completo ya ordenado (no deltas), igual que lo
// publica el feed.
type FeedHandler struct {
	feed *history.MovementFeed
}

// NewFeedHandler construye el handler.
func NewFeedHandler(feed *history.MovementFeed) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// Stream godoc
// @Summary      Stream SSE del historial de movimientos de un producto
// @Description  Emite un evento con el snapshot completo ordenado en cada cambio.
// @Tags         movements
// @Security     Bearer
// @Produce      text/event-stream
// @Param        id  path  string  true  "ID del producto"
// @Router       /api/products/{id}/movements/stream [get]
func (h *FeedHandler) Stream(c *fiber.Ctx) error {
	productID := c.Params("id")
	if productID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product id requerido"})
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		snaps := make(chan history.Snapshot, 8)
		cancelFeed, err := h.feed.Subscribe(ctx, productID, func(s history.Snapshot) {
			// Nunca bloquear al feed: si el escritor va atrasado se descarta el
			// snapshot más viejo; cada snapshot es completo y reemplazable.
			for {
				select {
				case snaps <- s:
					return
				default:
					select {
					case <-snaps:
					default:
					}
				}
			}
		})
		if err != nil {
			return
		}
		defer cancelFeed()

		for s := range snapshotsOrDone(ctx, snaps) {
			payload, err := json.Marshal(toFeedSnapshotResponse(s))
			if err != nil {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			if err := w.Flush(); err != nil {
				// Cliente desconectado: liberar la suscripción (defer).
				return
			}
			if s.Err != nil {
				// Error terminal de la consulta viva: cerrar el stream.
				return
			}
		}
	}))
	return nil
}

// snapshotsOrDone adapta el canal de snapshots a un range cancelable.
func snapshotsOrDone(ctx context.Context, in <-chan history.Snapshot) <-chan history.Snapshot {
	out := make(chan history.Snapshot)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case s := <-in:
				select {
				case out <- s:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func toFeedSnapshotResponse(s history.Snapshot) dto.FeedSnapshotResponse {
	resp := dto.FeedSnapshotResponse{
		Loading:   s.Loading,
		Movements: make([]dto.MovementResponse, 0, len(s.Movements)),
	}
	if s.Err != nil {
		resp.Error = "historial no disponible"
	}
	for _, m := range s.Movements {
		resp.Movements = append(resp.Movements, toMovementResponse(m))
	}
	return resp
}
