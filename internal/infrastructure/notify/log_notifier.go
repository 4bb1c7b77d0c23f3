package notify

import (
	"github.com/jhoicas/kardex-api/internal/application/history"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

var _ history.Notifier = (*LogNotifier)(nil)

// LogNotifier implementa el destino de notificaciones sobre el log estructurado.
// En un backend el "toast" del usuario es la respuesta HTTP; este sink deja la
// traza operativa y mantiene el contrato fire-and-forget del flujo de borrado.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier construye el sink.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) ShowSuccess(msg string) {
	n.log.Info().Str("notice", "success").Msg(msg)
}

func (n *LogNotifier) ShowError(msg string) {
	n.log.Error().Str("notice", "error").Msg(msg)
}
