package notification

import (
	"context"
	"log/slog"

	"github.com/jonny/lockwatch/internal/domain/port/outbound"
)

// NoopNotifier logs messages instead of sending them.
// Used for dry runs and when no chat platform is configured.
type NoopNotifier struct {
	logger *slog.Logger
}

var _ outbound.Notifier = (*NoopNotifier)(nil)

// NewNoopNotifier creates a new NoopNotifier.
func NewNoopNotifier(logger *slog.Logger) *NoopNotifier {
	return &NoopNotifier{logger: logger}
}

func (n *NoopNotifier) Platform() string { return "log" }

func (n *NoopNotifier) Send(_ context.Context, msg outbound.Message) error {
	attrs := []any{"text", msg.Text}
	if msg.Control != nil {
		attrs = append(attrs, "controlID", msg.Control.ID, "controlLabel", msg.Control.Label)
	}
	n.logger.Info("noop: message", attrs...)
	return nil
}
