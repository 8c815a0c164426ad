package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/jonny/lockwatch/internal/domain/model"
	"github.com/jonny/lockwatch/internal/domain/port/outbound"
)

// Dispatcher formats and sends chat notifications. It reports the outcome as
// a model.Result and never returns an error that would stop the caller.
type Dispatcher struct {
	notifier outbound.Notifier
	logger   *slog.Logger
}

func NewDispatcher(notifier outbound.Notifier, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{notifier: notifier, logger: logger}
}

// Send posts a plain text message.
func (d *Dispatcher) Send(ctx context.Context, text string) model.Result {
	return d.deliver(ctx, outbound.Message{Text: text})
}

// SendWithAction posts text with a single control that encodes ref. The
// control label is derived from displayName.
func (d *Dispatcher) SendWithAction(ctx context.Context, text string, ref model.ActionReference, displayName string) model.Result {
	id, err := ref.Encode()
	if err != nil {
		d.logger.Error("cannot encode action reference",
			"deviceID", ref.DeviceID,
			"kind", ref.Kind,
			"error", err,
		)
		return model.Failed(errors.Wrap(err, "encoding action reference"))
	}
	return d.deliver(ctx, outbound.Message{
		Text:    text,
		Control: &outbound.Control{ID: id, Label: LockLabel(displayName)},
	})
}

func (d *Dispatcher) deliver(ctx context.Context, msg outbound.Message) model.Result {
	if err := d.notifier.Send(ctx, msg); err != nil {
		d.logger.Warn("notification failed",
			"platform", d.notifier.Platform(),
			"error", err,
		)
		return model.Failed(err)
	}

	attrs := []any{"platform", d.notifier.Platform()}
	if msg.Control != nil {
		attrs = append(attrs, "controlID", msg.Control.ID)
	}
	d.logger.Info("notification sent", attrs...)
	return model.Ok()
}

// LockLabel is the button label for locking the named device.
func LockLabel(displayName string) string {
	return fmt.Sprintf("🔒 Lock %s", displayName)
}
