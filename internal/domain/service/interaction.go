package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonny/lockwatch/internal/domain/model"
	"github.com/jonny/lockwatch/internal/domain/port/inbound"
	"github.com/jonny/lockwatch/internal/domain/port/outbound"
)

// InteractionService turns a chat callback into a device command. Each
// call is independent; nothing is kept between requests.
type InteractionService struct {
	commander      outbound.LockCommander
	commandTimeout time.Duration
	logger         *slog.Logger
}

var _ inbound.InteractionPort = (*InteractionService)(nil)

func NewInteractionService(commander outbound.LockCommander, commandTimeout time.Duration, logger *slog.Logger) *InteractionService {
	return &InteractionService{
		commander:      commander,
		commandTimeout: commandTimeout,
		logger:         logger,
	}
}

// HandleInteraction replies pong to a handshake, runs the lock command for a
// valid action, and returns an empty acknowledgement for anything else.
// The ephemeral reply confirms the command was sent, not that it succeeded.
func (s *InteractionService) HandleInteraction(ctx context.Context, event model.InteractionEvent) model.Acknowledgement {
	switch event.Kind {
	case model.InteractionHandshake:
		return model.PongAck()
	case model.InteractionAction:
		return s.handleAction(ctx, event)
	default:
		s.logger.Debug("ignoring unrecognised interaction")
		return model.EmptyAck()
	}
}

func (s *InteractionService) handleAction(ctx context.Context, event model.InteractionEvent) model.Acknowledgement {
	ref, err := model.DecodeActionReference(event.ControlID)
	if err != nil {
		s.logger.Warn("dropping interaction with undecodable control",
			"controlID", event.ControlID,
			"actor", event.Actor,
			"error", err,
		)
		return model.EmptyAck()
	}
	if !s.commander.HasCredential() {
		s.logger.Warn("dropping lock request: no device api credential", "deviceID", ref.DeviceID)
		return model.EmptyAck()
	}

	cmdCtx := ctx
	if s.commandTimeout > 0 {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, s.commandTimeout)
		defer cancel()
	}

	if err := s.commander.Lock(cmdCtx, ref.DeviceID); err != nil {
		s.logger.Error("lock command failed",
			"deviceID", ref.DeviceID,
			"actor", event.Actor,
			"error", err,
		)
	} else {
		s.logger.Info("lock command sent", "deviceID", ref.DeviceID, "actor", event.Actor)
	}

	label := event.Label
	if label == "" {
		label = fmt.Sprintf("lock %s", ref.DeviceID)
	}
	return model.EphemeralAck(fmt.Sprintf("✅ Sent the \"%s\" command.", label))
}
