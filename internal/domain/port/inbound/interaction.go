package inbound

import (
	"context"

	"github.com/jonny/lockwatch/internal/domain/model"
)

// InteractionPort handles callbacks from chat platforms.
type InteractionPort interface {
	HandleInteraction(ctx context.Context, event model.InteractionEvent) model.Acknowledgement
}
