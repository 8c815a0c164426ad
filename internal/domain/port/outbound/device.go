package outbound

import (
	"context"

	"github.com/jonny/lockwatch/internal/domain/model"
)

// LockReader reads the current state of a lock.
type LockReader interface {
	Status(ctx context.Context, deviceID string) (model.DeviceStatus, error)
}

// LockCommander sends state-changing commands to a lock. A commander without
// a credential must report HasCredential() == false so callers can drop the
// request before any network call.
type LockCommander interface {
	Lock(ctx context.Context, deviceID string) error
	HasCredential() bool
}
