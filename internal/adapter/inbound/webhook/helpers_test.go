package webhook_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jonny/lockwatch/internal/domain/service"
)

// fakeCommander records lock commands in place of the vendor API.
type fakeCommander struct {
	mu         sync.Mutex
	err        error
	credential bool
	locked     []string
}

func newFakeCommander() *fakeCommander {
	return &fakeCommander{credential: true}
}

func (f *fakeCommander) Lock(ctx context.Context, deviceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locked = append(f.locked, deviceID)
	return f.err
}

func (f *fakeCommander) HasCredential() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.credential
}

func (f *fakeCommander) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.locked))
	copy(out, f.locked)
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newInteractionService(cmd *fakeCommander) *service.InteractionService {
	return service.NewInteractionService(cmd, time.Second, discardLogger())
}
