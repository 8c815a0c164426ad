package service_test

import (
	"bytes"
	"context"
	"log/slog"
	"sync"

	"github.com/pkg/errors"

	"github.com/jonny/lockwatch/internal/domain/model"
	"github.com/jonny/lockwatch/internal/domain/port/outbound"
)

// fakeLockAPI stands in for the device API. It serves both the status and
// command side so tests can assert one never triggers the other.
type fakeLockAPI struct {
	mu         sync.Mutex
	statuses   map[string]string
	errs       map[string]error
	lockErr    error
	credential bool

	statusCalls     []string
	lockCalls       []string
	lockHadDeadline bool
}

func newFakeLockAPI() *fakeLockAPI {
	return &fakeLockAPI{
		statuses:   make(map[string]string),
		errs:       make(map[string]error),
		credential: true,
	}
}

func (f *fakeLockAPI) Status(_ context.Context, deviceID string) (model.DeviceStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls = append(f.statusCalls, deviceID)
	if err := f.errs[deviceID]; err != nil {
		return model.DeviceStatus{}, err
	}
	raw, ok := f.statuses[deviceID]
	if !ok {
		return model.DeviceStatus{}, errors.New("no such device")
	}
	return model.NewDeviceStatus(deviceID, raw, nil), nil
}

func (f *fakeLockAPI) Lock(ctx context.Context, deviceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lockCalls = append(f.lockCalls, deviceID)
	_, f.lockHadDeadline = ctx.Deadline()
	return f.lockErr
}

func (f *fakeLockAPI) HasCredential() bool { return f.credential }

func (f *fakeLockAPI) locks() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lockCalls...)
}

var (
	_ outbound.LockReader    = (*fakeLockAPI)(nil)
	_ outbound.LockCommander = (*fakeLockAPI)(nil)
)

// fakeNotifier records sent messages. failOn lists 1-based call numbers
// that return an error.
type fakeNotifier struct {
	mu     sync.Mutex
	sent   []outbound.Message
	calls  int
	failOn map[int]bool
}

func (f *fakeNotifier) Send(_ context.Context, msg outbound.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failOn[f.calls] {
		return errors.New("webhook returned 500")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeNotifier) Platform() string { return "fake" }

func (f *fakeNotifier) messages() []outbound.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]outbound.Message(nil), f.sent...)
}

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}
