package notification

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/jonny/lockwatch/internal/domain/port/outbound"
)

func TestNoopNotifier_LogsControl(t *testing.T) {
	var buf bytes.Buffer
	n := NewNoopNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

	err := n.Send(context.Background(), outbound.Message{
		Text:    "unlocked",
		Control: &outbound.Control{ID: "lock_abc", Label: "Lock"},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !strings.Contains(buf.String(), "controlID=lock_abc") {
		t.Errorf("expected control id in log, got %q", buf.String())
	}
	if n.Platform() != "log" {
		t.Errorf("Platform() = %q", n.Platform())
	}
}
