package slack_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	slacknotifier "github.com/jonny/lockwatch/internal/adapter/outbound/notification/slack"
	"github.com/jonny/lockwatch/internal/domain/port/outbound"
)

func TestSend_PostsBlocks(t *testing.T) {
	var raw []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	n := slacknotifier.NewNotifier(slacknotifier.Config{WebhookURL: srv.URL})
	err := n.Send(context.Background(), outbound.Message{
		Text:    "🔓 **Back door** is unlocked",
		Control: &outbound.Control{ID: "lock_dev-2", Label: "🔒 Lock Back door"},
	})
	require.NoError(t, err)

	var got struct {
		Text   string            `json:"text"`
		Blocks []json.RawMessage `json:"blocks"`
	}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "🔓 **Back door** is unlocked", got.Text)
	assert.Len(t, got.Blocks, 2)
	assert.Contains(t, string(raw), `"action_id":"lock_device"`)
	assert.Contains(t, string(raw), `"value":"lock_dev-2"`)
}

func TestSend_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	n := slacknotifier.NewNotifier(slacknotifier.Config{WebhookURL: srv.URL})
	assert.Error(t, n.Send(context.Background(), outbound.Message{Text: "x"}))
}

func TestBuildMessageBlocks_WithControl(t *testing.T) {
	blocks := slacknotifier.BuildMessageBlocks(outbound.Message{
		Text:    "**Front door** is unlocked",
		Control: &outbound.Control{ID: "lock_abc", Label: "🔒 Lock Front door"},
	})
	require.Len(t, blocks, 2)

	section, ok := blocks[0].(*slackapi.SectionBlock)
	require.True(t, ok, "expected SectionBlock, got %T", blocks[0])
	assert.Equal(t, "*Front door* is unlocked", section.Text.Text)

	actions, ok := blocks[1].(*slackapi.ActionBlock)
	require.True(t, ok, "expected ActionBlock, got %T", blocks[1])
	require.Len(t, actions.Elements.ElementSet, 1)

	btn, ok := actions.Elements.ElementSet[0].(*slackapi.ButtonBlockElement)
	require.True(t, ok)
	assert.Equal(t, slacknotifier.ActionIDLock, btn.ActionID)
	assert.Equal(t, "lock_abc", btn.Value)
	assert.Equal(t, "🔒 Lock Front door", btn.Text.Text)
}

func TestBuildMessageBlocks_PlainText(t *testing.T) {
	blocks := slacknotifier.BuildMessageBlocks(outbound.Message{Text: "hello"})
	require.Len(t, blocks, 1)
	_, ok := blocks[0].(*slackapi.SectionBlock)
	assert.True(t, ok)
}
