package webhook

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/slack-go/slack"

	"github.com/jonny/lockwatch/internal/adapter/inbound/webhook/middleware"
	slacknotify "github.com/jonny/lockwatch/internal/adapter/outbound/notification/slack"
	"github.com/jonny/lockwatch/internal/domain/model"
	"github.com/jonny/lockwatch/internal/domain/port/inbound"
)

const (
	responseTypeEphemeral = "ephemeral"
	defaultReplyTimeout   = 5 * time.Second
)

// SlackHandler serves the Slack interactivity endpoint. Slack ignores the
// response body for block_actions, so acknowledgements are posted to the
// callback's response_url after the request has been answered.
type SlackHandler struct {
	interactions inbound.InteractionPort
	httpClient   *http.Client
	replyTimeout time.Duration
	logger       *slog.Logger

	inflight sync.WaitGroup
}

func NewSlackHandler(interactions inbound.InteractionPort, httpClient *http.Client, logger *slog.Logger) *SlackHandler {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultReplyTimeout}
	}
	return &SlackHandler{
		interactions: interactions,
		httpClient:   httpClient,
		replyTimeout: defaultReplyTimeout,
		logger:       logger,
	}
}

func (h *SlackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer w.WriteHeader(http.StatusOK)

	if err := r.ParseForm(); err != nil {
		h.logger.Warn("slack interaction: malformed form body",
			"requestID", middleware.RequestID(r.Context()),
			"error", err,
		)
		return
	}

	if r.PostForm.Get("ssl_check") == "1" {
		h.interactions.HandleInteraction(r.Context(), model.InteractionEvent{Kind: model.InteractionHandshake})
		return
	}

	payload := r.PostForm.Get("payload")
	var cb slack.InteractionCallback
	if err := json.Unmarshal([]byte(payload), &cb); err != nil {
		h.logger.Warn("slack interaction: malformed payload",
			"requestID", middleware.RequestID(r.Context()),
			"error", err,
		)
		return
	}

	event := SlackEvent(&cb)
	event.Raw = []byte(payload)

	ack := h.interactions.HandleInteraction(r.Context(), event)
	if ack.Kind != model.AckEphemeral || cb.ResponseURL == "" {
		return
	}

	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		h.reply(cb.ResponseURL, ack.Text)
	}()
}

// Wait blocks until all pending response_url replies have finished.
func (h *SlackHandler) Wait() {
	h.inflight.Wait()
}

func (h *SlackHandler) reply(responseURL, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), h.replyTimeout)
	defer cancel()

	msg := &slack.WebhookMessage{
		Text:         text,
		ResponseType: responseTypeEphemeral,
	}
	if err := slack.PostWebhookCustomHTTPContext(ctx, responseURL, h.httpClient, msg); err != nil {
		h.logger.Warn("slack interaction: posting acknowledgement failed", "error", err)
	}
}

// SlackEvent maps an interaction callback onto the platform-neutral event.
// Only a block_actions callback carrying the lock button is an action.
func SlackEvent(cb *slack.InteractionCallback) model.InteractionEvent {
	if cb.Type != slack.InteractionTypeBlockActions {
		return model.InteractionEvent{Kind: model.InteractionUnknown}
	}
	for _, action := range cb.ActionCallback.BlockActions {
		if action == nil || action.ActionID != slacknotify.ActionIDLock {
			continue
		}
		return model.InteractionEvent{
			Kind:      model.InteractionAction,
			ControlID: action.Value,
			Label:     action.Text.Text,
			Actor:     cb.User.Name,
		}
	}
	return model.InteractionEvent{Kind: model.InteractionUnknown}
}
