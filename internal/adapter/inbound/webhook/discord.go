package webhook

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/jonny/lockwatch/internal/adapter/inbound/webhook/middleware"
	"github.com/jonny/lockwatch/internal/domain/model"
	"github.com/jonny/lockwatch/internal/domain/port/inbound"
)

// discordAck is the interaction response body. InteractionResponseData would
// also serialise empty tts, components and embeds fields.
type discordAck struct {
	Type discordgo.InteractionResponseType `json:"type"`
	Data *discordAckData                   `json:"data,omitempty"`
}

type discordAckData struct {
	Content string                 `json:"content"`
	Flags   discordgo.MessageFlags `json:"flags"`
}

// DiscordHandler serves the Discord interactions endpoint. Every parsed
// request is answered with HTTP 200 and a JSON body.
type DiscordHandler struct {
	interactions inbound.InteractionPort
	logger       *slog.Logger
}

func NewDiscordHandler(interactions inbound.InteractionPort, logger *slog.Logger) *DiscordHandler {
	return &DiscordHandler{interactions: interactions, logger: logger}
}

func (h *DiscordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := middleware.RawBody(r.Context())

	var in discordgo.Interaction
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Warn("discord interaction: malformed payload",
			"requestID", middleware.RequestID(r.Context()),
			"error", err,
		)
		writeJSON(w, struct{}{})
		return
	}

	event := DiscordEvent(&in)
	event.Raw = raw

	ack := h.interactions.HandleInteraction(r.Context(), event)
	writeJSON(w, RenderDiscordAck(ack))
}

// DiscordEvent maps a Discord interaction onto the platform-neutral event.
// Only PING and MESSAGE_COMPONENT carry meaning here.
func DiscordEvent(in *discordgo.Interaction) model.InteractionEvent {
	switch in.Type {
	case discordgo.InteractionPing:
		return model.InteractionEvent{Kind: model.InteractionHandshake}
	case discordgo.InteractionMessageComponent:
		data, ok := in.Data.(discordgo.MessageComponentInteractionData)
		if !ok {
			return model.InteractionEvent{Kind: model.InteractionUnknown}
		}
		return model.InteractionEvent{
			Kind:      model.InteractionAction,
			ControlID: data.CustomID,
			Label:     buttonLabel(in.Message, data.CustomID),
			Actor:     discordActor(in),
		}
	default:
		return model.InteractionEvent{Kind: model.InteractionUnknown}
	}
}

// buttonLabel finds the label of the clicked button on the source message,
// falling back to the first button when none matches customID.
func buttonLabel(msg *discordgo.Message, customID string) string {
	if msg == nil {
		return ""
	}
	var first string
	for _, c := range msg.Components {
		for _, b := range rowButtons(c) {
			if first == "" {
				first = b.Label
			}
			if b.CustomID == customID {
				return b.Label
			}
		}
	}
	return first
}

func rowButtons(c discordgo.MessageComponent) []discordgo.Button {
	var children []discordgo.MessageComponent
	switch row := c.(type) {
	case *discordgo.ActionsRow:
		children = row.Components
	case discordgo.ActionsRow:
		children = row.Components
	default:
		return nil
	}

	var out []discordgo.Button
	for _, child := range children {
		switch b := child.(type) {
		case *discordgo.Button:
			out = append(out, *b)
		case discordgo.Button:
			out = append(out, b)
		}
	}
	return out
}

func discordActor(in *discordgo.Interaction) string {
	if in.Member != nil && in.Member.User != nil {
		return in.Member.User.Username
	}
	if in.User != nil {
		return in.User.Username
	}
	return ""
}

// RenderDiscordAck encodes ack as an interaction response. An empty ack is
// rendered as "{}".
func RenderDiscordAck(ack model.Acknowledgement) any {
	switch ack.Kind {
	case model.AckPong:
		return discordAck{Type: discordgo.InteractionResponsePong}
	case model.AckEphemeral:
		return discordAck{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordAckData{Content: ack.Text, Flags: discordgo.MessageFlagsEphemeral},
		}
	default:
		return struct{}{}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
