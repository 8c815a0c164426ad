package slack

import (
	"strings"

	slackapi "github.com/slack-go/slack"

	"github.com/jonny/lockwatch/internal/domain/port/outbound"
)

// ActionIDLock identifies the lock button in block_actions callbacks. The
// button value carries the encoded action reference.
const ActionIDLock = "lock_device"

// BuildMessageBlocks renders msg as a section block followed, when a control
// is attached, by an actions block with a single button.
func BuildMessageBlocks(msg outbound.Message) []slackapi.Block {
	section := slackapi.NewSectionBlock(
		slackapi.NewTextBlockObject(slackapi.MarkdownType, toMrkdwn(msg.Text), false, false),
		nil, nil,
	)
	blocks := []slackapi.Block{section}
	if msg.Control == nil {
		return blocks
	}

	btn := slackapi.NewButtonBlockElement(
		ActionIDLock,
		msg.Control.ID,
		slackapi.NewTextBlockObject(slackapi.PlainTextType, msg.Control.Label, true, false),
	)
	btn.Style = slackapi.StyleDanger

	return append(blocks, slackapi.NewActionBlock("", btn))
}

// toMrkdwn converts Discord-style **bold** into Slack *bold*.
func toMrkdwn(s string) string {
	return strings.ReplaceAll(s, "**", "*")
}
