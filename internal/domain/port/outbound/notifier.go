package outbound

import "context"

// Control is a single clickable element attached to a message.
type Control struct {
	ID    string
	Label string
}

type Message struct {
	Text    string
	Control *Control
}

// Notifier delivers messages to a chat platform.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
	Platform() string
}
