package model

type InteractionKind string

const (
	InteractionUnknown   InteractionKind = "unknown"
	InteractionHandshake InteractionKind = "handshake"
	InteractionAction    InteractionKind = "action"
)

// InteractionEvent is one inbound callback from a chat platform, already
// stripped of platform framing. It only lives for the duration of a request.
type InteractionEvent struct {
	Kind      InteractionKind
	ControlID string
	Label     string
	Actor     string
	Raw       []byte
}

type AckKind string

const (
	AckEmpty     AckKind = "empty"
	AckPong      AckKind = "pong"
	AckEphemeral AckKind = "ephemeral"
)

// Acknowledgement is the reply to an InteractionEvent. Inbound adapters
// render it in their platform's format.
type Acknowledgement struct {
	Kind AckKind
	Text string
}

func EmptyAck() Acknowledgement { return Acknowledgement{Kind: AckEmpty} }

func PongAck() Acknowledgement { return Acknowledgement{Kind: AckPong} }

func EphemeralAck(text string) Acknowledgement {
	return Acknowledgement{Kind: AckEphemeral, Text: text}
}
