package port

import (
	"context"

	"github.com/garyjia/purchase-bot/internal/domain/event"
)

// Color of a channel attachment
type Color string

const (
	ColorGood   Color = "good"
	ColorDanger Color = "danger"
)

// Attachment is a coloured block shown under a channel message
type Attachment struct {
	Color Color
	Text  string
}

// MessageRef identifies a message for reactions
type MessageRef struct {
	ChannelID string
	MessageID string
}

// ChatGateway sends outbound messages through the chat transport.
// Transport failures are wrapped in entity.ErrGatewayUnavailable.
type ChatGateway interface {
	SendDirectMessage(ctx context.Context, userID, text string) error
	PostChannelMessage(ctx context.Context, text string, attachment *Attachment) error
	AddReaction(ctx context.Context, ref MessageRef) error
	ResolveDisplayName(ctx context.Context, userID string) (string, error)
}

// EventSource yields normalized inbound events in batches
type EventSource interface {
	// Poll returns the events received since the previous call, possibly none
	Poll(ctx context.Context) ([]*event.Event, error)
}
