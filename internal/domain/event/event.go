package event

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/garyjia/purchase-bot/internal/domain/entity"
)

// Event is a transport-neutral inbound chat event
type Event struct {
	ID   string `json:"id"`
	Type Type   `json:"type"`

	// MessageID identifies the message for reactions.
	MessageID string `json:"message_id"`
	ChannelID string `json:"channel_id"`
	// Direct is true for one-to-one chats with the bot.
	Direct bool `json:"direct"`

	AuthorID string `json:"author_id"`
	Text     string `json:"text"`
	// Subtype is empty for plain user text messages.
	Subtype  string `json:"subtype,omitempty"`
	InThread bool   `json:"in_thread"`

	// Previous is the content before an edit or delete.
	Previous *entity.MessageSnapshot `json:"previous,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// NewEvent creates a new event with auto-generated ID and timestamp
func NewEvent(eventType Type, channelID, messageID string) *Event {
	return &Event{
		ID:        generateID(),
		Type:      eventType,
		ChannelID: channelID,
		MessageID: messageID,
		Timestamp: time.Now(),
	}
}

// PreviousAuthor returns the author ID of the snapshot, if any
func (e *Event) PreviousAuthor() string {
	if e.Previous == nil {
		return ""
	}
	return e.Previous.AuthorID
}

// PreviousText returns the text of the snapshot, if any
func (e *Event) PreviousText() string {
	if e.Previous == nil {
		return ""
	}
	return e.Previous.Text
}

// generateID creates a unique ID using timestamp and random bytes
func generateID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return fmt.Sprintf("%d-%s", time.Now().UnixNano(), hex.EncodeToString(b))
}
