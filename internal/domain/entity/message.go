package entity

import "time"

// MessageSnapshot is the last known content of a channel message.
// Edit and delete events carry the snapshot taken before the change.
type MessageSnapshot struct {
	MessageID string    `json:"message_id"`
	ChatID    string    `json:"chat_id"`
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	InThread  bool      `json:"in_thread"`
	UpdatedAt time.Time `json:"updated_at"`
}
