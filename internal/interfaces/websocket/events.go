package websocket

import (
	"encoding/json"
	"fmt"
)

// Lark event types subscribed by the adapter
const (
	eventMessageReceive  = "im.message.receive_v1"
	eventMessageRecalled = "im.message.recalled_v1"
	eventMessageUpdated  = "im.message.updated_v1"
)

type eventHeader struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
}

type larkMessage struct {
	MessageID   string `json:"message_id"`
	RootID      string `json:"root_id"`
	ChatID      string `json:"chat_id"`
	ChatType    string `json:"chat_type"`
	MessageType string `json:"message_type"`
	Content     string `json:"content"`
}

// receivePayload is the body of im.message.receive_v1
type receivePayload struct {
	Header eventHeader `json:"header"`
	Event  struct {
		Sender struct {
			SenderID struct {
				OpenID string `json:"open_id"`
			} `json:"sender_id"`
			SenderType string `json:"sender_type"`
		} `json:"sender"`
		Message larkMessage `json:"message"`
	} `json:"event"`
}

// recalledPayload is the body of im.message.recalled_v1
type recalledPayload struct {
	Header eventHeader `json:"header"`
	Event  struct {
		MessageID string `json:"message_id"`
		ChatID    string `json:"chat_id"`
	} `json:"event"`
}

// updatedPayload is the body of im.message.updated_v1. Some tenants nest the
// message under "message", others put its fields on the event itself.
type updatedPayload struct {
	Header eventHeader `json:"header"`
	Event  struct {
		larkMessage
		Message *larkMessage `json:"message"`
	} `json:"event"`
}

func (p *updatedPayload) message() larkMessage {
	if p.Event.Message != nil && p.Event.Message.MessageID != "" {
		return *p.Event.Message
	}
	return p.Event.larkMessage
}

// textOf extracts the text of a "text" message content
func textOf(content string) (string, error) {
	if content == "" {
		return "", nil
	}
	var body struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(content), &body); err != nil {
		return "", fmt.Errorf("failed to parse message content: %w", err)
	}
	return body.Text, nil
}
