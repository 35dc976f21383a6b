package lark

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	"go.uber.org/zap"

	"github.com/garyjia/purchase-bot/internal/application/port"
)

// Messenger implements port.ChatGateway with the Lark IM and contact APIs
type Messenger struct {
	api       imAPI
	channelID string
	reaction  string
	logger    *zap.Logger

	mu    sync.RWMutex
	names map[string]string
}

var _ port.ChatGateway = (*Messenger)(nil)

// NewMessenger creates a new Lark chat gateway
func NewMessenger(client *lark.Client, cfg Config, logger *zap.Logger) *Messenger {
	return newMessenger(&sdkAPI{client: client}, cfg, logger)
}

func newMessenger(api imAPI, cfg Config, logger *zap.Logger) *Messenger {
	reaction := cfg.Reaction
	if reaction == "" {
		reaction = DefaultReaction
	}
	return &Messenger{
		api:       api,
		channelID: cfg.ChannelID,
		reaction:  reaction,
		logger:    logger,
		names:     make(map[string]string),
	}
}

// SendDirectMessage sends a text message to the user's chat with the bot
func (m *Messenger) SendDirectMessage(ctx context.Context, userID, text string) error {
	if userID == "" {
		return fmt.Errorf("userID cannot be empty")
	}

	content, err := textContent(text)
	if err != nil {
		return err
	}

	messageID, err := m.api.CreateMessage(ctx, "open_id", userID, "text", content)
	if err != nil {
		m.logger.Error("Failed to send direct message", zap.String("open_id", userID), zap.Error(err))
		return err
	}

	m.logger.Debug("Direct message sent",
		zap.String("open_id", userID),
		zap.String("message_id", messageID))
	return nil
}

// PostChannelMessage posts to the purchase channel. With an attachment the
// message becomes an interactive card coloured after the attachment.
func (m *Messenger) PostChannelMessage(ctx context.Context, text string, attachment *port.Attachment) error {
	msgType := "text"
	content, err := textContent(text)
	if attachment != nil {
		msgType = "interactive"
		content, err = cardContent(text, attachment)
	}
	if err != nil {
		return err
	}

	if _, err := m.api.CreateMessage(ctx, "chat_id", m.channelID, msgType, content); err != nil {
		m.logger.Error("Failed to post channel message", zap.String("chat_id", m.channelID), zap.Error(err))
		return err
	}
	return nil
}

// AddReaction marks a message with the configured emoji
func (m *Messenger) AddReaction(ctx context.Context, ref port.MessageRef) error {
	if ref.MessageID == "" {
		return fmt.Errorf("message ID cannot be empty")
	}
	return m.api.CreateReaction(ctx, ref.MessageID, m.reaction)
}

// ResolveDisplayName returns the user's name. Names are cached for the process lifetime.
func (m *Messenger) ResolveDisplayName(ctx context.Context, userID string) (string, error) {
	m.mu.RLock()
	name, ok := m.names[userID]
	m.mu.RUnlock()
	if ok {
		return name, nil
	}

	name, err := m.api.GetUserName(ctx, userID)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.names[userID] = name
	m.mu.Unlock()
	return name, nil
}

func textContent(text string) (string, error) {
	data, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", fmt.Errorf("failed to marshal text content: %w", err)
	}
	return string(data), nil
}
