// Package websocket receives Lark IM events over the long connection and
// queues them as domain events for the event loop.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	larkevent "github.com/larksuite/oapi-sdk-go/v3/event"
	larkdispatcher "github.com/larksuite/oapi-sdk-go/v3/event/dispatcher"
	larkws "github.com/larksuite/oapi-sdk-go/v3/ws"
	"go.uber.org/zap"

	"github.com/garyjia/purchase-bot/internal/application/port"
	"github.com/garyjia/purchase-bot/internal/domain/entity"
	"github.com/garyjia/purchase-bot/internal/domain/event"
)

// DefaultBufferSize is the default capacity of the event queue
const DefaultBufferSize = 256

// LarkAdapterConfig holds configuration for the Lark WebSocket adapter.
type LarkAdapterConfig struct {
	AppID     string
	AppSecret string
	// ChannelID is the purchase channel; only its messages are journaled
	ChannelID  string
	BufferSize int
}

// LarkAdapter translates Lark message events into domain events.
// Events are buffered until the event loop polls them.
type LarkAdapter struct {
	cfg     LarkAdapterConfig
	journal port.MessageJournal
	logger  *zap.Logger

	events chan *event.Event

	mu      sync.Mutex
	started bool
}

var _ port.EventSource = (*LarkAdapter)(nil)

// NewLarkAdapter creates a new Lark WebSocket adapter
func NewLarkAdapter(cfg LarkAdapterConfig, journal port.MessageJournal, logger *zap.Logger) *LarkAdapter {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultBufferSize
	}
	return &LarkAdapter{
		cfg:     cfg,
		journal: journal,
		logger:  logger,
		events:  make(chan *event.Event, cfg.BufferSize),
	}
}

// Name identifies the adapter in the worker manager
func (a *LarkAdapter) Name() string {
	return "lark-websocket"
}

// Run connects to Lark and blocks until the context is cancelled
func (a *LarkAdapter) Run(ctx context.Context) error {
	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return fmt.Errorf("adapter already started")
	}
	a.started = true
	a.mu.Unlock()

	// Verification token and encrypt key are not used in long connection mode
	d := larkdispatcher.NewEventDispatcher("", "")
	d.OnCustomizedEvent(eventMessageReceive, a.handle(eventMessageReceive))
	d.OnCustomizedEvent(eventMessageRecalled, a.handle(eventMessageRecalled))
	d.OnCustomizedEvent(eventMessageUpdated, a.handle(eventMessageUpdated))

	client := larkws.NewClient(a.cfg.AppID, a.cfg.AppSecret, larkws.WithEventHandler(d))

	a.logger.Info("Starting Lark WebSocket adapter",
		zap.String("app_id", a.cfg.AppID),
		zap.String("channel_id", a.cfg.ChannelID))

	// Start only returns on connection failure
	errCh := make(chan error, 1)
	go func() {
		errCh <- client.Start(ctx)
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("Lark WebSocket adapter stopped")
		return nil
	case err := <-errCh:
		if err != nil {
			a.logger.Error("Lark WebSocket client error", zap.Error(err))
			return fmt.Errorf("websocket client error: %w", err)
		}
		return nil
	}
}

// Poll drains the queued events without blocking
func (a *LarkAdapter) Poll(ctx context.Context) ([]*event.Event, error) {
	var batch []*event.Event
	for {
		select {
		case <-ctx.Done():
			return batch, ctx.Err()
		case evt := <-a.events:
			batch = append(batch, evt)
		default:
			return batch, nil
		}
	}
}

func (a *LarkAdapter) handle(eventType string) func(context.Context, *larkevent.EventReq) error {
	return func(ctx context.Context, req *larkevent.EventReq) error {
		return a.HandlePayload(ctx, eventType, req.Body)
	}
}

// HandlePayload translates one raw event body and queues the result.
// Blocks while the queue is full.
func (a *LarkAdapter) HandlePayload(ctx context.Context, eventType string, body []byte) error {
	a.logger.Debug("Received Lark event",
		zap.String("event_type", eventType),
		zap.Int("body_length", len(body)))

	var (
		evt *event.Event
		err error
	)
	switch eventType {
	case eventMessageReceive:
		evt, err = a.translateReceive(ctx, body)
	case eventMessageUpdated:
		evt, err = a.translateUpdate(ctx, body)
	case eventMessageRecalled:
		evt, err = a.translateRecall(ctx, body)
	default:
		return fmt.Errorf("unsupported event type: %s", eventType)
	}
	if err != nil {
		a.logger.Error("Failed to parse Lark event payload",
			zap.String("event_type", eventType),
			zap.Error(err))
		return err
	}
	if evt == nil {
		return nil
	}

	select {
	case a.events <- evt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *LarkAdapter) translateReceive(ctx context.Context, body []byte) (*event.Event, error) {
	var p receivePayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("failed to parse event payload: %w", err)
	}

	msg := p.Event.Message
	if msg.MessageID == "" {
		a.logger.Warn("Message ID not found in Lark event")
		return nil, nil
	}

	evt := event.NewEvent(event.TypeMessagePosted, msg.ChatID, msg.MessageID)
	evt.AuthorID = p.Event.Sender.SenderID.OpenID
	evt.Direct = msg.ChatType == "p2p"
	evt.InThread = msg.RootID != ""

	switch {
	case p.Event.Sender.SenderType == "app":
		evt.Subtype = event.SubtypeBotMessage
	case msg.MessageType != "text":
		evt.Subtype = event.SubtypeNonText
	default:
		text, err := textOf(msg.Content)
		if err != nil {
			return nil, err
		}
		evt.Text = text
	}

	if a.journaled(evt) {
		a.record(ctx, evt)
	}
	return evt, nil
}

func (a *LarkAdapter) translateUpdate(ctx context.Context, body []byte) (*event.Event, error) {
	var p updatedPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("failed to parse event payload: %w", err)
	}

	msg := p.message()
	if msg.MessageID == "" {
		a.logger.Warn("Message ID not found in Lark event")
		return nil, nil
	}

	text, err := textOf(msg.Content)
	if err != nil {
		return nil, err
	}

	prev := a.lookup(ctx, msg.MessageID)
	chatID := msg.ChatID
	if chatID == "" && prev != nil {
		chatID = prev.ChatID
	}

	evt := event.NewEvent(event.TypeMessageEdited, chatID, msg.MessageID)
	evt.Text = text
	evt.Previous = prev
	if prev != nil {
		evt.AuthorID = prev.AuthorID
		evt.InThread = prev.InThread
		a.record(ctx, evt)
	}
	return evt, nil
}

func (a *LarkAdapter) translateRecall(ctx context.Context, body []byte) (*event.Event, error) {
	var p recalledPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("failed to parse event payload: %w", err)
	}
	if p.Event.MessageID == "" {
		a.logger.Warn("Message ID not found in Lark event")
		return nil, nil
	}

	prev := a.lookup(ctx, p.Event.MessageID)
	chatID := p.Event.ChatID
	if chatID == "" && prev != nil {
		chatID = prev.ChatID
	}

	evt := event.NewEvent(event.TypeMessageDeleted, chatID, p.Event.MessageID)
	evt.Previous = prev
	if prev != nil {
		evt.AuthorID = prev.AuthorID
		evt.InThread = prev.InThread
		if err := a.journal.Forget(ctx, p.Event.MessageID); err != nil {
			a.logger.Error("Failed to forget message", zap.String("message_id", p.Event.MessageID), zap.Error(err))
		}
	}
	return evt, nil
}

// journaled reports whether a posted message is kept for later edits
func (a *LarkAdapter) journaled(evt *event.Event) bool {
	return !evt.Direct && evt.Subtype == "" && evt.ChannelID == a.cfg.ChannelID
}

func (a *LarkAdapter) record(ctx context.Context, evt *event.Event) {
	snap := &entity.MessageSnapshot{
		MessageID: evt.MessageID,
		ChatID:    evt.ChannelID,
		AuthorID:  evt.AuthorID,
		Text:      evt.Text,
		InThread:  evt.InThread,
		UpdatedAt: time.Now(),
	}
	if err := a.journal.Record(ctx, snap); err != nil {
		a.logger.Error("Failed to record message", zap.String("message_id", evt.MessageID), zap.Error(err))
	}
}

func (a *LarkAdapter) lookup(ctx context.Context, messageID string) *entity.MessageSnapshot {
	snap, err := a.journal.Lookup(ctx, messageID)
	if err != nil {
		if !errors.Is(err, entity.ErrNotFound) {
			a.logger.Error("Failed to look up message", zap.String("message_id", messageID), zap.Error(err))
		}
		return nil
	}
	return snap
}
