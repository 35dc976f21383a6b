// Package watcher turns purchase channel messages into purchase requests.
package watcher

import (
	"context"
	"fmt"

	"github.com/garyjia/purchase-bot/internal/application/port"
	"github.com/garyjia/purchase-bot/internal/application/service"
	"github.com/garyjia/purchase-bot/internal/domain/event"
)

// ChannelWatcher classifies events of the purchase channel. Messages inside
// reply threads and messages written by approvers never become requests.
type ChannelWatcher struct {
	channelID string
	lifecycle service.LifecycleService
	approvers service.ApproverService
	notifier  service.NotificationService
	gateway   port.ChatGateway
	logger    service.Logger
}

// NewChannelWatcher creates a watcher for channelID
func NewChannelWatcher(
	channelID string,
	lifecycle service.LifecycleService,
	approvers service.ApproverService,
	notifier service.NotificationService,
	gateway port.ChatGateway,
	logger service.Logger,
) *ChannelWatcher {
	return &ChannelWatcher{
		channelID: channelID,
		lifecycle: lifecycle,
		approvers: approvers,
		notifier:  notifier,
		gateway:   gateway,
		logger:    logger,
	}
}

// HandleEvent processes one inbound event; events of other channels are ignored
func (w *ChannelWatcher) HandleEvent(ctx context.Context, evt *event.Event) error {
	if evt.ChannelID != w.channelID || evt.InThread {
		return nil
	}

	switch evt.Type {
	case event.TypeMessagePosted:
		return w.submit(ctx, evt)
	case event.TypeMessageEdited:
		return w.edit(ctx, evt)
	case event.TypeMessageDeleted:
		return w.delete(ctx, evt)
	default:
		return nil
	}
}

func (w *ChannelWatcher) submit(ctx context.Context, evt *event.Event) error {
	if evt.Subtype != "" || evt.AuthorID == "" {
		return nil
	}

	isApprover, err := w.approvers.IsApprover(ctx, evt.AuthorID)
	if err != nil {
		return err
	}
	if isApprover {
		return nil
	}

	name, err := w.gateway.ResolveDisplayName(ctx, evt.AuthorID)
	if err != nil {
		return fmt.Errorf("resolve requester name: %w", err)
	}

	if _, err := w.lifecycle.Submit(ctx, evt.AuthorID, name, evt.Text); err != nil {
		return err
	}

	ref := port.MessageRef{ChannelID: evt.ChannelID, MessageID: evt.MessageID}
	if err := w.gateway.AddReaction(ctx, ref); err != nil {
		return fmt.Errorf("add reaction: %w", err)
	}

	_, err = w.notifier.NotifyPending(ctx, "", false)
	return err
}

// previousAuthorName resolves the display name of whoever wrote the message
// before it changed. An empty name means the event carries no snapshot.
func (w *ChannelWatcher) previousAuthorName(ctx context.Context, evt *event.Event) (string, error) {
	if evt.PreviousAuthor() == "" {
		w.logger.Error("Message change without previous content",
			"event_type", evt.Type,
			"message_id", evt.MessageID,
		)
		return "", nil
	}
	name, err := w.gateway.ResolveDisplayName(ctx, evt.PreviousAuthor())
	if err != nil {
		return "", fmt.Errorf("resolve previous author name: %w", err)
	}
	return name, nil
}

func (w *ChannelWatcher) edit(ctx context.Context, evt *event.Event) error {
	name, err := w.previousAuthorName(ctx, evt)
	if err != nil || name == "" {
		return err
	}

	ok, err := w.lifecycle.Edit(ctx, name, evt.PreviousText(), evt.Text)
	if err != nil {
		return err
	}
	if !ok {
		w.logger.Error("Failed to update request",
			"message_id", evt.MessageID,
			"author", name,
			"previous_text", evt.PreviousText(),
		)
	}
	return nil
}

func (w *ChannelWatcher) delete(ctx context.Context, evt *event.Event) error {
	name, err := w.previousAuthorName(ctx, evt)
	if err != nil || name == "" {
		return err
	}

	ok, err := w.lifecycle.Delete(ctx, name, evt.PreviousText())
	if err != nil {
		return err
	}
	if !ok {
		w.logger.Error("Failed to delete request",
			"message_id", evt.MessageID,
			"author", name,
			"previous_text", evt.PreviousText(),
		)
	}
	return nil
}
