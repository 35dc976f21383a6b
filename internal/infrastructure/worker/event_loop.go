package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/purchase-bot/internal/application/dispatcher"
	"github.com/garyjia/purchase-bot/internal/application/port"
	"github.com/garyjia/purchase-bot/internal/domain/entity"
)

// DefaultPollInterval is the pause between two polls of the event source
const DefaultPollInterval = 100 * time.Millisecond

// EventLoopStats reports the progress of the event loop
type EventLoopStats struct {
	Processed int64     `json:"processed"`
	Failed    int64     `json:"failed"`
	LastEvent time.Time `json:"last_event,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// EventLoop drains one batch of events at a time and handles each event to
// completion before the next. No two events are ever handled concurrently.
type EventLoop struct {
	source       port.EventSource
	dispatcher   dispatcher.Dispatcher
	pollInterval time.Duration
	logger       *zap.Logger

	mu    sync.RWMutex
	stats EventLoopStats
}

// NewEventLoop creates the event loop worker
func NewEventLoop(source port.EventSource, d dispatcher.Dispatcher, pollInterval time.Duration, logger *zap.Logger) *EventLoop {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &EventLoop{
		source:       source,
		dispatcher:   d,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

func (l *EventLoop) Name() string {
	return "event-loop"
}

// Run polls until ctx is cancelled. A fatal handler error stops the loop and is returned.
func (l *EventLoop) Run(ctx context.Context) error {
	l.logger.Info("Begin main loop", zap.Duration("poll_interval", l.pollInterval))

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		if err := l.poll(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (l *EventLoop) poll(ctx context.Context) error {
	events, err := l.source.Poll(ctx)
	if err != nil {
		return fmt.Errorf("poll events: %w", err)
	}

	for _, evt := range events {
		l.logger.Debug("Handling event",
			zap.String("event_id", evt.ID),
			zap.String("event_type", evt.Type.String()),
			zap.String("channel_id", evt.ChannelID))

		err := l.dispatcher.Dispatch(ctx, evt)
		l.record(err)
		if err == nil {
			continue
		}
		if entity.IsFatal(err) || errors.Is(err, context.Canceled) {
			return err
		}
		l.logger.Error("Event handling failed",
			zap.String("event_id", evt.ID),
			zap.Error(err))
	}
	return nil
}

func (l *EventLoop) record(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stats.Processed++
	l.stats.LastEvent = time.Now()
	if err != nil {
		l.stats.Failed++
		l.stats.LastError = err.Error()
	}
}

// Stats returns a snapshot of the loop counters
func (l *EventLoop) Stats() EventLoopStats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stats
}
