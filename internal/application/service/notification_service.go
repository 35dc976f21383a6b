package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/purchase-bot/internal/application/port"
	"github.com/garyjia/purchase-bot/internal/domain/entity"
)

// DefaultNotifyInterval is the minimum gap between automatic pending-list notifications
const DefaultNotifyInterval = 60 * time.Second

// Notification kinds reported to metrics
const (
	NotificationAutomatic = "automatic"
	NotificationForced    = "forced"
	NotificationEmpty     = "empty"
)

// NotificationService sends the list of pending requests to approvers
type NotificationService interface {
	// NotifyPending sends the pending list. An empty recipient means every
	// approver. Unforced calls within the notify interval of the previous
	// notification are suppressed and report sent=false.
	NotifyPending(ctx context.Context, recipient string, force bool) (sent bool, err error)
}

// notificationServiceImpl owns the throttle timestamp. It has a single
// writer: the serial event loop. It is not safe for concurrent use.
type notificationServiceImpl struct {
	lifecycle LifecycleService
	approvers ApproverService
	gateway   port.ChatGateway
	metrics   port.MetricsRecorder
	logger    Logger

	interval     time.Duration
	now          func() time.Time
	lastNotified time.Time
}

// NotificationOption configures the notification service
type NotificationOption func(*notificationServiceImpl)

// WithNotifyInterval overrides DefaultNotifyInterval
func WithNotifyInterval(d time.Duration) NotificationOption {
	return func(s *notificationServiceImpl) {
		s.interval = d
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) NotificationOption {
	return func(s *notificationServiceImpl) {
		s.now = now
	}
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	lifecycle LifecycleService,
	approvers ApproverService,
	gateway port.ChatGateway,
	metrics port.MetricsRecorder,
	logger Logger,
	opts ...NotificationOption,
) NotificationService {
	if metrics == nil {
		metrics = port.NopMetrics{}
	}
	s := &notificationServiceImpl{
		lifecycle: lifecycle,
		approvers: approvers,
		gateway:   gateway,
		metrics:   metrics,
		logger:    logger,
		interval:  DefaultNotifyInterval,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *notificationServiceImpl) NotifyPending(ctx context.Context, recipient string, force bool) (bool, error) {
	now := s.now()
	if !force && !s.lastNotified.IsZero() && now.Sub(s.lastNotified) < s.interval {
		return false, nil
	}

	pending, err := s.lifecycle.Pending(ctx)
	if err != nil {
		return false, fmt.Errorf("list pending requests: %w", err)
	}

	kind := NotificationAutomatic
	if force {
		kind = NotificationForced
	}

	switch {
	case len(pending) > 0 && recipient == "":
		approvers, err := s.approvers.List(ctx)
		if err != nil {
			return false, fmt.Errorf("list approvers: %w", err)
		}
		message := FormatPending(pending)
		for _, approver := range approvers {
			if err := s.gateway.SendDirectMessage(ctx, approver, message); err != nil {
				return false, fmt.Errorf("notify approver %s: %w", approver, err)
			}
		}

	case len(pending) > 0:
		if err := s.gateway.SendDirectMessage(ctx, recipient, FormatPending(pending)); err != nil {
			return false, fmt.Errorf("notify %s: %w", recipient, err)
		}

	case recipient != "":
		kind = NotificationEmpty
		if err := s.gateway.SendDirectMessage(ctx, recipient, "There are no unapproved purchase requests."); err != nil {
			return false, fmt.Errorf("notify %s: %w", recipient, err)
		}

	default:
		kind = ""
	}

	s.lastNotified = now
	if kind != "" {
		s.metrics.NotificationSent(kind)
		s.logger.Info("Pending list sent",
			"kind", kind,
			"recipient", recipient,
			"pending_count", len(pending),
		)
	}
	return true, nil
}

// FormatPending renders the pending list sent to approvers
func FormatPending(requests []*entity.PurchaseRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "There are %d unapproved purchase requests.\n", len(requests))
	for _, req := range requests {
		b.WriteString("-----\n")
		fmt.Fprintf(&b, "ID: %d, %s: %s\n", req.ID, req.RequesterName, req.Text)
	}
	return b.String()
}
