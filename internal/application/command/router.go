// Package command routes approver direct messages to the request lifecycle.
package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/garyjia/purchase-bot/internal/application/port"
	"github.com/garyjia/purchase-bot/internal/application/service"
	"github.com/garyjia/purchase-bot/internal/domain/entity"
	"github.com/garyjia/purchase-bot/internal/domain/event"
)

// Usage is the reply to the help command
const Usage = "Usage\n" +
	"`help`: show this message\n" +
	"`unapproved`: list the unapproved purchase requests\n" +
	"`approve 1 2 3 | approve 1-3`: approve requests 1, 2 and 3\n" +
	"`deny 1 2 3 | deny 1-3`: deny requests 1, 2 and 3\n" +
	"`ignore 1 2 3 | ignore 1-3`: ignore requests 1, 2 and 3\n" +
	"`register-approver` | `unregister-approver`: join or leave the approvers"

// Command outcomes reported to metrics
const (
	OutcomeOK        = "ok"
	OutcomeForbidden = "forbidden"
	OutcomeInvalid   = "invalid"
	OutcomeError     = "error"
)

type handlerFunc func(ctx context.Context, userID, text string) error

// route is one row of the command table
type route struct {
	name    string
	matches func(text string) bool
	handle  handlerFunc
}

// Router evaluates a fixed, ordered command table. Registration commands are
// open to everyone and come before the approver gate.
type Router struct {
	lifecycle service.LifecycleService
	approvers service.ApproverService
	notifier  service.NotificationService
	gateway   port.ChatGateway
	metrics   port.MetricsRecorder
	logger    service.Logger

	public  []route
	private []route
}

// NewRouter creates a command router
func NewRouter(
	lifecycle service.LifecycleService,
	approvers service.ApproverService,
	notifier service.NotificationService,
	gateway port.ChatGateway,
	metrics port.MetricsRecorder,
	logger service.Logger,
) *Router {
	if metrics == nil {
		metrics = port.NopMetrics{}
	}
	r := &Router{
		lifecycle: lifecycle,
		approvers: approvers,
		notifier:  notifier,
		gateway:   gateway,
		metrics:   metrics,
		logger:    logger,
	}

	// "unregister-approver" contains "register-approver", so it goes first.
	r.public = []route{
		{name: "unregister-approver", matches: contains("unregister-approver"), handle: r.unregister},
		{name: "register-approver", matches: contains("register-approver"), handle: r.register},
	}
	r.private = []route{
		{name: "help", matches: contains("help"), handle: r.help},
		{name: "unapproved", matches: contains("unapproved"), handle: r.unapproved},
		{name: "approve", matches: prefix("approve"), handle: r.batch(entity.DecisionApprove)},
		{name: "deny", matches: prefix("deny"), handle: r.batch(entity.DecisionDeny)},
		{name: "ignore", matches: prefix("ignore"), handle: r.batch(entity.DecisionIgnore)},
	}
	return r
}

func contains(keyword string) func(string) bool {
	return func(text string) bool { return strings.Contains(text, keyword) }
}

func prefix(keyword string) func(string) bool {
	return func(text string) bool { return strings.HasPrefix(text, keyword) }
}

// Normalize applies NFKC and lower-cases the command text
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(text)))
}

// HandleEvent accepts plain user messages sent to the bot in a direct chat
func (r *Router) HandleEvent(ctx context.Context, evt *event.Event) error {
	if evt.Type != event.TypeMessagePosted || !evt.Direct {
		return nil
	}
	if evt.AuthorID == "" || evt.Subtype != "" {
		return nil
	}
	return r.Handle(ctx, evt.AuthorID, evt.Text)
}

// Handle runs the command in text on behalf of userID
func (r *Router) Handle(ctx context.Context, userID, text string) error {
	text = Normalize(text)
	if text == "" {
		return nil
	}

	if rt, ok := match(r.public, text); ok {
		return r.run(ctx, rt, userID, text)
	}

	ok, err := r.approvers.IsApprover(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		r.metrics.CommandHandled("gate", OutcomeForbidden)
		return r.gateway.SendDirectMessage(ctx, userID, "Only approvers can use this command.")
	}

	if rt, ok := match(r.private, text); ok {
		return r.run(ctx, rt, userID, text)
	}

	r.metrics.CommandHandled("unknown", OutcomeInvalid)
	return r.gateway.SendDirectMessage(ctx, userID, fmt.Sprintf("Unknown command: %s", text))
}

func match(routes []route, text string) (route, bool) {
	for _, rt := range routes {
		if rt.matches(text) {
			return rt, true
		}
	}
	return route{}, false
}

func (r *Router) run(ctx context.Context, rt route, userID, text string) error {
	err := rt.handle(ctx, userID, text)

	var verr *entity.ValidationError
	switch {
	case err == nil:
		r.metrics.CommandHandled(rt.name, OutcomeOK)
	case errors.As(err, &verr):
		r.metrics.CommandHandled(rt.name, OutcomeInvalid)
	default:
		r.metrics.CommandHandled(rt.name, OutcomeError)
	}

	if err != nil {
		r.logger.Error("Command failed", "command", rt.name, "user_id", userID, "error", err)
	}
	return err
}

func (r *Router) register(ctx context.Context, userID, _ string) error {
	added, err := r.approvers.Register(ctx, userID)
	if err != nil {
		return err
	}
	if !added {
		return r.gateway.SendDirectMessage(ctx, userID, "You are already registered as an approver.")
	}
	return r.gateway.SendDirectMessage(ctx, userID, "You are now registered as an approver.")
}

func (r *Router) unregister(ctx context.Context, userID, _ string) error {
	removed, err := r.approvers.Unregister(ctx, userID)
	if err != nil {
		return err
	}
	if !removed {
		return r.gateway.SendDirectMessage(ctx, userID, "You are not registered as an approver.")
	}
	return r.gateway.SendDirectMessage(ctx, userID, "You are no longer registered as an approver.")
}

func (r *Router) help(ctx context.Context, userID, _ string) error {
	return r.gateway.SendDirectMessage(ctx, userID, Usage)
}

func (r *Router) unapproved(ctx context.Context, userID, _ string) error {
	_, err := r.notifier.NotifyPending(ctx, userID, true)
	return err
}
