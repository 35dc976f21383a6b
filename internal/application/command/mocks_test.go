package command

import (
	"context"

	"github.com/garyjia/purchase-bot/internal/application/port"
	"github.com/garyjia/purchase-bot/internal/application/service"
	"github.com/garyjia/purchase-bot/internal/domain/entity"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{}) {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockLifecycle struct {
	service.LifecycleService
	resolveFunc func(ctx context.Context, id int64, decision entity.Decision, approverName string) (*entity.PurchaseRequest, bool, error)
	resolved    []int64
}

func (m *mockLifecycle) Resolve(ctx context.Context, id int64, decision entity.Decision, approverName string) (*entity.PurchaseRequest, bool, error) {
	m.resolved = append(m.resolved, id)
	if m.resolveFunc != nil {
		return m.resolveFunc(ctx, id, decision, approverName)
	}
	return entity.NewPurchaseRequest(id, "ou_alice", "alice", "item"), true, nil
}

type mockApprovers struct {
	members map[string]bool
	err     error
}

func (m *mockApprovers) Register(ctx context.Context, userID string) (bool, error) {
	if m.members[userID] {
		return false, nil
	}
	m.members[userID] = true
	return true, nil
}

func (m *mockApprovers) Unregister(ctx context.Context, userID string) (bool, error) {
	if !m.members[userID] {
		return false, nil
	}
	delete(m.members, userID)
	return true, nil
}

func (m *mockApprovers) IsApprover(ctx context.Context, userID string) (bool, error) {
	return m.members[userID], m.err
}

func (m *mockApprovers) List(ctx context.Context) ([]string, error) {
	var out []string
	for id := range m.members {
		out = append(out, id)
	}
	return out, nil
}

type notifyCall struct {
	recipient string
	force     bool
}

type mockNotifier struct {
	calls []notifyCall
}

func (m *mockNotifier) NotifyPending(ctx context.Context, recipient string, force bool) (bool, error) {
	m.calls = append(m.calls, notifyCall{recipient: recipient, force: force})
	return true, nil
}

type channelPost struct {
	text       string
	attachment *port.Attachment
}

type mockGateway struct {
	direct      []string
	posts       []channelPost
	displayName string
	sendErr     error
	postFunc    func(text string) error
}

func (m *mockGateway) SendDirectMessage(ctx context.Context, userID, text string) error {
	m.direct = append(m.direct, text)
	return m.sendErr
}

func (m *mockGateway) PostChannelMessage(ctx context.Context, text string, attachment *port.Attachment) error {
	m.posts = append(m.posts, channelPost{text: text, attachment: attachment})
	if m.postFunc != nil {
		return m.postFunc(text)
	}
	return nil
}

func (m *mockGateway) AddReaction(ctx context.Context, ref port.MessageRef) error {
	return nil
}

func (m *mockGateway) ResolveDisplayName(ctx context.Context, userID string) (string, error) {
	if m.displayName != "" {
		return m.displayName, nil
	}
	return userID, nil
}

type recordingMetrics struct {
	port.NopMetrics
	commands []string
}

func (r *recordingMetrics) CommandHandled(command, outcome string) {
	r.commands = append(r.commands, command+":"+outcome)
}
