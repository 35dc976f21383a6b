package service

import (
	"context"
	"sort"
	"sync"

	"github.com/garyjia/purchase-bot/internal/application/port"
	"github.com/garyjia/purchase-bot/internal/domain/entity"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{}) {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

// memRepo is an in-memory port.RequestRepository and port.ApproverRoster
type memRepo struct {
	mu        sync.Mutex
	counter   int64
	bodies    map[int64]entity.PurchaseRequest
	status    map[int64]entity.Status
	approver  map[int64]string
	approvers map[string]bool

	transitionErr error
}

func newMemRepo() *memRepo {
	return &memRepo{
		bodies:    make(map[int64]entity.PurchaseRequest),
		status:    make(map[int64]entity.Status),
		approver:  make(map[int64]string),
		approvers: make(map[string]bool),
	}
}

func (m *memRepo) NextID(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return m.counter, nil
}

func (m *memRepo) Put(ctx context.Context, req *entity.PurchaseRequest, isNew bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	body := *req
	body.Status = ""
	body.ApproverName = ""
	m.bodies[req.ID] = body
	if isNew {
		m.status[req.ID] = entity.StatusNew
	}
	return nil
}

func (m *memRepo) load(id int64) *entity.PurchaseRequest {
	req := m.bodies[id]
	req.Status = m.status[id]
	if req.Status.IsResolved() {
		req.ApproverName = m.approver[id]
	}
	return &req
}

func (m *memRepo) Get(ctx context.Context, id int64) (*entity.PurchaseRequest, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bodies[id]; !ok {
		return nil, false, entity.ErrNotFound
	}
	req := m.load(id)
	return req, req.Status == entity.StatusNew, nil
}

func (m *memRepo) ListByIndex(ctx context.Context, status entity.Status) ([]*entity.PurchaseRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.PurchaseRequest
	for id, s := range m.status {
		if s == status {
			out = append(out, m.load(id))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRepo) ListAll(ctx context.Context) ([]*entity.PurchaseRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.PurchaseRequest
	for id := range m.status {
		out = append(out, m.load(id))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRepo) UpdateByMatch(ctx context.Context, authorName, previousText, newText string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, body := range m.bodies {
		if m.status[id] == entity.StatusNew && body.Matches(authorName, previousText) {
			body.Text = newText
			m.bodies[id] = body
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) DeleteByMatch(ctx context.Context, authorName, previousText string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, body := range m.bodies {
		if m.status[id] == entity.StatusNew && body.Matches(authorName, previousText) {
			delete(m.bodies, id)
			delete(m.status, id)
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) Transition(ctx context.Context, id int64, status entity.Status, approverName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.transitionErr != nil {
		return m.transitionErr
	}
	if m.status[id] != entity.StatusNew {
		return entity.ErrAlreadyResolved
	}
	m.status[id] = status
	m.approver[id] = approverName
	return nil
}

func (m *memRepo) Ping(ctx context.Context) error { return nil }

func (m *memRepo) ListApprovers(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for id := range m.approvers {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (m *memRepo) IsApprover(ctx context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.approvers[userID], nil
}

func (m *memRepo) AddApprover(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.approvers[userID] = true
	return nil
}

func (m *memRepo) RemoveApprover(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.approvers, userID)
	return nil
}

type sentMessage struct {
	userID string
	text   string
}

type mockGateway struct {
	sendDirectMessageFunc func(ctx context.Context, userID, text string) error
	direct                []sentMessage
}

func (m *mockGateway) SendDirectMessage(ctx context.Context, userID, text string) error {
	m.direct = append(m.direct, sentMessage{userID: userID, text: text})
	if m.sendDirectMessageFunc != nil {
		return m.sendDirectMessageFunc(ctx, userID, text)
	}
	return nil
}

func (m *mockGateway) PostChannelMessage(ctx context.Context, text string, attachment *port.Attachment) error {
	return nil
}

func (m *mockGateway) AddReaction(ctx context.Context, ref port.MessageRef) error {
	return nil
}

func (m *mockGateway) ResolveDisplayName(ctx context.Context, userID string) (string, error) {
	return userID, nil
}

type recordingMetrics struct {
	port.NopMetrics
	submitted     int
	resolved      []entity.Decision
	notifications []string
	pending       int
}

func (r *recordingMetrics) RequestSubmitted() { r.submitted++ }
func (r *recordingMetrics) RequestResolved(d entity.Decision) { r.resolved = append(r.resolved, d) }
func (r *recordingMetrics) NotificationSent(kind string) { r.notifications = append(r.notifications, kind) }
func (r *recordingMetrics) SetPending(n int) { r.pending = n }
