package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/purchase-bot/internal/domain/entity"
)

func newTestLifecycle() (LifecycleService, *memRepo, *recordingMetrics) {
	repo := newMemRepo()
	metrics := &recordingMetrics{}
	return NewLifecycleService(repo, metrics, nopLogger{}), repo, metrics
}

func TestLifecycleService_Submit(t *testing.T) {
	svc, repo, metrics := newTestLifecycle()
	ctx := context.Background()

	req, err := svc.Submit(ctx, "ou_alice", "alice", "a keyboard")
	require.NoError(t, err)
	assert.Equal(t, int64(1), req.ID)
	assert.Equal(t, entity.StatusNew, req.Status)

	got, isNew, err := repo.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Empty(t, got.ApproverName)
	assert.Equal(t, 1, metrics.submitted)
}

func TestLifecycleService_Resolve(t *testing.T) {
	tests := []struct {
		name       string
		decision   entity.Decision
		wantStatus entity.Status
	}{
		{name: "approve", decision: entity.DecisionApprove, wantStatus: entity.StatusApproved},
		{name: "deny", decision: entity.DecisionDeny, wantStatus: entity.StatusDenied},
		{name: "ignore maps to denied", decision: entity.DecisionIgnore, wantStatus: entity.StatusDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, metrics := newTestLifecycle()
			ctx := context.Background()

			submitted, err := svc.Submit(ctx, "ou_alice", "alice", "monitor")
			require.NoError(t, err)

			req, wasNew, err := svc.Resolve(ctx, submitted.ID, tt.decision, "carol")
			require.NoError(t, err)
			assert.True(t, wasNew)
			assert.Equal(t, "monitor", req.Text)
			assert.Equal(t, entity.StatusNew, req.Status)

			stored, isNew, err := repo.Get(ctx, submitted.ID)
			require.NoError(t, err)
			assert.False(t, isNew)
			assert.Equal(t, tt.wantStatus, stored.Status)
			assert.Equal(t, "carol", stored.ApproverName)
			assert.Equal(t, []entity.Decision{tt.decision}, metrics.resolved)
		})
	}
}

func TestLifecycleService_ResolveTwice(t *testing.T) {
	svc, repo, _ := newTestLifecycle()
	ctx := context.Background()

	submitted, err := svc.Submit(ctx, "ou_alice", "alice", "chair")
	require.NoError(t, err)

	_, _, err = svc.Resolve(ctx, submitted.ID, entity.DecisionApprove, "carol")
	require.NoError(t, err)

	req, wasNew, err := svc.Resolve(ctx, submitted.ID, entity.DecisionDeny, "dave")
	assert.ErrorIs(t, err, entity.ErrAlreadyResolved)
	assert.False(t, wasNew)
	require.NotNil(t, req)

	stored, _, err := repo.Get(ctx, submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, stored.Status)
	assert.Equal(t, "carol", stored.ApproverName)
}

func TestLifecycleService_ResolveNotFound(t *testing.T) {
	svc, repo, _ := newTestLifecycle()

	_, wasNew, err := svc.Resolve(context.Background(), 7, entity.DecisionApprove, "carol")
	assert.ErrorIs(t, err, entity.ErrNotFound)
	assert.False(t, wasNew)
	assert.Empty(t, repo.status)
}

func TestLifecycleService_ResolveLosesRace(t *testing.T) {
	svc, repo, metrics := newTestLifecycle()
	ctx := context.Background()

	submitted, err := svc.Submit(ctx, "ou_alice", "alice", "chair")
	require.NoError(t, err)
	repo.transitionErr = entity.ErrAlreadyResolved

	_, wasNew, err := svc.Resolve(ctx, submitted.ID, entity.DecisionApprove, "carol")
	assert.ErrorIs(t, err, entity.ErrAlreadyResolved)
	assert.False(t, wasNew)
	assert.Empty(t, metrics.resolved)
}

func TestLifecycleService_ResolveStoreFailure(t *testing.T) {
	svc, repo, _ := newTestLifecycle()
	ctx := context.Background()

	submitted, err := svc.Submit(ctx, "ou_alice", "alice", "chair")
	require.NoError(t, err)
	repo.transitionErr = errors.Join(entity.ErrStoreUnavailable, errors.New("timeout"))

	_, _, err = svc.Resolve(ctx, submitted.ID, entity.DecisionApprove, "carol")
	assert.True(t, entity.IsFatal(err))
}

func TestLifecycleService_ResolveUnknownDecision(t *testing.T) {
	svc, _, _ := newTestLifecycle()

	_, _, err := svc.Resolve(context.Background(), 1, entity.Decision("escalate"), "carol")
	assert.Error(t, err)
}

func TestLifecycleService_EditAndDelete(t *testing.T) {
	svc, repo, _ := newTestLifecycle()
	ctx := context.Background()

	submitted, err := svc.Submit(ctx, "ou_alice", "alice", "mouse")
	require.NoError(t, err)

	ok, err := svc.Edit(ctx, "alice", "mouse", "trackball")
	require.NoError(t, err)
	assert.True(t, ok)

	stored, isNew, err := repo.Get(ctx, submitted.ID)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, submitted.ID, stored.ID)
	assert.Equal(t, "trackball", stored.Text)

	ok, err = svc.Edit(ctx, "bob", "trackball", "x")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Delete(ctx, "alice", "mouse")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Delete(ctx, "alice", "trackball")
	require.NoError(t, err)
	assert.True(t, ok)

	count, err := svc.PendingCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLifecycleService_PendingAndList(t *testing.T) {
	svc, _, metrics := newTestLifecycle()
	ctx := context.Background()

	for _, text := range []string{"a", "b", "c"} {
		_, err := svc.Submit(ctx, "ou_alice", "alice", text)
		require.NoError(t, err)
	}
	_, _, err := svc.Resolve(ctx, 2, entity.DecisionDeny, "carol")
	require.NoError(t, err)

	pending, err := svc.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, int64(1), pending[0].ID)
	assert.Equal(t, int64(3), pending[1].ID)
	assert.Equal(t, 2, metrics.pending)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	denied, err := svc.List(ctx, entity.StatusDenied)
	require.NoError(t, err)
	require.Len(t, denied, 1)
	assert.Equal(t, "carol", denied[0].ApproverName)

	got, err := svc.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDenied, got.Status)
}
