package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecision_TargetStatus(t *testing.T) {
	tests := []struct {
		decision Decision
		want     Status
	}{
		{DecisionApprove, StatusApproved},
		{DecisionDeny, StatusDenied},
		{DecisionIgnore, StatusDenied},
	}
	for _, tt := range tests {
		got, err := tt.decision.TargetStatus()
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.decision.String())
	}

	_, err := Decision("postpone").TargetStatus()
	assert.Error(t, err)
}

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses {
		got, err := ParseStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseStatus("archived")
	assert.Error(t, err)
	assert.False(t, StatusNew.IsResolved())
	assert.True(t, StatusDenied.IsResolved())
}

func TestPurchaseRequest_Matches(t *testing.T) {
	req := NewPurchaseRequest(1, "ou_alice", "Alice", "USB cable x2")
	assert.True(t, req.IsNew())
	assert.True(t, req.Matches("Alice", "USB cable x2"))
	assert.False(t, req.Matches("Alice", "USB cable x3"))
	assert.False(t, req.Matches("Bob", "USB cable x2"))
}

func TestBody_RoundTripDropsStatus(t *testing.T) {
	req := NewPurchaseRequest(7, "ou_alice", "Alice", "Monitor arm")
	req.Status = StatusApproved
	req.ApproverName = "Carol"

	body, err := req.MarshalBody()
	require.NoError(t, err)
	assert.NotContains(t, body, "approved")
	assert.NotContains(t, body, "Carol")

	got, err := UnmarshalBody(body, StatusApproved, "Carol")
	require.NoError(t, err)
	assert.Equal(t, req, got)
}

func TestUnmarshalBody_Legacy(t *testing.T) {
	got, err := UnmarshalBody(`{"id":3,"user_id":"U123","username":"alice","text":"pens"}`, StatusNew, "ignored")
	require.NoError(t, err)
	assert.Equal(t, "U123", got.RequesterID)
	assert.Equal(t, "alice", got.RequesterName)
	assert.Empty(t, got.ApproverName)

	_, err = UnmarshalBody("{", StatusNew, "")
	assert.Error(t, err)
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(fmt.Errorf("get: %w", ErrStoreUnavailable)))
	assert.True(t, IsFatal(fmt.Errorf("send: %w", ErrGatewayUnavailable)))
	assert.False(t, IsFatal(ErrNotFound))
	assert.False(t, IsFatal(NewValidationError("bad id %d", 1)))
	assert.False(t, IsFatal(errors.New("boom")))

	var verr *ValidationError
	require.True(t, errors.As(fmt.Errorf("wrap: %w", NewValidationError("bad id %d", 1)), &verr))
	assert.Equal(t, "bad id 1", verr.Error())
}
