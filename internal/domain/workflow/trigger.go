package workflow

import "github.com/garyjia/purchase-bot/internal/domain/entity"

// Trigger represents an approver action that causes a state transition
type Trigger string

const (
	TriggerApprove Trigger = "APPROVE"
	TriggerDeny    Trigger = "DENY"
	TriggerIgnore  Trigger = "IGNORE"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}

// TriggerFor maps an approver decision to its trigger
func TriggerFor(d entity.Decision) (Trigger, error) {
	switch d {
	case entity.DecisionApprove:
		return TriggerApprove, nil
	case entity.DecisionDeny:
		return TriggerDeny, nil
	case entity.DecisionIgnore:
		return TriggerIgnore, nil
	default:
		return "", ErrUnknownTrigger
	}
}
