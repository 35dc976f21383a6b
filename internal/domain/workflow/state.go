package workflow

import "github.com/garyjia/purchase-bot/internal/domain/entity"

// State represents a purchase request state in the approval lifecycle
type State = entity.Status

const (
	StateNew      = entity.StatusNew
	StateApproved = entity.StatusApproved
	StateDenied   = entity.StatusDenied
)

var terminalStates = map[State]bool{
	StateApproved: true,
	StateDenied:   true,
}

// IsTerminal returns true if no further transitions are allowed from s
func IsTerminal(s State) bool {
	return terminalStates[s]
}
