package workflow

// StateMachine tracks the state of one purchase request and validates transitions
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire returns true if the trigger is permitted in the current state
	CanFire(trigger Trigger) bool

	// Fire attempts to execute the trigger, transitioning to the new state if allowed
	Fire(trigger Trigger) error

	// PermittedTriggers returns all triggers that can be fired in the current state
	PermittedTriggers() []Trigger
}

var requestLifecycle = func() StateMachineBuilder {
	b := NewBuilder()
	b.Configure(StateNew).
		Permit(TriggerApprove, StateApproved).
		Permit(TriggerDeny, StateDenied).
		Permit(TriggerIgnore, StateDenied)
	b.Configure(StateApproved)
	b.Configure(StateDenied)
	return b
}()

// NewRequestMachine returns a state machine for a purchase request currently in state.
func NewRequestMachine(state State) (StateMachine, error) {
	if !state.IsValid() {
		return nil, ErrInvalidState
	}
	return requestLifecycle.Build(state), nil
}
