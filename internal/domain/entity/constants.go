package entity

import "fmt"

// Status is the lifecycle bucket a purchase request belongs to
type Status string

const (
	StatusNew      Status = "new"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
)

// Statuses lists every bucket in display order
var Statuses = []Status{StatusNew, StatusApproved, StatusDenied}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is one of the lifecycle buckets
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusApproved, StatusDenied:
		return true
	default:
		return false
	}
}

// IsResolved returns true once a decision has been recorded
func (s Status) IsResolved() bool {
	return s == StatusApproved || s == StatusDenied
}

// ParseStatus converts an index name into a Status
func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown request status %q", v)
	}
	return s, nil
}

// Decision is the action an approver takes on a pending request
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionDeny    Decision = "deny"
	// DecisionIgnore is recorded as a denial.
	DecisionIgnore Decision = "ignore"
)

// String returns the string representation of the decision
func (d Decision) String() string {
	return string(d)
}

// TargetStatus maps a decision to the bucket it moves a request into
func (d Decision) TargetStatus() (Status, error) {
	switch d {
	case DecisionApprove:
		return StatusApproved, nil
	case DecisionDeny, DecisionIgnore:
		return StatusDenied, nil
	default:
		return "", fmt.Errorf("unknown decision %q", d)
	}
}
