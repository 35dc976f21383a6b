package entity

import (
	"encoding/json"
	"fmt"
)

// PurchaseRequest represents a purchase request raised in the purchase channel
type PurchaseRequest struct {
	ID            int64  `json:"id"`
	RequesterID   string `json:"requesterId"`
	RequesterName string `json:"requesterName"`
	Text          string `json:"text"`
	Status        Status `json:"status"`
	// ApproverName is empty while the request is new
	ApproverName string `json:"approverName,omitempty"`
}

// NewPurchaseRequest creates a request in the new bucket
func NewPurchaseRequest(id int64, requesterID, requesterName, text string) *PurchaseRequest {
	return &PurchaseRequest{
		ID:            id,
		RequesterID:   requesterID,
		RequesterName: requesterName,
		Text:          text,
		Status:        StatusNew,
	}
}

// IsNew returns true while the request awaits a decision
func (r *PurchaseRequest) IsNew() bool {
	return r.Status == StatusNew
}

// Matches reports whether the request was written by author with the given text
func (r *PurchaseRequest) Matches(author, text string) bool {
	return r.RequesterName == author && r.Text == text
}

// storedRequest is the persisted body. Status and approver live in the indexes.
type storedRequest struct {
	ID            int64  `json:"id"`
	RequesterID   string `json:"requesterId"`
	RequesterName string `json:"requesterName"`
	Text          string `json:"text"`

	// keys written by older deployments
	LegacyUserID   string `json:"user_id,omitempty"`
	LegacyUsername string `json:"username,omitempty"`
}

// MarshalBody serializes the request body for storage
func (r *PurchaseRequest) MarshalBody() (string, error) {
	data, err := json.Marshal(storedRequest{
		ID:            r.ID,
		RequesterID:   r.RequesterID,
		RequesterName: r.RequesterName,
		Text:          r.Text,
	})
	if err != nil {
		return "", fmt.Errorf("marshal purchase request %d: %w", r.ID, err)
	}
	return string(data), nil
}

// UnmarshalBody decodes a stored request body. Status and approver are supplied by the caller.
func UnmarshalBody(body string, status Status, approver string) (*PurchaseRequest, error) {
	var s storedRequest
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		return nil, fmt.Errorf("unmarshal purchase request: %w", err)
	}

	req := &PurchaseRequest{
		ID:            s.ID,
		RequesterID:   s.RequesterID,
		RequesterName: s.RequesterName,
		Text:          s.Text,
		Status:        status,
	}
	if req.RequesterID == "" {
		req.RequesterID = s.LegacyUserID
	}
	if req.RequesterName == "" {
		req.RequesterName = s.LegacyUsername
	}
	if status.IsResolved() {
		req.ApproverName = approver
	}
	return req, nil
}
