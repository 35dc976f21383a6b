package port

import (
	"context"

	"github.com/garyjia/purchase-bot/internal/domain/entity"
)

// RequestRepository persists purchase requests across the three lifecycle indexes
type RequestRepository interface {
	NextID(ctx context.Context) (int64, error)
	// Put overwrites the body and, if isNew, adds the request to the new index
	Put(ctx context.Context, req *entity.PurchaseRequest, isNew bool) error
	// Get returns entity.ErrNotFound when no body exists
	Get(ctx context.Context, id int64) (req *entity.PurchaseRequest, isNew bool, err error)
	ListByIndex(ctx context.Context, status entity.Status) ([]*entity.PurchaseRequest, error)
	ListAll(ctx context.Context) ([]*entity.PurchaseRequest, error)
	UpdateByMatch(ctx context.Context, authorName, previousText, newText string) (bool, error)
	DeleteByMatch(ctx context.Context, authorName, previousText string) (bool, error)
	// Transition returns entity.ErrAlreadyResolved when the request is no longer new
	Transition(ctx context.Context, id int64, status entity.Status, approverName string) error
	Ping(ctx context.Context) error
}

// ApproverRoster is the set of users allowed to run approver commands
type ApproverRoster interface {
	ListApprovers(ctx context.Context) ([]string, error)
	IsApprover(ctx context.Context, userID string) (bool, error)
	AddApprover(ctx context.Context, userID string) error
	RemoveApprover(ctx context.Context, userID string) error
}

// MessageJournal keeps the last known content of purchase channel messages
type MessageJournal interface {
	Record(ctx context.Context, snap *entity.MessageSnapshot) error
	Lookup(ctx context.Context, messageID string) (*entity.MessageSnapshot, error)
	Forget(ctx context.Context, messageID string) error
}
