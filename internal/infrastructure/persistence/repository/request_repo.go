package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/purchase-bot/internal/application/port"
	"github.com/garyjia/purchase-bot/internal/domain/entity"
)

// DefaultKeyPrefix namespaces every key written by the request repository
const DefaultKeyPrefix = "purchase"

// RequestRepository implements port.RequestRepository and port.ApproverRoster
// on top of a key-value store.
//
// Layout:
//
//	{prefix}:request:id             counter
//	{prefix}:request:{id}           JSON body
//	{prefix}:request:{id}:approver  approver display name
//	{prefix}:request:{status}       index set of body keys
//	{prefix}:admin                  approver open IDs
type RequestRepository struct {
	kv     port.KeyValueStore
	prefix string
	logger *zap.Logger
}

var (
	_ port.RequestRepository = (*RequestRepository)(nil)
	_ port.ApproverRoster    = (*RequestRepository)(nil)
)

// NewRequestRepository creates the repository and fails fast if the store is unreachable
func NewRequestRepository(ctx context.Context, kv port.KeyValueStore, prefix string, logger *zap.Logger) (*RequestRepository, error) {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	r := &RequestRepository{kv: kv, prefix: prefix, logger: logger}
	if err := r.Ping(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RequestRepository) idKey() string {
	return r.prefix + ":request:id"
}

func (r *RequestRepository) itemKey(id int64) string {
	return fmt.Sprintf("%s:request:%d", r.prefix, id)
}

func (r *RequestRepository) approverKey(id int64) string {
	return fmt.Sprintf("%s:request:%d:approver", r.prefix, id)
}

func (r *RequestRepository) indexKey(status entity.Status) string {
	return r.prefix + ":request:" + status.String()
}

func (r *RequestRepository) adminKey() string {
	return r.prefix + ":admin"
}

func idFromKey(key string) (int64, error) {
	return strconv.ParseInt(key[strings.LastIndex(key, ":")+1:], 10, 64)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, entity.ErrStoreUnavailable, err)
}

// Ping probes the backing store
func (r *RequestRepository) Ping(ctx context.Context) error {
	if err := r.kv.Ping(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// NextID allocates a request ID from the atomic counter
func (r *RequestRepository) NextID(ctx context.Context) (int64, error) {
	id, err := r.kv.Incr(ctx, r.idKey())
	if err != nil {
		return 0, unavailable("next id", err)
	}
	return id, nil
}

// Put stores the request body and indexes it as new when isNew is set
func (r *RequestRepository) Put(ctx context.Context, req *entity.PurchaseRequest, isNew bool) error {
	body, err := req.MarshalBody()
	if err != nil {
		return err
	}

	key := r.itemKey(req.ID)
	if err := r.kv.Set(ctx, key, body); err != nil {
		return unavailable("put request", err)
	}
	if isNew {
		if err := r.kv.SAdd(ctx, r.indexKey(entity.StatusNew), key); err != nil {
			return unavailable("index request", err)
		}
	}
	return nil
}

// Get loads one request together with its current bucket
func (r *RequestRepository) Get(ctx context.Context, id int64) (*entity.PurchaseRequest, bool, error) {
	key := r.itemKey(id)
	body, found, err := r.kv.Get(ctx, key)
	if err != nil {
		return nil, false, unavailable("get request", err)
	}
	if !found {
		return nil, false, entity.ErrNotFound
	}

	status, err := r.statusOf(ctx, key)
	if err != nil {
		return nil, false, err
	}

	approver := ""
	if status.IsResolved() {
		if approver, err = r.approver(ctx, id); err != nil {
			return nil, false, err
		}
	}

	req, err := entity.UnmarshalBody(body, status, approver)
	if err != nil {
		return nil, false, err
	}
	return req, status == entity.StatusNew, nil
}

// statusOf finds the index holding key. A body outside every index is treated as missing.
func (r *RequestRepository) statusOf(ctx context.Context, key string) (entity.Status, error) {
	for _, status := range entity.Statuses {
		ok, err := r.kv.SIsMember(ctx, r.indexKey(status), key)
		if err != nil {
			return "", unavailable("check index", err)
		}
		if ok {
			return status, nil
		}
	}
	r.logger.Warn("Request body is not indexed", zap.String("key", key))
	return "", entity.ErrNotFound
}

func (r *RequestRepository) approver(ctx context.Context, id int64) (string, error) {
	name, _, err := r.kv.Get(ctx, r.approverKey(id))
	if err != nil {
		return "", unavailable("get approver", err)
	}
	return name, nil
}

// ListByIndex returns the requests in one bucket, ascending by ID
func (r *RequestRepository) ListByIndex(ctx context.Context, status entity.Status) ([]*entity.PurchaseRequest, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("unknown status %q", status)
	}

	keys, err := r.kv.SMembers(ctx, r.indexKey(status))
	if err != nil {
		return nil, unavailable("list index", err)
	}

	requests := make([]*entity.PurchaseRequest, 0, len(keys))
	for _, key := range keys {
		body, found, err := r.kv.Get(ctx, key)
		if err != nil {
			return nil, unavailable("get request", err)
		}
		if !found {
			r.logger.Warn("Indexed request has no body",
				zap.String("key", key),
				zap.String("status", status.String()))
			continue
		}

		approver := ""
		if status.IsResolved() {
			id, err := idFromKey(key)
			if err != nil {
				return nil, fmt.Errorf("parse request key %q: %w", key, err)
			}
			if approver, err = r.approver(ctx, id); err != nil {
				return nil, err
			}
		}

		req, err := entity.UnmarshalBody(body, status, approver)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	sortByID(requests)
	return requests, nil
}

// ListAll returns the requests of every bucket, ascending by ID
func (r *RequestRepository) ListAll(ctx context.Context) ([]*entity.PurchaseRequest, error) {
	var all []*entity.PurchaseRequest
	for _, status := range entity.Statuses {
		requests, err := r.ListByIndex(ctx, status)
		if err != nil {
			return nil, err
		}
		all = append(all, requests...)
	}
	sortByID(all)
	return all, nil
}

// findNew scans the new index for the first request written by author with text.
// Scan order follows the store's set iteration, so duplicates match arbitrarily.
func (r *RequestRepository) findNew(ctx context.Context, authorName, text string) (*entity.PurchaseRequest, error) {
	keys, err := r.kv.SMembers(ctx, r.indexKey(entity.StatusNew))
	if err != nil {
		return nil, unavailable("list index", err)
	}

	for _, key := range keys {
		body, found, err := r.kv.Get(ctx, key)
		if err != nil {
			return nil, unavailable("get request", err)
		}
		if !found {
			continue
		}
		req, err := entity.UnmarshalBody(body, entity.StatusNew, "")
		if err != nil {
			return nil, err
		}
		if req.Matches(authorName, text) {
			return req, nil
		}
	}
	return nil, nil
}

// UpdateByMatch replaces the text of the matching new request
func (r *RequestRepository) UpdateByMatch(ctx context.Context, authorName, previousText, newText string) (bool, error) {
	req, err := r.findNew(ctx, authorName, previousText)
	if err != nil || req == nil {
		return false, err
	}

	req.Text = newText
	if err := r.Put(ctx, req, false); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteByMatch removes the matching new request
func (r *RequestRepository) DeleteByMatch(ctx context.Context, authorName, previousText string) (bool, error) {
	req, err := r.findNew(ctx, authorName, previousText)
	if err != nil || req == nil {
		return false, err
	}

	// unindex first so a failed delete leaves an orphan body rather than a dangling index entry
	key := r.itemKey(req.ID)
	if err := r.kv.SRem(ctx, r.indexKey(entity.StatusNew), key); err != nil {
		return false, unavailable("unindex request", err)
	}
	if err := r.kv.Del(ctx, key); err != nil {
		return false, unavailable("delete request", err)
	}
	return true, nil
}

// Transition moves a new request into the approved or denied bucket and records the approver.
// The move is a single atomic set operation; the annotation follows it.
func (r *RequestRepository) Transition(ctx context.Context, id int64, status entity.Status, approverName string) error {
	if !status.IsResolved() {
		return fmt.Errorf("cannot transition request %d to %q", id, status)
	}

	key := r.itemKey(id)
	moved, err := r.kv.SMove(ctx, r.indexKey(entity.StatusNew), r.indexKey(status), key)
	if err != nil {
		return unavailable("move request", err)
	}
	if !moved {
		_, found, err := r.kv.Get(ctx, key)
		if err != nil {
			return unavailable("get request", err)
		}
		if !found {
			return entity.ErrNotFound
		}
		if _, err := r.statusOf(ctx, key); err != nil {
			return err
		}
		return entity.ErrAlreadyResolved
	}

	if err := r.kv.Set(ctx, r.approverKey(id), approverName); err != nil {
		return unavailable("set approver", err)
	}

	r.logger.Info("Request transitioned",
		zap.Int64("request_id", id),
		zap.String("status", status.String()),
		zap.String("approver", approverName))
	return nil
}

// ListApprovers returns the roster sorted by user ID
func (r *RequestRepository) ListApprovers(ctx context.Context) ([]string, error) {
	members, err := r.kv.SMembers(ctx, r.adminKey())
	if err != nil {
		return nil, unavailable("list approvers", err)
	}
	sort.Strings(members)
	return members, nil
}

func (r *RequestRepository) IsApprover(ctx context.Context, userID string) (bool, error) {
	ok, err := r.kv.SIsMember(ctx, r.adminKey(), userID)
	if err != nil {
		return false, unavailable("check approver", err)
	}
	return ok, nil
}

func (r *RequestRepository) AddApprover(ctx context.Context, userID string) error {
	if err := r.kv.SAdd(ctx, r.adminKey(), userID); err != nil {
		return unavailable("add approver", err)
	}
	return nil
}

func (r *RequestRepository) RemoveApprover(ctx context.Context, userID string) error {
	if err := r.kv.SRem(ctx, r.adminKey(), userID); err != nil {
		return unavailable("remove approver", err)
	}
	return nil
}

func sortByID(requests []*entity.PurchaseRequest) {
	sort.Slice(requests, func(i, j int) bool { return requests[i].ID < requests[j].ID })
}
