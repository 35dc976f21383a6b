package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/garyjia/purchase-bot/internal/application/port"
	"github.com/garyjia/purchase-bot/internal/domain/entity"
	"github.com/garyjia/purchase-bot/internal/domain/workflow"
)

// LifecycleService applies the purchase request lifecycle rules on top of the request store
type LifecycleService interface {
	// Submit allocates an ID and stores a new request
	Submit(ctx context.Context, requesterID, requesterName, text string) (*entity.PurchaseRequest, error)

	// Resolve moves a new request to the bucket implied by decision and returns
	// the request as it was before the transition. It fails with
	// entity.ErrNotFound or entity.ErrAlreadyResolved; wasNew is false in both cases.
	Resolve(ctx context.Context, id int64, decision entity.Decision, approverName string) (req *entity.PurchaseRequest, wasNew bool, err error)

	Pending(ctx context.Context) ([]*entity.PurchaseRequest, error)
	PendingCount(ctx context.Context) (int, error)

	// Edit and Delete match a new request by author display name and previous text
	Edit(ctx context.Context, authorName, previousText, newText string) (bool, error)
	Delete(ctx context.Context, authorName, previousText string) (bool, error)

	Get(ctx context.Context, id int64) (*entity.PurchaseRequest, error)
	// List returns one bucket, or every request when status is empty
	List(ctx context.Context, status entity.Status) ([]*entity.PurchaseRequest, error)
}

type lifecycleServiceImpl struct {
	repo    port.RequestRepository
	metrics port.MetricsRecorder
	logger  Logger
}

// NewLifecycleService creates a new LifecycleService
func NewLifecycleService(repo port.RequestRepository, metrics port.MetricsRecorder, logger Logger) LifecycleService {
	if metrics == nil {
		metrics = port.NopMetrics{}
	}
	return &lifecycleServiceImpl{
		repo:    repo,
		metrics: metrics,
		logger:  logger,
	}
}

func (s *lifecycleServiceImpl) Submit(ctx context.Context, requesterID, requesterName, text string) (*entity.PurchaseRequest, error) {
	id, err := s.repo.NextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocate request id: %w", err)
	}

	req := entity.NewPurchaseRequest(id, requesterID, requesterName, text)
	if err := s.repo.Put(ctx, req, true); err != nil {
		return nil, fmt.Errorf("store request %d: %w", id, err)
	}

	s.metrics.RequestSubmitted()
	s.logger.Info("Purchase request submitted",
		"request_id", id,
		"requester_id", requesterID,
		"requester_name", requesterName,
	)
	return req, nil
}

func (s *lifecycleServiceImpl) Resolve(ctx context.Context, id int64, decision entity.Decision, approverName string) (*entity.PurchaseRequest, bool, error) {
	trigger, err := workflow.TriggerFor(decision)
	if err != nil {
		return nil, false, fmt.Errorf("decision %q: %w", decision, err)
	}

	req, isNew, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if !isNew {
		return req, false, entity.ErrAlreadyResolved
	}

	machine, err := workflow.NewRequestMachine(req.Status)
	if err != nil {
		return nil, false, fmt.Errorf("request %d: %w", id, err)
	}
	if err := machine.Fire(trigger); err != nil {
		if errors.Is(err, workflow.ErrInvalidTransition) {
			return req, false, entity.ErrAlreadyResolved
		}
		return nil, false, err
	}

	if err := s.repo.Transition(ctx, id, machine.State(), approverName); err != nil {
		// A concurrent resolver won the move.
		if errors.Is(err, entity.ErrAlreadyResolved) {
			return req, false, err
		}
		return nil, false, fmt.Errorf("transition request %d: %w", id, err)
	}

	s.metrics.RequestResolved(decision)
	s.logger.Info("Purchase request resolved",
		"request_id", id,
		"decision", decision,
		"status", machine.State(),
		"approver", approverName,
	)
	return req, true, nil
}

func (s *lifecycleServiceImpl) Pending(ctx context.Context) ([]*entity.PurchaseRequest, error) {
	requests, err := s.repo.ListByIndex(ctx, entity.StatusNew)
	if err != nil {
		return nil, err
	}
	s.metrics.SetPending(len(requests))
	return requests, nil
}

func (s *lifecycleServiceImpl) PendingCount(ctx context.Context) (int, error) {
	requests, err := s.Pending(ctx)
	if err != nil {
		return 0, err
	}
	return len(requests), nil
}

func (s *lifecycleServiceImpl) Edit(ctx context.Context, authorName, previousText, newText string) (bool, error) {
	ok, err := s.repo.UpdateByMatch(ctx, authorName, previousText, newText)
	if err != nil {
		return false, fmt.Errorf("update request: %w", err)
	}
	if ok {
		s.logger.Info("Purchase request edited", "requester_name", authorName)
	}
	return ok, nil
}

func (s *lifecycleServiceImpl) Delete(ctx context.Context, authorName, previousText string) (bool, error) {
	ok, err := s.repo.DeleteByMatch(ctx, authorName, previousText)
	if err != nil {
		return false, fmt.Errorf("delete request: %w", err)
	}
	if ok {
		s.logger.Info("Purchase request deleted", "requester_name", authorName)
	}
	return ok, nil
}

func (s *lifecycleServiceImpl) Get(ctx context.Context, id int64) (*entity.PurchaseRequest, error) {
	req, _, err := s.repo.Get(ctx, id)
	return req, err
}

func (s *lifecycleServiceImpl) List(ctx context.Context, status entity.Status) ([]*entity.PurchaseRequest, error) {
	if status == "" {
		return s.repo.ListAll(ctx)
	}
	return s.repo.ListByIndex(ctx, status)
}
