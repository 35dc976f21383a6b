package service

import (
	"context"

	"github.com/garyjia/purchase-bot/internal/application/port"
)

// ApproverService manages the approver roster
type ApproverService interface {
	// Register adds userID and reports false if it was already an approver
	Register(ctx context.Context, userID string) (bool, error)
	// Unregister removes userID and reports false if it was not an approver
	Unregister(ctx context.Context, userID string) (bool, error)
	IsApprover(ctx context.Context, userID string) (bool, error)
	List(ctx context.Context) ([]string, error)
}

type approverServiceImpl struct {
	roster port.ApproverRoster
	logger Logger
}

// NewApproverService creates a new ApproverService
func NewApproverService(roster port.ApproverRoster, logger Logger) ApproverService {
	return &approverServiceImpl{roster: roster, logger: logger}
}

func (s *approverServiceImpl) Register(ctx context.Context, userID string) (bool, error) {
	ok, err := s.roster.IsApprover(ctx, userID)
	if err != nil || ok {
		return false, err
	}
	if err := s.roster.AddApprover(ctx, userID); err != nil {
		return false, err
	}
	s.logger.Info("Approver registered", "user_id", userID)
	return true, nil
}

func (s *approverServiceImpl) Unregister(ctx context.Context, userID string) (bool, error) {
	ok, err := s.roster.IsApprover(ctx, userID)
	if err != nil || !ok {
		return false, err
	}
	if err := s.roster.RemoveApprover(ctx, userID); err != nil {
		return false, err
	}
	s.logger.Info("Approver unregistered", "user_id", userID)
	return true, nil
}

func (s *approverServiceImpl) IsApprover(ctx context.Context, userID string) (bool, error) {
	return s.roster.IsApprover(ctx, userID)
}

func (s *approverServiceImpl) List(ctx context.Context) ([]string, error) {
	return s.roster.ListApprovers(ctx)
}
