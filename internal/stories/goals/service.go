package goals

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Service provides business logic for goal lifecycle operations
type Service struct {
	storage Storage
	logger  *slog.Logger
}

func NewService(storage Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// CreateGoal validates the collected wizard fields and commits the new
// goal. The previously active goal is deactivated in the same storage
// transaction, so readers never observe zero or two active goals.
func (s *Service) CreateGoal(ctx context.Context, adminID int64, title, description string, targetAmount float64) (*Goal, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.Wrap(ErrInvalidInput, "empty title")
	}
	if targetAmount <= 0 {
		return nil, errors.Wrapf(ErrInvalidInput, "target amount %.2f must be positive", targetAmount)
	}

	goal, err := s.storage.CreateGoal(ctx, Goal{
		Title:        title,
		Description:  strings.TrimSpace(description),
		TargetAmount: targetAmount,
		IsActive:     true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create goal")
	}

	s.logger.Info("Goal created",
		"goal_id", goal.ID,
		"title", goal.Title,
		"target_amount", goal.TargetAmount,
		"admin_id", adminID,
	)

	return goal, nil
}

// GetActiveGoal возвращает активную цель или nil, если сбор не открыт.
func (s *Service) GetActiveGoal(ctx context.Context) (*Goal, error) {
	return s.storage.GetGoal(ctx, GetCriteria{IsActive: lo.ToPtr(true)})
}

// ActiveGoalProgress собирает снимок активной цели вместе с агрегатами
// по подтвержденным донатам.
func (s *Service) ActiveGoalProgress(ctx context.Context) (*Progress, error) {
	goal, err := s.GetActiveGoal(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get active goal")
	}
	if goal == nil {
		return nil, nil
	}

	donationCount, err := s.storage.CountDonationsForActiveGoal(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "count donations")
	}

	donorCount, err := s.storage.CountDistinctDonorsForActiveGoal(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "count donors")
	}

	return &Progress{
		Goal:          goal,
		DonationCount: donationCount,
		DonorCount:    donorCount,
	}, nil
}
