package goals

import (
	"context"
	"errors"
)

// ErrInvalidInput is returned when a goal is submitted with a
// non-positive target amount.
var ErrInvalidInput = errors.New("invalid goal input")

type Storage interface {
	// CreateGoal деактивирует все активные цели и вставляет новую активную
	// одной транзакцией.
	CreateGoal(ctx context.Context, goal Goal) (*Goal, error)
	GetGoal(ctx context.Context, criteria GetCriteria) (*Goal, error)
	CountDonationsForActiveGoal(ctx context.Context) (int, error)
	CountDistinctDonorsForActiveGoal(ctx context.Context) (int, error)
}
