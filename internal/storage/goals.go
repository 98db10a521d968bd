package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"jardam-bot/internal/stories/goals"
)

const goalsTable = "donation_goals"

var goalRowFields = fields(goalRow{})

type goalRow struct {
	ID            int64     `db:"id"`
	Title         string    `db:"title"`
	Description   string    `db:"description"`
	TargetAmount  float64   `db:"target_amount"`
	CurrentAmount float64   `db:"current_amount"`
	IsActive      bool      `db:"is_active"`
	CreatedAt     time.Time `db:"created_at"`
}

func (g goalRow) ToModel() *goals.Goal {
	return &goals.Goal{
		ID:            g.ID,
		Title:         g.Title,
		Description:   g.Description,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		IsActive:      g.IsActive,
		CreatedAt:     g.CreatedAt,
	}
}

// CreateGoal деактивирует текущие активные цели и вставляет новую активную
// в одной транзакции. Это единственная точка, поддерживающая инвариант
// "активна не больше одной цели" - конкурентный читатель никогда не видит
// ни нуля, ни двух активных целей.
func (s *storageImpl) CreateGoal(ctx context.Context, goal goals.Goal) (*goals.Goal, error) {
	deactivateQ, deactivateArgs, err := s.stmpBuilder().
		Update(goalsTable).
		Set("is_active", false).
		Where(sq.Eq{"is_active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build deactivate query: %w", err)
	}

	insertQ, insertArgs, err := s.stmpBuilder().
		Insert(goalsTable).
		SetMap(map[string]interface{}{
			"title":          goal.Title,
			"description":    goal.Description,
			"target_amount":  goal.TargetAmount,
			"current_amount": 0,
			"is_active":      true,
			"created_at":     s.now(),
		}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert query: %w", err)
	}

	var id int64
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, deactivateQ, deactivateArgs...); err != nil {
			return fmt.Errorf("deactivate goals: %w", err)
		}

		result, err := tx.ExecContext(ctx, insertQ, insertArgs...)
		if err != nil {
			return fmt.Errorf("insert goal: %w", err)
		}

		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("result.LastInsertId: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetGoal(ctx, goals.GetCriteria{ID: &id})
}

func (s *storageImpl) GetGoal(ctx context.Context, criteria goals.GetCriteria) (*goals.Goal, error) {
	query := s.stmpBuilder().
		Select(goalRowFields).
		From(goalsTable).
		OrderBy("created_at DESC", "id DESC").
		Limit(1)

	if criteria.ID != nil {
		query = query.Where(sq.Eq{"id": *criteria.ID})
	}
	if criteria.IsActive != nil {
		query = query.Where(sq.Eq{"is_active": *criteria.IsActive})
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	row := s.db.QueryRowContext(ctx, q, args...)

	var g goalRow
	err = row.Scan(&g.ID, &g.Title, &g.Description, &g.TargetAmount, &g.CurrentAmount, &g.IsActive, &g.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("row.Scan: %w", err)
	}

	return g.ToModel(), nil
}

func (s *storageImpl) buildGoalIncrement(goalID int64, delta float64) (string, []interface{}, error) {
	return s.stmpBuilder().
		Update(goalsTable).
		Set("current_amount", sq.Expr("current_amount + ?", delta)).
		Where(sq.Eq{"id": goalID}).
		ToSql()
}

// AddToGoalAmount прибавляет delta к current_amount одним атомарным
// UPDATE, без read-modify-write в памяти приложения. false означает, что
// цели с таким id больше нет.
func (s *storageImpl) AddToGoalAmount(ctx context.Context, goalID int64, delta float64) (bool, error) {
	q, args, err := s.buildGoalIncrement(goalID, delta)
	if err != nil {
		return false, fmt.Errorf("build sql query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, fmt.Errorf("db.ExecContext: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("result.RowsAffected: %w", err)
	}

	return affected > 0, nil
}
