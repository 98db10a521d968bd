package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"jardam-bot/internal/stories/donations"
)

const donationsTable = "donations"

var donationRowFields = fields(donationRow{})

type donationRow struct {
	ID                int64     `db:"id"`
	UserTelegramID    int64     `db:"user_telegram_id"`
	GoalID            *int64    `db:"goal_id"`
	Amount            float64   `db:"amount"`
	Currency          string    `db:"currency"`
	ProviderPaymentID string    `db:"provider_payment_id"`
	Status            string    `db:"status"`
	CreatedAt         time.Time `db:"created_at"`
}

func (d donationRow) ToModel() *donations.Donation {
	return &donations.Donation{
		ID:                d.ID,
		UserTelegramID:    d.UserTelegramID,
		GoalID:            d.GoalID,
		Amount:            d.Amount,
		Currency:          d.Currency,
		ProviderPaymentID: d.ProviderPaymentID,
		Status:            donations.Status(d.Status),
		CreatedAt:         d.CreatedAt,
	}
}

func (s *storageImpl) CreateDonation(ctx context.Context, donation donations.Donation) (*donations.Donation, error) {
	params := map[string]interface{}{
		"user_telegram_id":    donation.UserTelegramID,
		"goal_id":             donation.GoalID,
		"amount":              donation.Amount,
		"currency":            donation.Currency,
		"provider_payment_id": donation.ProviderPaymentID,
		"status":              string(donation.Status),
		"created_at":          s.now(),
	}

	q, args, err := s.stmpBuilder().
		Insert(donationsTable).
		SetMap(params).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.ExecContext: %w", mapConstraintErr(err, donations.ErrDuplicateKey))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("result.LastInsertId: %w", err)
	}

	return s.GetDonation(ctx, donations.GetCriteria{ID: &id})
}

func (s *storageImpl) GetDonation(ctx context.Context, criteria donations.GetCriteria) (*donations.Donation, error) {
	query := s.stmpBuilder().
		Select(donationRowFields).
		From(donationsTable).
		Limit(1)

	if criteria.ID != nil {
		query = query.Where(sq.Eq{"id": *criteria.ID})
	}
	if criteria.ProviderPaymentID != nil {
		query = query.Where(sq.Eq{"provider_payment_id": *criteria.ProviderPaymentID})
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	row := s.db.QueryRowContext(ctx, q, args...)

	var d donationRow
	err = row.Scan(&d.ID, &d.UserTelegramID, &d.GoalID, &d.Amount, &d.Currency,
		&d.ProviderPaymentID, &d.Status, &d.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("row.Scan: %w", err)
	}

	return d.ToModel(), nil
}

func (s *storageImpl) ListDonations(ctx context.Context, criteria donations.ListCriteria) ([]*donations.Donation, error) {
	query := s.stmpBuilder().
		Select(donationRowFields).
		From(donationsTable)

	if criteria.Status != nil {
		query = query.Where(sq.Eq{"status": string(*criteria.Status)})
	}

	if criteria.Limit > 0 {
		query = query.Limit(uint64(criteria.Limit))
	}
	if criteria.Offset > 0 {
		query = query.Offset(uint64(criteria.Offset))
	}

	query = query.OrderBy("created_at ASC")

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.QueryContext: %w", err)
	}
	defer rows.Close()

	var result []*donations.Donation
	for rows.Next() {
		var d donationRow
		err = rows.Scan(&d.ID, &d.UserTelegramID, &d.GoalID, &d.Amount, &d.Currency,
			&d.ProviderPaymentID, &d.Status, &d.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}
		result = append(result, d.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return result, nil
}

// ConfirmDonation переводит донат pending -> confirmed и прибавляет его
// сумму к цели в одной транзакции. Guard по status='pending' в UPDATE
// гарантирует ровно одного победителя при конкурентных подтверждениях:
// проигравший получает applied=false и сумму не применяет.
func (s *storageImpl) ConfirmDonation(ctx context.Context, donationID int64, goalID *int64, amount float64) (bool, error) {
	confirmQ, confirmArgs, err := s.stmpBuilder().
		Update(donationsTable).
		Set("status", string(donations.StatusConfirmed)).
		Where(sq.Eq{"id": donationID, "status": string(donations.StatusPending)}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build confirm query: %w", err)
	}

	applied := false
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, confirmQ, confirmArgs...)
		if err != nil {
			return fmt.Errorf("confirm donation: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("result.RowsAffected: %w", err)
		}
		if affected == 0 {
			// Донат уже в терминальном статусе
			return nil
		}
		applied = true

		if goalID == nil {
			return nil
		}

		incrementQ, incrementArgs, err := s.buildGoalIncrement(*goalID, amount)
		if err != nil {
			return fmt.Errorf("build increment query: %w", err)
		}

		incResult, err := tx.ExecContext(ctx, incrementQ, incrementArgs...)
		if err != nil {
			return fmt.Errorf("increment goal amount: %w", err)
		}

		incremented, err := incResult.RowsAffected()
		if err != nil {
			return fmt.Errorf("increment RowsAffected: %w", err)
		}
		if incremented == 0 {
			// Цели с таким id больше нет: донат подтверждаем, пропажу фиксируем
			s.logger.Warn("Goal missing during donation confirmation",
				"goal_id", *goalID,
				"donation_id", donationID,
			)
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	return applied, nil
}

// MarkDonationFailed переводит донат pending -> failed с тем же guard, что
// и ConfirmDonation.
func (s *storageImpl) MarkDonationFailed(ctx context.Context, donationID int64) (bool, error) {
	q, args, err := s.stmpBuilder().
		Update(donationsTable).
		Set("status", string(donations.StatusFailed)).
		Where(sq.Eq{"id": donationID, "status": string(donations.StatusPending)}).
		ToSql()
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
