package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"jardam-bot/internal/stories/donations"
)

type StatisticsData struct {
	TotalConfirmedAmount float64
	TotalDonationCount   int
	TotalDonorCount      int
	TodayAmount          float64
	CurrentMonthAmount   float64
	PendingCount         int
}

// Агрегаты по активной цели считаются JOIN-ом в момент запроса, а не по
// кэшированному счетчику, поэтому всегда отражают последнее закоммиченное
// состояние.

func (s *storageImpl) CountDonationsForActiveGoal(ctx context.Context) (int, error) {
	query := s.stmpBuilder().
		Select("COUNT(*)").
		From(donationsTable + " d").
		Join(goalsTable + " g ON d.goal_id = g.id").
		Where(sq.Eq{"g.is_active": true}).
		Where(sq.Eq{"d.status": string(donations.StatusConfirmed)})

	q, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build sql query: %w", err)
	}

	var count int
	err = s.db.GetContext(ctx, &count, q, args...)
	if err != nil {
		return 0, fmt.Errorf("db.GetContext: %w", err)
	}

	return count, nil
}

func (s *storageImpl) CountDistinctDonorsForActiveGoal(ctx context.Context) (int, error) {
	query := s.stmpBuilder().
		Select("COUNT(DISTINCT d.user_telegram_id)").
		From(donationsTable + " d").
		Join(goalsTable + " g ON d.goal_id = g.id").
		Where(sq.Eq{"g.is_active": true}).
		Where(sq.Eq{"d.status": string(donations.StatusConfirmed)})

	q, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build sql query: %w", err)
	}

	var count int
	err = s.db.GetContext(ctx, &count, q, args...)
	if err != nil {
		return 0, fmt.Errorf("db.GetContext: %w", err)
	}

	return count, nil
}

func (s *storageImpl) getConfirmedAmountForPeriod(ctx context.Context, from, to time.Time) (float64, error) {
	query := s.stmpBuilder().
		Select("COALESCE(SUM(amount), 0)").
		From(donationsTable).
		Where(sq.Eq{"status": string(donations.StatusConfirmed)}).
		Where(sq.GtOrEq{"created_at": from}).
		Where(sq.Lt{"created_at": to})

	q, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build sql query: %w", err)
	}

	var amount float64
	err = s.db.GetContext(ctx, &amount, q, args...)
	if err != nil {
		return 0, fmt.Errorf("db.GetContext: %w", err)
	}

	return amount, nil
}

func (s *storageImpl) countByStatus(ctx context.Context, status donations.Status) (int, error) {
	query := s.stmpBuilder().
		Select("COUNT(*)").
		From(donationsTable).
		Where(sq.Eq{"status": string(status)})

	q, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build sql query: %w", err)
	}

	var count int
	err = s.db.GetContext(ctx, &count, q, args...)
	if err != nil {
		return 0, fmt.Errorf("db.GetContext: %w", err)
	}

	return count, nil
}

func (s *storageImpl) GetStatistics(ctx context.Context) (*StatisticsData, error) {
	now := s.now()
	epoch := time.Unix(0, 0).UTC()

	totalAmount, err := s.getConfirmedAmountForPeriod(ctx, epoch, now.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("get total amount: %w", err)
	}

	totalCount, err := s.countByStatus(ctx, donations.StatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("get total count: %w", err)
	}

	pendingCount, err := s.countByStatus(ctx, donations.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("get pending count: %w", err)
	}

	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	todayAmount, err := s.getConfirmedAmountForPeriod(ctx, todayStart, todayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("get today amount: %w", err)
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthAmount, err := s.getConfirmedAmountForPeriod(ctx, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, fmt.Errorf("get month amount: %w", err)
	}

	donorCount, err := s.countDistinctDonors(ctx)
	if err != nil {
		return nil, fmt.Errorf("get donor count: %w", err)
	}

	return &StatisticsData{
		TotalConfirmedAmount: totalAmount,
		TotalDonationCount:   totalCount,
		TotalDonorCount:      donorCount,
		TodayAmount:          todayAmount,
		CurrentMonthAmount:   monthAmount,
		PendingCount:         pendingCount,
	}, nil
}

func (s *storageImpl) countDistinctDonors(ctx context.Context) (int, error) {
	query := s.stmpBuilder().
		Select("COUNT(DISTINCT user_telegram_id)").
		From(donationsTable).
		Where(sq.Eq{"status": string(donations.StatusConfirmed)})

	q, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build sql query: %w", err)
	}

	var count int
	err = s.db.GetContext(ctx, &count, q, args...)
	if err != nil {
		return 0, fmt.Errorf("db.GetContext: %w", err)
	}

	return count, nil
}
