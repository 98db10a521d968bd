package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"jardam-bot/internal/stories/users"
)

const usersTable = "users"

var userRowFields = fields(userRow{})

type userRow struct {
	ID         int64     `db:"id"`
	TelegramID int64     `db:"telegram_id"`
	Username   *string   `db:"username"`
	FirstName  *string   `db:"first_name"`
	LastName   *string   `db:"last_name"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (u userRow) ToModel() *users.User {
	return &users.User{
		ID:         u.ID,
		TelegramID: u.TelegramID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func (s *storageImpl) CreateUser(ctx context.Context, user users.User) (*users.User, error) {
	params := map[string]interface{}{
		"telegram_id": user.TelegramID,
		"username":    user.Username,
		"first_name":  user.FirstName,
		"last_name":   user.LastName,
		"created_at":  s.now(),
		"updated_at":  s.now(),
	}

	q, args, err := s.stmpBuilder().
		Insert(usersTable).
		SetMap(params).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.ExecContext: %w", mapConstraintErr(err, users.ErrDuplicateKey))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("result.LastInsertId: %w", err)
	}

	return s.GetUser(ctx, users.GetCriteria{ID: &id})
}

func (s *storageImpl) GetUser(ctx context.Context, criteria users.GetCriteria) (*users.User, error) {
	query := s.stmpBuilder().
		Select(userRowFields).
		From(usersTable).
		Limit(1)

	if criteria.ID != nil {
		query = query.Where(sq.Eq{"id": *criteria.ID})
	}
	if criteria.TelegramID != nil {
		query = query.Where(sq.Eq{"telegram_id": *criteria.TelegramID})
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	row := s.db.QueryRowContext(ctx, q, args...)

	var u userRow
	err = row.Scan(&u.ID, &u.TelegramID, &u.Username, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("row.Scan: %w", err)
	}

	return u.ToModel(), nil
}
