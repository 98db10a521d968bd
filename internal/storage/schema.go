package storage

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	telegram_id INTEGER NOT NULL UNIQUE,
	username    TEXT,
	first_name  TEXT,
	last_name   TEXT,
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS donation_goals (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	title          TEXT NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	target_amount  REAL NOT NULL,
	current_amount REAL NOT NULL DEFAULT 0,
	is_active      BOOLEAN NOT NULL DEFAULT 0,
	created_at     TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS donations (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	user_telegram_id    INTEGER NOT NULL REFERENCES users (telegram_id),
	goal_id             INTEGER REFERENCES donation_goals (id),
	amount              REAL NOT NULL,
	currency            TEXT NOT NULL DEFAULT 'RUB',
	provider_payment_id TEXT NOT NULL UNIQUE,
	status              TEXT NOT NULL DEFAULT 'pending',
	created_at          TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_donation_goals_active ON donation_goals (is_active);
CREATE INDEX IF NOT EXISTS idx_donations_status ON donations (status);
CREATE INDEX IF NOT EXISTS idx_donations_goal ON donations (goal_id);
`

// Bootstrap создает схему, если БД пустая. Повторный вызов безопасен.
func (s *storageImpl) Bootstrap(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
