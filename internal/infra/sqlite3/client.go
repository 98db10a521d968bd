package sqlite3

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

var (
	defaultConnTimeout     = 10 * time.Second
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = time.Hour
)

type config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnTimeout     time.Duration
}

type Option func(*config)

func WithDSN(dsn string) Option {
	return func(c *config) {
		c.DSN = dsn
	}
}

func WithMaxOpenConns(maxOpen int) Option {
	return func(c *config) {
		c.MaxOpenConns = maxOpen
	}
}

func WithMaxIdleConns(maxIdle int) Option {
	return func(c *config) {
		c.MaxIdleConns = maxIdle
	}
}

func WithConnMaxLifetime(lifetime time.Duration) Option {
	return func(c *config) {
		c.ConnMaxLifetime = lifetime
	}
}

func WithConnTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.ConnTimeout = timeout
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		DSN:             "file::memory:?cache=shared",
		MaxOpenConns:    defaultMaxOpenConns,
		MaxIdleConns:    defaultMaxIdleConns,
		ConnMaxLifetime: defaultConnMaxLifetime,
		ConnTimeout:     defaultConnTimeout,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

func New(ctx context.Context, opts ...Option) (*DB, error) {
	cfg := newConfig(opts...)

	// foreign_keys нужен для ссылок donations -> users/donation_goals,
	// busy_timeout чтобы конкурентные подтверждения не падали с SQLITE_BUSY
	sep := "?"
	if strings.Contains(cfg.DSN, "?") {
		sep = "&"
	}
	dsn := fmt.Sprintf("%s%s_foreign_keys=on&_busy_timeout=5000", cfg.DSN, sep)

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite3 database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite3 database: %w", err)
	}

	return &DB{
		DB: db,
	}, nil
}

type DB struct {
	*sqlx.DB
}

func (d *DB) Close() error {
	return d.DB.Close()
}

func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return d.DB.BeginTx(ctx, opts)
}
