package environment

import (
	"context"
	"log/slog"

	"jardam-bot/internal/config"
	"jardam-bot/internal/infra/sqlite3"
	"jardam-bot/internal/infra/telegram"
)

type Clients struct {
	SQLiteDB    *sqlite3.DB
	TelegramBot *telegram.Client
}

func newClients(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Clients, error) {
	sqliteDB, err := provideSQLiteDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	telegramBot, err := provideTelegramBot(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Clients{
		SQLiteDB:    sqliteDB,
		TelegramBot: telegramBot,
	}, nil
}

func provideSQLiteDB(ctx context.Context, cfg config.Config) (*sqlite3.DB, error) {
	opts := []sqlite3.Option{
		sqlite3.WithDSN(cfg.DB.Path),
		sqlite3.WithMaxOpenConns(cfg.DB.MaxOpenConns),
		sqlite3.WithMaxIdleConns(cfg.DB.MaxIdleConns),
		sqlite3.WithConnMaxLifetime(cfg.DB.MaxLifetime),
	}

	return sqlite3.New(ctx, opts...)
}

func provideTelegramBot(cfg config.Config, logger *slog.Logger) (*telegram.Client, error) {
	return telegram.NewClient(cfg.Telegram.BotToken, logger)
}
