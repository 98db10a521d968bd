package storage

import (
	"log/slog"
	"reflect"
	"time"

	sq "github.com/Masterminds/squirrel"

	"jardam-bot/internal/infra/sqlite3"
)

type storageImpl struct {
	db     *sqlite3.DB
	withTx sqlite3.TxManager
	now    func() time.Time
	logger *slog.Logger
}

func New(db *sqlite3.DB, logger *slog.Logger) *storageImpl {
	return &storageImpl{
		db:     db,
		withTx: sqlite3.WithTx(db, nil),
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
}

func (s *storageImpl) stmpBuilder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// fields возвращает список всех полей структуры, которые есть в БД.
func fields(data any) string {
	var s string
	r := reflect.TypeOf(data)
	for i := 0; i < r.NumField(); i++ {
		tag := r.Field(i).Tag.Get("db")
		if tag != "" {
			s += tag + ","
		}
	}
	return s[:len(s)-1]
}
