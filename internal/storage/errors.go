package storage

import (
	"errors"
	"fmt"

	sqlitedrv "github.com/mattn/go-sqlite3"
)

// mapConstraintErr переводит ошибки уникальных ограничений SQLite в
// доменный sentinel вызывающего пакета (users.ErrDuplicateKey и т.п.).
func mapConstraintErr(err, sentinel error) error {
	var sqliteErr sqlitedrv.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlitedrv.ErrConstraint {
		if sqliteErr.ExtendedCode == sqlitedrv.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlitedrv.ErrConstraintPrimaryKey {
			return fmt.Errorf("%w: %v", sentinel, err)
		}
	}
	return err
}
