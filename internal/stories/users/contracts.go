package users

import (
	"context"
	"errors"
)

// ErrDuplicateKey is returned by Storage.CreateUser when the telegram_id
// is already taken. The storage never silently overwrites an existing row.
var ErrDuplicateKey = errors.New("user already exists")

type Storage interface {
	CreateUser(ctx context.Context, user User) (*User, error)
	GetUser(ctx context.Context, criteria GetCriteria) (*User, error)
}
