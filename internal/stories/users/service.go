package users

import (
	"context"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Service provides business logic for user operations
type Service struct {
	storage Storage
}

func NewService(storage Storage) *Service {
	return &Service{
		storage: storage,
	}
}

// GetOrCreateUserByTelegramID возвращает пользователя, лениво создавая его
// при первом обращении. Гонка двух первых сообщений разрешается через
// уникальный индекс на telegram_id.
func (s *Service) GetOrCreateUserByTelegramID(ctx context.Context, telegramID int64, username, firstName, lastName string) (*User, error) {
	user, err := s.storage.GetUser(ctx, GetCriteria{TelegramID: lo.ToPtr(telegramID)})
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}
	if user != nil {
		return user, nil
	}

	created, err := s.storage.CreateUser(ctx, User{
		TelegramID: telegramID,
		Username:   optional(username),
		FirstName:  optional(firstName),
		LastName:   optional(lastName),
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			// Кто-то успел создать между Get и Create
			return s.storage.GetUser(ctx, GetCriteria{TelegramID: lo.ToPtr(telegramID)})
		}
		return nil, errors.Wrap(err, "create user")
	}

	return created, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
