package telegram

import (
	"slices"

	"jardam-bot/internal/config"
)

// AdminChecker проверяет является ли пользователь админом
type AdminChecker struct {
	adminIDs []int64
}

func NewAdminChecker(cfg *config.TelegramConfig) *AdminChecker {
	return &AdminChecker{
		adminIDs: cfg.AdminTelegramIDs,
	}
}

// IsAdmin проверяет является ли пользователь с данным Telegram ID админом
func (a *AdminChecker) IsAdmin(telegramID int64) bool {
	return slices.Contains(a.adminIDs, telegramID)
}
