package cmds

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"jardam-bot/internal/storage"
	"jardam-bot/internal/stories/donations"
	"jardam-bot/internal/stories/goals"
)

type botApi interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type donationService interface {
	InitiateDonation(ctx context.Context, userTelegramID int64, amount float64) (*donations.PendingDonation, error)
	CheckPayment(ctx context.Context, providerPaymentID string) (donations.Status, *goals.Goal, error)
}

type goalService interface {
	ActiveGoalProgress(ctx context.Context) (*goals.Progress, error)
}

type statsStorage interface {
	GetStatistics(ctx context.Context) (*storage.StatisticsData, error)
}

type localizer interface {
	Get(lang, key string, params map[string]interface{}) string
}
