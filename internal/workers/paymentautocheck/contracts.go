package paymentautocheck

import (
	"context"

	"jardam-bot/internal/stories/donations"
	"jardam-bot/internal/stories/goals"
)

type (
	// DonationService provides donation status operations
	DonationService interface {
		ListPending(ctx context.Context, limit int) ([]*donations.Donation, error)
		CheckPayment(ctx context.Context, providerPaymentID string) (donations.Status, *goals.Goal, error)
	}

	// TelegramBot provides telegram messaging
	TelegramBot interface {
		SendMessage(chatID int64, text string) error
	}

	// Localizer renders user-facing texts
	Localizer interface {
		Get(lang, key string, params map[string]interface{}) string
	}
)
