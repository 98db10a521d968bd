package paymentautocheck

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"jardam-bot/internal/stories/donations"
	"jardam-bot/internal/stories/goals"
)

type fakeDonationService struct {
	pending []*donations.Donation
	status  donations.Status
	goal    *goals.Goal
	err     error
}

func (f *fakeDonationService) ListPending(context.Context, int) ([]*donations.Donation, error) {
	return f.pending, nil
}

func (f *fakeDonationService) CheckPayment(context.Context, string) (donations.Status, *goals.Goal, error) {
	return f.status, f.goal, f.err
}

type fakeBot struct {
	chatIDs []int64
	texts   []string
}

func (f *fakeBot) SendMessage(chatID int64, text string) error {
	f.chatIDs = append(f.chatIDs, chatID)
	f.texts = append(f.texts, text)
	return nil
}

type fakeLocalizer struct{}

func (f *fakeLocalizer) Get(_, key string, params map[string]interface{}) string {
	if title, ok := params["title"].(string); ok {
		return key + ":" + title
	}
	return key
}

func newTestWorker(service *fakeDonationService) (*Worker, *fakeBot) {
	bot := &fakeBot{}
	return NewWorker(service, bot, &fakeLocalizer{}, time.Minute, false, slog.Default()), bot
}

func TestCheckDonationNotifiesOnConfirmation(t *testing.T) {
	donation := &donations.Donation{
		ID:                1,
		UserTelegramID:    100,
		Amount:            300,
		ProviderPaymentID: "pay_1",
	}
	service := &fakeDonationService{
		status: donations.StatusConfirmed,
		goal:   &goals.Goal{Title: "Крыша", CurrentAmount: 300, TargetAmount: 50000},
	}
	worker, bot := newTestWorker(service)

	if err := worker.checkDonation(context.Background(), donation); err != nil {
		t.Fatalf("checkDonation: %v", err)
	}

	if len(bot.chatIDs) != 1 {
		t.Fatalf("sent %d messages, want 1", len(bot.chatIDs))
	}
	if bot.chatIDs[0] != donation.UserTelegramID {
		t.Errorf("chat id = %d, want donor %d", bot.chatIDs[0], donation.UserTelegramID)
	}
	if !strings.Contains(bot.texts[0], "donate.thanks") || !strings.Contains(bot.texts[0], "Крыша") {
		t.Errorf("text = %q, want thanks with goal title", bot.texts[0])
	}
}

func TestCheckDonationSilentWhileNotConfirmed(t *testing.T) {
	donation := &donations.Donation{
		ID:                1,
		UserTelegramID:    100,
		ProviderPaymentID: "pay_1",
	}

	for _, status := range []donations.Status{donations.StatusPending, donations.StatusFailed} {
		t.Run(string(status), func(t *testing.T) {
			worker, bot := newTestWorker(&fakeDonationService{status: status})

			if err := worker.checkDonation(context.Background(), donation); err != nil {
				t.Fatalf("checkDonation: %v", err)
			}
			if len(bot.chatIDs) != 0 {
				t.Fatalf("sent %d messages, want none", len(bot.chatIDs))
			}
		})
	}
}

func TestNotifyDonorWithoutGoal(t *testing.T) {
	worker, bot := newTestWorker(&fakeDonationService{})

	worker.notifyDonor(&donations.Donation{ID: 1, UserTelegramID: 100}, nil)

	if len(bot.texts) != 1 || !strings.Contains(bot.texts[0], "donate.thanks") {
		t.Fatalf("texts = %v, want a thanks message", bot.texts)
	}
}
