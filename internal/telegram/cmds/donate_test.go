package cmds

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"jardam-bot/internal/stories/donations"
	"jardam-bot/internal/stories/goals"
)

type fakeBot struct {
	sent      []tgbotapi.MessageConfig
	callbacks []tgbotapi.CallbackConfig
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if cb, ok := c.(tgbotapi.CallbackConfig); ok {
		f.callbacks = append(f.callbacks, cb)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

type fakeDonationService struct {
	pending  *donations.PendingDonation
	initErr  error
	status   donations.Status
	goal     *goals.Goal
	checkErr error
}

func (f *fakeDonationService) InitiateDonation(_ context.Context, _ int64, _ float64) (*donations.PendingDonation, error) {
	return f.pending, f.initErr
}

func (f *fakeDonationService) CheckPayment(_ context.Context, _ string) (donations.Status, *goals.Goal, error) {
	return f.status, f.goal, f.checkErr
}

type fakeLocalizer struct{}

func (fakeLocalizer) Get(_, key string, _ map[string]interface{}) string {
	return key
}

func TestHandleCheckReportsFailureOnce(t *testing.T) {
	tests := []struct {
		name     string
		checkErr error
	}{
		{name: "infrastructure error", checkErr: errors.New("provider unavailable")},
		{name: "unknown payment", checkErr: donations.ErrUnknownPayment},
		{name: "invalid transition", checkErr: donations.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bot := &fakeBot{}
			cmd := NewDonateCommand(bot, &fakeDonationService{checkErr: tt.checkErr}, fakeLocalizer{}, slog.Default())

			// Пользователю уже ответили: наверх ошибка не поднимается,
			// чтобы не логировать один отказ дважды
			err := cmd.HandleCheck(context.Background(), "cb1", 10, "ru", "pay_1")
			if err != nil {
				t.Fatalf("HandleCheck returned %v, want nil", err)
			}
			if len(bot.callbacks) != 1 {
				t.Fatalf("answered %d callbacks, want 1", len(bot.callbacks))
			}
		})
	}
}

func TestHandleCheckConfirmedSendsThanks(t *testing.T) {
	bot := &fakeBot{}
	svc := &fakeDonationService{
		status: donations.StatusConfirmed,
		goal:   &goals.Goal{Title: "Крыша", CurrentAmount: 300, TargetAmount: 50000},
	}
	cmd := NewDonateCommand(bot, svc, fakeLocalizer{}, slog.Default())

	if err := cmd.HandleCheck(context.Background(), "cb1", 10, "ru", "pay_1"); err != nil {
		t.Fatalf("HandleCheck: %v", err)
	}
	if len(bot.callbacks) != 1 {
		t.Fatalf("answered %d callbacks, want 1", len(bot.callbacks))
	}
	if len(bot.sent) != 1 || bot.sent[0].Text != "donate.thanks" {
		t.Fatalf("sent = %+v, want donate.thanks message", bot.sent)
	}
}
