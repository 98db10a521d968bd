package paymentautocheck

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"jardam-bot/internal/stories/donations"
	"jardam-bot/internal/stories/goals"
)

// pendingBatchSize ограничивает число донатов, опрашиваемых за один тик.
const pendingBatchSize = 50

// Worker periodically polls the payment provider for pending donations,
// so a donation is confirmed even if the user never presses the check
// button after paying.
type Worker struct {
	donationService DonationService
	telegramBot     TelegramBot
	localizer       Localizer
	logger          *slog.Logger
	cron            *cron.Cron
	interval        time.Duration
	mockPayment     bool

	// Донаты, которые уже опрашиваются, чтобы тики не накладывались
	processing sync.Map
}

func NewWorker(
	donationService DonationService,
	telegramBot TelegramBot,
	localizer Localizer,
	interval time.Duration,
	mockPayment bool,
	logger *slog.Logger,
) *Worker {
	return &Worker{
		donationService: donationService,
		telegramBot:     telegramBot,
		localizer:       localizer,
		logger:          logger,
		cron:            cron.New(),
		interval:        interval,
		mockPayment:     mockPayment,
	}
}

// Name returns the worker name
func (w *Worker) Name() string {
	return "payment-autocheck"
}

// Start starts the payment autocheck worker
func (w *Worker) Start() error {
	// В mock-режиме опрос подтвердил бы платеж раньше пользователя
	if w.mockPayment {
		w.logger.Info("Mock payment mode enabled, skipping payment auto-check worker")
		return nil
	}

	spec := fmt.Sprintf("@every %s", w.interval)
	_, err := w.cron.AddFunc(spec, func() {
		defer func() {
			if r := recover(); r != nil {
				w.logger.Error("Panic in payment autocheck worker", "panic", r)
			}
		}()
		ctx := context.Background()
		if err := w.run(ctx); err != nil {
			w.logger.Error("Payment autocheck tick failed", "error", err)
		}
	})
	if err != nil {
		return errors.Wrap(err, "schedule payment autocheck worker")
	}

	w.cron.Start()
	w.logger.Info("Payment autocheck worker started", "interval", w.interval.String())
	return nil
}

// Stop stops the worker
func (w *Worker) Stop() {
	w.logger.Info("Stopping payment autocheck worker")
	w.cron.Stop()
}

// run опрашивает провайдера по всем pending донатам текущей пачки.
func (w *Worker) run(ctx context.Context) error {
	pending, err := w.donationService.ListPending(ctx, pendingBatchSize)
	if err != nil {
		return errors.Wrap(err, "list pending donations")
	}

	for _, donation := range pending {
		if _, loaded := w.processing.LoadOrStore(donation.ID, true); loaded {
			continue
		}

		go func(donation *donations.Donation) {
			defer w.processing.Delete(donation.ID)

			if err := w.checkDonation(ctx, donation); err != nil {
				w.logger.Error("Failed to check donation payment",
					"donation_id", donation.ID,
					"provider_payment_id", donation.ProviderPaymentID,
					"error", err)
			}
		}(donation)
	}

	return nil
}

// checkDonation applies the provider's current status to one donation.
func (w *Worker) checkDonation(ctx context.Context, donation *donations.Donation) error {
	status, goal, err := w.donationService.CheckPayment(ctx, donation.ProviderPaymentID)
	if err != nil {
		return errors.Wrap(err, "check payment")
	}

	switch status {
	case donations.StatusConfirmed:
		w.logger.Info("Donation confirmed by autocheck",
			"donation_id", donation.ID,
			"amount", donation.Amount)
		w.notifyDonor(donation, goal)
	case donations.StatusFailed:
		w.logger.Info("Donation payment failed",
			"donation_id", donation.ID,
			"provider_payment_id", donation.ProviderPaymentID)
	default:
		// Платеж еще не оплачен, проверим на следующем тике
	}

	return nil
}

// notifyDonor отправляет донору благодарность с прогрессом сбора. Язык
// пользователя на этом пути неизвестен, используется язык по умолчанию.
func (w *Worker) notifyDonor(donation *donations.Donation, goal *goals.Goal) {
	params := map[string]interface{}{
		"title":   "",
		"current": "",
		"target":  "",
	}
	if goal != nil {
		params["title"] = goal.Title
		params["current"] = fmt.Sprintf("%.0f", goal.CurrentAmount)
		params["target"] = fmt.Sprintf("%.0f", goal.TargetAmount)
	}

	text := w.localizer.Get("", "donate.thanks", params)
	if err := w.telegramBot.SendMessage(donation.UserTelegramID, text); err != nil {
		w.logger.Warn("Failed to notify donor",
			"donation_id", donation.ID,
			"telegram_id", donation.UserTelegramID,
			"error", err)
	}
}
