package cmds

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"jardam-bot/internal/stories/donations"
	"jardam-bot/internal/telegram/messages"
)

const CheckPaymentPrefix = "check_payment:"

// DonateCommand обрабатывает /donate <сумма> и кнопку проверки оплаты.
type DonateCommand struct {
	bot             botApi
	donationService donationService
	loc             localizer
	logger          *slog.Logger
}

func NewDonateCommand(bot botApi, ds donationService, loc localizer, logger *slog.Logger) *DonateCommand {
	return &DonateCommand{
		bot:             bot,
		donationService: ds,
		loc:             loc,
		logger:          logger,
	}
}

func (c *DonateCommand) Execute(ctx context.Context, userTelegramID, chatID int64, lang, args string) error {
	args = strings.TrimSpace(args)
	if args == "" {
		return c.send(chatID, messages.DonateUsage)
	}

	amount, err := strconv.ParseFloat(strings.ReplaceAll(args, ",", "."), 64)
	if err != nil || amount <= 0 {
		return c.send(chatID, messages.DonateBadAmount)
	}

	pending, err := c.donationService.InitiateDonation(ctx, userTelegramID, amount)
	if err != nil {
		switch {
		case errors.Is(err, donations.ErrNoActiveGoal):
			return c.send(chatID, messages.DonateNoGoal)
		case errors.Is(err, donations.ErrInvalidAmount):
			return c.send(chatID, messages.DonateBadAmount)
		}
		c.logger.Error("Failed to initiate donation", "error", err, "user_id", userTelegramID)
		return c.send(chatID, messages.Error)
	}

	text := c.loc.Get(lang, "donate.invoice", map[string]interface{}{
		"title":  pending.GoalTitle,
		"amount": fmt.Sprintf("%.0f", amount),
	})

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = paymentKeyboard(pending)
	_, err = c.bot.Send(msg)
	return err
}

// HandleCheck обрабатывает callback "check_payment:<provider_payment_id>".
func (c *DonateCommand) HandleCheck(ctx context.Context, callbackID string, chatID int64, lang, providerPaymentID string) error {
	status, goal, err := c.donationService.CheckPayment(ctx, providerPaymentID)
	if err != nil {
		if errors.Is(err, donations.ErrUnknownPayment) || errors.Is(err, donations.ErrInvalidTransition) {
			c.answerCallback(callbackID, messages.DonateFailed)
			return nil
		}
		// Ошибка залогирована и показана пользователю, выше не поднимаем
		c.logger.Error("Failed to check payment", "error", err, "provider_payment_id", providerPaymentID)
		c.answerCallback(callbackID, messages.Error)
		return nil
	}

	switch status {
	case donations.StatusConfirmed:
		c.answerCallback(callbackID, "✅")
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
		return c.send(chatID, c.loc.Get(lang, "donate.thanks", params))
	case donations.StatusFailed:
		c.answerCallback(callbackID, "❌")
		return c.send(chatID, messages.DonateFailed)
	default:
		c.answerCallback(callbackID, "⏳")
		return c.send(chatID, messages.DonatePending)
	}
}

func (c *DonateCommand) answerCallback(callbackID, text string) {
	callback := tgbotapi.NewCallback(callbackID, text)
	if _, err := c.bot.Request(callback); err != nil {
		c.logger.Warn("Failed to answer callback", "error", err)
	}
}

func (c *DonateCommand) send(chatID int64, text string) error {
	_, err := c.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func paymentKeyboard(pending *donations.PendingDonation) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	if pending.PaymentURL != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(messages.ButtonPay, pending.PaymentURL),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(messages.ButtonCheckPayment, CheckPaymentPrefix+pending.Donation.ProviderPaymentID),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
