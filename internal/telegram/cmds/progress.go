package cmds

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"jardam-bot/internal/telegram/messages"
)

// ProgressCommand показывает состояние активного сбора.
type ProgressCommand struct {
	bot         botApi
	goalService goalService
	loc         localizer
	logger      *slog.Logger
}

func NewProgressCommand(bot botApi, gs goalService, loc localizer, logger *slog.Logger) *ProgressCommand {
	return &ProgressCommand{
		bot:         bot,
		goalService: gs,
		loc:         loc,
		logger:      logger,
	}
}

func (c *ProgressCommand) Execute(ctx context.Context, chatID int64, lang string) error {
	progress, err := c.goalService.ActiveGoalProgress(ctx)
	if err != nil {
		c.logger.Error("Failed to get goal progress", "error", err)
		return c.send(chatID, messages.Error)
	}
	if progress == nil {
		return c.send(chatID, messages.NoProgressYet)
	}

	goal := progress.Goal
	percent := 0
	if goal.TargetAmount > 0 {
		percent = int(goal.CurrentAmount / goal.TargetAmount * 100)
	}

	header := c.loc.Get(lang, "progress.header", map[string]interface{}{
		"title":       goal.Title,
		"description": goal.Description,
	})
	totals := c.loc.Get(lang, "progress.totals", map[string]interface{}{
		"current":   fmt.Sprintf("%.0f", goal.CurrentAmount),
		"target":    fmt.Sprintf("%.0f", goal.TargetAmount),
		"percent":   percent,
		"donations": progress.DonationCount,
		"donors":    progress.DonorCount,
	})

	text := header + "\n" + progressBar(percent) + "\n\n" + totals
	return c.send(chatID, text)
}

func (c *ProgressCommand) send(chatID int64, text string) error {
	_, err := c.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// progressBar рисует шкалу из 10 сегментов. Переполненный сбор (больше
// 100%) показывается полной шкалой.
func progressBar(percent int) string {
	filled := percent / 10
	if filled > 10 {
		filled = 10
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("▓", filled) + strings.Repeat("░", 10-filled)
}
