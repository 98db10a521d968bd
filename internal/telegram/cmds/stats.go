package cmds

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"jardam-bot/internal/telegram/messages"
)

// StatsCommand показывает админам сводную статистику по донатам.
type StatsCommand struct {
	bot     botApi
	storage statsStorage
	loc     localizer
	logger  *slog.Logger
}

func NewStatsCommand(bot botApi, storage statsStorage, loc localizer, logger *slog.Logger) *StatsCommand {
	return &StatsCommand{
		bot:     bot,
		storage: storage,
		loc:     loc,
		logger:  logger,
	}
}

func (c *StatsCommand) Execute(ctx context.Context, chatID int64, lang string) error {
	stats, err := c.storage.GetStatistics(ctx)
	if err != nil {
		c.logger.Error("Failed to get statistics", "error", err)
		return c.send(chatID, messages.Error)
	}

	text := c.loc.Get(lang, "stats.report", map[string]interface{}{
		"total":   fmt.Sprintf("%.0f", stats.TotalConfirmedAmount),
		"count":   stats.TotalDonationCount,
		"donors":  stats.TotalDonorCount,
		"today":   fmt.Sprintf("%.0f", stats.TodayAmount),
		"month":   fmt.Sprintf("%.0f", stats.CurrentMonthAmount),
		"pending": stats.PendingCount,
	})

	return c.send(chatID, text)
}

func (c *StatsCommand) send(chatID int64, text string) error {
	_, err := c.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
