package creategoal

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"jardam-bot/internal/stories/goals"
	"jardam-bot/internal/telegram/states"
)

type botApi interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type stateStore interface {
	StartGoalCreation(adminID, chatID int64)
	GetState(adminID int64) (states.GoalDraft, bool)
	SetTitle(adminID int64, title string)
	SetDescription(adminID int64, description string)
	SetAmount(adminID int64, amount float64)
	CancelGoalCreation(adminID int64)
}

type goalService interface {
	CreateGoal(ctx context.Context, adminID int64, title, description string, targetAmount float64) (*goals.Goal, error)
}
