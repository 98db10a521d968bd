package creategoal

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"jardam-bot/internal/telegram/messages"
	"jardam-bot/internal/telegram/states"
)

// Handler ведет админа по шагам мастера создания цели. Шаги ведет
// вызывающая сторона: Manager только хранит черновик.
type Handler struct {
	bot         botApi
	stateStore  stateStore
	goalService goalService
	logger      *slog.Logger
}

func NewHandler(bot botApi, ss stateStore, gs goalService, logger *slog.Logger) *Handler {
	return &Handler{
		bot:         bot,
		stateStore:  ss,
		goalService: gs,
		logger:      logger,
	}
}

// Start начинает мастер создания цели (только для админов)
func (h *Handler) Start(adminID, chatID int64) error {
	h.stateStore.StartGoalCreation(adminID, chatID)

	msg := tgbotapi.NewMessage(chatID, messages.GoalWizardTitlePrompt)
	msg.ParseMode = "Markdown"
	_, err := h.bot.Send(msg)
	return err
}

// Handle обрабатывает очередное сообщение админа по текущему шагу.
func (h *Handler) Handle(ctx context.Context, update *tgbotapi.Update) error {
	if update.Message == nil || update.Message.Text == "" {
		return nil
	}

	adminID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	draft, ok := h.stateStore.GetState(adminID)
	if !ok {
		return fmt.Errorf("no goal draft for admin %d", adminID)
	}

	switch draft.Step {
	case states.StepWaitingForTitle:
		return h.handleTitle(adminID, chatID, text)
	case states.StepWaitingForDescription:
		return h.handleDescription(adminID, chatID, text)
	case states.StepWaitingForAmount, states.StepNone:
		// StepNone с заполненными полями - повторная попытка коммита
		// после неудавшегося сохранения
		return h.handleAmount(ctx, adminID, chatID, text)
	default:
		return fmt.Errorf("unknown goal wizard step: %s", draft.Step)
	}
}

func (h *Handler) handleTitle(adminID, chatID int64, title string) error {
	if title == "" {
		return h.send(chatID, "❌ Название не может быть пустым. Введите название:")
	}

	h.stateStore.SetTitle(adminID, title)
	return h.send(chatID, messages.GoalWizardDescPrompt)
}

func (h *Handler) handleDescription(adminID, chatID int64, description string) error {
	h.stateStore.SetDescription(adminID, description)
	return h.send(chatID, messages.GoalWizardAmountPrompt)
}

func (h *Handler) handleAmount(ctx context.Context, adminID, chatID int64, text string) error {
	amount, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
	if err != nil || amount <= 0 {
		return h.send(chatID, messages.GoalWizardBadAmount)
	}

	h.stateStore.SetAmount(adminID, amount)

	draft, ok := h.stateStore.GetState(adminID)
	if !ok {
		return fmt.Errorf("goal draft vanished for admin %d", adminID)
	}

	goal, err := h.goalService.CreateGoal(ctx, adminID, draft.Title, draft.Description, draft.TargetAmount)
	if err != nil {
		// Черновик не трогаем: админ может прислать сумму еще раз и
		// докоммитить без перезапуска мастера
		h.logger.Error("Failed to commit goal", "error", err, "admin_id", adminID)
		return h.send(chatID, "❌ Не удалось сохранить цель. Отправьте сумму еще раз:")
	}

	h.stateStore.CancelGoalCreation(adminID)

	h.logger.Info("Goal wizard completed", "goal_id", goal.ID, "admin_id", adminID)
	return h.send(chatID, fmt.Sprintf("✅ Сбор «%s» открыт!\n\nЦель: %.2f ₽\n\nПредыдущий сбор закрыт автоматически.", goal.Title, goal.TargetAmount))
}

// Cancel прерывает мастер по команде админа.
func (h *Handler) Cancel(adminID, chatID int64) error {
	h.stateStore.CancelGoalCreation(adminID)
	return h.send(chatID, messages.GoalWizardCancelled)
}

func (h *Handler) send(chatID int64, text string) error {
	_, err := h.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
