package telegram

import (
	"context"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"jardam-bot/internal/stories/users"
	"jardam-bot/internal/telegram/cmds"
	"jardam-bot/internal/telegram/flows/creategoal"
	"jardam-bot/internal/telegram/messages"
	"jardam-bot/internal/telegram/states"
)

type Router struct {
	bot          botApi
	stateStore   stateStore
	userService  userService
	adminChecker adminChecker
	logger       *slog.Logger

	// Handlers
	createGoalHandler *creategoal.Handler
	donateCommand     *cmds.DonateCommand
	progressCommand   *cmds.ProgressCommand
	statsCommand      *cmds.StatsCommand
}

type botApi interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type stateStore interface {
	GetState(adminID int64) (states.GoalDraft, bool)
	IsUserCreatingGoal(adminID int64) bool
}

type userService interface {
	GetOrCreateUserByTelegramID(ctx context.Context, telegramID int64, username, firstName, lastName string) (*users.User, error)
}

type adminChecker interface {
	IsAdmin(telegramID int64) bool
}

func NewRouter(
	bot botApi,
	stateStore stateStore,
	userService userService,
	adminChecker adminChecker,
	createGoalHandler *creategoal.Handler,
	donateCommand *cmds.DonateCommand,
	progressCommand *cmds.ProgressCommand,
	statsCommand *cmds.StatsCommand,
	logger *slog.Logger,
) *Router {
	return &Router{
		bot:               bot,
		stateStore:        stateStore,
		userService:       userService,
		adminChecker:      adminChecker,
		createGoalHandler: createGoalHandler,
		donateCommand:     donateCommand,
		progressCommand:   progressCommand,
		statsCommand:      statsCommand,
		logger:            logger,
	}
}

// Route разбирает update и направляет его нужному обработчику.
func (r *Router) Route(update *tgbotapi.Update) error {
	ctx := context.Background()

	telegramID := extractUserID(update)
	if telegramID == 0 {
		return nil // Некорректный update
	}
	chatID := extractChatID(update)
	lang := extractLang(update)

	// Лениво создаем пользователя при первом взаимодействии
	if _, err := r.userService.GetOrCreateUserByTelegramID(ctx, telegramID,
		extractUsername(update), extractFirstName(update), extractLastName(update)); err != nil {
		r.logger.Error("Failed to get or create user", "error", err, "telegram_id", telegramID)
		return r.send(chatID, messages.Error)
	}

	// Callback кнопки
	if update.CallbackQuery != nil {
		data := update.CallbackQuery.Data
		if strings.HasPrefix(data, cmds.CheckPaymentPrefix) {
			return r.donateCommand.HandleCheck(ctx, update.CallbackQuery.ID, chatID, lang,
				strings.TrimPrefix(data, cmds.CheckPaymentPrefix))
		}
		return nil
	}

	if update.Message == nil {
		return nil
	}

	if update.Message.IsCommand() {
		return r.handleCommand(ctx, update, telegramID, chatID, lang)
	}

	// Текст вне команды: продолжение мастера создания цели, если он открыт
	if r.adminChecker.IsAdmin(telegramID) {
		if _, ok := r.stateStore.GetState(telegramID); ok {
			return r.createGoalHandler.Handle(ctx, update)
		}
	}

	// Кнопки главного меню
	switch update.Message.Text {
	case messages.ButtonDonate:
		return r.send(chatID, messages.DonateUsage)
	case messages.ButtonProgress:
		return r.progressCommand.Execute(ctx, chatID, lang)
	}

	return nil
}

func (r *Router) handleCommand(ctx context.Context, update *tgbotapi.Update, telegramID, chatID int64, lang string) error {
	switch update.Message.Command() {
	case "start", "help":
		return r.sendWelcome(chatID)
	case "donate":
		return r.donateCommand.Execute(ctx, telegramID, chatID, lang, update.Message.CommandArguments())
	case "progress":
		return r.progressCommand.Execute(ctx, chatID, lang)
	case "newgoal":
		if !r.adminChecker.IsAdmin(telegramID) {
			return r.send(chatID, messages.AccessDenied)
		}
		return r.createGoalHandler.Start(telegramID, chatID)
	case "cancel":
		if r.stateStore.IsUserCreatingGoal(telegramID) {
			return r.createGoalHandler.Cancel(telegramID, chatID)
		}
		return r.send(chatID, messages.NothingToDo)
	case "stats":
		if !r.adminChecker.IsAdmin(telegramID) {
			return r.send(chatID, messages.AccessDenied)
		}
		return r.statsCommand.Execute(ctx, chatID, lang)
	default:
		return r.sendWelcome(chatID)
	}
}

// sendWelcome показывает приветствие вместе с постоянной клавиатурой
// главного меню.
func (r *Router) sendWelcome(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, messages.Welcome)
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(messages.ButtonDonate),
			tgbotapi.NewKeyboardButton(messages.ButtonProgress),
		),
	)
	keyboard.ResizeKeyboard = true
	msg.ReplyMarkup = keyboard
	_, err := r.bot.Send(msg)
	return err
}

// SetupBotCommands регистрирует команды для меню бота.
func (r *Router) SetupBotCommands() error {
	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "donate", Description: "Помочь текущему сбору"},
		tgbotapi.BotCommand{Command: "progress", Description: "Прогресс сбора"},
		tgbotapi.BotCommand{Command: "start", Description: "О боте"},
	)
	_, err := r.bot.Request(commands)
	return err
}

func (r *Router) send(chatID int64, text string) error {
	_, err := r.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func extractUserID(update *tgbotapi.Update) int64 {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.ID
	}
	if update.CallbackQuery != nil && update.CallbackQuery.From != nil {
		return update.CallbackQuery.From.ID
	}
	return 0
}

func extractChatID(update *tgbotapi.Update) int64 {
	if update.Message != nil {
		return update.Message.Chat.ID
	}
	if update.CallbackQuery != nil && update.CallbackQuery.Message != nil {
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}

func extractLang(update *tgbotapi.Update) string {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.LanguageCode
	}
	if update.CallbackQuery != nil && update.CallbackQuery.From != nil {
		return update.CallbackQuery.From.LanguageCode
	}
	return ""
}

func extractUsername(update *tgbotapi.Update) string {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.UserName
	}
	if update.CallbackQuery != nil && update.CallbackQuery.From != nil {
		return update.CallbackQuery.From.UserName
	}
	return ""
}

func extractFirstName(update *tgbotapi.Update) string {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.FirstName
	}
	if update.CallbackQuery != nil && update.CallbackQuery.From != nil {
		return update.CallbackQuery.From.FirstName
	}
	return ""
}

func extractLastName(update *tgbotapi.Update) string {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.LastName
	}
	if update.CallbackQuery != nil && update.CallbackQuery.From != nil {
		return update.CallbackQuery.From.LastName
	}
	return ""
}
