package telegram

import (
	"context"
	"log/slog"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"jardam-bot/internal/config"
	"jardam-bot/internal/storage"
	"jardam-bot/internal/stories/donations"
	"jardam-bot/internal/stories/goals"
	"jardam-bot/internal/stories/users"
	"jardam-bot/internal/telegram/cmds"
	"jardam-bot/internal/telegram/flows/creategoal"
	"jardam-bot/internal/telegram/messages"
	"jardam-bot/internal/telegram/states"
)

type fakeBot struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeBot) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

type fakeUserService struct{}

func (f *fakeUserService) GetOrCreateUserByTelegramID(_ context.Context, telegramID int64, _, _, _ string) (*users.User, error) {
	return &users.User{TelegramID: telegramID}, nil
}

type fakeDonationService struct{}

func (f *fakeDonationService) InitiateDonation(context.Context, int64, float64) (*donations.PendingDonation, error) {
	return nil, nil
}

func (f *fakeDonationService) CheckPayment(context.Context, string) (donations.Status, *goals.Goal, error) {
	return donations.StatusPending, nil, nil
}

type fakeGoalService struct {
	progress *goals.Progress
}

func (f *fakeGoalService) ActiveGoalProgress(context.Context) (*goals.Progress, error) {
	return f.progress, nil
}

func (f *fakeGoalService) CreateGoal(_ context.Context, _ int64, title, description string, targetAmount float64) (*goals.Goal, error) {
	return &goals.Goal{Title: title, Description: description, TargetAmount: targetAmount, IsActive: true}, nil
}

type fakeStatsStorage struct{}

func (f *fakeStatsStorage) GetStatistics(context.Context) (*storage.StatisticsData, error) {
	return &storage.StatisticsData{}, nil
}

type fakeLocalizer struct{}

func (f *fakeLocalizer) Get(_, key string, _ map[string]interface{}) string {
	return key
}

const testAdminID = int64(42)

func newTestRouter(goalService *fakeGoalService) (*Router, *fakeBot) {
	logger := slog.Default()
	bot := &fakeBot{}
	loc := &fakeLocalizer{}
	manager := states.NewManager(logger)
	checker := NewAdminChecker(&config.TelegramConfig{AdminTelegramIDs: []int64{testAdminID}})

	createGoalHandler := creategoal.NewHandler(bot, manager, goalService, logger)
	donateCommand := cmds.NewDonateCommand(bot, &fakeDonationService{}, loc, logger)
	progressCommand := cmds.NewProgressCommand(bot, goalService, loc, logger)
	statsCommand := cmds.NewStatsCommand(bot, &fakeStatsStorage{}, loc, logger)

	router := NewRouter(bot, manager, &fakeUserService{}, checker,
		createGoalHandler, donateCommand, progressCommand, statsCommand, logger)
	return router, bot
}

func commandUpdate(telegramID, chatID int64, text string) *tgbotapi.Update {
	update := textMessageUpdate(telegramID, chatID, text)
	cmdLen := len(text)
	for i, r := range text {
		if r == ' ' {
			cmdLen = i
			break
		}
	}
	update.Message.Entities = []tgbotapi.MessageEntity{
		{Type: "bot_command", Offset: 0, Length: cmdLen},
	}
	return update
}

func textMessageUpdate(telegramID, chatID int64, text string) *tgbotapi.Update {
	return &tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: telegramID},
			Chat: &tgbotapi.Chat{ID: chatID},
			Text: text,
		},
	}
}

func TestRouteStartSendsMainMenu(t *testing.T) {
	router, bot := newTestRouter(&fakeGoalService{})

	if err := router.Route(commandUpdate(1, 10, "/start")); err != nil {
		t.Fatalf("Route: %v", err)
	}

	if len(bot.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(bot.sent))
	}
	msg := bot.sent[0]
	if msg.Text != messages.Welcome {
		t.Errorf("text = %q, want welcome", msg.Text)
	}

	keyboard, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	if !ok {
		t.Fatalf("reply markup = %T, want reply keyboard", msg.ReplyMarkup)
	}
	var buttons []string
	for _, row := range keyboard.Keyboard {
		for _, b := range row {
			buttons = append(buttons, b.Text)
		}
	}
	want := map[string]bool{messages.ButtonDonate: false, messages.ButtonProgress: false}
	for _, text := range buttons {
		if _, ok := want[text]; ok {
			want[text] = true
		}
	}
	for text, found := range want {
		if !found {
			t.Errorf("main menu is missing button %q, got %v", text, buttons)
		}
	}
}

func TestRouteMainMenuButtons(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantText string
	}{
		{"donate button", messages.ButtonDonate, messages.DonateUsage},
		{"progress button without goal", messages.ButtonProgress, messages.NoProgressYet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, bot := newTestRouter(&fakeGoalService{})

			if err := router.Route(textMessageUpdate(1, 10, tt.text)); err != nil {
				t.Fatalf("Route: %v", err)
			}
			if len(bot.sent) != 1 {
				t.Fatalf("sent %d messages, want 1", len(bot.sent))
			}
			if bot.sent[0].Text != tt.wantText {
				t.Errorf("text = %q, want %q", bot.sent[0].Text, tt.wantText)
			}
		})
	}
}

func TestRoutePlainTextFromAdminPrefersWizard(t *testing.T) {
	router, bot := newTestRouter(&fakeGoalService{})

	if err := router.Route(commandUpdate(testAdminID, 10, "/newgoal")); err != nil {
		t.Fatalf("Route /newgoal: %v", err)
	}

	// Текст кнопки внутри мастера трактуется как ввод шага, а не как меню
	if err := router.Route(textMessageUpdate(testAdminID, 10, messages.ButtonProgress)); err != nil {
		t.Fatalf("Route wizard input: %v", err)
	}

	last := bot.sent[len(bot.sent)-1]
	if last.Text != messages.GoalWizardDescPrompt {
		t.Errorf("text = %q, want description prompt", last.Text)
	}
}

func TestRouteNewGoalRequiresAdmin(t *testing.T) {
	router, bot := newTestRouter(&fakeGoalService{})

	if err := router.Route(commandUpdate(1, 10, "/newgoal")); err != nil {
		t.Fatalf("Route: %v", err)
	}
	if len(bot.sent) != 1 || bot.sent[0].Text != messages.AccessDenied {
		t.Fatalf("sent = %+v, want access denied", bot.sent)
	}
}
