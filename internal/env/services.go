package environment

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"jardam-bot/internal/config"
	"jardam-bot/internal/infra/yookassa"
	"jardam-bot/internal/localization"
	"jardam-bot/internal/storage"
	"jardam-bot/internal/stories/donations"
	"jardam-bot/internal/stories/goals"
	"jardam-bot/internal/stories/users"
	"jardam-bot/internal/telegram"
	"jardam-bot/internal/telegram/cmds"
	"jardam-bot/internal/telegram/flows/creategoal"
	"jardam-bot/internal/telegram/states"
	"jardam-bot/internal/workers"
	"jardam-bot/internal/workers/paymentautocheck"
)

type Services struct {
	TelegramRouter *telegram.Router
	WorkerManager  *workers.Manager
}

func newServices(ctx context.Context, clients *Clients, cfg *config.Config, logger *slog.Logger) (*Services, error) {
	var s Services

	if clients.TelegramBot == nil {
		return nil, errors.New("telegram bot не инициализирован")
	}

	// Создаем реальный storage и накатываем схему
	storageImpl := storage.New(clients.SQLiteDB, logger)
	if err := storageImpl.Bootstrap(ctx); err != nil {
		return nil, errors.Wrap(err, "bootstrap storage")
	}

	// Создаем YooKassa client
	yookassaClient, err := yookassa.NewClient(cfg.YooKassa.ShopID, cfg.YooKassa.SecretKey, cfg.YooKassa.ReturnURL, logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create yookassa client")
	}

	// Создаем реальные сервисы
	userService := users.NewService(storageImpl)
	goalService := goals.NewService(storageImpl, logger)
	donationService := donations.NewService(
		storageImpl,
		yookassaClient,
		cfg.Donations.Currency,
		cfg.Donations.MaxAmount,
		cfg.YooKassa.MockPayment,
		logger,
	)

	localizer, err := localization.NewService()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load translations")
	}

	// Создаем StateManager
	stateManager := states.NewManager(logger)

	// Создаем AdminChecker
	adminChecker := telegram.NewAdminChecker(&cfg.Telegram)

	// Создаем createGoalHandler - наш клиент уже реализует botApi интерфейс
	createGoalHandler := creategoal.NewHandler(
		clients.TelegramBot,
		stateManager,
		goalService,
		logger,
	)

	donateCommand := cmds.NewDonateCommand(clients.TelegramBot, donationService, localizer, logger)
	progressCommand := cmds.NewProgressCommand(clients.TelegramBot, goalService, localizer, logger)
	statsCommand := cmds.NewStatsCommand(clients.TelegramBot, storageImpl, localizer, logger)

	// Создаем роутер
	s.TelegramRouter = telegram.NewRouter(
		clients.TelegramBot,
		stateManager,
		userService,
		adminChecker,
		createGoalHandler,
		donateCommand,
		progressCommand,
		statsCommand,
		logger,
	)

	// Фоновый опрос провайдера по pending донатам
	autocheckWorker := paymentautocheck.NewWorker(
		donationService,
		clients.TelegramBot,
		localizer,
		cfg.Donations.CheckInterval,
		cfg.YooKassa.MockPayment,
		logger,
	)
	s.WorkerManager = workers.NewManager(logger, autocheckWorker)

	return &s, nil
}
