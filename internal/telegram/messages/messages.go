package messages

// Общие
const (
	Error        = "❌ Ошибка. Пожалуйста, попробуйте позже."
	NothingToDo  = "Нечего отменять"
	AccessDenied = "⛔ Эта команда доступна только администраторам"
)

// Кнопки
const (
	ButtonPay          = "💳 Оплатить"
	ButtonCheckPayment = "🔄 Я оплатил"
	ButtonProgress     = "📊 Прогресс сбора"
	ButtonDonate       = "❤️ Помочь"
)

// Приветствие
const (
	Welcome = `👋 Добро пожаловать!

Этот бот собирает пожертвования на общие цели.

💰 /donate <сумма> — помочь текущему сбору
📊 /progress — как идет сбор`
)

// Мастер создания цели
const (
	GoalWizardTitlePrompt  = "📝 *Новый сбор*\n\nВведите название цели (например: \"Ремонт крыши\"):"
	GoalWizardDescPrompt   = "📄 Теперь введите описание цели:"
	GoalWizardAmountPrompt = "💰 Введите целевую сумму в рублях (например: 50000):"
	GoalWizardBadAmount    = "❌ Сумма должна быть положительным числом. Попробуйте еще раз:"
	GoalWizardCancelled    = "Создание цели отменено"
)

// Донаты
const (
	DonateUsage     = "Чтобы помочь, отправьте команду вида:\n\n/donate 300"
	DonateNoGoal    = "Сейчас нет открытого сбора. Загляните позже 🙏"
	DonateBadAmount = "❌ Сумма должна быть положительным числом, например: /donate 300"
	DonatePending   = "⏳ Платеж еще обрабатывается. Попробуйте проверить чуть позже."
	DonateFailed    = "❌ Платеж не прошел. Попробуйте еще раз: /donate <сумма>"
	NoProgressYet   = "Сейчас нет открытого сбора."
)
