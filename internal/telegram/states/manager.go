package states

import (
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stateReads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goal_wizard_state_reads_total",
		Help: "Reads of the goal creation wizard state",
	})
	stateAnomalies = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goal_wizard_anomalies_total",
		Help: "Out-of-sequence wizard calls with no draft present",
	}, []string{"op"})
)

// Manager хранит состояния мастера создания цели по администраторам.
// Внешний RWMutex защищает map, у каждого черновика свой mutex - два
// почти одновременных сообщения одного админа сериализуются, не блокируя
// остальных админов.
type Manager struct {
	mu     sync.RWMutex
	drafts map[int64]*draftEntry
	logger *slog.Logger
}

type draftEntry struct {
	mu    sync.Mutex
	draft GoalDraft
}

// NewManager создает новый менеджер состояний
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		drafts: make(map[int64]*draftEntry),
		logger: logger,
	}
}

// StartGoalCreation создает черновик цели, молча перезаписывая
// незаконченный предыдущий мастер того же админа.
func (m *Manager) StartGoalCreation(adminID, chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.drafts[adminID] = &draftEntry{
		draft: GoalDraft{
			AdminID: adminID,
			ChatID:  chatID,
			Step:    StepWaitingForTitle,
		},
	}
}

// GetState возвращает копию текущего черновика админа.
func (m *Manager) GetState(adminID int64) (GoalDraft, bool) {
	stateReads.Inc()

	m.mu.RLock()
	entry, exists := m.drafts[adminID]
	m.mu.RUnlock()
	if !exists {
		return GoalDraft{}, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.draft, true
}

// SetTitle сохраняет заголовок и переводит мастер к вводу описания.
func (m *Manager) SetTitle(adminID int64, title string) {
	m.mutate(adminID, "set_title", func(d *GoalDraft) {
		d.Title = title
		d.Step = StepWaitingForDescription
	})
}

// SetDescription сохраняет описание и переводит мастер к вводу суммы.
func (m *Manager) SetDescription(adminID int64, description string) {
	m.mutate(adminID, "set_description", func(d *GoalDraft) {
		d.Description = description
		d.Step = StepWaitingForAmount
	})
}

// SetAmount сохраняет целевую сумму и завершает мастер: шаг становится
// None, поля готовы для коммита цели вызывающей стороной. Manager сам
// цель не сохраняет и сумму не валидирует.
func (m *Manager) SetAmount(adminID int64, amount float64) {
	m.mutate(adminID, "set_amount", func(d *GoalDraft) {
		d.TargetAmount = amount
		d.Step = StepNone
	})
}

// CancelGoalCreation удаляет черновик. Повторный вызов безвреден.
func (m *Manager) CancelGoalCreation(adminID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.drafts, adminID)
}

// IsUserCreatingGoal сообщает, находится ли админ в середине мастера.
func (m *Manager) IsUserCreatingGoal(adminID int64) bool {
	m.mu.RLock()
	entry, exists := m.drafts[adminID]
	m.mu.RUnlock()
	if !exists {
		return false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.draft.Step != StepNone
}

// mutate применяет fn к черновику админа. Вызов без черновика - баг
// вызывающей стороны (шаги мастера ведет она): фиксируем аномалию и
// ничего не делаем.
func (m *Manager) mutate(adminID int64, op string, fn func(*GoalDraft)) {
	m.mu.RLock()
	entry, exists := m.drafts[adminID]
	m.mu.RUnlock()
	if !exists {
		stateAnomalies.WithLabelValues(op).Inc()
		m.logger.Warn("Wizard call without draft", "op", op, "admin_id", adminID)
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	fn(&entry.draft)
}
