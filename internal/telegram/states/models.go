package states

// Step — шаг мастера создания цели. Переходы только вперед, без
// возврата: None -> WaitingForTitle -> WaitingForDescription ->
// WaitingForAmount -> None (поля заполнены, цель готова к коммиту).
type Step string

const (
	StepNone                  Step = "none"
	StepWaitingForTitle       Step = "wait_title"
	StepWaitingForDescription Step = "wait_description"
	StepWaitingForAmount      Step = "wait_amount"
)

// GoalDraft — частично заполненные поля цели одного администратора.
// Живет только в памяти процесса: рестарт сбрасывает мастер, но никакое
// долговременное состояние от него не зависит.
type GoalDraft struct {
	AdminID      int64
	ChatID       int64
	Title        string
	Description  string
	TargetAmount float64
	Step         Step
}
