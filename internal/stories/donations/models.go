package donations

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Donation — один платеж одного пользователя в пользу одной цели.
// ProviderPaymentID уникален и служит ключом идемпотентности.
type Donation struct {
	ID                int64
	UserTelegramID    int64
	GoalID            *int64
	Amount            float64
	Currency          string
	ProviderPaymentID string
	Status            Status
	CreatedAt         time.Time
}

type GetCriteria struct {
	ID                *int64
	ProviderPaymentID *string
}

// Критерии для списка донатов
type ListCriteria struct {
	Status *Status
	Limit  int
	Offset int
}

// PendingDonation is the result of initiating a donation: the recorded
// pending row plus the provider's confirmation URL for the user.
type PendingDonation struct {
	Donation   *Donation
	GoalTitle  string
	PaymentURL string
}
