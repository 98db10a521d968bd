package donations

import (
	"context"
	"errors"

	yoopayment "github.com/rvinnie/yookassa-sdk-go/yookassa/payment"

	"jardam-bot/internal/stories/goals"
)

var (
	// ErrUnknownPayment — подтверждение для доната, которого система не создавала.
	ErrUnknownPayment = errors.New("unknown provider payment")

	// ErrInvalidTransition — попытка увести донат из терминального статуса.
	ErrInvalidTransition = errors.New("invalid donation status transition")

	// ErrNoActiveGoal — донат инициирован, пока сбор не открыт.
	ErrNoActiveGoal = errors.New("no active goal")

	// ErrInvalidAmount — неположительная сумма доната.
	ErrInvalidAmount = errors.New("invalid donation amount")

	// ErrDuplicateKey is returned by Storage.CreateDonation when the
	// provider_payment_id is already recorded.
	ErrDuplicateKey = errors.New("donation already recorded")
)

type (
	// Storage provides database operations for donations
	Storage interface {
		CreateDonation(ctx context.Context, donation Donation) (*Donation, error)
		GetDonation(ctx context.Context, criteria GetCriteria) (*Donation, error)
		ListDonations(ctx context.Context, criteria ListCriteria) ([]*Donation, error)

		// ConfirmDonation атомарно переводит pending -> confirmed и
		// прибавляет amount к цели. Возвращает false, если донат уже не
		// pending (конкурентное подтверждение выиграл кто-то другой).
		ConfirmDonation(ctx context.Context, donationID int64, goalID *int64, amount float64) (bool, error)
		MarkDonationFailed(ctx context.Context, donationID int64) (bool, error)

		GetGoal(ctx context.Context, criteria goals.GetCriteria) (*goals.Goal, error)
	}

	// Provider abstracts the payment provider (YooKassa) operations
	Provider interface {
		CreatePayment(ctx context.Context, amount float64, currency, description string, metadata map[string]string) (*yoopayment.Payment, error)
		GetPaymentStatus(ctx context.Context, paymentID string) (*yoopayment.Payment, error)
	}
)
