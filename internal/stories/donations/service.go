package donations

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	yoopayment "github.com/rvinnie/yookassa-sdk-go/yookassa/payment"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"jardam-bot/internal/infra/yookassa"
	"jardam-bot/internal/stories/goals"
)

// Service turns provider payment events into idempotent donation state
// transitions. A confirmed donation increases the owning goal's progress
// exactly once, no matter how many times the confirmation is delivered.
type Service struct {
	storage     Storage
	provider    Provider
	logger      *slog.Logger
	currency    string
	maxAmount   float64
	mockPayment bool

	tracer        trace.Tracer
	confirmations metric.Int64Counter
}

func NewService(storage Storage, provider Provider, currency string, maxAmount float64, mockPayment bool, logger *slog.Logger) *Service {
	confirmations, _ := otel.Meter("jardam-bot/donations").Int64Counter("donation_confirmations_total",
		metric.WithDescription("Donation confirmation outcomes"))

	return &Service{
		storage:       storage,
		provider:      provider,
		logger:        logger,
		currency:      currency,
		maxAmount:     maxAmount,
		mockPayment:   mockPayment,
		tracer:        otel.Tracer("jardam-bot/donations"),
		confirmations: confirmations,
	}
}

// InitiateDonation создает pending донат и платеж в YooKassa.
// Донат всегда записывается до прихода подтверждения (create-then-confirm).
func (s *Service) InitiateDonation(ctx context.Context, userTelegramID int64, amount float64) (*PendingDonation, error) {
	if amount <= 0 || (s.maxAmount > 0 && amount > s.maxAmount) {
		return nil, errors.Wrapf(ErrInvalidAmount, "%.2f", amount)
	}

	goal, err := s.storage.GetGoal(ctx, goals.GetCriteria{IsActive: lo.ToPtr(true)})
	if err != nil {
		return nil, errors.Wrap(err, "get active goal")
	}
	if goal == nil {
		return nil, ErrNoActiveGoal
	}

	// Mock payment mode - платёж не ходит в YooKassa, донат сразу ждет
	// подтверждения от paymentautocheck воркера
	if s.mockPayment {
		donation, err := s.storage.CreateDonation(ctx, Donation{
			UserTelegramID:    userTelegramID,
			GoalID:            lo.ToPtr(goal.ID),
			Amount:            amount,
			Currency:          s.currency,
			ProviderPaymentID: "mock_" + uuid.New().String(),
			Status:            StatusPending,
		})
		if err != nil {
			return nil, errors.Wrap(err, "create mock donation")
		}
		return &PendingDonation{Donation: donation, GoalTitle: goal.Title}, nil
	}

	description := fmt.Sprintf("Пожертвование на «%s»", goal.Title)
	payment, err := s.provider.CreatePayment(ctx, amount, s.currency, description, map[string]string{
		"goal_id":          fmt.Sprintf("%d", goal.ID),
		"user_telegram_id": fmt.Sprintf("%d", userTelegramID),
	})
	if err != nil {
		return nil, errors.Wrap(err, "create provider payment")
	}

	donation, err := s.storage.CreateDonation(ctx, Donation{
		UserTelegramID:    userTelegramID,
		GoalID:            lo.ToPtr(goal.ID),
		Amount:            amount,
		Currency:          s.currency,
		ProviderPaymentID: payment.ID,
		Status:            StatusPending,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create donation")
	}

	s.logger.Info("Donation initiated",
		"donation_id", donation.ID,
		"goal_id", goal.ID,
		"amount", amount,
		"provider_payment_id", payment.ID,
	)

	return &PendingDonation{
		Donation:   donation,
		GoalTitle:  goal.Title,
		PaymentURL: yookassa.ConfirmationURL(payment),
	}, nil
}

// ConfirmDonation переводит донат в confirmed и прибавляет его сумму к
// цели. Повторная доставка того же подтверждения возвращает успех без
// повторного применения суммы.
func (s *Service) ConfirmDonation(ctx context.Context, providerPaymentID string) (*goals.Goal, error) {
	ctx, span := s.tracer.Start(ctx, "donations.ConfirmDonation",
		trace.WithAttributes(attribute.String("provider_payment_id", providerPaymentID)))
	defer span.End()

	donation, err := s.storage.GetDonation(ctx, GetCriteria{ProviderPaymentID: lo.ToPtr(providerPaymentID)})
	if err != nil {
		return nil, errors.Wrap(err, "get donation")
	}
	if donation == nil {
		s.count(ctx, "unknown")
		return nil, errors.Wrapf(ErrUnknownPayment, "provider payment %s", providerPaymentID)
	}

	switch donation.Status {
	case StatusConfirmed:
		// Идемпотентный повтор: сумма уже учтена
		s.logger.Info("Duplicate confirmation ignored",
			"donation_id", donation.ID,
			"provider_payment_id", providerPaymentID,
		)
		s.count(ctx, "duplicate")
		return s.goalSnapshot(ctx, donation.GoalID)
	case StatusFailed:
		s.count(ctx, "invalid")
		return nil, errors.Wrapf(ErrInvalidTransition, "donation %d is failed", donation.ID)
	}

	applied, err := s.storage.ConfirmDonation(ctx, donation.ID, donation.GoalID, donation.Amount)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "confirm donation")
	}
	if !applied {
		// Конкурентное подтверждение успело раньше — перечитываем статус
		current, err := s.storage.GetDonation(ctx, GetCriteria{ID: lo.ToPtr(donation.ID)})
		if err != nil {
			return nil, errors.Wrap(err, "reread donation")
		}
		if current != nil && current.Status == StatusFailed {
			s.count(ctx, "invalid")
			return nil, errors.Wrapf(ErrInvalidTransition, "donation %d is failed", donation.ID)
		}
		s.count(ctx, "duplicate")
		return s.goalSnapshot(ctx, donation.GoalID)
	}

	s.logger.Info("Donation confirmed",
		"donation_id", donation.ID,
		"goal_id", donation.GoalID,
		"amount", donation.Amount,
	)
	s.count(ctx, "confirmed")

	return s.goalSnapshot(ctx, donation.GoalID)
}

// FailDonation фиксирует отказ провайдера. Повтор для уже failed доната
// безвреден; confirmed донат воскресить в failed нельзя.
func (s *Service) FailDonation(ctx context.Context, providerPaymentID string) error {
	donation, err := s.storage.GetDonation(ctx, GetCriteria{ProviderPaymentID: lo.ToPtr(providerPaymentID)})
	if err != nil {
		return errors.Wrap(err, "get donation")
	}
	if donation == nil {
		return errors.Wrapf(ErrUnknownPayment, "provider payment %s", providerPaymentID)
	}

	switch donation.Status {
	case StatusFailed:
		return nil
	case StatusConfirmed:
		return errors.Wrapf(ErrInvalidTransition, "donation %d is confirmed", donation.ID)
	}

	if _, err := s.storage.MarkDonationFailed(ctx, donation.ID); err != nil {
		return errors.Wrap(err, "mark donation failed")
	}

	s.logger.Info("Donation failed",
		"donation_id", donation.ID,
		"provider_payment_id", providerPaymentID,
	)

	return nil
}

// goalSnapshot returns the donation's goal for progress display. A nil
// goal id means the goal row is gone; that is logged, not fatal.
func (s *Service) goalSnapshot(ctx context.Context, goalID *int64) (*goals.Goal, error) {
	if goalID == nil {
		s.logger.Warn("Donation has no goal, skipping snapshot")
		return nil, nil
	}
	return s.storage.GetGoal(ctx, goals.GetCriteria{ID: goalID})
}

func (s *Service) count(ctx context.Context, outcome string) {
	s.confirmations.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// CheckPayment запрашивает статус платежа у провайдера и применяет его:
// succeeded -> ConfirmDonation, canceled -> FailDonation. В mock-режиме
// платеж считается оплаченным сразу. Возвращает итоговый статус и снимок
// цели для показа прогресса.
func (s *Service) CheckPayment(ctx context.Context, providerPaymentID string) (Status, *goals.Goal, error) {
	if s.mockPayment {
		goal, err := s.ConfirmDonation(ctx, providerPaymentID)
		if err != nil {
			return "", nil, err
		}
		return StatusConfirmed, goal, nil
	}

	payment, err := s.provider.GetPaymentStatus(ctx, providerPaymentID)
	if err != nil {
		return "", nil, errors.Wrap(err, "get provider payment status")
	}

	switch StatusFromProvider(payment.Status) {
	case StatusConfirmed:
		goal, err := s.ConfirmDonation(ctx, providerPaymentID)
		if err != nil {
			return "", nil, err
		}
		return StatusConfirmed, goal, nil
	case StatusFailed:
		if err := s.FailDonation(ctx, providerPaymentID); err != nil {
			return "", nil, err
		}
		return StatusFailed, nil, nil
	default:
		return StatusPending, nil, nil
	}
}

// ListPending возвращает pending донаты для фонового опроса провайдера.
func (s *Service) ListPending(ctx context.Context, limit int) ([]*Donation, error) {
	return s.storage.ListDonations(ctx, ListCriteria{
		Status: lo.ToPtr(StatusPending),
		Limit:  limit,
	})
}

// StatusFromProvider maps a YooKassa payment status to the donation status.
func StatusFromProvider(providerStatus yoopayment.Status) Status {
	switch providerStatus {
	case yoopayment.Succeeded:
		return StatusConfirmed
	case yoopayment.Canceled:
		return StatusFailed
	default:
		return StatusPending
	}
}
