package donations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	yoopayment "github.com/rvinnie/yookassa-sdk-go/yookassa/payment"
	"github.com/samber/lo"

	"jardam-bot/internal/stories/goals"
)

// fakeStorage — хранилище в памяти с той же семантикой переходов, что у
// SQL-реализации: confirm применяется только к pending донатам.
type fakeStorage struct {
	nextID     int64
	donations  map[int64]*Donation
	byProvider map[string]int64
	goals      map[int64]*goals.Goal
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		donations:  make(map[int64]*Donation),
		byProvider: make(map[string]int64),
		goals:      make(map[int64]*goals.Goal),
	}
}

func (f *fakeStorage) addGoal(goal goals.Goal) *goals.Goal {
	f.nextID++
	goal.ID = f.nextID
	f.goals[goal.ID] = &goal
	return &goal
}

func (f *fakeStorage) CreateDonation(_ context.Context, donation Donation) (*Donation, error) {
	if _, exists := f.byProvider[donation.ProviderPaymentID]; exists {
		return nil, ErrDuplicateKey
	}
	f.nextID++
	donation.ID = f.nextID
	f.donations[donation.ID] = &donation
	f.byProvider[donation.ProviderPaymentID] = donation.ID
	copied := donation
	return &copied, nil
}

func (f *fakeStorage) GetDonation(_ context.Context, criteria GetCriteria) (*Donation, error) {
	if criteria.ID != nil {
		if d, ok := f.donations[*criteria.ID]; ok {
			copied := *d
			return &copied, nil
		}
		return nil, nil
	}
	if criteria.ProviderPaymentID != nil {
		if id, ok := f.byProvider[*criteria.ProviderPaymentID]; ok {
			copied := *f.donations[id]
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStorage) ListDonations(_ context.Context, criteria ListCriteria) ([]*Donation, error) {
	var result []*Donation
	for _, d := range f.donations {
		if criteria.Status != nil && d.Status != *criteria.Status {
			continue
		}
		copied := *d
		result = append(result, &copied)
	}
	return result, nil
}

func (f *fakeStorage) ConfirmDonation(_ context.Context, donationID int64, goalID *int64, amount float64) (bool, error) {
	d, ok := f.donations[donationID]
	if !ok || d.Status != StatusPending {
		return false, nil
	}
	d.Status = StatusConfirmed
	if goalID != nil {
		if goal, ok := f.goals[*goalID]; ok {
			goal.CurrentAmount += amount
		}
	}
	return true, nil
}

func (f *fakeStorage) MarkDonationFailed(_ context.Context, donationID int64) (bool, error) {
	d, ok := f.donations[donationID]
	if !ok || d.Status != StatusPending {
		return false, nil
	}
	d.Status = StatusFailed
	return true, nil
}

func (f *fakeStorage) GetGoal(_ context.Context, criteria goals.GetCriteria) (*goals.Goal, error) {
	if criteria.ID != nil {
		if goal, ok := f.goals[*criteria.ID]; ok {
			copied := *goal
			return &copied, nil
		}
		return nil, nil
	}
	if criteria.IsActive != nil {
		for _, goal := range f.goals {
			if goal.IsActive == *criteria.IsActive {
				copied := *goal
				return &copied, nil
			}
		}
	}
	return nil, nil
}

// fakeProvider отдает заранее назначенный статус платежа.
type fakeProvider struct {
	nextID   int
	statuses map[string]yoopayment.Status
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{statuses: make(map[string]yoopayment.Status)}
}

func (f *fakeProvider) CreatePayment(_ context.Context, amount float64, currency, description string, _ map[string]string) (*yoopayment.Payment, error) {
	f.nextID++
	id := fmt.Sprintf("pay_%d", f.nextID)
	f.statuses[id] = yoopayment.Pending
	return &yoopayment.Payment{
		ID:     id,
		Status: yoopayment.Pending,
		Confirmation: &yoopayment.Redirect{
			Type:            yoopayment.TypeRedirect,
			ConfirmationURL: "https://yookassa.test/" + id,
		},
	}, nil
}

func (f *fakeProvider) GetPaymentStatus(_ context.Context, paymentID string) (*yoopayment.Payment, error) {
	status, ok := f.statuses[paymentID]
	if !ok {
		return nil, fmt.Errorf("payment %s not found", paymentID)
	}
	return &yoopayment.Payment{ID: paymentID, Status: status}, nil
}

func newTestService(storage Storage, provider Provider) *Service {
	return NewService(storage, provider, "RUB", 100000, false, slog.Default())
}

func TestInitiateDonationValidation(t *testing.T) {
	storage := newFakeStorage()
	storage.addGoal(goals.Goal{Title: "Крыша", TargetAmount: 50000, IsActive: true})
	svc := newTestService(storage, newFakeProvider())

	tests := []struct {
		name    string
		amount  float64
		wantErr error
	}{
		{name: "zero amount", amount: 0, wantErr: ErrInvalidAmount},
		{name: "negative amount", amount: -50, wantErr: ErrInvalidAmount},
		{name: "above max amount", amount: 100001, wantErr: ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.InitiateDonation(context.Background(), 1, tt.amount)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("InitiateDonation(%v) error = %v, want %v", tt.amount, err, tt.wantErr)
			}
		})
	}
}

func TestInitiateDonationNoActiveGoal(t *testing.T) {
	svc := newTestService(newFakeStorage(), newFakeProvider())

	_, err := svc.InitiateDonation(context.Background(), 1, 300)
	if !errors.Is(err, ErrNoActiveGoal) {
		t.Fatalf("error = %v, want ErrNoActiveGoal", err)
	}
}

func TestInitiateDonationCreatesPendingRow(t *testing.T) {
	storage := newFakeStorage()
	goal := storage.addGoal(goals.Goal{Title: "Крыша", TargetAmount: 50000, IsActive: true})
	svc := newTestService(storage, newFakeProvider())

	pending, err := svc.InitiateDonation(context.Background(), 77, 300)
	if err != nil {
		t.Fatalf("InitiateDonation: %v", err)
	}

	if pending.Donation.Status != StatusPending {
		t.Fatalf("status = %q, want pending", pending.Donation.Status)
	}
	if pending.Donation.GoalID == nil || *pending.Donation.GoalID != goal.ID {
		t.Fatalf("goal id = %v, want %d", pending.Donation.GoalID, goal.ID)
	}
	if pending.GoalTitle != "Крыша" {
		t.Fatalf("goal title = %q", pending.GoalTitle)
	}
	if pending.PaymentURL == "" {
		t.Fatal("payment URL must be set")
	}
	// Донат записан до подтверждения
	if goal := storage.goals[goal.ID]; goal.CurrentAmount != 0 {
		t.Fatalf("goal amount must not change before confirmation, got %v", goal.CurrentAmount)
	}
}

func TestConfirmDonationAppliesAmountOnce(t *testing.T) {
	storage := newFakeStorage()
	goal := storage.addGoal(goals.Goal{Title: "Крыша", TargetAmount: 50000, IsActive: true})
	svc := newTestService(storage, newFakeProvider())

	pending, err := svc.InitiateDonation(context.Background(), 77, 300)
	if err != nil {
		t.Fatalf("InitiateDonation: %v", err)
	}
	providerID := pending.Donation.ProviderPaymentID

	got, err := svc.ConfirmDonation(context.Background(), providerID)
	if err != nil {
		t.Fatalf("ConfirmDonation: %v", err)
	}
	if got == nil || got.CurrentAmount != 300 {
		t.Fatalf("goal snapshot after confirm = %+v, want current 300", got)
	}

	// Повторная доставка того же подтверждения
	got, err = svc.ConfirmDonation(context.Background(), providerID)
	if err != nil {
		t.Fatalf("duplicate ConfirmDonation: %v", err)
	}
	if got.CurrentAmount != 300 {
		t.Fatalf("amount applied twice: %v", got.CurrentAmount)
	}
	if storage.goals[goal.ID].CurrentAmount != 300 {
		t.Fatalf("stored goal amount = %v, want 300", storage.goals[goal.ID].CurrentAmount)
	}
}

func TestConfirmDonationUnknownPayment(t *testing.T) {
	svc := newTestService(newFakeStorage(), newFakeProvider())

	_, err := svc.ConfirmDonation(context.Background(), "nope")
	if !errors.Is(err, ErrUnknownPayment) {
		t.Fatalf("error = %v, want ErrUnknownPayment", err)
	}
}

func TestConfirmDonationAfterFailure(t *testing.T) {
	storage := newFakeStorage()
	storage.addGoal(goals.Goal{Title: "Крыша", TargetAmount: 50000, IsActive: true})
	svc := newTestService(storage, newFakeProvider())

	pending, err := svc.InitiateDonation(context.Background(), 77, 300)
	if err != nil {
		t.Fatalf("InitiateDonation: %v", err)
	}
	providerID := pending.Donation.ProviderPaymentID

	if err := svc.FailDonation(context.Background(), providerID); err != nil {
		t.Fatalf("FailDonation: %v", err)
	}

	_, err = svc.ConfirmDonation(context.Background(), providerID)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("confirm after fail: error = %v, want ErrInvalidTransition", err)
	}
}

func TestFailDonationTransitions(t *testing.T) {
	storage := newFakeStorage()
	storage.addGoal(goals.Goal{Title: "Крыша", TargetAmount: 50000, IsActive: true})
	svc := newTestService(storage, newFakeProvider())

	pending, err := svc.InitiateDonation(context.Background(), 77, 300)
	if err != nil {
		t.Fatalf("InitiateDonation: %v", err)
	}
	providerID := pending.Donation.ProviderPaymentID

	if _, err := svc.ConfirmDonation(context.Background(), providerID); err != nil {
		t.Fatalf("ConfirmDonation: %v", err)
	}

	// Отказ после подтверждения невозможен
	err = svc.FailDonation(context.Background(), providerID)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("fail after confirm: error = %v, want ErrInvalidTransition", err)
	}
}

func TestCheckPaymentAppliesProviderStatus(t *testing.T) {
	tests := []struct {
		name           string
		providerStatus yoopayment.Status
		wantStatus     Status
	}{
		{name: "succeeded confirms", providerStatus: yoopayment.Succeeded, wantStatus: StatusConfirmed},
		{name: "canceled fails", providerStatus: yoopayment.Canceled, wantStatus: StatusFailed},
		{name: "pending stays pending", providerStatus: yoopayment.Pending, wantStatus: StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := newFakeStorage()
			storage.addGoal(goals.Goal{Title: "Крыша", TargetAmount: 50000, IsActive: true})
			provider := newFakeProvider()
			svc := newTestService(storage, provider)

			pending, err := svc.InitiateDonation(context.Background(), 77, 300)
			if err != nil {
				t.Fatalf("InitiateDonation: %v", err)
			}
			providerID := pending.Donation.ProviderPaymentID
			provider.statuses[providerID] = tt.providerStatus

			status, _, err := svc.CheckPayment(context.Background(), providerID)
			if err != nil {
				t.Fatalf("CheckPayment: %v", err)
			}
			if status != tt.wantStatus {
				t.Fatalf("status = %q, want %q", status, tt.wantStatus)
			}

			stored, _ := storage.GetDonation(context.Background(), GetCriteria{ID: lo.ToPtr(pending.Donation.ID)})
			if stored.Status != tt.wantStatus {
				t.Fatalf("stored status = %q, want %q", stored.Status, tt.wantStatus)
			}
		})
	}
}

func TestCheckPaymentMockMode(t *testing.T) {
	storage := newFakeStorage()
	storage.addGoal(goals.Goal{Title: "Крыша", TargetAmount: 50000, IsActive: true})
	svc := NewService(storage, newFakeProvider(), "RUB", 0, true, slog.Default())

	pending, err := svc.InitiateDonation(context.Background(), 77, 500)
	if err != nil {
		t.Fatalf("InitiateDonation: %v", err)
	}
	if pending.PaymentURL != "" {
		t.Fatal("mock donation must not have a provider URL")
	}

	status, goal, err := svc.CheckPayment(context.Background(), pending.Donation.ProviderPaymentID)
	if err != nil {
		t.Fatalf("CheckPayment: %v", err)
	}
	if status != StatusConfirmed {
		t.Fatalf("status = %q, want confirmed", status)
	}
	if goal == nil || goal.CurrentAmount != 500 {
		t.Fatalf("goal = %+v, want current 500", goal)
	}
}

func TestListPendingFiltersByStatus(t *testing.T) {
	storage := newFakeStorage()
	storage.addGoal(goals.Goal{Title: "Крыша", TargetAmount: 50000, IsActive: true})
	svc := newTestService(storage, newFakeProvider())

	first, err := svc.InitiateDonation(context.Background(), 1, 100)
	if err != nil {
		t.Fatalf("InitiateDonation: %v", err)
	}
	if _, err := svc.InitiateDonation(context.Background(), 2, 200); err != nil {
		t.Fatalf("InitiateDonation: %v", err)
	}
	if _, err := svc.ConfirmDonation(context.Background(), first.Donation.ProviderPaymentID); err != nil {
		t.Fatalf("ConfirmDonation: %v", err)
	}

	pending, err := svc.ListPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("got %d pending donations, want 1", len(pending))
	}
	if pending[0].Amount != 200 {
		t.Fatalf("pending amount = %v, want 200", pending[0].Amount)
	}
}
