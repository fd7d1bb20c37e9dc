package testutil

import (
	"ambica-diagnostic-service/internal/app/models"
	"ambica-diagnostic-service/internal/pkg/constvars"
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryPaymentRepository struct {
	Faults

	mu       sync.Mutex
	payments map[string]*models.Payment
	writes   int
}

func NewMemoryPaymentRepository() *MemoryPaymentRepository {
	return &MemoryPaymentRepository{payments: make(map[string]*models.Payment)}
}

func (r *MemoryPaymentRepository) EnsureIndexes(ctx context.Context) error {
	return r.take("EnsureIndexes")
}

// InsertPending enforces the unique order ref and the one pending record per
// appointment rule.
func (r *MemoryPaymentRepository) InsertPending(ctx context.Context, payment *models.Payment) (bool, error) {
	if err := r.take("InsertPending"); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.payments[payment.OrderRef]; ok {
		return false, nil
	}
	for _, existing := range r.payments {
		if existing.AppointmentID == payment.AppointmentID && existing.Status == constvars.PaymentStatusPending {
			return false, nil
		}
	}
	stored := *payment
	r.payments[payment.OrderRef] = &stored
	r.writes++
	return true, nil
}

func (r *MemoryPaymentRepository) FindByOrderRef(ctx context.Context, orderRef string) (*models.Payment, error) {
	if err := r.take("FindByOrderRef"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	payment, ok := r.payments[orderRef]
	if !ok {
		return nil, nil
	}
	out := *payment
	return &out, nil
}

func (r *MemoryPaymentRepository) FindPendingByAppointmentID(ctx context.Context, appointmentID string) (*models.Payment, error) {
	if err := r.take("FindPendingByAppointmentID"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, payment := range r.payments {
		if payment.AppointmentID == appointmentID && payment.Status == constvars.PaymentStatusPending {
			out := *payment
			return &out, nil
		}
	}
	return nil, nil
}

func (r *MemoryPaymentRepository) FindByUserID(ctx context.Context, userID string, limit int) ([]models.Payment, error) {
	if err := r.take("FindByUserID"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Payment
	for _, payment := range r.payments {
		if payment.UserID == userID {
			out = append(out, *payment)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryPaymentRepository) FindPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Payment, error) {
	if err := r.take("FindPendingCreatedBefore"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Payment
	for _, payment := range r.payments {
		if payment.Status == constvars.PaymentStatusPending && payment.CreatedAt.Before(cutoff) {
			out = append(out, *payment)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryPaymentRepository) CompletePending(ctx context.Context, orderRef, paymentRef, signature string, at time.Time) (*models.Payment, error) {
	if err := r.take("CompletePending"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	payment, ok := r.payments[orderRef]
	if !ok || payment.Status != constvars.PaymentStatusPending {
		return nil, nil
	}
	completedAt := at.UTC()
	payment.Status = constvars.PaymentStatusCompleted
	payment.PaymentRef = paymentRef
	payment.Signature = signature
	payment.CompletedAt = &completedAt
	payment.SetUpdatedAt(at)
	r.writes++

	out := *payment
	return &out, nil
}

func (r *MemoryPaymentRepository) FailPending(ctx context.Context, orderRef, reason string, at time.Time) (*models.Payment, error) {
	if err := r.take("FailPending"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	payment, ok := r.payments[orderRef]
	if !ok || payment.Status != constvars.PaymentStatusPending {
		return nil, nil
	}
	failedAt := at.UTC()
	payment.Status = constvars.PaymentStatusFailed
	payment.FailureReason = reason
	payment.FailedAt = &failedAt
	payment.SetUpdatedAt(at)
	r.writes++

	out := *payment
	return &out, nil
}

func (r *MemoryPaymentRepository) MarkRefundRequired(ctx context.Context, orderRef string, at time.Time) (*models.Payment, error) {
	if err := r.take("MarkRefundRequired"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	payment, ok := r.payments[orderRef]
	if !ok || payment.Status != constvars.PaymentStatusCompleted {
		return nil, nil
	}
	payment.RefundRequired = true
	payment.SetUpdatedAt(at)
	r.writes++

	out := *payment
	return &out, nil
}

func (r *MemoryPaymentRepository) RecordLateCapture(ctx context.Context, orderRef, paymentRef, signature string, at time.Time) (*models.Payment, error) {
	if err := r.take("RecordLateCapture"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	payment, ok := r.payments[orderRef]
	if !ok || payment.Status != constvars.PaymentStatusFailed || payment.PaymentRef != "" {
		return nil, nil
	}
	capturedAt := at.UTC()
	payment.PaymentRef = paymentRef
	payment.Signature = signature
	payment.RefundRequired = true
	payment.CapturedAt = &capturedAt
	payment.SetUpdatedAt(at)
	r.writes++

	out := *payment
	return &out, nil
}

// Put stores payment as is, bypassing every rule.
func (r *MemoryPaymentRepository) Put(payment models.Payment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[payment.OrderRef] = &payment
}

func (r *MemoryPaymentRepository) Get(orderRef string) *models.Payment {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.payments[orderRef]
	if !ok {
		return nil
	}
	out := *payment
	return &out
}

// Writes counts the mutations that matched.
func (r *MemoryPaymentRepository) Writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

func (r *MemoryPaymentRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payments)
}
