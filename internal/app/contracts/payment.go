package contracts

import (
	"ambica-diagnostic-service/internal/app/models"
	"ambica-diagnostic-service/internal/pkg/dto/requests"
	"context"
	"time"
)

type PaymentRepository interface {
	EnsureIndexes(ctx context.Context) error
	// InsertPending reports false when another pending record already exists
	// for the same appointment.
	InsertPending(ctx context.Context, payment *models.Payment) (bool, error)
	FindByOrderRef(ctx context.Context, orderRef string) (*models.Payment, error)
	FindPendingByAppointmentID(ctx context.Context, appointmentID string) (*models.Payment, error)
	FindByUserID(ctx context.Context, userID string, limit int) ([]models.Payment, error)
	FindPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Payment, error)
	// CompletePending moves a pending record to completed, returning nil when
	// the record was not pending.
	CompletePending(ctx context.Context, orderRef, paymentRef, signature string, at time.Time) (*models.Payment, error)
	// FailPending moves a pending record to failed, returning nil when the
	// record was not pending.
	FailPending(ctx context.Context, orderRef, reason string, at time.Time) (*models.Payment, error)
	MarkRefundRequired(ctx context.Context, orderRef string, at time.Time) (*models.Payment, error)
	// RecordLateCapture stores a capture on a failed record that has none yet
	// and flags it for refund, returning nil when nothing matched.
	RecordLateCapture(ctx context.Context, orderRef, paymentRef, signature string, at time.Time) (*models.Payment, error)
}

type PaymentUsecase interface {
	OpenOrder(ctx context.Context, request *requests.CreatePaymentOrder) (*models.Payment, error)
	Reconcile(ctx context.Context, request *requests.VerifyPayment) (*models.ReconcileOutcome, error)
	ExpirePending(ctx context.Context, orderRef, reason string) (*models.Payment, error)
	ExpireStale(ctx context.Context, olderThan time.Duration) (int, error)
	FindByUser(ctx context.Context, userID string) ([]models.Payment, error)
}
