package contracts

import (
	"ambica-diagnostic-service/internal/app/models"
	"ambica-diagnostic-service/internal/pkg/dto/requests"
	"context"
	"time"
)

type AppointmentRepository interface {
	EnsureIndexes(ctx context.Context) error
	Insert(ctx context.Context, appointment *models.Appointment) error
	FindByID(ctx context.Context, appointmentID string) (*models.Appointment, error)
	FindByIDs(ctx context.Context, appointmentIDs []string) ([]models.Appointment, error)
	FindByUserID(ctx context.Context, userID string, limit int) ([]models.Appointment, error)
	FindAll(ctx context.Context, page, pageSize int) ([]models.Appointment, int, error)
	// Transition applies the change only when the stored status is one of
	// transition.From and returns the updated document, or nil when nothing matched.
	Transition(ctx context.Context, appointmentID string, transition models.AppointmentTransition) (*models.Appointment, error)
	MarkSlotReleased(ctx context.Context, appointmentID string, at time.Time) error
	// MarkPaymentFailed flags an unpaid pending appointment after its payment order expired.
	MarkPaymentFailed(ctx context.Context, appointmentID string, at time.Time) (bool, error)
}

type AppointmentUsecase interface {
	Book(ctx context.Context, request *requests.CreateAppointment) (*models.Appointment, error)
	FindByID(ctx context.Context, actor requests.AppointmentActor, appointmentID string) (*models.Appointment, error)
	FindByUser(ctx context.Context, userID string) ([]models.Appointment, error)
	FindAll(ctx context.Context, pagination *requests.Pagination) ([]models.Appointment, int, error)
	Confirm(ctx context.Context, appointmentID, paymentRef string) (*models.Appointment, error)
	MarkCollected(ctx context.Context, appointmentID string) (*models.Appointment, error)
	Cancel(ctx context.Context, actor requests.AppointmentActor, appointmentID, reason string) (*models.Appointment, error)
	Complete(ctx context.Context, appointmentID, reportObjectKey string) (*models.Appointment, error)
	MarkPaymentFailed(ctx context.Context, appointmentID string) error
}
