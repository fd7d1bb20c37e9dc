package appointments

import (
	"ambica-diagnostic-service/internal/app/contracts"
	"ambica-diagnostic-service/internal/app/models"
	"ambica-diagnostic-service/internal/pkg/clock"
	"ambica-diagnostic-service/internal/pkg/constvars"
	"ambica-diagnostic-service/internal/pkg/dto/requests"
	"ambica-diagnostic-service/internal/pkg/exceptions"
	"ambica-diagnostic-service/internal/pkg/utils"
	"context"

	"go.uber.org/zap"
)

const userHistoryLimit = 1000

type appointmentUsecase struct {
	AppointmentRepository contracts.AppointmentRepository
	SlotUsecase           contracts.SlotUsecase
	ReportStorage         contracts.ReportStorage
	EventPublisher        contracts.EventPublisher
	Clock                 clock.Clock
	Log                   *zap.Logger
}

func NewAppointmentUsecase(
	appointmentRepository contracts.AppointmentRepository,
	slotUsecase contracts.SlotUsecase,
	reportStorage contracts.ReportStorage,
	eventPublisher contracts.EventPublisher,
	clk clock.Clock,
	logger *zap.Logger,
) contracts.AppointmentUsecase {
	return &appointmentUsecase{
		AppointmentRepository: appointmentRepository,
		SlotUsecase:           slotUsecase,
		ReportStorage:         reportStorage,
		EventPublisher:        eventPublisher,
		Clock:                 clk,
		Log:                   logger,
	}
}

// Book reserves the slot first and then stores the appointment as pending.
// If the insert fails the grant is handed back.
func (uc *appointmentUsecase) Book(ctx context.Context, request *requests.CreateAppointment) (*models.Appointment, error) {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("appointmentUsecase.Book called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, request.UserID),
		zap.String(constvars.LoggingSlotDateKey, request.Date),
		zap.String(constvars.LoggingTimeSlotKey, request.TimeSlot),
	)

	if err := utils.ValidateStruct(request); err != nil {
		uc.Log.Error("appointmentUsecase.Book validation failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrInputValidation(err)
	}

	appointmentID := utils.GenerateID()
	grant, err := uc.SlotUsecase.TryReserve(ctx, request.Date, request.TimeSlot, appointmentID)
	if err != nil {
		uc.Log.Error("appointmentUsecase.Book error calling SlotUsecase.TryReserve",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.Error(err),
		)
		return nil, err
	}

	appointment := &models.Appointment{
		ID:            appointmentID,
		BookingID:     utils.GenerateBookingID(),
		UserID:        request.UserID,
		UserName:      request.UserName,
		UserEmail:     request.UserEmail,
		UserPhone:     request.UserPhone,
		TestType:      request.TestType,
		TestID:        request.TestID,
		TestName:      request.TestName,
		Date:          grant.Date,
		TimeSlot:      grant.TimeSlot,
		PaymentMode:   request.PaymentMode,
		PaymentStatus: constvars.PaymentStatusPending,
		Amount:        request.Amount,
		Status:        constvars.AppointmentStatusPending,
	}
	appointment.SetCreatedAtUpdatedAt(uc.Clock.Now())

	err = uc.AppointmentRepository.Insert(ctx, appointment)
	if err != nil {
		uc.Log.Error("appointmentUsecase.Book error calling AppointmentRepository.Insert",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.Error(err),
		)
		if _, releaseErr := uc.SlotUsecase.Release(ctx, grant.Date, grant.TimeSlot, appointmentID); releaseErr != nil {
			// the slot sweeper reclaims the grant later
			uc.Log.Error(constvars.ErrDevAppointmentCompensateFailed,
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingSlotKey, grant.Key()),
				zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
				zap.Error(releaseErr),
			)
		}
		return nil, err
	}

	uc.publish(ctx, constvars.EventAppointmentBooked, appointment)
	utils.LogBusinessEvent(uc.Log, constvars.EventAppointmentBooked, requestID,
		zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
		zap.String(constvars.LoggingBookingIDKey, appointment.BookingID),
		zap.String(constvars.LoggingSlotKey, grant.Key()),
	)
	return appointment, nil
}

func (uc *appointmentUsecase) FindByID(ctx context.Context, actor requests.AppointmentActor, appointmentID string) (*models.Appointment, error) {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("appointmentUsecase.FindByID called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
	)

	appointment, err := uc.getAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin && !appointment.IsOwnedBy(actor.UserID) {
		uc.Log.Warn("appointmentUsecase.FindByID actor does not own appointment",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingUserIDKey, actor.UserID),
			zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
		)
		return nil, exceptions.ErrNotResourceOwner(nil, actor.UserID, "appointment "+appointmentID)
	}
	return appointment, nil
}

func (uc *appointmentUsecase) FindByUser(ctx context.Context, userID string) ([]models.Appointment, error) {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("appointmentUsecase.FindByUser called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, userID),
	)

	appointments, err := uc.AppointmentRepository.FindByUserID(ctx, userID, userHistoryLimit)
	if err != nil {
		uc.Log.Error("appointmentUsecase.FindByUser error calling AppointmentRepository.FindByUserID",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if appointments == nil {
		appointments = []models.Appointment{}
	}
	return appointments, nil
}

func (uc *appointmentUsecase) FindAll(ctx context.Context, pagination *requests.Pagination) ([]models.Appointment, int, error) {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("appointmentUsecase.FindAll called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int("page", pagination.Page),
		zap.Int("page_size", pagination.PageSize),
	)

	appointments, total, err := uc.AppointmentRepository.FindAll(ctx, pagination.Page, pagination.PageSize)
	if err != nil {
		uc.Log.Error("appointmentUsecase.FindAll error calling AppointmentRepository.FindAll",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, 0, err
	}
	if appointments == nil {
		appointments = []models.Appointment{}
	}
	return appointments, total, nil
}

// Confirm moves a pending appointment to confirmed after its online payment
// was reconciled. Confirming an already confirmed appointment is a no-op.
func (uc *appointmentUsecase) Confirm(ctx context.Context, appointmentID, paymentRef string) (*models.Appointment, error) {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("appointmentUsecase.Confirm called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
		zap.String(constvars.LoggingPaymentRefKey, paymentRef),
	)

	return uc.confirm(ctx, appointmentID, paymentRef)
}

// MarkCollected confirms an at_center appointment once payment was taken at the desk.
func (uc *appointmentUsecase) MarkCollected(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("appointmentUsecase.MarkCollected called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
	)

	appointment, err := uc.getAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.PaymentMode != constvars.PaymentModeAtCenter {
		return nil, exceptions.ErrPaymentModeMismatch(nil, constvars.ErrClientPaymentModeNotAtCenter, appointment.PaymentMode)
	}

	return uc.confirm(ctx, appointmentID, "")
}

func (uc *appointmentUsecase) confirm(ctx context.Context, appointmentID, paymentRef string) (*models.Appointment, error) {
	requestID := utils.GetRequestID(ctx)

	updated, err := uc.AppointmentRepository.Transition(ctx, appointmentID, models.AppointmentTransition{
		From:          []string{constvars.AppointmentStatusPending},
		To:            constvars.AppointmentStatusConfirmed,
		PaymentStatus: constvars.PaymentStatusCompleted,
		PaymentID:     paymentRef,
		At:            uc.Clock.Now(),
	})
	if err != nil {
		uc.Log.Error("appointmentUsecase.confirm error calling AppointmentRepository.Transition",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.Error(err),
		)
		return nil, err
	}

	if updated == nil {
		current, err := uc.getAppointment(ctx, appointmentID)
		if err != nil {
			return nil, err
		}
		if current.Status == constvars.AppointmentStatusConfirmed {
			uc.Log.Info("appointmentUsecase.confirm already confirmed",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
			)
			return current, nil
		}
		return nil, exceptions.ErrAppointmentInvalidTransition(nil, current.Status, constvars.AppointmentStatusConfirmed)
	}

	uc.publish(ctx, constvars.EventAppointmentConfirmed, updated)
	uc.Log.Info("appointmentUsecase.confirm succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
	)
	return updated, nil
}

// Cancel moves a pending or confirmed appointment to cancelled and returns its
// slot unit. Only the caller that wins the status change releases the slot.
func (uc *appointmentUsecase) Cancel(ctx context.Context, actor requests.AppointmentActor, appointmentID, reason string) (*models.Appointment, error) {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("appointmentUsecase.Cancel called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
		zap.String(constvars.LoggingUserIDKey, actor.UserID),
	)

	appointment, err := uc.getAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && !appointment.IsOwnedBy(actor.UserID) {
		return nil, exceptions.ErrNotResourceOwner(nil, actor.UserID, "appointment "+appointmentID)
	}

	cancelledBy := constvars.RolePatient
	if actor.IsAdmin {
		cancelledBy = constvars.RoleAdmin
	}

	updated, err := uc.AppointmentRepository.Transition(ctx, appointmentID, models.AppointmentTransition{
		From:   []string{constvars.AppointmentStatusPending, constvars.AppointmentStatusConfirmed},
		To:     constvars.AppointmentStatusCancelled,
		Reason: reason,
		Actor:  cancelledBy,
		At:     uc.Clock.Now(),
	})
	if err != nil {
		uc.Log.Error("appointmentUsecase.Cancel error calling AppointmentRepository.Transition",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.Error(err),
		)
		return nil, err
	}

	if updated == nil {
		current, err := uc.getAppointment(ctx, appointmentID)
		if err != nil {
			return nil, err
		}
		if current.Status == constvars.AppointmentStatusCancelled {
			uc.Log.Info("appointmentUsecase.Cancel already cancelled",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
			)
			return current, nil
		}
		return nil, exceptions.ErrAppointmentInvalidTransition(nil, current.Status, constvars.AppointmentStatusCancelled)
	}

	_, err = uc.SlotUsecase.Release(ctx, updated.Date, updated.TimeSlot, updated.ID)
	if err != nil {
		// the appointment is cancelled; the slot sweeper returns the unit later
		uc.Log.Error("appointmentUsecase.Cancel error calling SlotUsecase.Release",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.Error(err),
		)
	} else {
		releasedAt := uc.Clock.Now()
		if err := uc.AppointmentRepository.MarkSlotReleased(ctx, updated.ID, releasedAt); err != nil {
			uc.Log.Warn("appointmentUsecase.Cancel error calling AppointmentRepository.MarkSlotReleased",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
				zap.Error(err),
			)
		} else {
			updated.SlotReleasedAt = &releasedAt
		}
	}

	uc.publish(ctx, constvars.EventAppointmentCancelled, updated)
	utils.LogBusinessEvent(uc.Log, constvars.EventAppointmentCancelled, requestID,
		zap.String(constvars.LoggingAppointmentIDKey, updated.ID),
		zap.String("cancelled_by", cancelledBy),
	)
	return updated, nil
}

// Complete closes a confirmed appointment once its report object is stored.
func (uc *appointmentUsecase) Complete(ctx context.Context, appointmentID, reportObjectKey string) (*models.Appointment, error) {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("appointmentUsecase.Complete called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
		zap.String(constvars.LoggingObjectKey, reportObjectKey),
	)

	if err := utils.ValidateVar(reportObjectKey, "required,max=512"); err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}

	appointment, err := uc.getAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	switch appointment.Status {
	case constvars.AppointmentStatusCompleted:
		return appointment, nil
	case constvars.AppointmentStatusConfirmed:
	default:
		return nil, exceptions.ErrAppointmentInvalidTransition(nil, appointment.Status, constvars.AppointmentStatusCompleted)
	}

	exists, err := uc.ReportStorage.ObjectExists(ctx, reportObjectKey)
	if err != nil {
		uc.Log.Error("appointmentUsecase.Complete error calling ReportStorage.ObjectExists",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingObjectKey, reportObjectKey),
			zap.Error(err),
		)
		return nil, err
	}
	if !exists {
		return nil, exceptions.ErrReportObjectMissing(nil, reportObjectKey, uc.ReportStorage.BucketName())
	}

	updated, err := uc.AppointmentRepository.Transition(ctx, appointmentID, models.AppointmentTransition{
		From:      []string{constvars.AppointmentStatusConfirmed},
		To:        constvars.AppointmentStatusCompleted,
		ReportKey: reportObjectKey,
		At:        uc.Clock.Now(),
	})
	if err != nil {
		uc.Log.Error("appointmentUsecase.Complete error calling AppointmentRepository.Transition",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.Error(err),
		)
		return nil, err
	}

	if updated == nil {
		current, err := uc.getAppointment(ctx, appointmentID)
		if err != nil {
			return nil, err
		}
		if current.Status == constvars.AppointmentStatusCompleted {
			return current, nil
		}
		return nil, exceptions.ErrAppointmentInvalidTransition(nil, current.Status, constvars.AppointmentStatusCompleted)
	}

	uc.publish(ctx, constvars.EventAppointmentCompleted, updated)
	uc.Log.Info("appointmentUsecase.Complete succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
	)
	return updated, nil
}

func (uc *appointmentUsecase) MarkPaymentFailed(ctx context.Context, appointmentID string) error {
	requestID := utils.GetRequestID(ctx)

	marked, err := uc.AppointmentRepository.MarkPaymentFailed(ctx, appointmentID, uc.Clock.Now())
	if err != nil {
		uc.Log.Error("appointmentUsecase.MarkPaymentFailed error calling AppointmentRepository.MarkPaymentFailed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.Error(err),
		)
		return err
	}

	uc.Log.Info("appointmentUsecase.MarkPaymentFailed finished",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
		zap.Bool(constvars.LoggingSuccessKey, marked),
	)
	return nil
}

func (uc *appointmentUsecase) getAppointment(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	appointment, err := uc.AppointmentRepository.FindByID(ctx, appointmentID)
	if err != nil {
		uc.Log.Error("appointmentUsecase.getAppointment error calling AppointmentRepository.FindByID",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.Error(err),
		)
		return nil, err
	}
	if appointment == nil {
		return nil, exceptions.ErrAppointmentNotFound(nil, appointmentID)
	}
	return appointment, nil
}

func (uc *appointmentUsecase) publish(ctx context.Context, eventType string, appointment *models.Appointment) {
	if err := uc.EventPublisher.Publish(ctx, eventType, appointment); err != nil {
		uc.Log.Warn("appointmentUsecase.publish event dropped",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.String(constvars.LoggingEventKey, eventType),
			zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
			zap.Error(err),
		)
	}
}
