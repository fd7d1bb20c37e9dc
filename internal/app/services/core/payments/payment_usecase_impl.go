package payments

import (
	"ambica-diagnostic-service/internal/app/config"
	"ambica-diagnostic-service/internal/app/contracts"
	"ambica-diagnostic-service/internal/app/models"
	"ambica-diagnostic-service/internal/pkg/clock"
	"ambica-diagnostic-service/internal/pkg/constvars"
	"ambica-diagnostic-service/internal/pkg/dto/requests"
	"ambica-diagnostic-service/internal/pkg/exceptions"
	"ambica-diagnostic-service/internal/pkg/retry"
	"ambica-diagnostic-service/internal/pkg/utils"
	"context"
	"math"
	"time"

	"go.uber.org/zap"
)

const (
	paymentHistoryLimit   = 1000
	expireStaleBatchSize  = 500
	staleExpiryReason     = "payment window elapsed"
	adminExpiryReason     = "expired by administrator"
	amountMatchTolerance  = 0.005
	defaultConfirmRetries = 4
	// hex encoded HMAC-SHA256
	signatureFormatTag    = "hexadecimal,len=64"
)

type paymentUsecase struct {
	PaymentRepository  contracts.PaymentRepository
	AppointmentUsecase contracts.AppointmentUsecase
	PaymentGateway     contracts.PaymentGateway
	EventPublisher     contracts.EventPublisher
	Clock              clock.Clock
	InternalConfig     *config.InternalConfig
	Log                *zap.Logger
}

func NewPaymentUsecase(
	paymentRepository contracts.PaymentRepository,
	appointmentUsecase contracts.AppointmentUsecase,
	paymentGateway contracts.PaymentGateway,
	eventPublisher contracts.EventPublisher,
	clk clock.Clock,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.PaymentUsecase {
	return &paymentUsecase{
		PaymentRepository:  paymentRepository,
		AppointmentUsecase: appointmentUsecase,
		PaymentGateway:     paymentGateway,
		EventPublisher:     eventPublisher,
		Clock:              clk,
		InternalConfig:     internalConfig,
		Log:                logger,
	}
}

// OpenOrder returns the pending payment order of an online appointment,
// creating it at the gateway when none exists yet.
func (uc *paymentUsecase) OpenOrder(ctx context.Context, request *requests.CreatePaymentOrder) (*models.Payment, error) {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("paymentUsecase.OpenOrder called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, request.UserID),
		zap.String(constvars.LoggingAppointmentIDKey, request.AppointmentID),
		zap.Float64(constvars.LoggingAmountKey, request.Amount),
	)

	if err := utils.ValidateStruct(request); err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}

	appointment, err := uc.AppointmentUsecase.FindByID(ctx, requests.AppointmentActor{UserID: request.UserID}, request.AppointmentID)
	if err != nil {
		uc.Log.Error("paymentUsecase.OpenOrder error calling AppointmentUsecase.FindByID",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	switch {
	case !appointment.IsOnline():
		return nil, exceptions.ErrPaymentModeMismatch(nil, constvars.ErrClientPaymentModeNotOnline, appointment.PaymentMode)
	case appointment.IsPaid():
		return nil, exceptions.ErrAppointmentAlreadyPaid(nil, appointment.ID)
	case appointment.Status != constvars.AppointmentStatusPending:
		return nil, exceptions.ErrAppointmentInvalidTransition(nil, appointment.Status, constvars.AppointmentStatusConfirmed)
	case math.Abs(appointment.Amount-request.Amount) > amountMatchTolerance:
		return nil, exceptions.ErrPaymentAmountMismatch(nil, request.Amount, appointment.Amount)
	}

	existing, err := uc.PaymentRepository.FindPendingByAppointmentID(ctx, appointment.ID)
	if err != nil {
		uc.Log.Error("paymentUsecase.OpenOrder error calling PaymentRepository.FindPendingByAppointmentID",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if existing != nil {
		uc.Log.Info("paymentUsecase.OpenOrder returning existing pending order",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingOrderRefKey, existing.OrderRef),
		)
		return existing, nil
	}

	currency := uc.InternalConfig.PaymentGateway.Currency
	if currency == "" {
		currency = constvars.AppDefaultCurrency
	}
	amountInMinorUnits := int64(math.Round(request.Amount * constvars.AppAmountMinorUnitRatio))

	gatewayCtx, cancel := context.WithTimeout(ctx, uc.InternalConfig.App.PaymentGatewayTimeout())
	order, err := uc.PaymentGateway.CreateOrder(gatewayCtx, amountInMinorUnits, currency, utils.GenerateReceipt(appointment.ID))
	cancel()
	if err != nil {
		uc.Log.Error("paymentUsecase.OpenOrder error calling PaymentGateway.CreateOrder",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
			zap.Error(err),
		)
		return nil, err
	}

	payment := &models.Payment{
		ID:            utils.GenerateID(),
		UserID:        request.UserID,
		AppointmentID: appointment.ID,
		OrderRef:      order.ID,
		Status:        constvars.PaymentStatusPending,
		Amount:        request.Amount,
		GatewayAmount: amountInMinorUnits,
		Currency:      currency,
		PaymentMode:   constvars.PaymentModeOnline,
	}
	payment.SetCreatedAtUpdatedAt(uc.Clock.Now())

	inserted, err := uc.PaymentRepository.InsertPending(ctx, payment)
	if err != nil {
		uc.Log.Error("paymentUsecase.OpenOrder error calling PaymentRepository.InsertPending",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingOrderRefKey, order.ID),
			zap.Error(err),
		)
		return nil, err
	}

	if !inserted {
		winner, err := uc.PaymentRepository.FindPendingByAppointmentID(ctx, appointment.ID)
		if err != nil {
			return nil, err
		}
		if winner == nil {
			return nil, exceptions.ErrPaymentOrderConflict(nil, appointment.ID)
		}
		uc.Log.Info("paymentUsecase.OpenOrder lost concurrent open, returning winner",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingOrderRefKey, winner.OrderRef),
			zap.String("discarded_order_ref", order.ID),
		)
		return winner, nil
	}

	uc.Log.Info("paymentUsecase.OpenOrder succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingOrderRefKey, payment.OrderRef),
		zap.Int64(constvars.LoggingAmountKey, amountInMinorUnits),
	)
	return payment, nil
}

// Reconcile applies a signed gateway success callback. Replays of an already
// completed order succeed without writing.
func (uc *paymentUsecase) Reconcile(ctx context.Context, request *requests.VerifyPayment) (*models.ReconcileOutcome, error) {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("paymentUsecase.Reconcile called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingOrderRefKey, request.RazorpayOrderID),
		zap.String(constvars.LoggingPaymentRefKey, request.RazorpayPaymentID),
	)

	if err := utils.ValidateStruct(request); err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}

	valid, err := uc.PaymentGateway.VerifySignature(request.RazorpayOrderID, request.RazorpayPaymentID, request.RazorpaySignature)
	if err != nil {
		uc.Log.Error("paymentUsecase.Reconcile error calling PaymentGateway.VerifySignature",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if !valid {
		reason := signatureRejectReason(request.RazorpaySignature)
		utils.LogSecurityEvent(uc.Log, "payment_signature_rejected", requestID, "high",
			zap.String(constvars.LoggingOrderRefKey, request.RazorpayOrderID),
			zap.String(constvars.LoggingPaymentRefKey, request.RazorpayPaymentID),
			zap.String("reason", reason),
		)
		return nil, exceptions.ErrPaymentVerificationFailed(nil, reason)
	}

	payment, err := uc.PaymentRepository.CompletePending(ctx, request.RazorpayOrderID, request.RazorpayPaymentID, request.RazorpaySignature, uc.Clock.Now())
	if err != nil {
		uc.Log.Error("paymentUsecase.Reconcile error calling PaymentRepository.CompletePending",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingOrderRefKey, request.RazorpayOrderID),
			zap.Error(err),
		)
		return nil, err
	}

	replayed := false
	if payment == nil {
		current, err := uc.PaymentRepository.FindByOrderRef(ctx, request.RazorpayOrderID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, exceptions.ErrPaymentNotFound(nil, request.RazorpayOrderID)
		}
		if current.Status == constvars.PaymentStatusFailed {
			return uc.reconcileLateCapture(ctx, request, current)
		}
		payment, err = uc.classifyUnmatchedReconcile(ctx, request, current)
		if err != nil {
			return nil, err
		}
		replayed = true
	}

	if request.AppointmentID != "" && request.AppointmentID != payment.AppointmentID {
		uc.Log.Warn("paymentUsecase.Reconcile appointment id in request differs from payment record",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingOrderRefKey, payment.OrderRef),
			zap.String(constvars.LoggingAppointmentIDKey, payment.AppointmentID),
			zap.String("requested_appointment_id", request.AppointmentID),
		)
	}

	if !replayed {
		uc.publish(ctx, constvars.EventPaymentCompleted, payment)
		utils.LogBusinessEvent(uc.Log, constvars.EventPaymentCompleted, requestID,
			zap.String(constvars.LoggingOrderRefKey, payment.OrderRef),
			zap.String(constvars.LoggingPaymentRefKey, payment.PaymentRef),
			zap.Float64(constvars.LoggingAmountKey, payment.Amount),
		)
	}

	outcome := &models.ReconcileOutcome{
		Payment:  payment,
		Replayed: replayed,
	}

	appointment, err := uc.confirmAppointment(ctx, payment)
	if err == nil {
		outcome.Appointment = appointment
		return outcome, nil
	}
	if !exceptions.HasCode(err, constvars.ErrCodeInvalidTransition) {
		uc.Log.Error("paymentUsecase.Reconcile error confirming appointment",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, payment.AppointmentID),
			zap.Error(err),
		)
		return nil, err
	}

	appointment, findErr := uc.AppointmentUsecase.FindByID(ctx, requests.AppointmentActor{IsAdmin: true}, payment.AppointmentID)
	if findErr != nil {
		return nil, findErr
	}
	if appointment.Status != constvars.AppointmentStatusCancelled {
		return nil, err
	}

	outcome.Appointment = appointment
	outcome.RefundRequired = true
	if !payment.RefundRequired {
		flagged, err := uc.PaymentRepository.MarkRefundRequired(ctx, payment.OrderRef, uc.Clock.Now())
		if err != nil {
			uc.Log.Error("paymentUsecase.Reconcile error calling PaymentRepository.MarkRefundRequired",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingOrderRefKey, payment.OrderRef),
				zap.Error(err),
			)
			return nil, err
		}
		if flagged != nil {
			outcome.Payment = flagged
		}
		uc.publish(ctx, constvars.EventPaymentRefundRequired, outcome.Payment)
	}

	uc.Log.Warn("paymentUsecase.Reconcile payment captured for cancelled appointment, refund required",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingOrderRefKey, payment.OrderRef),
		zap.String(constvars.LoggingAppointmentIDKey, payment.AppointmentID),
	)
	return outcome, nil
}

// classifyUnmatchedReconcile explains why CompletePending matched nothing.
// It returns the stored payment only for a replay of the same capture.
func (uc *paymentUsecase) classifyUnmatchedReconcile(ctx context.Context, request *requests.VerifyPayment, current *models.Payment) (*models.Payment, error) {
	switch current.Status {
	case constvars.PaymentStatusCompleted:
		if current.PaymentRef != request.RazorpayPaymentID {
			return nil, exceptions.ErrPaymentInvalidTransition(nil, current.Status, constvars.PaymentStatusCompleted)
		}
		uc.Log.Info("paymentUsecase.Reconcile replay of completed payment",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.String(constvars.LoggingOrderRefKey, current.OrderRef),
		)
		return current, nil
	default:
		return nil, exceptions.ErrPaymentInvalidTransition(nil, current.Status, constvars.PaymentStatusCompleted)
	}
}

// reconcileLateCapture handles a capture reported after the order expired.
// The record stays failed, keeps the capture and is flagged for refund; the
// appointment is not confirmed.
func (uc *paymentUsecase) reconcileLateCapture(ctx context.Context, request *requests.VerifyPayment, current *models.Payment) (*models.ReconcileOutcome, error) {
	requestID := utils.GetRequestID(ctx)

	payment := current
	replayed := true
	if current.PaymentRef == "" {
		recorded, err := uc.PaymentRepository.RecordLateCapture(ctx, request.RazorpayOrderID, request.RazorpayPaymentID, request.RazorpaySignature, uc.Clock.Now())
		if err != nil {
			uc.Log.Error("paymentUsecase.Reconcile error calling PaymentRepository.RecordLateCapture",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingOrderRefKey, request.RazorpayOrderID),
				zap.Error(err),
			)
			return nil, err
		}
		if recorded != nil {
			payment = recorded
			replayed = false
		} else {
			payment, err = uc.PaymentRepository.FindByOrderRef(ctx, request.RazorpayOrderID)
			if err != nil {
				return nil, err
			}
			if payment == nil {
				return nil, exceptions.ErrPaymentNotFound(nil, request.RazorpayOrderID)
			}
		}
	}

	if payment.Status != constvars.PaymentStatusFailed || payment.PaymentRef != request.RazorpayPaymentID {
		return nil, exceptions.ErrPaymentInvalidTransition(nil, payment.Status, constvars.PaymentStatusCompleted)
	}

	if !replayed {
		uc.publish(ctx, constvars.EventPaymentRefundRequired, payment)
		uc.Log.Warn("paymentUsecase.Reconcile payment captured after order expired, refund required",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingOrderRefKey, payment.OrderRef),
			zap.String(constvars.LoggingPaymentRefKey, payment.PaymentRef),
			zap.String(constvars.LoggingAppointmentIDKey, payment.AppointmentID),
		)
	}

	outcome := &models.ReconcileOutcome{
		Payment:        payment,
		Replayed:       replayed,
		RefundRequired: true,
	}
	appointment, err := uc.AppointmentUsecase.FindByID(ctx, requests.AppointmentActor{IsAdmin: true}, payment.AppointmentID)
	if err != nil {
		uc.Log.Warn("paymentUsecase.Reconcile cannot load appointment of late capture",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, payment.AppointmentID),
			zap.Error(err),
		)
		return outcome, nil
	}
	outcome.Appointment = appointment
	return outcome, nil
}

func signatureRejectReason(signature string) string {
	if utils.ValidateVar(signature, signatureFormatTag) != nil {
		return constvars.SignatureRejectMalformed
	}
	return constvars.SignatureRejectMismatch
}

func (uc *paymentUsecase) confirmAppointment(ctx context.Context, payment *models.Payment) (*models.Appointment, error) {
	requestID := utils.GetRequestID(ctx)

	retryConfig := retry.DefaultConfig()
	if attempts := uc.InternalConfig.Worker.ReconcileConfirmMaxAttempts; attempts > 0 {
		retryConfig.MaxAttempts = attempts
	} else {
		retryConfig.MaxAttempts = defaultConfirmRetries
	}
	if delay := uc.InternalConfig.Worker.ReconcileConfirmInitialDelayInMs; delay > 0 {
		retryConfig.InitialDelay = time.Duration(delay) * time.Millisecond
	}
	retryConfig.Retryable = exceptions.IsRetryable

	var appointment *models.Appointment
	err := retry.DoWithLog(ctx, retryConfig, func() error {
		var err error
		appointment, err = uc.AppointmentUsecase.Confirm(ctx, payment.AppointmentID, payment.PaymentRef)
		return err
	}, func(attempt int, err error, nextDelay time.Duration) {
		uc.Log.Warn("paymentUsecase.confirmAppointment retrying",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, payment.AppointmentID),
			zap.Int(constvars.LoggingAttemptKey, attempt),
			zap.Duration("next_delay", nextDelay),
			zap.Error(err),
		)
	})
	return appointment, err
}

func (uc *paymentUsecase) ExpirePending(ctx context.Context, orderRef, reason string) (*models.Payment, error) {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("paymentUsecase.ExpirePending called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingOrderRefKey, orderRef),
	)

	if reason == "" {
		reason = adminExpiryReason
	}

	payment, expired, err := uc.expire(ctx, orderRef, reason)
	if err != nil {
		return nil, err
	}
	if expired {
		return payment, nil
	}

	switch payment.Status {
	case constvars.PaymentStatusFailed:
		return payment, nil
	default:
		return nil, exceptions.ErrPaymentInvalidTransition(nil, payment.Status, constvars.PaymentStatusFailed)
	}
}

// ExpireStale fails every pending order created more than olderThan ago.
func (uc *paymentUsecase) ExpireStale(ctx context.Context, olderThan time.Duration) (int, error) {
	requestID := utils.GetRequestID(ctx)
	cutoff := uc.Clock.Now().Add(-olderThan)
	uc.Log.Info("paymentUsecase.ExpireStale called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Duration(constvars.LoggingOlderThanKey, olderThan),
	)

	count := 0
	for {
		payments, err := uc.PaymentRepository.FindPendingCreatedBefore(ctx, cutoff, expireStaleBatchSize)
		if err != nil {
			uc.Log.Error("paymentUsecase.ExpireStale error calling PaymentRepository.FindPendingCreatedBefore",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
			return count, err
		}

		expiredInBatch := 0
		for _, payment := range payments {
			_, expired, err := uc.expire(ctx, payment.OrderRef, staleExpiryReason)
			if err != nil {
				return count, err
			}
			if expired {
				expiredInBatch++
			}
		}
		count += expiredInBatch

		// a short batch is the last one
		if len(payments) < expireStaleBatchSize || expiredInBatch == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return count, err
		}
	}

	uc.Log.Info("paymentUsecase.ExpireStale succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, count),
	)
	return count, nil
}

// expire reports true when this call moved the order out of pending. When it
// did not, the stored record is returned as is.
func (uc *paymentUsecase) expire(ctx context.Context, orderRef, reason string) (*models.Payment, bool, error) {
	requestID := utils.GetRequestID(ctx)

	payment, err := uc.PaymentRepository.FailPending(ctx, orderRef, reason, uc.Clock.Now())
	if err != nil {
		uc.Log.Error("paymentUsecase.expire error calling PaymentRepository.FailPending",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingOrderRefKey, orderRef),
			zap.Error(err),
		)
		return nil, false, err
	}

	if payment == nil {
		current, err := uc.PaymentRepository.FindByOrderRef(ctx, orderRef)
		if err != nil {
			return nil, false, err
		}
		if current == nil {
			return nil, false, exceptions.ErrPaymentNotFound(nil, orderRef)
		}
		return current, false, nil
	}

	if err := uc.AppointmentUsecase.MarkPaymentFailed(ctx, payment.AppointmentID); err != nil {
		uc.Log.Warn("paymentUsecase.expire error calling AppointmentUsecase.MarkPaymentFailed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, payment.AppointmentID),
			zap.Error(err),
		)
	}

	uc.publish(ctx, constvars.EventPaymentExpired, payment)
	uc.Log.Info("paymentUsecase.expire payment order expired",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingOrderRefKey, orderRef),
	)
	return payment, true, nil
}

func (uc *paymentUsecase) FindByUser(ctx context.Context, userID string) ([]models.Payment, error) {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("paymentUsecase.FindByUser called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, userID),
	)

	payments, err := uc.PaymentRepository.FindByUserID(ctx, userID, paymentHistoryLimit)
	if err != nil {
		uc.Log.Error("paymentUsecase.FindByUser error calling PaymentRepository.FindByUserID",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	return payments, nil
}

func (uc *paymentUsecase) publish(ctx context.Context, eventType string, payment *models.Payment) {
	if err := uc.EventPublisher.Publish(ctx, eventType, payment); err != nil {
		uc.Log.Warn("paymentUsecase.publish event dropped",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.String(constvars.LoggingEventKey, eventType),
			zap.String(constvars.LoggingOrderRefKey, payment.OrderRef),
			zap.Error(err),
		)
	}
}
