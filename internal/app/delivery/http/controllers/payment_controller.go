package controllers

import (
	"ambica-diagnostic-service/internal/app/config"
	"ambica-diagnostic-service/internal/app/contracts"
	"ambica-diagnostic-service/internal/pkg/constvars"
	"ambica-diagnostic-service/internal/pkg/dto/requests"
	"ambica-diagnostic-service/internal/pkg/dto/responses"
	"ambica-diagnostic-service/internal/pkg/exceptions"
	"ambica-diagnostic-service/internal/pkg/utils"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type PaymentController struct {
	Log            *zap.Logger
	PaymentUsecase contracts.PaymentUsecase
	InternalConfig *config.InternalConfig
}

func NewPaymentController(logger *zap.Logger, paymentUsecase contracts.PaymentUsecase, internalConfig *config.InternalConfig) *PaymentController {
	return &PaymentController{
		Log:            logger,
		PaymentUsecase: paymentUsecase,
		InternalConfig: internalConfig,
	}
}

func (ctrl *PaymentController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	requestID, claims, ok := requestIdentity(ctrl.Log, w, r, "PaymentController.CreateOrder")
	if !ok {
		return
	}

	request := new(requests.CreatePaymentOrder)
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		ctrl.Log.Error("PaymentController.CreateOrder Failed to decode JSON request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err))
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}
	request.UserID = claims.UserID()

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout(ctrl.InternalConfig))
	defer cancel()

	payment, err := ctrl.PaymentUsecase.OpenOrder(ctx, request)
	if err != nil {
		ctrl.Log.Error("PaymentController.CreateOrder PaymentUsecase.OpenOrder error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, request.AppointmentID),
			zap.Error(err))
		writeUsecaseError(ctrl.Log, w, err)
		return
	}

	response := responses.PaymentOrder{
		OrderID:       payment.OrderRef,
		AppointmentID: payment.AppointmentID,
		Amount:        payment.Amount,
		GatewayAmount: payment.GatewayAmount,
		Currency:      payment.Currency,
		KeyID:         ctrl.InternalConfig.PaymentGateway.KeyID,
		Status:        payment.Status,
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.CreatePaymentOrderSuccessMessage, response)
}

func (ctrl *PaymentController) Verify(w http.ResponseWriter, r *http.Request) {
	requestID, claims, ok := requestIdentity(ctrl.Log, w, r, "PaymentController.Verify")
	if !ok {
		return
	}

	request := new(requests.VerifyPayment)
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		ctrl.Log.Error("PaymentController.Verify Failed to decode JSON request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err))
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout(ctrl.InternalConfig))
	defer cancel()

	outcome, err := ctrl.PaymentUsecase.Reconcile(ctx, request)
	if err != nil {
		ctrl.Log.Error("PaymentController.Verify PaymentUsecase.Reconcile error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingUserIDKey, claims.UserID()),
			zap.String(constvars.LoggingOrderRefKey, request.RazorpayOrderID),
			zap.Error(err))
		writeUsecaseError(ctrl.Log, w, err)
		return
	}

	ctrl.Log.Info("PaymentController.Verify succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingOrderRefKey, request.RazorpayOrderID),
		zap.Bool("replayed", outcome.Replayed),
		zap.Bool("refund_required", outcome.RefundRequired))
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.VerifyPaymentSuccessMessage, outcome)
}

func (ctrl *PaymentController) History(w http.ResponseWriter, r *http.Request) {
	requestID, claims, ok := requestIdentity(ctrl.Log, w, r, "PaymentController.History")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout(ctrl.InternalConfig))
	defer cancel()

	payments, err := ctrl.PaymentUsecase.FindByUser(ctx, claims.UserID())
	if err != nil {
		ctrl.Log.Error("PaymentController.History PaymentUsecase.FindByUser error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err))
		writeUsecaseError(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetPaymentHistorySuccessMessage, payments)
}

func (ctrl *PaymentController) Expire(w http.ResponseWriter, r *http.Request) {
	requestID, _, ok := requestIdentity(ctrl.Log, w, r, "PaymentController.Expire")
	if !ok {
		return
	}
	orderRef := chi.URLParam(r, constvars.URLParamOrderRef)
	if err := utils.ValidateVar(orderRef, "required,payment_ref"); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrURLParamValidation(err, constvars.URLParamOrderRef))
		return
	}

	request := new(requests.ExpirePayment)
	if err := json.NewDecoder(r.Body).Decode(request); err != nil && !errors.Is(err, io.EOF) {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}
	if err := utils.ValidateStruct(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout(ctrl.InternalConfig))
	defer cancel()

	payment, err := ctrl.PaymentUsecase.ExpirePending(ctx, orderRef, request.Reason)
	if err != nil {
		ctrl.Log.Error("PaymentController.Expire PaymentUsecase.ExpirePending error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingOrderRefKey, orderRef),
			zap.Error(err))
		writeUsecaseError(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ExpirePaymentSuccessMessage, payment)
}
