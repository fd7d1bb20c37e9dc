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

type AppointmentController struct {
	Log                *zap.Logger
	AppointmentUsecase contracts.AppointmentUsecase
	SlotUsecase        contracts.SlotUsecase
	InternalConfig     *config.InternalConfig
}

func NewAppointmentController(logger *zap.Logger, appointmentUsecase contracts.AppointmentUsecase, slotUsecase contracts.SlotUsecase, internalConfig *config.InternalConfig) *AppointmentController {
	return &AppointmentController{
		Log:                logger,
		AppointmentUsecase: appointmentUsecase,
		SlotUsecase:        slotUsecase,
		InternalConfig:     internalConfig,
	}
}

func (ctrl *AppointmentController) GetAvailability(w http.ResponseWriter, r *http.Request) {
	requestID := utils.GetRequestID(r.Context())
	date := r.URL.Query().Get("date")
	ctrl.Log.Info("AppointmentController.GetAvailability called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSlotDateKey, date))

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout(ctrl.InternalConfig))
	defer cancel()

	availability, err := ctrl.SlotUsecase.ListAvailability(ctx, date)
	if err != nil {
		ctrl.Log.Error("AppointmentController.GetAvailability SlotUsecase.ListAvailability error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err))
		writeUsecaseError(ctrl.Log, w, err)
		return
	}

	response := responses.DailyAvailability{Date: date, Slots: make([]responses.SlotAvailability, 0, len(availability))}
	for _, slot := range availability {
		response.Slots = append(response.Slots, responses.SlotAvailability{
			TimeSlot:    slot.TimeSlot,
			IsAvailable: slot.IsAvailable,
			Remaining:   slot.Remaining,
			Capacity:    slot.Capacity,
		})
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetSlotAvailabilitySuccessMessage, response)
}

func (ctrl *AppointmentController) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	requestID, claims, ok := requestIdentity(ctrl.Log, w, r, "AppointmentController.CreateAppointment")
	if !ok {
		return
	}
	ctrl.Log.Info("AppointmentController.CreateAppointment called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, claims.UserID()))

	request := new(requests.CreateAppointment)
	err := json.NewDecoder(r.Body).Decode(request)
	if err != nil {
		ctrl.Log.Error("AppointmentController.CreateAppointment Failed to decode JSON request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err))
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}
	request.UserID = claims.UserID()
	request.UserName = claims.Name
	request.UserEmail = claims.Email
	request.UserPhone = claims.Phone

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout(ctrl.InternalConfig))
	defer cancel()

	appointment, err := ctrl.AppointmentUsecase.Book(ctx, request)
	if err != nil {
		ctrl.Log.Error("AppointmentController.CreateAppointment AppointmentUsecase.Book error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err))
		writeUsecaseError(ctrl.Log, w, err)
		return
	}

	ctrl.Log.Info("AppointmentController.CreateAppointment succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointment.ID))
	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.CreateAppointmentSuccessMessage, appointment)
}

func (ctrl *AppointmentController) FindMine(w http.ResponseWriter, r *http.Request) {
	requestID, claims, ok := requestIdentity(ctrl.Log, w, r, "AppointmentController.FindMine")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout(ctrl.InternalConfig))
	defer cancel()

	appointments, err := ctrl.AppointmentUsecase.FindByUser(ctx, claims.UserID())
	if err != nil {
		ctrl.Log.Error("AppointmentController.FindMine AppointmentUsecase.FindByUser error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err))
		writeUsecaseError(ctrl.Log, w, err)
		return
	}

	ctrl.Log.Info("AppointmentController.FindMine succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, len(appointments)))
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetAppointmentsSuccessMessage, appointments)
}

func (ctrl *AppointmentController) FindAll(w http.ResponseWriter, r *http.Request) {
	requestID, _, ok := requestIdentity(ctrl.Log, w, r, "AppointmentController.FindAll")
	if !ok {
		return
	}

	pagination := utils.BuildPaginationRequest(r)
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout(ctrl.InternalConfig))
	defer cancel()

	appointments, total, err := ctrl.AppointmentUsecase.FindAll(ctx, pagination)
	if err != nil {
		ctrl.Log.Error("AppointmentController.FindAll AppointmentUsecase.FindAll error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err))
		writeUsecaseError(ctrl.Log, w, err)
		return
	}

	paginationResponse := utils.BuildPaginationResponse(total, pagination.Page, pagination.PageSize, r.URL.Path)
	utils.BuildSuccessResponseWithPagination(w, constvars.StatusOK, constvars.GetAppointmentsSuccessMessage, paginationResponse, appointments)
}

func (ctrl *AppointmentController) FindByID(w http.ResponseWriter, r *http.Request) {
	requestID, claims, ok := requestIdentity(ctrl.Log, w, r, "AppointmentController.FindByID")
	if !ok {
		return
	}
	appointmentID := chi.URLParam(r, constvars.URLParamAppointmentID)

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout(ctrl.InternalConfig))
	defer cancel()

	appointment, err := ctrl.AppointmentUsecase.FindByID(ctx, actorFromClaims(claims), appointmentID)
	if err != nil {
		ctrl.Log.Error("AppointmentController.FindByID AppointmentUsecase.FindByID error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.Error(err))
		writeUsecaseError(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetAppointmentSuccessMessage, appointment)
}

func (ctrl *AppointmentController) Cancel(w http.ResponseWriter, r *http.Request) {
	requestID, claims, ok := requestIdentity(ctrl.Log, w, r, "AppointmentController.Cancel")
	if !ok {
		return
	}
	appointmentID := chi.URLParam(r, constvars.URLParamAppointmentID)

	// the body is optional
	request := new(requests.CancelAppointment)
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

	appointment, err := ctrl.AppointmentUsecase.Cancel(ctx, actorFromClaims(claims), appointmentID, request.Reason)
	if err != nil {
		ctrl.Log.Error("AppointmentController.Cancel AppointmentUsecase.Cancel error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.Error(err))
		writeUsecaseError(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.CancelAppointmentSuccessMessage, appointment)
}

func (ctrl *AppointmentController) Collect(w http.ResponseWriter, r *http.Request) {
	requestID, _, ok := requestIdentity(ctrl.Log, w, r, "AppointmentController.Collect")
	if !ok {
		return
	}
	appointmentID := chi.URLParam(r, constvars.URLParamAppointmentID)

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout(ctrl.InternalConfig))
	defer cancel()

	appointment, err := ctrl.AppointmentUsecase.MarkCollected(ctx, appointmentID)
	if err != nil {
		ctrl.Log.Error("AppointmentController.Collect AppointmentUsecase.MarkCollected error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.Error(err))
		writeUsecaseError(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.CollectAppointmentPaymentSuccessMessage, appointment)
}

func (ctrl *AppointmentController) Complete(w http.ResponseWriter, r *http.Request) {
	requestID, _, ok := requestIdentity(ctrl.Log, w, r, "AppointmentController.Complete")
	if !ok {
		return
	}
	appointmentID := chi.URLParam(r, constvars.URLParamAppointmentID)

	request := new(requests.CompleteAppointment)
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout(ctrl.InternalConfig))
	defer cancel()

	appointment, err := ctrl.AppointmentUsecase.Complete(ctx, appointmentID, request.ReportObjectKey)
	if err != nil {
		ctrl.Log.Error("AppointmentController.Complete AppointmentUsecase.Complete error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.Error(err))
		writeUsecaseError(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.CompleteAppointmentSuccessMessage, appointment)
}

func actorFromClaims(claims *utils.JWTClaims) requests.AppointmentActor {
	return requests.AppointmentActor{UserID: claims.UserID(), IsAdmin: claims.IsAdmin()}
}
