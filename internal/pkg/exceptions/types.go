package exceptions

import (
	"ambica-diagnostic-service/internal/pkg/constvars"
	"fmt"
)

// request and transport
var (
	ErrInputValidation = func(err error) *CustomError {
		return BuildNewCodedError(err, constvars.StatusBadRequest, constvars.ErrCodeInvalidInput, false, FormatFirstValidationError(err), constvars.ErrDevValidationFailed)
	}
	ErrCannotParseJSON = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, constvars.ErrDevCannotParseJSON)
	}
	ErrCannotMarshalJSON = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevCannotMarshalJSON)
	}
	ErrURLParamValidation = func(err error, paramName string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevURLParamValidationFailed, paramName))
	}
	ErrServerDeadlineExceeded = func(err error) *CustomError {
		return BuildNewCodedError(err, constvars.StatusGatewayTimeout, constvars.ErrCodeTransientStoreError, true, constvars.ErrClientServerLongRespond, constvars.ErrDevServerDeadlineExceeded)
	}
	ErrMissingRequestID = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevMissingRequestID)
	}
	ErrTooManyRequests = func(err error, group, subject string) *CustomError {
		return BuildNewCodedError(err, constvars.StatusTooManyRequests, constvars.ErrCodeRateLimited, true, constvars.ErrClientTooManyRequests, fmt.Sprintf(constvars.ErrDevQuotaExceeded, group, subject))
	}
	ErrMissingAuthClaims = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnauthorized, constvars.ErrClientNotLoggedIn, constvars.ErrDevMissingAuthClaims)
	}
)

// auth
var (
	ErrTokenMissing = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnauthorized, constvars.ErrClientNotAuthorized, constvars.ErrDevAuthTokenMissing)
	}
	ErrTokenInvalidOrExpired = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnauthorized, constvars.ErrClientNotLoggedIn, constvars.ErrDevAuthTokenInvalidOrExpired)
	}
	ErrRoleNotAllowed = func(err error, role string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusForbidden, constvars.ErrClientNotAuthorized, fmt.Sprintf(constvars.ErrDevAuthRoleNotAllowed, role))
	}
	ErrNotResourceOwner = func(err error, userID, resource string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusForbidden, constvars.ErrClientNotAuthorized, fmt.Sprintf(constvars.ErrDevNotResourceOwner, userID, resource))
	}
)

// domain
var (
	ErrCapacityExhausted = func(err error, slotKey string) *CustomError {
		return BuildNewCodedError(err, constvars.StatusConflict, constvars.ErrCodeCapacityExhausted, false, constvars.ErrClientSlotNotAvailable, fmt.Sprintf(constvars.ErrDevSlotCapacityExhausted, slotKey))
	}
	ErrTimeSlotNotInSchedule = func(err error, timeSlot string) *CustomError {
		return BuildNewCodedError(err, constvars.StatusBadRequest, constvars.ErrCodeInvalidInput, false, constvars.ErrClientInvalidTimeSlot, fmt.Sprintf(constvars.ErrDevSlotNotInSchedule, timeSlot))
	}
	ErrAppointmentInvalidTransition = func(err error, from, to string) *CustomError {
		return BuildNewCodedError(err, constvars.StatusConflict, constvars.ErrCodeInvalidTransition, false, constvars.ErrClientAppointmentInvalidTransition, fmt.Sprintf(constvars.ErrDevInvalidTransition, "appointment", from, to))
	}
	ErrPaymentInvalidTransition = func(err error, from, to string) *CustomError {
		return BuildNewCodedError(err, constvars.StatusConflict, constvars.ErrCodeInvalidTransition, false, constvars.ErrClientPaymentInvalidTransition, fmt.Sprintf(constvars.ErrDevInvalidTransition, "payment", from, to))
	}
	ErrPaymentModeMismatch = func(err error, clientMessage, mode string) *CustomError {
		return BuildNewCodedError(err, constvars.StatusConflict, constvars.ErrCodeInvalidTransition, false, clientMessage, fmt.Sprintf(constvars.ErrDevInvalidTransition, "payment mode", mode, "requested operation"))
	}
	ErrAppointmentAlreadyPaid = func(err error, appointmentID string) *CustomError {
		return BuildNewCodedError(err, constvars.StatusConflict, constvars.ErrCodeInvalidTransition, false, constvars.ErrClientAppointmentAlreadyPaid, fmt.Sprintf(constvars.ErrDevInvalidTransition, "payment of appointment "+appointmentID, constvars.PaymentStatusCompleted, constvars.PaymentStatusPending))
	}
	ErrAppointmentNotFound = func(err error, appointmentID string) *CustomError {
		return BuildNewCodedError(err, constvars.StatusNotFound, constvars.ErrCodeNotFound, false, constvars.ErrClientAppointmentNotFound, fmt.Sprintf(constvars.ErrDevDocumentNotFound, "appointment", appointmentID))
	}
	ErrPaymentNotFound = func(err error, orderRef string) *CustomError {
		return BuildNewCodedError(err, constvars.StatusNotFound, constvars.ErrCodeNotFound, false, constvars.ErrClientPaymentNotFound, fmt.Sprintf(constvars.ErrDevDocumentNotFound, "payment order", orderRef))
	}
	ErrPaymentAmountMismatch = func(err error, requested, expected float64) *CustomError {
		return BuildNewCodedError(err, constvars.StatusBadRequest, constvars.ErrCodeInvalidInput, false, constvars.ErrClientPaymentAmountMismatch, fmt.Sprintf(constvars.ErrDevPaymentAmountMismatch, requested, expected))
	}
	ErrPaymentOrderConflict = func(err error, appointmentID string) *CustomError {
		return BuildNewCodedError(err, constvars.StatusServiceUnavailable, constvars.ErrCodeTransientStoreError, true, constvars.ErrClientStoreUnavailable, fmt.Sprintf(constvars.ErrDevPaymentOrderConflict, appointmentID))
	}
	ErrPaymentVerificationFailed = func(err error, reason string) *CustomError {
		return BuildNewCodedError(err, constvars.StatusBadRequest, constvars.ErrCodeVerificationFailed, false, constvars.ErrClientPaymentVerificationFailed, fmt.Sprintf(constvars.ErrDevSignatureRejected, reason))
	}
	ErrReportObjectMissing = func(err error, objectKey, bucketName string) *CustomError {
		return BuildNewCodedError(err, constvars.StatusConflict, constvars.ErrCodeInvalidTransition, false, constvars.ErrClientReportNotFound, fmt.Sprintf(constvars.ErrDevMinioObjectMissing, objectKey, bucketName))
	}
)

// payment gateway
var (
	ErrSignatureVerifier = func(err error) *CustomError {
		return BuildNewCodedError(err, constvars.StatusBadGateway, constvars.ErrCodeTransientGatewayError, true, constvars.ErrClientPaymentGatewayUnavailable, constvars.ErrDevSignatureVerifierFailed)
	}
	ErrPaymentGatewayRequest = func(err error) *CustomError {
		return BuildNewCodedError(err, constvars.StatusBadGateway, constvars.ErrCodeTransientGatewayError, true, constvars.ErrClientPaymentGatewayUnavailable, constvars.ErrDevPaymentGatewayRequest)
	}
	ErrPaymentGatewayTimeout = func(err error) *CustomError {
		return BuildNewCodedError(err, constvars.StatusGatewayTimeout, constvars.ErrCodeGatewayOutcomeUnknown, true, constvars.ErrClientPaymentGatewayTimeout, constvars.ErrDevPaymentGatewayTimeout)
	}
	ErrPaymentGatewayStatus = func(err error, statusCode int) *CustomError {
		return BuildNewCodedError(err, constvars.StatusBadGateway, constvars.ErrCodeTransientGatewayError, true, constvars.ErrClientPaymentGatewayUnavailable, fmt.Sprintf(constvars.ErrDevPaymentGatewayStatus, statusCode))
	}
	ErrPaymentGatewayDecode = func(err error) *CustomError {
		return BuildNewCodedError(err, constvars.StatusBadGateway, constvars.ErrCodeTransientGatewayError, true, constvars.ErrClientPaymentGatewayUnavailable, constvars.ErrDevPaymentGatewayDecode)
	}
)

// storage drivers
var (
	ErrMongoDBFindDocument = func(err error) *CustomError {
		return BuildNewCodedError(err, constvars.StatusServiceUnavailable, constvars.ErrCodeTransientStoreError, true, constvars.ErrClientStoreUnavailable, constvars.ErrDevMongoDBFindDocument)
	}
	ErrMongoDBInsertDocument = func(err error) *CustomError {
		return BuildNewCodedError(err, constvars.StatusServiceUnavailable, constvars.ErrCodeTransientStoreError, true, constvars.ErrClientStoreUnavailable, constvars.ErrDevMongoDBInsertDocument)
	}
	ErrMongoDBUpdateDocument = func(err error) *CustomError {
		return BuildNewCodedError(err, constvars.StatusServiceUnavailable, constvars.ErrCodeTransientStoreError, true, constvars.ErrClientStoreUnavailable, constvars.ErrDevMongoDBUpdateDocument)
	}
	ErrMongoDBIterateDocuments = func(err error) *CustomError {
		return BuildNewCodedError(err, constvars.StatusServiceUnavailable, constvars.ErrCodeTransientStoreError, true, constvars.ErrClientStoreUnavailable, constvars.ErrDevMongoDBIterateDocuments)
	}
	ErrMongoDBCreateIndex = func(err error) *CustomError {
		return BuildNewCodedError(err, constvars.StatusServiceUnavailable, constvars.ErrCodeTransientStoreError, true, constvars.ErrClientStoreUnavailable, constvars.ErrDevMongoDBCreateIndex)
	}
	ErrRedisGet = func(err error) *CustomError {
		return BuildNewCodedError(err, constvars.StatusServiceUnavailable, constvars.ErrCodeTransientStoreError, true, constvars.ErrClientStoreUnavailable, constvars.ErrDevRedisGet)
	}
	ErrRedisSet = func(err error) *CustomError {
		return BuildNewCodedError(err, constvars.StatusServiceUnavailable, constvars.ErrCodeTransientStoreError, true, constvars.ErrClientStoreUnavailable, constvars.ErrDevRedisSet)
	}
	ErrRedisDelete = func(err error) *CustomError {
		return BuildNewCodedError(err, constvars.StatusServiceUnavailable, constvars.ErrCodeTransientStoreError, true, constvars.ErrClientStoreUnavailable, constvars.ErrDevRedisDelete)
	}
	ErrRedisExpire = func(err error) *CustomError {
		return BuildNewCodedError(err, constvars.StatusServiceUnavailable, constvars.ErrCodeTransientStoreError, true, constvars.ErrClientStoreUnavailable, constvars.ErrDevRedisExpire)
	}
	ErrRedisIncrement = func(err error) *CustomError {
		return BuildNewCodedError(err, constvars.StatusServiceUnavailable, constvars.ErrCodeTransientStoreError, true, constvars.ErrClientStoreUnavailable, constvars.ErrDevRedisIncrement)
	}
	ErrRedisLockNotOwned = func(err error, key string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusConflict, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevRedisLockNotOwned, key))
	}
	ErrRabbitMQOpenChannel = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRabbitMQOpenChannel)
	}
	ErrRabbitMQDeclareExchange = func(err error, exchange string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevRabbitMQDeclareExchange, exchange))
	}
	ErrRabbitMQPublishMessage = func(err error, exchange string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevRabbitMQPublishMessage, exchange))
	}
	ErrMinioStatObject = func(err error, bucketName string) *CustomError {
		return BuildNewCodedError(err, constvars.StatusServiceUnavailable, constvars.ErrCodeTransientStoreError, true, constvars.ErrClientStoreUnavailable, fmt.Sprintf(constvars.ErrDevMinioStatObject, bucketName))
	}
)
