package constvars

// Validation messages mapper
var CustomValidationErrorMessages = map[string]string{
	"required":    "is required",
	"email":       "must be a valid email",
	"min":         "must be at least %s characters long",
	"max":         "maximum at %s characters long",
	"numeric":     "must be a number",
	"len":         "must be %s characters long",
	"oneof":       "must be one of [%s]",
	"gt":          "must be greater than %s",
	"gte":         "must be greater than or equal to %s",
	"uuid":        "must be a valid UUID",
	"date_only":   "must be a date in YYYY-MM-DD format",
	"time_slot":   "must be a time in HH:MM format",
	"payment_ref": "must be a valid payment reference",
}

// Tags that require parameter substitution
var TagsWithParams = map[string]bool{
	"min":   true,
	"max":   true,
	"len":   true,
	"gt":    true,
	"gte":   true,
	"oneof": true,
}

// Error codes returned to clients
const (
	ErrCodeCapacityExhausted     = "CAPACITY_EXHAUSTED"
	ErrCodeInvalidTransition     = "INVALID_TRANSITION"
	ErrCodeVerificationFailed    = "VERIFICATION_FAILED"
	ErrCodeTransientStoreError   = "TRANSIENT_STORE_ERROR"
	ErrCodeTransientGatewayError = "TRANSIENT_GATEWAY_ERROR"
	ErrCodeGatewayOutcomeUnknown = "GATEWAY_OUTCOME_UNKNOWN"
	ErrCodeNotFound              = "NOT_FOUND"
	ErrCodeInvalidInput          = "INVALID_INPUT"
	ErrCodeUnauthorized          = "UNAUTHORIZED"
	ErrCodeForbidden             = "FORBIDDEN"
	ErrCodeInternal              = "INTERNAL_ERROR"
	ErrCodeRateLimited           = "RATE_LIMITED"
)

// Error messages for clients
const (
	ErrClientCannotProcessRequest          = "we couldn't process your request, please check your input and try again"
	ErrClientSomethingWrongWithApplication = "something went wrong with the application, please try again later"
	ErrClientServerLongRespond             = "the server is taking too long to respond, please try again later"
	ErrClientNotAuthorized                 = "you are not authorized to access this resource"
	ErrClientNotLoggedIn                   = "your session is invalid or expired, please log in again"
	ErrClientSlotNotAvailable              = "slot no longer available"
	ErrClientInvalidTimeSlot               = "the selected time slot is not offered"
	ErrClientAppointmentNotFound           = "appointment not found"
	ErrClientPaymentNotFound               = "payment not found"
	ErrClientAppointmentInvalidTransition  = "the appointment cannot be moved to the requested status"
	ErrClientPaymentInvalidTransition      = "the payment cannot be processed in its current status"
	ErrClientPaymentVerificationFailed     = "payment verification failed"
	ErrClientPaymentGatewayUnavailable     = "payment provider is unavailable, please try again"
	ErrClientPaymentGatewayTimeout         = "payment provider did not respond in time, please try again"
	ErrClientStoreUnavailable              = "the service is temporarily unavailable, please try again"
	ErrClientReportNotFound                = "report file has not been uploaded"
	ErrClientPaymentModeNotOnline          = "this appointment is not payable online"
	ErrClientPaymentModeNotAtCenter        = "this appointment is not payable at the center"
	ErrClientAppointmentAlreadyPaid        = "this appointment is already paid"
	ErrClientPaymentAmountMismatch         = "payment amount does not match the appointment amount"
	ErrClientTooManyRequests               = "too many requests, please try again later"
)

// Error messages for developers
const (
	ErrDevValidationFailed            = "validation failed"
	ErrDevCannotParseJSON             = "cannot parse JSON request body"
	ErrDevCannotMarshalJSON           = "cannot marshal JSON"
	ErrDevURLParamValidationFailed    = "URL parameter %s validation failed"
	ErrDevServerDeadlineExceeded      = "server deadline exceeded"
	ErrDevMissingRequestID            = "request id missing from context"
	ErrDevMissingAuthClaims           = "auth claims missing from context"
	ErrDevAuthTokenMissing            = "authorization token missing"
	ErrDevAuthTokenInvalid            = "authorization token invalid"
	ErrDevAuthTokenInvalidOrExpired   = "authorization token invalid or expired"
	ErrDevAuthSigningMethod           = "unexpected signing method"
	ErrDevAuthRoleNotAllowed          = "role %s is not allowed on this resource"
	ErrDevNotResourceOwner            = "user %s does not own %s"
	ErrDevSlotCapacityExhausted       = "slot %s has no remaining capacity"
	ErrDevSlotNotInSchedule           = "time slot %s is not in the configured schedule"
	ErrDevInvalidTransition           = "invalid %s transition from %s to %s"
	ErrDevDocumentNotFound            = "%s %s not found"
	ErrDevSignatureRejected           = "payment signature rejected: %s"
	ErrDevSignatureVerifierFailed     = "payment signature verifier failed"
	ErrDevPaymentGatewayRequest       = "payment gateway request failed"
	ErrDevPaymentGatewayTimeout       = "payment gateway request timed out"
	ErrDevPaymentGatewayStatus        = "payment gateway returned status %d"
	ErrDevPaymentGatewayDecode        = "cannot decode payment gateway response"
	ErrDevMongoDBFindDocument         = "failed to find document in mongodb"
	ErrDevMongoDBInsertDocument       = "failed to insert document into mongodb"
	ErrDevMongoDBUpdateDocument       = "failed to update document in mongodb"
	ErrDevMongoDBIterateDocuments     = "failed to iterate documents in mongodb"
	ErrDevMongoDBCreateIndex          = "failed to create mongodb index"
	ErrDevRedisGet                    = "failed to get key from redis"
	ErrDevRedisSet                    = "failed to set key in redis"
	ErrDevRedisDelete                 = "failed to delete key from redis"
	ErrDevRedisExpire                 = "failed to update key expiration in redis"
	ErrDevRedisIncrement              = "failed to increment key in redis"
	ErrDevQuotaExceeded               = "quota %s exceeded for %s"
	ErrDevRedisLockNotOwned           = "lock %s is not owned by this client"
	ErrDevRabbitMQOpenChannel         = "failed to open rabbitmq channel"
	ErrDevRabbitMQDeclareExchange     = "failed to declare rabbitmq exchange %s"
	ErrDevRabbitMQPublishMessage      = "failed to publish message to exchange %s"
	ErrDevMinioStatObject             = "failed to stat object in bucket %s"
	ErrDevMinioObjectMissing          = "object %s does not exist in bucket %s"
	ErrDevAppointmentCompensateFailed = "failed to release slot after appointment insert error"
	ErrDevPaymentAmountMismatch       = "payment amount %.2f does not match appointment amount %.2f"
	ErrDevPaymentOrderConflict        = "pending payment order conflict for appointment %s"
)
