package constvars

const (
	LoggingRequestIDKey       = "request_id"
	LoggingRequestKey         = "request"
	LoggingResponseKey        = "response"
	LoggingDataKey            = "data"
	LoggingQueryParamsKey     = "query_params"
	LoggingErrorTypeKey       = "error_type"
	LoggingMethodKey          = "method"
	LoggingEndpointKey        = "endpoint"
	LoggingRemoteAddrKey      = "remote_addr"
	LoggingUserAgentKey       = "user_agent"
	LoggingQueryKey           = "query"
	LoggingStatusCodeKey      = "status_code"
	LoggingDurationKey        = "duration"
	LoggingSuccessKey         = "success"
	LoggingUserIDKey          = "user_id"
	LoggingRoleKey            = "role"
	LoggingAppointmentIDKey   = "appointment_id"
	LoggingAppointmentStatus  = "appointment_status"
	LoggingBookingIDKey       = "booking_id"
	LoggingSlotKey            = "slot_key"
	LoggingSlotDateKey        = "slot_date"
	LoggingTimeSlotKey        = "time_slot"
	LoggingPaymentIDKey       = "payment_id"
	LoggingOrderRefKey        = "order_ref"
	LoggingPaymentRefKey      = "payment_ref"
	LoggingPaymentStatusKey   = "payment_status"
	LoggingAmountKey          = "amount"
	LoggingEventKey           = "event"
	LoggingExchangeKey        = "exchange"
	LoggingObjectKey          = "object_key"
	LoggingBucketKey          = "bucket"
	LoggingAttemptKey         = "attempt"
	LoggingCountKey           = "count"
	LoggingOlderThanKey       = "older_than"
	LoggingRedisKey           = "redis_key"
	LoggingLockValueKey       = "lock_value"
	LoggingLockExpirationKey  = "lock_expiration"
	LoggingLockStoredValueKey = "lock_stored_value"
	LoggingWorkerKey          = "worker"
	LoggingCronSpecKey        = "cron_spec"
	LoggingTraceIDKey         = "trace_id"
)
