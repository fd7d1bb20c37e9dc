package constvars

type ContextKey string

const (
	CONTEXT_REQUEST_ID_KEY           ContextKey = "request_id"
	CONTEXT_IS_CLIENT_REQUEST_ID_KEY ContextKey = "is_client_request_id"
	CONTEXT_AUTH_CLAIMS_KEY          ContextKey = "auth_claims"
)

const (
	AppName                 = "ambica-diagnostic-service"
	AppPaginationUrlFormat  = "%s?page=%d&page_size=%d"
	AppDefaultCurrency      = "INR"
	AppBookingIDPrefix      = "AMB"
	AppBookingIDHexLength   = 8
	AppDateFormat           = "2006-01-02"
	AppTimeSlotFormat       = "15:04"
	AppSlotKeySeparator     = "|"
	AppAmountMinorUnitRatio = 100
)

const (
	RoleAdmin   = "admin"
	RolePatient = "patient"
)

const (
	MongoCollectionSlotBuckets  = "slot_buckets"
	MongoCollectionAppointments = "appointments"
	MongoCollectionPayments     = "payments"
)

const (
	AppointmentStatusPending   = "pending"
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusCancelled = "cancelled"
	AppointmentStatusCompleted = "completed"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

const (
	PaymentModeOnline   = "online"
	PaymentModeAtCenter = "at_center"
)

// Reasons carried by a rejected payment signature.
const (
	SignatureRejectMalformed = "malformed signature"
	SignatureRejectMismatch  = "signature does not match order and payment"
)

const (
	TestTypeBloodTest  = "blood_test"
	TestTypeUrineTest  = "urine_test"
	TestTypeXRay       = "xray"
	TestTypeUltrasound = "ultrasound"
	TestTypeECG        = "ecg"
	TestTypeCheckup    = "checkup"
)

const (
	EventAppointmentBooked     = "appointment.booked"
	EventAppointmentConfirmed  = "appointment.confirmed"
	EventAppointmentCancelled  = "appointment.cancelled"
	EventAppointmentCompleted  = "appointment.completed"
	EventPaymentCompleted      = "payment.completed"
	EventPaymentExpired        = "payment.expired"
	EventPaymentRefundRequired = "payment.refund_required"
)

const (
	WorkerSlotSweeperLeaderLockKey   = "ambica:worker:slot-sweeper:leader"
	WorkerPaymentExpiryLeaderLockKey = "ambica:worker:payment-expiry:leader"
)

const (
	RedisQuotaKeyPrefix = "ambica:quota"
	QuotaGroupPayment   = "payment"
)
