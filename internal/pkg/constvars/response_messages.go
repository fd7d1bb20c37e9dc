package constvars

const (
	// Generic messages
	ResponseUnknown = "unknown"

	// Slot messages
	GetSlotAvailabilitySuccessMessage = "get slot availability successfully"

	// Appointment messages
	CreateAppointmentSuccessMessage         = "appointment booked successfully"
	GetAppointmentSuccessMessage            = "get appointment successfully"
	GetAppointmentsSuccessMessage           = "get appointments successfully"
	CancelAppointmentSuccessMessage         = "appointment cancelled successfully"
	CollectAppointmentPaymentSuccessMessage = "payment collected and appointment confirmed"
	CompleteAppointmentSuccessMessage       = "appointment completed successfully"

	// Payment messages
	CreatePaymentOrderSuccessMessage = "payment order created successfully"
	VerifyPaymentSuccessMessage      = "payment verified successfully"
	GetPaymentHistorySuccessMessage  = "get payment history successfully"
	ExpirePaymentSuccessMessage      = "payment expired successfully"
)
