package requests

type CreatePaymentOrder struct {
	AppointmentID string  `json:"appointment_id" validate:"required,max=64"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	UserID        string  `json:"-"`
}

type VerifyPayment struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required,payment_ref"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required,payment_ref"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required,max=256"`
	AppointmentID     string `json:"appointment_id" validate:"omitempty,max=64"`
}

type ExpirePayment struct {
	Reason string `json:"reason" validate:"max=500"`
}

// GatewayCreateOrder is the body sent to the payment gateway orders API.
type GatewayCreateOrder struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
	PaymentCapture int    `json:"payment_capture"`
}
