package models

import "time"

type Payment struct {
	ID             string     `json:"id" bson:"_id"`
	UserID         string     `json:"user_id" bson:"userId"`
	AppointmentID  string     `json:"appointment_id" bson:"appointmentId"`
	OrderRef       string     `json:"razorpay_order_id" bson:"orderRef"`
	PaymentRef     string     `json:"razorpay_payment_id,omitempty" bson:"paymentRef,omitempty"`
	Signature      string     `json:"-" bson:"signature,omitempty"`
	Status         string     `json:"status" bson:"status"`
	Amount         float64    `json:"amount" bson:"amount"`
	GatewayAmount  int64      `json:"gateway_amount" bson:"gatewayAmount"`
	Currency       string     `json:"currency" bson:"currency"`
	PaymentMode    string     `json:"payment_mode" bson:"paymentMode"`
	FailureReason  string     `json:"failure_reason,omitempty" bson:"failureReason,omitempty"`
	RefundRequired bool       `json:"refund_required" bson:"refundRequired"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" bson:"completedAt,omitempty"`
	FailedAt       *time.Time `json:"failed_at,omitempty" bson:"failedAt,omitempty"`
	// CapturedAt is set when the gateway reports a capture after the order
	// had already expired.
	CapturedAt     *time.Time `json:"captured_at,omitempty" bson:"capturedAt,omitempty"`
	TimeModel      `bson:",inline"`
}

// GatewayOrder is the provider side order a payment is attached to.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type ReconcileOutcome struct {
	Payment        *Payment     `json:"payment"`
	Appointment    *Appointment `json:"appointment,omitempty"`
	Replayed       bool         `json:"replayed"`
	RefundRequired bool         `json:"refund_required"`
}
