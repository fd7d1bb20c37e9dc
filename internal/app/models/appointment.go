package models

import (
	"ambica-diagnostic-service/internal/pkg/constvars"
	"time"
)

type Appointment struct {
	ID                 string     `json:"id" bson:"_id"`
	BookingID          string     `json:"booking_id" bson:"bookingId"`
	UserID             string     `json:"user_id" bson:"userId"`
	UserName           string     `json:"user_name" bson:"userName"`
	UserEmail          string     `json:"user_email" bson:"userEmail"`
	UserPhone          string     `json:"user_phone" bson:"userPhone"`
	TestType           string     `json:"test_type" bson:"testType"`
	TestID             string     `json:"test_id" bson:"testId"`
	TestName           string     `json:"test_name" bson:"testName"`
	Date               string     `json:"date" bson:"date"`
	TimeSlot           string     `json:"time_slot" bson:"timeSlot"`
	PaymentMode        string     `json:"payment_mode" bson:"paymentMode"`
	PaymentStatus      string     `json:"payment_status" bson:"paymentStatus"`
	PaymentID          string     `json:"payment_id,omitempty" bson:"paymentId,omitempty"`
	Amount             float64    `json:"amount" bson:"amount"`
	Status             string     `json:"status" bson:"status"`
	ReportObjectKey    string     `json:"report_object_key,omitempty" bson:"reportObjectKey,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty" bson:"cancellationReason,omitempty"`
	CancelledBy        string     `json:"cancelled_by,omitempty" bson:"cancelledBy,omitempty"`
	ConfirmedAt        *time.Time `json:"confirmed_at,omitempty" bson:"confirmedAt,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty" bson:"cancelledAt,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty" bson:"completedAt,omitempty"`
	SlotReleasedAt     *time.Time `json:"slot_released_at,omitempty" bson:"slotReleasedAt,omitempty"`
	TimeModel          `bson:",inline"`
}

func (a *Appointment) IsOnline() bool {
	return a.PaymentMode == constvars.PaymentModeOnline
}

func (a *Appointment) IsPaid() bool {
	return a.PaymentStatus == constvars.PaymentStatusCompleted
}

func (a *Appointment) IsOwnedBy(userID string) bool {
	return a.UserID == userID
}

// AppointmentTransition describes one conditional status change. The update
// applies only when the stored status is one of From.
type AppointmentTransition struct {
	From          []string
	To            string
	PaymentStatus string
	PaymentID     string
	Reason        string
	Actor         string
	ReportKey     string
	At            time.Time
}
