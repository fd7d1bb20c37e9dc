package responses

// PaymentOrder is what the client needs to open the gateway checkout.
type PaymentOrder struct {
	OrderID       string  `json:"razorpay_order_id"`
	AppointmentID string  `json:"appointment_id"`
	Amount        float64 `json:"amount"`
	GatewayAmount int64   `json:"gateway_amount"`
	Currency      string  `json:"currency"`
	KeyID         string  `json:"key_id"`
	Status        string  `json:"status"`
}
