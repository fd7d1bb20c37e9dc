package utils

import (
	"ambica-diagnostic-service/internal/pkg/constvars"
	"strings"

	"github.com/google/uuid"
)

func GenerateRequestID() string {
	return uuid.NewString()
}

func GenerateID() string {
	return uuid.NewString()
}

// GenerateBookingID returns a human facing booking code such as AMB1A2B3C4D.
func GenerateBookingID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return constvars.AppBookingIDPrefix + strings.ToUpper(hex[:constvars.AppBookingIDHexLength])
}

// GenerateReceipt builds the merchant receipt sent with a gateway order.
func GenerateReceipt(appointmentID string) string {
	return "receipt_" + appointmentID
}
