package utils

import (
	"ambica-diagnostic-service/internal/pkg/constvars"
	"time"
)

func ParseDate(date string) (time.Time, error) {
	return time.Parse(constvars.AppDateFormat, date)
}

func ParseTimeSlot(timeSlot string) (time.Time, error) {
	return time.Parse(constvars.AppTimeSlotFormat, timeSlot)
}

func IsValidDate(date string) bool {
	_, err := ParseDate(date)
	return err == nil
}

// IsValidTimeSlot requires the zero padded HH:MM form used as part of slot keys.
func IsValidTimeSlot(timeSlot string) bool {
	parsed, err := ParseTimeSlot(timeSlot)
	if err != nil {
		return false
	}
	return parsed.Format(constvars.AppTimeSlotFormat) == timeSlot
}

func BuildSlotKey(date, timeSlot string) string {
	return date + constvars.AppSlotKeySeparator + timeSlot
}
