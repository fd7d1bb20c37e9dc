package models

import "time"

// Event is the envelope published on the events exchange.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	RequestID  string      `json:"request_id,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}
