package models

import (
	"ambica-diagnostic-service/internal/pkg/utils"
	"time"
)

// SlotBucket counts the grants issued for one (date, timeSlot) pair.
// ReservedCount always equals len(Holders).
type SlotBucket struct {
	ID            string       `json:"id" bson:"_id"`
	Date          string       `json:"date" bson:"date"`
	TimeSlot      string       `json:"time_slot" bson:"timeSlot"`
	Capacity      int          `json:"capacity" bson:"capacity"`
	ReservedCount int          `json:"reserved_count" bson:"reservedCount"`
	Holders       []SlotHolder `json:"holders" bson:"holders"`
	TimeModel     `bson:",inline"`
}

type SlotHolder struct {
	AppointmentID string    `json:"appointment_id" bson:"appointmentId"`
	GrantedAt     time.Time `json:"granted_at" bson:"grantedAt"`
}

// SlotGrant proves a reservation of one capacity unit. It is redeemed by
// Release with the same appointment id.
type SlotGrant struct {
	Date          string    `json:"date"`
	TimeSlot      string    `json:"time_slot"`
	AppointmentID string    `json:"appointment_id"`
	GrantedAt     time.Time `json:"granted_at"`
}

func (g *SlotGrant) Key() string {
	return utils.BuildSlotKey(g.Date, g.TimeSlot)
}

type SlotAvailability struct {
	TimeSlot    string `json:"time_slot"`
	IsAvailable bool   `json:"is_available"`
	Remaining   int    `json:"remaining"`
	Capacity    int    `json:"capacity"`
}

func (b *SlotBucket) HolderOf(appointmentID string) (SlotHolder, bool) {
	for _, holder := range b.Holders {
		if holder.AppointmentID == appointmentID {
			return holder, true
		}
	}
	return SlotHolder{}, false
}
