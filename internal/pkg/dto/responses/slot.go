package responses

type SlotAvailability struct {
	TimeSlot    string `json:"time_slot"`
	IsAvailable bool   `json:"is_available"`
	Remaining   int    `json:"remaining"`
	Capacity    int    `json:"capacity"`
}

type DailyAvailability struct {
	Date  string             `json:"date"`
	Slots []SlotAvailability `json:"slots"`
}
