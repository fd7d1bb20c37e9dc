package requests

type Pagination struct {
	Page     int
	PageSize int
}

type CreateAppointment struct {
	TestType    string  `json:"test_type" validate:"required,oneof=blood_test urine_test xray ultrasound ecg checkup"`
	TestID      string  `json:"test_id" validate:"required,max=64"`
	TestName    string  `json:"test_name" validate:"required,max=200"`
	Date        string  `json:"date" validate:"required,date_only"`
	TimeSlot    string  `json:"time_slot" validate:"required,time_slot"`
	PaymentMode string  `json:"payment_mode" validate:"required,oneof=online at_center"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	UserID      string  `json:"-"`
	UserName    string  `json:"-"`
	UserEmail   string  `json:"-"`
	UserPhone   string  `json:"-"`
}

type CancelAppointment struct {
	Reason string `json:"reason" validate:"max=500"`
}

type CompleteAppointment struct {
	ReportObjectKey string `json:"report_object_key" validate:"required,max=512"`
}

type AppointmentActor struct {
	UserID  string
	IsAdmin bool
}
