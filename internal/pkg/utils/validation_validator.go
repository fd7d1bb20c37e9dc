package utils

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var paymentRefPattern = regexp.MustCompile(`^[A-Za-z0-9_\-]{4,64}$`)

func init() {
	validate = validator.New()
	validate.RegisterValidation("date_only", validateDateOnly)
	validate.RegisterValidation("time_slot", validateTimeSlot)
	validate.RegisterValidation("payment_ref", validatePaymentRef)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}

func validateDateOnly(fl validator.FieldLevel) bool {
	return IsValidDate(fl.Field().String())
}

func validateTimeSlot(fl validator.FieldLevel) bool {
	return IsValidTimeSlot(fl.Field().String())
}

func validatePaymentRef(fl validator.FieldLevel) bool {
	return paymentRefPattern.MatchString(fl.Field().String())
}
