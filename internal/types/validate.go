package types

import (
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/outreach-tracker/internal/schedule"
)

var (
	validatorOnce sync.Once
	validate      *validator.Validate
)

// Validator returns the shared validator with the custom rules registered:
//
//	commtype     value is one of the known communication types
//	periodicity  value starts with a positive whole number of days ("30 days")
func Validator() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("commtype", func(fl validator.FieldLevel) bool {
			return schedule.CommunicationType(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("periodicity", func(fl validator.FieldLevel) bool {
			return schedule.HasExplicitPeriodicity(fl.Field().String())
		})
		validate = v
	})
	return validate
}
