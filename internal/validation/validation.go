// Package validation checks habit and account input before it reaches the
// tracker.
package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/kmaguire/cadence/internal/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// HabitInput carries the user-editable habit fields for create calls.
type HabitInput struct {
	Title       string `validate:"required"`
	Description string `validate:"required"`
	Frequency   string `validate:"required,oneof=daily weekly"`
	TargetDays  []int  `validate:"omitempty,dive,gte=0,lte=6"`
	Reminder    string `validate:"omitempty,datetime=15:04"` // HH:MM
}

// Credentials carries sign-up / sign-in fields.
type Credentials struct {
	Name     string `validate:"omitempty,min=1"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

// ValidateHabitInput validates the fields of a new habit.
func ValidateHabitInput(in HabitInput) error {
	if err := validate.Struct(in); err != nil {
		return apperrors.ValidationWrap(err, describe(err, "habit"))
	}
	return nil
}

// ValidateCredentials validates sign-up and sign-in input.
func ValidateCredentials(c Credentials) error {
	if err := validate.Struct(c); err != nil {
		return apperrors.ValidationWrap(err, describe(err, "credentials"))
	}
	return nil
}

// describe condenses validator errors into a single readable message.
func describe(err error, subject string) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return "invalid " + subject
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field())+" ("+fe.Tag()+")")
	}
	return "invalid " + subject + ": " + strings.Join(fields, ", ")
}
