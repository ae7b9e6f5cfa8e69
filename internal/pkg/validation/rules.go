package validation

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
)

// User-facing messages for the validation rules used by the forms
const (
	MsgRequiredFields  = "Please fill required fields"
	MsgMarksNotInteger = "Marks must be an integer"
	MsgPasswordsDiffer = "Passwords do not match"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// required must reject whitespace-only form values
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Struct validates s and converts the failure into a ValidationError
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError(err.Error())
	}

	fields := make(map[string]interface{}, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = formatFieldError(fe)
	}

	first := fieldErrs[0]
	message := formatFieldError(first)
	if first.Tag() == "required" || first.Tag() == "notblank" {
		message = MsgRequiredFields
	}

	return apperrors.NewValidationError(message).WithField(first.Field()).WithDetails(fields)
}

// Integer parses a whole-number form value
func Integer(field, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, apperrors.NewValidationError(MsgMarksNotInteger).WithField(field)
	}
	return n, nil
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return e.Field() + " is required"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "eqfield":
		return MsgPasswordsDiffer
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
