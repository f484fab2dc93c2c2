package utils

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// FormatValidationError formats validation errors into user-friendly messages
func FormatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("Minimum length is %s", err.Param())
	case "max":
		return fmt.Sprintf("Maximum length is %s", err.Param())
	case "len":
		return fmt.Sprintf("Length must be %s", err.Param())
	case "hexadecimal":
		return "Must be a hexadecimal id"
	case "gt", "gte":
		return fmt.Sprintf("Must be at least %s", err.Param())
	case "lte":
		return fmt.Sprintf("Must be at most %s", err.Param())
	case "nefield":
		return fmt.Sprintf("Must differ from %s", err.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", err.Param())
	default:
		return fmt.Sprintf("Validation failed on %s", err.Tag())
	}
}

// ValidationDetails flattens a validator error into response details.
// Errors that are not validation errors yield a single detail.
func ValidationDetails(err error) []ErrorDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ErrorDetail{{Message: err.Error()}}
	}
	details := make([]ErrorDetail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, ErrorDetail{
			Field:   fe.Field(),
			Message: FormatValidationError(fe),
		})
	}
	return details
}
