package utils

import (
	"fmt"
	"strings"

	"grabbi-engine/models"

	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the engine's custom binding tags to a validator.
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation("ordertype", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || models.OrderType(s).Valid()
	})
}

// SanitizeValidationError takes a validator error and returns a user-friendly message
// without leaking internal Go struct names.
func SanitizeValidationError(err error) string {
	if err == nil {
		return ""
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return "Invalid request body"
	}

	var messages []string
	for _, fe := range validationErrors {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "gt":
			messages = append(messages, fmt.Sprintf("%s must be greater than %s", field, fe.Param()))
		case "gte":
			messages = append(messages, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "ordertype":
			messages = append(messages, fmt.Sprintf("%s must be pickup or delivery", field))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", field))
		}
	}

	if len(messages) == 0 {
		return "Invalid request body"
	}

	return strings.Join(messages, "; ")
}
