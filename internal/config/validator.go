package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/conorfennell/fsrsched/internal/fsrs"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("weights", validateWeights)
	validate.RegisterValidation("model", validateModel)
}

// ConfigError represents a validation error for a specific field.
type ConfigError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of config errors.
type ValidationErrors []ConfigError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// ValidateWithDetails validates cfg and reports every failing field.
func ValidateWithDetails(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	details := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, ConfigError{
			Field:   fe.Namespace(),
			Message: formatValidationError(fe),
			Value:   fe.Value(),
		})
	}
	return details
}

func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "lt":
		return fmt.Sprintf("must be less than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "weights":
		return "must hold 17 or 19 values"
	case "model":
		return "must be FSRS-4, FSRS-4.5 or FSRS-5"
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}

// validateWeights accepts an empty list, which selects the model defaults.
func validateWeights(fl validator.FieldLevel) bool {
	if fl.Field().Len() == 0 {
		return true
	}
	_, err := fsrs.ModelForWeights(fl.Field().Len())
	return err == nil
}

func validateModel(fl validator.FieldLevel) bool {
	_, err := fsrs.ParseModel(fl.Field().String())
	return err == nil
}
