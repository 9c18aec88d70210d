package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

type Validator struct {
	validate *validator.Validate
}

// FieldError describes one failed rule on one input field.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// ValidationError carries every field that failed, in declaration order.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		messages = append(messages, f.Message)
	}
	return strings.Join(messages, "; ")
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Use JSON tag names instead of struct field names for error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(fld.Name)
		}
		return name
	})

	_ = v.RegisterValidation("notblank", validators.NotBlank)

	return &Validator{
		validate: v,
	}
}

// Validate returns a *ValidationError when i breaks any rule.
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return &ValidationError{Fields: fieldErrors(validationErrs)}
		}
		return err
	}
	return nil
}

// FieldErrors extracts field detail from err, or nil when err is not a validation failure.
func FieldErrors(err error) []FieldError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}

func fieldErrors(errs validator.ValidationErrors) []FieldError {
	out := make([]FieldError, 0, len(errs))
	for _, err := range errs {
		field := err.Field()
		out = append(out, FieldError{
			Field:   field,
			Tag:     err.Tag(),
			Message: message(field, err),
		})
	}
	return out
}

func message(field string, err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, err.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(err.Param(), " ", ", "))
	case "uuid":
		return fmt.Sprintf("%s must be a valid UUID", field)
	case "eqfield":
		return fmt.Sprintf("%s must match %s", field, strings.ToLower(err.Param()))
	case "nefield":
		return fmt.Sprintf("%s must differ from %s", field, strings.ToLower(err.Param()))
	default:
		return fmt.Sprintf("%s failed validation for %s", field, err.Tag())
	}
}
