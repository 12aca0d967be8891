// Package validation checks request structs with go-playground/validator tags
// and turns failures into VALIDATION_ERROR responses.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"pantry-chef/internal/apperrors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is a single failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// RequestValidationError collects every failed rule of one request.
type RequestValidationError struct {
	Fields []FieldError
}

func (ve *RequestValidationError) Error() string {
	if len(ve.Fields) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(ve.Fields))
	for i, f := range ve.Fields {
		messages[i] = f.Message
	}
	return strings.Join(messages, "; ")
}

// ToAPIError converts the failure to a VALIDATION_ERROR with field details.
func (ve *RequestValidationError) ToAPIError() *apperrors.Error {
	if len(ve.Fields) == 0 {
		return apperrors.New(apperrors.CodeValidation, "Validation failed")
	}
	return apperrors.WithDetails(apperrors.CodeValidation, ve.Error(), map[string]any{
		"fields": ve.Fields,
	})
}

// GetValidator returns the shared validator. Field names in errors follow the
// json tags so they match the request body. Besides the built-in rules it
// knows "notblank", which rejects whitespace-only strings.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("notblank", validators.NotBlank)
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// ValidateStruct validates s and returns nil when every rule passes.
func ValidateStruct(s any) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RequestValidationError{Fields: []FieldError{{Field: "unknown", Tag: "unknown", Message: err.Error()}}}
	}

	fields := make([]FieldError, len(validationErrs))
	for i, fe := range validationErrs {
		fields[i] = FieldError{
			Field:   fieldPath(fe),
			Tag:     fe.Tag(),
			Message: translateError(fe),
		}
	}
	return &RequestValidationError{Fields: fields}
}

// Validate is ValidateStruct returning a plain error for use in call chains.
func Validate(s any) error {
	if ve := ValidateStruct(s); ve != nil {
		return ve.ToAPIError()
	}
	return nil
}

// fieldPath drops the root struct name: "SearchRequest.filters.servings" becomes "filters.servings".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

var messageTemplates = map[string]string{
	"required": "%s is required",
	"notblank": "%s must not be blank",
	"url":      "%s must be a valid URL",
}

var messageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
}

func translateError(fe validator.FieldError) string {
	field := fieldPath(fe)
	tag, param := fe.Tag(), fe.Param()

	if tmpl, ok := messageTemplates[tag]; ok {
		return fmt.Sprintf(tmpl, field)
	}
	if tmpl, ok := messageWithParam[tag]; ok {
		return fmt.Sprintf(tmpl, field, param)
	}

	switch fe.Kind() {
	case reflect.String:
		if tag == "min" {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		if tag == "max" {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
	case reflect.Slice, reflect.Array, reflect.Map:
		if tag == "min" {
			return fmt.Sprintf("%s must contain at least %s items", field, param)
		}
		if tag == "max" {
			return fmt.Sprintf("%s must contain at most %s items", field, param)
		}
	default:
		if tag == "min" {
			return fmt.Sprintf("%s must be at least %s", field, param)
		}
		if tag == "max" {
			return fmt.Sprintf("%s must be at most %s", field, param)
		}
	}
	return fmt.Sprintf("%s failed %s validation", field, tag)
}
