// Package validator converts ozzo-validation failures into layered errors.
package validator

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/scribehub/go-scribe/errcode"
)

// ErrValidation is the shared code for rejected input.
var ErrValidation = errcode.New(
	errcode.ModuleCommon, 1010,
	"common", "error.common.validation_failed", "validation failed",
	400,
)

// Validatable is anything carrying its own validation rules.
type Validatable interface {
	Validate() error
}

// ValidateRequest runs the request's rules and converts failures.
func ValidateRequest(req Validatable) error {
	err := req.Validate()
	if err == nil {
		return nil
	}
	if validationErrs, ok := err.(validation.Errors); ok {
		return ConvertValidationError(validationErrs)
	}
	return err
}

// ConvertValidationError flattens field errors into one LayeredError.
func ConvertValidationError(validationErrs validation.Errors) error {
	fields := make(map[string]string)
	for field, fieldErr := range validationErrs {
		if fieldErr != nil {
			fields[field] = fieldErr.Error()
		}
	}
	return ErrValidation.WithData("fields", fields)
}
