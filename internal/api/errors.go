package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// AppError is an error with an HTTP status and a stable code
type AppError struct {
	Err        error             `json:"-"`
	Message    string            `json:"message"`
	Code       string            `json:"code"`
	HTTPStatus int               `json:"-"`
	Details    map[string]string `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// BadRequest creates a bad request error
func BadRequest(message string) *AppError {
	return &AppError{
		Message:    message,
		Code:       "BAD_REQUEST",
		HTTPStatus: http.StatusBadRequest,
	}
}

// TooLarge creates a payload too large error
func TooLarge(message string) *AppError {
	return &AppError{
		Message:    message,
		Code:       "PAYLOAD_TOO_LARGE",
		HTTPStatus: http.StatusRequestEntityTooLarge,
	}
}

// Validation creates a validation error, listing the failing fields when
// err carries validator field errors
func Validation(message string, err error) *AppError {
	appErr := &AppError{
		Err:        err,
		Message:    message,
		Code:       "VALIDATION_ERROR",
		HTTPStatus: http.StatusBadRequest,
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		appErr.Details = make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			appErr.Details[fe.Namespace()] = fe.Tag()
		}
	}
	return appErr
}

// decodeError maps a body decoding failure to a client error
func decodeError(err error) *AppError {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return TooLarge(fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
	}
	return BadRequest("invalid request body: " + err.Error())
}
