package excursion

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrorCodeValidation          ErrorCode = "VALIDATION"
	ErrorCodeDestinationNotFound ErrorCode = "DESTINATION_NOT_FOUND"
	ErrorCodeProviderFailure     ErrorCode = "PROVIDER_FAILURE"
	ErrorCodeConfiguration       ErrorCode = "CONFIGURATION"
	ErrorCodeTimeout             ErrorCode = "TIMEOUT"
	ErrorCodeInternalFailure     ErrorCode = "INTERNAL_FAILURE"
)

type AppError struct {
	Code    ErrorCode
	Status  int
	Message string
	Err     error
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

func NewDestinationNotFound(destination string) *AppError {
	return &AppError{
		Code:    ErrorCodeDestinationNotFound,
		Status:  http.StatusOK,
		Message: fmt.Sprintf("destination not found: %s", destination),
	}
}

func NewProviderError(upstreamStatus int, body string) *AppError {
	return &AppError{
		Code:    ErrorCodeProviderFailure,
		Status:  http.StatusBadGateway,
		Message: fmt.Sprintf("provider returned status %d: %s", upstreamStatus, body),
	}
}

func NewProviderTransportError(err error) *AppError {
	return &AppError{
		Code:    ErrorCodeProviderFailure,
		Status:  http.StatusBadGateway,
		Message: "provider call failed",
		Err:     err,
	}
}

func NewConfigurationError(msg string) *AppError {
	return &AppError{
		Code:    ErrorCodeConfiguration,
		Status:  http.StatusOK,
		Message: msg,
	}
}

// IsDegradable reports whether err should be served to clients as an empty
// 200 result instead of an HTTP error. Provider flakiness must not break the
// UI.
func IsDegradable(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	switch appErr.Code {
	case ErrorCodeDestinationNotFound, ErrorCodeProviderFailure,
		ErrorCodeConfiguration, ErrorCodeTimeout:
		return true
	}
	return false
}
