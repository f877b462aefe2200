package serr

import (
	"fmt"
	"runtime/debug"
)

// Stable machine-readable error kinds returned alongside the HTTP status.
const (
	CodeValidation     = "validation_failed"
	CodeRegionExcluded = "region_excluded"
	CodePrivate        = "private"
	CodeNotFound       = "not_found"
	CodeConflict       = "conflict"
	CodeUnavailable    = "unavailable"
	CodeTooLarge       = "too_large"
)

// ServiceError is an error that knows how it should be reported to an HTTP client.
type ServiceError struct {
	Err        error
	Msg        string
	Code       string
	StackTrace string
	StatusCode int
	Env        map[string]string
}

func NewServiceError(err error, statusCode int, msg string, args ...any) *ServiceError {
	return &ServiceError{
		Err:        err,
		Msg:        fmt.Sprintf(msg, args...),
		StatusCode: statusCode,
		StackTrace: string(debug.Stack()),
		Env:        make(map[string]string),
	}
}

// WithCode sets the machine-readable kind and returns the same error.
func (e *ServiceError) WithCode(code string) *ServiceError {
	e.Code = code
	return e
}

// With records a diagnostic key/value pair that is logged but never sent to the client.
func (e *ServiceError) With(key, val string) *ServiceError {
	e.Env[key] = val
	return e
}

func (e *ServiceError) Error() string {
	return e.Msg
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
