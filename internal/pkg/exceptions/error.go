package exceptions

import (
	"ambica-diagnostic-service/internal/pkg/constvars"
	"errors"
	"fmt"
	"runtime"
)

type CustomError struct {
	StatusCode    int        `json:"status_code"`
	Success       bool       `json:"success"`
	ClientMessage string     `json:"message"`
	ErrorCode     string     `json:"error_code,omitempty"`
	Retryable     bool       `json:"retryable"`
	DevMessage    string     `json:"dev_message,omitempty"`
	Locations     []Location `json:"locations,omitempty"`
	err           error
}

type Location struct {
	File         string `json:"file"`
	Line         int    `json:"line"`
	FunctionName string `json:"function_name"`
}

func (e *CustomError) Error() string {
	if len(e.Locations) == 0 {
		return e.DevMessage
	}
	location := e.Locations[0]
	return fmt.Sprintf("%s (%s:%d %s)", e.DevMessage, location.File, location.Line, location.FunctionName)
}

func (e *CustomError) Unwrap() error {
	return e.err
}

// BuildNewCustomError wraps err into a CustomError. When err is already a
// CustomError its code and retryability are kept and the caller location is
// appended, so the outermost status still wins.
func BuildNewCustomError(err error, statusCode int, clientMessage, devMessage string) *CustomError {
	location := getLocation(2)

	var existing *CustomError
	if errors.As(err, &existing) {
		return &CustomError{
			StatusCode:    statusCode,
			ClientMessage: clientMessage,
			ErrorCode:     existing.ErrorCode,
			Retryable:     existing.Retryable,
			DevMessage:    fmt.Sprintf("%s: %s", devMessage, existing.DevMessage),
			Locations:     append([]Location{location}, existing.Locations...),
			err:           err,
		}
	}

	if err != nil {
		devMessage = fmt.Sprintf("%s: %s", devMessage, err.Error())
	}
	return &CustomError{
		StatusCode:    statusCode,
		ClientMessage: clientMessage,
		ErrorCode:     errorCodeFromStatus(statusCode),
		DevMessage:    devMessage,
		Locations:     []Location{location},
		err:           err,
	}
}

// BuildNewCodedError is BuildNewCustomError with an explicit error code.
func BuildNewCodedError(err error, statusCode int, errorCode string, retryable bool, clientMessage, devMessage string) *CustomError {
	location := getLocation(2)
	if err != nil {
		devMessage = fmt.Sprintf("%s: %s", devMessage, err.Error())
	}
	return &CustomError{
		StatusCode:    statusCode,
		ClientMessage: clientMessage,
		ErrorCode:     errorCode,
		Retryable:     retryable,
		DevMessage:    devMessage,
		Locations:     []Location{location},
		err:           err,
	}
}

func WrapWithoutError(statusCode int, clientMessage, devMessage string) *CustomError {
	return &CustomError{
		StatusCode:    statusCode,
		ClientMessage: clientMessage,
		ErrorCode:     errorCodeFromStatus(statusCode),
		DevMessage:    devMessage,
		Locations:     []Location{getLocation(2)},
	}
}

// HasCode reports whether any CustomError in err's chain carries code.
func HasCode(err error, code string) bool {
	for err != nil {
		var customErr *CustomError
		if !errors.As(err, &customErr) {
			return false
		}
		if customErr.ErrorCode == code {
			return true
		}
		err = customErr.err
	}
	return false
}

func IsRetryable(err error) bool {
	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr.Retryable
	}
	return false
}

func errorCodeFromStatus(statusCode int) string {
	switch statusCode {
	case constvars.StatusBadRequest, constvars.StatusUnprocessableEntity:
		return constvars.ErrCodeInvalidInput
	case constvars.StatusUnauthorized:
		return constvars.ErrCodeUnauthorized
	case constvars.StatusForbidden:
		return constvars.ErrCodeForbidden
	case constvars.StatusNotFound:
		return constvars.ErrCodeNotFound
	default:
		return constvars.ErrCodeInternal
	}
}

func getLocation(skip int) Location {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return Location{
			File:         constvars.ResponseUnknown,
			Line:         0,
			FunctionName: constvars.ResponseUnknown,
		}
	}
	function := runtime.FuncForPC(pc).Name()
	return Location{
		File:         file,
		Line:         line,
		FunctionName: function,
	}
}
