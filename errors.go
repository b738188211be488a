package dynapatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// Error codes returned to callers.
const (
	CodeInvalidFilter  = "INVALID_FILTER"
	CodeInvalidField   = "INVALID_FIELD"
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeInvalidConfig  = "INVALID_CONFIG"
	CodeNoSDKConfig    = "NO_SDK_CONFIG"
	CodeStore          = "STORE_ERROR"
	CodeCanceled       = "CANCELED"
)

var (
	// ErrInvalidFilter is returned when the filter lacks the primary key.
	ErrInvalidFilter = &Error{Code: CodeInvalidFilter, Message: "Please provide table's primary key in filter"}
	// ErrInvalidField is returned when a field name or value cannot be compiled.
	ErrInvalidField = &Error{Code: CodeInvalidField, Message: "invalid field"}
	// ErrInvalidRequest is returned when the request payload cannot be decoded.
	ErrInvalidRequest = &Error{Code: CodeInvalidRequest, Message: "invalid request payload"}
	// ErrInvalidConfig is returned when the deployment configuration is incomplete.
	ErrInvalidConfig = &Error{Code: CodeInvalidConfig, Message: "invalid deployment configuration"}
	// ErrMissingBackendConfig is returned when no store access configuration is available.
	ErrMissingBackendConfig = &Error{Code: CodeNoSDKConfig, Message: "No aws sdk config found in handler context"}
	// ErrStore is returned when the store rejects or fails the update.
	ErrStore = &Error{Code: CodeStore, Message: "store error"}
	// ErrCanceled is returned when the invocation is canceled before the store responds.
	ErrCanceled = &Error{Code: CodeCanceled, Message: "update canceled"}
)

// Error is a handler failure with a machine-readable code. Errors compare equal
// under errors.Is when their codes match.
type Error struct {
	Code    string // Machine-readable code, e.g. INVALID_FILTER
	Message string // Human-readable message
	Cause   error  // Underlying error, if any
}

func newError(code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// StoreError carries the backend details of a failed store call.
type StoreError struct {
	APICode   string // Backend error code, empty when the failure was not an API error
	Retryable bool   // True when the backend signalled throttling or capacity limits
	Cause     error
}

func (e *StoreError) Error() string {
	if e.APICode != "" {
		return fmt.Sprintf("%s: %v", e.APICode, e.Cause)
	}
	return e.Cause.Error()
}

func (e *StoreError) Unwrap() error { return e.Cause }

// ClassifyStoreError maps a failed store call to a handler [Error]. Context
// cancellation maps to [ErrCanceled]; everything else maps to [ErrStore] with
// a [StoreError] cause carrying the backend message.
func ClassifyStoreError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return newError(CodeCanceled, "update canceled", err)
	}

	cause := &StoreError{Cause: err}
	message := err.Error()

	var api smithy.APIError
	if errors.As(err, &api) {
		cause.APICode = api.ErrorCode()
		if m := api.ErrorMessage(); m != "" {
			message = m
		}
		switch api.ErrorCode() {
		case "ProvisionedThroughputExceededException", "ThrottlingException", "RequestLimitExceeded", "TransactionInProgressException":
			cause.Retryable = true
		}
	}

	return newError(CodeStore, message, cause)
}

// IsRetryable reports whether err wraps a [StoreError] the backend marked as retryable.
func IsRetryable(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Retryable
}
