package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Validation ---

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// InvalidInput creates a new AppError for an invalid field value.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Details: details,
	}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"field": field},
	}
}

// UnsupportedVendor creates a new AppError for an unknown vendor name.
func UnsupportedVendor(kind, name string) *AppError {
	return &AppError{
		Code: ErrCodeUnsupportedVendor, Message: fmt.Sprintf("Unsupported %s vendor %q", kind, name),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"kind": kind, "vendor": name},
	}
}

// --- Vendor ---

// VendorProtocol creates an error for a non-2xx or malformed vendor response.
func VendorProtocol(vendor, detail string) *AppError {
	return &AppError{
		Code: ErrCodeVendorProtocol, Message: fmt.Sprintf("%s request failed: %s", vendor, detail),
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"vendor": vendor},
	}
}

// VendorAuth creates an error for credentials or a signature the vendor rejected.
func VendorAuth(vendor, detail string) *AppError {
	return &AppError{
		Code: ErrCodeVendorAuth, Message: fmt.Sprintf("%s rejected the credentials: %s", vendor, detail),
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"vendor": vendor},
	}
}

// VendorBusiness creates an error for a job the vendor reports as failed.
func VendorBusiness(vendor, detail string) *AppError {
	return &AppError{
		Code: ErrCodeVendorBusiness, Message: fmt.Sprintf("%s reported a failure: %s", vendor, detail),
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"vendor": vendor},
	}
}

// EmptyResult creates an error for a stage that succeeded without usable output.
func EmptyResult(stage string) *AppError {
	return &AppError{
		Code: ErrCodeEmptyResult, Message: fmt.Sprintf("The %s result is empty. Check that the audio contains speech.", stage),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"stage": stage},
	}
}

// PollTimeout creates an error for a job still open after the poll ceiling.
// The job outcome is unknown, not failed.
func PollTimeout(vendor string, attempts int) *AppError {
	return &AppError{
		Code: ErrCodePollTimeout, Message: fmt.Sprintf("%s job did not finish after %d status checks", vendor, attempts),
		HTTPStatus: http.StatusGatewayTimeout,
		Details:    map[string]any{"vendor": vendor, "attempts": attempts},
	}
}

// --- Infrastructure ---

// Timeout creates a new AppError for a request that timed out.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The request took too long. Please try again.",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// Storage creates a new AppError for an artifact read or write failure.
func Storage(op string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeStorage, Message: fmt.Sprintf("Artifact %s failed.", op),
		HTTPStatus: http.StatusInternalServerError, Retryable: true, Cause: cause,
	}
}

// Internal creates a new AppError for an internal server error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again or contact support.",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}

// --- Inspection ---

// IsCode reports whether err is an AppError carrying code.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == code
}

// CodeOf returns the code of err, or ErrCodeInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// From converts any error to an AppError, wrapping foreign errors as Internal.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}
