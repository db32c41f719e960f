package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Validation errors, detected before any external call.
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeUnsupportedVendor indicates the requested vendor is not known.
	ErrCodeUnsupportedVendor ErrorCode = "UNSUPPORTED_VENDOR"
)

// Vendor errors. None of them are retried automatically.
const (
	// ErrCodeVendorProtocol indicates a non-2xx or malformed vendor response.
	ErrCodeVendorProtocol ErrorCode = "VENDOR_PROTOCOL_ERROR"
	// ErrCodeVendorAuth indicates the vendor rejected the credentials or request signature.
	ErrCodeVendorAuth ErrorCode = "VENDOR_AUTH_ERROR"
	// ErrCodeVendorBusiness indicates the vendor reported a failed job.
	ErrCodeVendorBusiness ErrorCode = "VENDOR_BUSINESS_ERROR"
	// ErrCodeEmptyResult indicates a successful call produced no usable output.
	ErrCodeEmptyResult ErrorCode = "EMPTY_RESULT"
	// ErrCodePollTimeout indicates the poll ceiling was reached with the job still open.
	ErrCodePollTimeout ErrorCode = "POLL_TIMEOUT"
)

// Infrastructure errors.
const (
	// ErrCodeTimeout indicates a request timed out or was cancelled.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeStorage indicates an artifact could not be read or written.
	ErrCodeStorage ErrorCode = "STORAGE_ERROR"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTimeout: true,
	ErrCodeStorage: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
// The pipeline itself never retries; the flag is a hint for callers.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
