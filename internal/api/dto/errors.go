package dto

// APIError is the body of every non-2xx response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeNotFound      = "not_found"
	ErrCodeBadRequest    = "bad_request"
	ErrCodeInternalError = "internal_error"
	ErrCodeValidation    = "validation_error"

	// ErrCodeInconsistentResult marks a run whose result failed the
	// post-run consistency checks; the failed run is still recorded.
	ErrCodeInconsistentResult = "inconsistent_result"
)

// NewAPIError creates an APIError.
func NewAPIError(code, message string) APIError {
	return APIError{Code: code, Message: message}
}

// NotFoundError reports a missing resource, e.g. NotFoundError("run").
func NotFoundError(resource string) APIError {
	return NewAPIError(ErrCodeNotFound, resource+" not found")
}

// BadRequestError reports a malformed request body or parameter.
func BadRequestError(message string) APIError {
	return NewAPIError(ErrCodeBadRequest, message)
}

// InternalError hides the cause; handlers log it instead.
func InternalError() APIError {
	return NewAPIError(ErrCodeInternalError, "an internal error occurred")
}

// ValidationError reports sources or rules that cannot be reconciled.
func ValidationError(message string) APIError {
	return NewAPIError(ErrCodeValidation, message)
}

// InconsistentResultError reports a reconciliation whose result broke the
// one-to-one or completeness checks.
func InconsistentResultError(message string) APIError {
	return NewAPIError(ErrCodeInconsistentResult, message)
}
