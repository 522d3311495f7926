package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_FAILED"
	ErrMissingField   ErrCode = "MISSING_FIELD"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Schedule ──────────────────────────────────────────────────────
	ErrClassNotFound ErrCode = "CLASS_NOT_FOUND"
	ErrDayNotFound   ErrCode = "DAY_NOT_FOUND"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Upstream Completion API ───────────────────────────────────────
	ErrUpstream ErrCode = "UPSTREAM_ERROR"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrMissingField:
		return "A required field is missing from the request."
	case ErrInvalidPayload:
		return "The request payload is not valid."

	// ─── Schedule ──────────────────────────────────────────────────────
	case ErrClassNotFound:
		return "The requested class is not known."
	case ErrDayNotFound:
		return "The requested day is not a valid weekday."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Upstream Completion API ───────────────────────────────────────
	case ErrUpstream:
		return "The AI service could not complete the request."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
