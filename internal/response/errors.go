package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Session & Gate ────────────────────────────────────────────────
	ErrIncorrectSecret ErrCode = "INCORRECT_SECRET"
	ErrAccessLocked    ErrCode = "ACCESS_LOCKED"
	ErrSessionExpired  ErrCode = "SESSION_EXPIRED"
	ErrTokenRequired   ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid    ErrCode = "TOKEN_INVALID"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation       ErrCode = "VALIDATION_ERROR"
	ErrInvalidAnswerSet ErrCode = "INVALID_ANSWER_SET"

	// ─── Routing ───────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Session & Gate ────────────────────────────────────────────────
	case ErrIncorrectSecret:
		return "Password incorrect."
	case ErrAccessLocked:
		return "Enter the survey password to continue."
	case ErrSessionExpired:
		return "Your session has expired. Please start again."
	case ErrTokenRequired:
		return "A session token is required."
	case ErrTokenInvalid:
		return "The session token is invalid."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidAnswerSet:
		return "Every survey question needs exactly one of its listed answers."

	// ─── Routing ───────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
