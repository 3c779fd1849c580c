package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"

	// Resource errors
	ErrCodeNotFound        = "not_found"
	ErrCodeSessionNotFound = "session_not_found"
	ErrCodeUserNotFound    = "user_not_found"

	// Session lifecycle errors
	ErrCodeSessionStartFailed = "session_start_failed"
	ErrCodeSessionEndFailed   = "session_end_failed"
	ErrCodeSessionInactive    = "session_inactive"
	ErrCodeChallengeLogFailed = "challenge_log_failed"

	// Scoring errors
	ErrCodeInvalidWeights    = "invalid_weights"
	ErrCodeInvalidTimeLimit  = "invalid_time_limit"
	ErrCodeTimerNotStarted   = "timer_not_started"
	ErrCodeUnknownStrategy   = "unknown_strategy"
	ErrCodeScoreCalcFailed   = "score_calculation_failed"

	// WebSocket errors
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeUnknownMessageType = "unknown_message_type"
	ErrCodeConnectionError    = "connection_error"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
)
