package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrUnauthorized is returned when a request carries no user
	ErrUnauthorized = errors.New("user authentication required")

	// ErrReportNotFound is returned when a report id does not exist
	ErrReportNotFound = errors.New("report not found")

	// ErrMatchNotFound is returned when a match id does not exist
	ErrMatchNotFound = errors.New("match not found")

	// ErrConversationNotFound is returned when a conversation id does not exist
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrForbidden is returned when a user reads a conversation they are not part of
	ErrForbidden = errors.New("access denied")

	// ErrKindMismatch is returned when a lost report is used where a found one is expected, or vice versa
	ErrKindMismatch = errors.New("report kind mismatch")

	// ErrInvalidStatus is returned for a status that does not apply to the report or match
	ErrInvalidStatus = errors.New("invalid status")

	// ErrStoreUnavailable is returned when the backing store fails
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")
)
