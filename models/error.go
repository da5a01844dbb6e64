package models

import "errors"

// Error kinds surfaced by the case store and lifecycle rules. Handlers map
// these onto HTTP status codes; none of them are fatal to the process.
var (
	// ErrNotFound is returned when a case number has no matching case.
	ErrNotFound = errors.New("case not found")

	// ErrInvalidTransition is returned when a status change does not follow
	// the New -> Investigating -> Resolved -> Closed chain.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrEmptyMessage is returned when a message has neither text nor attachments.
	ErrEmptyMessage = errors.New("message requires text or attachments")

	// ErrOversizeAttachment is returned for a single file above the size cap.
	// Other files in the same batch are still processed.
	ErrOversizeAttachment = errors.New("attachment exceeds maximum size")
)

// ErrorMessageResponse returns the error message response struct
type ErrorMessageResponse struct {
	Response MessageError
}

// MessageError contains the inner details for the error message response
type MessageError struct {
	Message string
	Error   string
}
