package client

import "fmt"

// Kind classifies a remote call outcome. The set is closed: every failure
// a BookClient returns carries exactly one of these.
type Kind int

const (
	// KindNotFound: the remote answered with a not-found status.
	KindNotFound Kind = iota + 1
	// KindConflict: the remote answered with a conflict status. Recoverable.
	KindConflict
	// KindBadRequest: the remote rejected the request as invalid.
	KindBadRequest
	// KindUnavailable: the remote could not be reached, or an unexpected
	// local failure degraded to "service unavailable".
	KindUnavailable
	// KindUpstream: any other non-success status from the remote.
	KindUpstream
)

// Code returns the stable machine-readable code for the kind.
func (k Kind) Code() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	case KindBadRequest:
		return "BAD_REQUEST"
	case KindUnavailable:
		return "SERVICE_UNAVAILABLE"
	case KindUpstream:
		return "UPSTREAM_ERROR"
	default:
		return "UNKNOWN"
	}
}

// APIError is the domain error produced by every failed remote call.
// Status is the remote HTTP status for KindUpstream (and the triggering
// status for the other remote-classified kinds); it is zero when the call
// never reached the remote.
type APIError struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind.Code(), e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Code(), e.Message)
}

// NotFound builds the catalogue-specific not-found error for an ISBN.
func NotFound(isbn string) *APIError {
	return &APIError{Kind: KindNotFound, Status: 404, Message: fmt.Sprintf("book with ISBN %s not found", isbn)}
}

// Conflict wraps a remote conflict message.
func Conflict(message string) *APIError {
	return &APIError{Kind: KindConflict, Status: 409, Message: message}
}

// BadRequest wraps a remote validation message.
func BadRequest(message string) *APIError {
	return &APIError{Kind: KindBadRequest, Status: 400, Message: message}
}

// Unavailable marks a connectivity or unclassified local failure.
func Unavailable(message string) *APIError {
	return &APIError{Kind: KindUnavailable, Message: message}
}

// Upstream wraps any other non-success status from the remote.
func Upstream(status int, message string) *APIError {
	return &APIError{Kind: KindUpstream, Status: status, Message: message}
}
