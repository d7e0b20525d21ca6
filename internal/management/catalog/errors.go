package catalog

import (
	"errors"
	"fmt"
)

// ErrISBNExhausted is returned when two consecutive generated ISBN
// candidates already exist in storage. Surfaced to callers as a conflict.
var ErrISBNExhausted = errors.New("unable to allocate a unique ISBN right now")

// NotFoundError indicates no book exists with the requested ISBN.
type NotFoundError struct {
	ISBN string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("book with ISBN '%s' not found", e.ISBN)
}

// BadRequestError indicates a required free-text key was missing or blank.
type BadRequestError struct {
	Field string
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("field '%s' must be provided", e.Field)
}
