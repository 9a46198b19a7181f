package domain

import "errors"

var (
	// ErrValidation signals malformed input to a draft or criteria constructor.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound signals a referenced listing that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden signals an authenticated caller that does not own the listing.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated signals a missing or invalid identity token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrMethodNotAllowed signals a request made with an unsupported HTTP method.
	ErrMethodNotAllowed = errors.New("method not allowed")
)
