package property

import (
	"errors"
	"net/http"

	"github.com/kailas-cloud/propdex/internal/domain"
)

// Client-facing error messages.
const (
	MsgNotFound         = "Property not found"
	MsgForbidden        = "Unauthorized"
	MsgMethodNotAllowed = "Method not allowed"
	MsgUnauthenticated  = "Authentication required"
	MsgInvalidData      = "Invalid property data: "
)

// Caller is the authenticated identity behind a request. The zero value is anonymous.
type Caller struct {
	UserID string
	Email  string
}

// Authenticated reports whether the caller carries a user identity.
func (c Caller) Authenticated() bool { return c.UserID != "" }

// Payload is the body of a use-case result.
// Data holds a listing.Listing or a []listing.Listing.
type Payload struct {
	Data    any
	Count   *int
	Success *bool
	Error   string
}

// Response pairs a payload with its HTTP status code.
type Response struct {
	Status int
	Body   Payload
}

func ok(status int, data any) Response {
	return Response{Status: status, Body: Payload{Data: data}}
}

func fail(status int, msg string) Response {
	return Response{Status: status, Body: Payload{Error: msg}}
}

// ErrorResponse maps an error to its status code and client message.
func ErrorResponse(err error) Response {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fail(http.StatusBadRequest, MsgInvalidData+err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fail(http.StatusNotFound, MsgNotFound)
	case errors.Is(err, domain.ErrForbidden):
		return fail(http.StatusForbidden, MsgForbidden)
	case errors.Is(err, domain.ErrUnauthenticated):
		return fail(http.StatusUnauthorized, MsgUnauthenticated)
	case errors.Is(err, domain.ErrMethodNotAllowed):
		return fail(http.StatusMethodNotAllowed, MsgMethodNotAllowed)
	default:
		return fail(http.StatusInternalServerError, err.Error())
	}
}
