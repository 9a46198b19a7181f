package propdex

import "github.com/kailas-cloud/propdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation      = domain.ErrValidation
	ErrNotFound        = domain.ErrNotFound
	ErrForbidden       = domain.ErrForbidden
	ErrUnauthenticated = domain.ErrUnauthenticated
)
