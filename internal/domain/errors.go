package domain

import "errors"

// Sentinel errors for the domain layer. Store implementations wrap
// ErrNotFound and ErrConflict; the rest come from domain validation.
var (
	ErrNotFound        = errors.New("domain: not found")
	ErrConflict        = errors.New("domain: conflict")
	ErrTenantSuspended = errors.New("domain: tenant suspended")
	ErrBlankEntry      = errors.New("domain: question key and answer must not be blank")
)
