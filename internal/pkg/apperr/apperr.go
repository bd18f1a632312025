// Package apperr holds the error vocabulary shared by adapters, services and
// the HTTP layer. Adapters wrap these sentinels with fmt.Errorf("...: %w");
// callers classify with errors.Is.
package apperr

import "errors"

var (
	ErrInvalidCollection   = errors.New("invalid collection")
	ErrPathNotFound        = errors.New("path not found in repository")
	ErrNotFound            = errors.New("not found")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrRateLimited         = errors.New("rate limited")
	ErrAccessDenied        = errors.New("access denied")
	ErrModelError          = errors.New("model error")
	ErrMalformedQuizOutput = errors.New("malformed quiz output")
	ErrCredentialMissing   = errors.New("ai credential missing")

	ErrInvalidInput      = errors.New("invalid input")
	ErrResourceNotFound  = errors.New("resource not found")
	ErrForbidden         = errors.New("forbidden")
	ErrUnsupportedObject = errors.New("unsupported object store backend")
)
