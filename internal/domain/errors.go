// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates a concurrent modification conflict (optimistic locking)
// or an identity collision between generated and manual task namespaces.
var ErrConflict = errors.New("conflict: resource was modified by another request")

// ErrValidation indicates the request failed domain validation.
var ErrValidation = errors.New("validation failed")

// ErrInvalidStatus indicates a lifecycle transition was requested with a
// status value outside the enumerated set.
var ErrInvalidStatus = errors.New("invalid task status")
