// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist in the caller's
// tenant, or has been soft-deleted.
var ErrNotFound = errors.New("not found")

// ErrValidation indicates that input failed validation.
var ErrValidation = errors.New("validation")

// ErrUnsupported indicates the operation does not apply to the record kind.
var ErrUnsupported = errors.New("unsupported operation")
