package sysaction

import (
	"errors"
	"fmt"

	"github.com/otakuverse/ovchain/custody"
	"github.com/otakuverse/ovchain/state"
)

// Error categories. Every operation error wraps exactly one of these or one
// of the state existence errors.
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidState     = errors.New("invalid state")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrValidation       = errors.New("validation failure")
)

// Category tags.
const (
	CategoryUnauthorized     = "Unauthorized"
	CategoryNotFound         = "NotFound"
	CategoryAlreadyExists    = "AlreadyExists"
	CategoryInvalidState     = "InvalidState"
	CategoryCapacityExceeded = "CapacityExceeded"
	CategoryValidation       = "ValidationFailure"
	CategoryInternal         = "Internal"
)

// Category returns the tag of err, or "" for a nil error.
func Category(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized), errors.Is(err, custody.ErrUnauthorizedSigner):
		return CategoryUnauthorized
	case errors.Is(err, state.ErrNotFound):
		return CategoryNotFound
	case errors.Is(err, state.ErrAlreadyExists), errors.Is(err, custody.ErrAssetExists):
		return CategoryAlreadyExists
	case errors.Is(err, ErrInvalidState), errors.Is(err, custody.ErrInsufficientBalance):
		return CategoryInvalidState
	case errors.Is(err, ErrCapacityExceeded):
		return CategoryCapacityExceeded
	case errors.Is(err, ErrValidation), errors.Is(err, custody.ErrBalanceOverflow), errors.Is(err, custody.ErrZeroAmount):
		return CategoryValidation
	}
	return CategoryInternal
}

// CheckLen rejects value if it is longer than max bytes.
func CheckLen(field, value string, max int) error {
	if len(value) > max {
		return fmt.Errorf("%w: %s is %d bytes, max %d", ErrValidation, field, len(value), max)
	}
	return nil
}
