// Package common defines shared constants and sentinel errors used across
// client layers of catalogctl. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Validation errors.
	ErrEmailRequired     = errors.New("email required")
	ErrPasswordMismatch  = errors.New("passwords do not match")
	ErrInvalidSortSpec   = errors.New("invalid sort spec")
	ErrUnknownCategory   = errors.New("unknown category")
	ErrInvalidProduct    = errors.New("invalid product")
	ErrPasswordTooShort  = errors.New("password too short")
	ErrInvalidImportFile = errors.New("invalid import file")

	// Link errors.
	ErrLinkRejected = errors.New("link rejected")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
