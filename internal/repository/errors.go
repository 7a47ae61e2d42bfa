// Package repository implements data access for the credential store.
// Sentinel errors let higher layers distinguish failure scenarios without
// inspecting driver-specific error strings.
package repository

import "errors"

// ErrDuplicate is returned when an insert violates a unique constraint,
// e.g. registering an email or phone that already exists.
var ErrDuplicate = errors.New("duplicate record")

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")
