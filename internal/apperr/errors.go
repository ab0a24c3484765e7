// Package apperr holds the sentinel errors the service layer reports and the
// transport layers map to status codes.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidID     = errors.New("invalid id")
)

// NotFound reports a missing entity as "<Entity> not found".
func NotFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// InvalidID reports a malformed identifier as "Invalid <entity> ID".
func InvalidID(entity string) error {
	return &idError{entity: entity}
}

// AlreadyExists reports a name collision.
func AlreadyExists(entity, name string) error {
	return fmt.Errorf("%s %q %w", entity, name, ErrAlreadyExists)
}

type idError struct {
	entity string
}

func (e *idError) Error() string {
	return "Invalid " + e.entity + " ID"
}

func (e *idError) Unwrap() error {
	return ErrInvalidID
}
