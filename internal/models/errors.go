package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalid matches every error that rejects input before persistence.
	ErrInvalid = errors.New("invalid input")
	// ErrNotFound matches every error about a vanished event or series.
	ErrNotFound = errors.New("not found")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

type NotFoundError struct {
	Kind string // "event" or "series"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// TransportError wraps a persistence failure. The in-memory list is left at
// its last known-good state; recovery is a full reload.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func EventNotFound(id string) error {
	return &NotFoundError{Kind: "event", ID: id}
}

func SeriesNotFound(id string) error {
	return &NotFoundError{Kind: "series", ID: id}
}
