package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced event does not exist.
	ErrNotFound = errors.New("event not found")
	// ErrEventFull is returned when a registration would exceed max_capacity.
	ErrEventFull = errors.New("event is at full capacity")
	// ErrAlreadyRegistered is returned when the (event, email) pair already exists.
	ErrAlreadyRegistered = errors.New("already registered for this event with this email")
)

// ValidationError marks malformed input rejected before any transaction is
// opened. Handlers map it to 422.
type ValidationError string

func (v ValidationError) Error() string { return string(v) }

// CapacityConflictError is returned when an update would lower max_capacity
// below the event's current attendee count. It carries both numbers so the
// handler can report the comparison.
type CapacityConflictError struct {
	NewCapacity int
	Current     int
}

func (e *CapacityConflictError) Error() string {
	return fmt.Sprintf("Max capacity (%d) cannot be less than current attendees (%d)", e.NewCapacity, e.Current)
}
