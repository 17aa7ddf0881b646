package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is an organizer-published event with a capacity limit.
// Times are stored as absolute UTC instants; rendering in a caller's
// timezone happens at the API boundary.
type Event struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Location    *string   `json:"location"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	MaxCapacity int       `json:"max_capacity"` // 0 means unlimited
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EventPatch carries a partial event update. Nil fields are left unchanged.
type EventPatch struct {
	Name        *string
	Location    *string
	StartTime   *time.Time
	EndTime     *time.Time
	MaxCapacity *int
}
