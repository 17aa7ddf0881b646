package models

import (
	"time"

	"github.com/google/uuid"
)

// Attendee is a registration for an event. Attendees are created only by
// the registration operation and removed only by event deletion cascade.
type Attendee struct {
	ID        uuid.UUID `json:"id"`
	EventID   uuid.UUID `json:"event_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
