package events

import (
	"github.com/google/uuid"

	"github.com/gatherhq/events-api/internal/models"
	"github.com/gatherhq/events-api/internal/timezone"
)

// Resource is the wire form of an event with timestamps rendered in the
// request's resolved timezone.
type Resource struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Location    *string   `json:"location"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	MaxCapacity int       `json:"max_capacity"`
	CreatedAt   string    `json:"created_at"`
	UpdatedAt   string    `json:"updated_at"`
}

// NewResource renders an event in the given timezone.
func NewResource(e *models.Event, tz string) (Resource, error) {
	start, err := timezone.Format(e.StartTime, tz)
	if err != nil {
		return Resource{}, err
	}
	end, err := timezone.Format(e.EndTime, tz)
	if err != nil {
		return Resource{}, err
	}
	created, err := timezone.Format(e.CreatedAt, tz)
	if err != nil {
		return Resource{}, err
	}
	updated, err := timezone.Format(e.UpdatedAt, tz)
	if err != nil {
		return Resource{}, err
	}
	return Resource{
		ID:          e.ID,
		Name:        e.Name,
		Location:    e.Location,
		StartTime:   start,
		EndTime:     end,
		MaxCapacity: e.MaxCapacity,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}, nil
}

// NewResourceList renders a slice of events in the given timezone.
// Returns an empty (non-nil) slice for empty input.
func NewResourceList(list []models.Event, tz string) ([]Resource, error) {
	out := make([]Resource, 0, len(list))
	for i := range list {
		res, err := NewResource(&list[i], tz)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}
