// Package registrations implements attendee registration and listing.
//
// Registration is the capacity-critical path: the attendee count may never
// exceed max_capacity no matter how many registrations race. The protocol is
// lock the event row, count attendees under that lock, check, insert, commit.
// Capacity updates (events package) take the same row lock, so a registration
// and a capacity decrease can never interleave.
package registrations

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gatherhq/events-api/internal/models"
	"github.com/gatherhq/events-api/internal/pagination"
)

// Store is the persistence surface the service needs.
type Store interface {
	// RunInTx runs fn in one transaction, retrying transient store
	// conflicts before giving up with database.ErrUnavailable.
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	// GetEventForUpdate locks the event row; the lock is the serialization
	// point shared with capacity updates.
	GetEventForUpdate(ctx context.Context, eventID uuid.UUID) (*models.Event, error)
	// CountAttendees is only safe for capacity decisions while the caller
	// holds the event row lock.
	CountAttendees(ctx context.Context, eventID uuid.UUID) (int, error)
	// InsertAttendee creates the row; the store's (event_id, email) unique
	// constraint reports duplicates as models.ErrAlreadyRegistered.
	InsertAttendee(ctx context.Context, a *models.Attendee) error
	EventExists(ctx context.Context, eventID uuid.UUID) error
	Search(ctx context.Context, eventID uuid.UUID, query, sort string, limit, offset int) ([]models.Attendee, error)
	Count(ctx context.Context, eventID uuid.UUID, query string) (int, error)
}

// Service orchestrates registration operations.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService creates a registration service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// Register adds an attendee to an event if capacity allows. Exactly one of
// two racing registrations for the last seat succeeds; the other gets
// models.ErrEventFull.
func (s *Service) Register(ctx context.Context, eventID uuid.UUID, name, email string) (*models.Attendee, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.ValidationError("name is required")
	}
	if email == "" {
		return nil, models.ValidationError("email is required")
	}

	attendee := &models.Attendee{
		EventID: eventID,
		Name:    name,
		Email:   email,
	}
	err := s.store.RunInTx(ctx, func(txCtx context.Context) error {
		locked, err := s.store.GetEventForUpdate(txCtx, eventID)
		if err != nil {
			return err
		}

		// max_capacity 0 means unlimited.
		if locked.MaxCapacity > 0 {
			current, err := s.store.CountAttendees(txCtx, eventID)
			if err != nil {
				return err
			}
			if current >= locked.MaxCapacity {
				return models.ErrEventFull
			}
		}

		return s.store.InsertAttendee(txCtx, attendee)
	})
	if err != nil {
		return nil, err
	}
	return attendee, nil
}

// List returns a page of attendees for an event with optional
// case-insensitive name/email search and a whitelisted sort order.
func (s *Service) List(ctx context.Context, eventID uuid.UUID, query, sort string, p pagination.Params) ([]models.Attendee, pagination.Meta, error) {
	if err := s.store.EventExists(ctx, eventID); err != nil {
		return nil, pagination.Meta{}, err
	}
	total, err := s.store.Count(ctx, eventID, query)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	list, err := s.store.Search(ctx, eventID, query, sort, p.PerPage, p.Offset())
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return list, p.MetaFor(total), nil
}
