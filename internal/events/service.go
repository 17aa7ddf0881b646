// Package events implements event CRUD with capacity-consistent updates.
//
// Capacity changes race with registrations, so every capacity-affecting
// write locks the event row (SELECT ... FOR UPDATE) and re-reads the
// attendee count under that lock before deciding. Registration takes the
// same lock; see the registrations package.
package events

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gatherhq/events-api/internal/models"
	"github.com/gatherhq/events-api/internal/pagination"
)

// Store is the persistence surface the service needs. The pgx Repository
// implements it; tests use a fake.
type Store interface {
	// RunInTx runs fn in one transaction, retrying transient store
	// conflicts before giving up with database.ErrUnavailable.
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	Insert(ctx context.Context, e *models.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	// GetByIDForUpdate locks the event row for the rest of the transaction.
	// This is the serialization point shared with attendee registration.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Event, error)
	// CountAttendees is a plain aggregate; it is only safe because every
	// capacity-affecting writer holds the event row lock first.
	CountAttendees(ctx context.Context, eventID uuid.UUID) (int, error)
	ApplyPatch(ctx context.Context, id uuid.UUID, patch models.EventPatch) (*models.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, includePast bool, limit, offset int) ([]models.Event, error)
	Count(ctx context.Context, includePast bool) (int, error)
}

// Cache is an optional read cache for single-event lookups.
type Cache interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Event, bool)
	Set(ctx context.Context, e *models.Event)
	Del(ctx context.Context, id uuid.UUID)
}

// Service orchestrates event operations.
type Service struct {
	store  Store
	cache  Cache // nil when Redis is not configured
	logger *zap.Logger
}

// NewService creates an event service. cache may be nil.
func NewService(store Store, cache Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, cache: cache, logger: logger}
}

// CreateInput carries a validated-for-shape create request with times
// already normalized to absolute UTC instants.
type CreateInput struct {
	Name        string
	Location    *string
	StartTime   time.Time
	EndTime     time.Time
	MaxCapacity int
}

// Create validates cross-field rules and inserts the event.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Event, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, models.ValidationError("name is required")
	}
	if in.MaxCapacity < 0 {
		return nil, models.ValidationError("max_capacity must be zero or greater")
	}
	if in.EndTime.Before(in.StartTime) {
		return nil, models.ValidationError("end_time must be on or after start_time")
	}

	e := &models.Event{
		Name:        in.Name,
		Location:    in.Location,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		MaxCapacity: in.MaxCapacity,
	}
	if err := s.store.Insert(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Get returns a single event, from cache when possible.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	if s.cache != nil {
		if e, ok := s.cache.Get(ctx, id); ok {
			return e, nil
		}
	}
	e, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, e)
	}
	return e, nil
}

// Update applies a partial update. A max_capacity decrease is validated
// against the attendee count read under the event row lock, so it cannot
// interleave with a concurrent registration.
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch models.EventPatch) (*models.Event, error) {
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		if trimmed == "" {
			return nil, models.ValidationError("name is required")
		}
		patch.Name = &trimmed
	}
	if patch.MaxCapacity != nil && *patch.MaxCapacity < 0 {
		return nil, models.ValidationError("max_capacity must be zero or greater")
	}

	var updated *models.Event
	err := s.store.RunInTx(ctx, func(txCtx context.Context) error {
		locked, err := s.store.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}

		start, end := locked.StartTime, locked.EndTime
		if patch.StartTime != nil {
			start = *patch.StartTime
		}
		if patch.EndTime != nil {
			end = *patch.EndTime
		}
		if end.Before(start) {
			return models.ValidationError("end_time must be on or after start_time")
		}

		if patch.MaxCapacity != nil && *patch.MaxCapacity > 0 {
			current, err := s.store.CountAttendees(txCtx, id)
			if err != nil {
				return err
			}
			if *patch.MaxCapacity < current {
				return &models.CapacityConflictError{NewCapacity: *patch.MaxCapacity, Current: current}
			}
		}

		updated, err = s.store.ApplyPatch(txCtx, id, patch)
		return err
	})
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Del(ctx, id)
	}
	return updated, nil
}

// Delete removes the event; attendees go with it via the store's cascade.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Del(ctx, id)
	}
	return nil
}

// List returns a page of events ordered by start time (ties broken by id)
// plus pagination meta. By default only events that have not yet ended are
// included.
func (s *Service) List(ctx context.Context, includePast bool, p pagination.Params) ([]models.Event, pagination.Meta, error) {
	total, err := s.store.Count(ctx, includePast)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	list, err := s.store.List(ctx, includePast, p.PerPage, p.Offset())
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return list, p.MetaFor(total), nil
}
