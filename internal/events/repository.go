package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherhq/events-api/internal/models"
	"github.com/gatherhq/events-api/pkg/database"
)

const eventColumns = `id, name, location, start_time, end_time, max_capacity, created_at, updated_at`

// Repository handles event persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an event repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// RunInTx runs fn in a transaction with the standard retry policy.
func (r *Repository) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return database.RunInTx(ctx, r.pool, fn)
}

// Insert creates a new event.
func (r *Repository) Insert(ctx context.Context, e *models.Event) error {
	const q = `INSERT INTO events (id, name, location, start_time, end_time, max_capacity)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	return database.QuerierFromContext(ctx, r.pool).
		QueryRow(ctx, q, e.Name, e.Location, e.StartTime, e.EndTime, e.MaxCapacity).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// GetByID returns an event or models.ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return r.scanEvent(database.QuerierFromContext(ctx, r.pool).QueryRow(ctx, q, id))
}

// GetByIDForUpdate locks the event row for the duration of the enclosing
// transaction. All capacity-affecting writes go through this lock.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`
	return r.scanEvent(database.QuerierFromContext(ctx, r.pool).QueryRow(ctx, q, id))
}

// CountAttendees returns the attendee count for an event. The aggregate
// itself takes no lock; callers deciding capacity must hold the event row
// lock, which serializes them against every other capacity-affecting write.
func (r *Repository) CountAttendees(ctx context.Context, eventID uuid.UUID) (int, error) {
	const q = `SELECT COUNT(*) FROM attendees WHERE event_id = $1`
	var n int
	err := database.QuerierFromContext(ctx, r.pool).QueryRow(ctx, q, eventID).Scan(&n)
	return n, err
}

// ApplyPatch updates the provided fields and returns the new row. Nil patch
// fields keep their current values.
func (r *Repository) ApplyPatch(ctx context.Context, id uuid.UUID, patch models.EventPatch) (*models.Event, error) {
	const q = `UPDATE events SET
			name = COALESCE($1, name),
			location = COALESCE($2, location),
			start_time = COALESCE($3, start_time),
			end_time = COALESCE($4, end_time),
			max_capacity = COALESCE($5, max_capacity),
			updated_at = NOW()
		WHERE id = $6
		RETURNING ` + eventColumns
	return r.scanEvent(database.QuerierFromContext(ctx, r.pool).
		QueryRow(ctx, q, patch.Name, patch.Location, patch.StartTime, patch.EndTime, patch.MaxCapacity, id))
}

// Delete removes an event; the attendees FK cascades.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM events WHERE id = $1`
	tag, err := database.QuerierFromContext(ctx, r.pool).Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// List returns a page of events ordered by start_time with an id tie-break
// so pagination stays deterministic.
func (r *Repository) List(ctx context.Context, includePast bool, limit, offset int) ([]models.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events`
	if !includePast {
		q += ` WHERE end_time >= NOW()`
	}
	q += ` ORDER BY start_time ASC, id ASC LIMIT $1 OFFSET $2`

	rows, err := database.QuerierFromContext(ctx, r.pool).Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Location, &e.StartTime, &e.EndTime, &e.MaxCapacity, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Count returns how many events the List filter matches.
func (r *Repository) Count(ctx context.Context, includePast bool) (int, error) {
	q := `SELECT COUNT(*) FROM events`
	if !includePast {
		q += ` WHERE end_time >= NOW()`
	}
	var n int
	err := database.QuerierFromContext(ctx, r.pool).QueryRow(ctx, q).Scan(&n)
	return n, err
}

func (r *Repository) scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.Name, &e.Location, &e.StartTime, &e.EndTime, &e.MaxCapacity, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}
