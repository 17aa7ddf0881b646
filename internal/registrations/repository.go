package registrations

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherhq/events-api/internal/models"
	"github.com/gatherhq/events-api/pkg/database"
)

const attendeeColumns = `id, event_id, name, email, created_at, updated_at`

// sortOrders whitelists attendee sort orders. Every order tie-breaks on id
// in the same direction so pagination never duplicates or skips rows when
// attendees share a sort key.
var sortOrders = map[string]string{
	"created_at_desc": "created_at DESC, id DESC",
	"created_at_asc":  "created_at ASC, id ASC",
	"name_asc":        "name ASC, id ASC",
	"name_desc":       "name DESC, id DESC",
}

const defaultSort = "created_at_desc"

// Repository handles attendee persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a registrations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// RunInTx runs fn in a transaction with the standard retry policy.
func (r *Repository) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return database.RunInTx(ctx, r.pool, fn)
}

// GetEventForUpdate locks the event row for the rest of the transaction.
func (r *Repository) GetEventForUpdate(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	const q = `SELECT id, name, location, start_time, end_time, max_capacity, created_at, updated_at
		FROM events WHERE id = $1 FOR UPDATE`
	var e models.Event
	err := database.QuerierFromContext(ctx, r.pool).QueryRow(ctx, q, eventID).
		Scan(&e.ID, &e.Name, &e.Location, &e.StartTime, &e.EndTime, &e.MaxCapacity, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// CountAttendees returns the attendee count. See Store.CountAttendees for
// the lock discipline that makes this plain aggregate safe.
func (r *Repository) CountAttendees(ctx context.Context, eventID uuid.UUID) (int, error) {
	const q = `SELECT COUNT(*) FROM attendees WHERE event_id = $1`
	var n int
	err := database.QuerierFromContext(ctx, r.pool).QueryRow(ctx, q, eventID).Scan(&n)
	return n, err
}

// InsertAttendee creates the attendee row. The (event_id, email) unique
// constraint is the hard backstop for duplicate registrations, independent
// of the event row lock.
func (r *Repository) InsertAttendee(ctx context.Context, a *models.Attendee) error {
	const q = `INSERT INTO attendees (id, event_id, name, email)
		VALUES (gen_random_uuid(), $1, $2, $3)
		RETURNING id, created_at, updated_at`
	err := database.QuerierFromContext(ctx, r.pool).QueryRow(ctx, q, a.EventID, a.Name, a.Email).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return models.ErrAlreadyRegistered
		}
		return err
	}
	return nil
}

// EventExists returns models.ErrNotFound when the event is missing.
func (r *Repository) EventExists(ctx context.Context, eventID uuid.UUID) error {
	const q = `SELECT 1 FROM events WHERE id = $1`
	var one int
	err := database.QuerierFromContext(ctx, r.pool).QueryRow(ctx, q, eventID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	return err
}

// Search returns a page of attendees, optionally filtered by a
// case-insensitive substring match on name or email.
func (r *Repository) Search(ctx context.Context, eventID uuid.UUID, query, sort string, limit, offset int) ([]models.Attendee, error) {
	order, ok := sortOrders[sort]
	if !ok {
		order = sortOrders[defaultSort]
	}

	q := `SELECT ` + attendeeColumns + ` FROM attendees WHERE event_id = $1`
	args := []any{eventID}
	if query != "" {
		q += ` AND (name ILIKE '%' || $2 || '%' OR email ILIKE '%' || $2 || '%')`
		args = append(args, query)
	}
	q += ` ORDER BY ` + order
	q += ` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := database.QuerierFromContext(ctx, r.pool).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Attendee
	for rows.Next() {
		var a models.Attendee
		if err := rows.Scan(&a.ID, &a.EventID, &a.Name, &a.Email, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// Count returns how many attendees the Search filter matches.
func (r *Repository) Count(ctx context.Context, eventID uuid.UUID, query string) (int, error) {
	q := `SELECT COUNT(*) FROM attendees WHERE event_id = $1`
	args := []any{eventID}
	if query != "" {
		q += ` AND (name ILIKE '%' || $2 || '%' OR email ILIKE '%' || $2 || '%')`
		args = append(args, query)
	}
	var n int
	err := database.QuerierFromContext(ctx, r.pool).QueryRow(ctx, q, args...).Scan(&n)
	return n, err
}
