package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gatherly/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (organizer_id, title, description, date, location, max_participants, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.OrganizerID, e.Title, e.Description, e.Date, e.Location, e.MaxParticipants, e.CreatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT id, organizer_id, title, description, date, location, max_participants, created_at
		FROM events
		WHERE id = $1
	`
	e := &domain.Event{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.OrganizerID, &e.Title, &e.Description, &e.Date, &e.Location, &e.MaxParticipants, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// statsSelect derives registration_count and is_registered at read time.
// viewerID is compared as text so an empty (anonymous) viewer never trips
// the uuid parser; is_registered is simply false for anonymous reads.
const statsSelect = `
	SELECT e.id, e.organizer_id, e.title, e.description, e.date, e.location, e.max_participants, e.created_at,
		(SELECT COUNT(*) FROM registrations r WHERE r.event_id = e.id) AS registration_count,
		EXISTS (SELECT 1 FROM registrations r WHERE r.event_id = e.id AND r.user_id::text = $1) AS is_registered
	FROM events e
`

func (r *eventRepository) GetWithStats(ctx context.Context, id, viewerID string) (*domain.EventWithStats, error) {
	query := statsSelect + ` WHERE e.id = $2`
	ev := &domain.EventWithStats{}
	err := r.DB.QueryRowContext(ctx, query, viewerID, id).Scan(
		&ev.ID, &ev.OrganizerID, &ev.Title, &ev.Description, &ev.Date, &ev.Location,
		&ev.MaxParticipants, &ev.CreatedAt, &ev.RegistrationCount, &ev.IsRegistered,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return ev, nil
}

func (r *eventRepository) ListWithStats(ctx context.Context, viewerID string) ([]*domain.EventWithStats, error) {
	query := statsSelect + ` ORDER BY e.created_at, e.id`
	return r.queryStats(ctx, query, viewerID)
}

func (r *eventRepository) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.EventWithStats, error) {
	query := statsSelect + ` WHERE e.organizer_id = $2 ORDER BY e.created_at, e.id`
	return r.queryStats(ctx, query, organizerID, organizerID)
}

func (r *eventRepository) queryStats(ctx context.Context, query string, args ...any) ([]*domain.EventWithStats, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.EventWithStats, 0)
	for rows.Next() {
		ev := &domain.EventWithStats{}
		if err := rows.Scan(
			&ev.ID, &ev.OrganizerID, &ev.Title, &ev.Description, &ev.Date, &ev.Location,
			&ev.MaxParticipants, &ev.CreatedAt, &ev.RegistrationCount, &ev.IsRegistered,
		); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Delete removes the event and its registrations in a single transaction.
// The event row is locked first so an in-flight admission holding the same
// FOR UPDATE lock cannot slip a new registration in between the cascade and
// the event delete.
func (r *eventRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete event: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var locked string
	err = tx.QueryRowContext(ctx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("lock event: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM registrations WHERE event_id = $1`, id); err != nil {
		return fmt.Errorf("delete registrations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return tx.Commit()
}
