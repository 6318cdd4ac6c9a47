package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gatherly/internal/domain"
)

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

// CreateWithinCapacity admits the registration inside a single transaction.
// The event row is locked with FOR UPDATE, so concurrent attempts on the
// same event serialize here and the count re-read always sees committed
// competitors. The (user_id, event_id) unique constraint backs the duplicate
// check even if two requests for the same user race past the lock on
// different events.
func (r *registrationRepository) CreateWithinCapacity(ctx context.Context, reg *domain.Registration) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin registration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var maxParticipants int
	err = tx.QueryRowContext(ctx,
		`SELECT max_participants FROM events WHERE id = $1 FOR UPDATE`,
		reg.EventID,
	).Scan(&maxParticipants)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("lock event: %w", err)
	}

	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1`,
		reg.EventID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("count registrations: %w", err)
	}
	if count >= maxParticipants {
		return domain.ErrEventFull
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO registrations (user_id, event_id, created_at) VALUES ($1, $2, $3) RETURNING id`,
		reg.UserID, reg.EventID, reg.CreatedAt,
	).Scan(&reg.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyRegistered
		}
		return fmt.Errorf("insert registration: %w", err)
	}

	return tx.Commit()
}
