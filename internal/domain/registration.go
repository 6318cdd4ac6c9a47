package domain

import (
	"context"
	"errors"
	"time"
)

// Business outcomes of a registration attempt. These are expected results,
// not failures, and map to 400 responses with distinct messages.
var (
	ErrEventFull         = errors.New("event is full")
	ErrAlreadyRegistered = errors.New("already registered")
)

// Registration represents a user's seat at an event. At most one row exists
// per (user, event) pair; rows are never mutated and are deleted only when
// the owning event is deleted.
// swagger:model Registration
type Registration struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRegistration returns a new Registration. ID is set by the repository on create.
func NewRegistration(userID, eventID string, createdAt time.Time) *Registration {
	return &Registration{
		UserID:    userID,
		EventID:   eventID,
		CreatedAt: createdAt,
	}
}

// RegistrationRepository defines storage operations for registrations.
type RegistrationRepository interface {
	// CreateWithinCapacity inserts the registration if and only if the
	// event's committed registration count is below its capacity. The
	// check and the insert happen atomically with respect to concurrent
	// attempts on the same event: the implementation must serialize
	// admission per event (row lock or equivalent). Returns ErrNotFound
	// if the event does not exist, ErrEventFull at capacity, and
	// ErrAlreadyRegistered when a row for (user, event) already exists.
	CreateWithinCapacity(ctx context.Context, reg *Registration) error
}

// Notifier is the fan-out port the registration service pushes change
// signals through. Implementations deliver best-effort to currently
// connected clients; delivery failures never propagate back.
type Notifier interface {
	RegistrationsChanged(eventID string)
}

// RegistrationService admits or rejects registration attempts.
type RegistrationService interface {
	Register(ctx context.Context, eventID, userID string) (*Registration, error)
}
