package domain

import (
	"context"
	"time"
)

// Event represents a published event with a participant capacity.
// swagger:model Event
type Event struct {
	ID              string    `json:"id"`
	OrganizerID     string    `json:"organizer_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Date            time.Time `json:"date"`
	Location        string    `json:"location"`
	MaxParticipants int       `json:"max_participants"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewEvent returns a new Event. ID is set by the repository on create.
func NewEvent(organizerID, title, description, location string, date time.Time, maxParticipants int, createdAt time.Time) *Event {
	return &Event{
		OrganizerID:     organizerID,
		Title:           title,
		Description:     description,
		Date:            date,
		Location:        location,
		MaxParticipants: maxParticipants,
		CreatedAt:       createdAt,
	}
}

// EventWithStats is the read model for an event: its attributes plus the
// derived registration count and, when a viewer is known, whether that
// viewer is registered. The count is computed at read time, never stored.
// swagger:model EventWithStats
type EventWithStats struct {
	Event
	RegistrationCount int  `json:"registration_count"`
	IsRegistered      bool `json:"is_registered"`
}

// EventRepository defines the interface for event storage. viewerID may be
// empty, in which case IsRegistered is false on every returned row.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetWithStats(ctx context.Context, id, viewerID string) (*EventWithStats, error)
	ListWithStats(ctx context.Context, viewerID string) ([]*EventWithStats, error)
	ListByOrganizerID(ctx context.Context, organizerID string) ([]*EventWithStats, error)
	// Delete removes the event and all of its registrations in one
	// transaction; no orphan registration rows may survive.
	Delete(ctx context.Context, id string) error
}

// EventService defines organizer-facing event management plus the public
// read model.
type EventService interface {
	CreateEvent(ctx context.Context, organizerID string, event *Event) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, callerID string) error
	GetEvent(ctx context.Context, eventID, viewerID string) (*EventWithStats, error)
	ListEvents(ctx context.Context, viewerID string) ([]*EventWithStats, error)
	ListMyEvents(ctx context.Context, organizerID string) ([]*EventWithStats, error)
}
