package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared across repositories and services.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
)

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusOngoing   EventStatus = "ongoing"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

// Valid reports whether s is a known event status.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusDraft, EventStatusPublished, EventStatusOngoing, EventStatusCompleted, EventStatusCancelled:
		return true
	}
	return false
}

// Event represents a business event hosted at a venue.
// swagger:model Event
type Event struct {
	ID                   string      `json:"id"`
	Title                string      `json:"title"`
	Description          string      `json:"description"`
	Category             string      `json:"category"`
	StartDate            time.Time   `json:"startDate"`
	EndDate              time.Time   `json:"endDate"`
	Capacity             int         `json:"capacity"`
	RegistrationDeadline time.Time   `json:"registrationDeadline"`
	Status               EventStatus `json:"status"`
	ImageURL             string      `json:"imageUrl,omitempty"`
	Tags                 []string    `json:"tags"`
	Price                float64     `json:"price"`
	OrganizerID          string      `json:"organizerId"`
	VenueID              string      `json:"venueId"`
	CreatedAt            time.Time   `json:"createdAt"`
	UpdatedAt            time.Time   `json:"updatedAt"`

	// Populated by joined reads; nil otherwise.
	Organizer *User  `json:"organizer,omitempty"`
	Venue     *Venue `json:"venue,omitempty"`
}

// EventFilter narrows event list queries. Zero-value fields are ignored.
// Search matches title or description as a case-insensitive substring.
type EventFilter struct {
	Category string
	Status   EventStatus
	Search   string
}

// EventPatch enumerates the updatable event fields. Nil fields are left
// untouched by an update.
type EventPatch struct {
	Title                *string
	Description          *string
	Category             *string
	StartDate            *time.Time
	EndDate              *time.Time
	Capacity             *int
	RegistrationDeadline *time.Time
	Status               *EventStatus
	ImageURL             *string
	Tags                 *[]string
	Price                *float64
}

// IsZero reports whether the patch carries no fields.
func (p EventPatch) IsZero() bool {
	return p.Title == nil && p.Description == nil && p.Category == nil &&
		p.StartDate == nil && p.EndDate == nil && p.Capacity == nil &&
		p.RegistrationDeadline == nil && p.Status == nil && p.ImageURL == nil &&
		p.Tags == nil && p.Price == nil
}

// CreateEventInput carries the validated fields for event creation.
// Venue is optional; the repository resolves it to a venue row inside the
// create transaction.
type CreateEventInput struct {
	Title                string
	Description          string
	Category             string
	StartDate            time.Time
	EndDate              time.Time
	Capacity             int
	RegistrationDeadline *time.Time
	Status               EventStatus
	ImageURL             string
	Tags                 []string
	Price                float64
	OrganizerID          string
	Venue                *VenueCandidate
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	// CreateWithVenue resolves the venue candidate and inserts the event in a
	// single transaction. On success event.ID and event.VenueID are set.
	CreateWithVenue(ctx context.Context, event *Event, venue *VenueCandidate) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	Update(ctx context.Context, id string, patch EventPatch) (*Event, error)
	// Delete removes the event and its participants, returning the joined row
	// as it was before deletion.
	Delete(ctx context.Context, id string) (*Event, error)
}

// EventService defines the business logic for event management.
type EventService interface {
	CreateEvent(ctx context.Context, input CreateEventInput) (*Event, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	ListEvents(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	UpdateEvent(ctx context.Context, id string, patch EventPatch) (*Event, error)
	DeleteEvent(ctx context.Context, id string) (*Event, error)
}
