package domain

import (
	"context"
	"time"
)

// Placeholder values used when a venue is created without full details.
const (
	VenuePendingName    = "To be defined"
	VenuePendingStreet  = "To be defined"
	VenueUnspecified    = "Unspecified"
	DefaultVenueCapacity = 100
)

// Venue represents a physical location where events are held.
// swagger:model Venue
type Venue struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Street     string    `json:"street"`
	City       string    `json:"city"`
	Country    string    `json:"country"`
	Capacity   int       `json:"capacity"`
	Facilities []string  `json:"facilities"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// VenueCandidate is the caller-supplied location used to resolve a venue.
// (Name, Address) is the deduplication key: a venue with the same name and
// street is reused instead of inserted again.
type VenueCandidate struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	City     string `json:"city,omitempty"`
	Country  string `json:"country,omitempty"`
	Capacity int    `json:"capacity,omitempty"`
}

// VenueRepository defines the interface for venue storage.
type VenueRepository interface {
	// Resolve finds a venue matching the candidate's (name, address) pair or
	// inserts a new one, returning the venue id. A nil candidate creates a
	// placeholder venue.
	Resolve(ctx context.Context, candidate *VenueCandidate) (string, error)
	ListActive(ctx context.Context) ([]*Venue, error)
}
