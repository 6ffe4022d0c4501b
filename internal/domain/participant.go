package domain

import (
	"context"
	"errors"
	"time"
)

// ErrAlreadyRegistered is returned when a (user, event) registration already exists.
var ErrAlreadyRegistered = errors.New("user is already registered for this event")

// ParticipantStatus is the registration state of a participant.
type ParticipantStatus string

const (
	ParticipantStatusRegistered ParticipantStatus = "registered"
	ParticipantStatusConfirmed  ParticipantStatus = "confirmed"
	ParticipantStatusAttended   ParticipantStatus = "attended"
	ParticipantStatusCancelled  ParticipantStatus = "cancelled"
	ParticipantStatusNoShow     ParticipantStatus = "no_show"
)

// Valid reports whether s is a known participant status.
func (s ParticipantStatus) Valid() bool {
	switch s {
	case ParticipantStatusRegistered, ParticipantStatusConfirmed, ParticipantStatusAttended,
		ParticipantStatusCancelled, ParticipantStatusNoShow:
		return true
	}
	return false
}

// Participant represents a user's registration for an event.
// swagger:model Participant
type Participant struct {
	ID                  string            `json:"id"`
	EventID             string            `json:"eventId"`
	UserID              string            `json:"userId"`
	RegistrationDate    time.Time         `json:"registrationDate"`
	Status              ParticipantStatus `json:"status"`
	Company             string            `json:"company,omitempty"`
	JobTitle            string            `json:"jobTitle,omitempty"`
	DietaryRestrictions string            `json:"dietaryRestrictions,omitempty"`
	SpecialRequirements string            `json:"specialRequirements,omitempty"`
	FeedbackRating      *int              `json:"feedbackRating,omitempty"`
	FeedbackComment     *string           `json:"feedbackComment,omitempty"`
	FeedbackSubmittedAt *time.Time        `json:"feedbackSubmittedAt,omitempty"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`

	// User is populated by joined reads; nil otherwise.
	User *User `json:"user,omitempty"`
	// QRCode is the scannable check-in token image, derived at read time.
	// Never persisted.
	QRCode string `json:"qrCode,omitempty"`
}

// RegisterParticipantInput carries the optional fields of a new registration.
type RegisterParticipantInput struct {
	Company             string
	JobTitle            string
	DietaryRestrictions string
	SpecialRequirements string
}

// ParticipantPatch enumerates the updatable participant fields. Nil fields
// are left untouched.
type ParticipantPatch struct {
	Status              *ParticipantStatus
	Company             *string
	JobTitle            *string
	DietaryRestrictions *string
	SpecialRequirements *string
	FeedbackRating      *int
	FeedbackComment     *string
	FeedbackSubmittedAt *time.Time
}

// IsZero reports whether the patch carries no fields.
func (p ParticipantPatch) IsZero() bool {
	return p.Status == nil && p.Company == nil && p.JobTitle == nil &&
		p.DietaryRestrictions == nil && p.SpecialRequirements == nil &&
		p.FeedbackRating == nil && p.FeedbackComment == nil && p.FeedbackSubmittedAt == nil
}

// ParticipantRepository defines storage operations for event registrations.
// All reads join the participant to its user row.
type ParticipantRepository interface {
	Create(ctx context.Context, p *Participant) error
	GetByID(ctx context.Context, id, eventID string) (*Participant, error)
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Participant, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Participant, error)
	Update(ctx context.Context, id, eventID string, patch ParticipantPatch) (*Participant, error)
	// Delete removes the participant and returns the row as it was before
	// deletion.
	Delete(ctx context.Context, id, eventID string) (*Participant, error)
}

// ParticipantService defines the participant registry: registration,
// check-in, and per-event participant management.
type ParticipantService interface {
	ListParticipants(ctx context.Context, eventID string) ([]*Participant, error)
	RegisterParticipant(ctx context.Context, eventID, userID string, input RegisterParticipantInput) (*Participant, error)
	GetParticipant(ctx context.Context, id, eventID string) (*Participant, error)
	UpdateParticipant(ctx context.Context, id, eventID string, patch ParticipantPatch) (*Participant, error)
	DeleteParticipant(ctx context.Context, id, eventID string) (*Participant, error)
	// CheckIn validates a scanned payload against the stored participant row
	// and marks the participant as attended.
	CheckIn(ctx context.Context, id, eventID, payload string) (*Participant, error)
}
