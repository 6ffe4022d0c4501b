package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"kivuevent/internal/domain"
)

type participantService struct {
	eventRepo       domain.EventRepository
	participantRepo domain.ParticipantRepository
	userRepo        domain.UserRepository
	encoder         domain.CheckinEncoder
	emailService    domain.EmailService
}

// NewParticipantService creates a ParticipantService. emailService may be nil;
// registration confirmations are then skipped.
func NewParticipantService(
	eventRepo domain.EventRepository,
	participantRepo domain.ParticipantRepository,
	userRepo domain.UserRepository,
	encoder domain.CheckinEncoder,
	emailService domain.EmailService,
) domain.ParticipantService {
	return &participantService{
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		userRepo:        userRepo,
		encoder:         encoder,
		emailService:    emailService,
	}
}

// attachToken derives the check-in token from the participant's identity
// triple and renders it as the qrCode field. Same triple, same token, so the
// field is stable across reads.
func (s *participantService) attachToken(p *domain.Participant) error {
	token := domain.CheckinToken{ParticipantID: p.ID, EventID: p.EventID, UserID: p.UserID}
	img, err := s.encoder.EncodeImage(token.Payload())
	if err != nil {
		return fmt.Errorf("encode check-in token: %w", err)
	}
	p.QRCode = img
	return nil
}

func (s *participantService) ListParticipants(ctx context.Context, eventID string) ([]*domain.Participant, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	participants, err := s.participantRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	for _, p := range participants {
		if err := s.attachToken(p); err != nil {
			return nil, err
		}
	}
	return participants, nil
}

func (s *participantService) RegisterParticipant(ctx context.Context, eventID, userID string, input domain.RegisterParticipantInput) (*domain.Participant, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", domain.ErrInvalidInput)
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	// Pre-check for an existing registration. The unique (user_id, event_id)
	// constraint catches the race between this read and the insert.
	if _, err := s.participantRepo.GetByEventAndUser(ctx, eventID, userID); err == nil {
		return nil, domain.ErrAlreadyRegistered
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get registration: %w", err)
	}

	now := time.Now()
	p := &domain.Participant{
		ID:                  uuid.NewString(),
		EventID:             eventID,
		UserID:              userID,
		RegistrationDate:    now,
		Status:              domain.ParticipantStatusRegistered,
		Company:             input.Company,
		JobTitle:            input.JobTitle,
		DietaryRestrictions: input.DietaryRestrictions,
		SpecialRequirements: input.SpecialRequirements,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.participantRepo.Create(ctx, p); err != nil {
		if errors.Is(err, domain.ErrAlreadyRegistered) {
			return nil, domain.ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("create participant: %w", err)
	}

	created, err := s.participantRepo.GetByID(ctx, p.ID, eventID)
	if err != nil {
		return nil, fmt.Errorf("get created participant: %w", err)
	}
	if err := s.attachToken(created); err != nil {
		return nil, err
	}

	// Confirmation mail is best effort; a mail failure never fails the
	// registration.
	if s.emailService != nil {
		data := &domain.RegistrationEmailData{
			Email:          user.Email,
			FirstName:      user.FirstName,
			EventTitle:     event.Title,
			EventStart:     event.StartDate,
			CheckinPayload: domain.CheckinToken{ParticipantID: created.ID, EventID: created.EventID, UserID: created.UserID}.Payload(),
		}
		if err := s.emailService.SendRegistrationConfirmation(ctx, data); err != nil {
			log.Printf("[EMAIL] registration confirmation to %s failed: %v", user.Email, err)
		}
	}

	return created, nil
}

func (s *participantService) GetParticipant(ctx context.Context, id, eventID string) (*domain.Participant, error) {
	p, err := s.participantRepo.GetByID(ctx, id, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get participant: %w", err)
	}
	if err := s.attachToken(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *participantService) UpdateParticipant(ctx context.Context, id, eventID string, patch domain.ParticipantPatch) (*domain.Participant, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown participant status %q", domain.ErrInvalidInput, *patch.Status)
	}
	if patch.FeedbackRating != nil && (*patch.FeedbackRating < 1 || *patch.FeedbackRating > 5) {
		return nil, fmt.Errorf("%w: feedbackRating must be between 1 and 5", domain.ErrInvalidInput)
	}

	p, err := s.participantRepo.Update(ctx, id, eventID, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update participant: %w", err)
	}
	if err := s.attachToken(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *participantService) DeleteParticipant(ctx context.Context, id, eventID string) (*domain.Participant, error) {
	p, err := s.participantRepo.Delete(ctx, id, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("delete participant: %w", err)
	}
	return p, nil
}

func (s *participantService) CheckIn(ctx context.Context, id, eventID, payload string) (*domain.Participant, error) {
	token, err := domain.ParseCheckinPayload(payload)
	if err != nil {
		return nil, err
	}

	p, err := s.participantRepo.GetByID(ctx, id, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get participant: %w", err)
	}

	// The payload is unauthenticated; the stored row is the source of truth.
	if token.ParticipantID != p.ID || token.EventID != p.EventID || token.UserID != p.UserID {
		return nil, fmt.Errorf("%w: check-in token does not match participant", domain.ErrInvalidInput)
	}
	if p.Status == domain.ParticipantStatusCancelled {
		return nil, fmt.Errorf("%w: registration is cancelled", domain.ErrInvalidInput)
	}

	attended := domain.ParticipantStatusAttended
	updated, err := s.participantRepo.Update(ctx, id, eventID, domain.ParticipantPatch{Status: &attended})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update participant status: %w", err)
	}
	if err := s.attachToken(updated); err != nil {
		return nil, err
	}
	return updated, nil
}
