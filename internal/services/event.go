package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kivuevent/internal/domain"
)

// defaultDeadlineLead is how long before the start the registration deadline
// falls when the caller does not supply one.
const defaultDeadlineLead = 24 * time.Hour

type eventService struct {
	eventRepo      domain.EventRepository
	contextTimeout time.Duration
}

// NewEventService creates an EventService with the given repository.
func NewEventService(eventRepo domain.EventRepository, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, input domain.CreateEventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if input.OrganizerID == "" {
		return nil, fmt.Errorf("%w: organizerId is required", domain.ErrInvalidInput)
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, fmt.Errorf("%w: endDate must be after startDate", domain.ErrInvalidInput)
	}

	deadline := input.StartDate.Add(-defaultDeadlineLead)
	if input.RegistrationDeadline != nil {
		deadline = *input.RegistrationDeadline
	}
	if !deadline.Before(input.StartDate) {
		return nil, fmt.Errorf("%w: registrationDeadline must be before startDate", domain.ErrInvalidInput)
	}

	status := input.Status
	if status == "" {
		status = domain.EventStatusDraft
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown event status %q", domain.ErrInvalidInput, input.Status)
	}
	if input.Price < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", domain.ErrInvalidInput)
	}
	capacity := input.Capacity
	if capacity <= 0 {
		capacity = domain.DefaultVenueCapacity
	}
	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	now := time.Now()
	event := &domain.Event{
		Title:                input.Title,
		Description:          input.Description,
		Category:             input.Category,
		StartDate:            input.StartDate,
		EndDate:              input.EndDate,
		Capacity:             capacity,
		RegistrationDeadline: deadline,
		Status:               status,
		ImageURL:             input.ImageURL,
		Tags:                 tags,
		Price:                input.Price,
		OrganizerID:          input.OrganizerID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.eventRepo.CreateWithVenue(ctx, event, input.Venue); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	// Re-read so the response carries the joined organizer and venue.
	created, err := s.eventRepo.GetByID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("get created event: %w", err)
	}
	return created, nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown event status %q", domain.ErrInvalidInput, filter.Status)
	}
	events, total, err := s.eventRepo.List(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return events, total, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if patch.Status != nil && !patch.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown event status %q", domain.ErrInvalidInput, *patch.Status)
	}
	if patch.Price != nil && *patch.Price < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", domain.ErrInvalidInput)
	}

	current, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	// Date ordering must hold against the row as it will be after the patch.
	start := current.StartDate
	if patch.StartDate != nil {
		start = *patch.StartDate
	}
	end := current.EndDate
	if patch.EndDate != nil {
		end = *patch.EndDate
	}
	if !end.After(start) {
		return nil, fmt.Errorf("%w: endDate must be after startDate", domain.ErrInvalidInput)
	}
	deadline := current.RegistrationDeadline
	if patch.RegistrationDeadline != nil {
		deadline = *patch.RegistrationDeadline
	}
	if !deadline.Before(start) {
		return nil, fmt.Errorf("%w: registrationDeadline must be before startDate", domain.ErrInvalidInput)
	}

	updated, err := s.eventRepo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	deleted, err := s.eventRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("delete event: %w", err)
	}
	return deleted, nil
}
