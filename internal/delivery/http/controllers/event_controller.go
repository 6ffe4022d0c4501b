package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"kivuevent/internal/delivery/http/helpers"
	"kivuevent/internal/domain"
)

// LocationRequest is the optional venue block accepted on event creation.
// A venue with the same name and address is reused instead of duplicated.
type LocationRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Country  string `json:"country"`
	Capacity int    `json:"capacity"`
}

// CreateEventRequest is the request body for POST /api/events.
// Dates are RFC 3339 strings.
type CreateEventRequest struct {
	Title                string           `json:"title"`
	Description          string           `json:"description"`
	Category             string           `json:"category"`
	StartDate            string           `json:"startDate"`
	EndDate              string           `json:"endDate"`
	Capacity             int              `json:"capacity"`
	RegistrationDeadline string           `json:"registrationDeadline"`
	Status               string           `json:"status"`
	ImageURL             string           `json:"imageUrl"`
	Tags                 []string         `json:"tags"`
	Price                float64          `json:"price"`
	OrganizerID          string           `json:"organizerId"`
	Location             *LocationRequest `json:"location"`
}

// Validate implements Validator. Returns error messages for required fields
// and date format rules.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	if strings.TrimSpace(c.Description) == "" {
		errs = append(errs, "description is required")
	}
	if strings.TrimSpace(c.Category) == "" {
		errs = append(errs, "category is required")
	}
	if c.StartDate == "" {
		errs = append(errs, "startDate is required")
	} else if _, err := time.Parse(time.RFC3339, c.StartDate); err != nil {
		errs = append(errs, "startDate must be an RFC 3339 timestamp")
	}
	if c.EndDate == "" {
		errs = append(errs, "endDate is required")
	} else if _, err := time.Parse(time.RFC3339, c.EndDate); err != nil {
		errs = append(errs, "endDate must be an RFC 3339 timestamp")
	}
	if c.RegistrationDeadline != "" {
		if _, err := time.Parse(time.RFC3339, c.RegistrationDeadline); err != nil {
			errs = append(errs, "registrationDeadline must be an RFC 3339 timestamp")
		}
	}
	if strings.TrimSpace(c.OrganizerID) == "" {
		errs = append(errs, "organizerId is required")
	}
	return errs
}

// toInput converts a validated request into the service input. Must only be
// called after Validate has passed; date parse errors are impossible here.
func (c CreateEventRequest) toInput() domain.CreateEventInput {
	start, _ := time.Parse(time.RFC3339, c.StartDate)
	end, _ := time.Parse(time.RFC3339, c.EndDate)
	input := domain.CreateEventInput{
		Title:       strings.TrimSpace(c.Title),
		Description: c.Description,
		Category:    c.Category,
		StartDate:   start,
		EndDate:     end,
		Capacity:    c.Capacity,
		Status:      domain.EventStatus(c.Status),
		ImageURL:    c.ImageURL,
		Tags:        c.Tags,
		Price:       c.Price,
		OrganizerID: c.OrganizerID,
	}
	if c.RegistrationDeadline != "" {
		deadline, _ := time.Parse(time.RFC3339, c.RegistrationDeadline)
		input.RegistrationDeadline = &deadline
	}
	if c.Location != nil {
		input.Venue = &domain.VenueCandidate{
			Name:     c.Location.Name,
			Address:  c.Location.Address,
			City:     c.Location.City,
			Country:  c.Location.Country,
			Capacity: c.Location.Capacity,
		}
	}
	return input
}

// UpdateEventRequest is the request body for PUT /api/events/{eventID}.
// All fields are optional; omitted fields are unchanged.
type UpdateEventRequest struct {
	Title                *string      `json:"title"`
	Description          *string      `json:"description"`
	Category             *string      `json:"category"`
	StartDate            *time.Time   `json:"startDate"`
	EndDate              *time.Time   `json:"endDate"`
	Capacity             *int         `json:"capacity"`
	RegistrationDeadline *time.Time   `json:"registrationDeadline"`
	Status               *string      `json:"status"`
	ImageURL             *string      `json:"imageUrl"`
	Tags                 *[]string    `json:"tags"`
	Price                *float64     `json:"price"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		errs = append(errs, "title cannot be empty")
	}
	if u.Status != nil && !domain.EventStatus(*u.Status).Valid() {
		errs = append(errs, "status must be one of draft, published, ongoing, completed, cancelled")
	}
	if u.Price != nil && *u.Price < 0 {
		errs = append(errs, "price must be non-negative")
	}
	if u.Capacity != nil && *u.Capacity < 1 {
		errs = append(errs, "capacity must be at least 1")
	}
	return errs
}

func (u UpdateEventRequest) toPatch() domain.EventPatch {
	patch := domain.EventPatch{
		Title:                u.Title,
		Description:          u.Description,
		Category:             u.Category,
		StartDate:            u.StartDate,
		EndDate:              u.EndDate,
		Capacity:             u.Capacity,
		RegistrationDeadline: u.RegistrationDeadline,
		ImageURL:             u.ImageURL,
		Tags:                 u.Tags,
		Price:                u.Price,
	}
	if u.Status != nil {
		status := domain.EventStatus(*u.Status)
		patch.Status = &status
	}
	return patch
}

// EventSuccessResponse is the success envelope for single-event endpoints.
type EventSuccessResponse struct {
	Success bool          `json:"success"`
	Data    *domain.Event `json:"data"`
}

// EventListSuccessResponse is the success envelope for GET /api/events (200).
type EventListSuccessResponse struct {
	Success    bool                    `json:"success"`
	Data       []*domain.Event         `json:"data"`
	Pagination *helpers.PaginationMeta `json:"pagination"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// ListEvents godoc
// @Summary List events
// @Description Returns a paginated list of events, newest start date first. Filterable by category, status, and a case-insensitive search over title and description.
// @Tags events
// @Produce json
// @Param category query string false "Filter by category"
// @Param status query string false "Filter by status (draft, published, ongoing, completed, cancelled)"
// @Param search query string false "Search title and description (case-insensitive substring)"
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.EventListSuccessResponse "data is an array of events"
// @Failure 400 {object} helpers.APIResponse
// @Failure 500 {object} helpers.APIResponse
// @Router /api/events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter := domain.EventFilter{
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
		Status:   domain.EventStatus(strings.TrimSpace(r.URL.Query().Get("status"))),
		Search:   strings.TrimSpace(r.URL.Query().Get("search")),
	}
	params := helpers.ParsePagination(r)
	events, total, err := c.Service.ListEvents(r.Context(), filter, params)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}
	meta := helpers.NewPaginationMeta(params.Page, params.Limit, total)
	helpers.WriteJSONPage(w, http.StatusOK, events, meta)
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates an event. The optional location block is resolved to a venue: an existing venue with the same name and address is reused, otherwise a new one is created. Venue resolution and event insertion happen in a single transaction.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event to create"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event with organizer and venue"
// @Failure 400 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "organizer not found"
// @Failure 500 {object} helpers.APIResponse
// @Router /api/events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.CreateEvent(r.Context(), req.toInput())
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// GetEvent godoc
// @Summary Get an event by ID
// @Description Returns a single event with its organizer and venue.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the event"
// @Failure 400 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Failure 500 {object} helpers.APIResponse
// @Router /api/events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if uuid.Validate(eventID) != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, "eventID must be a valid UUID")
		return
	}
	event, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Partially updates an event. Omitted fields are unchanged; an empty body is a no-op that returns the current event.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Failure 500 {object} helpers.APIResponse
// @Router /api/events/{eventID} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if uuid.Validate(eventID) != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, "eventID must be a valid UUID")
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), eventID, req.toPatch())
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes an event and all of its participant registrations, returning the event as it was before deletion.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the deleted event"
// @Failure 400 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Failure 500 {object} helpers.APIResponse
// @Router /api/events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if uuid.Validate(eventID) != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, "eventID must be a valid UUID")
		return
	}
	event, err := c.Service.DeleteEvent(r.Context(), eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}
