package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"kivuevent/internal/delivery/http/helpers"
	"kivuevent/internal/domain"
	"kivuevent/internal/monitoring"
)

func registrationOutcome(err error) string {
	if errors.Is(err, domain.ErrAlreadyRegistered) {
		return "duplicate"
	}
	return "error"
}

// RegisterParticipantRequest is the request body for POST /api/events/{eventID}/participants.
type RegisterParticipantRequest struct {
	UserID              string `json:"userId"`
	Company             string `json:"company"`
	JobTitle            string `json:"jobTitle"`
	DietaryRestrictions string `json:"dietaryRestrictions"`
	SpecialRequirements string `json:"specialRequirements"`
}

// Validate implements Validator.
func (r RegisterParticipantRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.UserID) == "" {
		errs = append(errs, "userId is required")
	} else if uuid.Validate(r.UserID) != nil {
		errs = append(errs, "userId must be a valid UUID")
	}
	return errs
}

// UpdateParticipantRequest is the request body for PUT /api/events/{eventID}/participants/{participantID}.
// All fields are optional; omitted fields are unchanged.
type UpdateParticipantRequest struct {
	Status              *string    `json:"status"`
	Company             *string    `json:"company"`
	JobTitle            *string    `json:"jobTitle"`
	DietaryRestrictions *string    `json:"dietaryRestrictions"`
	SpecialRequirements *string    `json:"specialRequirements"`
	FeedbackRating      *int       `json:"feedbackRating"`
	FeedbackComment     *string    `json:"feedbackComment"`
	FeedbackSubmittedAt *time.Time `json:"feedbackSubmittedAt"`
}

// Validate implements Validator.
func (u UpdateParticipantRequest) Validate() []string {
	var errs []string
	if u.Status != nil && !domain.ParticipantStatus(*u.Status).Valid() {
		errs = append(errs, "status must be one of registered, confirmed, attended, cancelled, no_show")
	}
	if u.FeedbackRating != nil && (*u.FeedbackRating < 1 || *u.FeedbackRating > 5) {
		errs = append(errs, "feedbackRating must be between 1 and 5")
	}
	return errs
}

func (u UpdateParticipantRequest) toPatch() domain.ParticipantPatch {
	patch := domain.ParticipantPatch{
		Company:             u.Company,
		JobTitle:            u.JobTitle,
		DietaryRestrictions: u.DietaryRestrictions,
		SpecialRequirements: u.SpecialRequirements,
		FeedbackRating:      u.FeedbackRating,
		FeedbackComment:     u.FeedbackComment,
		FeedbackSubmittedAt: u.FeedbackSubmittedAt,
	}
	if u.Status != nil {
		status := domain.ParticipantStatus(*u.Status)
		patch.Status = &status
	}
	return patch
}

// CheckinRequest is the request body for POST /api/events/{eventID}/participants/{participantID}/checkin.
// Payload is the string decoded from a scanned QR code.
type CheckinRequest struct {
	Payload string `json:"payload"`
}

// Validate implements Validator.
func (c CheckinRequest) Validate() []string {
	if strings.TrimSpace(c.Payload) == "" {
		return []string{"payload is required"}
	}
	return nil
}

// ParticipantSuccessResponse is the success envelope for single-participant endpoints.
type ParticipantSuccessResponse struct {
	Success bool                `json:"success"`
	Data    *domain.Participant `json:"data"`
}

// ParticipantListSuccessResponse is the success envelope for GET /api/events/{eventID}/participants (200).
type ParticipantListSuccessResponse struct {
	Success bool                  `json:"success"`
	Data    []*domain.Participant `json:"data"`
}

type ParticipantController struct {
	Logger  *slog.Logger
	Service domain.ParticipantService
}

func NewParticipantController(logger *slog.Logger, svc domain.ParticipantService) *ParticipantController {
	return &ParticipantController{
		Logger:  logger,
		Service: svc,
	}
}

// pathIDs extracts and validates the eventID (and optionally participantID)
// path values. Writes a 400 and returns false on invalid IDs.
func (c *ParticipantController) pathIDs(w http.ResponseWriter, r *http.Request, wantParticipant bool) (eventID, participantID string, ok bool) {
	eventID = r.PathValue("eventID")
	if uuid.Validate(eventID) != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, "eventID must be a valid UUID")
		return "", "", false
	}
	if wantParticipant {
		participantID = r.PathValue("participantID")
		if uuid.Validate(participantID) != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, "participantID must be a valid UUID")
			return "", "", false
		}
	}
	return eventID, participantID, true
}

// ListParticipants godoc
// @Summary List participants of an event
// @Description Returns all registrations for the event, each with its user details and a freshly derived check-in QR code.
// @Tags participants
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.ParticipantListSuccessResponse "data is an array of participants"
// @Failure 400 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "event not found"
// @Failure 500 {object} helpers.APIResponse
// @Router /api/events/{eventID}/participants [get]
func (c *ParticipantController) ListParticipants(w http.ResponseWriter, r *http.Request) {
	eventID, _, ok := c.pathIDs(w, r, false)
	if !ok {
		return
	}
	participants, err := c.Service.ListParticipants(r.Context(), eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	if participants == nil {
		participants = []*domain.Participant{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, participants)
}

// RegisterParticipant godoc
// @Summary Register a user for an event
// @Description Registers a user for the event. A user can register at most once per event; a repeat registration answers 409. On success a confirmation email is sent and the response carries the check-in QR code.
// @Tags participants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body RegisterParticipantRequest true "Registration data"
// @Success 201 {object} controllers.ParticipantSuccessResponse "data contains the new registration"
// @Failure 400 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "event or user not found"
// @Failure 409 {object} helpers.APIResponse "user already registered"
// @Failure 500 {object} helpers.APIResponse
// @Router /api/events/{eventID}/participants [post]
func (c *ParticipantController) RegisterParticipant(w http.ResponseWriter, r *http.Request) {
	eventID, _, ok := c.pathIDs(w, r, false)
	if !ok {
		return
	}
	var req RegisterParticipantRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	input := domain.RegisterParticipantInput{
		Company:             req.Company,
		JobTitle:            req.JobTitle,
		DietaryRestrictions: req.DietaryRestrictions,
		SpecialRequirements: req.SpecialRequirements,
	}
	participant, err := c.Service.RegisterParticipant(r.Context(), eventID, req.UserID, input)
	if err != nil {
		monitoring.RecordRegistration(registrationOutcome(err))
		writeServiceError(c.Logger, w, r, err)
		return
	}
	monitoring.RecordRegistration("created")
	helpers.WriteJSONSuccess(w, http.StatusCreated, participant)
}

// GetParticipant godoc
// @Summary Get a participant by ID
// @Description Returns a single registration with user details and check-in QR code. The participant must belong to the event in the path.
// @Tags participants
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param participantID path string true "Participant ID (UUID)"
// @Success 200 {object} controllers.ParticipantSuccessResponse "data contains the participant"
// @Failure 400 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Failure 500 {object} helpers.APIResponse
// @Router /api/events/{eventID}/participants/{participantID} [get]
func (c *ParticipantController) GetParticipant(w http.ResponseWriter, r *http.Request) {
	eventID, participantID, ok := c.pathIDs(w, r, true)
	if !ok {
		return
	}
	participant, err := c.Service.GetParticipant(r.Context(), participantID, eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, participant)
}

// UpdateParticipant godoc
// @Summary Update a participant
// @Description Partially updates a registration (status, profile fields, feedback). Omitted fields are unchanged; an empty body is a no-op.
// @Tags participants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param participantID path string true "Participant ID (UUID)"
// @Param body body UpdateParticipantRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.ParticipantSuccessResponse "data contains the updated participant"
// @Failure 400 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Failure 500 {object} helpers.APIResponse
// @Router /api/events/{eventID}/participants/{participantID} [put]
func (c *ParticipantController) UpdateParticipant(w http.ResponseWriter, r *http.Request) {
	eventID, participantID, ok := c.pathIDs(w, r, true)
	if !ok {
		return
	}
	var req UpdateParticipantRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	participant, err := c.Service.UpdateParticipant(r.Context(), participantID, eventID, req.toPatch())
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, participant)
}

// DeleteParticipant godoc
// @Summary Remove a participant
// @Description Deletes a registration, returning it as it was before deletion.
// @Tags participants
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param participantID path string true "Participant ID (UUID)"
// @Success 200 {object} controllers.ParticipantSuccessResponse "data contains the deleted participant"
// @Failure 400 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Failure 500 {object} helpers.APIResponse
// @Router /api/events/{eventID}/participants/{participantID} [delete]
func (c *ParticipantController) DeleteParticipant(w http.ResponseWriter, r *http.Request) {
	eventID, participantID, ok := c.pathIDs(w, r, true)
	if !ok {
		return
	}
	participant, err := c.Service.DeleteParticipant(r.Context(), participantID, eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, participant)
}

// CheckIn godoc
// @Summary Check in a participant
// @Description Validates a scanned QR payload against the stored registration and marks the participant as attended. The payload must reference the participant and event in the path; cancelled registrations cannot check in.
// @Tags participants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param participantID path string true "Participant ID (UUID)"
// @Param body body CheckinRequest true "Scanned QR payload"
// @Success 200 {object} controllers.ParticipantSuccessResponse "data contains the attended participant"
// @Failure 400 {object} helpers.APIResponse "malformed or mismatched payload"
// @Failure 401 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Failure 500 {object} helpers.APIResponse
// @Router /api/events/{eventID}/participants/{participantID}/checkin [post]
func (c *ParticipantController) CheckIn(w http.ResponseWriter, r *http.Request) {
	eventID, participantID, ok := c.pathIDs(w, r, true)
	if !ok {
		return
	}
	var req CheckinRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	participant, err := c.Service.CheckIn(r.Context(), participantID, eventID, req.Payload)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, participant)
}
