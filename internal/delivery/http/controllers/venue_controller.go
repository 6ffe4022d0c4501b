package controllers

import (
	"log/slog"
	"net/http"

	"kivuevent/internal/delivery/http/helpers"
	"kivuevent/internal/domain"
)

// VenueListSuccessResponse is the success envelope for GET /api/venues (200).
type VenueListSuccessResponse struct {
	Success bool            `json:"success"`
	Data    []*domain.Venue `json:"data"`
}

type VenueController struct {
	Logger *slog.Logger
	Repo   domain.VenueRepository
}

func NewVenueController(logger *slog.Logger, repo domain.VenueRepository) *VenueController {
	return &VenueController{
		Logger: logger,
		Repo:   repo,
	}
}

// ListVenues godoc
// @Summary List active venues
// @Description Returns all active venues, alphabetically by name.
// @Tags venues
// @Produce json
// @Success 200 {object} controllers.VenueListSuccessResponse "data is an array of venues"
// @Failure 500 {object} helpers.APIResponse
// @Router /api/venues [get]
func (c *VenueController) ListVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := c.Repo.ListActive(r.Context())
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	if venues == nil {
		venues = []*domain.Venue{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, venues)
}
