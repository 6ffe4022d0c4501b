package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"kivuevent/internal/delivery/http/controllers"
	"kivuevent/internal/delivery/http/middleware"
	"kivuevent/internal/domain"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	Events       *controllers.EventController
	Participants *controllers.ParticipantController
	Users        *controllers.UserController
	Venues       *controllers.VenueController
	Health       *controllers.HealthController
	Verifier     domain.TokenVerifier
}

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(deps RouterDeps) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(deps.Verifier)

	// Events
	mux.HandleFunc("GET /api/events", deps.Events.ListEvents)
	mux.HandleFunc("POST /api/events", auth(deps.Events.CreateEvent))
	mux.HandleFunc("GET /api/events/{eventID}", deps.Events.GetEvent)
	mux.HandleFunc("PUT /api/events/{eventID}", auth(deps.Events.UpdateEvent))
	mux.HandleFunc("DELETE /api/events/{eventID}", auth(deps.Events.DeleteEvent))

	// Participants
	mux.HandleFunc("GET /api/events/{eventID}/participants", auth(deps.Participants.ListParticipants))
	mux.HandleFunc("POST /api/events/{eventID}/participants", auth(deps.Participants.RegisterParticipant))
	mux.HandleFunc("GET /api/events/{eventID}/participants/{participantID}", auth(deps.Participants.GetParticipant))
	mux.HandleFunc("PUT /api/events/{eventID}/participants/{participantID}", auth(deps.Participants.UpdateParticipant))
	mux.HandleFunc("DELETE /api/events/{eventID}/participants/{participantID}", auth(deps.Participants.DeleteParticipant))
	mux.HandleFunc("POST /api/events/{eventID}/participants/{participantID}/checkin", auth(deps.Participants.CheckIn))

	// Auth
	mux.HandleFunc("POST /api/auth/signup", deps.Users.SignUp)
	mux.HandleFunc("POST /api/auth/login", deps.Users.Login)

	// Profile
	mux.HandleFunc("GET /api/users/me", auth(deps.Users.GetMe))
	mux.HandleFunc("PUT /api/users/me", auth(deps.Users.UpdateMe))

	// Venues
	mux.HandleFunc("GET /api/venues", deps.Venues.ListVenues)

	// Operational
	mux.HandleFunc("GET /healthz", deps.Health.Healthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
