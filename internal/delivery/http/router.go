package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"gatherly/internal/delivery/http/controllers"
	"gatherly/internal/delivery/http/middleware"
	"gatherly/internal/delivery/ws"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(
	authController *controllers.AuthController,
	eventController *controllers.EventController,
	registrationController *controllers.RegistrationController,
	authn *middleware.Authenticator,
	hub *ws.Hub,
) *http.ServeMux {
	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("POST /auth/register", authController.Register)
	mux.HandleFunc("POST /auth/login", authController.Login)
	mux.HandleFunc("POST /auth/logout", authController.Logout)
	mux.HandleFunc("GET /auth/me", authn.RequireAuth(authController.Me))

	// Events: reads are public, personalized when a viewer is known.
	mux.HandleFunc("GET /events", authn.OptionalAuth(eventController.ListEvents))
	mux.HandleFunc("GET /events/{eventID}", authn.OptionalAuth(eventController.GetEvent))
	mux.HandleFunc("POST /events", authn.RequireAuth(eventController.CreateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", authn.RequireAuth(eventController.DeleteEvent))
	mux.HandleFunc("GET /organizer/events", authn.RequireAuth(eventController.ListMyEvents))

	// Registrations
	mux.HandleFunc("POST /events/{eventID}/registrations", authn.RequireAuth(registrationController.RegisterForEvent))

	// Live registration updates
	mux.Handle("GET /ws", hub.Handler())

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
