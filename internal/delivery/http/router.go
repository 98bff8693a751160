package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventhub/internal/delivery/http/controllers"
	"eventhub/internal/delivery/http/middleware"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	UserEvents   *controllers.UserEventController
	AdminEvents  *controllers.AdminEventController
	PublicEvents *controllers.PublicEventController
	Requests     *controllers.RequestController
}

// NewRouter initializes the HTTP router with all application routes.
// Public event routes go through limiter when it is non-nil.
func NewRouter(c Controllers, limiter *middleware.RateLimiter) *http.ServeMux {
	mux := http.NewServeMux()

	// Initiator
	mux.HandleFunc("POST /users/{userId}/events", c.UserEvents.CreateEvent)
	mux.HandleFunc("GET /users/{userId}/events", c.UserEvents.ListEvents)
	mux.HandleFunc("GET /users/{userId}/events/{eventId}", c.UserEvents.GetEvent)
	mux.HandleFunc("PATCH /users/{userId}/events/{eventId}", c.UserEvents.UpdateEvent)
	mux.HandleFunc("GET /users/{userId}/events/{eventId}/requests", c.UserEvents.ListEventRequests)
	mux.HandleFunc("PATCH /users/{userId}/events/{eventId}/requests", c.UserEvents.ResolveRequests)

	// Participation requests
	mux.HandleFunc("POST /users/{userId}/requests", c.Requests.CreateRequest)
	mux.HandleFunc("GET /users/{userId}/requests", c.Requests.ListRequests)
	mux.HandleFunc("PATCH /users/{userId}/requests/{requestId}/cancel", c.Requests.CancelRequest)

	// Admin
	mux.HandleFunc("GET /admin/events", c.AdminEvents.SearchEvents)
	mux.HandleFunc("PATCH /admin/events/{eventId}", c.AdminEvents.UpdateEvent)

	// Public
	mux.Handle("GET /events", limit(limiter, http.HandlerFunc(c.PublicEvents.SearchEvents)))
	mux.Handle("GET /events/{eventId}", limit(limiter, http.HandlerFunc(c.PublicEvents.GetEvent)))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

func limit(limiter *middleware.RateLimiter, h http.Handler) http.Handler {
	if limiter == nil {
		return h
	}
	return limiter.Middleware(h)
}
