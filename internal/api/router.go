package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the full HTTP surface the gateway talks to. Everything
// except the health check requires a valid bearer token.
func NewRouter(jwtSecret string, presence *PresenceHandler, notifications *NotificationHandler) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	router.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(jwtSecret))

		r.Route("/presence", func(r chi.Router) {
			r.Post("/update", presence.UpdatePresence)
			r.Get("/me", presence.GetMyPresence)
			r.Get("/user/{userId}", presence.GetUserPresence)
			r.Post("/bulk", presence.GetBulkPresence)
			r.Post("/heartbeat", presence.Heartbeat)
			r.Post("/offline", presence.SetOffline)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", notifications.GetNotifications)
			r.Get("/unread-count", notifications.GetUnreadCount)
			r.Patch("/{id}/read", notifications.MarkAsRead)
			r.Post("/mark-all-read", notifications.MarkAllAsRead)
			r.Delete("/{id}", notifications.DeleteNotification)
		})
	})

	return router
}
