package wire

import (
	"restaurant-directory/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireNotification(r chi.Router, h *adaptor.NotificationHandler, g guards) {
	r.Group(func(r chi.Router) {
		r.Use(g.auth)

		r.Get("/api/notifications", h.ListNotifications)
		r.Get("/api/notifications/unread-count", h.UnreadCount)
		r.Post("/api/notifications/read-all", h.MarkAllRead)
		r.Post("/api/notifications/{id}/read", h.MarkRead)
		r.Delete("/api/notifications/{id}", h.DeleteNotification)
	})

	r.With(g.auth, g.admin).Post("/api/admin/notifications", h.CreateNotification)
}
