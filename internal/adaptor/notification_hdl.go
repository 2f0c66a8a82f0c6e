package adaptor

import (
	"net/http"

	"restaurant-directory/internal/dto/request"
	"restaurant-directory/internal/usecase"
	"restaurant-directory/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	service usecase.NotificationService
	log     *zap.Logger
}

func NewNotificationHandler(service usecase.NotificationService, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		log:     log.With(zap.String("handler", "notification")),
	}
}

// ListNotifications handles GET /api/notifications (protected)
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	list, err := h.service.ListNotifications(r.Context(), actor)
	if err != nil {
		writeServiceError(w, h.log, err, "list notifications")
		return
	}

	utils.ResponseSuccess(w, "success", list)
}

// UnreadCount handles GET /api/notifications/unread-count (protected)
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	count, err := h.service.UnreadCount(r.Context(), actor)
	if err != nil {
		writeServiceError(w, h.log, err, "count unread notifications")
		return
	}

	utils.ResponseSuccess(w, "success", count)
}

// MarkRead handles POST /api/notifications/{id}/read (protected)
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.service.MarkRead(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err, "mark notification read")
		return
	}

	utils.ResponseSuccess(w, "Notification marked as read", nil)
}

// MarkAllRead handles POST /api/notifications/read-all (protected)
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	updated, err := h.service.MarkAllRead(r.Context(), actor)
	if err != nil {
		writeServiceError(w, h.log, err, "mark all notifications read")
		return
	}

	utils.ResponseSuccess(w, "Notifications marked as read", map[string]int64{"updated": updated})
}

// CreateNotification handles POST /api/admin/notifications (admin only)
func (h *NotificationHandler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req request.CreateNotificationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	n, err := h.service.CreateNotification(r.Context(), actor, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create notification")
		return
	}

	utils.ResponseCreated(w, "Notification sent", n)
}

// DeleteNotification handles DELETE /api/notifications/{id} (admin, or personal target)
func (h *NotificationHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteNotification(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err, "delete notification")
		return
	}

	utils.ResponseSuccess(w, "Notification deleted", nil)
}
