package handlers

import (
	"net/http"
	"strconv"

	"github.com/isdelr/taskmaster-be/internal/services"
)

// NotificationHandler handles HTTP requests related to user notifications.
type NotificationHandler struct {
	service services.NotificationServiceProvider
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(service services.NotificationServiceProvider) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// GetRecent handles the request to get the caller's recent notifications.
func (h *NotificationHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = services.DefaultNotificationLimit
	}

	notifications, err := h.service.GetRecentNotifications(r.Context(), user.ID, limit)
	if err != nil {
		writeServiceError(w, r, err, "Notification")
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

// MarkRead flags a notification as read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.MarkRead(r.Context(), user.ID, id); err != nil {
		writeServiceError(w, r, err, "Notification")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
