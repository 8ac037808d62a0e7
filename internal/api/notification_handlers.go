package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pulsechat/pulse/internal/repositories"
	"github.com/pulsechat/pulse/internal/services"
)

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

type markAllReadRequest struct {
	NotificationIDs []uuid.UUID `json:"notificationIds"`
}

// GetNotifications handles GET /notifications?page=&limit=&unreadOnly=.
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	unreadOnly := r.URL.Query().Get("unreadOnly") == "true"

	result, err := h.notifications.GetNotifications(r.Context(), userID, page, limit, unreadOnly)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get notifications")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetUnreadCount handles GET /notifications/unread-count.
func (h *NotificationHandler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	count, err := h.notifications.GetUnreadCount(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get unread count")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// MarkAsRead handles PATCH /notifications/{id}/read.
func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	notification, err := h.notifications.MarkAsRead(r.Context(), id, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		respondError(w, http.StatusNotFound, "notification not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to mark notification read")
		return
	}
	respondJSON(w, http.StatusOK, notification)
}

// MarkAllAsRead handles POST /notifications/mark-all-read.
func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req markAllReadRequest
	if r.Body != nil {
		// Body is optional — absent means "everything unread".
		json.NewDecoder(r.Body).Decode(&req)
	}

	if err := h.notifications.MarkAllAsRead(r.Context(), userID, req.NotificationIDs); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to mark notifications read")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Notifications marked as read"})
}

// DeleteNotification handles DELETE /notifications/{id}.
func (h *NotificationHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	err = h.notifications.DeleteNotification(r.Context(), id, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		respondError(w, http.StatusNotFound, "notification not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete notification")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Notification deleted"})
}
