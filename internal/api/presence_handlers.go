package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pulsechat/pulse/internal/models"
	"github.com/pulsechat/pulse/internal/services"
)

type PresenceHandler struct {
	presence *services.PresenceService
}

func NewPresenceHandler(presence *services.PresenceService) *PresenceHandler {
	return &PresenceHandler{presence: presence}
}

type updatePresenceRequest struct {
	Status models.PresenceStatus `json:"status"`
}

type bulkPresenceRequest struct {
	UserIDs []string `json:"userIds"`
}

// UpdatePresence handles POST /presence/update for the authenticated user.
func (h *PresenceHandler) UpdatePresence(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req updatePresenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.presence.UpdatePresence(r.Context(), userID, req.Status)
	if errors.Is(err, services.ErrInvalidStatus) {
		respondError(w, http.StatusBadRequest, "invalid status")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update presence")
		return
	}
	respondJSON(w, http.StatusOK, record)
}

// GetMyPresence handles GET /presence/me.
func (h *PresenceHandler) GetMyPresence(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	h.getPresence(w, r, userID)
}

// GetUserPresence handles GET /presence/user/{userId}.
func (h *PresenceHandler) GetUserPresence(w http.ResponseWriter, r *http.Request) {
	h.getPresence(w, r, chi.URLParam(r, "userId"))
}

func (h *PresenceHandler) getPresence(w http.ResponseWriter, r *http.Request, userID string) {
	record, err := h.presence.GetPresence(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get presence")
		return
	}
	respondJSON(w, http.StatusOK, record)
}

// GetBulkPresence handles POST /presence/bulk.
func (h *PresenceHandler) GetBulkPresence(w http.ResponseWriter, r *http.Request) {
	var req bulkPresenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	records, err := h.presence.GetBulkPresence(r.Context(), req.UserIDs)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get bulk presence")
		return
	}
	if records == nil {
		records = []*models.PresenceRecord{}
	}
	respondJSON(w, http.StatusOK, records)
}

// Heartbeat handles POST /presence/heartbeat.
func (h *PresenceHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	if err := h.presence.Heartbeat(r.Context(), userID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to heartbeat")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// SetOffline handles POST /presence/offline.
func (h *PresenceHandler) SetOffline(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	record, err := h.presence.SetOffline(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to set offline")
		return
	}
	respondJSON(w, http.StatusOK, record)
}
