package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pulsefeed/recommendation-service/internal/domain"
)

// GET /recommendations/preferences/{userID}
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(w, r, "userID", "user_id")
	if !ok {
		return
	}

	typeFilter := domain.PreferenceType(r.URL.Query().Get("type"))
	minStrength := 0.0
	if raw := r.URL.Query().Get("min_strength"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 || parsed > 1 {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid min_strength parameter")
			return
		}
		minStrength = parsed
	}

	prefs, err := h.service.Preferences(r.Context(), userID, typeFilter, minStrength)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, PreferencesResponse{
		UserID:      userID,
		Preferences: prefs,
		Count:       len(prefs),
	})
}

// DELETE /recommendations/preferences/{userID}/{prefID}
func (h *Handler) DeletePreference(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(w, r, "userID", "user_id")
	if !ok {
		return
	}
	prefID, ok := parseID(w, r, "prefID", "preference_id")
	if !ok {
		return
	}

	if err := h.service.RemovePreference(r.Context(), userID, prefID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

// GET /recommendations/analytics/{userID}
func (h *Handler) GetUserAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(w, r, "userID", "user_id")
	if !ok {
		return
	}

	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 365 {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid days parameter")
			return
		}
		days = parsed
	}

	analytics, err := h.service.UserAnalytics(r.Context(), userID, days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

func parseID(w http.ResponseWriter, r *http.Request, param, label string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid "+label+" parameter")
		return 0, false
	}
	return id, true
}
