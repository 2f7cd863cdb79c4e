package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pulsefeed/recommendation-service/internal/domain"
	"github.com/pulsefeed/recommendation-service/internal/service"
)

type interactionRequest struct {
	UserID           int64    `json:"user_id"`
	ContentID        int64    `json:"content_id"`
	InteractionType  string   `json:"interaction_type"`
	InteractionScore *float64 `json:"interaction_score"`
	SessionID        string   `json:"session_id"`
	TimeSpentSeconds int      `json:"time_spent_seconds"`
	ScrollDepth      float64  `json:"scroll_depth"`
}

// POST /recommendations/interactions
func (h *Handler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	var req interactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	score := 1.0
	if req.InteractionScore != nil {
		score = *req.InteractionScore
	}

	ok, err := h.service.RecordInteraction(r.Context(), service.RecordInput{
		UserID:           req.UserID,
		ContentID:        req.ContentID,
		Type:             domain.InteractionType(req.InteractionType),
		Score:            score,
		SessionID:        req.SessionID,
		TimeSpentSeconds: req.TimeSpentSeconds,
		ScrollDepth:      req.ScrollDepth,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	status := "recorded"
	if !ok {
		status = "failed"
	}
	writeJSON(w, http.StatusOK, InteractionResponse{Status: status})
}

type personalizedRequest struct {
	UserID     int64    `json:"user_id"`
	Limit      int      `json:"limit"`
	Strategies []string `json:"strategies"`
}

// POST /recommendations/personalized
func (h *Handler) GetPersonalized(w http.ResponseWriter, r *http.Request) {
	var req personalizedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}
	if req.UserID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid user_id parameter")
		return
	}

	items, err := h.service.Recommend(r.Context(), req.UserID, req.Limit, req.Strategies)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, RecommendationsResponse{
		UserID:          req.UserID,
		Recommendations: items,
		Count:           len(items),
		GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
	})
}

// GET /recommendations/similar/{contentID}
func (h *Handler) GetSimilarContent(w http.ResponseWriter, r *http.Request) {
	contentID, err := strconv.ParseInt(chi.URLParam(r, "contentID"), 10, 64)
	if err != nil || contentID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid content_id parameter")
		return
	}
	limit, ok := parseLimit(w, r, 5)
	if !ok {
		return
	}

	similar, err := h.service.SimilarContent(r.Context(), contentID, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SimilarContentResponse{
		ContentID: contentID,
		Similar:   similar,
		Count:     len(similar),
	})
}

// GET /recommendations/trending
func (h *Handler) GetTrending(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r, 10)
	if !ok {
		return
	}
	timeframe := domain.Timeframe(r.URL.Query().Get("timeframe"))
	if timeframe == "" {
		timeframe = domain.TimeframeDay
	}
	category := r.URL.Query().Get("category")

	trending, err := h.service.TrendingContent(r.Context(), limit, timeframe, category)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TrendingResponse{
		Timeframe: string(timeframe),
		Trending:  trending,
		Count:     len(trending),
	})
}

func parseLimit(w http.ResponseWriter, r *http.Request, def int) (int, bool) {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return def, true
	}
	parsed, err := strconv.Atoi(limitStr)
	if err != nil || parsed < 1 || parsed > 50 {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
		return 0, false
	}
	return parsed, true
}
