package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pulsefeed/recommendation-service/internal/domain"
)

type feedbackRequest struct {
	UserID             int64   `json:"user_id"`
	ContentID          int64   `json:"content_id"`
	RecommendationType string  `json:"recommendation_type"`
	FeedbackType       string  `json:"feedback_type"`
	FeedbackScore      float64 `json:"feedback_score"`
	PositionInList     int     `json:"position_in_list"`
	RecommendedAt      string  `json:"recommendation_timestamp"`
}

// POST /recommendations/feedback
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	var recommendedAt time.Time
	if req.RecommendedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.RecommendedAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid recommendation_timestamp parameter")
			return
		}
		recommendedAt = parsed
	}

	ok, err := h.service.SubmitFeedback(r.Context(), domain.RecommendationFeedback{
		UserID:             req.UserID,
		ContentID:          req.ContentID,
		RecommendationType: req.RecommendationType,
		FeedbackType:       domain.FeedbackType(req.FeedbackType),
		FeedbackScore:      req.FeedbackScore,
		PositionInList:     req.PositionInList,
		RecommendedAt:      recommendedAt,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	status := "recorded"
	if !ok {
		status = "failed"
	}
	writeJSON(w, http.StatusOK, FeedbackResponse{Status: status})
}
