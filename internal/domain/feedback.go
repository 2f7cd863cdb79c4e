package domain

import "time"

type FeedbackType string

const (
	FeedbackClick   FeedbackType = "click"
	FeedbackLike    FeedbackType = "like"
	FeedbackShare   FeedbackType = "share"
	FeedbackSave    FeedbackType = "save"
	FeedbackDismiss FeedbackType = "dismiss"
	FeedbackReport  FeedbackType = "report"
)

func (t FeedbackType) Valid() bool {
	switch t {
	case FeedbackClick, FeedbackLike, FeedbackShare, FeedbackSave, FeedbackDismiss, FeedbackReport:
		return true
	}
	return false
}

// RecommendationFeedback records the outcome of a served recommendation.
// Immutable; read only by the weight-tuning job's aggregation.
type RecommendationFeedback struct {
	ID                 int64        `json:"id"`
	UserID             int64        `json:"user_id"`
	ContentID          int64        `json:"content_id"`
	RecommendationType string       `json:"recommendation_type"`
	AlgorithmVersion   string       `json:"algorithm_version,omitempty"`
	FeedbackType       FeedbackType `json:"feedback_type"`
	FeedbackScore      float64      `json:"feedback_score"`
	PositionInList     int          `json:"position_in_list,omitempty"`
	RecommendedAt      time.Time    `json:"recommendation_timestamp"`
	FeedbackAt         time.Time    `json:"feedback_timestamp"`
}

func (f RecommendationFeedback) Validate() error {
	if f.UserID <= 0 {
		return &ValidationError{Field: "user_id", Reason: "must be positive"}
	}
	if f.ContentID <= 0 {
		return &ValidationError{Field: "content_id", Reason: "must be positive"}
	}
	if !f.FeedbackType.Valid() {
		return &ValidationError{Field: "feedback_type", Reason: "unknown type " + string(f.FeedbackType)}
	}
	if f.FeedbackScore < -1 || f.FeedbackScore > 1 {
		return &ValidationError{Field: "feedback_score", Reason: "must be in [-1,1]"}
	}
	if f.RecommendationType == "" {
		return &ValidationError{Field: "recommendation_type", Reason: "required"}
	}
	return nil
}
