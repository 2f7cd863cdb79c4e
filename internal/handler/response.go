package handler

import "github.com/pulsefeed/recommendation-service/internal/domain"

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type InteractionResponse struct {
	Status string `json:"status"`
}

type RecommendationsResponse struct {
	UserID          int64                       `json:"user_id"`
	Recommendations []domain.RecommendationItem `json:"recommendations"`
	Count           int                         `json:"count"`
	GeneratedAt     string                      `json:"generated_at"`
}

type SimilarContentResponse struct {
	ContentID int64                   `json:"content_id"`
	Similar   []domain.SimilarContent `json:"similar"`
	Count     int                     `json:"count"`
}

type TrendingResponse struct {
	Timeframe string                  `json:"timeframe"`
	Trending  []domain.TrendingRecord `json:"trending"`
	Count     int                     `json:"count"`
}

type FeedbackResponse struct {
	Status string `json:"status"`
}

type PreferencesResponse struct {
	UserID      int64               `json:"user_id"`
	Preferences []domain.Preference `json:"preferences"`
	Count       int                 `json:"count"`
}
