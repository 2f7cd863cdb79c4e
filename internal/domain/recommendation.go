package domain

// Recommendation strategies. A Recommend call runs the subset requested;
// cold start overrides them all for users with no history.
const (
	StrategyCollaborative = "collaborative"
	StrategyContentBased  = "content_based"
	StrategyTrending      = "trending"
	StrategyColdStart     = "cold_start"
)

// RecommendationItem is one entry of a ranked recommendation list. Items
// produced by several stages for the same content are merged: scores summed,
// reasons and algorithms concatenated, confidence averaged.
type RecommendationItem struct {
	ContentID  int64    `json:"content_id"`
	Score      float64  `json:"score"`
	Reasons    []string `json:"reasons"`
	Algorithm  string   `json:"algorithm"`
	Confidence float64  `json:"confidence"`
}

// UserAnalytics summarises a user's recent interaction behaviour and the
// strongest learned preferences.
type UserAnalytics struct {
	UserID             int64          `json:"user_id"`
	AnalysisPeriodDays int            `json:"analysis_period_days"`
	TotalInteractions  int            `json:"total_interactions"`
	InteractionTypes   map[string]int `json:"interaction_types"`
	EngagementRate     float64        `json:"engagement_rate"`
	TopPreferences     []Preference   `json:"top_preferences"`
}
