package domain

import "time"

// Timeframe selects which engagement window orders a trending query.
type Timeframe string

const (
	TimeframeHour Timeframe = "hour"
	TimeframeDay  Timeframe = "day"
	TimeframeWeek Timeframe = "week"
)

func (t Timeframe) Valid() bool {
	return t == TimeframeHour || t == TimeframeDay || t == TimeframeWeek
}

// TrendingRecord is fully derived from the interaction log within a sliding
// window. It is safe to rebuild at any time; Refresh is idempotent.
type TrendingRecord struct {
	ContentID     int64     `json:"content_id"`
	TrendScore    float64   `json:"trend_score"`
	Velocity      float64   `json:"velocity"`
	ViewsCount    int       `json:"views_count"`
	LikesCount    int       `json:"likes_count"`
	SharesCount   int       `json:"shares_count"`
	CommentsCount int       `json:"comments_count"`
	HourScore     float64   `json:"hour_score"`
	DayScore      float64   `json:"day_score"`
	WeekScore     float64   `json:"week_score"`
	IsTrending    bool      `json:"is_trending"`
	LastUpdated   time.Time `json:"last_updated"`
}
