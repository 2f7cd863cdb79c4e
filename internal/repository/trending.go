package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pulsefeed/recommendation-service/internal/domain"
)

const trendingColumns = `content_id, trend_score, velocity, views_count, likes_count,
	shares_count, comments_count, hour_score, day_score, week_score, is_trending, last_updated`

func scanTrending(row pgx.Row) (domain.TrendingRecord, error) {
	var t domain.TrendingRecord
	err := row.Scan(&t.ContentID, &t.TrendScore, &t.Velocity, &t.ViewsCount, &t.LikesCount,
		&t.SharesCount, &t.CommentsCount, &t.HourScore, &t.DayScore, &t.WeekScore,
		&t.IsTrending, &t.LastUpdated)
	return t, err
}

// GetTrendingRecord returns (nil, nil) when no record exists yet; trending
// state is derived, so absence is not an error.
func (r *Repository) GetTrendingRecord(ctx context.Context, contentID int64) (*domain.TrendingRecord, error) {
	t, err := scanTrending(r.db.QueryRow(ctx,
		`SELECT `+trendingColumns+` FROM trending WHERE content_id = $1`, contentID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query trending record for content %d: %w", contentID, err)
	}
	return &t, nil
}

func (r *Repository) UpsertTrendingRecord(ctx context.Context, t domain.TrendingRecord) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO trending
		   (content_id, trend_score, velocity, views_count, likes_count, shares_count,
		    comments_count, hour_score, day_score, week_score, is_trending, last_updated)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		 ON CONFLICT (content_id) DO UPDATE
		 SET trend_score = EXCLUDED.trend_score,
		     velocity = EXCLUDED.velocity,
		     views_count = EXCLUDED.views_count,
		     likes_count = EXCLUDED.likes_count,
		     shares_count = EXCLUDED.shares_count,
		     comments_count = EXCLUDED.comments_count,
		     hour_score = EXCLUDED.hour_score,
		     day_score = EXCLUDED.day_score,
		     week_score = EXCLUDED.week_score,
		     is_trending = EXCLUDED.is_trending,
		     last_updated = now()`,
		t.ContentID, t.TrendScore, t.Velocity, t.ViewsCount, t.LikesCount, t.SharesCount,
		t.CommentsCount, t.HourScore, t.DayScore, t.WeekScore, t.IsTrending,
	)
	if err != nil {
		return fmt.Errorf("upsert trending record for content %d: %w", t.ContentID, err)
	}
	return nil
}

// ListTrendingRecords returns trending content ordered by the selected
// window score, optionally filtered to one category.
func (r *Repository) ListTrendingRecords(ctx context.Context, limit int, timeframe domain.Timeframe, category string) ([]domain.TrendingRecord, error) {
	var orderCol string
	switch timeframe {
	case domain.TimeframeHour:
		orderCol = "t.hour_score"
	case domain.TimeframeWeek:
		orderCol = "t.week_score"
	default:
		orderCol = "t.trend_score"
	}

	rows, err := r.db.Query(ctx,
		`SELECT t.content_id, t.trend_score, t.velocity, t.views_count, t.likes_count,
		        t.shares_count, t.comments_count, t.hour_score, t.day_score, t.week_score,
		        t.is_trending, t.last_updated
		 FROM trending t JOIN content c ON c.id = t.content_id
		 WHERE t.is_trending AND ($2 = '' OR $2 = ANY(c.categories))
		 ORDER BY `+orderCol+` DESC, t.content_id ASC
		 LIMIT $1`, limit, category,
	)
	if err != nil {
		return nil, fmt.Errorf("query trending records: %w", err)
	}
	defer rows.Close()

	var items []domain.TrendingRecord
	for rows.Next() {
		t, err := scanTrending(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trending record: %w", err)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over trending records: %w", err)
	}
	return items, nil
}
