package service

import (
	"context"
	"fmt"

	"github.com/pulsefeed/recommendation-service/internal/domain"
)

// refreshTrendingIn recomputes the trending record for one content item from
// its interaction log. The record is fully derived, so the operation is
// idempotent; when the item has no interactions in the week window no record
// is written at all.
func (s *Service) refreshTrendingIn(ctx context.Context, st Store, contentID int64) error {
	now := s.now()
	inters, err := st.ListInteractionsByContentSince(ctx, contentID, now.Add(-weekWindow))
	if err != nil {
		return fmt.Errorf("load interactions for trending refresh: %w", err)
	}
	if len(inters) == 0 {
		return nil
	}

	var velocityEvents int
	hourCut := now.Add(-velocityWindow)
	dayCut := now.Add(-trendingWindow)
	var hour, day, week windowCounts
	for _, in := range inters {
		week.add(in.Type)
		if !in.CreatedAt.Before(dayCut) {
			day.add(in.Type)
		}
		if !in.CreatedAt.Before(hourCut) {
			hour.add(in.Type)
			velocityEvents++
		}
	}

	trendScore := day.score()

	record := domain.TrendingRecord{
		ContentID:     contentID,
		TrendScore:    trendScore,
		Velocity:      float64(velocityEvents) / float64(max(day.views, 1)),
		ViewsCount:    day.views,
		LikesCount:    day.likes,
		SharesCount:   day.shares,
		CommentsCount: day.comments,
		HourScore:     hour.score(),
		DayScore:      day.score(),
		WeekScore:     week.score(),
		IsTrending:    trendScore > trendingCutoff,
		LastUpdated:   now,
	}
	return st.UpsertTrendingRecord(ctx, record)
}

type windowCounts struct {
	views, likes, shares, comments int
}

func (w *windowCounts) add(t domain.InteractionType) {
	switch t {
	case domain.InteractionView:
		w.views++
	case domain.InteractionLike:
		w.likes++
	case domain.InteractionShare:
		w.shares++
	case domain.InteractionComment:
		w.comments++
	}
}

func (w windowCounts) score() float64 {
	return engagementScore(w.likes, w.shares, w.comments, w.views)
}

// engagementScore weighs shares above likes and comments, normalized by
// views so widely seen content needs proportionally more engagement.
func engagementScore(likes, shares, comments, views int) float64 {
	return float64(likes*2+shares*3+comments*2) / float64(max(views, 1))
}

// RefreshTrending recomputes the trending record for a single content item.
func (s *Service) RefreshTrending(ctx context.Context, contentID int64) error {
	if _, err := s.store.GetContent(ctx, contentID); err != nil {
		return err
	}
	return s.refreshTrendingIn(ctx, s.store, contentID)
}

// TrendingContent returns currently trending items ordered by the score of
// the requested timeframe, optionally restricted to one category.
func (s *Service) TrendingContent(ctx context.Context, limit int, timeframe domain.Timeframe, category string) ([]domain.TrendingRecord, error) {
	if timeframe != "" && !timeframe.Valid() {
		return nil, &domain.ValidationError{Field: "timeframe", Reason: "unknown timeframe " + string(timeframe)}
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return s.store.ListTrendingRecords(ctx, limit, timeframe, category)
}
