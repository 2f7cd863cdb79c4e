package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pulsefeed/recommendation-service/internal/domain"
)

// RecordInput carries one user-content interaction to be logged.
type RecordInput struct {
	UserID           int64
	ContentID        int64
	Type             domain.InteractionType
	Score            float64
	TimeSpentSeconds int
	ScrollDepth      float64
	SessionID        string
}

// RecordInteraction appends the interaction and, inside the same
// transaction, applies the incremental preference update and trending
// refresh for the touched content (write-then-derive). Validation errors are
// returned before any write; persistence failures are logged, rolled back
// and reported as ok=false so the caller's request path is never broken.
func (s *Service) RecordInteraction(ctx context.Context, in RecordInput) (bool, error) {
	inter := domain.Interaction{
		UserID:           in.UserID,
		ContentID:        in.ContentID,
		Type:             in.Type,
		Score:            in.Score,
		SessionID:        in.SessionID,
		TimeSpentSeconds: in.TimeSpentSeconds,
		ScrollDepth:      in.ScrollDepth,
	}
	if err := inter.Validate(); err != nil {
		return false, err
	}

	err := s.store.InTx(ctx, func(tx Store) error {
		saved, err := tx.InsertInteraction(ctx, inter)
		if err != nil {
			return err
		}
		if err := s.applyPreferenceUpdates(ctx, tx, saved); err != nil {
			return err
		}
		return s.refreshTrendingIn(ctx, tx, saved.ContentID)
	})
	if err != nil {
		s.log.Error("failed to record interaction",
			"user_id", in.UserID, "content_id", in.ContentID, "type", in.Type, "error", err)
		return false, nil
	}
	return true, nil
}

// UserInteractions returns a user's interaction history since the cutoff,
// newest first. A zero cutoff returns the full retained history.
func (s *Service) UserInteractions(ctx context.Context, userID int64, since time.Time) ([]domain.Interaction, error) {
	return s.store.ListInteractionsByUser(ctx, userID, since)
}

// UserAnalytics summarises a user's interactions over the trailing period
// together with the strongest learned preferences.
func (s *Service) UserAnalytics(ctx context.Context, userID int64, days int) (*domain.UserAnalytics, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 30
	}

	since := s.now().AddDate(0, 0, -days)
	interactions, err := s.store.ListInteractionsByUser(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("fetch interactions: %w", err)
	}

	byType := make(map[string]int)
	for _, in := range interactions {
		byType[string(in.Type)]++
	}
	engaged := byType[string(domain.InteractionLike)] +
		byType[string(domain.InteractionShare)] +
		byType[string(domain.InteractionComment)]
	total := len(interactions)
	rate := 0.0
	if total > 0 {
		rate = float64(engaged) / float64(total)
	}

	prefs, err := s.store.ListActivePreferences(ctx, userID, "", 0)
	if err != nil {
		return nil, fmt.Errorf("fetch preferences: %w", err)
	}
	if len(prefs) > 5 {
		prefs = prefs[:5]
	}

	return &domain.UserAnalytics{
		UserID:             userID,
		AnalysisPeriodDays: days,
		TotalInteractions:  total,
		InteractionTypes:   byType,
		EngagementRate:     rate,
		TopPreferences:     prefs,
	}, nil
}
