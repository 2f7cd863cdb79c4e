package service

import (
	"context"
	"fmt"
	"time"
)

// Bulk maintenance entry points driven by the background scheduler. Each one
// checks ctx between units of work so a shutting-down scheduler can stop a
// sweep mid-way; partial progress is already persisted and safe.

const (
	embeddingBatchSize   = 200
	similaritySweepHours = 7 * 24
	activeUserWindow     = time.Hour

	interactionRetention = 90 * 24 * time.Hour
	similarityRetention  = 30 * 24 * time.Hour
	staleSimConfidence   = 0.5
	preferenceRetention  = 60 * 24 * time.Hour
)

// RefreshMissingEmbeddings computes and stores embeddings for content that
// has none yet. Returns how many were embedded.
func (s *Service) RefreshMissingEmbeddings(ctx context.Context) (int, error) {
	missing, err := s.store.ListContentMissingEmbedding(ctx, embeddingBatchSize)
	if err != nil {
		return 0, err
	}

	done := 0
	for i := range missing {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		if _, err := s.embeddingFor(ctx, &missing[i]); err != nil {
			s.log.Warn("embed content", "content_id", missing[i].ID, "error", err)
			continue
		}
		done++
	}
	return done, nil
}

// BulkCalculateSimilarities recomputes similarity edges for content that saw
// interactions recently. Returns how many source items were processed.
func (s *Service) BulkCalculateSimilarities(ctx context.Context) (int, error) {
	since := s.now().Add(-similaritySweepHours * time.Hour)
	ids, err := s.store.DistinctInteractedContentSince(ctx, since)
	if err != nil {
		return 0, err
	}

	done := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		content, err := s.store.GetContent(ctx, id)
		if err != nil {
			s.log.Warn("load content for similarity sweep", "content_id", id, "error", err)
			continue
		}
		if _, err := s.computeSimilarities(ctx, content, defaultSimilarLimit); err != nil {
			s.log.Warn("compute similarities", "content_id", id, "error", err)
			continue
		}
		done++
	}
	return done, nil
}

// BulkRefreshTrending rebuilds trending records for all content interacted
// with inside the trending window. Returns how many records were refreshed.
func (s *Service) BulkRefreshTrending(ctx context.Context) (int, error) {
	ids, err := s.store.DistinctInteractedContentSince(ctx, s.now().Add(-trendingWindow))
	if err != nil {
		return 0, err
	}

	done := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		if err := s.refreshTrendingIn(ctx, s.store, id); err != nil {
			s.log.Warn("refresh trending", "content_id", id, "error", err)
			continue
		}
		done++
	}
	return done, nil
}

// BulkUpdatePreferences reconciles the preference rows of recently active
// users: confidence is recomputed from the interaction count, and rows that
// have decayed to zero strength with a negative interaction majority are
// deactivated. The per-interaction updates run inline with each write; this
// sweep only repairs drift.
func (s *Service) BulkUpdatePreferences(ctx context.Context) (int, error) {
	userIDs, err := s.store.DistinctInteractingUsersSince(ctx, s.now().Add(-activeUserWindow))
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		prefs, err := s.store.ListActivePreferences(ctx, userID, "", 0)
		if err != nil {
			s.log.Warn("list preferences for reconciliation", "user_id", userID, "error", err)
			continue
		}
		for _, p := range prefs {
			if p.Strength == 0 && p.NegativeInteractions > p.PositiveInteractions {
				if err := s.store.DeactivatePreference(ctx, p.ID); err != nil {
					s.log.Warn("deactivate decayed preference", "preference_id", p.ID, "error", err)
				} else {
					updated++
				}
				continue
			}
			want := clamp01(float64(p.InteractionCount) / confidenceDivisor)
			if p.Confidence != want {
				p.Confidence = want
				if err := s.store.UpdatePreference(ctx, p); err != nil {
					s.log.Warn("reconcile preference confidence", "preference_id", p.ID, "error", err)
					continue
				}
				updated++
			}
		}
	}
	return updated, nil
}

// AnalyzeFeedback logs per-algorithm feedback outcomes over the window so
// operators can watch recommendation quality between weight retrains.
func (s *Service) AnalyzeFeedback(ctx context.Context, window time.Duration) error {
	perf, err := s.FeedbackPerformance(ctx, window)
	if err != nil {
		return err
	}
	for _, p := range perf {
		s.log.Info("feedback performance",
			"recommendation_type", p.RecommendationType,
			"total", p.Total, "positive", p.Positive,
			"positive_ratio", fmt.Sprintf("%.3f", p.PositiveRatio))
	}
	return nil
}

// RetrainWeights evaluates a week of feedback per algorithm. The stage
// weights stay fixed; this reports the ratios a future automatic tuner
// would act on.
func (s *Service) RetrainWeights(ctx context.Context) error {
	perf, err := s.FeedbackPerformance(ctx, 7*24*time.Hour)
	if err != nil {
		return err
	}
	if len(perf) == 0 {
		s.log.Info("weight retrain skipped, no feedback in window")
		return nil
	}
	for _, p := range perf {
		s.log.Info("weight retrain input",
			"recommendation_type", p.RecommendationType,
			"positive_ratio", fmt.Sprintf("%.3f", p.PositiveRatio),
			"samples", p.Total)
	}
	return nil
}

// CleanupOldData enforces retention: old interactions are deleted, stale
// low-confidence similarity edges are pruned, and preferences with no
// activity are deactivated.
func (s *Service) CleanupOldData(ctx context.Context) error {
	now := s.now()

	interactions, err := s.store.DeleteInteractionsBefore(ctx, now.Add(-interactionRetention))
	if err != nil {
		return fmt.Errorf("prune interactions: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	similarities, err := s.store.DeleteStaleSimilarities(ctx, now.Add(-similarityRetention), staleSimConfidence)
	if err != nil {
		return fmt.Errorf("prune similarities: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	preferences, err := s.store.DeactivatePreferencesInactiveSince(ctx, now.Add(-preferenceRetention))
	if err != nil {
		return fmt.Errorf("deactivate inactive preferences: %w", err)
	}

	s.log.Info("retention cleanup done",
		"interactions_deleted", interactions,
		"similarities_deleted", similarities,
		"preferences_deactivated", preferences)
	return nil
}
