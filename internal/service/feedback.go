package service

import (
	"context"
	"sort"
	"time"

	"github.com/pulsefeed/recommendation-service/internal/domain"
)

// SubmitFeedback validates and records feedback on a served recommendation.
// Validation errors surface to the caller; a storage failure is logged and
// reported as not recorded, feedback is advisory and must never break the
// client flow.
func (s *Service) SubmitFeedback(ctx context.Context, f domain.RecommendationFeedback) (bool, error) {
	if err := f.Validate(); err != nil {
		return false, err
	}
	if f.AlgorithmVersion == "" {
		f.AlgorithmVersion = algorithmVersion
	}
	if f.RecommendedAt.IsZero() {
		f.RecommendedAt = s.now()
	}

	if err := s.store.InsertFeedback(ctx, f); err != nil {
		s.log.Error("record recommendation feedback", "user_id", f.UserID,
			"content_id", f.ContentID, "error", err)
		return false, nil
	}
	return true, nil
}

// AlgorithmPerformance aggregates feedback outcomes for one recommendation
// type over a window.
type AlgorithmPerformance struct {
	RecommendationType string  `json:"recommendation_type"`
	Total              int     `json:"total"`
	Positive           int     `json:"positive"`
	PositiveRatio      float64 `json:"positive_ratio"`
}

// FeedbackPerformance computes per-algorithm positive-feedback ratios over
// the given window. Only engagement feedback counts; dismiss and report rows
// count toward the total but never as positive.
func (s *Service) FeedbackPerformance(ctx context.Context, window time.Duration) ([]AlgorithmPerformance, error) {
	rows, err := s.store.ListFeedbackSince(ctx, s.now().Add(-window), feedbackScanLimit)
	if err != nil {
		return nil, err
	}

	byType := map[string]*AlgorithmPerformance{}
	for _, f := range rows {
		p, ok := byType[f.RecommendationType]
		if !ok {
			p = &AlgorithmPerformance{RecommendationType: f.RecommendationType}
			byType[f.RecommendationType] = p
		}
		p.Total++
		if f.FeedbackScore > 0 {
			p.Positive++
		}
	}

	out := make([]AlgorithmPerformance, 0, len(byType))
	for _, p := range byType {
		if p.Total > 0 {
			p.PositiveRatio = float64(p.Positive) / float64(p.Total)
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RecommendationType < out[j].RecommendationType
	})
	return out, nil
}
