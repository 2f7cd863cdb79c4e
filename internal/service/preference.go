package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pulsefeed/recommendation-service/internal/domain"
)

type preferenceDim struct {
	Type  domain.PreferenceType
	Value string
}

// applyPreferenceUpdates derives the preference dimensions touched by an
// interaction (categories, author, top oracle topics, sentiment) and updates
// each one. Oracle failures drop the topic/sentiment dimensions and keep the
// rest; the interaction itself is never lost to a classification outage.
func (s *Service) applyPreferenceUpdates(ctx context.Context, tx Store, inter domain.Interaction) error {
	content, err := tx.GetContent(ctx, inter.ContentID)
	if err != nil {
		return fmt.Errorf("fetch content for preference update: %w", err)
	}

	dims := make([]preferenceDim, 0, len(content.Categories)+topTopics+2)
	for _, cat := range content.Categories {
		dims = append(dims, preferenceDim{domain.PreferenceCategory, cat})
	}
	dims = append(dims, preferenceDim{domain.PreferenceAuthor, content.AuthorUsername})

	classification, err := s.oracle.Classify(content.Title, content.Body)
	if err != nil {
		s.log.Warn("content classification unavailable, skipping topic/sentiment preferences",
			"content_id", content.ID, "error", err)
	} else {
		topics := classification.Topics
		if len(topics) > topTopics {
			topics = topics[:topTopics]
		}
		for _, t := range topics {
			dims = append(dims, preferenceDim{domain.PreferenceTopic, t.Topic})
		}
		if classification.Sentiment.Label != "" {
			dims = append(dims, preferenceDim{domain.PreferenceSentiment, classification.Sentiment.Label})
		}
	}

	for _, dim := range dims {
		if err := s.applySinglePreference(ctx, tx, inter.UserID, dim, inter.Type, inter.Score); err != nil {
			return err
		}
	}
	return nil
}

// applySinglePreference updates or lazily creates the unique active row for
// one (user, type, value) key. Strength moves by score*0.1 toward 1 on
// positive interactions and toward 0 on negative ones; confidence is
// interaction_count/10 capped at 1. Both stay inside [0,1] for any input.
func (s *Service) applySinglePreference(ctx context.Context, tx Store, userID int64, dim preferenceDim, itype domain.InteractionType, score float64) error {
	pref, err := tx.GetActivePreference(ctx, userID, dim.Type, dim.Value)
	if err != nil {
		if !errors.Is(err, domain.ErrPreferenceNotFound) {
			return err
		}

		strength := score * newStrengthFactor
		positive, negative := 0, 0
		if itype.Positive() {
			positive = 1
		}
		if itype.Negative() {
			strength = newNegStrength
			negative = 1
		}

		return tx.InsertPreference(ctx, domain.Preference{
			UserID:               userID,
			Type:                 dim.Type,
			Value:                dim.Value,
			Strength:             clamp01(strength),
			Confidence:           newConfidence,
			InteractionCount:     1,
			PositiveInteractions: positive,
			NegativeInteractions: negative,
		})
	}

	pref.InteractionCount++
	switch {
	case itype.Positive():
		pref.PositiveInteractions++
		pref.Strength = clamp01(pref.Strength + score*strengthStep)
	case itype.Negative():
		pref.NegativeInteractions++
		pref.Strength = clamp01(pref.Strength - score*strengthStep)
	}
	pref.Confidence = clamp01(float64(pref.InteractionCount) / confidenceDivisor)

	return tx.UpdatePreference(ctx, *pref)
}

// Preferences returns a user's active learned preferences ordered by
// strength descending, optionally filtered by type and minimum strength.
func (s *Service) Preferences(ctx context.Context, userID int64, typeFilter domain.PreferenceType, minStrength float64) ([]domain.Preference, error) {
	if typeFilter != "" && !typeFilter.Valid() {
		return nil, &domain.ValidationError{Field: "preference_type", Reason: "unknown type " + string(typeFilter)}
	}
	return s.store.ListActivePreferences(ctx, userID, typeFilter, minStrength)
}

// RemovePreference deactivates one learned preference on explicit user
// request. The row is kept for audit; it simply stops influencing scoring.
func (s *Service) RemovePreference(ctx context.Context, userID, preferenceID int64) error {
	if _, err := s.store.GetPreferenceByID(ctx, userID, preferenceID); err != nil {
		return err
	}
	return s.store.DeactivatePreference(ctx, preferenceID)
}
