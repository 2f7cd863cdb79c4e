package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/pulsefeed/recommendation-service/internal/domain"
)

// memStore is an in-memory Store for tests. Ordering mirrors the SQL layer:
// newest first for content and interactions, strength or score descending
// for preferences and similarities.
type memStore struct {
	now time.Time

	users        map[int64]domain.User
	contents     map[int64]domain.Content
	interactions []domain.Interaction
	prefs        []*domain.Preference
	sims         []*domain.ContentSimilarity
	trending     map[int64]domain.TrendingRecord
	feedback     []domain.RecommendationFeedback
	embeddings   map[int64][]float64

	nextInteractionID int64
	nextPrefID        int64
	nextSimID         int64
}

func newMemStore(now time.Time) *memStore {
	return &memStore{
		now:        now,
		users:      map[int64]domain.User{},
		contents:   map[int64]domain.Content{},
		trending:   map[int64]domain.TrendingRecord{},
		embeddings: map[int64][]float64{},
	}
}

func (m *memStore) InTx(_ context.Context, fn func(tx Store) error) error {
	return fn(m)
}

func (m *memStore) addUser(id int64, username string) {
	m.users[id] = domain.User{ID: id, Username: username}
}

func (m *memStore) addContent(c domain.Content) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = m.now
	}
	m.contents[c.ID] = c
}

func (m *memStore) addInteraction(in domain.Interaction) domain.Interaction {
	m.nextInteractionID++
	in.ID = m.nextInteractionID
	if in.CreatedAt.IsZero() {
		in.CreatedAt = m.now
	}
	m.interactions = append(m.interactions, in)
	return in
}

func (m *memStore) GetUser(_ context.Context, userID int64) (*domain.User, error) {
	u, ok := m.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (m *memStore) GetContent(_ context.Context, contentID int64) (*domain.Content, error) {
	c, ok := m.contents[contentID]
	if !ok {
		return nil, domain.ErrContentNotFound
	}
	return &c, nil
}

func (m *memStore) sortedContents() []domain.Content {
	out := make([]domain.Content, 0, len(m.contents))
	for _, c := range m.contents {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *memStore) ListRecentContent(_ context.Context, since time.Time, excludeAuthorID int64, limit int) ([]domain.Content, error) {
	var out []domain.Content
	for _, c := range m.sortedContents() {
		if c.CreatedAt.Before(since) || c.AuthorID == excludeAuthorID {
			continue
		}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) ListCandidateContent(_ context.Context, userID int64, categories, authors []string, since time.Time, limit int) ([]domain.Content, error) {
	inSet := func(vals []string, v string) bool {
		for _, s := range vals {
			if strings.ToLower(s) == strings.ToLower(v) {
				return true
			}
		}
		return false
	}
	var out []domain.Content
	for _, c := range m.sortedContents() {
		if c.AuthorID == userID || c.CreatedAt.Before(since) {
			continue
		}
		if len(categories) > 0 {
			matched := false
			for _, cat := range c.Categories {
				if inSet(categories, cat) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		if len(authors) > 0 && !inSet(authors, c.AuthorUsername) {
			continue
		}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) ListContentByAuthor(_ context.Context, authorID int64, limit int) ([]domain.Content, error) {
	var out []domain.Content
	for _, c := range m.sortedContents() {
		if c.AuthorID != authorID {
			continue
		}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) ListContentExcept(_ context.Context, contentID int64, limit int) ([]domain.Content, error) {
	out := make([]domain.Content, 0, len(m.contents))
	for _, c := range m.contents {
		if c.ID != contentID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) InsertInteraction(_ context.Context, in domain.Interaction) (domain.Interaction, error) {
	return m.addInteraction(in), nil
}

func (m *memStore) ListInteractionsByUser(_ context.Context, userID int64, since time.Time) ([]domain.Interaction, error) {
	var out []domain.Interaction
	for _, in := range m.interactions {
		if in.UserID == userID && !in.CreatedAt.Before(since) {
			out = append(out, in)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) CountInteractionsByUser(_ context.Context, userID int64) (int, error) {
	n := 0
	for _, in := range m.interactions {
		if in.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) ListInteractionsByContentSince(_ context.Context, contentID int64, since time.Time) ([]domain.Interaction, error) {
	var out []domain.Interaction
	for _, in := range m.interactions {
		if in.ContentID == contentID && !in.CreatedAt.Before(since) {
			out = append(out, in)
		}
	}
	return out, nil
}

func positiveHistoryType(t domain.InteractionType) bool {
	return t == domain.InteractionLike || t == domain.InteractionShare || t == domain.InteractionSave
}

func (m *memStore) ListPositiveInteractionsForContents(_ context.Context, contentIDs []int64, excludeUserID int64) ([]domain.Interaction, error) {
	ids := map[int64]bool{}
	for _, id := range contentIDs {
		ids[id] = true
	}
	var out []domain.Interaction
	for _, in := range m.interactions {
		if ids[in.ContentID] && in.UserID != excludeUserID && positiveHistoryType(in.Type) {
			out = append(out, in)
		}
	}
	return out, nil
}

func (m *memStore) ListPositiveInteractionsByUser(_ context.Context, userID int64, excludeContentIDs []int64, limit int) ([]domain.Interaction, error) {
	excluded := map[int64]bool{}
	for _, id := range excludeContentIDs {
		excluded[id] = true
	}
	var out []domain.Interaction
	for _, in := range m.interactions {
		if in.UserID == userID && !excluded[in.ContentID] && positiveHistoryType(in.Type) {
			out = append(out, in)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) DistinctInteractingUsersSince(_ context.Context, since time.Time) ([]int64, error) {
	seen := map[int64]bool{}
	var out []int64
	for _, in := range m.interactions {
		if !in.CreatedAt.Before(since) && !seen[in.UserID] {
			seen[in.UserID] = true
			out = append(out, in.UserID)
		}
	}
	return out, nil
}

func (m *memStore) DistinctInteractedContentSince(_ context.Context, since time.Time) ([]int64, error) {
	seen := map[int64]bool{}
	var out []int64
	for _, in := range m.interactions {
		if !in.CreatedAt.Before(since) && !seen[in.ContentID] {
			seen[in.ContentID] = true
			out = append(out, in.ContentID)
		}
	}
	return out, nil
}

func (m *memStore) DeleteInteractionsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	kept := m.interactions[:0]
	var deleted int64
	for _, in := range m.interactions {
		if in.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, in)
	}
	m.interactions = kept
	return deleted, nil
}

func (m *memStore) GetActivePreference(_ context.Context, userID int64, ptype domain.PreferenceType, value string) (*domain.Preference, error) {
	for _, p := range m.prefs {
		if p.IsActive && p.UserID == userID && p.Type == ptype && p.Value == value {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrPreferenceNotFound
}

func (m *memStore) GetPreferenceByID(_ context.Context, userID, preferenceID int64) (*domain.Preference, error) {
	for _, p := range m.prefs {
		if p.ID == preferenceID && p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrPreferenceNotFound
}

func (m *memStore) InsertPreference(_ context.Context, p domain.Preference) error {
	m.nextPrefID++
	p.ID = m.nextPrefID
	p.IsActive = true
	p.FirstInteraction = m.now
	p.LastInteraction = m.now
	m.prefs = append(m.prefs, &p)
	return nil
}

func (m *memStore) UpdatePreference(_ context.Context, p domain.Preference) error {
	for _, stored := range m.prefs {
		if stored.ID == p.ID {
			p.IsActive = stored.IsActive
			p.FirstInteraction = stored.FirstInteraction
			p.LastInteraction = m.now
			*stored = p
			return nil
		}
	}
	return domain.ErrPreferenceNotFound
}

func (m *memStore) ListActivePreferences(_ context.Context, userID int64, typeFilter domain.PreferenceType, minStrength float64) ([]domain.Preference, error) {
	var out []domain.Preference
	for _, p := range m.prefs {
		if !p.IsActive || p.UserID != userID || p.Strength < minStrength {
			continue
		}
		if typeFilter != "" && p.Type != typeFilter {
			continue
		}
		out = append(out, *p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Strength > out[j].Strength })
	return out, nil
}

func (m *memStore) DeactivatePreference(_ context.Context, preferenceID int64) error {
	for _, p := range m.prefs {
		if p.ID == preferenceID && p.IsActive {
			p.IsActive = false
			return nil
		}
	}
	return domain.ErrPreferenceNotFound
}

func (m *memStore) DeactivatePreferencesInactiveSince(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for _, p := range m.prefs {
		if p.IsActive && p.LastInteraction.Before(cutoff) {
			p.IsActive = false
			n++
		}
	}
	return n, nil
}

func (m *memStore) ListSimilaritiesBySource(_ context.Context, sourceID int64, minScore float64, limit int) ([]domain.ContentSimilarity, error) {
	var out []domain.ContentSimilarity
	for _, s := range m.sims {
		if s.IsActive && s.SourceID == sourceID && s.SimilarityScore > minScore {
			out = append(out, *s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SimilarityScore != out[j].SimilarityScore {
			return out[i].SimilarityScore > out[j].SimilarityScore
		}
		return out[i].TargetID < out[j].TargetID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) UpsertSimilarity(_ context.Context, s domain.ContentSimilarity) error {
	for _, stored := range m.sims {
		if stored.SourceID == s.SourceID && stored.TargetID == s.TargetID && stored.Algorithm == s.Algorithm {
			stored.SimilarityScore = s.SimilarityScore
			stored.Confidence = s.Confidence
			stored.ValidationCount++
			stored.ComputedAt = m.now
			return nil
		}
	}
	m.nextSimID++
	s.ID = m.nextSimID
	s.IsActive = true
	s.ComputedAt = m.now
	m.sims = append(m.sims, &s)
	return nil
}

func (m *memStore) DeleteStaleSimilarities(_ context.Context, before time.Time, maxConfidence float64) (int64, error) {
	kept := m.sims[:0]
	var deleted int64
	for _, s := range m.sims {
		if s.ComputedAt.Before(before) && s.Confidence < maxConfidence {
			deleted++
			continue
		}
		kept = append(kept, s)
	}
	m.sims = kept
	return deleted, nil
}

func (m *memStore) GetTrendingRecord(_ context.Context, contentID int64) (*domain.TrendingRecord, error) {
	t, ok := m.trending[contentID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *memStore) UpsertTrendingRecord(_ context.Context, t domain.TrendingRecord) error {
	m.trending[t.ContentID] = t
	return nil
}

func (m *memStore) ListTrendingRecords(_ context.Context, limit int, timeframe domain.Timeframe, category string) ([]domain.TrendingRecord, error) {
	score := func(t domain.TrendingRecord) float64 {
		switch timeframe {
		case domain.TimeframeHour:
			return t.HourScore
		case domain.TimeframeWeek:
			return t.WeekScore
		default:
			return t.TrendScore
		}
	}
	var out []domain.TrendingRecord
	for _, t := range m.trending {
		if !t.IsTrending {
			continue
		}
		if category != "" {
			c, ok := m.contents[t.ContentID]
			if !ok {
				continue
			}
			matched := false
			for _, cat := range c.Categories {
				if cat == category {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if score(out[i]) != score(out[j]) {
			return score(out[i]) > score(out[j])
		}
		return out[i].ContentID < out[j].ContentID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) InsertFeedback(_ context.Context, f domain.RecommendationFeedback) error {
	f.ID = int64(len(m.feedback) + 1)
	if f.FeedbackAt.IsZero() {
		f.FeedbackAt = m.now
	}
	m.feedback = append(m.feedback, f)
	return nil
}

func (m *memStore) ListFeedbackSince(_ context.Context, since time.Time, limit int) ([]domain.RecommendationFeedback, error) {
	var out []domain.RecommendationFeedback
	for _, f := range m.feedback {
		if !f.FeedbackAt.Before(since) {
			out = append(out, f)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) GetEmbedding(_ context.Context, contentID int64) ([]float64, error) {
	return m.embeddings[contentID], nil
}

func (m *memStore) UpsertEmbedding(_ context.Context, contentID int64, _ string, vec []float64) error {
	m.embeddings[contentID] = vec
	return nil
}

func (m *memStore) ListContentMissingEmbedding(_ context.Context, limit int) ([]domain.Content, error) {
	var out []domain.Content
	for _, c := range m.sortedContents() {
		if m.embeddings[c.ID] == nil {
			out = append(out, c)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
