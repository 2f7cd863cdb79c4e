package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pulsefeed/recommendation-service/internal/domain"
)

// candidate pairs a scored recommendation with the content author, which the
// diversity pass needs.
type candidate struct {
	item     domain.RecommendationItem
	authorID int64
}

// Recommend produces a ranked, author-diverse recommendation list for a user.
// Users with no interaction history get the cold start list; everyone else
// gets the hybrid of the requested strategies. A failing stage is logged and
// contributes nothing rather than failing the call.
func (s *Service) Recommend(ctx context.Context, userID int64, limit int, strategies []string) ([]domain.RecommendationItem, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	total, err := s.store.CountInteractionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return s.coldStartRecommendations(ctx, userID, limit)
	}

	history, err := s.store.ListInteractionsByUser(ctx, userID, time.Time{})
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]bool, len(history))
	for _, in := range history {
		seen[in.ContentID] = true
	}

	wanted := map[string]bool{}
	if len(strategies) == 0 {
		strategies = []string{domain.StrategyCollaborative, domain.StrategyContentBased, domain.StrategyTrending}
	}
	for _, st := range strategies {
		wanted[st] = true
	}

	stageLimit := max(limit/2, 1)
	var collab, content, trending []candidate

	g, gctx := errgroup.WithContext(ctx)
	if wanted[domain.StrategyCollaborative] {
		g.Go(func() error {
			items, err := s.collaborativeStage(gctx, userID, history, stageLimit)
			if err != nil {
				s.log.Warn("collaborative stage failed", "user_id", userID, "error", err)
				return nil
			}
			collab = items
			return nil
		})
	}
	if wanted[domain.StrategyContentBased] {
		g.Go(func() error {
			items, err := s.contentBasedStage(gctx, userID, stageLimit)
			if err != nil {
				s.log.Warn("content-based stage failed", "user_id", userID, "error", err)
				return nil
			}
			content = items
			return nil
		})
	}
	if wanted[domain.StrategyTrending] {
		g.Go(func() error {
			items, err := s.trendingStage(gctx, userID, seen, stageLimit)
			if err != nil {
				s.log.Warn("trending stage failed", "user_id", userID, "error", err)
				return nil
			}
			trending = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := make([]candidate, 0, len(collab)+len(content)+len(trending))
	all = append(all, collab...)
	all = append(all, content...)
	all = append(all, trending...)

	merged := mergeCandidates(all)
	return s.diversify(merged, limit), nil
}

// coldStartRecommendations serves users with no history: recent content from
// the last week at a flat score, clearly labelled so clients can tell the
// list is not personalized.
func (s *Service) coldStartRecommendations(ctx context.Context, userID int64, limit int) ([]domain.RecommendationItem, error) {
	since := s.now().AddDate(0, 0, -coldStartWindowDays)
	recent, err := s.store.ListRecentContent(ctx, since, userID, limit)
	if err != nil {
		return nil, err
	}

	items := make([]domain.RecommendationItem, 0, len(recent))
	for _, c := range recent {
		items = append(items, domain.RecommendationItem{
			ContentID:  c.ID,
			Score:      coldStartScore,
			Reasons:    []string{"Popular content to get you started"},
			Algorithm:  domain.StrategyColdStart,
			Confidence: coldStartScore,
		})
	}
	return items, nil
}

// collaborativeStage scores content from the positive history of users whose
// interaction overlap with this user is at least minCommonItems.
func (s *Service) collaborativeStage(ctx context.Context, userID int64, history []domain.Interaction, stageLimit int) ([]candidate, error) {
	userItems := make(map[int64]bool, len(history))
	itemIDs := make([]int64, 0, len(history))
	for _, in := range history {
		if !userItems[in.ContentID] {
			userItems[in.ContentID] = true
			itemIDs = append(itemIDs, in.ContentID)
		}
	}

	neighbors, err := s.similarUsers(ctx, userID, userItems, itemIDs)
	if err != nil {
		return nil, err
	}

	perNeighbor := max(stageLimit/2, 1)
	var out []candidate
	for _, n := range neighbors {
		inters, err := s.store.ListPositiveInteractionsByUser(ctx, n.userID, itemIDs, perNeighbor)
		if err != nil {
			return nil, err
		}
		for _, in := range inters {
			content, err := s.store.GetContent(ctx, in.ContentID)
			if err != nil {
				if errors.Is(err, domain.ErrContentNotFound) {
					continue
				}
				return nil, err
			}
			if content.AuthorID == userID {
				continue
			}
			out = append(out, candidate{
				item: domain.RecommendationItem{
					ContentID:  content.ID,
					Score:      in.Score * n.similarity * s.weights.Collaborative,
					Reasons:    []string{"Because users like you enjoyed this"},
					Algorithm:  domain.StrategyCollaborative,
					Confidence: n.similarity,
				},
				authorID: content.AuthorID,
			})
		}
	}
	return out, nil
}

type neighbor struct {
	userID     int64
	similarity float64
}

// similarUsers ranks other users by cosine similarity over the shared item
// set. The user side is a binary vector, so the dot product is the sum of
// the other user's scores on common items.
func (s *Service) similarUsers(ctx context.Context, userID int64, userItems map[int64]bool, itemIDs []int64) ([]neighbor, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	inters, err := s.store.ListPositiveInteractionsForContents(ctx, itemIDs, userID)
	if err != nil {
		return nil, err
	}

	otherItems := map[int64]map[int64]float64{}
	for _, in := range inters {
		m, ok := otherItems[in.UserID]
		if !ok {
			m = map[int64]float64{}
			otherItems[in.UserID] = m
		}
		m[in.ContentID] = in.Score
	}

	var neighbors []neighbor
	for otherID, items := range otherItems {
		var dot float64
		common := 0
		for contentID, score := range items {
			if userItems[contentID] {
				dot += score
				common++
			}
		}
		if common < minCommonItems {
			continue
		}
		magnitude := math.Sqrt(float64(len(userItems))) * math.Sqrt(float64(len(items)))
		if magnitude == 0 {
			continue
		}
		neighbors = append(neighbors, neighbor{userID: otherID, similarity: dot / magnitude})
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		if neighbors[i].similarity != neighbors[j].similarity {
			return neighbors[i].similarity > neighbors[j].similarity
		}
		return neighbors[i].userID < neighbors[j].userID
	})
	if len(neighbors) > neighborLimit {
		neighbors = neighbors[:neighborLimit]
	}
	return neighbors, nil
}

// contentBasedStage scores recent candidate content against the user's
// learned preferences. Seen content is not excluded here; re-surfacing
// strongly matching items is acceptable for this stage.
func (s *Service) contentBasedStage(ctx context.Context, userID int64, stageLimit int) ([]candidate, error) {
	prefs, err := s.store.ListActivePreferences(ctx, userID, "", 0)
	if err != nil {
		return nil, err
	}
	if len(prefs) == 0 {
		return nil, nil
	}

	var totalStrength float64
	weights := make(map[[2]string]float64, len(prefs))
	var categories, authors []string
	for _, p := range prefs {
		totalStrength += p.Strength
		if p.Strength > 0.3 {
			switch p.Type {
			case domain.PreferenceCategory:
				categories = append(categories, strings.ToLower(p.Value))
			case domain.PreferenceAuthor:
				authors = append(authors, strings.ToLower(p.Value))
			}
		}
	}
	if totalStrength == 0 {
		return nil, nil
	}
	for _, p := range prefs {
		weights[[2]string{string(p.Type), strings.ToLower(p.Value)}] = p.Strength / totalStrength
	}

	since := s.now().AddDate(0, 0, -candidateWindowDays)
	candidates, err := s.store.ListCandidateContent(ctx, userID, categories, authors, since, candidatePoolSize)
	if err != nil {
		return nil, err
	}
	if len(candidates) > stageLimit*trendingOverSel {
		candidates = candidates[:stageLimit*trendingOverSel]
	}

	authored, err := s.store.ListContentByAuthor(ctx, userID, userContentSample)
	if err != nil {
		return nil, err
	}

	var out []candidate
	for i := range candidates {
		relevance := s.contentRelevance(ctx, &candidates[i], weights, len(authored) > 0)
		if relevance <= minSimilarityScore {
			continue
		}
		out = append(out, candidate{
			item: domain.RecommendationItem{
				ContentID:  candidates[i].ID,
				Score:      relevance * s.weights.ContentBased,
				Reasons:    []string{"Matches your interests"},
				Algorithm:  domain.StrategyContentBased,
				Confidence: relevance,
			},
			authorID: candidates[i].AuthorID,
		})
	}
	return out, nil
}

// contentRelevance blends category match, author match and, when the user
// has authored content of their own, the item's average embedding similarity
// to its nearest neighbours. Capped at 1.
func (s *Service) contentRelevance(ctx context.Context, content *domain.Content, weights map[[2]string]float64, withEmbedding bool) float64 {
	var score float64
	for _, cat := range content.Categories {
		score += weights[[2]string{string(domain.PreferenceCategory), strings.ToLower(cat)}] * 0.4
	}
	score += weights[[2]string{string(domain.PreferenceAuthor), strings.ToLower(content.AuthorUsername)}] * 0.3

	if withEmbedding {
		sims, err := s.store.ListSimilaritiesBySource(ctx, content.ID, 0, defaultSimilarLimit)
		if err != nil {
			s.log.Warn("embedding relevance lookup failed", "content_id", content.ID, "error", err)
		} else if len(sims) > 0 {
			scores := make([]float64, 0, len(sims))
			for _, sim := range sims {
				scores = append(scores, sim.SimilarityScore)
			}
			score += mean(scores) * 0.3
		}
	}
	return math.Min(score, 1)
}

// trendingStage surfaces currently trending content the user has neither
// seen nor authored.
func (s *Service) trendingStage(ctx context.Context, userID int64, seen map[int64]bool, stageLimit int) ([]candidate, error) {
	records, err := s.store.ListTrendingRecords(ctx, stageLimit*trendingOverSel, domain.TimeframeDay, "")
	if err != nil {
		return nil, err
	}

	var out []candidate
	for _, rec := range records {
		if seen[rec.ContentID] || rec.TrendScore <= trendingCutoff {
			continue
		}
		content, err := s.store.GetContent(ctx, rec.ContentID)
		if err != nil {
			if errors.Is(err, domain.ErrContentNotFound) {
				continue
			}
			return nil, err
		}
		if content.AuthorID == userID {
			continue
		}
		out = append(out, candidate{
			item: domain.RecommendationItem{
				ContentID:  rec.ContentID,
				Score:      rec.TrendScore * s.weights.Trending,
				Reasons:    []string{"Trending now"},
				Algorithm:  domain.StrategyTrending,
				Confidence: math.Min(rec.TrendScore, 1),
			},
			authorID: content.AuthorID,
		})
	}
	return out, nil
}

// mergeCandidates collapses stage outputs per content item: scores sum,
// distinct reasons and algorithms concatenate, confidence averages. First
// appearance order is preserved so equal final scores rank deterministically.
func mergeCandidates(all []candidate) []candidate {
	type group struct {
		cands []candidate
	}
	order := make([]int64, 0, len(all))
	groups := make(map[int64]*group, len(all))
	for _, c := range all {
		g, ok := groups[c.item.ContentID]
		if !ok {
			g = &group{}
			groups[c.item.ContentID] = g
			order = append(order, c.item.ContentID)
		}
		g.cands = append(g.cands, c)
	}

	merged := make([]candidate, 0, len(order))
	for _, id := range order {
		g := groups[id]
		var score float64
		var reasons, algorithms []string
		confidences := make([]float64, 0, len(g.cands))
		seenReason := map[string]bool{}
		seenAlgorithm := map[string]bool{}
		for _, c := range g.cands {
			score += c.item.Score
			confidences = append(confidences, c.item.Confidence)
			for _, r := range c.item.Reasons {
				if !seenReason[r] {
					seenReason[r] = true
					reasons = append(reasons, r)
				}
			}
			if !seenAlgorithm[c.item.Algorithm] {
				seenAlgorithm[c.item.Algorithm] = true
				algorithms = append(algorithms, c.item.Algorithm)
			}
		}
		merged = append(merged, candidate{
			item: domain.RecommendationItem{
				ContentID:  id,
				Score:      score,
				Reasons:    reasons,
				Algorithm:  strings.Join(algorithms, "+"),
				Confidence: mean(confidences),
			},
			authorID: g.cands[0].authorID,
		})
	}
	return merged
}

// diversify caps each author at maxPerAuthor slots, then backfills with the
// highest scoring skipped items so the list still reaches limit when enough
// candidates exist.
func (s *Service) diversify(merged []candidate, limit int) []domain.RecommendationItem {
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].item.Score > merged[j].item.Score
	})

	perAuthor := map[int64]int{}
	picked := make([]domain.RecommendationItem, 0, limit)
	var skipped []candidate
	for _, c := range merged {
		if len(picked) >= limit {
			break
		}
		if perAuthor[c.authorID] >= maxPerAuthor {
			skipped = append(skipped, c)
			continue
		}
		perAuthor[c.authorID]++
		picked = append(picked, c.item)
	}
	for _, c := range skipped {
		if len(picked) >= limit {
			break
		}
		picked = append(picked, c.item)
	}
	return picked
}
