package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/pulsefeed/recommendation-service/internal/domain"
	"github.com/pulsefeed/recommendation-service/internal/oracle"
)

// SimilarContent returns the most similar items to contentID. Persisted
// similarity edges are served when present; otherwise similarities are
// computed on demand from embeddings and persisted for the next caller.
func (s *Service) SimilarContent(ctx context.Context, contentID int64, limit int) ([]domain.SimilarContent, error) {
	if limit <= 0 {
		limit = defaultSimilarLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	content, err := s.store.GetContent(ctx, contentID)
	if err != nil {
		return nil, err
	}

	stored, err := s.store.ListSimilaritiesBySource(ctx, contentID, minSimilarityScore, limit)
	if err != nil {
		return nil, err
	}
	if len(stored) > 0 {
		out := make([]domain.SimilarContent, 0, len(stored))
		for _, sim := range stored {
			out = append(out, domain.SimilarContent{
				ContentID:       sim.TargetID,
				SimilarityScore: sim.SimilarityScore,
				Algorithm:       sim.Algorithm,
				Confidence:      sim.Confidence,
			})
		}
		return out, nil
	}

	return s.computeSimilarities(ctx, content, limit)
}

// computeSimilarities scores contentID against a bounded slice of the
// catalog using embedding cosine similarity. Persisting the computed edges
// is best effort; a write failure degrades to uncached results, not an error.
func (s *Service) computeSimilarities(ctx context.Context, content *domain.Content, limit int) ([]domain.SimilarContent, error) {
	source, err := s.embeddingFor(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("embed source content %d: %w", content.ID, err)
	}

	candidates, err := s.store.ListContentExcept(ctx, content.ID, similarityCatalogMax)
	if err != nil {
		return nil, err
	}

	var results []domain.SimilarContent
	for i := range candidates {
		target, err := s.embeddingFor(ctx, &candidates[i])
		if err != nil {
			s.log.Warn("skipping similarity candidate", "content_id", candidates[i].ID, "error", err)
			continue
		}
		score := oracle.Cosine(source, target)
		if score <= minSimilarityScore {
			continue
		}
		results = append(results, domain.SimilarContent{
			ContentID:       candidates[i].ID,
			SimilarityScore: score,
			Algorithm:       similarityAlgorithm,
			Confidence:      similarityConfidence,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].SimilarityScore != results[j].SimilarityScore {
			return results[i].SimilarityScore > results[j].SimilarityScore
		}
		return results[i].ContentID < results[j].ContentID
	})
	if len(results) > limit {
		results = results[:limit]
	}

	for _, r := range results {
		err := s.store.UpsertSimilarity(ctx, domain.ContentSimilarity{
			SourceID:        content.ID,
			TargetID:        r.ContentID,
			Algorithm:       similarityAlgorithm,
			SimilarityScore: r.SimilarityScore,
			Confidence:      similarityConfidence,
		})
		if err != nil {
			s.log.Warn("persist computed similarity", "source_id", content.ID,
				"target_id", r.ContentID, "error", err)
		}
	}
	return results, nil
}

// embeddingFor resolves the embedding vector for one item: cache, then the
// persisted embeddings table, then a fresh oracle call. Fresh vectors are
// written behind so the next lookup is cheap.
func (s *Service) embeddingFor(ctx context.Context, content *domain.Content) ([]float64, error) {
	if s.vectors != nil {
		if vec, err := s.vectors.Get(ctx, content.ID); err != nil {
			s.log.Warn("embedding cache read", "content_id", content.ID, "error", err)
		} else if vec != nil {
			return vec, nil
		}
	}

	vec, err := s.store.GetEmbedding(ctx, content.ID)
	if err != nil {
		return nil, err
	}
	if vec == nil {
		vec, err = s.oracle.Embed(content.Text())
		if err != nil {
			return nil, err
		}
		if err := s.store.UpsertEmbedding(ctx, content.ID, oracle.ModelName, vec); err != nil {
			s.log.Warn("persist embedding", "content_id", content.ID, "error", err)
		}
	}

	if s.vectors != nil {
		if err := s.vectors.Set(ctx, content.ID, vec); err != nil {
			s.log.Warn("embedding cache write", "content_id", content.ID, "error", err)
		}
	}
	return vec, nil
}
