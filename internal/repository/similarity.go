package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/pulsefeed/recommendation-service/internal/domain"
)

// ListSimilaritiesBySource returns the active precomputed edges for a source,
// best first, content ID ascending on equal scores so results are stable.
func (r *Repository) ListSimilaritiesBySource(ctx context.Context, sourceID int64, minScore float64, limit int) ([]domain.ContentSimilarity, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, source_id, target_id, algorithm, similarity_score, confidence,
		        validation_count, computed_at, is_active
		 FROM content_similarities
		 WHERE source_id = $1 AND is_active AND similarity_score > $2
		 ORDER BY similarity_score DESC, target_id ASC
		 LIMIT $3`, sourceID, minScore, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query similarities for content %d: %w", sourceID, err)
	}
	defer rows.Close()

	var items []domain.ContentSimilarity
	for rows.Next() {
		var s domain.ContentSimilarity
		err := rows.Scan(&s.ID, &s.SourceID, &s.TargetID, &s.Algorithm, &s.SimilarityScore,
			&s.Confidence, &s.ValidationCount, &s.ComputedAt, &s.IsActive)
		if err != nil {
			return nil, fmt.Errorf("scan similarity: %w", err)
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over similarities: %w", err)
	}
	return items, nil
}

// UpsertSimilarity inserts or fully overwrites the row for one
// (source, target, algorithm) key. Recomputation never patches in place.
func (r *Repository) UpsertSimilarity(ctx context.Context, s domain.ContentSimilarity) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO content_similarities
		   (source_id, target_id, algorithm, similarity_score, confidence, validation_count, computed_at, is_active)
		 VALUES ($1, $2, $3, $4, $5, 0, now(), TRUE)
		 ON CONFLICT (source_id, target_id, algorithm) DO UPDATE
		 SET similarity_score = EXCLUDED.similarity_score,
		     confidence = EXCLUDED.confidence,
		     validation_count = content_similarities.validation_count + 1,
		     computed_at = now(),
		     is_active = TRUE`,
		s.SourceID, s.TargetID, s.Algorithm, s.SimilarityScore, s.Confidence,
	)
	if err != nil {
		return fmt.Errorf("upsert similarity (%d,%d,%s): %w", s.SourceID, s.TargetID, s.Algorithm, err)
	}
	return nil
}

// DeleteStaleSimilarities prunes low-confidence edges past the retention
// cutoff.
func (r *Repository) DeleteStaleSimilarities(ctx context.Context, before time.Time, maxConfidence float64) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM content_similarities
		 WHERE computed_at < $1 AND confidence < $2`, before, maxConfidence)
	if err != nil {
		return 0, fmt.Errorf("delete stale similarities: %w", err)
	}
	return tag.RowsAffected(), nil
}
