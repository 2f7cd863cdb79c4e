package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pulsefeed/recommendation-service/internal/domain"
)

// GetEmbedding returns the persisted vector for a content item, or
// (nil, nil) when none has been generated yet.
func (r *Repository) GetEmbedding(ctx context.Context, contentID int64) ([]float64, error) {
	var vec []float64
	err := r.db.QueryRow(ctx,
		`SELECT vector FROM content_embeddings WHERE content_id = $1`, contentID,
	).Scan(&vec)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query embedding for content %d: %w", contentID, err)
	}
	return vec, nil
}

func (r *Repository) UpsertEmbedding(ctx context.Context, contentID int64, modelName string, vec []float64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO content_embeddings (content_id, model_name, dims, vector, generated_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (content_id) DO UPDATE
		 SET model_name = EXCLUDED.model_name,
		     dims = EXCLUDED.dims,
		     vector = EXCLUDED.vector,
		     generated_at = now()`,
		contentID, modelName, len(vec), vec,
	)
	if err != nil {
		return fmt.Errorf("upsert embedding for content %d: %w", contentID, err)
	}
	return nil
}

// ListContentMissingEmbedding returns content that has no stored vector yet,
// oldest first, for the batch refresh job.
func (r *Repository) ListContentMissingEmbedding(ctx context.Context, limit int) ([]domain.Content, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+contentColumns+`
		 FROM content c
		 JOIN users u ON u.id = c.author_id
		 LEFT JOIN content_embeddings e ON e.content_id = c.id
		 WHERE e.content_id IS NULL
		 ORDER BY c.created_at ASC
		 LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query content missing embeddings: %w", err)
	}
	return collectContent(rows)
}
