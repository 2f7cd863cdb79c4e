package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pulsefeed/recommendation-service/internal/domain"
)

func (r *Repository) InsertFeedback(ctx context.Context, f domain.RecommendationFeedback) error {
	version := sql.NullString{String: f.AlgorithmVersion, Valid: f.AlgorithmVersion != ""}
	position := sql.NullInt32{Int32: int32(f.PositionInList), Valid: f.PositionInList > 0}

	_, err := r.db.Exec(ctx,
		`INSERT INTO recommendation_feedback
		   (user_id, content_id, recommendation_type, algorithm_version,
		    feedback_type, feedback_score, position_in_list, recommendation_timestamp)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		f.UserID, f.ContentID, f.RecommendationType, version,
		f.FeedbackType, f.FeedbackScore, position, f.RecommendedAt,
	)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (r *Repository) ListFeedbackSince(ctx context.Context, since time.Time, limit int) ([]domain.RecommendationFeedback, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, content_id, recommendation_type, COALESCE(algorithm_version, ''),
		        feedback_type, feedback_score, COALESCE(position_in_list, 0),
		        recommendation_timestamp, feedback_timestamp
		 FROM recommendation_feedback
		 WHERE feedback_timestamp >= $1
		 ORDER BY feedback_timestamp DESC
		 LIMIT $2`, since, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer rows.Close()

	var items []domain.RecommendationFeedback
	for rows.Next() {
		var f domain.RecommendationFeedback
		err := rows.Scan(&f.ID, &f.UserID, &f.ContentID, &f.RecommendationType, &f.AlgorithmVersion,
			&f.FeedbackType, &f.FeedbackScore, &f.PositionInList, &f.RecommendedAt, &f.FeedbackAt)
		if err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over feedback: %w", err)
	}
	return items, nil
}
