package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pulsefeed/recommendation-service/internal/domain"
)

func (r *Repository) InsertInteraction(ctx context.Context, in domain.Interaction) (domain.Interaction, error) {
	sessionID := sql.NullString{String: in.SessionID, Valid: in.SessionID != ""}

	err := r.db.QueryRow(ctx,
		`INSERT INTO interactions
		   (user_id, content_id, interaction_type, score, session_id, time_spent_seconds, scroll_depth)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		in.UserID, in.ContentID, in.Type, in.Score, sessionID, in.TimeSpentSeconds, in.ScrollDepth,
	).Scan(&in.ID, &in.CreatedAt)
	if err != nil {
		return domain.Interaction{}, fmt.Errorf("insert interaction: %w", err)
	}
	return in, nil
}

func (r *Repository) ListInteractionsByUser(ctx context.Context, userID int64, since time.Time) ([]domain.Interaction, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+interactionColumns+`
		 FROM interactions
		 WHERE user_id = $1 AND created_at >= $2
		 ORDER BY created_at DESC`, userID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("query interactions for user %d: %w", userID, err)
	}
	return collectInteractions(rows)
}

func (r *Repository) CountInteractionsByUser(ctx context.Context, userID int64) (int, error) {
	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM interactions WHERE user_id = $1`, userID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count interactions for user %d: %w", userID, err)
	}
	return total, nil
}

func (r *Repository) ListInteractionsByContentSince(ctx context.Context, contentID int64, since time.Time) ([]domain.Interaction, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+interactionColumns+`
		 FROM interactions
		 WHERE content_id = $1 AND created_at >= $2
		 ORDER BY created_at DESC`, contentID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("query interactions for content %d: %w", contentID, err)
	}
	return collectInteractions(rows)
}

// ListPositiveInteractionsForContents returns other users' positive
// interactions touching any of the given content items. Feeds the
// neighbour-finding step of collaborative filtering.
func (r *Repository) ListPositiveInteractionsForContents(ctx context.Context, contentIDs []int64, excludeUserID int64) ([]domain.Interaction, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+interactionColumns+`
		 FROM interactions
		 WHERE content_id = ANY($1)
		   AND user_id <> $2
		   AND interaction_type IN ('like', 'share', 'save')`,
		contentIDs, excludeUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("query positive interactions: %w", err)
	}
	return collectInteractions(rows)
}

// ListPositiveInteractionsByUser returns a user's positive interactions,
// strongest first, skipping the excluded content IDs.
func (r *Repository) ListPositiveInteractionsByUser(ctx context.Context, userID int64, excludeContentIDs []int64, limit int) ([]domain.Interaction, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+interactionColumns+`
		 FROM interactions
		 WHERE user_id = $1
		   AND interaction_type IN ('like', 'share', 'save')
		   AND NOT (content_id = ANY($2))
		 ORDER BY score DESC
		 LIMIT $3`, userID, excludeContentIDs, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query positive interactions for user %d: %w", userID, err)
	}
	return collectInteractions(rows)
}

func (r *Repository) DistinctInteractingUsersSince(ctx context.Context, since time.Time) ([]int64, error) {
	return r.collectIDs(ctx,
		`SELECT DISTINCT user_id FROM interactions WHERE created_at >= $1`, since)
}

func (r *Repository) DistinctInteractedContentSince(ctx context.Context, since time.Time) ([]int64, error) {
	return r.collectIDs(ctx,
		`SELECT DISTINCT content_id FROM interactions WHERE created_at >= $1`, since)
}

// DeleteInteractionsBefore prunes the retention window; the only delete path
// for interactions.
func (r *Repository) DeleteInteractionsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM interactions WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old interactions: %w", err)
	}
	return tag.RowsAffected(), nil
}

const interactionColumns = `id, user_id, content_id, interaction_type, score,
	COALESCE(session_id, ''), time_spent_seconds, scroll_depth, created_at`

func collectInteractions(rows pgx.Rows) ([]domain.Interaction, error) {
	defer rows.Close()

	var items []domain.Interaction
	for rows.Next() {
		var in domain.Interaction
		err := rows.Scan(&in.ID, &in.UserID, &in.ContentID, &in.Type, &in.Score,
			&in.SessionID, &in.TimeSpentSeconds, &in.ScrollDepth, &in.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		items = append(items, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over interactions: %w", err)
	}
	return items, nil
}

func (r *Repository) collectIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ids: %w", err)
	}
	return ids, nil
}
