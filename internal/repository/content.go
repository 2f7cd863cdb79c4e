package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pulsefeed/recommendation-service/internal/domain"
)

const contentColumns = `c.id, c.author_id, u.username, c.title, c.body, c.categories, c.created_at`

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}

func scanContent(row pgx.Row) (domain.Content, error) {
	var c domain.Content
	err := row.Scan(&c.ID, &c.AuthorID, &c.AuthorUsername, &c.Title, &c.Body, &c.Categories, &c.CreatedAt)
	return c, err
}

func (r *Repository) GetContent(ctx context.Context, contentID int64) (*domain.Content, error) {
	c, err := scanContent(r.db.QueryRow(ctx,
		`SELECT `+contentColumns+`
		 FROM content c JOIN users u ON u.id = c.author_id
		 WHERE c.id = $1`, contentID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrContentNotFound
		}
		return nil, fmt.Errorf("query content id=%d: %w", contentID, err)
	}
	return &c, nil
}

// ListRecentContent returns content created since the cutoff, newest first,
// optionally excluding one author (the requesting user's own items).
func (r *Repository) ListRecentContent(ctx context.Context, since time.Time, excludeAuthorID int64, limit int) ([]domain.Content, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+contentColumns+`
		 FROM content c JOIN users u ON u.id = c.author_id
		 WHERE c.created_at >= $1 AND ($2 = 0 OR c.author_id <> $2)
		 ORDER BY c.created_at DESC
		 LIMIT $3`, since, excludeAuthorID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent content: %w", err)
	}
	return collectContent(rows)
}

// ListCandidateContent returns recent content matching the user's preferred
// categories or authors, excluding the user's own items. Matching is
// case-insensitive: stored categories and usernames are lowercased in SQL
// to line up with the lowercased filter values.
func (r *Repository) ListCandidateContent(ctx context.Context, userID int64, categories, authors []string, since time.Time, limit int) ([]domain.Content, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+contentColumns+`
		 FROM content c JOIN users u ON u.id = c.author_id
		 WHERE c.author_id <> $1
		   AND c.created_at >= $2
		   AND (cardinality($3::text[]) = 0 OR
		        ARRAY(SELECT lower(x) FROM unnest(c.categories) AS x) && $3::text[])
		   AND (cardinality($4::text[]) = 0 OR lower(u.username) = ANY($4::text[]))
		 ORDER BY c.created_at DESC
		 LIMIT $5`, userID, since, lowerAll(categories), lowerAll(authors), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query candidate content for user %d: %w", userID, err)
	}
	return collectContent(rows)
}

func (r *Repository) ListContentByAuthor(ctx context.Context, authorID int64, limit int) ([]domain.Content, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+contentColumns+`
		 FROM content c JOIN users u ON u.id = c.author_id
		 WHERE c.author_id = $1
		 ORDER BY c.created_at DESC
		 LIMIT $2`, authorID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query content by author %d: %w", authorID, err)
	}
	return collectContent(rows)
}

// ListContentExcept returns the candidate catalog for on-demand similarity:
// every content item except the source itself.
func (r *Repository) ListContentExcept(ctx context.Context, contentID int64, limit int) ([]domain.Content, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+contentColumns+`
		 FROM content c JOIN users u ON u.id = c.author_id
		 WHERE c.id <> $1
		 ORDER BY c.id
		 LIMIT $2`, contentID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query content except %d: %w", contentID, err)
	}
	return collectContent(rows)
}

func collectContent(rows pgx.Rows) ([]domain.Content, error) {
	defer rows.Close()

	var items []domain.Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over content: %w", err)
	}
	return items, nil
}
