package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pulsefeed/recommendation-service/internal/domain"
)

const preferenceColumns = `id, user_id, preference_type, preference_value, strength, confidence,
	interaction_count, positive_interactions, negative_interactions,
	first_interaction, last_interaction, is_active`

func scanPreference(row pgx.Row) (domain.Preference, error) {
	var p domain.Preference
	err := row.Scan(&p.ID, &p.UserID, &p.Type, &p.Value, &p.Strength, &p.Confidence,
		&p.InteractionCount, &p.PositiveInteractions, &p.NegativeInteractions,
		&p.FirstInteraction, &p.LastInteraction, &p.IsActive)
	return p, err
}

func (r *Repository) GetActivePreference(ctx context.Context, userID int64, ptype domain.PreferenceType, value string) (*domain.Preference, error) {
	p, err := scanPreference(r.db.QueryRow(ctx,
		`SELECT `+preferenceColumns+`
		 FROM preferences
		 WHERE user_id = $1 AND preference_type = $2 AND preference_value = $3 AND is_active`,
		userID, ptype, value,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPreferenceNotFound
		}
		return nil, fmt.Errorf("query preference (%d,%s,%s): %w", userID, ptype, value, err)
	}
	return &p, nil
}

func (r *Repository) GetPreferenceByID(ctx context.Context, userID, preferenceID int64) (*domain.Preference, error) {
	p, err := scanPreference(r.db.QueryRow(ctx,
		`SELECT `+preferenceColumns+`
		 FROM preferences WHERE id = $1 AND user_id = $2`,
		preferenceID, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPreferenceNotFound
		}
		return nil, fmt.Errorf("query preference id=%d: %w", preferenceID, err)
	}
	return &p, nil
}

func (r *Repository) InsertPreference(ctx context.Context, p domain.Preference) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO preferences
		   (user_id, preference_type, preference_value, strength, confidence,
		    interaction_count, positive_interactions, negative_interactions,
		    first_interaction, last_interaction, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now(), TRUE)`,
		p.UserID, p.Type, p.Value, p.Strength, p.Confidence,
		p.InteractionCount, p.PositiveInteractions, p.NegativeInteractions,
	)
	if err != nil {
		return fmt.Errorf("insert preference (%d,%s,%s): %w", p.UserID, p.Type, p.Value, err)
	}
	return nil
}

// UpdatePreference overwrites the numeric fields of one row. Concurrent
// interactions racing on the same key resolve last-writer-wins here, at the
// database, not in application code.
func (r *Repository) UpdatePreference(ctx context.Context, p domain.Preference) error {
	_, err := r.db.Exec(ctx,
		`UPDATE preferences
		 SET strength = $2, confidence = $3, interaction_count = $4,
		     positive_interactions = $5, negative_interactions = $6,
		     last_interaction = now()
		 WHERE id = $1`,
		p.ID, p.Strength, p.Confidence, p.InteractionCount,
		p.PositiveInteractions, p.NegativeInteractions,
	)
	if err != nil {
		return fmt.Errorf("update preference id=%d: %w", p.ID, err)
	}
	return nil
}

func (r *Repository) ListActivePreferences(ctx context.Context, userID int64, typeFilter domain.PreferenceType, minStrength float64) ([]domain.Preference, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+preferenceColumns+`
		 FROM preferences
		 WHERE user_id = $1 AND is_active
		   AND ($2 = '' OR preference_type = $2)
		   AND strength >= $3
		 ORDER BY strength DESC`, userID, string(typeFilter), minStrength,
	)
	if err != nil {
		return nil, fmt.Errorf("query preferences for user %d: %w", userID, err)
	}
	defer rows.Close()

	var items []domain.Preference
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over preferences: %w", err)
	}
	return items, nil
}

// DeactivatePreference soft-deletes; history stays for audit and undo.
func (r *Repository) DeactivatePreference(ctx context.Context, preferenceID int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE preferences SET is_active = FALSE WHERE id = $1 AND is_active`, preferenceID)
	if err != nil {
		return fmt.Errorf("deactivate preference id=%d: %w", preferenceID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPreferenceNotFound
	}
	return nil
}

func (r *Repository) DeactivatePreferencesInactiveSince(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE preferences SET is_active = FALSE
		 WHERE is_active AND last_interaction < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deactivate stale preferences: %w", err)
	}
	return tag.RowsAffected(), nil
}
