package seeds

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

func Setup(ctx context.Context, pool *pgxpool.Pool) error {
	rng := rand.New(rand.NewSource(42))

	// Truncate existing data before insert
	log.Println("[seed] truncating existing data")
	if _, err := pool.Exec(ctx, `
		TRUNCATE recommendation_feedback, content_embeddings, trending,
		         content_similarities, preferences, interactions, content, users
		RESTART IDENTITY CASCADE
	`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	log.Println("[seed] inserting users")
	if err := seedUsers(ctx, pool, 20); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	log.Println("[seed] inserting content")
	if err := seedContent(ctx, pool, rng, 50); err != nil {
		return fmt.Errorf("seed content: %w", err)
	}

	log.Println("[seed] inserting interactions")
	if err := seedInteractions(ctx, pool, rng, 300); err != nil {
		return fmt.Errorf("seed interactions: %w", err)
	}

	log.Println("[seed] seeding complete")
	return nil
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool, n int) error {
	rows := []string{}
	args := []any{}

	for i := 0; i < n; i++ {
		rows = append(rows, fmt.Sprintf("($%d)", i+1))
		args = append(args, fmt.Sprintf("user_%02d", i+1))
	}

	query := "INSERT INTO users (username) VALUES " + strings.Join(rows, ", ")
	_, err := pool.Exec(ctx, query, args...)
	return err
}

func seedContent(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, n int) error {
	categories := []string{"technology", "science", "sports", "politics", "entertainment", "health"}
	titles := map[string][]string{
		"technology": {
			"Shipping a service in a weekend", "Why our cache kept lying to us",
			"Postgres tricks nobody told you about", "Profiling a slow request path",
		},
		"science": {
			"What ant colonies teach us about routing", "A field guide to bad statistics",
			"The quiet revolution in battery chemistry", "Reading papers without drowning",
		},
		"sports": {
			"The season nobody saw coming", "Training volume versus intensity",
			"Inside the transfer window", "Marathon pacing for mortals",
		},
		"politics": {
			"The budget vote explained", "Local elections, national consequences",
			"What the new bill actually changes", "A week in the committee room",
		},
		"entertainment": {
			"The festival lineup, ranked", "Why sequels keep winning",
			"A love letter to practical effects", "The album that grew on me",
		},
		"health": {
			"Sleep debt is real debt", "Strength training after forty",
			"What the fiber studies actually say", "A skeptic's guide to supplements",
		},
	}
	bodies := []string{
		"A longer look at the details, with some hard numbers and a few surprises along the way.",
		"Notes from the field, lightly edited. Your mileage may vary.",
		"We dug into the data so you don't have to. The short version is: it depends.",
		"An opinionated walkthrough, with all the dead ends left in.",
	}

	rows := []string{}
	args := []any{}

	for i := 0; i < n; i++ {
		category := categories[rng.Intn(len(categories))]
		pick := titles[category]
		title := pick[rng.Intn(len(pick))]
		body := bodies[rng.Intn(len(bodies))]
		authorID := rng.Intn(20) + 1
		createdAt := time.Now().AddDate(0, 0, -rng.Intn(28))

		cats := []string{category}
		if rng.Float64() < 0.3 {
			other := categories[rng.Intn(len(categories))]
			if other != category {
				cats = append(cats, other)
			}
		}

		base := i * 5
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5))
		args = append(args, authorID, title, body, cats, createdAt)
	}

	query := "INSERT INTO content (author_id, title, body, categories, created_at) VALUES " + strings.Join(rows, ", ")
	_, err := pool.Exec(ctx, query, args...)
	return err
}

func seedInteractions(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, n int) error {
	types := []string{"view", "like", "share", "comment", "save", "click", "dismiss", "dislike"}
	typeWeights := []float64{0.45, 0.2, 0.07, 0.08, 0.07, 0.06, 0.04, 0.03}

	rows := []string{}
	args := []any{}

	// A handful of shared sessions make the data feel like real browsing.
	sessions := make([]string, 40)
	for i := range sessions {
		sessions[i] = uuid.NewString()
	}

	for i := 0; i < n; i++ {
		userID := rng.Intn(20) + 1
		contentID := rng.Intn(50) + 1
		itype := weightedChoice(rng, types, typeWeights)
		score := 0.5 + rng.Float64()*0.5
		session := sessions[rng.Intn(len(sessions))]
		timeSpent := rng.Intn(300)
		scrollDepth := rng.Float64()
		createdAt := time.Now().Add(-time.Duration(rng.Intn(7*24*60)) * time.Minute)

		base := i * 8
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		args = append(args, userID, contentID, itype, score, session, timeSpent, scrollDepth, createdAt)
	}

	query := `INSERT INTO interactions
		(user_id, content_id, interaction_type, score, session_id, time_spent_seconds, scroll_depth, created_at)
		VALUES ` + strings.Join(rows, ", ")
	_, err := pool.Exec(ctx, query, args...)
	return err
}

func weightedChoice(rng *rand.Rand, choices []string, weights []float64) string {
	r := rng.Float64()
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r < acc {
			return choices[i]
		}
	}
	return choices[len(choices)-1]
}
