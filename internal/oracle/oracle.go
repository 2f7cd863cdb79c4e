// Package oracle provides the content scoring oracle: fixed-length text
// embeddings and topic/sentiment classification. The local client is
// deterministic so that downstream similarity scores are reproducible; it can
// be swapped for a remote model behind the same interface.
package oracle

import (
	"errors"
	"hash/fnv"
	"math"
	"sort"
	"strings"
)

const (
	// EmbeddingDims is the fixed length of every vector the oracle returns.
	EmbeddingDims = 128

	// ModelName identifies the embedding scheme for persisted vectors.
	ModelName = "hash-tf-v1"
)

type InferenceError struct {
	Msg string
}

func (e *InferenceError) Error() string {
	return e.Msg
}

func IsInferenceError(err error) bool {
	var target *InferenceError
	return errors.As(err, &target)
}

type TopicScore struct {
	Topic     string  `json:"topic"`
	Relevance float64 `json:"relevance"`
}

type SentimentScore struct {
	Label      string  `json:"label"` // positive, negative, neutral
	Confidence float64 `json:"confidence"`
}

type Classification struct {
	Topics    []TopicScore   `json:"topics"`
	Sentiment SentimentScore `json:"sentiment"`
}

type Client struct{}

func NewClient() *Client {
	return &Client{}
}

// Embed maps text onto a fixed-length unit vector. Tokens are hashed into
// dimensions and weighted by term frequency, then L2-normalised, so equal
// texts always embed identically.
func (c *Client) Embed(text string) ([]float64, error) {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil, &InferenceError{Msg: "cannot embed empty text"}
	}

	vec := make([]float64, EmbeddingDims)
	for _, tok := range tokens {
		h := fnv.New32a()
		h.Write([]byte(tok))
		sum := h.Sum32()
		dim := int(sum % EmbeddingDims)
		// Alternate sign from a higher hash bit to spread mass around zero.
		sign := 1.0
		if sum&0x80000000 != 0 {
			sign = -1.0
		}
		vec[dim] += sign
	}

	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return nil, &InferenceError{Msg: "degenerate embedding"}
	}
	for i := range vec {
		vec[i] /= norm
	}
	return vec, nil
}

// Classify extracts the top-3 topics by keyword relevance and a sentiment
// label with confidence.
func (c *Client) Classify(title, body string) (Classification, error) {
	text := strings.TrimSpace(title + " " + body)
	if text == "" {
		return Classification{}, &InferenceError{Msg: "cannot classify empty text"}
	}

	return Classification{
		Topics:    extractTopics(text),
		Sentiment: scoreSentiment(text),
	}, nil
}

// Cosine returns the cosine similarity of two vectors, 0 when either has no
// magnitude or lengths differ.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

var topicKeywords = map[string][]string{
	"technology":    {"ai", "machine learning", "coding", "programming", "software", "tech", "digital", "automation", "blockchain", "cloud"},
	"business":      {"business", "startup", "entrepreneur", "revenue", "profit", "strategy", "management", "leadership"},
	"health":        {"health", "fitness", "nutrition", "exercise", "wellness", "mental health", "medical", "diet"},
	"science":       {"research", "study", "experiment", "theory", "data", "analysis", "scientific", "discovery"},
	"education":     {"learning", "education", "teaching", "student", "course", "tutorial", "guide", "skill"},
	"entertainment": {"movie", "music", "game", "fun", "funny", "entertainment", "show", "series"},
	"travel":        {"travel", "vacation", "trip", "journey", "adventure", "explore", "destination"},
	"food":          {"food", "cooking", "recipe", "restaurant", "dish", "meal", "cuisine", "chef"},
	"politics":      {"politics", "government", "policy", "election", "democracy", "vote", "political"},
	"sports":        {"sports", "football", "basketball", "soccer", "tennis", "athlete", "competition", "game"},
}

func extractTopics(text string) []TopicScore {
	lower := strings.ToLower(text)

	var found []TopicScore
	for topic, keywords := range topicKeywords {
		hits := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits >= 1 {
			found = append(found, TopicScore{
				Topic:     topic,
				Relevance: math.Min(float64(hits)/float64(len(keywords)), 1.0),
			})
		}
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].Relevance != found[j].Relevance {
			return found[i].Relevance > found[j].Relevance
		}
		return found[i].Topic < found[j].Topic
	})

	if len(found) > 3 {
		found = found[:3]
	}
	return found
}

var positiveWords = map[string]struct{}{
	"good": {}, "great": {}, "excellent": {}, "amazing": {}, "love": {},
	"wonderful": {}, "best": {}, "fantastic": {}, "happy": {}, "enjoy": {},
	"helpful": {}, "brilliant": {}, "awesome": {}, "beautiful": {}, "success": {},
}

var negativeWords = map[string]struct{}{
	"bad": {}, "terrible": {}, "awful": {}, "hate": {}, "worst": {},
	"horrible": {}, "poor": {}, "disappointing": {}, "sad": {}, "fail": {},
	"broken": {}, "useless": {}, "angry": {}, "wrong": {}, "problem": {},
}

// scoreSentiment produces a polarity in [-1,1] from lexicon hits, then maps
// it to a label with the +-0.1 neutral band.
func scoreSentiment(text string) SentimentScore {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return SentimentScore{Label: "neutral", Confidence: 0.5}
	}

	pos, neg := 0, 0
	for _, tok := range tokens {
		if _, ok := positiveWords[tok]; ok {
			pos++
		}
		if _, ok := negativeWords[tok]; ok {
			neg++
		}
	}

	polarity := float64(pos-neg) / math.Max(float64(pos+neg), 1)
	switch {
	case polarity > 0.1:
		return SentimentScore{Label: "positive", Confidence: math.Min(polarity, 1.0)}
	case polarity < -0.1:
		return SentimentScore{Label: "negative", Confidence: math.Min(-polarity, 1.0)}
	default:
		return SentimentScore{Label: "neutral", Confidence: 1 - math.Abs(polarity)}
	}
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) > 1 {
			out = append(out, f)
		}
	}
	return out
}
