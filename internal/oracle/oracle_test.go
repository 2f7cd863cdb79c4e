package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedDeterministic(t *testing.T) {
	c := NewClient()

	a, err := c.Embed("machine learning for beginners")
	require.NoError(t, err)
	b, err := c.Embed("machine learning for beginners")
	require.NoError(t, err)

	require.Len(t, a, EmbeddingDims)
	assert.Equal(t, a, b)
}

func TestEmbedUnitNorm(t *testing.T) {
	c := NewClient()

	vec, err := c.Embed("a long piece of text about cooking recipes and food")
	require.NoError(t, err)

	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	assert.InDelta(t, 1.0, norm, 1e-9)
}

func TestEmbedEmptyText(t *testing.T) {
	c := NewClient()

	_, err := c.Embed("   ")
	require.Error(t, err)
	assert.True(t, IsInferenceError(err))
}

func TestSimilarTextsScoreHigher(t *testing.T) {
	c := NewClient()

	base, err := c.Embed("machine learning and software programming in the cloud")
	require.NoError(t, err)
	near, err := c.Embed("cloud software and machine learning programming")
	require.NoError(t, err)
	far, err := c.Embed("vacation travel destinations with great food")
	require.NoError(t, err)

	assert.Greater(t, Cosine(base, near), Cosine(base, far))
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float64{1, 0}, []float64{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.Equal(t, 0.0, Cosine([]float64{0, 0}, []float64{1, 1}))
	assert.Equal(t, 0.0, Cosine([]float64{1}, []float64{1, 2}))
}

func TestClassifyTopics(t *testing.T) {
	c := NewClient()

	res, err := c.Classify("AI coding tutorial", "A programming guide about machine learning software for students. Learning this skill takes a course of study.")
	require.NoError(t, err)

	require.NotEmpty(t, res.Topics)
	assert.LessOrEqual(t, len(res.Topics), 3)

	topics := map[string]bool{}
	for _, ts := range res.Topics {
		topics[ts.Topic] = true
		assert.Greater(t, ts.Relevance, 0.0)
		assert.LessOrEqual(t, ts.Relevance, 1.0)
	}
	assert.True(t, topics["technology"], "expected technology topic, got %v", res.Topics)
}

func TestClassifySentiment(t *testing.T) {
	c := NewClient()

	tests := []struct {
		name  string
		text  string
		label string
	}{
		{"positive", "this is a great and wonderful amazing product, love it", "positive"},
		{"negative", "terrible awful broken useless experience, hate it", "negative"},
		{"neutral", "the meeting is scheduled for tuesday afternoon", "neutral"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := c.Classify("", tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.label, res.Sentiment.Label)
			assert.GreaterOrEqual(t, res.Sentiment.Confidence, 0.0)
			assert.LessOrEqual(t, res.Sentiment.Confidence, 1.0)
		})
	}
}

func TestClassifyEmpty(t *testing.T) {
	c := NewClient()

	_, err := c.Classify("", "")
	require.Error(t, err)
	assert.True(t, IsInferenceError(err))
}
