package raglabindex

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_LocalEmbedder_Deterministic(t *testing.T) {
	embedder := NewLocalEmbedder(16)
	ctx := context.Background()

	vectors1, err := embedder.EmbedBatch(ctx, []string{"the quick brown fox"})
	require.NoError(t, err)

	vectors2, err := embedder.EmbedBatch(ctx, []string{"the quick brown fox"})
	require.NoError(t, err)

	assert.Equal(t, vectors1, vectors2)
	assert.Len(t, vectors1[0], 16)
}

func Test_LocalEmbedder_Normalized(t *testing.T) {
	embedder := NewLocalEmbedder(16)

	vectors, err := embedder.EmbedBatch(context.Background(), []string{"some text to embed"})
	require.NoError(t, err)

	var sumSquares float64
	for _, v := range vectors[0] {
		sumSquares += float64(v) * float64(v)
	}

	assert.InDelta(t, 1.0, math.Sqrt(sumSquares), 0.0001)
}

func Test_LocalEmbedder_SimilarTextsScoreHigher(t *testing.T) {
	embedder := NewLocalEmbedder(32)
	ctx := context.Background()

	vectors, err := embedder.EmbedBatch(ctx, []string{
		"the capital of france",
		"the capital city of france",
		"completely unrelated words here",
	})
	require.NoError(t, err)

	dot := func(a, b []float32) float32 {
		var sum float32
		for i := range a {
			sum += a[i] * b[i]
		}
		return sum
	}

	similarScore := dot(vectors[0], vectors[1])
	unrelatedScore := dot(vectors[0], vectors[2])
	assert.Greater(t, similarScore, unrelatedScore)
}

func Test_NormalizeVector_ZeroVector(t *testing.T) {
	vector := []float32{0, 0, 0}
	NormalizeVector(vector)
	assert.Equal(t, []float32{0, 0, 0}, vector)
}
