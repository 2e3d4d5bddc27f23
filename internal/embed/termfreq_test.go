package embed

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vectorNorm(v []float32) float64 {
	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}
	return math.Sqrt(sum)
}

func TestTermFrequency_FitSelectsByDocumentFrequency(t *testing.T) {
	// Given: "protocol" in two docs, the rest in one each
	e := NewTermFrequencyEmbedder(2)
	e.Fit([]string{
		"protocol manual",
		"protocol discovery",
	})

	// Then: vocabulary holds protocol plus the lexicographically first tie
	assert.Equal(t, 2, e.Dimensions())
	v, err := e.Embed(context.Background(), "protocol discovery manual")
	require.NoError(t, err)
	assert.Len(t, v, 2)
}

func TestTermFrequency_FitDeterministic(t *testing.T) {
	texts := []string{"alpha beta gamma", "beta gamma delta", "gamma delta alpha"}

	a := NewTermFrequencyEmbedder(3)
	a.Fit(texts)
	b := NewTermFrequencyEmbedder(3)
	b.Fit(texts)

	va, err := a.Embed(context.Background(), "alpha gamma")
	require.NoError(t, err)
	vb, err := b.Embed(context.Background(), "alpha gamma")
	require.NoError(t, err)
	assert.Equal(t, va, vb)
}

func TestTermFrequency_VectorsUnitNorm(t *testing.T) {
	e := NewTermFrequencyEmbedder(10)
	e.Fit([]string{"protocol manual discovery", "transport endpoint protocol"})

	vectors, err := e.EmbedBatch(context.Background(), []string{
		"protocol manual",
		"transport endpoint discovery protocol",
	})
	require.NoError(t, err)

	for _, v := range vectors {
		assert.InDelta(t, 1.0, vectorNorm(v), 1e-5)
	}
}

func TestTermFrequency_OutOfVocabularyIsZeroVector(t *testing.T) {
	e := NewTermFrequencyEmbedder(10)
	e.Fit([]string{"protocol manual"})

	v, err := e.Embed(context.Background(), "unrelated words entirely")
	require.NoError(t, err)

	assert.InDelta(t, 0.0, vectorNorm(v), 1e-9)
	assert.Len(t, v, e.Dimensions())
}

func TestNormalize_ZeroVectorUnchanged(t *testing.T) {
	v := []float32{0, 0, 0}

	assert.Equal(t, v, Normalize(v))
}

func TestTermFrequency_ImplementsFitter(t *testing.T) {
	var e Embedder = NewTermFrequencyEmbedder(10)

	_, ok := e.(Fitter)
	assert.True(t, ok)
}
