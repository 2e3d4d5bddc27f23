package vector

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_AddNormalizes(t *testing.T) {
	idx := NewIndex(3)

	require.NoError(t, idx.Add([][]float32{{3, 0, 0}, {0, 4, 0}}))

	require.Equal(t, 2, idx.Len())
	for pos := range 2 {
		v := idx.Vector(pos)
		var sum float64
		for _, val := range v {
			sum += float64(val) * float64(val)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
	}
}

func TestIndex_AddReplacesZeroVectors(t *testing.T) {
	idx := NewIndex(3)

	// An all-zero embedding (out-of-vocabulary text) must not enter the
	// graph as-is: cosine distance against it is undefined.
	require.NoError(t, idx.Add([][]float32{{0, 0, 0}, {0, 1, 0}}))

	assert.Equal(t, []float32{1, 0, 0}, idx.Vector(0))

	results, err := idx.Search([]float32{0, 1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.False(t, math.IsNaN(float64(r.Similarity)))
	}
}

func TestIndex_AddRejectsWrongWidth(t *testing.T) {
	idx := NewIndex(3)

	err := idx.Add([][]float32{{1, 0}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension mismatch")
}

func TestIndex_SearchFindsNearest(t *testing.T) {
	idx := NewIndex(3)
	require.NoError(t, idx.Add([][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0.9, 0.1, 0},
	}))

	results, err := idx.Search([]float32{1, 0, 0}, 2)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, 0, results[0].Position)
	assert.InDelta(t, 1.0, float64(results[0].Similarity), 1e-5)
	assert.Equal(t, 2, results[1].Position)
	assert.Greater(t, results[0].Similarity, results[1].Similarity)
}

func TestIndex_SearchEmptyIndex(t *testing.T) {
	idx := NewIndex(4)

	results, err := idx.Search([]float32{1, 0, 0, 0}, 5)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	vecPath := filepath.Join(dir, "concepts.vec")
	metaPath := filepath.Join(dir, "concepts_metadata.json")

	idx := NewIndex(3)
	require.NoError(t, idx.Add([][]float32{{1, 0, 0}, {0, 1, 0}}))
	meta := Metadata{
		{"name": "CallTemplate", "type": "class"},
		{"name": "protocol", "type": "term"},
	}
	require.NoError(t, idx.Save(vecPath, metaPath, meta))

	loaded, loadedMeta, err := Load(vecPath, metaPath)
	require.NoError(t, err)

	// Positional correspondence survives the round trip.
	require.Equal(t, 2, loaded.Len())
	assert.Equal(t, idx.Vector(0), loaded.Vector(0))
	assert.Equal(t, idx.Vector(1), loaded.Vector(1))
	require.Len(t, loadedMeta, 2)
	assert.Equal(t, "CallTemplate", loadedMeta[0]["name"])

	results, err := loaded.Search([]float32{0, 1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Position)
}

func TestSave_MetadataLengthMustMatch(t *testing.T) {
	dir := t.TempDir()
	idx := NewIndex(2)
	require.NoError(t, idx.Add([][]float32{{1, 0}}))

	err := idx.Save(filepath.Join(dir, "x.vec"), filepath.Join(dir, "x_metadata.json"), Metadata{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestLoad_RejectsForeignFile(t *testing.T) {
	dir := t.TempDir()
	vecPath := filepath.Join(dir, "bogus.vec")
	require.NoError(t, os.WriteFile(vecPath, []byte("not a vector file at all"), 0o644))

	_, _, err := Load(vecPath, filepath.Join(dir, "bogus_metadata.json"))

	require.Error(t, err)
}
