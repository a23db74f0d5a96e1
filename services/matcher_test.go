package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unitVec builds a 2-d unit vector whose cosine similarity against
// [1, 0] equals approximately s.
func unitVec(s float64) []float32 {
	return []float32{float32(s), float32(math.Sqrt(1 - s*s))}
}

func TestCosineSimilarity(t *testing.T) {
	t.Run("identical unit vectors", func(t *testing.T) {
		sim := CosineSimilarity([]float32{1, 0}, []float32{1, 0})
		assert.InDelta(t, 1.0, float64(sim), 1e-6)
	})

	t.Run("orthogonal", func(t *testing.T) {
		sim := CosineSimilarity([]float32{1, 0}, []float32{0, 1})
		assert.InDelta(t, 0.0, float64(sim), 1e-6)
	})

	t.Run("opposed", func(t *testing.T) {
		sim := CosineSimilarity([]float32{1, 0}, []float32{-1, 0})
		assert.InDelta(t, -1.0, float64(sim), 1e-6)
	})

	t.Run("length mismatch", func(t *testing.T) {
		assert.Zero(t, CosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}))
	})

	t.Run("zero vector", func(t *testing.T) {
		assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 0}))
	})
}

func TestMatcherMaxOverEmbeddings(t *testing.T) {
	store := newFakePersonStore()
	// A's mean similarity is lower but its best embedding is stronger
	store.addPerson("A", 0, 0, unitVec(0.3), unitVec(0.9))
	store.addPerson("B", 0, 0, unitVec(0.8))
	persons, err := store.ListAllWithEmbeddings()
	require.NoError(t, err)

	m := NewMatcher(0.65)
	result := m.Match([]float32{1, 0}, persons)

	assert.True(t, result.Matched)
	assert.Equal(t, "A", result.Name)
	assert.InDelta(t, 0.9, float64(result.Similarity), 1e-3)
}

func TestMatcherThresholdIsStrict(t *testing.T) {
	store := newFakePersonStore()
	store.addPerson("A", 0, 0, unitVec(0.65))
	persons, _ := store.ListAllWithEmbeddings()

	// pin the threshold to the exactly attained similarity; a score equal
	// to the boundary must classify as unknown
	boundary := CosineSimilarity([]float32{1, 0}, unitVec(0.65))
	m := NewMatcher(boundary)

	result := m.Match([]float32{1, 0}, persons)
	assert.False(t, result.Matched)
	assert.Equal(t, boundary, result.Similarity)

	// anything strictly above the boundary matches
	m = NewMatcher(boundary - 0.01)
	result = m.Match([]float32{1, 0}, persons)
	assert.True(t, result.Matched)
}

func TestMatcherTieBreakFirstWins(t *testing.T) {
	store := newFakePersonStore()
	store.addPerson("first", 0, 0, []float32{1, 0})
	store.addPerson("second", 0, 0, []float32{1, 0})
	persons, _ := store.ListAllWithEmbeddings()

	m := NewMatcher(0.65)
	result := m.Match([]float32{1, 0}, persons)

	assert.True(t, result.Matched)
	assert.Equal(t, "first", result.Name)
}

func TestMatcherNilFeature(t *testing.T) {
	store := newFakePersonStore()
	store.addPerson("A", 0, 0, []float32{1, 0})
	persons, _ := store.ListAllWithEmbeddings()

	m := NewMatcher(0.65)
	result := m.Match(nil, persons)

	assert.False(t, result.Matched)
	assert.Zero(t, result.Similarity)
	assert.Zero(t, result.PersonID)
}

func TestMatcherNegativeSimilarityIsUnmatched(t *testing.T) {
	store := newFakePersonStore()
	store.addPerson("A", 0, 0, []float32{-1, 0})
	persons, _ := store.ListAllWithEmbeddings()

	m := NewMatcher(0.65)
	result := m.Match([]float32{1, 0}, persons)

	assert.False(t, result.Matched)
	// a negative score never displaces the zero starting point
	assert.Zero(t, result.Similarity)
}

func TestBestSimilarityFlattens(t *testing.T) {
	store := newFakePersonStore()
	store.addPerson("A", 0, 0, unitVec(0.4))
	store.addPerson("B", 0, 0, unitVec(0.2), unitVec(0.7))
	persons, _ := store.ListAllWithEmbeddings()

	m := NewMatcher(0.65)
	assert.InDelta(t, 0.7, float64(m.BestSimilarity([]float32{1, 0}, persons)), 1e-3)
	assert.Zero(t, m.BestSimilarity(nil, persons))
}
