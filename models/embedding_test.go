package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		vector []float32
	}{
		{"typical normalized values", []float32{0.1234, -0.5678, 0.9999, 0.0001}},
		{"negatives and extremes", []float32{-1, 1, math.MaxFloat32, math.SmallestNonzeroFloat32}},
		{"single element", []float32{0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Embedding
			e.SetVector(tt.vector)
			assert.Len(t, e.EmbeddingData, len(tt.vector)*4)
			assert.Equal(t, tt.vector, e.GetVector())
		})
	}
}

func TestVectorEmpty(t *testing.T) {
	var e Embedding
	e.SetVector(nil)
	assert.Nil(t, e.EmbeddingData)
	assert.Nil(t, e.GetVector())

	e.SetVector([]float32{})
	assert.Nil(t, e.EmbeddingData)
}

func TestPersonStatusLabel(t *testing.T) {
	assert.Equal(t, "IN", (&Person{Status: StatusIn}).StatusLabel())
	assert.Equal(t, "OUT", (&Person{Status: StatusOut}).StatusLabel())
	assert.True(t, (&Person{Status: StatusIn}).IsIn())
	assert.False(t, (&Person{Status: StatusOut}).IsIn())
}
