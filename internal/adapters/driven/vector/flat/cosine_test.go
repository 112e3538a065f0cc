package flat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite", []float32{1, 2, 3}, []float32{-1, -2, -3}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"scaled", []float32{1, 1}, []float32{5, 5}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestCosineSimilarity_Degenerate(t *testing.T) {
	nan := float32(math.NaN())

	tests := []struct {
		name string
		a, b []float32
	}{
		{"zero vector", []float32{0, 0, 0}, []float32{1, 2, 3}},
		{"both zero", []float32{0, 0}, []float32{0, 0}},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}},
		{"empty", nil, nil},
		{"nan component", []float32{nan, 1}, []float32{1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			assert.False(t, math.IsNaN(got))
			assert.True(t, math.IsInf(got, -1))
		})
	}
}
