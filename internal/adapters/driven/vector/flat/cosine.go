package flat

import "math"

// CosineSimilarity returns dot(a,b)/(|a||b|), accumulated in float64.
// Mismatched lengths, empty vectors, zero norms and NaN inputs return -Inf
// so they rank below every real score.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(-1)
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return math.Inf(-1)
	}

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(score) {
		return math.Inf(-1)
	}
	return score
}
