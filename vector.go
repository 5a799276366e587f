package lorebase

import "math"

// Cosine computes the cosine similarity of two vectors over the shared
// prefix of their lengths. Vectors of differing dimensions are compared on
// the overlapping prefix only. Returns 0 when either vector has zero norm.
func Cosine(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return float32(dot / denom)
}
