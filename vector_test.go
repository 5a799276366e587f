package lorebase

import (
	"math"
	"testing"
)

func TestCosineSymmetry(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{-2, 0.5, 4}
	if Cosine(a, b) != Cosine(b, a) {
		t.Errorf("cosine not symmetric: %v vs %v", Cosine(a, b), Cosine(b, a))
	}
}

func TestCosineBounds(t *testing.T) {
	cases := [][2][]float32{
		{{1, 0}, {0, 1}},
		{{1, 2, 3}, {1, 2, 3}},
		{{1, 1}, {-1, -1}},
		{{0.1, 0.9, 0.3}, {5, -2, 0.01}},
	}
	for i, c := range cases {
		got := Cosine(c[0], c[1])
		if got < -1.0001 || got > 1.0001 {
			t.Errorf("case %d: cosine %v out of [-1,1]", i, got)
		}
	}
}

func TestCosineIdentical(t *testing.T) {
	v := []float32{3, 4}
	got := Cosine(v, v)
	if math.Abs(float64(got)-1) > 1e-6 {
		t.Errorf("cosine of identical vectors = %v, want 1", got)
	}
}

func TestCosineZeroNorm(t *testing.T) {
	if got := Cosine([]float32{0, 0, 0}, []float32{1, 2, 3}); got != 0 {
		t.Errorf("zero vector score = %v, want 0", got)
	}
	if got := Cosine(nil, []float32{1}); got != 0 {
		t.Errorf("nil vector score = %v, want 0", got)
	}
}

func TestCosineSharedPrefix(t *testing.T) {
	// Differing lengths compare only the overlapping prefix.
	a := []float32{1, 0}
	b := []float32{1, 0, 99, 99}
	got := Cosine(a, b)
	if math.Abs(float64(got)-1) > 1e-6 {
		t.Errorf("shared-prefix cosine = %v, want 1", got)
	}
}
