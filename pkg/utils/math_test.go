package utils

import (
	"math"
	"testing"
)

func TestNormalizeL2(t *testing.T) {
	v := []float32{3, 4}
	NormalizeL2(v)
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if math.Abs(norm-1) > 1e-6 {
		t.Errorf("norm = %f, want 1", norm)
	}
	if math.Abs(float64(v[0])-0.6) > 1e-6 {
		t.Errorf("v[0] = %f, want 0.6", v[0])
	}

	zero := []float32{0, 0}
	NormalizeL2(zero)
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("zero vector changed: %v", zero)
	}
}
