package utils

import (
	"math"
	"testing"
)

func TestNewRandSource(t *testing.T) {
	rng1 := NewRandSource(12345)
	if rng1 == nil {
		t.Fatal("Expected RandSource to be created")
	}

	// Zero seed uses current time
	rng2 := NewRandSource(0)
	if rng2 == nil {
		t.Fatal("Expected RandSource to be created with zero seed")
	}
}

func TestRandSourceDeterministicForSeed(t *testing.T) {
	a := NewRandSource(42)
	b := NewRandSource(42)
	for i := 0; i < 10; i++ {
		if a.NormFloat64(1, 0.01) != b.NormFloat64(1, 0.01) {
			t.Fatalf("expected identical sequences for identical seeds at draw %d", i)
		}
	}
}

func TestRandSourceNormFloat64(t *testing.T) {
	rng := NewRandSource(12345)
	mean := 1.0
	stddev := 0.01

	samples := make([]float64, 5000)
	for i := range samples {
		samples[i] = rng.NormFloat64(mean, stddev)
	}

	if got := Mean(samples); math.Abs(got-mean) > 0.001 {
		t.Errorf("sample mean %f too far from %f", got, mean)
	}
	if got := StdDev(samples); math.Abs(got-stddev) > 0.001 {
		t.Errorf("sample stddev %f too far from %f", got, stddev)
	}
}
