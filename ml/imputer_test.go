package ml

import (
	"math"
	"testing"
)

func TestMeanImputerFitTransform(t *testing.T) {
	imputer := &MeanImputer{}
	features := [][]float64{
		{1, 10},
		{3, math.NaN()},
		{math.NaN(), 20},
	}
	if err := imputer.Fit(features); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if imputer.Means[0] != 2 {
		t.Errorf("expected mean 2 for column 0, got %v", imputer.Means[0])
	}
	if imputer.Means[1] != 15 {
		t.Errorf("expected mean 15 for column 1, got %v", imputer.Means[1])
	}

	filled, err := imputer.Transform([]float64{math.NaN(), 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filled[0] != 2 || filled[1] != 7 {
		t.Errorf("unexpected transform result: %v", filled)
	}
}

func TestMeanImputerDenseIsIdentity(t *testing.T) {
	imputer := &MeanImputer{Means: []float64{5, 6, 7}}
	in := []float64{1, 2, 3}
	out, err := imputer.Transform(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("dense vector changed at %d: %v -> %v", i, in[i], out[i])
		}
	}
}

func TestMeanImputerErrors(t *testing.T) {
	tests := []struct {
		name     string
		features [][]float64
	}{
		{"empty", nil},
		{"ragged rows", [][]float64{{1, 2}, {3}}},
		{"all-missing column", [][]float64{{1, math.NaN()}, {2, math.NaN()}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			imputer := &MeanImputer{}
			if err := imputer.Fit(tt.features); err == nil {
				t.Errorf("Fit() expected error for %q", tt.name)
			}
		})
	}

	unfitted := &MeanImputer{}
	if _, err := unfitted.Transform([]float64{1}); err == nil {
		t.Error("Transform() expected error before Fit")
	}

	fitted := &MeanImputer{Means: []float64{1, 2}}
	if _, err := fitted.Transform([]float64{1, 2, 3}); err == nil {
		t.Error("Transform() expected error for wrong length")
	}
}
