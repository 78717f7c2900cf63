package ml

import (
	"math"
	"testing"
)

// Two well-separated clusters the descent converges on quickly.
func separableData() ([][]float64, []int) {
	features := [][]float64{
		{1.0, 2.0}, {1.2, 1.8}, {0.8, 2.2}, {1.1, 2.1}, {0.9, 1.9},
		{5.0, 8.0}, {5.2, 7.8}, {4.8, 8.2}, {5.1, 8.1}, {4.9, 7.9},
	}
	labels := []int{0, 0, 0, 0, 0, 1, 1, 1, 1, 1}
	return features, labels
}

func TestLogisticRegressionFit(t *testing.T) {
	features, labels := separableData()
	model := NewLogisticRegression()
	if err := model.Fit(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !model.Converged {
		t.Fatal("model did not converge")
	}
	if model.Iterations <= 0 || model.Iterations > model.MaxIter {
		t.Fatalf("implausible iteration count %d", model.Iterations)
	}

	proba, err := model.PredictProba(features[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proba[0] <= proba[1] {
		t.Errorf("expected class 0 for %v, got probabilities %v", features[0], proba)
	}

	proba, err = model.PredictProba(features[len(features)-1])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proba[1] <= proba[0] {
		t.Errorf("expected class 1, got probabilities %v", proba)
	}
}

func TestLogisticRegressionProbabilitiesWellFormed(t *testing.T) {
	features, labels := separableData()
	model := NewLogisticRegression()
	if err := model.Fit(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vectors := [][]float64{
		{0, 0},
		{3, 5},
		{100, -100},
		{-7.5, 42.1},
	}
	for _, vector := range vectors {
		proba, err := model.PredictProba(vector)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, p := range proba {
			if p < 0 || p > 1 {
				t.Errorf("probability[%d]=%v out of [0,1] for %v", i, p, vector)
			}
		}
		if math.Abs(proba[0]+proba[1]-1.0) > 1e-9 {
			t.Errorf("probabilities %v do not sum to 1 for %v", proba, vector)
		}
	}
}

func TestLogisticRegressionDeterministic(t *testing.T) {
	features, labels := separableData()

	first := NewLogisticRegression()
	if err := first.Fit(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second := NewLogisticRegression()
	if err := second.Fit(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for j := range first.Weights {
		if first.Weights[j] != second.Weights[j] {
			t.Fatalf("weight %d differs between identical fits: %v vs %v", j, first.Weights[j], second.Weights[j])
		}
	}
	if first.Bias != second.Bias {
		t.Fatalf("bias differs between identical fits: %v vs %v", first.Bias, second.Bias)
	}
}

func TestLogisticRegressionFitErrors(t *testing.T) {
	tests := []struct {
		name     string
		features [][]float64
		labels   []int
	}{
		{"empty", nil, nil},
		{"size mismatch", [][]float64{{1}}, []int{0, 1}},
		{"ragged rows", [][]float64{{1, 2}, {3}}, []int{0, 1}},
		{"bad label", [][]float64{{1}, {2}}, []int{0, 2}},
		{"nan feature", [][]float64{{math.NaN()}, {2}}, []int{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := NewLogisticRegression()
			if err := model.Fit(tt.features, tt.labels); err == nil {
				t.Errorf("Fit() expected error for %q", tt.name)
			}
		})
	}
}

func TestLogisticRegressionPredictErrors(t *testing.T) {
	model := NewLogisticRegression()
	if _, err := model.PredictProba([]float64{1, 2}); err == nil {
		t.Error("PredictProba() expected error before Fit")
	}

	features, labels := separableData()
	if err := model.Fit(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := model.PredictProba([]float64{1, 2, 3}); err == nil {
		t.Error("PredictProba() expected error for wrong length")
	}
}

func TestLogisticRegressionNonConvergenceIsError(t *testing.T) {
	features, labels := separableData()
	model := NewLogisticRegression()
	model.MaxIter = 1
	if err := model.Fit(features, labels); err == nil {
		t.Fatal("expected convergence error with a one-iteration cap")
	}
	if model.Converged {
		t.Error("model marked converged after failed fit")
	}
	if len(model.Weights) != 0 {
		t.Error("failed fit must not keep weights")
	}
}
