package ml

import "testing"

func TestEvaluate(t *testing.T) {
	p := fittedPipeline(t)

	testX := [][]float64{{1.0, 2.0}, {5.0, 8.0}, {1.1, 1.9}, {4.9, 8.1}}
	testY := []int{0, 1, 0, 1}

	accuracy, precision, recall := Evaluate(p, testX, testY)
	if accuracy != 1.0 {
		t.Errorf("expected accuracy 1.0 on cluster centers, got %v", accuracy)
	}
	if precision != 1.0 || recall != 1.0 {
		t.Errorf("expected perfect precision/recall, got %v/%v", precision, recall)
	}
}

func TestEvaluateEmpty(t *testing.T) {
	p := fittedPipeline(t)
	accuracy, precision, recall := Evaluate(p, nil, nil)
	if accuracy != 0 || precision != 0 || recall != 0 {
		t.Errorf("expected zeros for empty test set, got %v/%v/%v", accuracy, precision, recall)
	}
}
