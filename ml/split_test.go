package ml

import "testing"

func makeRows(n int) ([][]float64, []int) {
	features := make([][]float64, n)
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		features[i] = []float64{float64(i)}
		labels[i] = i % 2
	}
	return features, labels
}

func TestTrainTestSplitSizes(t *testing.T) {
	features, labels := makeRows(100)
	trainX, trainY, testX, testY := TrainTestSplit(features, labels, 0.2, 42)
	if len(trainX) != 80 || len(trainY) != 80 {
		t.Errorf("expected 80 training rows, got %d", len(trainX))
	}
	if len(testX) != 20 || len(testY) != 20 {
		t.Errorf("expected 20 test rows, got %d", len(testX))
	}
}

func TestTrainTestSplitDeterministic(t *testing.T) {
	features, labels := makeRows(50)

	aTrainX, aTrainY, aTestX, aTestY := TrainTestSplit(features, labels, 0.2, 7)
	bTrainX, bTrainY, bTestX, bTestY := TrainTestSplit(features, labels, 0.2, 7)

	for i := range aTrainX {
		if aTrainX[i][0] != bTrainX[i][0] || aTrainY[i] != bTrainY[i] {
			t.Fatalf("training split differs at %d for identical seeds", i)
		}
	}
	for i := range aTestX {
		if aTestX[i][0] != bTestX[i][0] || aTestY[i] != bTestY[i] {
			t.Fatalf("test split differs at %d for identical seeds", i)
		}
	}
}

func TestTrainTestSplitSeedMatters(t *testing.T) {
	features, labels := makeRows(50)
	aTrainX, _, _, _ := TrainTestSplit(features, labels, 0.2, 1)
	bTrainX, _, _, _ := TrainTestSplit(features, labels, 0.2, 2)

	same := true
	for i := range aTrainX {
		if aTrainX[i][0] != bTrainX[i][0] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical splits")
	}
}

func TestTrainTestSplitBadRatioFallsBack(t *testing.T) {
	features, labels := makeRows(10)
	trainX, _, testX, _ := TrainTestSplit(features, labels, 1.5, 42)
	if len(trainX) != 8 || len(testX) != 2 {
		t.Errorf("expected 80/20 fallback, got %d/%d", len(trainX), len(testX))
	}
}
