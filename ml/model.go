package ml

// Model is a trainable two-class classifier.
type Model interface {
	Fit(features [][]float64, labels []int) error
	PredictProba(features []float64) ([2]float64, error)
}

// Transformer is a fitted feature transform applied ahead of a classifier.
type Transformer interface {
	Transform(features []float64) ([]float64, error)
}

var (
	_ Model       = (*LogisticRegression)(nil)
	_ Transformer = (*MeanImputer)(nil)
)
