package ml

import (
	"errors"
	"fmt"
	"math"
)

const (
	defaultLearningRate = 0.1
	defaultMaxIter      = 20000
	defaultTolerance    = 1e-4
	defaultL2           = 0.01
)

// LogisticRegression is a binary linear classifier fitted with full-batch
// gradient descent on an L2-penalized mean log loss (the bias is not
// penalized). Features are standardized internally before the descent;
// the fitted per-column mean and deviation are stored with the weights so
// inference reproduces training exactly.
type LogisticRegression struct {
	Weights      []float64 `json:"weights"`
	Bias         float64   `json:"bias"`
	FeatureMean  []float64 `json:"feature_mean"`
	FeatureStd   []float64 `json:"feature_std"`
	LearningRate float64   `json:"learning_rate"`
	L2           float64   `json:"l2"`
	MaxIter      int       `json:"max_iter"`
	Tolerance    float64   `json:"tolerance"`
	Iterations   int       `json:"iterations"`
	Converged    bool      `json:"converged"`
}

// NewLogisticRegression creates an unfitted classifier with defaults.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{
		LearningRate: defaultLearningRate,
		L2:           defaultL2,
		MaxIter:      defaultMaxIter,
		Tolerance:    defaultTolerance,
	}
}

// Fit trains the classifier. Labels must be 0 or 1. Training fails if the
// gradient norm does not drop below the tolerance within MaxIter iterations;
// a non-converged model is never kept.
func (lr *LogisticRegression) Fit(features [][]float64, labels []int) error {
	if len(features) == 0 || len(labels) == 0 {
		return errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return errors.New("features and labels size mismatch")
	}
	width := len(features[0])
	if width == 0 {
		return errors.New("feature rows are empty")
	}
	for i, row := range features {
		if len(row) != width {
			return fmt.Errorf("row %d has %d values, want %d", i, len(row), width)
		}
		for j, value := range row {
			if math.IsNaN(value) || math.IsInf(value, 0) {
				return fmt.Errorf("row %d column %d is not finite", i, j)
			}
		}
	}
	for i, label := range labels {
		if label != 0 && label != 1 {
			return fmt.Errorf("label %d at row %d, want 0 or 1", label, i)
		}
	}
	if lr.LearningRate <= 0 {
		lr.LearningRate = defaultLearningRate
	}
	if lr.L2 < 0 {
		lr.L2 = defaultL2
	}
	if lr.MaxIter <= 0 {
		lr.MaxIter = defaultMaxIter
	}
	if lr.Tolerance <= 0 {
		lr.Tolerance = defaultTolerance
	}

	mean, std := columnStats(features, width)
	scaled := make([][]float64, len(features))
	for i, row := range features {
		scaledRow := make([]float64, width)
		for j, value := range row {
			scaledRow[j] = (value - mean[j]) / std[j]
		}
		scaled[i] = scaledRow
	}

	weights := make([]float64, width)
	bias := 0.0
	n := float64(len(scaled))
	grad := make([]float64, width)

	converged := false
	iterations := 0
	for iter := 0; iter < lr.MaxIter; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		biasGrad := 0.0
		for i, row := range scaled {
			z := bias
			for j, value := range row {
				z += weights[j] * value
			}
			residual := sigmoid(z) - float64(labels[i])
			for j, value := range row {
				grad[j] += residual * value
			}
			biasGrad += residual
		}

		biasGrad /= n
		normSq := biasGrad * biasGrad
		for j := range grad {
			grad[j] = grad[j]/n + lr.L2*weights[j]
			normSq += grad[j] * grad[j]
		}

		iterations = iter + 1
		if math.Sqrt(normSq) < lr.Tolerance {
			converged = true
			break
		}

		for j := range weights {
			weights[j] -= lr.LearningRate * grad[j]
		}
		bias -= lr.LearningRate * biasGrad
	}

	if !converged {
		return fmt.Errorf("did not converge after %d iterations (tolerance %g)", iterations, lr.Tolerance)
	}

	lr.Weights = weights
	lr.Bias = bias
	lr.FeatureMean = mean
	lr.FeatureStd = std
	lr.Iterations = iterations
	lr.Converged = true
	return nil
}

// PredictProba returns [P(class 0), P(class 1)]; the pair sums to 1.
func (lr *LogisticRegression) PredictProba(features []float64) ([2]float64, error) {
	if len(lr.Weights) == 0 {
		return [2]float64{}, errors.New("model not trained")
	}
	if len(features) != len(lr.Weights) {
		return [2]float64{}, fmt.Errorf("expected %d features, got %d", len(lr.Weights), len(features))
	}
	z := lr.Bias
	for j, value := range features {
		z += lr.Weights[j] * (value - lr.FeatureMean[j]) / lr.FeatureStd[j]
	}
	p1 := sigmoid(z)
	return [2]float64{1 - p1, p1}, nil
}

func columnStats(features [][]float64, width int) (mean, std []float64) {
	mean = make([]float64, width)
	std = make([]float64, width)
	n := float64(len(features))
	for _, row := range features {
		for j, value := range row {
			mean[j] += value
		}
	}
	for j := range mean {
		mean[j] /= n
	}
	for _, row := range features {
		for j, value := range row {
			d := value - mean[j]
			std[j] += d * d
		}
	}
	for j := range std {
		std[j] = math.Sqrt(std[j] / n)
		if std[j] == 0 {
			// Constant column; leave it centered but unscaled.
			std[j] = 1
		}
	}
	return mean, std
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
