package ml

import (
	"errors"
	"fmt"
	"math"
)

// MeanImputer fills missing (NaN) feature values with the per-column mean
// observed during fitting. The fitted means are part of the model artifact
// and must be applied at inference exactly as during training.
type MeanImputer struct {
	Means []float64 `json:"means"`
}

// Fit computes column means over the non-missing entries of each column.
func (im *MeanImputer) Fit(features [][]float64) error {
	if len(features) == 0 {
		return errors.New("features is empty")
	}
	width := len(features[0])
	if width == 0 {
		return errors.New("feature rows are empty")
	}

	sums := make([]float64, width)
	counts := make([]int, width)
	for i, row := range features {
		if len(row) != width {
			return fmt.Errorf("row %d has %d values, want %d", i, len(row), width)
		}
		for j, value := range row {
			if math.IsNaN(value) {
				continue
			}
			sums[j] += value
			counts[j]++
		}
	}

	means := make([]float64, width)
	for j := range sums {
		if counts[j] == 0 {
			return fmt.Errorf("column %d has no observed values", j)
		}
		means[j] = sums[j] / float64(counts[j])
	}
	im.Means = means
	return nil
}

// Transform returns a copy of the vector with NaN entries replaced by the
// fitted column means. Dense vectors pass through unchanged.
func (im *MeanImputer) Transform(features []float64) ([]float64, error) {
	if im.Means == nil {
		return nil, errors.New("imputer not fitted")
	}
	if len(features) != len(im.Means) {
		return nil, fmt.Errorf("expected %d features, got %d", len(im.Means), len(features))
	}
	filled := make([]float64, len(features))
	for i, value := range features {
		if math.IsNaN(value) {
			filled[i] = im.Means[i]
		} else {
			filled[i] = value
		}
	}
	return filled, nil
}

// TransformAll applies Transform to every row.
func (im *MeanImputer) TransformAll(features [][]float64) ([][]float64, error) {
	filled := make([][]float64, len(features))
	for i, row := range features {
		out, err := im.Transform(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		filled[i] = out
	}
	return filled, nil
}
