package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// SchemaVersion identifies the artifact layout. A loaded artifact with any
// other version is rejected at startup.
const SchemaVersion = 1

// Class labels of the binarized target, in probability-array order.
const (
	LabelNegative = "no heart disease"
	LabelPositive = "heart disease"
)

// Pipeline is the imputer-then-classifier composition trained by the batch
// trainer and served read-only by the predictor. It is immutable once fitted
// or loaded and safe for concurrent use.
type Pipeline struct {
	SchemaVersion int                 `json:"schema_version"`
	FeatureNames  []string            `json:"feature_names"`
	Imputer       *MeanImputer        `json:"imputer"`
	Classifier    *LogisticRegression `json:"classifier"`
	TrainedAt     time.Time           `json:"trained_at"`
}

// NewPipeline creates an unfitted pipeline for the given feature columns.
func NewPipeline(featureNames []string) *Pipeline {
	names := make([]string, len(featureNames))
	copy(names, featureNames)
	return &Pipeline{
		SchemaVersion: SchemaVersion,
		FeatureNames:  names,
		Imputer:       &MeanImputer{},
		Classifier:    NewLogisticRegression(),
	}
}

// Fit fits the imputer on the raw rows, then the classifier on the imputed
// rows. The same imputer transform runs again at inference.
func (p *Pipeline) Fit(features [][]float64, labels []int) error {
	for i, row := range features {
		if len(row) != len(p.FeatureNames) {
			return fmt.Errorf("row %d has %d values, want %d", i, len(row), len(p.FeatureNames))
		}
	}
	if err := p.Imputer.Fit(features); err != nil {
		return fmt.Errorf("fit imputer: %w", err)
	}
	filled, err := p.Imputer.TransformAll(features)
	if err != nil {
		return fmt.Errorf("impute training rows: %w", err)
	}
	if err := p.Classifier.Fit(filled, labels); err != nil {
		return fmt.Errorf("fit classifier: %w", err)
	}
	p.TrainedAt = time.Now().UTC()
	return nil
}

// transforms returns the fitted transforms in application order.
func (p *Pipeline) transforms() []Transformer {
	return []Transformer{p.Imputer}
}

// PredictProba runs the stored transforms in training order and returns
// [P(class 0), P(class 1)].
func (p *Pipeline) PredictProba(features []float64) ([2]float64, error) {
	x := features
	for _, tr := range p.transforms() {
		var err error
		if x, err = tr.Transform(x); err != nil {
			return [2]float64{}, err
		}
	}
	return p.Classifier.PredictProba(x)
}

// Predict returns the argmax class and the probability pair.
func (p *Pipeline) Predict(features []float64) (int, [2]float64, error) {
	proba, err := p.PredictProba(features)
	if err != nil {
		return 0, [2]float64{}, err
	}
	label := 0
	if proba[1] > proba[0] {
		label = 1
	}
	return label, proba, nil
}

// NumFeatures returns the expected input vector length.
func (p *Pipeline) NumFeatures() int {
	return len(p.FeatureNames)
}

// LabelName maps a class index to its external string form.
func LabelName(label int) string {
	if label == 1 {
		return LabelPositive
	}
	return LabelNegative
}

// Save serializes the fitted pipeline to a single artifact file, replacing
// any previous artifact. An unfitted pipeline is never written.
func (p *Pipeline) Save(path string) error {
	if err := p.validate(); err != nil {
		return fmt.Errorf("refusing to save: %w", err)
	}
	payload, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

// LoadPipeline deserializes and validates an artifact file.
func LoadPipeline(path string) (*Pipeline, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Pipeline
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("decode artifact %s: %w", path, err)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("artifact %s: %w", path, err)
	}
	return &p, nil
}

func (p *Pipeline) validate() error {
	if p.SchemaVersion != SchemaVersion {
		return fmt.Errorf("unsupported schema version %d, want %d", p.SchemaVersion, SchemaVersion)
	}
	if len(p.FeatureNames) == 0 {
		return errors.New("no feature names")
	}
	if p.Imputer == nil || p.Classifier == nil {
		return errors.New("missing imputer or classifier")
	}
	if len(p.Imputer.Means) != len(p.FeatureNames) {
		return fmt.Errorf("imputer covers %d columns, want %d", len(p.Imputer.Means), len(p.FeatureNames))
	}
	if !p.Classifier.Converged {
		return errors.New("classifier not converged")
	}
	if len(p.Classifier.Weights) != len(p.FeatureNames) {
		return fmt.Errorf("classifier has %d weights, want %d", len(p.Classifier.Weights), len(p.FeatureNames))
	}
	if len(p.Classifier.FeatureMean) != len(p.FeatureNames) || len(p.Classifier.FeatureStd) != len(p.FeatureNames) {
		return errors.New("classifier scaling parameters incomplete")
	}
	return nil
}
