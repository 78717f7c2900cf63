package dataset

// NumFeatures is the fixed width of a Cleveland feature vector.
const NumFeatures = 13

// Record is one row of the processed Cleveland table: 13 clinical features
// plus the diagnosis target (0 = no disease, 1-4 = increasing severity).
// Missing feature values are represented as NaN.
type Record struct {
	Features []float64
	Target   int
}

var featureNames = []string{
	"age",
	"sex",
	"cp",
	"trestbps",
	"chol",
	"fbs",
	"restecg",
	"thalach",
	"exang",
	"oldpeak",
	"slope",
	"ca",
	"thal",
}

// FeatureNames returns the positional column names of a feature vector.
func FeatureNames() []string {
	names := make([]string, len(featureNames))
	copy(names, featureNames)
	return names
}

// BinarizeTarget collapses the severity grades 1-4 into a single positive
// class, the convention this dataset is used with.
func BinarizeTarget(target int) int {
	if target > 0 {
		return 1
	}
	return 0
}

// Matrix converts records into a feature matrix and a binarized label slice.
func Matrix(records []Record) ([][]float64, []int) {
	features := make([][]float64, len(records))
	labels := make([]int, len(records))
	for i, rec := range records {
		row := make([]float64, len(rec.Features))
		copy(row, rec.Features)
		features[i] = row
		labels[i] = BinarizeTarget(rec.Target)
	}
	return features, labels
}
