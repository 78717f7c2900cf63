package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// DefaultURL is the UCI snapshot of the processed Cleveland table.
const DefaultURL = "https://archive.ics.uci.edu/ml/machine-learning-databases/heart-disease/processed.cleveland.data"

const missingMarker = "?"

// Fetch downloads the dataset and parses it into records.
func Fetch(url string) ([]Record, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch dataset: unexpected status %s", resp.Status)
	}

	// The UCI mirror serves Latin-1 text; normalize before parsing.
	utf8Reader := transform.NewReader(resp.Body, charmap.ISO8859_1.NewDecoder())
	return Parse(utf8Reader)
}

// Parse reads the comma-separated table, mapping the "?" missing marker to
// NaN. Every row must carry exactly 13 features and one target column.
func Parse(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = NumFeatures + 1
	reader.TrimLeadingSpace = true

	var records []Record
	line := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("parse dataset line %d: %w", line, err)
		}

		features := make([]float64, NumFeatures)
		for i := 0; i < NumFeatures; i++ {
			field := strings.TrimSpace(row[i])
			if field == missingMarker {
				features[i] = math.NaN()
				continue
			}
			value, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("parse dataset line %d column %s: %w", line, featureNames[i], err)
			}
			features[i] = value
		}

		targetField := strings.TrimSpace(row[NumFeatures])
		target, err := strconv.ParseFloat(targetField, 64)
		if err != nil {
			return nil, fmt.Errorf("parse dataset line %d target: %w", line, err)
		}

		records = append(records, Record{
			Features: features,
			Target:   int(target),
		})
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("parse dataset: no rows")
	}
	return records, nil
}
