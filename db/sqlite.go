package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store keeps the prediction log and the training-run history. It is an
// observability sidecar: the serving path works without it.
type Store struct {
	db *sql.DB
}

// PredictionRecord is one logged predict call.
type PredictionRecord struct {
	ID         int64     `json:"id"`
	Features   []float64 `json:"features"`
	Label      int       `json:"label"`
	Prediction string    `json:"prediction"`
	P0         float64   `json:"p0"`
	P1         float64   `json:"p1"`
	LatencyMS  float64   `json:"latency_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// TrainingRun is one completed trainer invocation.
type TrainingRun struct {
	ID         int64     `json:"id"`
	ModelPath  string    `json:"model_path"`
	DataURL    string    `json:"data_url"`
	Rows       int       `json:"rows"`
	Accuracy   float64   `json:"accuracy"`
	Precision  float64   `json:"precision"`
	Recall     float64   `json:"recall"`
	Iterations int       `json:"iterations"`
	Seed       int64     `json:"seed"`
	TrainedAt  time.Time `json:"trained_at"`
}

// Open initializes the SQLite database, creating the schema if needed.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	database, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	query := `
    CREATE TABLE IF NOT EXISTS predictions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        features TEXT NOT NULL,
        label INTEGER NOT NULL,
        prediction TEXT NOT NULL,
        p0 REAL NOT NULL,
        p1 REAL NOT NULL,
        latency_ms REAL DEFAULT 0,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    CREATE TABLE IF NOT EXISTS training_runs (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        model_path TEXT NOT NULL,
        data_url TEXT,
        data_points INTEGER,
        accuracy REAL,
        precision REAL,
        recall REAL,
        iterations INTEGER,
        seed INTEGER,
        trained_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at);
    `
	if _, err := database.Exec(query); err != nil {
		database.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: database}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SavePrediction appends one predict call to the log.
func (s *Store) SavePrediction(ctx context.Context, rec PredictionRecord) error {
	features, err := json.Marshal(rec.Features)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO predictions (features, label, prediction, p0, p1, latency_ms, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(features), rec.Label, rec.Prediction, rec.P0, rec.P1, rec.LatencyMS, rec.CreatedAt)
	return err
}

// RecentPredictions returns the newest logged calls, newest first.
func (s *Store) RecentPredictions(ctx context.Context, limit int) ([]PredictionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, features, label, prediction, p0, p1, latency_ms, created_at
         FROM predictions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []PredictionRecord
	for rows.Next() {
		var rec PredictionRecord
		var features string
		if err := rows.Scan(&rec.ID, &features, &rec.Label, &rec.Prediction, &rec.P0, &rec.P1, &rec.LatencyMS, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(features), &rec.Features); err != nil {
			return nil, fmt.Errorf("decode features of prediction %d: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// LabelCounts returns how many logged predictions fell in each class.
func (s *Store) LabelCounts(ctx context.Context) (map[int]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT label, COUNT(*) FROM predictions GROUP BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int64)
	for rows.Next() {
		var label int
		var count int64
		if err := rows.Scan(&label, &count); err != nil {
			return nil, err
		}
		counts[label] = count
	}
	return counts, rows.Err()
}

// SaveTrainingRun records one completed trainer invocation.
func (s *Store) SaveTrainingRun(ctx context.Context, run TrainingRun) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO training_runs (model_path, data_url, data_points, accuracy, precision, recall, iterations, seed, trained_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ModelPath, run.DataURL, run.Rows, run.Accuracy, run.Precision, run.Recall, run.Iterations, run.Seed, run.TrainedAt)
	return err
}

// LatestTrainingRun returns the most recent trainer record, or nil.
func (s *Store) LatestTrainingRun(ctx context.Context) (*TrainingRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, model_path, data_url, data_points, accuracy, precision, recall, iterations, seed, trained_at
         FROM training_runs ORDER BY id DESC LIMIT 1`)
	var run TrainingRun
	err := row.Scan(&run.ID, &run.ModelPath, &run.DataURL, &run.Rows, &run.Accuracy, &run.Precision, &run.Recall, &run.Iterations, &run.Seed, &run.TrainedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}
