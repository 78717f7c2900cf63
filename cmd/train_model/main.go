package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"cardioml/dataset"
	"cardioml/db"
	"cardioml/logging"
	"cardioml/ml"
)

func main() {
	dataURL := flag.String("data_url", dataset.DefaultURL, "dataset source URL")
	modelPath := flag.String("model_path", "./models/heart.model", "model artifact output path")
	testRatio := flag.Float64("test_ratio", 0.2, "held-out fraction")
	seed := flag.Int64("seed", 42, "split shuffle seed")
	learningRate := flag.Float64("learning_rate", 0.1, "gradient descent step size")
	maxIter := flag.Int("max_iter", 20000, "iteration cap for convergence")
	dbPath := flag.String("db_path", "", "optional database for the training log")
	flag.Parse()

	logger, err := logging.New(logging.Config{Level: "info"})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	records, err := dataset.Fetch(*dataURL)
	if err != nil {
		logger.Fatal("failed to fetch dataset", zap.String("url", *dataURL), zap.Error(err))
	}
	logger.Info("dataset loaded", zap.Int("rows", len(records)))

	features, labels := dataset.Matrix(records)
	trainX, trainY, testX, testY := ml.TrainTestSplit(features, labels, *testRatio, *seed)

	pipeline := ml.NewPipeline(dataset.FeatureNames())
	pipeline.Classifier.LearningRate = *learningRate
	pipeline.Classifier.MaxIter = *maxIter

	if err := pipeline.Fit(trainX, trainY); err != nil {
		logger.Fatal("failed to train model", zap.Error(err))
	}

	accuracy, precision, recall := ml.Evaluate(pipeline, testX, testY)
	logger.Info("evaluation on held-out rows",
		zap.Int("train_rows", len(trainX)),
		zap.Int("test_rows", len(testX)),
		zap.Float64("accuracy", accuracy),
		zap.Float64("precision", precision),
		zap.Float64("recall", recall),
		zap.Int("iterations", pipeline.Classifier.Iterations))

	if err := os.MkdirAll(filepath.Dir(*modelPath), 0o755); err != nil {
		logger.Fatal("failed to create model dir", zap.Error(err))
	}
	if err := pipeline.Save(*modelPath); err != nil {
		logger.Fatal("failed to save model", zap.Error(err))
	}

	if *dbPath != "" {
		store, err := db.Open(*dbPath)
		if err != nil {
			logger.Fatal("failed to open database", zap.Error(err))
		}
		defer store.Close()

		run := db.TrainingRun{
			ModelPath:  *modelPath,
			DataURL:    *dataURL,
			Rows:       len(records),
			Accuracy:   accuracy,
			Precision:  precision,
			Recall:     recall,
			Iterations: pipeline.Classifier.Iterations,
			Seed:       *seed,
			TrainedAt:  time.Now().UTC(),
		}
		if err := store.SaveTrainingRun(context.Background(), run); err != nil {
			logger.Fatal("failed to record training run", zap.Error(err))
		}
	}

	fmt.Printf("model saved to %s\n", *modelPath)
}
