package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"cardioml/db"
	qhttp "cardioml/http"
	"cardioml/logging"
	"cardioml/ml"
	"cardioml/monitoring"
)

type Config struct {
	Http struct {
		Host           string   `yaml:"host"`
		Port           int      `yaml:"port"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"http"`
	Model struct {
		Path string `yaml:"path"`
	} `yaml:"model"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Cache struct {
		Size int `yaml:"size"`
	} `yaml:"cache"`
	Log logging.Config `yaml:"log"`
}

func main() {
	// 1. Load config
	config, err := loadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(config.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 2. Load the model artifact; without it the service must not serve.
	pipeline, err := ml.LoadPipeline(config.Model.Path)
	if err != nil {
		logger.Fatal("failed to load model artifact",
			zap.String("path", config.Model.Path), zap.Error(err))
	}
	logger.Info("model artifact loaded",
		zap.String("path", config.Model.Path),
		zap.Int("num_features", pipeline.NumFeatures()),
		zap.Time("trained_at", pipeline.TrainedAt))

	// 3. Initialize the prediction log
	store, err := db.Open(config.Database.Path)
	if err != nil {
		logger.Fatal("failed to initialize database",
			zap.String("path", config.Database.Path), zap.Error(err))
	}
	defer store.Close()

	// 4. Monitoring
	stats := monitoring.NewCollector()
	hub := monitoring.NewHub(logger)
	hub.Start()
	defer hub.Stop()

	// 5. Start HTTP server
	api, err := qhttp.NewAPI(pipeline, store, stats, hub, logger, config.Cache.Size)
	if err != nil {
		logger.Fatal("failed to build API", zap.Error(err))
	}

	serverConfig := qhttp.DefaultServerConfig()
	if config.Http.Host != "" {
		serverConfig.Host = config.Http.Host
	}
	if config.Http.Port != 0 {
		serverConfig.Port = config.Http.Port
	}
	if config.Http.TimeoutSeconds > 0 {
		serverConfig.Timeout = time.Duration(config.Http.TimeoutSeconds) * time.Second
	}
	if len(config.Http.AllowedOrigins) > 0 {
		serverConfig.AllowedOrigins = config.Http.AllowedOrigins
	}

	server := qhttp.NewServer(serverConfig, api, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 6. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	if err := server.Stop(); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}
	logger.Info("exiting")
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
