package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"cardioml/db"
	"cardioml/ml"
	"cardioml/monitoring"
)

// WelcomeMessage is the fixed root payload; external orchestration treats it
// as a liveness signal.
const WelcomeMessage = "Heart Disease Prediction API"

const defaultCacheSize = 1024

// Predictor answers a feature vector with the argmax class and the
// [P(class 0), P(class 1)] pair. Implementations must be safe for
// concurrent use.
type Predictor interface {
	Predict(features []float64) (int, [2]float64, error)
	NumFeatures() int
}

// PredictRequest is the body of POST /predict. Elements decode through
// pointers: encoding/json coerces a JSON null to zero in a []float64, and a
// null element must be rejected as non-numeric, not predicted on.
type PredictRequest struct {
	Features []*float64 `json:"features"`
}

// PredictResponse is the success body of POST /predict. The probability
// array order [P(class 0), P(class 1)] is a fixed external contract.
type PredictResponse struct {
	Prediction  string     `json:"prediction"`
	Probability [2]float64 `json:"probability"`
}

// API bundles the handlers and their injected dependencies. The model is an
// immutable value handed in at construction; nothing here mutates it.
type API struct {
	model  Predictor
	store  *db.Store
	stats  *monitoring.Collector
	hub    *monitoring.Hub
	cache  *lru.Cache[string, PredictResponse]
	logger *zap.Logger
}

// NewAPI wires the handler set. store and hub may be nil, which disables the
// prediction log and the monitor stream respectively.
func NewAPI(model Predictor, store *db.Store, stats *monitoring.Collector, hub *monitoring.Hub, logger *zap.Logger, cacheSize int) (*API, error) {
	if model == nil {
		return nil, errors.New("model is required")
	}
	if stats == nil {
		stats = monitoring.NewCollector()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.New[string, PredictResponse](cacheSize)
	if err != nil {
		return nil, err
	}
	return &API{
		model:  model,
		store:  store,
		stats:  stats,
		hub:    hub,
		cache:  cache,
		logger: logger,
	}, nil
}

// Register installs all routes on the mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", a.handleRoot)
	mux.HandleFunc("GET /api/health", a.handleHealth)
	mux.HandleFunc("POST /predict", a.handlePredict)
	mux.HandleFunc("GET /api/stats", a.handleStats)
	mux.HandleFunc("GET /api/predictions/recent", a.handleRecentPredictions)
	if a.hub != nil {
		mux.HandleFunc("GET /api/ws/monitor", a.hub.ServeWS)
	}
}

func (a *API) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": WelcomeMessage})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"num_features": a.model.NumFeatures(),
	})
}

func (a *API) handlePredict(w http.ResponseWriter, r *http.Request) {
	a.stats.RecordRequest()

	var req PredictRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		a.rejectValidation(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	// A second document in the body is as malformed as a broken first one.
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		a.rejectValidation(w, "invalid request body: trailing data")
		return
	}

	want := a.model.NumFeatures()
	if len(req.Features) != want {
		a.rejectValidation(w, fmt.Sprintf("features must contain exactly %d numeric values, got %d", want, len(req.Features)))
		return
	}
	features := make([]float64, len(req.Features))
	for i, value := range req.Features {
		if value == nil {
			a.rejectValidation(w, fmt.Sprintf("features[%d] must be a number", i))
			return
		}
		features[i] = *value
	}

	key := cacheKey(features)
	if resp, ok := a.cache.Get(key); ok {
		a.stats.RecordCacheHit()
		respondJSON(w, http.StatusOK, resp)
		return
	}

	start := time.Now()
	label, proba, err := a.model.Predict(features)
	if err != nil {
		// Only reachable with a malformed artifact, which startup rejects.
		a.logger.Error("prediction failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "prediction failed")
		return
	}
	latency := time.Since(start)

	resp := PredictResponse{
		Prediction:  ml.LabelName(label),
		Probability: proba,
	}
	a.cache.Add(key, resp)
	a.stats.RecordPrediction(label, latency)

	if a.store != nil {
		rec := db.PredictionRecord{
			Features:   features,
			Label:      label,
			Prediction: resp.Prediction,
			P0:         proba[0],
			P1:         proba[1],
			LatencyMS:  float64(latency.Microseconds()) / 1000.0,
			CreatedAt:  time.Now().UTC(),
		}
		if err := a.store.SavePrediction(r.Context(), rec); err != nil {
			a.logger.Warn("failed to log prediction", zap.Error(err))
		}
	}
	if a.hub != nil {
		a.hub.BroadcastPrediction(map[string]interface{}{
			"prediction":  resp.Prediction,
			"probability": proba,
			"latency_ms":  float64(latency.Microseconds()) / 1000.0,
		})
	}

	respondJSON(w, http.StatusOK, resp)
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, a.stats.Snapshot())
}

func (a *API) handleRecentPredictions(w http.ResponseWriter, r *http.Request) {
	if a.store == nil {
		respondError(w, http.StatusServiceUnavailable, "prediction log disabled")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	records, err := a.store.RecentPredictions(r.Context(), limit)
	if err != nil {
		a.logger.Error("failed to read prediction log", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to read prediction log")
		return
	}
	if records == nil {
		records = []db.PredictionRecord{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"data": records})
}

func (a *API) rejectValidation(w http.ResponseWriter, message string) {
	a.stats.RecordValidationError()
	respondError(w, http.StatusUnprocessableEntity, message)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func cacheKey(features []float64) string {
	var b strings.Builder
	for i, value := range features {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(value, 'g', -1, 64))
	}
	return b.String()
}
