package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/fbettag/unifi-exporter/internal/metrics"
)

const usageBanner = "UniFi Network Exporter\n\nEndpoints:\n  /metrics - Prometheus metrics\n  /health - Health check\n"

// App holds the read-only serving side of the exporter
type App struct {
	Store  *metrics.Store
	Logger *logrus.Logger
}

// Routes builds the router for the three read-only endpoints
func (app *App) Routes() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/", app.IndexHandler).Methods("GET")
	router.HandleFunc("/health", app.HealthHandler).Methods("GET")
	router.HandleFunc("/metrics", app.MetricsHandler).Methods("GET")
	return router
}

// IndexHandler serves a plaintext usage banner
func (app *App) IndexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(usageBanner)); err != nil {
		app.Logger.Errorf("Failed to write response: %v", err)
	}
}

// HealthHandler is the liveness probe
func (app *App) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte("OK")); err != nil {
		app.Logger.Errorf("Failed to write response: %v", err)
	}
}

// MetricsHandler renders the current metrics snapshot in the Prometheus
// text exposition format
func (app *App) MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	if _, err := w.Write([]byte(app.Store.Snapshot())); err != nil {
		app.Logger.Errorf("Failed to write metrics response: %v", err)
	}
}
