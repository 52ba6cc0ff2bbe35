// Package httpapi exposes the control surface: target registration, manual
// checks, history, reports and the monitoring cadence.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/models"
	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/pool"
	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/registry"
	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/scheduler"
	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/store"
)

// Controller is the engine facade the API drives. The orchestrator
// satisfies it; tests substitute stubs.
type Controller interface {
	AddTarget(ctx context.Context, target registry.Target) error
	RemoveTarget(id string)
	ListTargets() []registry.Target
	CheckAll(ctx context.Context) *models.BatchReport
	CheckOne(ctx context.Context, targetID string) (models.ProbeResult, error)
	History(ctx context.Context, targetID string, hours int) ([]models.ProbeResult, error)
	Report(ctx context.Context, hours int) (*store.Report, error)
	StartMonitoring(interval time.Duration)
	StopMonitoring()
	MonitoringRunning() bool
}

type Server struct {
	controller Controller
	httpServer *http.Server // Store server instance for graceful shutdown
	startTime  time.Time
}

func NewServer(controller Controller) *Server {
	return &Server{
		controller: controller,
		startTime:  time.Now(),
	}
}

func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.enableCORS(s.Handler()),
	}

	log.Printf("Control surface listening on: %s", addr)
	return s.httpServer.ListenAndServe()
}

// Handler builds the route table. Exposed separately so tests can drive the
// API through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/targets", s.handleTargets)
	mux.HandleFunc("/api/targets/", s.handleTargetByID)
	mux.HandleFunc("/api/checks", s.handleCheckAll)
	mux.HandleFunc("/api/health/current", s.handleCurrent)
	mux.HandleFunc("/api/health/history", s.handleHistory)
	mux.HandleFunc("/api/report", s.handleReport)
	mux.HandleFunc("/api/monitoring/start", s.handleMonitoringStart)
	mux.HandleFunc("/api/monitoring/stop", s.handleMonitoringStop)
	mux.HandleFunc("/api/monitoring/status", s.handleMonitoringStatus)
	mux.HandleFunc("/health", s.handleLiveness)
	return mux
}

// Stop gracefully shuts down the HTTP server with a timeout.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	log.Printf("Stopping HTTP server...")

	// 5 second timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}

	log.Printf("HTTP server stopped successfully")
	return nil
}

func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		targets := s.controller.ListTargets()
		redacted := make([]registry.Target, len(targets))
		for i, t := range targets {
			redacted[i] = t.Redacted()
		}
		writeJSON(w, http.StatusOK, redacted)

	case http.MethodPost:
		var target registry.Target
		if err := json.NewDecoder(r.Body).Decode(&target); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		log.Printf("Register target request: %s (%s)", target.ID, target.Driver)

		if err := s.controller.AddTarget(r.Context(), target); err != nil {
			if errors.Is(err, pool.ErrInvalidConfig) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			// Pool establishment failed: target unreachable or rejected us.
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}

		writeJSON(w, http.StatusCreated, target.Redacted())

	default:
		http.Error(w, "Method not supported", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleTargetByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not supported", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/targets/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	log.Printf("Remove target request: %s", id)
	s.controller.RemoveTarget(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCheckAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not supported", http.StatusMethodNotAllowed)
		return
	}

	report := s.controller.CheckAll(r.Context())
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not supported", http.StatusMethodNotAllowed)
		return
	}

	targetID := r.URL.Query().Get("target")
	if targetID == "" {
		http.Error(w, "target query parameter is required", http.StatusBadRequest)
		return
	}

	result, err := s.controller.CheckOne(r.Context(), targetID)
	if err != nil {
		if errors.Is(err, scheduler.ErrUnknownTarget) || errors.Is(err, pool.ErrTargetNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// A failed check is a valid result (status critical), not an API error.
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not supported", http.StatusMethodNotAllowed)
		return
	}

	targetID := r.URL.Query().Get("target")
	hours := queryInt(r, "hours", 24)

	history, err := s.controller.History(r.Context(), targetID, hours)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if history == nil {
		history = []models.ProbeResult{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not supported", http.StatusMethodNotAllowed)
		return
	}

	report, err := s.controller.Report(r.Context(), queryInt(r, "hours", 24))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleMonitoringStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not supported", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Interval string `json:"interval"`
	}
	// Body is optional; an empty interval uses the configured default.
	_ = json.NewDecoder(r.Body).Decode(&body)

	var interval time.Duration
	if body.Interval != "" {
		parsed, err := time.ParseDuration(body.Interval)
		if err != nil {
			http.Error(w, "Invalid interval", http.StatusBadRequest)
			return
		}
		interval = parsed
	}

	s.controller.StartMonitoring(interval)
	writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

func (s *Server) handleMonitoringStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not supported", http.StatusMethodNotAllowed)
		return
	}

	s.controller.StopMonitoring()
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

func (s *Server) handleMonitoringStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not supported", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"running": s.controller.MonitoringRunning()})
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"service":        "healthmonkey",
		"uptime_seconds": int64(time.Since(s.startTime).Seconds()),
		"timestamp":      time.Now().Unix(),
	})
}

func (s *Server) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}
