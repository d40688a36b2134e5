// Package httpapi serves the dashboard REST API: configuration sync,
// backtest runs, and stored trade history.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"astock/internal/backtest"
	"astock/internal/store"
	"astock/pkg/astock"
)

// Server wires the configuration store, the backtest runner, and the result
// store behind the REST API.
type Server struct {
	configs *store.ConfigFile
	runner  *backtest.Runner
	results store.ResultStore
	log     *slog.Logger

	// Serializes backtest runs; concurrent POSTs queue rather than racing
	// over the quote API and the result store.
	runMu sync.Mutex
}

// NewServer creates a Server.
func NewServer(configs *store.ConfigFile, runner *backtest.Runner, results store.ResultStore, log *slog.Logger) *Server {
	return &Server{
		configs: configs,
		runner:  runner,
		results: results,
		log:     log,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.HandleFunc("POST /api/config", s.handleSaveConfig)
	mux.HandleFunc("POST /api/backtest", s.handleBacktest)
	mux.HandleFunc("GET /api/trades", s.handleTrades)
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.configs.Load()
	writeJSON(w, astock.ConfigResponse{Success: true, Config: &cfg})
}

func (s *Server) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	var fc backtest.FileConfig
	if err := json.NewDecoder(r.Body).Decode(&fc); err != nil {
		writeJSON(w, astock.SaveResponse{Success: false, Error: err.Error()})
		return
	}

	cfg := fc.Resolve()
	if err := backtest.Validate(cfg); err != nil {
		writeJSON(w, astock.SaveResponse{Success: false, Error: err.Error()})
		return
	}

	if err := s.configs.Save(cfg); err != nil {
		s.log.Error("saving config", "error", err)
		writeJSON(w, astock.SaveResponse{Success: false, Error: "保存配置失败"})
		return
	}
	writeJSON(w, astock.SaveResponse{Success: true, Message: "配置保存成功"})
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	cfg := s.configs.Load()
	groups, combined, err := s.runner.Run(r.Context(), cfg)
	if err != nil {
		s.log.Error("backtest failed", "error", err)
		writeJSON(w, astock.ResultsResponse{Success: false, Error: err.Error()})
		return
	}

	if err := s.results.SaveRun(r.Context(), groups, &combined); err != nil {
		// The run itself succeeded; history just will not reflect it.
		s.log.Warn("saving backtest run failed", "error", err)
	}

	if groups == nil {
		groups = []astock.ResultGroup{}
	}
	writeJSON(w, astock.ResultsResponse{
		Success:            true,
		Results:            groups,
		CombinedStatistics: &combined,
	})
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	groups, combined, err := s.results.LatestRun(r.Context())
	if err != nil {
		s.log.Error("loading trade history", "error", err)
		writeJSON(w, astock.ResultsResponse{Success: false, Error: err.Error()})
		return
	}
	if groups == nil {
		groups = []astock.ResultGroup{}
	}
	if combined == nil {
		combined = &astock.Stats{}
	}
	writeJSON(w, astock.ResultsResponse{
		Success:            true,
		Results:            groups,
		CombinedStatistics: combined,
	})
}
