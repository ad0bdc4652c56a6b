package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/wricardo/mcp-training/wordgrid/game/config"
	"github.com/wricardo/mcp-training/wordgrid/game/service"
	"github.com/wricardo/mcp-training/wordgrid/game/session"
	"github.com/wricardo/mcp-training/wordgrid/internal/logger"
	"github.com/wricardo/mcp-training/wordgrid/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	sessions *session.Manager
	games    *service.Router
	presets  *config.Manager
	hub      *websocket.Hub
	router   *mux.Router
	handler  http.Handler
	logger   zerolog.Logger

	operatorToken string
}

// SessionSummary is one entry of the session listing
type SessionSummary struct {
	ID            string         `json:"id"`
	Admin         string         `json:"admin"`
	Status        session.Status `json:"status"`
	Players       int            `json:"players"`
	GridSize      int            `json:"gridSize"`
	RemainingTime int            `json:"remainingTime"`
	CreatedAt     string         `json:"createdAt"`
}

// NewServer creates a new API server
func NewServer(sessions *session.Manager, games *service.Router, presets *config.Manager, hub *websocket.Hub, log zerolog.Logger, opts ...ServerOption) *Server {
	s := &Server{
		sessions: sessions,
		games:    games,
		presets:  presets,
		hub:      hub,
		router:   mux.NewRouter(),
		logger:   log,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	s.handler = logger.Requests(log, s.router)
	return s
}

// Router exposes the route table so callers can mount extra endpoints
func (s *Server) Router() *mux.Router {
	return s.router
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Session inspection
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.Handle("/sessions/{id}/end", s.Operator(http.HandlerFunc(s.handleEndSession))).Methods("POST")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.Handle("/configs", s.Operator(http.HandlerFunc(s.handleSaveConfig))).Methods("POST")
	api.Handle("/configs/refresh", s.Operator(http.HandlerFunc(s.handleRefreshConfigs))).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	// WebSocket
	if s.hub != nil {
		s.router.HandleFunc("/ws", s.hub.ServeWS)
	}
}

// ServeStatic mounts a file server for dir as the catch-all route. Call it
// after every other route is registered.
func (s *Server) ServeStatic(dir string) {
	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(dir)))
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	connections := 0
	if s.hub != nil {
		connections = s.hub.Connected()
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"sessions":    s.sessions.Count(),
		"connections": connections,
	})
}

// Session Handlers

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	views := s.sessions.List()

	query := r.URL.Query()
	status := query.Get("status")  // "waiting", "running", "finished"
	sortBy := query.Get("sort")    // "created" (default), "players"
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "created"
	}
	if order == "" {
		order = "desc"
	}
	if sortBy != "created" && sortBy != "players" {
		respondError(w, http.StatusBadRequest, "sort must be created or players")
		return
	}

	if status != "" {
		views = lo.Filter(views, func(v session.View, _ int) bool {
			return string(v.Status) == status
		})
	}

	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i], views[j]
		if order != "asc" {
			a, b = b, a
		}
		if sortBy == "players" {
			return len(a.Players) < len(b.Players)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})

	if limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		if limit < len(views) {
			views = views[:limit]
		}
	}

	summaries := lo.Map(views, func(v session.View, _ int) SessionSummary {
		return SessionSummary{
			ID:            v.ID,
			Admin:         v.Admin,
			Status:        v.Status,
			Players:       len(v.Players),
			GridSize:      v.GridSize,
			RemainingTime: v.RemainingTime,
			CreatedAt:     v.CreatedAt.UTC().Format(time.RFC3339),
		}
	})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": summaries,
		"count":    len(summaries),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	view, err := s.sessions.Get(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}

	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	view, err := s.games.ForceEnd(id)
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "session not found")
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.logger.Info().Str("session", view.ID).Msg("session ended by operator")
	respondJSON(w, http.StatusOK, view)
}

// Config Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	presets, err := s.presets.ListPresets()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"configs": presets,
		"default": s.presets.Default(),
	})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	preset, err := s.presets.LoadPreset(name)
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		respondError(w, http.StatusNotFound, "config not found")
		return
	case err != nil:
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, preset)
}

// SaveConfigRequest is a preset with the config id it is stored under
type SaveConfigRequest struct {
	ConfigID string `json:"config_id"`
	config.Preset
}

func (s *Server) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	var req SaveConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.ConfigID == "" {
		respondError(w, http.StatusBadRequest, "config_id is required")
		return
	}

	err := s.presets.SavePreset(req.ConfigID, req.Preset)
	switch {
	case errors.Is(err, config.ErrInvalidConfig):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to save config: %v", err))
		return
	}

	s.logger.Info().Str("config", req.ConfigID).Msg("preset saved")
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Configuration saved successfully",
		"config_id": req.ConfigID,
	})
}

func (s *Server) handleRefreshConfigs(w http.ResponseWriter, r *http.Request) {
	if err := s.presets.RefreshCache(); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"default": s.presets.Default(),
	})
}
