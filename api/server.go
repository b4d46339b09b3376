package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/wricardo/mars-rover/observability/metrics"
	"github.com/wricardo/mars-rover/rover/engine"
	"github.com/wricardo/mars-rover/rover/service"
	"github.com/wricardo/mars-rover/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.RoverService
	hub     *websocket.Hub
	router  *mux.Router
	logger  zerolog.Logger
}

// NewServer creates a new API server. hub may be nil.
func NewServer(roverService service.RoverService, hub *websocket.Hub, logger zerolog.Logger) *Server {
	s := &Server{
		service: roverService,
		hub:     hub,
		router:  mux.NewRouter(),
		logger:  logger,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(requestIDMiddleware, s.accessLogMiddleware)

	api := s.router.PathPrefix("/api").Subrouter()

	// Rovers
	api.HandleFunc("/rovers", s.handleListRovers).Methods("GET")
	api.HandleFunc("/rovers", s.handleCreateRover).Methods("POST")
	api.HandleFunc("/rovers/{id}", s.handleGetRover).Methods("GET")
	api.HandleFunc("/rovers/{id}", s.handleRenameRover).Methods("PATCH")
	api.HandleFunc("/rovers/{id}/move", s.handleMoveRover).Methods("POST")

	// Query-parameter routes kept for existing clients
	legacy := api.PathPrefix("/MarsRover").Subrouter()
	legacy.HandleFunc("/Retrieve", s.handleLegacyRetrieve).Methods("GET")
	legacy.HandleFunc("/Create", s.handleLegacyCreate).Methods("POST")
	legacy.HandleFunc("/Rename", s.handleLegacyRename).Methods("PATCH")
	legacy.HandleFunc("/Move", s.handleLegacyMove).Methods("PATCH")

	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", metrics.Handler()).Methods("GET")
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// Handle mounts an extra handler, e.g. the MCP endpoint
func (s *Server) Handle(path string, handler http.Handler) {
	s.router.Handle(path, handler)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
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

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrRoverNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrRoverExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidCommand), errors.Is(err, service.ErrInvalidName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("rover operation failed")
	}
	respondError(w, status, err.Error())
}

func roverIDFromPath(r *http.Request) (int, error) {
	return strconv.Atoi(mux.Vars(r)["id"])
}

// Rover Handlers

func (s *Server) handleListRovers(w http.ResponseWriter, r *http.Request) {
	rovers, err := s.service.ListRovers(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	if rovers == nil {
		rovers = []*engine.Rover{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(rovers),
		"rovers": rovers,
	})
}

func (s *Server) handleCreateRover(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID   *int   `json:"id"`
		Name string `json:"name"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ID == nil {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	rover, err := s.service.CreateRover(r.Context(), *req.ID, req.Name)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	s.hub.BroadcastRover(websocket.EventCreated, rover)
	respondJSON(w, http.StatusCreated, rover)
}

func (s *Server) handleGetRover(w http.ResponseWriter, r *http.Request) {
	id, err := roverIDFromPath(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid rover id")
		return
	}

	rover, err := s.service.GetRover(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, rover)
}

func (s *Server) handleRenameRover(w http.ResponseWriter, r *http.Request) {
	id, err := roverIDFromPath(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid rover id")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rover, err := s.service.RenameRover(r.Context(), id, req.Name)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	s.hub.BroadcastRover(websocket.EventRenamed, rover)
	respondJSON(w, http.StatusOK, rover)
}

func (s *Server) handleMoveRover(w http.ResponseWriter, r *http.Request) {
	id, err := roverIDFromPath(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid rover id")
		return
	}

	var req struct {
		Commands string `json:"commands"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.MoveRover(r.Context(), id, req.Commands)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	s.hub.BroadcastRover(websocket.EventMoved, result.Rover)
	respondJSON(w, http.StatusOK, result)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "live updates disabled", http.StatusServiceUnavailable)
		return
	}

	roverID, err := strconv.Atoi(r.URL.Query().Get("rover"))
	if err != nil {
		http.Error(w, "rover parameter required", http.StatusBadRequest)
		return
	}

	if _, err := s.service.GetRover(r.Context(), roverID); err != nil {
		http.Error(w, "Invalid rover", statusFor(err))
		return
	}

	s.hub.ServeWS(w, r, roverID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
