package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/wricardo/mars-rover/rover/engine"
	"github.com/wricardo/mars-rover/rover/service"
	"github.com/wricardo/mars-rover/transport/websocket"
)

// Legacy error messages, kept verbatim for existing clients
const (
	msgIDExists           = "Id already exists"
	msgInvalidInstruction = "Invalid movement instruction"
)

// legacyRover is the flat rover shape returned by the /api/MarsRover routes
type legacyRover struct {
	RoverID          int    `json:"roverId"`
	RoverName        string `json:"roverName"`
	CurrentX         int    `json:"currentX"`
	CurrentY         int    `json:"currentY"`
	CurrentDirection string `json:"currentDirection"`
}

func toLegacyRover(r *engine.Rover) legacyRover {
	return legacyRover{
		RoverID:          r.ID,
		RoverName:        r.Name,
		CurrentX:         r.Position.X,
		CurrentY:         r.Position.Y,
		CurrentDirection: r.Heading.String(),
	}
}

// requiredInt reads a required integer query parameter
func requiredInt(r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// requiredString reads a required, non-empty query parameter
func requiredString(r *http.Request, name string) (string, bool) {
	v := r.URL.Query().Get(name)
	return v, v != ""
}

func (s *Server) handleLegacyRetrieve(w http.ResponseWriter, r *http.Request) {
	id, ok := requiredInt(r, "RoverId")
	if !ok {
		respondError(w, http.StatusBadRequest, "RoverId is required")
		return
	}

	rover, err := s.service.GetRover(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toLegacyRover(rover))
}

func (s *Server) handleLegacyCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := requiredInt(r, "RoverId")
	if !ok {
		respondError(w, http.StatusBadRequest, "RoverId is required")
		return
	}
	name, ok := requiredString(r, "RoverName")
	if !ok {
		respondError(w, http.StatusBadRequest, "RoverName is required")
		return
	}

	rover, err := s.service.CreateRover(r.Context(), id, name)
	if err != nil {
		if errors.Is(err, service.ErrRoverExists) {
			respondError(w, http.StatusBadRequest, msgIDExists)
			return
		}
		s.respondServiceError(w, r, err)
		return
	}

	s.hub.BroadcastRover(websocket.EventCreated, rover)
	respondJSON(w, http.StatusOK, toLegacyRover(rover))
}

func (s *Server) handleLegacyRename(w http.ResponseWriter, r *http.Request) {
	id, ok := requiredInt(r, "RoverId")
	if !ok {
		respondError(w, http.StatusBadRequest, "RoverId is required")
		return
	}
	name, ok := requiredString(r, "RoverName")
	if !ok {
		respondError(w, http.StatusBadRequest, "RoverName is required")
		return
	}

	rover, err := s.service.RenameRover(r.Context(), id, name)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	s.hub.BroadcastRover(websocket.EventRenamed, rover)
	respondJSON(w, http.StatusOK, toLegacyRover(rover))
}

func (s *Server) handleLegacyMove(w http.ResponseWriter, r *http.Request) {
	id, ok := requiredInt(r, "RoverId")
	if !ok {
		respondError(w, http.StatusBadRequest, "RoverId is required")
		return
	}
	instruction, ok := requiredString(r, "MovementInstruction")
	if !ok {
		respondError(w, http.StatusBadRequest, "MovementInstruction is required")
		return
	}

	result, err := s.service.MoveRover(r.Context(), id, instruction)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCommand) {
			respondError(w, http.StatusBadRequest, msgInvalidInstruction)
			return
		}
		s.respondServiceError(w, r, err)
		return
	}

	s.hub.BroadcastRover(websocket.EventMoved, result.Rover)
	respondJSON(w, http.StatusOK, toLegacyRover(result.Rover))
}
