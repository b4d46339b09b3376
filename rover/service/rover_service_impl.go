package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/mars-rover/observability/metrics"
	"github.com/wricardo/mars-rover/pkg/log"
	"github.com/wricardo/mars-rover/rover/engine"
)

// roverServiceImpl implements the RoverService interface
type roverServiceImpl struct {
	store RoverStore
	mu    sync.Mutex
}

// NewRoverService creates a new rover service backed by store
func NewRoverService(store RoverStore) RoverService {
	return &roverServiceImpl{store: store}
}

// GetRover retrieves a rover snapshot
func (s *roverServiceImpl) GetRover(ctx context.Context, id int) (*engine.Rover, error) {
	rover, err := s.store.Find(ctx, id)
	metrics.ObserveOperation("get", resultFor(err))
	if err != nil {
		return nil, fmt.Errorf("get rover %d: %w", id, err)
	}
	return rover, nil
}

// ListRovers returns every rover ordered by id
func (s *roverServiceImpl) ListRovers(ctx context.Context) ([]*engine.Rover, error) {
	rovers, err := s.store.List(ctx)
	metrics.ObserveOperation("list", resultFor(err))
	if err != nil {
		return nil, fmt.Errorf("list rovers: %w", err)
	}
	return rovers, nil
}

// CreateRover stores a new rover at the origin facing North
func (s *roverServiceImpl) CreateRover(ctx context.Context, id int, name string) (*engine.Rover, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		metrics.ObserveOperation("create", metrics.ResultInvalidName)
		return nil, ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rover := engine.NewRover(id, name)
	if err := s.store.Insert(ctx, rover); err != nil {
		metrics.ObserveOperation("create", resultFor(err))
		return nil, fmt.Errorf("create rover %d: %w", id, err)
	}
	metrics.ObserveOperation("create", metrics.ResultSuccess)

	log.FromCtx(ctx).Info().
		Int("rover_id", id).
		Str("name", name).
		Msg("rover created")

	return rover.Clone(), nil
}

// RenameRover changes a rover's name
func (s *roverServiceImpl) RenameRover(ctx context.Context, id int, name string) (*engine.Rover, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		metrics.ObserveOperation("rename", metrics.ResultInvalidName)
		return nil, ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rover, err := s.store.Find(ctx, id)
	if err != nil {
		metrics.ObserveOperation("rename", resultFor(err))
		return nil, fmt.Errorf("rename rover %d: %w", id, err)
	}

	previous := rover.Name
	rover.Name = name
	if err := s.store.Update(ctx, rover); err != nil {
		metrics.ObserveOperation("rename", resultFor(err))
		return nil, fmt.Errorf("rename rover %d: %w", id, err)
	}
	metrics.ObserveOperation("rename", metrics.ResultSuccess)

	log.FromCtx(ctx).Info().
		Int("rover_id", id).
		Str("from", previous).
		Str("to", name).
		Msg("rover renamed")

	return rover.Clone(), nil
}

// MoveRover validates the command string, loads the rover, runs the
// interpreter and persists the result. Validation happens before the
// lookup so a malformed string is rejected even for unknown ids.
func (s *roverServiceImpl) MoveRover(ctx context.Context, id int, commands string) (*MoveResult, error) {
	started := time.Now()
	defer func() { metrics.ObserveMove(time.Since(started)) }()

	parsed, err := engine.ParseCommands(commands)
	if err != nil {
		metrics.ObserveOperation("move", metrics.ResultInvalidCommand)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rover, err := s.store.Find(ctx, id)
	if err != nil {
		metrics.ObserveOperation("move", resultFor(err))
		return nil, fmt.Errorf("move rover %d: %w", id, err)
	}

	from := rover.State()
	to := engine.Run(from, parsed)
	rover.SetState(to)

	if err := s.store.Update(ctx, rover); err != nil {
		metrics.ObserveOperation("move", resultFor(err))
		return nil, fmt.Errorf("move rover %d: %w", id, err)
	}
	metrics.ObserveOperation("move", metrics.ResultSuccess)
	for _, c := range parsed {
		metrics.ObserveCommand(c.String())
	}

	log.FromCtx(ctx).Info().
		Int("rover_id", id).
		Str("commands", commands).
		Stringer("from", from).
		Stringer("to", to).
		Msg("rover moved")

	return &MoveResult{
		Rover:    rover.Clone(),
		From:     from,
		To:       to,
		Commands: strings.ToUpper(commands),
		Executed: len(parsed),
	}, nil
}

// resultFor maps an error onto a metrics result label
func resultFor(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, ErrRoverNotFound):
		return metrics.ResultNotFound
	case errors.Is(err, ErrRoverExists):
		return metrics.ResultConflict
	case errors.Is(err, ErrInvalidCommand):
		return metrics.ResultInvalidCommand
	case errors.Is(err, ErrInvalidName):
		return metrics.ResultInvalidName
	default:
		return metrics.ResultError
	}
}
