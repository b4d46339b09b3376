package service

import (
	"context"
	"errors"

	"github.com/wricardo/mars-rover/rover/engine"
)

var (
	ErrRoverNotFound = errors.New("rover not found")
	ErrRoverExists   = errors.New("rover already exists")
	ErrInvalidName   = errors.New("rover name is required")

	// ErrInvalidCommand is the engine's sentinel, re-exported for callers
	// that only depend on the service layer.
	ErrInvalidCommand = engine.ErrInvalidCommand
)

// RoverService defines all rover operations
type RoverService interface {
	GetRover(ctx context.Context, id int) (*engine.Rover, error)
	ListRovers(ctx context.Context) ([]*engine.Rover, error)
	CreateRover(ctx context.Context, id int, name string) (*engine.Rover, error)
	RenameRover(ctx context.Context, id int, name string) (*engine.Rover, error)
	MoveRover(ctx context.Context, id int, commands string) (*MoveResult, error)
}

// RoverStore is the key-value collaborator the service reads and writes.
// Implementations return copies so callers never alias stored state.
type RoverStore interface {
	// Find returns the rover with id or ErrRoverNotFound
	Find(ctx context.Context, id int) (*engine.Rover, error)

	// Insert adds a new rover, failing with ErrRoverExists on a duplicate id
	Insert(ctx context.Context, rover *engine.Rover) error

	// Update overwrites an existing rover, failing with ErrRoverNotFound
	Update(ctx context.Context, rover *engine.Rover) error

	// List returns all rovers ordered by id
	List(ctx context.Context) ([]*engine.Rover, error)
}
