package store

import (
	"time"

	"github.com/wricardo/mars-rover/rover/engine"
)

// Persistence defines the durable backing a MemoryStore writes through to
type Persistence interface {
	// Save persists a rover to storage
	Save(rover *PersistedRover) error

	// Load retrieves a rover from storage by ID
	Load(id int) (*PersistedRover, error)

	// ListAll returns all persisted rover IDs
	ListAll() ([]int, error)

	// Exists checks if a rover exists in storage
	Exists(id int) bool
}

// PersistedRover represents the JSON structure for persisted rovers
type PersistedRover struct {
	Rover     engine.Rover `json:"rover"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
