package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wricardo/mars-rover/pkg/log"
	"github.com/wricardo/mars-rover/rover/engine"
	"github.com/wricardo/mars-rover/rover/service"
)

type memoryEntry struct {
	rover     engine.Rover
	createdAt time.Time
	updatedAt time.Time
}

// MemoryStore keeps rovers in a map, optionally writing through to a Persistence
type MemoryStore struct {
	rovers      map[int]*memoryEntry
	persistence Persistence
	mu          sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rovers: make(map[int]*memoryEntry),
	}
}

// NewMemoryStoreWithPersistence creates a store that writes every change to persistence
func NewMemoryStoreWithPersistence(persistence Persistence) *MemoryStore {
	return &MemoryStore{
		rovers:      make(map[int]*memoryEntry),
		persistence: persistence,
	}
}

// Find returns a copy of the rover with the given id
func (m *MemoryStore) Find(ctx context.Context, id int) (*engine.Rover, error) {
	m.mu.RLock()
	entry, exists := m.rovers[id]
	m.mu.RUnlock()

	if exists {
		return entry.rover.Clone(), nil
	}

	// Try loading from persistence if not in memory
	if m.persistence != nil && m.persistence.Exists(id) {
		data, err := m.persistence.Load(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load persisted rover: %w", err)
		}

		m.mu.Lock()
		if _, raced := m.rovers[id]; !raced {
			m.rovers[id] = &memoryEntry{rover: data.Rover, createdAt: data.CreatedAt, updatedAt: data.UpdatedAt}
		}
		m.mu.Unlock()

		return data.Rover.Clone(), nil
	}

	return nil, service.ErrRoverNotFound
}

// Insert stores a new rover; the id must not be taken
func (m *MemoryStore) Insert(ctx context.Context, rover *engine.Rover) error {
	if rover == nil {
		return fmt.Errorf("rover cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.rovers[rover.ID]; exists {
		return service.ErrRoverExists
	}
	if m.persistence != nil && m.persistence.Exists(rover.ID) {
		return service.ErrRoverExists
	}

	now := time.Now().UTC()
	entry := &memoryEntry{rover: *rover, createdAt: now, updatedAt: now}

	if err := m.persist(entry); err != nil {
		return err
	}
	m.rovers[rover.ID] = entry

	return nil
}

// Update overwrites an existing rover
func (m *MemoryStore) Update(ctx context.Context, rover *engine.Rover) error {
	if rover == nil {
		return fmt.Errorf("rover cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.rovers[rover.ID]
	if !exists {
		if m.persistence == nil || !m.persistence.Exists(rover.ID) {
			return service.ErrRoverNotFound
		}
		data, err := m.persistence.Load(rover.ID)
		if err != nil {
			return fmt.Errorf("failed to load persisted rover: %w", err)
		}
		entry = &memoryEntry{rover: data.Rover, createdAt: data.CreatedAt, updatedAt: data.UpdatedAt}
	}

	updated := &memoryEntry{rover: *rover, createdAt: entry.createdAt, updatedAt: time.Now().UTC()}
	if err := m.persist(updated); err != nil {
		return err
	}
	m.rovers[rover.ID] = updated

	return nil
}

// List returns copies of all rovers ordered by id
func (m *MemoryStore) List(ctx context.Context) ([]*engine.Rover, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*engine.Rover, 0, len(m.rovers))
	for _, entry := range m.rovers {
		result = append(result, entry.rover.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result, nil
}

// Count returns the number of rovers held in memory
func (m *MemoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rovers)
}

// LoadPersisted loads all persisted rovers into memory
func (m *MemoryStore) LoadPersisted(ctx context.Context) error {
	if m.persistence == nil {
		return nil
	}

	ids, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted rovers: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	logger := log.FromCtx(ctx)
	loaded := 0
	for _, id := range ids {
		if _, exists := m.rovers[id]; exists {
			continue
		}

		data, err := m.persistence.Load(id)
		if err != nil {
			logger.Warn().Err(err).Int("rover_id", id).Msg("failed to load persisted rover")
			continue
		}

		m.rovers[id] = &memoryEntry{rover: data.Rover, createdAt: data.CreatedAt, updatedAt: data.UpdatedAt}
		loaded++
	}

	if loaded > 0 {
		logger.Info().Int("count", loaded).Msg("loaded persisted rovers")
	}

	return nil
}

// persist writes entry through to persistence; caller holds m.mu
func (m *MemoryStore) persist(entry *memoryEntry) error {
	if m.persistence == nil {
		return nil
	}
	err := m.persistence.Save(&PersistedRover{
		Rover:     entry.rover,
		CreatedAt: entry.createdAt,
		UpdatedAt: entry.updatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to persist rover %d: %w", entry.rover.ID, err)
	}
	return nil
}

var _ service.RoverStore = (*MemoryStore)(nil)

