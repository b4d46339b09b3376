package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/wricardo/mars-rover/rover/service"
)

// FilePersistence implements Persistence using one JSON file per rover
type FilePersistence struct {
	dataDir string
}

// NewFilePersistence creates a new file-based persistence layer
func NewFilePersistence(dataDir string) (*FilePersistence, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &FilePersistence{dataDir: dataDir}, nil
}

// Save persists a rover to a JSON file
func (fp *FilePersistence) Save(rover *PersistedRover) error {
	if rover == nil {
		return fmt.Errorf("rover cannot be nil")
	}

	jsonData, err := json.MarshalIndent(rover, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rover data: %w", err)
	}

	// Write to a temp file first so readers never see a torn document
	filePath := fp.getFilePath(rover.Rover.ID)
	tmpPath := filePath + ".tmp"
	if err := os.WriteFile(tmpPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write rover file: %w", err)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		return fmt.Errorf("failed to replace rover file: %w", err)
	}

	return nil
}

// Load retrieves a rover from a JSON file
func (fp *FilePersistence) Load(id int) (*PersistedRover, error) {
	jsonData, err := os.ReadFile(fp.getFilePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, service.ErrRoverNotFound
		}
		return nil, fmt.Errorf("failed to read rover file: %w", err)
	}

	var data PersistedRover
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rover %d: %w", id, err)
	}
	if data.Rover.ID != id {
		return nil, fmt.Errorf("rover file %d contains id %d", id, data.Rover.ID)
	}

	return &data, nil
}

// ListAll returns all persisted rover IDs in ascending order
func (fp *FilePersistence) ListAll() ([]int, error) {
	entries, err := os.ReadDir(fp.dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var ids []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	sort.Ints(ids)
	return ids, nil
}

// Exists checks if a rover file exists
func (fp *FilePersistence) Exists(id int) bool {
	_, err := os.Stat(fp.getFilePath(id))
	return err == nil
}

// getFilePath returns the full file path for a rover ID
func (fp *FilePersistence) getFilePath(id int) string {
	return filepath.Join(fp.dataDir, fmt.Sprintf("%d.json", id))
}
