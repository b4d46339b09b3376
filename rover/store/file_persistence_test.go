package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wricardo/mars-rover/rover/engine"
	"github.com/wricardo/mars-rover/rover/service"
)

func TestFilePersistence(t *testing.T) {
	tempDir := t.TempDir()

	persistence, err := NewFilePersistence(tempDir)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	data := &PersistedRover{
		Rover: engine.Rover{
			ID:       3,
			Name:     "Opportunity",
			Position: engine.Position{X: -1, Y: 4},
			Heading:  engine.South,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	t.Run("Save and Load Rover", func(t *testing.T) {
		if err := persistence.Save(data); err != nil {
			t.Fatalf("Failed to save rover: %v", err)
		}

		if !persistence.Exists(3) {
			t.Error("Rover file should exist after save")
		}
		if _, err := os.Stat(filepath.Join(tempDir, "3.json.tmp")); !os.IsNotExist(err) {
			t.Error("Temporary file should not survive a save")
		}

		loaded, err := persistence.Load(3)
		if err != nil {
			t.Fatalf("Failed to load rover: %v", err)
		}
		if loaded.Rover != data.Rover {
			t.Errorf("Expected %+v, got %+v", data.Rover, loaded.Rover)
		}
		if !loaded.CreatedAt.Equal(now) {
			t.Errorf("Expected created_at %v, got %v", now, loaded.CreatedAt)
		}
	})

	t.Run("Load Missing Rover", func(t *testing.T) {
		_, err := persistence.Load(404)
		if !errors.Is(err, service.ErrRoverNotFound) {
			t.Fatalf("Expected ErrRoverNotFound, got %v", err)
		}
	})

	t.Run("Load Corrupted File", func(t *testing.T) {
		path := filepath.Join(tempDir, "9.json")
		if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
			t.Fatalf("Failed to write corrupted file: %v", err)
		}
		defer os.Remove(path)

		if _, err := persistence.Load(9); err == nil {
			t.Error("Expected error loading corrupted file")
		}
	})

	t.Run("List All Rovers", func(t *testing.T) {
		for _, id := range []int{10, -2} {
			rover := *data
			rover.Rover.ID = id
			if err := persistence.Save(&rover); err != nil {
				t.Fatalf("Failed to save rover %d: %v", id, err)
			}
		}
		// Stray files are ignored
		os.WriteFile(filepath.Join(tempDir, "notes.txt"), []byte("x"), 0644)
		os.WriteFile(filepath.Join(tempDir, "abc.json"), []byte("{}"), 0644)

		ids, err := persistence.ListAll()
		if err != nil {
			t.Fatalf("Failed to list rovers: %v", err)
		}

		want := []int{-2, 3, 10}
		if len(ids) != len(want) {
			t.Fatalf("Expected ids %v, got %v", want, ids)
		}
		for i := range want {
			if ids[i] != want[i] {
				t.Errorf("Expected ids %v, got %v", want, ids)
				break
			}
		}
	})

	t.Run("Save Nil", func(t *testing.T) {
		if err := persistence.Save(nil); err == nil {
			t.Error("Expected error saving nil rover")
		}
	})
}

func TestMemoryStoreWithPersistence(t *testing.T) {
	ctx := context.Background()
	tempDir := t.TempDir()

	persistence, err := NewFilePersistence(tempDir)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}
	store := NewMemoryStoreWithPersistence(persistence)

	t.Run("Insert Auto-Saves", func(t *testing.T) {
		if err := store.Insert(ctx, engine.NewRover(1, "Spirit")); err != nil {
			t.Fatalf("Failed to insert rover: %v", err)
		}
		if !persistence.Exists(1) {
			t.Error("Rover should be saved on insert")
		}
	})

	t.Run("Update Auto-Saves", func(t *testing.T) {
		rover, _ := store.Find(ctx, 1)
		rover.SetState(engine.State{Position: engine.Position{X: 0, Y: 2}, Heading: engine.West})
		if err := store.Update(ctx, rover); err != nil {
			t.Fatalf("Failed to update rover: %v", err)
		}

		loaded, err := persistence.Load(1)
		if err != nil {
			t.Fatalf("Failed to load rover: %v", err)
		}
		if loaded.Rover.State() != rover.State() {
			t.Errorf("Expected persisted state %s, got %s", rover.State(), loaded.Rover.State())
		}
		if !loaded.UpdatedAt.After(loaded.CreatedAt) && !loaded.UpdatedAt.Equal(loaded.CreatedAt) {
			t.Error("updated_at should not precede created_at")
		}
	})

	t.Run("Find Loads From Persistence", func(t *testing.T) {
		fresh := NewMemoryStoreWithPersistence(persistence)

		rover, err := fresh.Find(ctx, 1)
		if err != nil {
			t.Fatalf("Failed to find rover from persistence: %v", err)
		}
		if rover.Name != "Spirit" || rover.Heading != engine.West {
			t.Errorf("Unexpected rover loaded: %+v", rover)
		}
	})

	t.Run("Insert Rejects Persisted Id", func(t *testing.T) {
		fresh := NewMemoryStoreWithPersistence(persistence)
		err := fresh.Insert(ctx, engine.NewRover(1, "Clash"))
		if !errors.Is(err, service.ErrRoverExists) {
			t.Fatalf("Expected ErrRoverExists, got %v", err)
		}
	})

	t.Run("Update Loads From Persistence", func(t *testing.T) {
		fresh := NewMemoryStoreWithPersistence(persistence)
		rover := engine.NewRover(1, "Spirit II")
		if err := fresh.Update(ctx, rover); err != nil {
			t.Fatalf("Failed to update persisted-only rover: %v", err)
		}
		loaded, _ := persistence.Load(1)
		if loaded.Rover.Name != "Spirit II" {
			t.Errorf("Expected renamed rover on disk, got %s", loaded.Rover.Name)
		}
	})

	t.Run("Load Persisted", func(t *testing.T) {
		fresh := NewMemoryStoreWithPersistence(persistence)
		if err := fresh.LoadPersisted(ctx); err != nil {
			t.Fatalf("Failed to load persisted rovers: %v", err)
		}
		if fresh.Count() != 1 {
			t.Errorf("Expected 1 rover loaded, got %d", fresh.Count())
		}
	})
}
