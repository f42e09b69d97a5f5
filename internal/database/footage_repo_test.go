package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"footagelens/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(Config{
		Type:       "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestFootageRepository_InsertFootage(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFootageRepository(db)
	ctx := context.Background()

	footage := models.NewFootage("alice@example.com", "Front Door", "entrance", "Person detected at door")

	if err := repo.InsertFootage(ctx, footage); err != nil {
		t.Fatalf("Failed to insert footage: %v", err)
	}

	retrieved, err := repo.GetFootageByID(ctx, footage.ID)
	if err != nil {
		t.Fatalf("Failed to retrieve footage: %v", err)
	}

	if retrieved.Email != footage.Email {
		t.Errorf("Expected email %s, got %s", footage.Email, retrieved.Email)
	}
	if retrieved.Analysis != footage.Analysis {
		t.Errorf("Expected analysis %s, got %s", footage.Analysis, retrieved.Analysis)
	}
	if retrieved.Label != footage.Label {
		t.Errorf("Expected label %s, got %s", footage.Label, retrieved.Label)
	}
}

func TestFootageRepository_GetFootageByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFootageRepository(db)

	_, err := repo.GetFootageByID(context.Background(), "00000000-0000-0000-0000-000000000000")
	if err == nil {
		t.Error("Expected error for non-existent footage, got nil")
	}
}

func TestFootageRepository_ListFootagesByEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFootageRepository(db)
	ctx := context.Background()

	older := models.NewFootage("bob@example.com", "Lobby", "lobby", "quiet")
	newer := models.NewFootage("bob@example.com", "Parking", "parking", "busy")
	newer.UploadDate = older.UploadDate.Add(time.Minute)
	other := models.NewFootage("carol@example.com", "Garage", "garage", "empty")

	for _, f := range []*models.Footage{older, newer, other} {
		if err := repo.InsertFootage(ctx, f); err != nil {
			t.Fatalf("Failed to insert footage: %v", err)
		}
	}

	footages, err := repo.ListFootagesByEmail(ctx, "bob@example.com")
	if err != nil {
		t.Fatalf("Failed to list footages: %v", err)
	}

	if len(footages) != 2 {
		t.Fatalf("Expected 2 footages for bob, got %d", len(footages))
	}
	if footages[0].ID != newer.ID {
		t.Errorf("Expected newest footage first, got %s", footages[0].Name)
	}
	for _, f := range footages {
		if f.Email != "bob@example.com" {
			t.Errorf("Footage %s leaked across emails: %s", f.ID, f.Email)
		}
	}
}

func TestFootageRepository_ListFootagesByEmail_Empty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFootageRepository(db)

	footages, err := repo.ListFootagesByEmail(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("Failed to list footages: %v", err)
	}
	if len(footages) != 0 {
		t.Errorf("Expected no footages, got %d", len(footages))
	}
}
