package models

import (
	"path/filepath"
	"testing"
)

func openTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDatabase returned error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPing(t *testing.T) {
	db := openTestDatabase(t)
	if err := db.Ping(); err != nil {
		t.Errorf("Ping returned error on an open store: %v", err)
	}
}

func TestLoadFavoritesEmpty(t *testing.T) {
	db := openTestDatabase(t)

	payload, err := db.LoadFavorites()
	if err != nil {
		t.Fatalf("LoadFavorites returned error: %v", err)
	}
	if payload != nil {
		t.Errorf("payload = %q, want nil before any snapshot is written", payload)
	}
}

func TestSaveAndLoadFavorites(t *testing.T) {
	db := openTestDatabase(t)

	snapshot := []byte(`[{"id":"603","title":"The Matrix"}]`)
	if err := db.SaveFavorites(snapshot); err != nil {
		t.Fatalf("SaveFavorites returned error: %v", err)
	}

	payload, err := db.LoadFavorites()
	if err != nil {
		t.Fatalf("LoadFavorites returned error: %v", err)
	}
	if string(payload) != string(snapshot) {
		t.Errorf("payload = %q, want %q", payload, snapshot)
	}
}

func TestSaveFavoritesReplacesSnapshot(t *testing.T) {
	db := openTestDatabase(t)

	if err := db.SaveFavorites([]byte(`["old"]`)); err != nil {
		t.Fatalf("SaveFavorites returned error: %v", err)
	}
	if err := db.SaveFavorites([]byte(`["new"]`)); err != nil {
		t.Fatalf("SaveFavorites returned error: %v", err)
	}

	payload, err := db.LoadFavorites()
	if err != nil {
		t.Fatalf("LoadFavorites returned error: %v", err)
	}
	if string(payload) != `["new"]` {
		t.Errorf("payload = %q, want the latest snapshot only", payload)
	}
}
