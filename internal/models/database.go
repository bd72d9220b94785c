package models

import (
	"fmt"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

const favoritesKey = "favorites:v1"

// favoritesEntry is the single stored record holding the serialized
// favorites library, mirroring the one storage key the browser app used.
type favoritesEntry struct {
	Key       string `boltholdKey:"Key"`
	Payload   []byte
	UpdatedAt time.Time
}

// Database wraps the bolthold store
type Database struct {
	store *bolthold.Store
}

// NewDatabase creates a new database connection
func NewDatabase(path string) (*Database, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{store: store}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.store.Close()
}

// Ping verifies the underlying store is still reachable
func (db *Database) Ping() error {
	return db.store.Bolt().View(func(tx *bbolt.Tx) error {
		return nil
	})
}

// LoadFavorites returns the serialized favorites library, or nil when no
// snapshot has been written yet.
func (db *Database) LoadFavorites() ([]byte, error) {
	var entry favoritesEntry
	err := db.store.Get(favoritesKey, &entry)
	if err == bolthold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	return entry.Payload, nil
}

// SaveFavorites replaces the stored favorites snapshot wholesale.
func (db *Database) SaveFavorites(payload []byte) error {
	entry := favoritesEntry{
		Key:       favoritesKey,
		Payload:   payload,
		UpdatedAt: time.Now(),
	}
	if err := db.store.Upsert(favoritesKey, &entry); err != nil {
		return fmt.Errorf("failed to save favorites: %w", err)
	}
	return nil
}
