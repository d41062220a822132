package store

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/brojonat/solsend/service/metrics"
	bolt "go.etcd.io/bbolt"
)

var (
	sessionBucket = []byte("session")
	lastOwnerKey  = []byte("last_owner")
)

// Store is the local persistence layer for session state that must survive
// process restarts: currently just the last-connected owner address, used
// for silent reconnection. Backed by an embedded bbolt database.
type Store struct {
	db      *bolt.DB
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Open opens (creating if needed) the store at path.
func Open(path string, m *metrics.Metrics, logger *slog.Logger) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open local store %q: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize local store: %w", err)
	}
	return &Store{db: db, metrics: m, logger: logger}, nil
}

// SaveOwner persists the connected owner address for silent reconnection.
func (s *Store) SaveOwner(address string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionBucket).Put(lastOwnerKey, []byte(address))
	})
	s.record("save_owner", err)
	if err != nil {
		return fmt.Errorf("failed to save owner address: %w", err)
	}
	return nil
}

// LastOwner returns the last-connected owner address, or "" if none is
// stored.
func (s *Store) LastOwner() (string, error) {
	var address string
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(sessionBucket).Get(lastOwnerKey); v != nil {
			address = string(v)
		}
		return nil
	})
	s.record("last_owner", err)
	if err != nil {
		return "", fmt.Errorf("failed to read owner address: %w", err)
	}
	return address, nil
}

// Clear removes the stored owner address. Called on disconnect.
func (s *Store) Clear() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionBucket).Delete(lastOwnerKey)
	})
	s.record("clear", err)
	if err != nil {
		return fmt.Errorf("failed to clear local store: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) record(operation string, err error) {
	if s.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.RecordStoreOperation(operation, status)
}
