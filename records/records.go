package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pixform/job"
	"pixform/logger"

	"github.com/cockroachdb/pebble"
)

// Record is the stored outcome of one conversion job, success or failure.
type Record struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"original_name"`
	FileName     string    `json:"file_name,omitempty"`
	Format       string    `json:"format"`
	Status       string    `json:"status"`
	Error        string    `json:"error,omitempty"`
	Size         int       `json:"size,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Store is a pebble-backed log of conversion outcomes.
type Store struct {
	db *pebble.DB
}

// Open opens (or creates) the records database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := pebble.Open(dbPath, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open records store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Add persists a record under its ID. A zero timestamp is filled in.
func (s *Store) Add(rec Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	return s.db.Set([]byte(rec.ID), data, pebble.Sync)
}

// Get retrieves a record by ID. A missing record returns (nil, nil).
func (s *Store) Get(id string) (*Record, error) {
	data, closer, err := s.db.Get([]byte(id))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	defer closer.Close()

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &rec, nil
}

// List returns all stored records.
func (s *Store) List() ([]Record, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var recs []Record
	for iter.First(); iter.Valid(); iter.Next() {
		var rec Record
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			continue // skip invalid records
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// CleanupOldRecords removes records older than maxAge.
func (s *Store) CleanupOldRecords(maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge)
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return err
	}
	defer iter.Close()

	var keysToDelete [][]byte
	for iter.First(); iter.Valid(); iter.Next() {
		var rec Record
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			continue
		}
		if rec.Timestamp.Before(cutoff) {
			key := make([]byte, len(iter.Key()))
			copy(key, iter.Key())
			keysToDelete = append(keysToDelete, key)
		}
	}

	for _, key := range keysToDelete {
		if err := s.db.Delete(key, pebble.Sync); err != nil {
			return fmt.Errorf("failed to delete old record: %w", err)
		}
	}
	return nil
}

// Record implements job.Recorder. Recording is best-effort: a failed write
// never fails the job it describes.
func (s *Store) Record(o job.Outcome) {
	err := s.Add(Record{
		ID:           o.ID,
		OriginalName: o.OriginalName,
		FileName:     o.FileName,
		Format:       o.Format,
		Status:       o.Status,
		Error:        o.Error,
		Size:         o.Size,
	})
	if err != nil {
		logger.Errorf("failed to record conversion outcome %s: %v", o.ID, err)
	}
}
