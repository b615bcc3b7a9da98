package store

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pixform/logger"
)

// Store writes artifacts into a local directory that the HTTP server exposes
// under a download prefix. Mirrors, when configured, receive a copy of every
// artifact asynchronously.
type Store struct {
	Dir    string
	Prefix string

	mirrors *Mirrorer
}

func New(dir, prefix string, mirrors *Mirrorer) *Store {
	return &Store{Dir: dir, Prefix: prefix, mirrors: mirrors}
}

// Put writes data under name inside the store directory and returns the
// public download URL. The write goes through a temp file and a rename so a
// failure never leaves a partial artifact under the final name; an existing
// file with the same name is overwritten.
func (s *Store) Put(name string, data []byte) (string, error) {
	name = filepath.Base(name)

	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create downloads directory: %w", err)
	}

	suffix, err := randomHex(6)
	if err != nil {
		return "", fmt.Errorf("failed to generate temp suffix: %w", err)
	}
	tmpPath := filepath.Join(s.Dir, name+"."+suffix+".tmp")
	finalPath := filepath.Join(s.Dir, name)

	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write artifact %s: %w", name, err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to finalize artifact %s: %w", name, err)
	}

	if s.mirrors != nil {
		s.mirrors.Enqueue(name, data)
	}

	return s.Prefix + "/" + name, nil
}

// PruneOlderThan removes artifacts whose modification time is older than
// maxAge and returns how many were deleted.
func (s *Store) PruneOlderThan(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(s.Dir, entry.Name())
			if err := os.Remove(path); err != nil {
				logger.Errorf("failed to prune artifact %s: %v", path, err)
				continue
			}
			removed++
		}
	}
	return removed, nil
}

// Close drains the mirror queue, if any.
func (s *Store) Close() {
	if s.mirrors != nil {
		s.mirrors.Close()
	}
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
