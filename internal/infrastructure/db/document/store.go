// Package document persists each collection as a single JSON document on
// disk. Every mutation is a full read-modify-write cycle guarded by a
// per-collection lock, and writes go to a temp file swapped into place with
// os.Rename so readers never observe a partial document.
package document

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/dreamscape/identity-system/internal/core/domain"
)

const schemaVersion = 1

const (
	usersFile    = "users.json"
	sessionsFile = "sessions.json"
)

// Store owns the data directory holding both collection documents. Each
// repository is built exactly once so a single lock guards each collection no
// matter how many components share the store.
type Store struct {
	dir      string
	users    *UserRepository
	sessions *SessionRepository
}

// NewStore creates the data directory if needed and returns a Store rooted at
// dir. Each call builds an independent store, so tests get isolation by
// pointing at a fresh directory.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, domain.StorageErrorf("create data dir: %v", err)
	}
	return &Store{
		dir:      dir,
		users:    &UserRepository{path: filepath.Join(dir, usersFile)},
		sessions: &SessionRepository{path: filepath.Join(dir, sessionsFile)},
	}, nil
}

// Users returns the user repository backed by this store.
func (s *Store) Users() *UserRepository {
	return s.users
}

// Sessions returns the session repository backed by this store.
func (s *Store) Sessions() *SessionRepository {
	return s.sessions
}

// Ping verifies the data directory is writable, for readiness probes.
func (s *Store) Ping() error {
	f, err := os.CreateTemp(s.dir, ".probe-*")
	if err != nil {
		return domain.StorageErrorf("data dir not writable: %v", err)
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

// readDocument loads the document at path into v. A missing file leaves v
// untouched so callers start from their zero document.
func readDocument(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return domain.StorageErrorf("read %s: %v", filepath.Base(path), err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return domain.StorageErrorf("decode %s: %v", filepath.Base(path), err)
	}
	return nil
}

// writeDocument marshals v and atomically replaces the document at path.
func writeDocument(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return domain.StorageErrorf("encode %s: %v", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return domain.StorageErrorf("create temp for %s: %v", filepath.Base(path), err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return domain.StorageErrorf("write %s: %v", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return domain.StorageErrorf("close %s: %v", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return domain.StorageErrorf("swap %s: %v", filepath.Base(path), err)
	}
	return nil
}

// checkVersion rejects documents written by a newer schema rather than
// silently reinterpreting them.
func checkVersion(file string, version int) error {
	if version > schemaVersion {
		return domain.StorageErrorf("%s: unsupported schema version %d", file, version)
	}
	return nil
}
