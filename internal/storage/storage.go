package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sync"
	"time"

	"media-catalog/internal/catalog"
	"media-catalog/internal/filesystem"
	"media-catalog/internal/logging"
	"media-catalog/internal/metrics"
)

// DefaultPath is the vault-relative location of the metadata file.
const DefaultPath = ".media-catalog/media-data.json"

// CorruptSuffix is appended to the metadata path for the copy kept when the
// file cannot be parsed.
const CorruptSuffix = ".corrupt"

// ErrNoVault is returned when a Store has no vault to read from or write to.
var ErrNoVault = errors.New("no vault configured")

// Store persists an Index as one JSON file inside the vault. Saves are
// serialized; there is no support for other writers of the same file.
type Store struct {
	vault filesystem.Vault
	path  string
	mu    sync.Mutex
}

// New creates a Store writing to p inside v. An empty p uses DefaultPath.
func New(v filesystem.Vault, p string) *Store {
	if p == "" {
		p = DefaultPath
	}
	return &Store{vault: v, path: path.Clean(p)}
}

// Path returns the vault-relative metadata file path.
func (s *Store) Path() string {
	return s.path
}

// Load replaces the index contents with the metadata file. A missing file
// yields an empty index without error. Read and parse failures are logged,
// leave the index empty and are returned. An unparsable file is first
// copied to its path plus CorruptSuffix, since the next Save replaces it.
func (s *Store) Load(idx *catalog.Index) error {
	start := time.Now()
	n, err := s.load(idx)
	metrics.StorageOperationDuration.WithLabelValues("load").Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.StorageOperationsTotal.WithLabelValues("load", "error").Inc()
		logging.WithField("path", s.path).Errorf("Failed to load media data, starting empty: %v", err)
		if _, resetErr := idx.ImportJSON([]byte("[]")); resetErr != nil {
			logging.Error("Failed to reset media index: %v", resetErr)
		}
		return err
	}

	metrics.StorageOperationsTotal.WithLabelValues("load", "success").Inc()
	logging.WithField("path", s.path).Infof("Loaded %d media records", n)
	return nil
}

func (s *Store) load(idx *catalog.Index) (int, error) {
	if s.vault == nil {
		return 0, ErrNoVault
	}

	data, err := s.vault.Read(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return idx.ImportJSON([]byte("[]"))
	}
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", s.path, err)
	}

	n, err := idx.ImportJSON(data)
	var perr *catalog.ParseError
	if errors.As(err, &perr) {
		s.keepCorrupt(data)
	}
	return n, err
}

// keepCorrupt saves the unparsable metadata next to the original.
func (s *Store) keepCorrupt(data []byte) {
	backup := s.path + CorruptSuffix
	if err := s.vault.Write(backup, data); err != nil {
		logging.WithField("path", backup).Errorf("Failed to keep a copy of unreadable media data: %v", err)
		return
	}
	logging.WithField("path", backup).Warn("Kept a copy of unreadable media data")
}

// Save writes the index to the metadata file. On failure the in-memory
// index is left as is and the error is returned.
func (s *Store) Save(idx *catalog.Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	size, err := s.save(idx)
	metrics.StorageOperationDuration.WithLabelValues("save").Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.StorageOperationsTotal.WithLabelValues("save", "error").Inc()
		logging.WithField("path", s.path).Errorf("Failed to save media data: %v", err)
		return err
	}

	metrics.StorageOperationsTotal.WithLabelValues("save", "success").Inc()
	metrics.StorageFileSizeBytes.Set(float64(size))
	logging.Debug("Saved media data to %s (%d bytes)", s.path, size)
	return nil
}

func (s *Store) save(idx *catalog.Index) (int, error) {
	if s.vault == nil {
		return 0, ErrNoVault
	}

	data, err := idx.ExportJSON()
	if err != nil {
		return 0, err
	}

	if dir := path.Dir(s.path); dir != "." {
		if err := s.vault.MkdirAll(dir); err != nil {
			return 0, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := s.vault.Write(s.path, data); err != nil {
		return 0, fmt.Errorf("write %s: %w", s.path, err)
	}
	return len(data), nil
}
