// Package vaulttest provides an in-memory filesystem.Vault for tests.
package vaulttest

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"time"

	"media-catalog/internal/filesystem"
)

// MemVault is an in-memory vault. Paths are canonicalized with
// filesystem.CleanPath as OSVault does. Set FailWrite or FailRead to make
// the corresponding operations return that error.
type MemVault struct {
	mu        sync.Mutex
	files     map[string]memFile
	FailWrite error
	FailRead  error
	Writes    int
}

type memFile struct {
	data    []byte
	modTime time.Time
}

// New creates an empty MemVault.
func New() *MemVault {
	return &MemVault{files: make(map[string]memFile)}
}

// Put stores a file with the given modification time.
func (v *MemVault) Put(p string, data []byte, modTime time.Time) {
	p = filesystem.CleanPath(p)
	v.mu.Lock()
	defer v.mu.Unlock()
	v.files[p] = memFile{data: append([]byte(nil), data...), modTime: modTime}
}

// Delete removes a file.
func (v *MemVault) Delete(p string) {
	p = filesystem.CleanPath(p)
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.files, p)
}

// Move renames a file.
func (v *MemVault) Move(oldPath, newPath string) {
	oldPath, newPath = filesystem.CleanPath(oldPath), filesystem.CleanPath(newPath)
	v.mu.Lock()
	defer v.mu.Unlock()
	if f, ok := v.files[oldPath]; ok {
		delete(v.files, oldPath)
		v.files[newPath] = f
	}
}

// List implements filesystem.Vault. Hidden paths are skipped.
func (v *MemVault) List() ([]filesystem.FileInfo, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]filesystem.FileInfo, 0, len(v.files))
	for p, f := range v.files {
		if filesystem.HasHiddenSegment(p) {
			continue
		}
		out = append(out, filesystem.FileInfo{Path: p, Size: int64(len(f.data)), ModTime: f.modTime})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Exists implements filesystem.Vault.
func (v *MemVault) Exists(p string) bool {
	p = filesystem.CleanPath(p)
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.files[p]
	return ok
}

// Stat implements filesystem.Vault.
func (v *MemVault) Stat(p string) (filesystem.FileInfo, error) {
	p = filesystem.CleanPath(p)
	v.mu.Lock()
	defer v.mu.Unlock()
	f, ok := v.files[p]
	if !ok {
		return filesystem.FileInfo{}, &fs.PathError{Op: "stat", Path: p, Err: fs.ErrNotExist}
	}
	return filesystem.FileInfo{Path: p, Size: int64(len(f.data)), ModTime: f.modTime}, nil
}

// Read implements filesystem.Vault.
func (v *MemVault) Read(p string) ([]byte, error) {
	p = filesystem.CleanPath(p)
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.FailRead != nil {
		return nil, v.FailRead
	}
	f, ok := v.files[p]
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: p, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), f.data...), nil
}

// Write implements filesystem.Vault.
func (v *MemVault) Write(p string, data []byte) error {
	p = filesystem.CleanPath(p)
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.FailWrite != nil {
		return v.FailWrite
	}
	v.Writes++
	v.files[p] = memFile{data: append([]byte(nil), data...), modTime: time.Now()}
	return nil
}

// MkdirAll implements filesystem.Vault. Directories are implicit.
func (v *MemVault) MkdirAll(dir string) error {
	if strings.HasPrefix(dir, "..") {
		return fmt.Errorf("mkdir %s: %w", dir, filesystem.ErrOutsideVault)
	}
	return nil
}

// Open implements filesystem.Vault.
func (v *MemVault) Open(p string) (io.ReadCloser, error) {
	data, err := v.Read(p)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// WriteCount returns how many successful writes happened.
func (v *MemVault) WriteCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.Writes
}
