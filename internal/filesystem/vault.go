package filesystem

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// ErrOutsideVault is returned for paths that resolve outside the vault root.
var ErrOutsideVault = errors.New("path is outside the vault")

// FileInfo describes one vault file by its vault-relative, slash-separated path.
type FileInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Vault is the host file store the catalog reads media from and persists
// its metadata into. All paths are vault-relative and slash-separated.
type Vault interface {
	List() ([]FileInfo, error)
	Exists(p string) bool
	Stat(p string) (FileInfo, error)
	Read(p string) ([]byte, error)
	Write(p string, data []byte) error
	MkdirAll(dir string) error
	Open(p string) (io.ReadCloser, error)
}

// OSVault is a Vault backed by a directory on the local (or NFS mounted)
// filesystem. Hidden files and directories are not listed.
type OSVault struct {
	root  string
	retry RetryConfig
}

// NewOSVault creates a vault rooted at dir.
func NewOSVault(dir string, retry RetryConfig) (*OSVault, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve vault root: %w", err)
	}
	info, err := StatWithRetry(abs, retry)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open vault: %s is not a directory", abs)
	}
	return &OSVault{root: abs, retry: retry}, nil
}

// Root returns the absolute vault directory.
func (v *OSVault) Root() string {
	return v.root
}

// Resolve maps a vault path to an absolute filesystem path.
func (v *OSVault) Resolve(p string) (string, error) {
	full := filepath.Join(v.root, filepath.FromSlash(CleanPath(p)))
	if full != v.root && !strings.HasPrefix(full, v.root+string(filepath.Separator)) {
		return "", ErrOutsideVault
	}
	return full, nil
}

// CleanPath returns the canonical vault form of p: slash separated, no
// leading slash, no "." or ".." segments. Paths that would climb above the
// root are clamped to it. The root itself is "".
func CleanPath(p string) string {
	clean := path.Clean("/" + strings.ReplaceAll(p, `\`, "/"))
	return strings.TrimPrefix(clean, "/")
}

// Rel maps an absolute filesystem path back to a vault path.
func (v *OSVault) Rel(full string) (string, error) {
	rel, err := filepath.Rel(v.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideVault
	}
	return filepath.ToSlash(rel), nil
}

func (v *OSVault) observeOp(operation string, start time.Time, err error) {
	observe().ObserveOperation(v.retry.volume(), operation, time.Since(start).Seconds(), err)
}

// List walks the vault and returns every regular, non-hidden file.
func (v *OSVault) List() ([]FileInfo, error) {
	start := time.Now()
	var files []FileInfo

	err := filepath.WalkDir(v.root, func(full string, d fs.DirEntry, err error) error {
		if err != nil {
			if full == v.root {
				return err
			}
			// Unreadable subtrees are skipped, not fatal.
			return nil
		}
		if full != v.root && IsHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		rel, err := v.Rel(full)
		if err != nil {
			return nil
		}
		files = append(files, FileInfo{Path: rel, Size: info.Size(), ModTime: info.ModTime()})
		return nil
	})

	v.observeOp("readdir", start, err)
	if err != nil {
		return nil, fmt.Errorf("list vault: %w", err)
	}
	return files, nil
}

// Exists reports whether p names an existing regular file.
func (v *OSVault) Exists(p string) bool {
	_, err := v.Stat(p)
	return err == nil
}

// Stat returns size and modification time for p.
func (v *OSVault) Stat(p string) (FileInfo, error) {
	full, err := v.Resolve(p)
	if err != nil {
		return FileInfo{}, err
	}

	start := time.Now()
	info, err := StatWithRetry(full, v.retry)
	v.observeOp("stat", start, err)
	if err != nil {
		return FileInfo{}, err
	}
	if info.IsDir() {
		return FileInfo{}, fmt.Errorf("stat %s: is a directory", p)
	}
	rel, _ := v.Rel(full)
	return FileInfo{Path: rel, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// Read returns the contents of p.
func (v *OSVault) Read(p string) ([]byte, error) {
	full, err := v.Resolve(p)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	data, err := ReadFileWithRetry(full, v.retry)
	v.observeOp("read", start, err)
	return data, err
}

// Open opens p for reading.
func (v *OSVault) Open(p string) (io.ReadCloser, error) {
	full, err := v.Resolve(p)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	f, err := OpenWithRetry(full, v.retry)
	v.observeOp("open", start, err)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// MkdirAll creates dir and any missing parents.
func (v *OSVault) MkdirAll(dir string) error {
	full, err := v.Resolve(dir)
	if err != nil {
		return err
	}
	return os.MkdirAll(full, 0o755)
}

// Write replaces p with data atomically: the bytes go to a hidden temp file
// in the same directory which is then renamed over the target.
func (v *OSVault) Write(p string, data []byte) error {
	full, err := v.Resolve(p)
	if err != nil {
		return err
	}

	start := time.Now()
	err = writeFileAtomic(full, data, 0o644)
	v.observeOp("write", start, err)
	return err
}

func writeFileAtomic(dst string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return fmt.Errorf("rename temp: %w", err)
	}
	return nil
}

// IsHidden reports whether a file or directory name is hidden.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// HasHiddenSegment reports whether any element of a vault path is hidden.
func HasHiddenSegment(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if IsHidden(seg) {
			return true
		}
	}
	return false
}
