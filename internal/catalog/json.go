package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	"media-catalog/internal/logging"
	"media-catalog/internal/migration"
	"media-catalog/internal/model"
)

// ImportJSON replaces the index contents with the records in data. Invalid
// elements are skipped with a warning and legacy elements are migrated.
// A document that is not a JSON array leaves the index untouched and
// returns a *ParseError. The number of imported records is returned.
func (idx *Index) ImportJSON(data []byte) (int, error) {
	elems, err := migration.ParseArray(data)
	if err != nil {
		return 0, &ParseError{Err: err}
	}

	raw, skipped := migration.DecodeAll(elems)
	for _, s := range skipped {
		logging.Warn("Skipping invalid media record at index %d: %v", s.Index, s.Err)
	}

	records := make([]model.MediaRecord, 0, len(raw))
	for _, r := range migration.Normalize(raw) {
		rec, err := r.Canonical()
		if err != nil {
			logging.Warn("Skipping media record %s: %v", r.ID, err)
			continue
		}
		records = append(records, normalize(rec))
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.records = make(map[string]model.MediaRecord, len(records))
	idx.byPath = make(map[string]string, len(records))
	idx.order = idx.order[:0]
	for _, rec := range records {
		idx.setLocked(rec)
		idx.recent.Push(rec.Tags...)
	}

	return len(idx.records), nil
}

// ExportJSON renders every record, in insertion order, as a two-space
// indented JSON array.
func (idx *Index) ExportJSON() ([]byte, error) {
	data, err := json.MarshalIndent(idx.All(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export media records: %w", err)
	}
	return data, nil
}

// NormalizeRoots converts scan roots to slash-separated prefixes with a
// trailing slash. Empty roots are dropped.
func NormalizeRoots(roots []string) []string {
	out := make([]string, 0, len(roots))
	for _, root := range roots {
		root = strings.TrimSpace(strings.ReplaceAll(root, `\`, "/"))
		if root == "" {
			continue
		}
		if !strings.HasSuffix(root, "/") {
			root += "/"
		}
		out = append(out, root)
	}
	return out
}

// InScanRoots reports whether p lies under one of the normalized roots.
// No roots means the whole vault.
func InScanRoots(p string, roots []string) bool {
	if len(roots) == 0 {
		return true
	}
	p = strings.ReplaceAll(p, `\`, "/")
	for _, root := range roots {
		if strings.HasPrefix(p, root) {
			return true
		}
	}
	return false
}

// CleanupInvalid drops records whose file no longer exists or that fall
// outside scanRoots, then rebuilds the path index. exists is called without
// the lock held. It returns how many records were removed.
func (idx *Index) CleanupInvalid(exists func(string) bool, scanRoots []string) int {
	roots := NormalizeRoots(scanRoots)

	idx.mu.RLock()
	snapshot := make(map[string]string, len(idx.records))
	for id, rec := range idx.records {
		snapshot[id] = rec.Path
	}
	idx.mu.RUnlock()

	drop := make(map[string]string)
	for id, p := range snapshot {
		if !exists(p) || !InScanRoots(p, roots) {
			drop[id] = p
		}
	}
	if len(drop) == 0 {
		return 0
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	removed := 0
	for id, p := range drop {
		// Skip records that were moved while exists() ran.
		if rec, ok := idx.records[id]; ok && rec.Path == p {
			delete(idx.records, id)
			removed++
		}
	}
	idx.rebuildLocked()

	if removed > 0 {
		logging.Info("Cleanup removed %d media records", removed)
	}
	return removed
}
