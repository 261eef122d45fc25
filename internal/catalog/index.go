package catalog

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"media-catalog/internal/logging"
	"media-catalog/internal/mediatypes"
	"media-catalog/internal/model"
)

// ErrNotFound is returned by edit operations when the record id is unknown.
var ErrNotFound = errors.New("media record not found")

// Config configures an Index.
type Config struct {
	// RecentTagCap bounds the recently used tag list (default 20).
	RecentTagCap int
	// Now overrides the clock used to stamp edit dates. Nil means time.Now.
	Now func() time.Time
}

// DefaultConfig returns the default index configuration.
func DefaultConfig() Config {
	return Config{RecentTagCap: DefaultRecentTagCap}
}

// Index is the in-memory media metadata store. Records are keyed by id; the
// path index is derived and only ever written by setLocked, deleteLocked and
// rebuildLocked, so the two maps cannot drift apart.
//
// Every exported mutating method holds the write lock for its whole duration
// and performs no I/O while holding it.
type Index struct {
	mu      sync.RWMutex
	records map[string]model.MediaRecord
	order   []string
	byPath  map[string]string
	recent  *RecentTags
	now     func() time.Time
}

// TagCount is one entry of PopularTags.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Stats summarizes the index contents.
type Stats struct {
	TotalRecords int                     `json:"totalRecords"`
	ByKind       map[mediatypes.Kind]int `json:"byKind"`
	TotalTags    int                     `json:"totalTags"`
	RecentTags   int                     `json:"recentTags"`
}

// New creates an empty Index.
func New(cfg Config) *Index {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Index{
		records: make(map[string]model.MediaRecord),
		byPath:  make(map[string]string),
		recent:  NewRecentTags(cfg.RecentTagCap),
		now:     now,
	}
}

// setLocked stores rec, keeping the path index consistent. If the id moved
// to a new path, the old path entry is dropped. If another id already owns
// the target path, that record is evicted so a path maps to one record.
func (idx *Index) setLocked(rec model.MediaRecord) {
	if prev, ok := idx.records[rec.ID]; ok {
		if prev.Path != rec.Path && idx.byPath[prev.Path] == rec.ID {
			delete(idx.byPath, prev.Path)
		}
	} else {
		idx.order = append(idx.order, rec.ID)
	}

	if owner, ok := idx.byPath[rec.Path]; ok && owner != rec.ID {
		logging.Warn("Path %s moved from record %s to %s, dropping the older record", rec.Path, owner, rec.ID)
		idx.deleteLocked(owner)
	}

	idx.records[rec.ID] = rec
	idx.byPath[rec.Path] = rec.ID
}

// deleteLocked removes id from both maps and the order slice.
func (idx *Index) deleteLocked(id string) bool {
	rec, ok := idx.records[id]
	if !ok {
		return false
	}
	delete(idx.records, id)
	if idx.byPath[rec.Path] == id {
		delete(idx.byPath, rec.Path)
	}
	for i, oid := range idx.order {
		if oid == id {
			idx.order = append(idx.order[:i], idx.order[i+1:]...)
			break
		}
	}
	return true
}

// rebuildLocked recomputes the path index and order from the id map,
// keeping the relative order of ids that survive.
func (idx *Index) rebuildLocked() {
	order := idx.order[:0]
	byPath := make(map[string]string, len(idx.records))
	for _, id := range idx.order {
		rec, ok := idx.records[id]
		if !ok {
			continue
		}
		order = append(order, id)
		byPath[rec.Path] = id
	}
	idx.order = order
	idx.byPath = byPath
}

// normalize prepares a record for storage.
func normalize(rec model.MediaRecord) model.MediaRecord {
	rec = rec.Clone()
	rec.Path = mediatypes.ToSlash(rec.Path)
	rec.Tags = model.DedupeTags(rec.Tags)
	return rec
}

// Add upserts rec by id and records its tags as recently used. Adding the
// same record twice leaves the index unchanged.
func (idx *Index) Add(rec model.MediaRecord) {
	rec = normalize(rec)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.setLocked(rec)
	idx.recent.Push(rec.Tags...)
}

// Get returns the record with the given id.
func (idx *Index) Get(id string) (model.MediaRecord, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	rec, ok := idx.records[id]
	if !ok {
		return model.MediaRecord{}, false
	}
	return rec.Clone(), true
}

// GetByPath returns the record stored for a vault path.
func (idx *Index) GetByPath(p string) (model.MediaRecord, bool) {
	p = mediatypes.ToSlash(p)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	id, ok := idx.byPath[p]
	if !ok {
		return model.MediaRecord{}, false
	}
	rec, ok := idx.records[id]
	if !ok || rec.Path != p {
		logging.Error("Path index is stale for %s (id %s)", p, id)
		return model.MediaRecord{}, false
	}
	return rec.Clone(), true
}

// Has reports whether a record exists for the path.
func (idx *Index) Has(p string) bool {
	_, ok := idx.GetByPath(p)
	return ok
}

// Remove deletes the record with the given id, reporting whether it existed.
func (idx *Index) Remove(id string) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.deleteLocked(id)
}

// RemoveByPath deletes the record stored for a path.
func (idx *Index) RemoveByPath(p string) (model.MediaRecord, bool) {
	p = mediatypes.ToSlash(p)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	id, ok := idx.byPath[p]
	if !ok {
		return model.MediaRecord{}, false
	}
	rec := idx.records[id]
	idx.deleteLocked(id)
	return rec, true
}

// Len returns the number of records.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.records)
}

// All returns every record in insertion order.
func (idx *Index) All() []model.MediaRecord {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.filterLocked(func(model.MediaRecord) bool { return true })
}

func (idx *Index) filterLocked(keep func(model.MediaRecord) bool) []model.MediaRecord {
	out := make([]model.MediaRecord, 0, len(idx.order))
	for _, id := range idx.order {
		rec := idx.records[id]
		if keep(rec) {
			out = append(out, rec.Clone())
		}
	}
	return out
}

// SearchByTag returns records carrying exactly tag.
func (idx *Index) SearchByTag(tag string) []model.MediaRecord {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.filterLocked(func(rec model.MediaRecord) bool { return rec.HasTag(tag) })
}

// Search returns records whose title, description or any tag contains
// keyword, case-insensitively.
func (idx *Index) Search(keyword string) []model.MediaRecord {
	needle := strings.ToLower(keyword)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.filterLocked(func(rec model.MediaRecord) bool {
		if strings.Contains(strings.ToLower(rec.Title), needle) ||
			strings.Contains(strings.ToLower(rec.Description), needle) {
			return true
		}
		for _, tag := range rec.Tags {
			if strings.Contains(strings.ToLower(tag), needle) {
				return true
			}
		}
		return false
	})
}

// ByKind returns records of the given kind.
func (idx *Index) ByKind(kind mediatypes.Kind) []model.MediaRecord {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.filterLocked(func(rec model.MediaRecord) bool { return rec.Type == kind })
}

// PopularTags counts tags across all records, most used first. Ties keep
// the order in which each tag was first seen walking records in insertion
// order. A non-positive limit returns every tag.
func (idx *Index) PopularTags(limit int) []TagCount {
	idx.mu.RLock()
	counts := make([]TagCount, 0)
	pos := make(map[string]int)
	for _, id := range idx.order {
		for _, tag := range idx.records[id].Tags {
			if i, ok := pos[tag]; ok {
				counts[i].Count++
				continue
			}
			pos[tag] = len(counts)
			counts = append(counts, TagCount{Tag: tag, Count: 1})
		}
	}
	idx.mu.RUnlock()

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}

// AllTags returns every distinct tag, sorted.
func (idx *Index) AllTags() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, rec := range idx.records {
		for _, tag := range rec.Tags {
			seen[tag] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// RecentTags returns the recently used tags, most recent first.
func (idx *Index) RecentTags() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.recent.List()
}

// Stats summarizes the index for metrics and status output.
func (idx *Index) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	stats := Stats{
		TotalRecords: len(idx.records),
		ByKind:       make(map[mediatypes.Kind]int, len(mediatypes.Kinds)),
		RecentTags:   idx.recent.Len(),
	}
	for _, k := range mediatypes.Kinds {
		stats.ByKind[k] = 0
	}
	tags := make(map[string]struct{})
	for _, rec := range idx.records {
		stats.ByKind[rec.Type]++
		for _, tag := range rec.Tags {
			tags[tag] = struct{}{}
		}
	}
	stats.TotalTags = len(tags)
	return stats
}
