package indexer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"media-catalog/internal/catalog"
	"media-catalog/internal/dimensions"
	"media-catalog/internal/filesystem"
	"media-catalog/internal/logging"
	"media-catalog/internal/mediatypes"
	"media-catalog/internal/metrics"
	"media-catalog/internal/model"
	"media-catalog/internal/storage"

	"golang.org/x/sync/singleflight"
)

const (
	// Number of new records probed and added per batch
	defaultBatchSize = 50

	// Delay between batches to allow other operations
	batchDelay = 5 * time.Millisecond
)

// ErrUnsupported is returned by Ensure for files the catalog does not track.
var ErrUnsupported = errors.New("not a supported media file")

// Config controls what the indexer picks up and how new records look.
type Config struct {
	ScanRoots      []string
	Extensions     mediatypes.ExtensionSet
	AutoTag        bool
	DefaultTags    []string
	RescanInterval time.Duration
	BatchSize      int
}

// Indexer keeps the catalog in step with the vault: full scans, change
// events, lazy creation and periodic rescans. Every change that alters the
// index is persisted through the store.
type Indexer struct {
	index *catalog.Index
	cache *dimensions.Cache
	vault filesystem.Vault
	store *storage.Store
	cfg   Config
	roots []string
	now   func() time.Time

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	indexMu              sync.Mutex
	isIndexing           bool
	lastIndexTime        time.Time
	lastResult           ScanResult
	initialIndexComplete bool
	initialIndexError    error
	startTime            time.Time

	ensureGroup singleflight.Group
}

// ScanResult summarizes one full scan.
type ScanResult struct {
	FilesSeen int           `json:"filesSeen"`
	Added     int           `json:"added"`
	Removed   int           `json:"removed"`
	Duration  time.Duration `json:"duration"`
}

// New creates an Indexer. cache and store may be nil to disable probing
// and persistence.
func New(index *catalog.Index, cache *dimensions.Cache, vault filesystem.Vault, store *storage.Store, cfg Config) *Indexer {
	if cfg.Extensions.IsEmpty() {
		cfg.Extensions = mediatypes.DefaultExtensionSet()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	return &Indexer{
		index:     index,
		cache:     cache,
		vault:     vault,
		store:     store,
		cfg:       cfg,
		roots:     catalog.NormalizeRoots(cfg.ScanRoots),
		now:       time.Now,
		stopChan:  make(chan struct{}),
		startTime: time.Now(),
	}
}

// tracks reports whether p is a supported, non-hidden file under the scan
// roots, and its kind.
func (ix *Indexer) tracks(p string, roots []string, exts mediatypes.ExtensionSet) (mediatypes.Kind, bool) {
	if filesystem.HasHiddenSegment(p) || !catalog.InScanRoots(p, roots) {
		return "", false
	}
	return exts.Classify(mediatypes.Extension(p))
}

// defaultRecord builds the record for a vault file without probing it.
func (ix *Indexer) defaultRecord(f filesystem.FileInfo, kind mediatypes.Kind) model.MediaRecord {
	rec := model.NewRecord(f.Path, kind, ix.now())
	rec.SetFileInfo(f.Size, f.ModTime)
	if ix.cfg.AutoTag {
		rec.Tags = model.CleanTags(ix.cfg.DefaultTags)
	}
	return rec
}

// newRecord builds the default record for a vault file. Images get their
// real resolution when the probe succeeds; otherwise the placeholder stays.
func (ix *Indexer) newRecord(ctx context.Context, f filesystem.FileInfo, kind mediatypes.Kind) model.MediaRecord {
	rec := ix.defaultRecord(f, kind)
	if kind == mediatypes.KindImage && ix.cache != nil {
		if d, ok := ix.cache.GetResolution(ctx, dimensions.File{Path: f.Path, ModTime: f.ModTime}); ok {
			rec.SetDimensions(d.Width, d.Height)
		}
	}
	return rec
}

// Scan creates default records for files not yet in the index. Files are
// filtered by scanRoots and extensions, then processed in batches; image
// dimensions of a batch are preloaded together. It returns how many
// records were added.
func (ix *Indexer) Scan(ctx context.Context, files []filesystem.FileInfo, scanRoots []string, extensions mediatypes.ExtensionSet) (int, error) {
	roots := catalog.NormalizeRoots(scanRoots)
	if extensions.IsEmpty() {
		extensions = mediatypes.DefaultExtensionSet()
	}

	type candidate struct {
		file filesystem.FileInfo
		kind mediatypes.Kind
	}
	var pending []candidate
	for _, f := range files {
		f.Path = mediatypes.ToSlash(f.Path)
		kind, ok := ix.tracks(f.Path, roots, extensions)
		if !ok || ix.index.Has(f.Path) {
			continue
		}
		pending = append(pending, candidate{file: f, kind: kind})
	}
	metrics.IndexerFilesProcessed.Add(float64(len(files)))

	added := 0
	for start := 0; start < len(pending); start += ix.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return added, err
		}
		batch := pending[start:min(start+ix.cfg.BatchSize, len(pending))]

		if ix.cache != nil {
			var images []dimensions.File
			for _, c := range batch {
				if c.kind == mediatypes.KindImage {
					images = append(images, dimensions.File{Path: c.file.Path, ModTime: c.file.ModTime})
				}
			}
			if err := ix.cache.Preload(ctx, images, 0); err != nil {
				return added, err
			}
		}

		batchAdded := 0
		for _, c := range batch {
			// A watcher event may have created it meanwhile.
			if ix.index.Has(c.file.Path) {
				continue
			}
			// The batch was just preloaded; an image missing from the cache
			// failed to probe and keeps its placeholder.
			rec := ix.defaultRecord(c.file, c.kind)
			if c.kind == mediatypes.KindImage && ix.cache != nil {
				if d, ok := ix.cache.Peek(dimensions.File{Path: c.file.Path, ModTime: c.file.ModTime}); ok {
					rec.SetDimensions(d.Width, d.Height)
				}
			}
			ix.index.Add(rec)
			batchAdded++
		}
		added += batchAdded
		metrics.IndexerRecordsAdded.WithLabelValues("scan").Add(float64(batchAdded))

		if start+ix.cfg.BatchSize < len(pending) {
			time.Sleep(batchDelay)
		}
	}

	if added > 0 {
		logging.Info("Scan added %d media records", added)
	}
	return added, nil
}

// Index runs a full pass: drop records whose files vanished or left the
// scan roots, add records for new files, and persist when anything
// changed. Concurrent calls are skipped.
func (ix *Indexer) Index(ctx context.Context) (ScanResult, error) {
	if !ix.tryStartIndexing() {
		logging.Info("Index already in progress, skipping...")
		return ScanResult{}, nil
	}
	defer ix.finishIndexing()

	metrics.IndexerIsRunning.Set(1)
	defer metrics.IndexerIsRunning.Set(0)
	metrics.IndexerRunsTotal.Inc()

	startTime := time.Now()
	logging.Info("Starting media scan...")

	files, err := ix.vault.List()
	if err != nil {
		metrics.IndexerErrors.Inc()
		return ScanResult{}, fmt.Errorf("list vault: %w", err)
	}

	existing := make(map[string]bool, len(files))
	for _, f := range files {
		existing[f.Path] = true
	}
	removed := ix.index.CleanupInvalid(func(p string) bool { return existing[p] }, ix.cfg.ScanRoots)
	metrics.IndexerRecordsRemoved.WithLabelValues("cleanup").Add(float64(removed))

	added, err := ix.Scan(ctx, files, ix.cfg.ScanRoots, ix.cfg.Extensions)
	if err != nil {
		metrics.IndexerErrors.Inc()
	}

	if added > 0 || removed > 0 {
		ix.persist()
	}

	result := ScanResult{
		FilesSeen: len(files),
		Added:     added,
		Removed:   removed,
		Duration:  time.Since(startTime),
	}
	ix.finalizeIndex(result)

	return result, err
}

func (ix *Indexer) persist() {
	if ix.store == nil {
		return
	}
	if err := ix.store.Save(ix.index); err != nil {
		metrics.IndexerErrors.Inc()
	}
}

// tryStartIndexing attempts to start indexing, returns false if already in progress.
func (ix *Indexer) tryStartIndexing() bool {
	ix.indexMu.Lock()
	defer ix.indexMu.Unlock()

	if ix.isIndexing {
		return false
	}
	ix.isIndexing = true
	return true
}

// finishIndexing marks indexing as complete.
func (ix *Indexer) finishIndexing() {
	ix.indexMu.Lock()
	defer ix.indexMu.Unlock()

	ix.isIndexing = false
	ix.initialIndexComplete = true
}

func (ix *Indexer) finalizeIndex(result ScanResult) {
	ix.indexMu.Lock()
	ix.lastIndexTime = time.Now()
	ix.lastResult = result
	ix.indexMu.Unlock()

	metrics.IndexerLastRunTimestamp.Set(float64(time.Now().Unix()))
	metrics.IndexerLastRunDuration.Set(result.Duration.Seconds())

	logging.Info("Scan complete: %d files seen, %d added, %d removed in %v",
		result.FilesSeen, result.Added, result.Removed, result.Duration)
}

// isUnder reports whether p lies inside directory dir.
func isUnder(p, dir string) bool {
	return strings.HasPrefix(p, strings.TrimSuffix(dir, "/")+"/")
}

// OnFileDeleted drops the record for a deleted file, or every record under
// a deleted directory, and persists.
func (ix *Indexer) OnFileDeleted(p string) int {
	p = mediatypes.ToSlash(p)
	removed := 0

	if _, ok := ix.index.RemoveByPath(p); ok {
		removed++
	}
	for _, rec := range ix.index.All() {
		if isUnder(rec.Path, p) && ix.index.Remove(rec.ID) {
			removed++
			if ix.cache != nil {
				ix.cache.Invalidate(rec.Path)
			}
		}
	}
	if ix.cache != nil {
		ix.cache.Invalidate(p)
	}

	if removed > 0 {
		metrics.IndexerRecordsRemoved.WithLabelValues("deleted").Add(float64(removed))
		logging.Debug("Removed %d media records for deleted %s", removed, p)
		ix.persist()
	}
	return removed
}

// OnFileRenamed moves the record at oldPath (or every record under a
// renamed directory) to the new path, keeping ids, and persists. A rename
// of an untracked file into a tracked location is handled as a create.
func (ix *Indexer) OnFileRenamed(ctx context.Context, oldPath, newPath string) int {
	oldPath = mediatypes.ToSlash(oldPath)
	newPath = mediatypes.ToSlash(newPath)
	moved := 0

	if _, ok := ix.index.Rename(oldPath, newPath); ok {
		moved++
	}
	oldDir := strings.TrimSuffix(oldPath, "/") + "/"
	newDir := strings.TrimSuffix(newPath, "/") + "/"
	for _, rec := range ix.index.All() {
		if !strings.HasPrefix(rec.Path, oldDir) {
			continue
		}
		target := newDir + strings.TrimPrefix(rec.Path, oldDir)
		if _, ok := ix.index.Rename(rec.Path, target); ok {
			moved++
			if ix.cache != nil {
				ix.cache.Invalidate(rec.Path)
			}
		}
	}
	if ix.cache != nil {
		ix.cache.Invalidate(oldPath)
	}

	if moved == 0 {
		_, _ = ix.OnFileCreated(ctx, newPath)
		return 0
	}

	logging.Debug("Renamed %d media records from %s to %s", moved, oldPath, newPath)
	ix.persist()
	return moved
}

// OnFileCreated adds a record for a new supported file under the scan
// roots. It reports whether a record was added.
func (ix *Indexer) OnFileCreated(ctx context.Context, p string) (bool, error) {
	p = mediatypes.ToSlash(p)
	kind, ok := ix.tracks(p, ix.roots, ix.cfg.Extensions)
	if !ok || ix.index.Has(p) {
		return false, nil
	}

	info, err := ix.vault.Stat(p)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", p, err)
	}

	ix.index.Add(ix.newRecord(ctx, info, kind))
	metrics.IndexerRecordsAdded.WithLabelValues("event").Inc()
	ix.persist()
	return true, nil
}

// OnFileModified refreshes size and modification time of a recorded file
// and re-probes images.
func (ix *Indexer) OnFileModified(ctx context.Context, p string) (bool, error) {
	p = mediatypes.ToSlash(p)
	rec, ok := ix.index.GetByPath(p)
	if !ok {
		return false, nil
	}

	info, err := ix.vault.Stat(p)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", p, err)
	}
	if ix.cache != nil {
		ix.cache.Invalidate(p)
	}

	rec.SetFileInfo(info.Size, info.ModTime)
	if rec.Type == mediatypes.KindImage && ix.cache != nil {
		if d, ok := ix.cache.GetResolution(ctx, dimensions.File{Path: p, ModTime: info.ModTime}); ok {
			rec.SetDimensions(d.Width, d.Height)
		}
	}

	ix.index.Add(rec)
	ix.persist()
	return true, nil
}

// Ensure returns the record for p, creating a default one the first time a
// supported vault file is asked about. p is canonicalized first, so "/a.png"
// and "./a.png" find the record stored for "a.png". Hidden files and files
// outside the scan roots are not tracked and yield ErrUnsupported.
// Concurrent calls for one path share the creation.
func (ix *Indexer) Ensure(ctx context.Context, p string) (model.MediaRecord, error) {
	p = filesystem.CleanPath(p)
	if rec, ok := ix.index.GetByPath(p); ok {
		return rec, nil
	}

	v, err, _ := ix.ensureGroup.Do(p, func() (interface{}, error) {
		if rec, ok := ix.index.GetByPath(p); ok {
			return rec, nil
		}

		kind, ok := ix.tracks(p, ix.roots, ix.cfg.Extensions)
		if !ok {
			return nil, fmt.Errorf("%s: %w", p, ErrUnsupported)
		}
		info, err := ix.vault.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if rec, ok := ix.index.GetByPath(info.Path); ok {
			return rec, nil
		}

		rec := ix.newRecord(ctx, info, kind)
		ix.index.Add(rec)
		metrics.IndexerRecordsAdded.WithLabelValues("lazy").Inc()
		ix.persist()
		return rec, nil
	})
	if err != nil {
		return model.MediaRecord{}, err
	}
	return v.(model.MediaRecord), nil
}

// HandleEvents applies vault change events until ch closes or ctx is done.
func (ix *Indexer) HandleEvents(ctx context.Context, ch <-chan filesystem.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			ix.handleEvent(ctx, ev)
		}
	}
}

func (ix *Indexer) handleEvent(ctx context.Context, ev filesystem.Event) {
	var err error
	switch ev.Type {
	case filesystem.EventCreate:
		_, err = ix.OnFileCreated(ctx, ev.Path)
	case filesystem.EventModify:
		_, err = ix.OnFileModified(ctx, ev.Path)
	case filesystem.EventDelete:
		ix.OnFileDeleted(ev.Path)
	case filesystem.EventRename:
		ix.OnFileRenamed(ctx, ev.OldPath, ev.Path)
	}
	if err != nil {
		logging.Warn("Failed to handle %s event for %s: %v", ev.Type, ev.Path, err)
		metrics.IndexerErrors.Inc()
	}
}

// Start runs the initial scan in the background and, when a rescan
// interval is configured, periodic rescans until Stop.
func (ix *Indexer) Start(ctx context.Context) {
	ix.wg.Add(1)
	go func() {
		defer ix.wg.Done()
		logging.Info("Starting initial scan in background...")
		if _, err := ix.Index(ctx); err != nil {
			logging.Error("Initial scan error: %v", err)
			ix.indexMu.Lock()
			ix.initialIndexError = err
			ix.indexMu.Unlock()
		}
	}()

	if ix.cfg.RescanInterval > 0 {
		ix.wg.Add(1)
		go ix.periodicIndex(ctx)
	}
}

// Stop stops periodic rescans and waits for running ones to finish.
func (ix *Indexer) Stop() {
	ix.stopOnce.Do(func() { close(ix.stopChan) })
	ix.wg.Wait()
}

func (ix *Indexer) periodicIndex(ctx context.Context) {
	defer ix.wg.Done()

	ticker := time.NewTicker(ix.cfg.RescanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logging.Debug("Periodic rescan triggered")
			if _, err := ix.Index(ctx); err != nil {
				logging.Error("periodic rescan failed: %v", err)
			}
		case <-ix.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// TriggerIndex starts a rescan in the background.
func (ix *Indexer) TriggerIndex(ctx context.Context) {
	go func() {
		if _, err := ix.Index(context.WithoutCancel(ctx)); err != nil {
			logging.Error("manually triggered rescan failed: %v", err)
		}
	}()
}

// IsIndexing returns whether a scan is currently in progress.
func (ix *Indexer) IsIndexing() bool {
	ix.indexMu.Lock()
	defer ix.indexMu.Unlock()
	return ix.isIndexing
}

// LastIndexTime returns the time of the last completed scan.
func (ix *Indexer) LastIndexTime() time.Time {
	ix.indexMu.Lock()
	defer ix.indexMu.Unlock()
	return ix.lastIndexTime
}

// HealthStatus contains health check information.
type HealthStatus struct {
	Ready             bool        `json:"ready"`
	Indexing          bool        `json:"indexing"`
	StartTime         time.Time   `json:"startTime"`
	Uptime            string      `json:"uptime"`
	LastIndexed       time.Time   `json:"lastIndexed,omitempty"`
	LastScan          *ScanResult `json:"lastScan,omitempty"`
	InitialIndexError string      `json:"initialIndexError,omitempty"`
	Records           int         `json:"records"`
}

// GetHealthStatus returns detailed health information.
func (ix *Indexer) GetHealthStatus() HealthStatus {
	ix.indexMu.Lock()
	defer ix.indexMu.Unlock()

	status := HealthStatus{
		Ready:       ix.initialIndexComplete,
		Indexing:    ix.isIndexing,
		StartTime:   ix.startTime,
		Uptime:      time.Since(ix.startTime).String(),
		LastIndexed: ix.lastIndexTime,
		Records:     ix.index.Len(),
	}
	if !ix.lastIndexTime.IsZero() {
		last := ix.lastResult
		status.LastScan = &last
	}
	if ix.initialIndexError != nil {
		status.InitialIndexError = ix.initialIndexError.Error()
	}
	return status
}
