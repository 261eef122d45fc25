package dimensions

import (
	"context"
	"sync"
	"time"

	"media-catalog/internal/logging"
	"media-catalog/internal/metrics"
	"media-catalog/internal/model"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Defaults for Config.
const (
	DefaultTTL                = 30 * time.Minute
	DefaultPreloadConcurrency = 5
	DefaultProbeTimeout       = 30 * time.Second
)

// Prober measures the pixel dimensions of a vault file.
type Prober interface {
	Probe(ctx context.Context, path string) (width, height int, err error)
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context, path string) (int, int, error)

// Probe calls f.
func (f ProberFunc) Probe(ctx context.Context, path string) (int, int, error) {
	return f(ctx, path)
}

// File identifies a probe target and its current modification time.
type File struct {
	Path    string
	ModTime time.Time
}

// Dimension is a cached probe result.
type Dimension struct {
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	Resolution    string    `json:"resolution"`
	LastFetchTime time.Time `json:"lastFetchTime"`
}

// Config configures a Cache.
type Config struct {
	TTL                time.Duration
	PreloadConcurrency int
	ProbeTimeout       time.Duration
	// Now overrides the clock. Nil means time.Now.
	Now func() time.Time
}

// Cache is a per-path TTL cache of image dimensions. An entry is served
// only while it is younger than the TTL and the file has not been modified
// since it was fetched. Concurrent lookups for the same path share one
// probe. Failed probes are not cached.
type Cache struct {
	prober       Prober
	ttl          time.Duration
	batchSize    int
	probeTimeout time.Duration
	now          func() time.Time

	mu      sync.Mutex
	entries map[string]Dimension
	group   singleflight.Group
}

// New creates a Cache backed by prober.
func New(prober Prober, cfg Config) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.PreloadConcurrency <= 0 {
		cfg.PreloadConcurrency = DefaultPreloadConcurrency
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Cache{
		prober:       prober,
		ttl:          cfg.TTL,
		batchSize:    cfg.PreloadConcurrency,
		probeTimeout: cfg.ProbeTimeout,
		now:          cfg.Now,
		entries:      make(map[string]Dimension),
	}
}

// valid reports whether d may be served for a file modified at modTime.
func (c *Cache) valid(d Dimension, modTime time.Time) bool {
	if c.now().Sub(d.LastFetchTime) >= c.ttl {
		return false
	}
	return !modTime.After(d.LastFetchTime)
}

func (c *Cache) lookup(f File) (Dimension, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, ok := c.entries[f.Path]
	if !ok {
		return Dimension{}, false
	}
	if !c.valid(d, f.ModTime) {
		delete(c.entries, f.Path)
		return Dimension{}, false
	}
	return d, true
}

// Peek returns the cached dimensions of f without probing.
func (c *Cache) Peek(f File) (Dimension, bool) {
	return c.lookup(f)
}

// GetResolution returns the dimensions of f, probing on a cache miss. It
// reports false when the probe fails or ctx is done first. A probe the
// caller stopped waiting for keeps running and its result is still cached.
func (c *Cache) GetResolution(ctx context.Context, f File) (Dimension, bool) {
	if d, ok := c.lookup(f); ok {
		metrics.DimensionCacheHits.Inc()
		return d, true
	}
	metrics.DimensionCacheMisses.Inc()

	ch := c.group.DoChan(f.Path, func() (interface{}, error) {
		return c.probe(context.WithoutCancel(ctx), f.Path)
	})

	select {
	case res := <-ch:
		if res.Shared {
			metrics.DimensionProbesCoalesced.Inc()
		}
		if res.Err != nil {
			logging.Debug("Could not get dimensions for %s: %v", f.Path, res.Err)
			return Dimension{}, false
		}
		return res.Val.(Dimension), true
	case <-ctx.Done():
		return Dimension{}, false
	}
}

func (c *Cache) probe(ctx context.Context, path string) (Dimension, error) {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	start := time.Now()
	width, height, err := c.prober.Probe(ctx, path)
	metrics.DimensionProbeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DimensionProbesTotal.WithLabelValues("error").Inc()
		return Dimension{}, err
	}
	metrics.DimensionProbesTotal.WithLabelValues("success").Inc()

	d := Dimension{
		Width:         width,
		Height:        height,
		Resolution:    model.FormatResolution(width, height),
		LastFetchTime: c.now(),
	}

	c.mu.Lock()
	c.entries[path] = d
	c.mu.Unlock()

	return d, nil
}

// Invalidate drops the entry for path.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]Dimension)
	c.mu.Unlock()
}

// Size returns the number of cached entries, including ones that have
// expired but not yet been looked up.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Preload warms the cache for files in fixed-size batches. Each batch runs
// concurrently and completes before the next starts. A non-positive limit
// uses the configured preload concurrency. Failed probes are skipped.
func (c *Cache) Preload(ctx context.Context, files []File, limit int) error {
	if limit <= 0 {
		limit = c.batchSize
	}

	for start := 0; start < len(files); start += limit {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(start+limit, len(files))
		var g errgroup.Group
		for _, f := range files[start:end] {
			g.Go(func() error {
				c.GetResolution(ctx, f)
				return nil
			})
		}
		_ = g.Wait()
	}
	return nil
}
