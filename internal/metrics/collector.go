package metrics

import (
	"time"

	"media-catalog/internal/catalog"
	"media-catalog/internal/logging"
)

// StatsProvider reports index statistics. *catalog.Index implements it.
type StatsProvider interface {
	Stats() catalog.Stats
}

// SizeProvider reports a cache entry count.
type SizeProvider interface {
	Size() int
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	cache         SizeProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector. cache may be nil.
func NewCollector(provider StatsProvider, cache SizeProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		cache:         cache,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.cache != nil {
		DimensionCacheEntries.Set(float64(c.cache.Size()))
	}

	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.Stats()

	for kind, n := range stats.ByKind {
		CatalogRecordsTotal.WithLabelValues(string(kind)).Set(float64(n))
	}
	CatalogTagsTotal.Set(float64(stats.TotalTags))
	CatalogRecentTags.Set(float64(stats.RecentTags))

	logging.Debug("Metrics collected: records=%d, tags=%d, recent=%d",
		stats.TotalRecords, stats.TotalTags, stats.RecentTags)
}
