package metrics

import (
	"errors"
	"testing"
	"time"

	"media-catalog/internal/catalog"
	"media-catalog/internal/mediatypes"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeStats struct {
	stats catalog.Stats
}

func (f fakeStats) Stats() catalog.Stats { return f.stats }

type fakeSize int

func (f fakeSize) Size() int { return int(f) }

func TestInitializeMetrics(t *testing.T) {
	InitializeMetrics()

	tests := []struct {
		name string
		got  int
		want int
	}{
		{"records per kind", testutil.CollectAndCount(CatalogRecordsTotal), len(mediatypes.Kinds)},
		{"edit fields", testutil.CollectAndCount(CatalogEditsTotal), 3},
		{"removal reasons", testutil.CollectAndCount(IndexerRecordsRemoved), 3},
		{"watcher event types", testutil.CollectAndCount(WatcherEventsTotal), 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got < tt.want {
				t.Errorf("series = %d, want at least %d", tt.got, tt.want)
			}
		})
	}
}

func TestCollectorCollect(t *testing.T) {
	provider := fakeStats{stats: catalog.Stats{
		TotalRecords: 6,
		ByKind: map[mediatypes.Kind]int{
			mediatypes.KindImage: 3,
			mediatypes.KindVideo: 2,
			mediatypes.KindAudio: 1,
		},
		TotalTags:  7,
		RecentTags: 4,
	}}

	c := NewCollector(provider, fakeSize(12), time.Hour)
	c.collect()

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"images", testutil.ToFloat64(CatalogRecordsTotal.WithLabelValues("image")), 3},
		{"videos", testutil.ToFloat64(CatalogRecordsTotal.WithLabelValues("video")), 2},
		{"audio", testutil.ToFloat64(CatalogRecordsTotal.WithLabelValues("audio")), 1},
		{"tags", testutil.ToFloat64(CatalogTagsTotal), 7},
		{"recent tags", testutil.ToFloat64(CatalogRecentTags), 4},
		{"cache entries", testutil.ToFloat64(DimensionCacheEntries), 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("value = %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestCollectorWithoutProviders(t *testing.T) {
	c := NewCollector(nil, nil, time.Hour)
	c.collect()
}

func TestCollectorStartStop(t *testing.T) {
	c := NewCollector(fakeStats{stats: catalog.Stats{ByKind: map[mediatypes.Kind]int{}}}, nil, 10*time.Millisecond)
	c.Start()
	time.Sleep(30 * time.Millisecond)
	c.Stop()
}

func TestFilesystemObserver(t *testing.T) {
	obs := NewFilesystemObserver()

	errorsBefore := testutil.ToFloat64(FilesystemOperationErrors.WithLabelValues("vault", "read"))
	obs.ObserveOperation("vault", "read", 0.01, nil)
	obs.ObserveOperation("vault", "read", 0.02, errors.New("boom"))
	if got := testutil.ToFloat64(FilesystemOperationErrors.WithLabelValues("vault", "read")) - errorsBefore; got != 1 {
		t.Errorf("operation errors delta = %v, want 1", got)
	}

	attemptsBefore := testutil.ToFloat64(FilesystemRetryAttempts.WithLabelValues("stat", "vault"))
	obs.ObserveRetryAttempt("stat", "vault")
	obs.ObserveRetryAttempt("stat", "vault")
	if got := testutil.ToFloat64(FilesystemRetryAttempts.WithLabelValues("stat", "vault")) - attemptsBefore; got != 2 {
		t.Errorf("retry attempts delta = %v, want 2", got)
	}

	eventsBefore := testutil.ToFloat64(WatcherEventsTotal.WithLabelValues("create"))
	obs.ObserveWatcherEvent("create")
	if got := testutil.ToFloat64(WatcherEventsTotal.WithLabelValues("create")) - eventsBefore; got != 1 {
		t.Errorf("watcher events delta = %v, want 1", got)
	}

	obs.SetWatchedDirectories(9)
	if got := testutil.ToFloat64(WatchedDirectories); got != 9 {
		t.Errorf("WatchedDirectories = %v, want 9", got)
	}
}
