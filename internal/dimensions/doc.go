// Package dimensions caches pixel dimensions of vault images.
//
// Cache wraps a Prober with a per-path TTL (30 minutes by default). Entries
// are discarded once the backing file's modification time is newer than
// the fetch time. Concurrent lookups of one path are coalesced with
// singleflight, and Preload warms the cache in bounded batches.
package dimensions
