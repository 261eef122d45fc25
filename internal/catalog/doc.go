// Package catalog holds the in-memory media metadata index.
//
// An Index stores MediaRecords keyed by id with a derived path index, keeps
// insertion order for listing, and tracks recently used tags. It supports
// keyword and tag search, tag frequency aggregation, JSON import and export
// with legacy schema migration, and a cleanup sweep that drops records whose
// files are gone or that fall outside the configured scan roots.
//
// All methods are safe for concurrent use.
package catalog
