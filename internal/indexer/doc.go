// Package indexer keeps the media catalog in step with the vault.
//
// A full pass lists the vault, drops records whose files are gone or lie
// outside the scan roots, and creates default records for new supported
// files (probing image dimensions through the dimension cache and applying
// default tags when auto-tagging is on). Watcher events are applied one by
// one: creates add records, modifications refresh size and resolution,
// deletes remove records and renames move them while keeping their ids.
// Every change is persisted through the storage package.
package indexer
