// Package model defines the catalog record and its decode-side legacy variant.
//
// MediaRecord is the canonical shape held by the index. RawRecord is what
// comes off the wire: its "type" may be missing, in which case it belongs to
// the legacy schema and has to go through the migration package before it
// can be converted with Canonical.
package model
