// Package storage loads and saves the media index as a JSON file in the
// vault. The file is a pretty-printed array of records; older files without
// a type field are migrated on load.
package storage
