package migration

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"media-catalog/internal/logging"
	"media-catalog/internal/mediatypes"
	"media-catalog/internal/model"
)

// ErrNotArray is returned when the top-level JSON value is not an array.
var ErrNotArray = errors.New("top-level JSON value is not an array")

// Skipped describes an element that failed validation during decode.
type Skipped struct {
	Index int
	Err   error
}

// ParseArray splits data into its top-level array elements. Malformed JSON
// is returned as a wrapped decode error, a non-array value as ErrNotArray.
func ParseArray(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("parse records: %w", errors.New("empty input"))
	}

	var v interface{}
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return nil, fmt.Errorf("parse records: %w", err)
	}
	if _, ok := v.([]interface{}); !ok {
		return nil, ErrNotArray
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, fmt.Errorf("parse records: %w", err)
	}
	return elems, nil
}

// DecodeAll validates and decodes each element. Invalid elements are
// reported in skipped and left out of records.
func DecodeAll(elems []json.RawMessage) (records []model.RawRecord, skipped []Skipped) {
	records = make([]model.RawRecord, 0, len(elems))
	for i, elem := range elems {
		rec, err := model.DecodeRecord(elem)
		if err != nil {
			skipped = append(skipped, Skipped{Index: i, Err: err})
			continue
		}
		records = append(records, rec)
	}
	return records, skipped
}

// IsLegacy reports whether records use the old schema, judged by the first
// element only: true iff the slice is non-empty and records[0] has no type.
//
// A mixed slice whose first element already carries a type is not detected
// here; use Normalize, which checks every element.
func IsLegacy(records []model.RawRecord) bool {
	return len(records) > 0 && records[0].IsLegacy()
}

// Migrate returns a copy of records with the type derived from each path's
// extension. Unrecognized extensions become images. Records that already
// carry a type keep it. Pure; no I/O.
func Migrate(records []model.RawRecord) []model.RawRecord {
	out := make([]model.RawRecord, len(records))
	for i, rec := range records {
		if rec.IsLegacy() {
			rec = rec.WithType(mediatypes.KindForPath(rec.Path))
		}
		out[i] = rec
	}
	return out
}

// Normalize migrates every legacy element regardless of what the first
// element looks like, so mixed arrays cannot leak untyped records.
func Normalize(records []model.RawRecord) []model.RawRecord {
	legacy := 0
	for _, rec := range records {
		if rec.IsLegacy() {
			legacy++
		}
	}
	if legacy == 0 {
		return records
	}
	if !IsLegacy(records) {
		logging.Warn("Mixed schema: %d of %d records have no type, migrating them individually", legacy, len(records))
	} else {
		logging.Info("Migrating %d legacy media records", legacy)
	}
	return Migrate(records)
}

// LoadWithMigration parses jsonText into records, migrating legacy ones.
// A non-array document logs an error and yields an empty slice; malformed
// JSON is returned as an error.
func LoadWithMigration(data []byte) ([]model.RawRecord, error) {
	elems, err := ParseArray(data)
	if errors.Is(err, ErrNotArray) {
		logging.Error("Media data is not an array, ignoring it")
		return []model.RawRecord{}, nil
	}
	if err != nil {
		return nil, err
	}

	records, skipped := DecodeAll(elems)
	for _, s := range skipped {
		logging.Warn("Skipping invalid media record at index %d: %v", s.Index, s.Err)
	}

	return Normalize(records), nil
}
