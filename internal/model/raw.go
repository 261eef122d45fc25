package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"media-catalog/internal/mediatypes"
)

// RawRecord is the decode-side variant of MediaRecord: "type" may be absent,
// which marks a record written by an older schema. Nothing holding a
// RawRecord may enter the index until Canonical succeeds.
type RawRecord struct {
	MediaRecord
	Type *mediatypes.Kind `json:"type,omitempty"`
}

// IsLegacy reports whether the record lacks the media kind discriminator.
func (r RawRecord) IsLegacy() bool {
	return r.Type == nil
}

// WithType returns a copy of r carrying kind as its discriminator.
func (r RawRecord) WithType(kind mediatypes.Kind) RawRecord {
	k := kind
	r.Type = &k
	return r
}

// Canonical converts r to a MediaRecord. It fails for legacy records, which
// must be migrated first.
func (r RawRecord) Canonical() (MediaRecord, error) {
	if r.Type == nil {
		return MediaRecord{}, fmt.Errorf("record %q has no type", r.ID)
	}
	if !r.Type.Valid() {
		return MediaRecord{}, fmt.Errorf("record %q has invalid type %q", r.ID, *r.Type)
	}
	rec := r.MediaRecord
	rec.Type = *r.Type
	if rec.Tags == nil {
		rec.Tags = []string{}
	}
	return rec, nil
}

// FromRecord wraps a canonical record as a RawRecord.
func FromRecord(rec MediaRecord) RawRecord {
	r := RawRecord{MediaRecord: rec}
	return r.WithType(rec.Type)
}

// Validation errors returned by ValidateRecord.
var (
	ErrNotObject   = errors.New("record is not a JSON object")
	ErrInvalidType = errors.New("record type is not image, video or audio")
)

// FieldError reports a required field that is missing or has the wrong JSON type.
type FieldError struct {
	Field string
	Want  string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q must be %s", e.Field, e.Want)
}

// ValidateRecord checks the shape of one JSON element: string id, path,
// title, date and description, an all-string tags array, and, when present,
// a type that is one of the enumerated kinds. An absent type is accepted
// because the caller migrates legacy records.
func ValidateRecord(data json.RawMessage) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return ErrNotObject
	}

	for _, field := range []string{"id", "path", "title", "date", "description"} {
		if !isString(obj[field]) {
			return &FieldError{Field: field, Want: "a string"}
		}
	}

	var tags []interface{}
	if raw, ok := obj["tags"]; !ok || json.Unmarshal(raw, &tags) != nil || tags == nil {
		return &FieldError{Field: "tags", Want: "an array"}
	}
	for _, tag := range tags {
		if _, ok := tag.(string); !ok {
			return &FieldError{Field: "tags", Want: "an array of strings"}
		}
	}

	if raw, ok := obj["type"]; ok {
		var kind string
		if err := json.Unmarshal(raw, &kind); err != nil || !mediatypes.Kind(kind).Valid() {
			return ErrInvalidType
		}
	}

	return nil
}

// IsValidRecord is ValidateRecord as a predicate.
func IsValidRecord(data json.RawMessage) bool {
	return ValidateRecord(data) == nil
}

// DecodeRecord validates and decodes a single JSON element.
func DecodeRecord(data json.RawMessage) (RawRecord, error) {
	if err := ValidateRecord(data); err != nil {
		return RawRecord{}, err
	}
	var r RawRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return RawRecord{}, fmt.Errorf("decode record: %w", err)
	}
	return r, nil
}

func isString(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return false
	}
	var s string
	return json.Unmarshal(raw, &s) == nil
}
