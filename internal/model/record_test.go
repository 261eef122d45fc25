package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"media-catalog/internal/mediatypes"
)

func TestNewRecordDefaults(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := NewRecord(`attachments\Holiday Photo.JPG`, mediatypes.KindImage, now)

	if rec.ID == "" {
		t.Error("ID should be generated")
	}
	if rec.Path != "attachments/Holiday Photo.JPG" {
		t.Errorf("Path = %q, want slash separated path", rec.Path)
	}
	if rec.Title != "Holiday Photo" {
		t.Errorf("Title = %q, want filename stem", rec.Title)
	}
	if rec.OriginalName != "Holiday Photo.JPG" {
		t.Errorf("OriginalName = %q, want %q", rec.OriginalName, "Holiday Photo.JPG")
	}
	if rec.Format != "JPG" {
		t.Errorf("Format = %q, want JPG", rec.Format)
	}
	if rec.Date != "2024-03-01T12:00:00.000Z" {
		t.Errorf("Date = %q, want 2024-03-01T12:00:00.000Z", rec.Date)
	}
	if rec.Tags == nil || len(rec.Tags) != 0 {
		t.Errorf("Tags = %v, want empty non-nil slice", rec.Tags)
	}
	if rec.Resolution != ResolutionUnknown {
		t.Errorf("Resolution = %q, want %q", rec.Resolution, ResolutionUnknown)
	}
	if rec.Type != mediatypes.KindImage {
		t.Errorf("Type = %v, want image", rec.Type)
	}
}

func TestNewRecordUniqueIDs(t *testing.T) {
	now := time.Now()
	a := NewRecord("a.png", mediatypes.KindImage, now)
	b := NewRecord("a.png", mediatypes.KindImage, now)
	if a.ID == b.ID {
		t.Errorf("expected distinct ids, both were %q", a.ID)
	}
}

func TestPlaceholderResolution(t *testing.T) {
	tests := []struct {
		kind mediatypes.Kind
		want string
	}{
		{mediatypes.KindImage, ResolutionUnknown},
		{mediatypes.KindVideo, ResolutionVideo},
		{mediatypes.KindAudio, ResolutionAudio},
	}
	for _, tt := range tests {
		if got := PlaceholderResolution(tt.kind); got != tt.want {
			t.Errorf("PlaceholderResolution(%v) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestSetDimensionsAndFileInfo(t *testing.T) {
	rec := NewRecord("x.png", mediatypes.KindImage, time.Now())
	rec.SetDimensions(1920, 1080)

	if rec.Resolution != "1920x1080" {
		t.Errorf("Resolution = %q, want 1920x1080", rec.Resolution)
	}
	if rec.Width == nil || *rec.Width != 1920 || rec.Height == nil || *rec.Height != 1080 {
		t.Errorf("Width/Height not set correctly: %v/%v", rec.Width, rec.Height)
	}

	mod := time.UnixMilli(1700000000123)
	rec.SetFileInfo(1500000, mod)
	if rec.FileSize == nil || *rec.FileSize != 1500000 {
		t.Errorf("FileSize = %v, want 1500000", rec.FileSize)
	}
	if rec.Size != "1.5 MB" {
		t.Errorf("Size = %q, want 1.5 MB", rec.Size)
	}
	if rec.LastModified != 1700000000123 {
		t.Errorf("LastModified = %d, want 1700000000123", rec.LastModified)
	}
}

func TestCloneIsDeep(t *testing.T) {
	rec := NewRecord("x.png", mediatypes.KindImage, time.Now())
	rec.Tags = []string{"a"}
	rec.SetDimensions(10, 20)

	clone := rec.Clone()
	clone.Tags[0] = "changed"
	*clone.Width = 99

	if rec.Tags[0] != "a" {
		t.Error("Clone shares the tags slice")
	}
	if *rec.Width != 10 {
		t.Error("Clone shares the width pointer")
	}
}

func TestDedupeTags(t *testing.T) {
	got := DedupeTags([]string{"b", "a", "b", "A", "a"})
	want := []string{"b", "a", "A"}
	if len(got) != len(want) {
		t.Fatalf("DedupeTags = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DedupeTags[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if DedupeTags(nil) == nil {
		t.Error("DedupeTags(nil) should return an empty non-nil slice")
	}
}

func TestCleanTags(t *testing.T) {
	got := CleanTags([]string{" trip ", "", "trip", "  ", "sea"})
	if len(got) != 2 || got[0] != "trip" || got[1] != "sea" {
		t.Errorf("CleanTags = %v, want [trip sea]", got)
	}
}

func TestValidateRecord(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr bool
		field   string
	}{
		{
			name: "valid with type",
			json: `{"id":"a","path":"x.jpg","title":"X","tags":["t"],"date":"d","description":"","type":"video"}`,
		},
		{
			name: "valid legacy without type",
			json: `{"id":"a","path":"x.jpg","title":"X","tags":[],"date":"d","description":""}`,
		},
		{
			name:    "not an object",
			json:    `["a"]`,
			wantErr: true,
		},
		{
			name:    "missing id",
			json:    `{"path":"x.jpg","title":"X","tags":[],"date":"d","description":""}`,
			wantErr: true,
			field:   "id",
		},
		{
			name:    "numeric title",
			json:    `{"id":"a","path":"x.jpg","title":5,"tags":[],"date":"d","description":""}`,
			wantErr: true,
			field:   "title",
		},
		{
			name:    "null description",
			json:    `{"id":"a","path":"x.jpg","title":"X","tags":[],"date":"d","description":null}`,
			wantErr: true,
			field:   "description",
		},
		{
			name:    "tags not array",
			json:    `{"id":"a","path":"x.jpg","title":"X","tags":"t","date":"d","description":""}`,
			wantErr: true,
			field:   "tags",
		},
		{
			name:    "tags with number",
			json:    `{"id":"a","path":"x.jpg","title":"X","tags":["t",1],"date":"d","description":""}`,
			wantErr: true,
			field:   "tags",
		},
		{
			name:    "unknown type",
			json:    `{"id":"a","path":"x.jpg","title":"X","tags":[],"date":"d","description":"","type":"document"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecord(json.RawMessage(tt.json))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateRecord() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.field != "" {
				var fe *FieldError
				if !errors.As(err, &fe) || fe.Field != tt.field {
					t.Errorf("ValidateRecord() error = %v, want FieldError for %q", err, tt.field)
				}
			}
			if IsValidRecord(json.RawMessage(tt.json)) == tt.wantErr {
				t.Errorf("IsValidRecord() disagrees with ValidateRecord()")
			}
		})
	}
}

func TestDecodeRecordLegacyAndCanonical(t *testing.T) {
	legacy, err := DecodeRecord(json.RawMessage(`{"id":"a","path":"x.mp3","title":"X","tags":[],"date":"d","description":""}`))
	if err != nil {
		t.Fatalf("DecodeRecord() error = %v", err)
	}
	if !legacy.IsLegacy() {
		t.Error("expected legacy record")
	}
	if _, err := legacy.Canonical(); err == nil {
		t.Error("Canonical() should fail for a legacy record")
	}

	rec, err := legacy.WithType(mediatypes.KindAudio).Canonical()
	if err != nil {
		t.Fatalf("Canonical() error = %v", err)
	}
	if rec.Type != mediatypes.KindAudio || rec.ID != "a" || rec.Path != "x.mp3" {
		t.Errorf("Canonical() = %+v, fields not preserved", rec)
	}
}

func TestRawRecordJSONShape(t *testing.T) {
	rec := NewRecord("x.png", mediatypes.KindImage, time.Now())
	data, err := json.Marshal(FromRecord(rec))
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if obj["type"] != "image" {
		t.Errorf("type = %v, want image", obj["type"])
	}
	if _, ok := obj["width"]; ok {
		t.Error("width should be omitted when unknown")
	}
}
