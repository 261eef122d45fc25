package model

import (
	"path"
	"strconv"
	"strings"
	"time"

	"media-catalog/internal/mediatypes"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// DateLayout is the ISO-8601 layout used for the record "date" field.
const DateLayout = "2006-01-02T15:04:05.000Z07:00"

// Placeholder resolution strings used until real dimensions are known, or
// permanently for kinds that never get probed.
const (
	ResolutionUnknown = "Unknown"
	ResolutionVideo   = "Video"
	ResolutionAudio   = "Audio"
)

// MediaRecord is the catalog entry for one media file in the vault.
type MediaRecord struct {
	ID           string          `json:"id"`
	Path         string          `json:"path"`
	Title        string          `json:"title"`
	Tags         []string        `json:"tags"`
	Date         string          `json:"date"`
	Size         string          `json:"size"`
	FileSize     *int64          `json:"fileSize,omitempty"`
	Resolution   string          `json:"resolution"`
	Width        *int            `json:"width,omitempty"`
	Height       *int            `json:"height,omitempty"`
	Format       string          `json:"format"`
	Description  string          `json:"description"`
	OriginalName string          `json:"originalName"`
	LastModified int64           `json:"lastModified"`
	Type         mediatypes.Kind `json:"type"`
}

// NewRecord builds a record with default fields for a file at p.
// The title defaults to the filename stem and the id is a fresh UUID.
func NewRecord(p string, kind mediatypes.Kind, now time.Time) MediaRecord {
	p = mediatypes.ToSlash(p)
	name := path.Base(p)

	rec := MediaRecord{
		ID:           uuid.NewString(),
		Path:         p,
		Title:        strings.TrimSuffix(name, path.Ext(name)),
		Tags:         []string{},
		Date:         FormatDate(now),
		Size:         humanize.Bytes(0),
		Resolution:   PlaceholderResolution(kind),
		Format:       mediatypes.Format(p),
		OriginalName: name,
		Type:         kind,
	}
	return rec
}

// PlaceholderResolution returns the resolution text shown before (or instead
// of) real pixel dimensions.
func PlaceholderResolution(kind mediatypes.Kind) string {
	switch kind {
	case mediatypes.KindVideo:
		return ResolutionVideo
	case mediatypes.KindAudio:
		return ResolutionAudio
	default:
		return ResolutionUnknown
	}
}

// FormatDate renders t in the record date layout, in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// FormatResolution renders pixel dimensions as "WxH".
func FormatResolution(width, height int) string {
	return strconv.Itoa(width) + "x" + strconv.Itoa(height)
}

// SetDimensions stores pixel dimensions and the derived resolution string.
func (r *MediaRecord) SetDimensions(width, height int) {
	w, h := width, height
	r.Width = &w
	r.Height = &h
	r.Resolution = FormatResolution(width, height)
}

// SetFileInfo stores the backing file's size and modification time.
func (r *MediaRecord) SetFileInfo(size int64, modTime time.Time) {
	s := size
	r.FileSize = &s
	r.Size = humanize.Bytes(uint64(max(size, 0)))
	r.LastModified = modTime.UnixMilli()
}

// Touch stamps the record's date with now.
func (r *MediaRecord) Touch(now time.Time) {
	r.Date = FormatDate(now)
}

// HasTag reports whether tag is present (case-sensitive).
func (r MediaRecord) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers cannot mutate index-owned state.
func (r MediaRecord) Clone() MediaRecord {
	out := r
	out.Tags = append([]string{}, r.Tags...)
	if r.FileSize != nil {
		v := *r.FileSize
		out.FileSize = &v
	}
	if r.Width != nil {
		v := *r.Width
		out.Width = &v
	}
	if r.Height != nil {
		v := *r.Height
		out.Height = &v
	}
	return out
}

// DedupeTags removes duplicate tags while keeping first-occurrence order.
// The result is never nil.
func DedupeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// CleanTags trims user-entered tags, drops empty ones and de-duplicates.
func CleanTags(tags []string) []string {
	trimmed := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			trimmed = append(trimmed, t)
		}
	}
	return DedupeTags(trimmed)
}
