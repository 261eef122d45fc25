package mediatypes

import (
	"path"
	"sort"
	"strings"
)

// Kind is the media discriminator stored in every record's "type" field.
type Kind string

const (
	// KindImage represents an image file.
	KindImage Kind = "image"
	// KindVideo represents a video file.
	KindVideo Kind = "video"
	// KindAudio represents an audio file.
	KindAudio Kind = "audio"
)

// Kinds lists every valid Kind in display order.
var Kinds = []Kind{KindImage, KindVideo, KindAudio}

// Valid reports whether k is one of the enumerated kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindImage, KindVideo, KindAudio:
		return true
	}
	return false
}

// ParseKind converts s to a Kind, reporting whether it was valid.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	return k, k.Valid()
}

// SortField specifies which field to sort by.
type SortField string

// SortOrder specifies the direction of sorting.
type SortOrder string

const (
	// SortByTitle sorts results by record title.
	SortByTitle SortField = "title"
	// SortByDate sorts results by the last metadata edit.
	SortByDate SortField = "date"
	// SortBySize sorts results by file size in bytes.
	SortBySize SortField = "size"
	// SortByType sorts results by media kind.
	SortByType SortField = "type"

	// SortAsc sorts in ascending order.
	SortAsc SortOrder = "asc"
	// SortDesc sorts in descending order.
	SortDesc SortOrder = "desc"
)

// ImageExtensions is the fixed image extension table used for classification.
var ImageExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
	"svg":  true,
	"bmp":  true,
}

// VideoExtensions is the fixed video extension table used for classification.
var VideoExtensions = map[string]bool{
	"mp4":  true,
	"avi":  true,
	"mov":  true,
	"mkv":  true,
	"webm": true,
}

// AudioExtensions is the fixed audio extension table used for classification.
var AudioExtensions = map[string]bool{
	"mp3":  true,
	"wav":  true,
	"flac": true,
	"aac":  true,
	"ogg":  true,
}

// MimeTypes maps extensions (without the dot) to their MIME types.
var MimeTypes = map[string]string{
	// Images
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
	"bmp":  "image/bmp",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
	"heic": "image/heic",

	// Videos
	"mp4":  "video/mp4",
	"avi":  "video/x-msvideo",
	"mov":  "video/quicktime",
	"mkv":  "video/x-matroska",
	"webm": "video/webm",

	// Audio
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"flac": "audio/flac",
	"aac":  "audio/aac",
	"ogg":  "audio/ogg",
}

// NormalizeExtension lowercases ext and strips a leading dot.
func NormalizeExtension(ext string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
}

// Extension returns the normalized extension of a vault path ("" if none).
func Extension(p string) string {
	return NormalizeExtension(path.Ext(ToSlash(p)))
}

// ToSlash converts backslashes to forward slashes regardless of platform.
// Vault paths are always slash separated, even when they came from Windows.
func ToSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// KindForExtension classifies ext against the fixed tables.
func KindForExtension(ext string) (Kind, bool) {
	ext = NormalizeExtension(ext)
	switch {
	case ImageExtensions[ext]:
		return KindImage, true
	case VideoExtensions[ext]:
		return KindVideo, true
	case AudioExtensions[ext]:
		return KindAudio, true
	}
	return "", false
}

// KindForPath classifies a path by extension, defaulting to KindImage when
// the extension is not recognized.
func KindForPath(p string) Kind {
	if k, ok := KindForExtension(Extension(p)); ok {
		return k
	}
	return KindImage
}

// Format returns the uppercased extension of p, e.g. "PNG".
func Format(p string) string {
	return strings.ToUpper(Extension(p))
}

// GetMimeType returns the MIME type for an extension (with or without dot).
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[NormalizeExtension(ext)]; ok {
		return mime
	}
	return "application/octet-stream"
}

// ExtensionSet is the configurable list of recognized extensions, grouped by
// kind. It drives which files the scanner picks up.
type ExtensionSet struct {
	Image []string `yaml:"image" json:"image"`
	Video []string `yaml:"video" json:"video"`
	Audio []string `yaml:"audio" json:"audio"`
}

// DefaultExtensionSet returns the fixed tables as a configurable set.
func DefaultExtensionSet() ExtensionSet {
	return ExtensionSet{
		Image: sortedKeys(ImageExtensions),
		Video: sortedKeys(VideoExtensions),
		Audio: sortedKeys(AudioExtensions),
	}
}

// Classify returns the kind ext belongs to within this set.
func (s ExtensionSet) Classify(ext string) (Kind, bool) {
	ext = NormalizeExtension(ext)
	if contains(s.Image, ext) {
		return KindImage, true
	}
	if contains(s.Video, ext) {
		return KindVideo, true
	}
	if contains(s.Audio, ext) {
		return KindAudio, true
	}
	return "", false
}

// Supports reports whether ext is recognized by this set.
func (s ExtensionSet) Supports(ext string) bool {
	_, ok := s.Classify(ext)
	return ok
}

// All returns every extension in the set, normalized.
func (s ExtensionSet) All() []string {
	out := make([]string, 0, len(s.Image)+len(s.Video)+len(s.Audio))
	for _, group := range [][]string{s.Image, s.Video, s.Audio} {
		for _, ext := range group {
			out = append(out, NormalizeExtension(ext))
		}
	}
	return out
}

// IsEmpty reports whether no extension is configured at all.
func (s ExtensionSet) IsEmpty() bool {
	return len(s.Image) == 0 && len(s.Video) == 0 && len(s.Audio) == 0
}

func contains(list []string, ext string) bool {
	for _, e := range list {
		if NormalizeExtension(e) == ext {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
