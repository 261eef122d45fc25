package mediatypes

import (
	"testing"
)

func TestKindForExtension(t *testing.T) {
	tests := []struct {
		name   string
		ext    string
		want   Kind
		wantOK bool
	}{
		{name: "JPEG image", ext: "jpg", want: KindImage, wantOK: true},
		{name: "Dotted uppercase PNG", ext: ".PNG", want: KindImage, wantOK: true},
		{name: "SVG image", ext: "svg", want: KindImage, wantOK: true},
		{name: "MP4 video", ext: "mp4", want: KindVideo, wantOK: true},
		{name: "WEBM video", ext: "webm", want: KindVideo, wantOK: true},
		{name: "FLAC audio", ext: "flac", want: KindAudio, wantOK: true},
		{name: "OGG audio", ext: ".ogg", want: KindAudio, wantOK: true},
		{name: "Unknown extension", ext: "xyz", wantOK: false},
		{name: "Empty extension", ext: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := KindForExtension(tt.ext)
			if ok != tt.wantOK {
				t.Fatalf("KindForExtension(%q) ok = %v, want %v", tt.ext, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("KindForExtension(%q) = %v, want %v", tt.ext, got, tt.want)
			}
		})
	}
}

func TestKindForPath(t *testing.T) {
	tests := []struct {
		path string
		want Kind
	}{
		{"x.jpg", KindImage},
		{"clips/intro.MOV", KindVideo},
		{`music\song.mp3`, KindAudio},
		{"docs/readme.txt", KindImage},
		{"no-extension", KindImage},
		{"dir.with.dots/file", KindImage},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := KindForPath(tt.path); got != tt.want {
				t.Errorf("KindForPath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a/b/photo.jpeg", "JPEG"},
		{"a/b/Photo.Png", "PNG"},
		{"song.flac", "FLAC"},
		{"noext", ""},
	}

	for _, tt := range tests {
		if got := Format(tt.path); got != tt.want {
			t.Errorf("Format(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in     string
		want   Kind
		wantOK bool
	}{
		{"image", KindImage, true},
		{"Video", KindVideo, true},
		{" audio ", KindAudio, true},
		{"document", Kind("document"), false},
		{"", Kind(""), false},
	}

	for _, tt := range tests {
		got, ok := ParseKind(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseKind(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestGetMimeType(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		want string
	}{
		{name: "JPEG mime type", ext: ".jpg", want: "image/jpeg"},
		{name: "PNG without dot", ext: "png", want: "image/png"},
		{name: "MP4 mime type", ext: ".mp4", want: "video/mp4"},
		{name: "MP3 mime type", ext: "mp3", want: "audio/mpeg"},
		{name: "Unknown extension returns octet-stream", ext: ".unknown", want: "application/octet-stream"},
		{name: "Empty extension returns octet-stream", ext: "", want: "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetMimeType(tt.ext)
			if got != tt.want {
				t.Errorf("GetMimeType(%q) = %v, want %v", tt.ext, got, tt.want)
			}
		})
	}
}

func TestExtensionSet(t *testing.T) {
	set := ExtensionSet{
		Image: []string{".PNG", "jpg"},
		Video: []string{"mp4"},
	}

	if k, ok := set.Classify("png"); !ok || k != KindImage {
		t.Errorf("Classify(png) = (%v, %v), want (image, true)", k, ok)
	}
	if k, ok := set.Classify(".MP4"); !ok || k != KindVideo {
		t.Errorf("Classify(.MP4) = (%v, %v), want (video, true)", k, ok)
	}
	if set.Supports("mp3") {
		t.Error("Supports(mp3) = true, want false for a set without audio")
	}
	if got := len(set.All()); got != 3 {
		t.Errorf("len(All()) = %d, want 3", got)
	}
	if set.IsEmpty() {
		t.Error("IsEmpty() = true, want false")
	}
	if !(ExtensionSet{}).IsEmpty() {
		t.Error("zero ExtensionSet should be empty")
	}
}

func TestDefaultExtensionSetMatchesTables(t *testing.T) {
	set := DefaultExtensionSet()
	for ext := range ImageExtensions {
		if k, _ := set.Classify(ext); k != KindImage {
			t.Errorf("default set classifies %s as %v, want image", ext, k)
		}
	}
	for ext := range VideoExtensions {
		if k, _ := set.Classify(ext); k != KindVideo {
			t.Errorf("default set classifies %s as %v, want video", ext, k)
		}
	}
	for ext := range AudioExtensions {
		if k, _ := set.Classify(ext); k != KindAudio {
			t.Errorf("default set classifies %s as %v, want audio", ext, k)
		}
	}
}

func TestKindConstants(t *testing.T) {
	if KindImage != "image" {
		t.Errorf("KindImage = %v, want 'image'", KindImage)
	}
	if KindVideo != "video" {
		t.Errorf("KindVideo = %v, want 'video'", KindVideo)
	}
	if KindAudio != "audio" {
		t.Errorf("KindAudio = %v, want 'audio'", KindAudio)
	}
	for _, k := range Kinds {
		if !k.Valid() {
			t.Errorf("%v.Valid() = false", k)
		}
	}
}
