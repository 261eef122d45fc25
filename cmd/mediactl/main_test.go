package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"media-catalog/internal/model"
)

// newVault creates a vault with one PNG, one audio file and a note
// embedding the PNG, and points the configuration at it.
func newVault(t *testing.T) string {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "STORAGE_PATH", "SCAN_ROOTS", "SCAN_ROOT",
		"AUTO_TAG", "DEFAULT_TAGS", "RECENT_TAG_CAP", "CACHE_TTL", "PRELOAD_CONCURRENCY",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	dir := t.TempDir()
	t.Setenv("VAULT_DIR", dir)

	if err := os.MkdirAll(filepath.Join(dir, "attachments"), 0o755); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 32, 16))); err != nil {
		t.Fatal(err)
	}
	files := map[string][]byte{
		"attachments/sunset.png": buf.Bytes(),
		"attachments/theme.mp3":  []byte("ID3"),
		"notes/trip.md":          []byte("# Trip\n\n![[sunset.png]]\n"),
	}
	for p, data := range files {
		full := filepath.Join(dir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunWithoutCommand(t *testing.T) {
	code, _, stderr := runCLI(t, "")
	if code != 1 {
		t.Errorf("run() = %d, want 1", code)
	}
	if !strings.Contains(stderr, "Usage:") {
		t.Errorf("stderr = %q, want usage", stderr)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	newVault(t)

	code, _, stderr := runCLI(t, "", "frobnicate\x1b[2J")
	if code != 1 {
		t.Errorf("run() = %d, want 1", code)
	}
	if !strings.Contains(stderr, "Unknown command: frobnicate_") {
		t.Errorf("stderr = %q, want sanitized command name", stderr)
	}
	if strings.Contains(stderr, "\x1b") {
		t.Error("stderr contains a raw escape character")
	}
}

func TestSanitizeCommand(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"scan", "scan"},
		{"list-all_2", "list-all_2"},
		{"a b;c", "a_b_c"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeCommand(tt.in); got != tt.want {
			t.Errorf("sanitizeCommand(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScanListAndStats(t *testing.T) {
	dir := newVault(t)

	code, out, stderr := runCLI(t, "", "scan")
	if code != 0 {
		t.Fatalf("scan = %d, stderr %q", code, stderr)
	}
	if !strings.Contains(out, "2 added") {
		t.Errorf("scan output = %q, want 2 added", out)
	}
	if _, err := os.Stat(filepath.Join(dir, ".media-catalog", "media-data.json")); err != nil {
		t.Errorf("catalog file not written: %v", err)
	}

	code, out, _ = runCLI(t, "", "list")
	if code != 0 {
		t.Fatalf("list = %d", code)
	}
	var records []model.MediaRecord
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("list output is not JSON: %v\n%s", err, out)
	}
	if len(records) != 2 {
		t.Fatalf("list returned %d records, want 2", len(records))
	}

	_, out, _ = runCLI(t, "", "list", "-kind", "image")
	records = nil
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("list -kind output is not JSON: %v", err)
	}
	if len(records) != 1 || records[0].Path != "attachments/sunset.png" {
		t.Errorf("list -kind image = %+v, want sunset.png", records)
	}
	if records[0].Resolution != "32x16" {
		t.Errorf("Resolution = %q, want 32x16", records[0].Resolution)
	}

	if code, _, _ := runCLI(t, "", "list", "-kind", "document"); code != 1 {
		t.Errorf("list -kind document = %d, want 1", code)
	}

	code, out, _ = runCLI(t, "", "stats")
	if code != 0 || !strings.Contains(out, "Records:      2") {
		t.Errorf("stats = %d %q", code, out)
	}
}

func TestSearchAndRefs(t *testing.T) {
	newVault(t)
	if code, _, stderr := runCLI(t, "", "scan"); code != 0 {
		t.Fatalf("scan failed: %s", stderr)
	}

	_, out, _ := runCLI(t, "", "search", "SUNSET")
	var records []model.MediaRecord
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("search output is not JSON: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("search returned %d records, want 1", len(records))
	}

	if code, _, _ := runCLI(t, "", "search"); code != 1 {
		t.Errorf("search without keyword = %d, want 1", code)
	}

	code, out, _ := runCLI(t, "", "refs", "attachments/sunset.png")
	if code != 0 || !strings.Contains(out, "notes/trip.md") {
		t.Errorf("refs = %d %q, want notes/trip.md", code, out)
	}
}

func TestExportImport(t *testing.T) {
	dir := newVault(t)
	if code, _, stderr := runCLI(t, "", "scan"); code != 0 {
		t.Fatalf("scan failed: %s", stderr)
	}

	exportPath := filepath.Join(t.TempDir(), "export.json")
	if code, _, stderr := runCLI(t, "", "export", exportPath); code != 0 {
		t.Fatalf("export failed: %s", stderr)
	}

	code, _, stderr := runCLI(t, "", "import", exportPath)
	if code != 1 || !strings.Contains(stderr, "-yes") {
		t.Errorf("import without -yes = %d %q, want refusal", code, stderr)
	}

	empty := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(empty, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	code, out, stderr := runCLI(t, "", "import", "-yes", empty)
	if code != 0 || !strings.Contains(out, "Imported 0 records") {
		t.Fatalf("import -yes = %d %q %q", code, out, stderr)
	}
	data, err := os.ReadFile(filepath.Join(dir, ".media-catalog", "media-data.json"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("catalog after import = %s, want []", data)
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`{"not":"array"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if code, _, _ := runCLI(t, "", "import", "-yes", bad); code != 1 {
		t.Errorf("import of a non-array = %d, want 1", code)
	}
}

func TestCleanup(t *testing.T) {
	dir := newVault(t)
	if code, _, stderr := runCLI(t, "", "scan"); code != 0 {
		t.Fatalf("scan failed: %s", stderr)
	}
	if err := os.Remove(filepath.Join(dir, "attachments", "theme.mp3")); err != nil {
		t.Fatal(err)
	}

	code, out, _ := runCLI(t, "", "cleanup")
	if code != 0 || !strings.Contains(out, "Removed 1 records, 1 remain") {
		t.Errorf("cleanup = %d %q", code, out)
	}
}

func TestTags(t *testing.T) {
	newVault(t)
	t.Setenv("AUTO_TAG", "true")
	t.Setenv("DEFAULT_TAGS", "inbox,vault")
	if code, _, stderr := runCLI(t, "", "scan"); code != 0 {
		t.Fatalf("scan failed: %s", stderr)
	}

	_, out, _ := runCLI(t, "", "tags")
	if out != "inbox\nvault\n" {
		t.Errorf("tags = %q, want inbox and vault", out)
	}

	_, out, _ = runCLI(t, "", "tags", "-popular", "1")
	if out != "2\tinbox\n" {
		t.Errorf("tags -popular 1 = %q, want 2\\tinbox", out)
	}
}
