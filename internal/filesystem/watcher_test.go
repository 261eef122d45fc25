package filesystem

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitFor(t *testing.T, w *Watcher, typ EventType, p string) Event {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev, ok := <-w.Events():
			if !ok {
				t.Fatalf("events closed while waiting for %s %s", typ, p)
			}
			if ev.Type == typ && ev.Path == p {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s %s", typ, p)
		}
	}
}

func TestWatcherEvents(t *testing.T) {
	v, dir := newTestVault(t)
	w, err := NewWatcher(v, 200*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	writeFile(t, dir, "a.png", "1")
	waitFor(t, w, EventCreate, "a.png")

	if err := os.Rename(filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png")); err != nil {
		t.Fatal(err)
	}
	ev := waitFor(t, w, EventRename, "b.png")
	if ev.OldPath != "a.png" {
		t.Errorf("rename OldPath = %q, want a.png", ev.OldPath)
	}

	if err := os.Remove(filepath.Join(dir, "b.png")); err != nil {
		t.Fatal(err)
	}
	waitFor(t, w, EventDelete, "b.png")
}

func TestWatcherUnpairedRenameIsDelete(t *testing.T) {
	v, dir := newTestVault(t)
	outside := t.TempDir()
	writeFile(t, dir, "gone.png", "1")

	w, err := NewWatcher(v, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	if err := os.Rename(filepath.Join(dir, "gone.png"), filepath.Join(outside, "gone.png")); err != nil {
		t.Fatal(err)
	}
	waitFor(t, w, EventDelete, "gone.png")
}

func TestWatcherIgnoresHidden(t *testing.T) {
	v, dir := newTestVault(t)
	w, err := NewWatcher(v, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	writeFile(t, dir, ".media.json", "[]")
	writeFile(t, dir, "visible.png", "1")

	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-w.Events():
			if ev.Path == ".media.json" {
				t.Fatalf("hidden file reported: %+v", ev)
			}
			if ev.Type == EventCreate && ev.Path == "visible.png" {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for visible.png")
		}
	}
}

func TestWatcherCloseClosesEvents(t *testing.T) {
	v, _ := newTestVault(t)
	w, err := NewWatcher(v, 0)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if _, ok := <-w.Events(); ok {
		t.Error("Events() still open after Close")
	}
	_ = w.Close()
}
