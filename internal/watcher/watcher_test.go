package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *collector) record(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *collector) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}

// waitFor polls until an event matching the predicate arrives or the
// deadline passes.
func (c *collector) waitFor(t *testing.T, match func(Event) bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		for _, e := range c.events {
			if match(e) {
				c.mu.Unlock()
				return
			}
		}
		c.mu.Unlock()
		time.Sleep(20 * time.Millisecond)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	t.Fatalf("expected event never arrived, got: %+v", c.events)
}

func startWatcher(t *testing.T, root string) *collector {
	t.Helper()
	c := &collector{}
	w, err := New(root, 50*time.Millisecond, c.record, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { w.Close() })

	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	return c
}

func TestNew_InvalidRoot(t *testing.T) {
	_, err := New("/nonexistent/media/root", 50*time.Millisecond, func(Event) {}, nil)
	if err == nil {
		t.Fatal("New() should fail for a missing root")
	}
}

func TestWatcher_CreateEvent(t *testing.T) {
	root := t.TempDir()
	c := startWatcher(t, root)

	if err := os.WriteFile(filepath.Join(root, "clip.mp4"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c.waitFor(t, func(e Event) bool {
		return e.Type == EventCreate && e.Path == "clip.mp4"
	})
}

func TestWatcher_DeleteEvent(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "clip.mp4")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c := startWatcher(t, root)
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}

	c.waitFor(t, func(e Event) bool {
		return e.Type == EventDelete && e.Path == "clip.mp4"
	})
}

func TestWatcher_RelativeSlashPaths(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "proj-1"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	c := startWatcher(t, root)
	if err := os.WriteFile(filepath.Join(root, "proj-1", "clip.mp4"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	// Event paths match asset storage paths: slash-separated, root-relative.
	c.waitFor(t, func(e Event) bool {
		return e.Path == "proj-1/clip.mp4"
	})
}

func TestWatcher_PicksUpNewDirectories(t *testing.T) {
	root := t.TempDir()
	c := startWatcher(t, root)

	// A project directory created after Start must still be watched.
	if err := os.Mkdir(filepath.Join(root, "proj-2"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(root, "proj-2", "clip.mp4"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c.waitFor(t, func(e Event) bool {
		return e.Type == EventCreate && e.Path == "proj-2/clip.mp4"
	})
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	root := t.TempDir()
	c := startWatcher(t, root)

	path := filepath.Join(root, "clip.mp4")
	for i := 0; i < 10; i++ {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(300 * time.Millisecond)

	c.mu.Lock()
	count := len(c.events)
	c.mu.Unlock()
	if count >= 10 {
		t.Errorf("got %d events for a 10-write burst, want far fewer", count)
	}
	if count == 0 {
		t.Error("burst produced no events at all")
	}
}

func TestWatcher_CloseIdempotent(t *testing.T) {
	w, err := New(t.TempDir(), 50*time.Millisecond, func(Event) {}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := w.Start(); err == nil {
		t.Error("Start() after Close should fail")
	}
}
