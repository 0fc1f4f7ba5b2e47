package watch

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestDebouncer(t *testing.T) {
	t.Run("collapses a burst into one callback", func(t *testing.T) {
		d := NewDebouncer(20 * time.Millisecond)
		defer d.Stop()

		var mu sync.Mutex
		var calls [][]string
		d.SetCallback(func(files []string) {
			mu.Lock()
			defer mu.Unlock()
			sort.Strings(files)
			calls = append(calls, files)
		})

		d.Add("a")
		d.Add("b")
		d.Add("a")

		time.Sleep(100 * time.Millisecond)

		mu.Lock()
		defer mu.Unlock()
		if len(calls) != 1 {
			t.Fatalf("expected 1 callback, got %d", len(calls))
		}
		if len(calls[0]) != 2 || calls[0][0] != "a" || calls[0][1] != "b" {
			t.Errorf("unexpected files: %v", calls[0])
		}
	})

	t.Run("stop disarms a pending timer", func(t *testing.T) {
		d := NewDebouncer(20 * time.Millisecond)

		fired := make(chan struct{}, 1)
		d.SetCallback(func([]string) { fired <- struct{}{} })

		d.Add("a")
		d.Stop()

		select {
		case <-fired:
			t.Error("callback fired after Stop")
		case <-time.After(100 * time.Millisecond):
		}
	})
}

func TestWatcher(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "object", "vector.sf"), 0o755); err != nil {
		t.Fatal(err)
	}

	fired := make(chan struct{}, 8)
	w, err := New(root, 20*time.Millisecond, zap.NewNop(), func() error {
		fired <- struct{}{}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(root, "object", "OBJECT"), []byte(`{"type":"atomic_vector"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Error("expected a re-validation after a file change")
	}
}

func TestShouldIgnore(t *testing.T) {
	w := &Watcher{}
	for path, want := range map[string]bool{
		"/x/OBJECT":        false,
		"/x/.OBJECT.swx":   true,
		"/x/index.json~":   true,
		"/x/.#index.json":  true,
		"/x/d0001.bin.swp": true,
		"/x/d0001.bin":     false,
	} {
		if got := w.shouldIgnore(path); got != want {
			t.Errorf("shouldIgnore(%q) = %v, want %v", path, got, want)
		}
	}
}
