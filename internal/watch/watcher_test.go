// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestNew_RequiresDirs(t *testing.T) {
	t.Parallel()
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for empty dir list")
	}
}

func TestNew_RejectsInvalidPatterns(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	if _, err := New(Config{Dirs: []string{dir}, Patterns: []string{"[unclosed"}}); err == nil {
		t.Error("expected error for invalid watch pattern")
	}
	if _, err := New(Config{Dirs: []string{dir}, Ignore: []string{"[unclosed"}}); err == nil {
		t.Error("expected error for invalid ignore pattern")
	}
}

func TestNew_MissingDir(t *testing.T) {
	t.Parallel()
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	if _, err := New(Config{Dirs: []string{missing}}); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestWatcher_RunTwice(t *testing.T) {
	t.Parallel()
	w, err := New(Config{Dirs: []string{t.TempDir()}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Run(ctx); err != nil {
		t.Fatalf("cancelled run should return nil, got: %v", err)
	}
	if err := w.Run(ctx); err == nil {
		t.Fatal("second Run must fail")
	}
}

func TestWatcher_DebouncedCallback(t *testing.T) {
	if testing.Short() {
		t.Skip("relies on filesystem notification timing")
	}
	dir := t.TempDir()

	var (
		mu    sync.Mutex
		fired [][]string
	)
	w, err := New(Config{
		Dirs:     []string{dir},
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			fired = append(fired, changed)
			mu.Unlock()
			return nil
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	// A rebuild touches the same binary several times in quick succession.
	target := filepath.Join(dir, "substrate-adapter")
	for range 3 {
		if err := os.WriteFile(target, []byte("bin"), 0o755); err != nil {
			t.Fatalf("write: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	deadline := time.After(3 * time.Second)
	for {
		mu.Lock()
		n := len(fired)
		mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("callback never fired")
		case <-time.After(20 * time.Millisecond):
		}
	}

	time.Sleep(150 * time.Millisecond)
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if len(fired) != 1 {
		t.Errorf("expected the burst to coalesce into one callback, got %d", len(fired))
	}
	if len(fired[0]) != 1 || filepath.Base(fired[0][0]) != "substrate-adapter" {
		t.Errorf("unexpected changed set: %v", fired[0])
	}
}

func TestWatcher_IgnoresTempFiles(t *testing.T) {
	if testing.Short() {
		t.Skip("relies on filesystem notification timing")
	}
	dir := t.TempDir()

	firedCh := make(chan []string, 1)
	w, err := New(Config{
		Dirs:     []string{dir},
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			select {
			case firedCh <- changed:
			default:
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	if err := os.WriteFile(filepath.Join(dir, "adapter.tmp"), []byte("partial"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case changed := <-firedCh:
		t.Errorf("temp file should not trigger a re-run, got %v", changed)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_PatternFilter(t *testing.T) {
	if testing.Short() {
		t.Skip("relies on filesystem notification timing")
	}
	dir := t.TempDir()

	firedCh := make(chan []string, 4)
	w, err := New(Config{
		Dirs:     []string{dir},
		Patterns: []string{"*-adapter"},
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			firedCh <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "kagome-adapter"), []byte("bin"), 0o755); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case changed := <-firedCh:
		if len(changed) != 1 || filepath.Base(changed[0]) != "kagome-adapter" {
			t.Errorf("expected only the adapter to match, got %v", changed)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("callback never fired")
	}
}
