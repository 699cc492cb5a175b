package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestWatcherIngestsDroppedFile(t *testing.T) {
	dir := t.TempDir()
	store := &memStore{}
	w := NewWatcher(newIngester(store), []string{dir}, []string{"txt"}, zap.NewNop())
	w.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "drop.txt")
	if err := os.WriteFile(path, []byte("The em tag marks emphasized text.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for store.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("dropped file was never ingested")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestWatcherIgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	store := &memStore{}
	w := NewWatcher(newIngester(store), []string{dir}, []string{"txt"}, zap.NewNop())
	w.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "drop.bin")
	if err := os.WriteFile(path, []byte("The em tag marks emphasized text.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)
	if store.count() != 0 {
		t.Errorf("ignored extension was ingested: %d facts", store.count())
	}
}

func TestWatcherStopWhileRunning(t *testing.T) {
	dir := t.TempDir()
	store := &memStore{}
	w := NewWatcher(newIngester(store), []string{dir}, []string{"txt"}, zap.NewNop())

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// Stop races the event loop's channel reads; it must shut down cleanly
	// and stay safe to call again.
	w.Stop()
	w.Stop()

	select {
	case <-w.done:
	case <-time.After(time.Second):
		t.Fatal("event loop did not shut down")
	}
}

func TestWatcherSyncExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "existing.txt")
	if err := os.WriteFile(path, []byte("The strong tag marks important text.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := &memStore{}
	w := NewWatcher(newIngester(store), []string{dir}, []string{"txt"}, zap.NewNop())
	w.SyncExisting(context.Background())

	if store.count() != 1 {
		t.Errorf("SyncExisting stored %d facts, want 1", store.count())
	}
}
