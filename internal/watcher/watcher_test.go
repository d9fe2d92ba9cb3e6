package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/omoide/internal/config"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, "debug: false\n")

	reloaded := make(chan *config.Config, 1)
	w := New(path, func(cfg *config.Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	}, WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	writeConfig(t, path, "debug: true\nrate_limit:\n  bypass: true\n")

	select {
	case cfg := <-reloaded:
		if !cfg.Debug {
			t.Error("reloaded config missing the new debug value")
		}
		if !cfg.RateLimit.Bypass {
			t.Error("reloaded config missing the new bypass value")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("reload callback never fired")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, "debug: false\n")

	reloaded := make(chan struct{}, 1)
	w := New(path, func(*config.Config) {
		select {
		case reloaded <- struct{}{}:
		default:
		}
	}, WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	writeConfig(t, filepath.Join(dir, "notes.txt"), "unrelated\n")

	select {
	case <-reloaded:
		t.Error("unrelated file triggered a reload")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherSkipsBrokenConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, "debug: false\n")

	reloaded := make(chan struct{}, 1)
	w := New(path, func(*config.Config) {
		select {
		case reloaded <- struct{}{}:
		default:
		}
	}, WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	// A half-written file must never reach the callback.
	writeConfig(t, path, "server: [broken")

	select {
	case <-reloaded:
		t.Error("broken config reached the callback")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherStopIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, "debug: false\n")

	w := New(path, func(*config.Config) {})
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	w.Stop()
	w.Stop()
}
