package fsutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestExpandHomeNoTilde(t *testing.T) {
	p, err := ExpandHome("/tmp/x")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if p != "/tmp/x" {
		t.Fatalf("expected unchanged path, got %q", p)
	}
}

func TestExpandHomeTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	p, err := ExpandHome("~/models")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if p != filepath.Join(home, "models") {
		t.Fatalf("expected %q, got %q", filepath.Join(home, "models"), p)
	}
}

func TestPathExists(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "a.bin")
	if PathExists(f) {
		t.Fatalf("expected missing path")
	}
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !PathExists(f) {
		t.Fatalf("expected existing path")
	}
}

func TestResolveModelAbsolutePathWins(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "m.task")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ResolveModel(f, "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != f {
		t.Fatalf("expected %q, got %q", f, got)
	}
}

func TestResolveModelBareNameInStorage(t *testing.T) {
	storage := t.TempDir()
	f := filepath.Join(storage, "m.task")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ResolveModel("m.task", storage)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != f {
		t.Fatalf("expected %q, got %q", f, got)
	}
}

func TestResolveModelStaleAbsoluteFallsBackToStorage(t *testing.T) {
	storage := t.TempDir()
	f := filepath.Join(storage, "m.task")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	// Absolute path that no longer exists; its basename is present in storage.
	got, err := ResolveModel("/gone/away/m.task", storage)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != f {
		t.Fatalf("expected storage fallback %q, got %q", f, got)
	}
}

func TestResolveModelNotFound(t *testing.T) {
	_, err := ResolveModel("nope.task", t.TempDir())
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestResolveModelEmptyName(t *testing.T) {
	_, err := ResolveModel("  ", t.TempDir())
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
