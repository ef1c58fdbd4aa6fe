package fonts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("stub"), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestScanFindsOnlyTTF(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "vera.ttf"))
	writeFile(t, filepath.Join(dir, "mono.ttf"))
	writeFile(t, filepath.Join(dir, "readme.txt"))
	writeFile(t, filepath.Join(dir, "cursive.otf"))

	store := NewStore(dir)
	if err := store.Scan(); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	got := store.List()
	if len(got) != 2 {
		t.Fatalf("expected 2 fonts, got %v", got)
	}
	for _, path := range got {
		if !strings.HasSuffix(path, ".ttf") {
			t.Fatalf("expected only .ttf paths, got %s", path)
		}
	}
	if store.Len() != 2 {
		t.Fatalf("expected Len 2, got %d", store.Len())
	}
}

func TestScanMissingDirYieldsEmptyInventory(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "does-not-exist"))
	if err := store.Scan(); err != nil {
		t.Fatalf("expected missing directory to be tolerated, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty inventory, got %d", store.Len())
	}
}

func TestScanUnreadablePathIsAnError(t *testing.T) {
	t.Parallel()

	notADir := filepath.Join(t.TempDir(), "fonts")
	writeFile(t, notADir)

	store := NewStore(notADir)
	if err := store.Scan(); err == nil {
		t.Fatalf("expected error for font path that is not a readable directory")
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty inventory after failed scan, got %d", store.Len())
	}
}

func TestScanReplacesPreviousInventory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "first.ttf"))

	store := NewStore(dir)
	if err := store.Scan(); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 font, got %d", store.Len())
	}

	if err := os.Remove(filepath.Join(dir, "first.ttf")); err != nil {
		t.Fatalf("remove font: %v", err)
	}
	writeFile(t, filepath.Join(dir, "second.ttf"))
	writeFile(t, filepath.Join(dir, "third.ttf"))

	if err := store.Scan(); err != nil {
		t.Fatalf("rescan returned error: %v", err)
	}
	got := store.List()
	if len(got) != 2 || !strings.HasSuffix(got[0], "second.ttf") {
		t.Fatalf("expected rescan to replace inventory, got %v", got)
	}
}

func TestListReturnsDefensiveCopy(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "vera.ttf"))

	store := NewStore(dir)
	if err := store.Scan(); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	got := store.List()
	got[0] = "mutated"
	if again := store.List(); again[0] == "mutated" {
		t.Fatalf("expected defensive copy, got %v", again)
	}
}
