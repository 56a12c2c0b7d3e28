package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadJSONMissingFile(t *testing.T) {
	var out map[string]string
	found, err := ReadJSON(filepath.Join(t.TempDir(), "missing.json"), &out)
	if err != nil || found {
		t.Fatalf("expected missing file to be silent, got found=%v err=%v", found, err)
	}
}

func TestWriteJSONRoundTripAndMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	if err := WriteJSON(path, map[string]string{"k": "v"}, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected mode 0600, got %v", info.Mode().Perm())
	}

	var out map[string]string
	found, err := ReadJSON(path, &out)
	if err != nil || !found || out["k"] != "v" {
		t.Fatalf("unexpected read: found=%v err=%v out=%v", found, err, out)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files to be cleaned up, got %d entries", len(entries))
	}
}

func TestRemoveMissingIsNotAnError(t *testing.T) {
	if err := Remove(filepath.Join(t.TempDir(), "nope")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
