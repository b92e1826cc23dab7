package anacrolix

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRemoveDataFileDeletesInsideBase(t *testing.T) {
	base := t.TempDir()
	sub := filepath.Join(base, "show")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	target := filepath.Join(sub, "episode.mkv")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := removeDataFile(base, "show/episode.mkv"); err != nil {
		t.Fatalf("removeDataFile: %v", err)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Fatal("file still exists")
	}
}

func TestRemoveDataFileMissingFileIsNoop(t *testing.T) {
	if err := removeDataFile(t.TempDir(), "gone.mkv"); err != nil {
		t.Fatalf("removeDataFile: %v", err)
	}
}

func TestRemoveDataFileRejectsEscapingPaths(t *testing.T) {
	base := t.TempDir()
	cases := []string{
		"",
		"../outside.mkv",
		"show/../../outside.mkv",
		"/etc/passwd",
	}
	for _, path := range cases {
		if err := removeDataFile(base, path); err == nil {
			t.Fatalf("removeDataFile(%q) accepted an unsafe path", path)
		}
	}
}

func TestRemoveDataFileRequiresBaseDir(t *testing.T) {
	if err := removeDataFile("", "a.mkv"); err == nil {
		t.Fatal("expected error for empty base dir")
	}
}
