package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/desbma/bdf/internal/stats"
)

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunMissingTargetDir(t *testing.T) {
	st := &stats.Run{}
	_, err := Run(context.Background(), Options{TargetDir: filepath.Join(t.TempDir(), "nope"), MinSize: 1, Jobs: 1}, zerolog.Nop(), st)
	if err == nil {
		t.Fatal("expected an error for a missing target directory")
	}
}

func TestRunDistinctSizesNeverHashed(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "a"), []byte("short"))
	writeFile(t, filepath.Join(base, "b"), []byte("a bit longer"))

	st := &stats.Run{}
	pairs, err := Run(context.Background(), Options{TargetDir: base, MinSize: 1, Jobs: 2}, zerolog.Nop(), st)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(pairs) != 0 {
		t.Fatalf("expected no pairs for files of distinct sizes, got %v", pairs)
	}
	if st.Snapshot().FilesHashed != 0 {
		t.Fatalf("files with a unique size must never reach the hasher, got %d hashed", st.Snapshot().FilesHashed)
	}
}

func TestRunSameSizeDifferentContentYieldsNoPairs(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "a"), []byte("aaaa"))
	writeFile(t, filepath.Join(base, "b"), []byte("bbbb"))

	st := &stats.Run{}
	pairs, err := Run(context.Background(), Options{TargetDir: base, MinSize: 1, Jobs: 2}, zerolog.Nop(), st)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(pairs) != 0 {
		t.Fatalf("expected no pairs for same-size, different-content files, got %v", pairs)
	}
	if st.Snapshot().FilesHashed != 2 {
		t.Fatalf("expected both same-size files to be hashed, got %d", st.Snapshot().FilesHashed)
	}
}

func TestRunEmitsCandidateForIdenticalContent(t *testing.T) {
	base := t.TempDir()
	content := bytes.Repeat([]byte("x"), 8192)
	writeFile(t, filepath.Join(base, "a"), content)
	writeFile(t, filepath.Join(base, "b"), content)

	st := &stats.Run{}
	pairs, err := Run(context.Background(), Options{TargetDir: base, MinSize: 1, Jobs: 2}, zerolog.Nop(), st)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if st.Snapshot().EntryErrors > 0 {
		t.Skip("extent map unsupported on this filesystem, cannot assert candidate emission")
	}
	if len(pairs) != 1 {
		t.Fatalf("expected exactly one candidate pair, got %v", pairs)
	}
}

func TestRunThreeWayIdenticalContentEmitsThreePairs(t *testing.T) {
	base := t.TempDir()
	content := bytes.Repeat([]byte("y"), 4096)
	writeFile(t, filepath.Join(base, "a"), content)
	writeFile(t, filepath.Join(base, "b"), content)
	writeFile(t, filepath.Join(base, "c"), content)

	st := &stats.Run{}
	pairs, err := Run(context.Background(), Options{TargetDir: base, MinSize: 1, Jobs: 2}, zerolog.Nop(), st)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if st.Snapshot().EntryErrors > 0 {
		t.Skip("extent map unsupported on this filesystem, cannot assert candidate emission")
	}
	if len(pairs) != 3 {
		t.Fatalf("expected 3 unordered pairs from a 3-way equivalence class, got %v", pairs)
	}
}

func TestRunRespectsMinSize(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "a"), []byte("ab"))
	writeFile(t, filepath.Join(base, "b"), []byte("ab"))

	st := &stats.Run{}
	pairs, err := Run(context.Background(), Options{TargetDir: base, MinSize: 100, Jobs: 2}, zerolog.Nop(), st)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(pairs) != 0 {
		t.Fatalf("expected min-size to exclude both small files, got %v", pairs)
	}
}
