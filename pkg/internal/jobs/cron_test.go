package jobs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeScratchFile(t *testing.T, dir, name string, mtime time.Time) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}

	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", name, err)
	}

	return path
}

func TestSweepScratch_RemovesOnlyStaleStageFiles(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	stale := writeScratchFile(t, dir, "stage-aaa", now.Add(-48*time.Hour))
	fresh := writeScratchFile(t, dir, "stage-bbb", now.Add(-time.Minute))
	other := writeScratchFile(t, dir, "notes.txt", now.Add(-48*time.Hour))

	removed, err := SweepScratch(dir, 24*time.Hour, now)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale stage file should be removed")
	}

	for _, keep := range []string{fresh, other} {
		if _, err := os.Stat(keep); err != nil {
			t.Errorf("%s should survive the sweep: %v", filepath.Base(keep), err)
		}
	}
}

func TestSweepScratch_MissingDirIsNoop(t *testing.T) {
	removed, err := SweepScratch(filepath.Join(t.TempDir(), "absent"), time.Hour, time.Now())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if removed != 0 {
		t.Fatalf("removed = %d, want 0", removed)
	}
}
