package auditlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testStore(t *testing.T, maxBytes int64, maxBackups int) (*Store, string) {
	t.Helper()
	stateDir := t.TempDir()
	store, err := New(Options{
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		StateDir:   stateDir,
		MaxBytes:   maxBytes,
		MaxBackups: maxBackups,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store, filepath.Join(stateDir, "audit")
}

func TestStore_AppendAndList(t *testing.T) {
	t.Parallel()

	store, _ := testStore(t, 0, 0)
	for i := 0; i < 5; i++ {
		store.Append(Entry{
			Context:        "classification",
			FileName:       fmt.Sprintf("doc_%d.pdf", i),
			TopReferenceID: "ref-lease-agreement",
			TopScore:       float64(i),
			CandidateCount: 3,
		})
	}

	entries, err := store.List(3)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	// Newest first.
	if entries[0].FileName != "doc_4.pdf" || entries[2].FileName != "doc_2.pdf" {
		t.Fatalf("order = %s .. %s", entries[0].FileName, entries[2].FileName)
	}
	if entries[0].CreatedAt == "" {
		t.Fatal("Append must stamp CreatedAt")
	}
}

func TestStore_ListEmpty(t *testing.T) {
	t.Parallel()

	store, _ := testStore(t, 0, 0)
	entries, err := store.List(10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("len = %d, want 0", len(entries))
	}
}

func TestStore_Rotation(t *testing.T) {
	t.Parallel()

	store, dir := testStore(t, 256, 2)
	for i := 0; i < 20; i++ {
		store.Append(Entry{
			Context:  "filing",
			FileName: fmt.Sprintf("very_long_document_name_%02d.pdf", i),
		})
		// Rotated names are millisecond-stamped; keep them distinct.
		time.Sleep(2 * time.Millisecond)
	}

	names, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	rotated := 0
	activeSeen := false
	for _, ent := range names {
		switch {
		case ent.Name() == activeFileName:
			activeSeen = true
		case strings.HasPrefix(ent.Name(), rotatedPrefix):
			rotated++
		}
	}
	if !activeSeen {
		t.Fatal("active file missing after rotation")
	}
	if rotated == 0 {
		t.Fatal("expected at least one rotated file")
	}
	if rotated > 2 {
		t.Fatalf("rotated files = %d, MaxBackups 2 must prune older ones", rotated)
	}

	// Entries remain listable across the active file and backups, newest first.
	entries, err := store.List(1000)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no entries after rotation")
	}
	if entries[0].FileName != "very_long_document_name_19.pdf" {
		t.Fatalf("newest entry = %s", entries[0].FileName)
	}
}

func TestStore_AppendNeverFailsCaller(t *testing.T) {
	t.Parallel()

	store, dir := testStore(t, 0, 0)
	// Make the active path unwritable; Append must swallow the failure.
	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	store.Append(Entry{Context: "chat"})
}

func TestNew_RequiresStateDir(t *testing.T) {
	t.Parallel()

	if _, err := New(Options{}); err == nil {
		t.Fatal("New without StateDir must fail")
	}
}
