package catalog

import (
	"io"
	"log/slog"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func activeRecord(id, fileType string, version int) ReferenceRecord {
	return ReferenceRecord{
		ID:       id,
		FileType: fileType,
		Category: "Test",
		IsActive: true,
		Version:  version,
	}
}

func TestNewSnapshot_DuplicateIDFails(t *testing.T) {
	t.Parallel()

	_, err := NewSnapshot([]ReferenceRecord{
		activeRecord("ref-a", "Alpha", 1),
		activeRecord("ref-a", "Beta", 1),
	}, SnapshotOptions{Logger: discardLogger()})
	if err == nil || !strings.Contains(err.Error(), "duplicate reference id") {
		t.Fatalf("err = %v, want duplicate id error", err)
	}
}

func TestNewSnapshot_EmptyIDFails(t *testing.T) {
	t.Parallel()

	_, err := NewSnapshot([]ReferenceRecord{
		activeRecord("  ", "Alpha", 1),
	}, SnapshotOptions{Logger: discardLogger()})
	if err == nil {
		t.Fatal("expected an error for a record with an empty id")
	}
}

func TestNewSnapshot_BadPatternExcludesOnlyThatRecord(t *testing.T) {
	t.Parallel()

	bad := activeRecord("ref-bad", "Broken", 2)
	bad.FilenamePatterns = []string{`valid`, `([unclosed`}
	good := activeRecord("ref-good", "Working", 1)

	snap, err := NewSnapshot([]ReferenceRecord{bad, good}, SnapshotOptions{Logger: discardLogger()})
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	if snap.Len() != 1 {
		t.Fatalf("Len = %d, want 1 (bad record excluded, good kept)", snap.Len())
	}
	if _, ok := snap.ByID("ref-bad"); ok {
		t.Fatal("record with an invalid pattern must not be matchable")
	}
	// The excluded record still drives the aggregate version.
	if snap.Version() != 2 {
		t.Fatalf("Version = %d, want 2", snap.Version())
	}
}

func TestNewSnapshot_InactiveSkippedButVersioned(t *testing.T) {
	t.Parallel()

	retired := ReferenceRecord{ID: "ref-old", FileType: "Old", Version: 9}
	current := activeRecord("ref-new", "New", 3)

	snap, err := NewSnapshot([]ReferenceRecord{retired, current}, SnapshotOptions{Logger: discardLogger()})
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	if snap.Len() != 1 {
		t.Fatalf("Len = %d, want 1", snap.Len())
	}
	if _, ok := snap.ByID("ref-old"); ok {
		t.Fatal("inactive record must not be matchable")
	}
	if snap.Version() != 9 {
		t.Fatalf("Version = %d, want 9 (inactive records count)", snap.Version())
	}
}

func TestNewSnapshot_RecordsSortedByID(t *testing.T) {
	t.Parallel()

	snap, err := NewSnapshot([]ReferenceRecord{
		activeRecord("ref-c", "C", 1),
		activeRecord("ref-a", "A", 1),
		activeRecord("ref-b", "B", 1),
	}, SnapshotOptions{Logger: discardLogger()})
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	var ids []string
	for _, rec := range snap.Records() {
		ids = append(ids, rec.Record.ID)
	}
	want := []string{"ref-a", "ref-b", "ref-c"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}

func TestSnapshot_ByTypeCaseInsensitive(t *testing.T) {
	t.Parallel()

	snap, err := NewSnapshot([]ReferenceRecord{
		activeRecord("ref-lease", "Lease Agreement", 1),
	}, SnapshotOptions{Logger: discardLogger()})
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	rec, ok := snap.ByType("  LEASE agreement ")
	if !ok {
		t.Fatal("ByType should match case-insensitively with surrounding space")
	}
	if rec.Record.ID != "ref-lease" {
		t.Fatalf("ByType returned %s", rec.Record.ID)
	}
}

func TestCompiledRecord_AppliesTo(t *testing.T) {
	t.Parallel()

	scoped := activeRecord("ref-scoped", "Scoped", 1)
	scoped.ApplicableContexts = []string{"classification", "Filing"}
	open := activeRecord("ref-open", "Open", 1)

	snap, err := NewSnapshot([]ReferenceRecord{scoped, open}, SnapshotOptions{Logger: discardLogger()})
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}

	scopedRec, _ := snap.ByID("ref-scoped")
	if !scopedRec.AppliesTo("classification") || !scopedRec.AppliesTo("filing") {
		t.Fatal("declared contexts should apply")
	}
	if scopedRec.AppliesTo("chat") {
		t.Fatal("undeclared context must not apply")
	}

	openRec, _ := snap.ByID("ref-open")
	if !openRec.AppliesTo("chat") {
		t.Fatal("a record with no declared contexts applies everywhere")
	}
}

func TestCompileInsensitive(t *testing.T) {
	t.Parallel()

	re, err := compileInsensitive(`policy[_ -]?wording`)
	if err != nil {
		t.Fatalf("compileInsensitive: %v", err)
	}
	if !re.MatchString("Insurance_POLICY Wording_v2.pdf") {
		t.Fatal("patterns must match case-insensitively")
	}

	// An explicit (?i) prefix is not doubled.
	re, err = compileInsensitive(`(?i)^re[_ ]`)
	if err != nil {
		t.Fatalf("compileInsensitive: %v", err)
	}
	if !re.MatchString("RE_ deal.eml") {
		t.Fatal("explicit (?i) pattern should still match")
	}

	if _, err := compileInsensitive("  "); err == nil {
		t.Fatal("blank pattern should be rejected")
	}
}

func TestLoadEmbeddedBundle(t *testing.T) {
	t.Parallel()

	bundle, err := LoadEmbeddedBundle()
	if err != nil {
		t.Fatalf("LoadEmbeddedBundle: %v", err)
	}
	if bundle.SchemaVersion != SchemaVersion {
		t.Fatalf("SchemaVersion = %d, want %d", bundle.SchemaVersion, SchemaVersion)
	}
	if len(bundle.Records) == 0 {
		t.Fatal("embedded bundle has no records")
	}
	if _, err := NewSnapshot(bundle.Records, SnapshotOptions{Logger: discardLogger()}); err != nil {
		t.Fatalf("embedded bundle does not compile: %v", err)
	}
}
