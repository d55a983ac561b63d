package catalog

import (
	"context"
	"path/filepath"
	"testing"
)

func TestLoadSnapshot_FromEmbeddedBundle(t *testing.T) {
	t.Parallel()

	snap, err := LoadSnapshot(context.Background(), Source{Logger: discardLogger()})
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if snap.Len() == 0 {
		t.Fatal("embedded snapshot is empty")
	}
}

func TestLoadSnapshot_FromCards(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCard(t, dir, "valuation.md", sampleCard)

	snap, err := LoadSnapshot(context.Background(), Source{CardsDir: dir, Logger: discardLogger()})
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if _, ok := snap.ByID("ref-valuation-report"); !ok {
		t.Fatal("card record missing from snapshot")
	}
	if snap.Version() != 4 {
		t.Fatalf("Version = %d, want 4", snap.Version())
	}
}

func TestLoadSnapshot_DBWinsOverCards(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cards := t.TempDir()
	writeCard(t, cards, "valuation.md", sampleCard)

	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.Put(ctx, ReferenceRecord{ID: "ref-db-only", FileType: "DB Only", IsActive: true, Version: 1}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	snap, err := LoadSnapshot(ctx, Source{CardsDir: cards, DBPath: dbPath, Logger: discardLogger()})
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if _, ok := snap.ByID("ref-db-only"); !ok {
		t.Fatal("DB record missing; DBPath must take precedence")
	}
	if _, ok := snap.ByID("ref-valuation-report"); ok {
		t.Fatal("card record present; CardsDir should be ignored when DBPath is set")
	}
}
