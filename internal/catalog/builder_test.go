package catalog

import (
	"bytes"
	"strings"
	"testing"
)

func TestBuildFromCards_Deterministic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCard(t, dir, "valuation.md", sampleCard)

	first, err := BuildFromCards(dir)
	if err != nil {
		t.Fatalf("BuildFromCards: %v", err)
	}
	second, err := BuildFromCards(dir)
	if err != nil {
		t.Fatalf("BuildFromCards: %v", err)
	}
	if !bytes.Equal(first.BundleJSON, second.BundleJSON) {
		t.Fatal("repeated builds over unchanged cards must be byte-identical")
	}
	if first.Manifest.BundleSHA256 != second.Manifest.BundleSHA256 {
		t.Fatal("manifest digests differ between identical builds")
	}
	if first.Manifest.RecordCount != 1 {
		t.Fatalf("RecordCount = %d, want 1", first.Manifest.RecordCount)
	}
	// GeneratedAt comes from the newest record, not the wall clock.
	if !strings.HasPrefix(first.Bundle.GeneratedAt, "2025-02-") {
		t.Fatalf("GeneratedAt = %q, want derived from updated_at_unix_ms", first.Bundle.GeneratedAt)
	}
}

func TestShippedCardsMatchEmbeddedBundle(t *testing.T) {
	t.Parallel()

	result, err := BuildFromCards("cards")
	if err != nil {
		t.Fatalf("BuildFromCards: %v", err)
	}
	bundle, err := LoadEmbeddedBundle()
	if err != nil {
		t.Fatalf("LoadEmbeddedBundle: %v", err)
	}

	if len(result.Bundle.Records) != len(bundle.Records) {
		t.Fatalf("card records = %d, embedded = %d", len(result.Bundle.Records), len(bundle.Records))
	}
	for i, rec := range result.Bundle.Records {
		emb := bundle.Records[i]
		if rec.ID != emb.ID || rec.Version != emb.Version || rec.IsActive != emb.IsActive {
			t.Fatalf("record %d differs: cards %s/v%d embedded %s/v%d", i, rec.ID, rec.Version, emb.ID, emb.Version)
		}
	}

	// The shipped dist files are exactly what a rebuild produces.
	if err := VerifyDistFiles("dist", result); err != nil {
		t.Fatalf("dist files stale: %v", err)
	}
}

func TestWriteAndVerifyDistFiles(t *testing.T) {
	t.Parallel()

	cards := t.TempDir()
	writeCard(t, cards, "valuation.md", sampleCard)
	result, err := BuildFromCards(cards)
	if err != nil {
		t.Fatalf("BuildFromCards: %v", err)
	}

	dist := t.TempDir()
	if err := WriteDistFiles(dist, result); err != nil {
		t.Fatalf("WriteDistFiles: %v", err)
	}
	if err := VerifyDistFiles(dist, result); err != nil {
		t.Fatalf("VerifyDistFiles after write: %v", err)
	}

	// A changed card makes the written files stale.
	changed := strings.Replace(sampleCard, "version: 4", "version: 5", 1)
	writeCard(t, cards, "valuation.md", changed)
	rebuilt, err := BuildFromCards(cards)
	if err != nil {
		t.Fatalf("BuildFromCards: %v", err)
	}
	if err := VerifyDistFiles(dist, rebuilt); err == nil {
		t.Fatal("VerifyDistFiles must flag stale dist files")
	}
}
