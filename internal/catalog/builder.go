package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type BuildResult struct {
	Bundle       Bundle
	BundleJSON   []byte
	Manifest     BundleManifest
	ManifestJSON []byte
}

// BuildFromCards parses a reference-card directory and assembles the
// distributable catalog bundle plus its integrity manifest.
//
// GeneratedAt is derived from the newest record timestamp so repeated builds
// over unchanged cards are byte-identical and verify cleanly.
func BuildFromCards(cardsDir string) (BuildResult, error) {
	records, err := LoadCardDir(cardsDir)
	if err != nil {
		return BuildResult{}, err
	}
	var newest int64
	for _, rec := range records {
		if rec.UpdatedAtUnixMs > newest {
			newest = rec.UpdatedAtUnixMs
		}
	}
	generatedAt := ""
	if newest > 0 {
		generatedAt = time.UnixMilli(newest).UTC().Format(time.RFC3339)
	}
	return buildBundle(records, generatedAt)
}

func buildBundle(records []ReferenceRecord, generatedAt string) (BuildResult, error) {
	bundle := Bundle{
		SchemaVersion: SchemaVersion,
		GeneratedAt:   generatedAt,
		Records:       records,
	}
	bundleJSON, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return BuildResult{}, err
	}
	recordsJSON, err := json.Marshal(records)
	if err != nil {
		return BuildResult{}, err
	}

	manifest := BundleManifest{
		SchemaVersion: SchemaVersion,
		GeneratedAt:   bundle.GeneratedAt,
		RecordCount:   len(records),
		BundleSHA256:  sha256Hex(bundleJSON),
		RecordsSHA256: sha256Hex(recordsJSON),
	}
	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return BuildResult{}, err
	}

	return BuildResult{
		Bundle:       bundle,
		BundleJSON:   bundleJSON,
		Manifest:     manifest,
		ManifestJSON: manifestJSON,
	}, nil
}

func WriteDistFiles(distRoot string, result BuildResult) error {
	root := strings.TrimSpace(distRoot)
	if root == "" {
		return fmt.Errorf("missing dist root")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(root, "catalog_bundle.json"), result.BundleJSON, 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(root, "catalog_bundle.manifest.json"), result.ManifestJSON, 0o644)
}

func VerifyDistFiles(distRoot string, result BuildResult) error {
	root := strings.TrimSpace(distRoot)
	if root == "" {
		return fmt.Errorf("missing dist root")
	}
	checks := []struct {
		Name string
		Want []byte
	}{
		{Name: "catalog_bundle.json", Want: result.BundleJSON},
		{Name: "catalog_bundle.manifest.json", Want: result.ManifestJSON},
	}
	for _, item := range checks {
		got, err := os.ReadFile(filepath.Join(root, item.Name))
		if err != nil {
			return fmt.Errorf("read %s failed: %w", item.Name, err)
		}
		if strings.TrimSpace(string(got)) != strings.TrimSpace(string(item.Want)) {
			return fmt.Errorf("%s is stale; rerun catalog-bundle", item.Name)
		}
	}
	return nil
}

func sha256Hex(payload []byte) string {
	h := sha256.Sum256(payload)
	return hex.EncodeToString(h[:])
}
