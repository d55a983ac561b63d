package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Source selects where the catalog records are loaded from. DBPath wins over
// CardsDir; both empty means the embedded bundle.
type Source struct {
	CardsDir string
	DBPath   string
	Logger   *slog.Logger
}

// LoadSnapshot loads records from the configured source and compiles them
// into an immutable snapshot.
func LoadSnapshot(ctx context.Context, src Source) (*Snapshot, error) {
	records, err := loadRecords(ctx, src)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(records, SnapshotOptions{Logger: src.Logger})
}

func loadRecords(ctx context.Context, src Source) ([]ReferenceRecord, error) {
	if db := strings.TrimSpace(src.DBPath); db != "" {
		store, err := Open(db)
		if err != nil {
			return nil, fmt.Errorf("open catalog store: %w", err)
		}
		defer func() { _ = store.Close() }()
		return store.List(ctx, false)
	}
	if dir := strings.TrimSpace(src.CardsDir); dir != "" {
		return LoadCardDir(dir)
	}
	bundle, err := LoadEmbeddedBundle()
	if err != nil {
		return nil, err
	}
	return bundle.Records, nil
}
