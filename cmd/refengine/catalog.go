package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dealdocs/refengine/internal/catalog"
)

func catalogCmd(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: refengine catalog <import|list> [flags]")
		os.Exit(2)
	}
	switch args[0] {
	case "import":
		catalogImportCmd(args[1:])
	case "list":
		catalogListCmd(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown catalog subcommand: %s\n", args[0])
		os.Exit(2)
	}
}

func catalogImportCmd(args []string) {
	fs := flag.NewFlagSet("catalog import", flag.ExitOnError)
	cardsDir := fs.String("cards-dir", "", "Reference card directory to import")
	dbPath := fs.String("db", "", "SQLite catalog store path")
	_ = fs.Parse(args)

	if strings.TrimSpace(*cardsDir) == "" || strings.TrimSpace(*dbPath) == "" {
		fs.Usage()
		os.Exit(2)
	}

	records, err := catalog.LoadCardDir(*cardsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load cards failed: %v\n", err)
		os.Exit(1)
	}
	store, err := catalog.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open catalog store failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	version, err := store.Import(context.Background(), records)
	if err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("imported %d reference records into %s (catalog version %d)\n", len(records), *dbPath, version)
}

func catalogListCmd(args []string) {
	fs := flag.NewFlagSet("catalog list", flag.ExitOnError)
	dbPath := fs.String("db", "", "SQLite catalog store path (default: embedded catalog)")
	activeOnly := fs.Bool("active-only", false, "List active records only")
	_ = fs.Parse(args)

	var (
		records []catalog.ReferenceRecord
		err     error
	)
	if strings.TrimSpace(*dbPath) != "" {
		var store *catalog.Store
		store, err = catalog.Open(*dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open catalog store failed: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = store.Close() }()
		records, err = store.List(context.Background(), *activeOnly)
	} else {
		var bundle catalog.Bundle
		bundle, err = catalog.LoadEmbeddedBundle()
		records = bundle.Records
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "list failed: %v\n", err)
		os.Exit(1)
	}

	type row struct {
		ID       string `json:"id"`
		FileType string `json:"file_type"`
		Category string `json:"category"`
		Active   bool   `json:"active"`
		Version  int    `json:"version"`
	}
	rows := make([]row, 0, len(records))
	for _, rec := range records {
		if *activeOnly && !rec.IsActive {
			continue
		}
		rows = append(rows, row{
			ID:       rec.ID,
			FileType: rec.FileType,
			Category: rec.Category,
			Active:   rec.IsActive,
			Version:  rec.Version,
		})
	}
	out, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
