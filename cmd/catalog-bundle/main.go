package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dealdocs/refengine/internal/catalog"
)

func main() {
	cardsDir := flag.String("cards-dir", cleanAbs(filepath.Join("internal", "catalog", "cards")), "Reference card source directory")
	distRoot := flag.String("dist-root", cleanAbs(filepath.Join("internal", "catalog", "dist")), "Dist output root")
	verifyOnly := flag.Bool("verify-only", false, "Verify dist files without rewriting")
	validateOnly := flag.Bool("validate-only", false, "Validate card files only without touching dist")
	flag.Parse()

	result, err := catalog.BuildFromCards(cleanAbs(*cardsDir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "catalog bundle build failed: %v\n", err)
		os.Exit(1)
	}
	if *validateOnly {
		fmt.Printf("catalog cards validated: %s (%d records)\n", cleanAbs(*cardsDir), result.Manifest.RecordCount)
		return
	}

	if *verifyOnly {
		if err := catalog.VerifyDistFiles(cleanAbs(*distRoot), result); err != nil {
			fmt.Fprintf(os.Stderr, "catalog bundle verify failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("catalog bundle verified: %s\n", cleanAbs(*distRoot))
		return
	}

	if err := catalog.WriteDistFiles(cleanAbs(*distRoot), result); err != nil {
		fmt.Fprintf(os.Stderr, "catalog bundle write failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("catalog bundle updated: %s\n", cleanAbs(*distRoot))
}

func cleanAbs(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(abs)
}
