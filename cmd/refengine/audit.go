package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dealdocs/refengine/internal/auditlog"
	"github.com/dealdocs/refengine/internal/config"
)

func auditCmd(args []string) {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	limit := fs.Int("limit", 50, "Max entries to print")
	stateDir := fs.String("state-dir", "", "State directory (default: ~/.refengine)")
	_ = fs.Parse(args)

	dir := strings.TrimSpace(*stateDir)
	if dir == "" {
		dir = config.DefaultStateDir()
	}

	store, err := auditlog.New(auditlog.Options{StateDir: dir})
	if err != nil {
		fmt.Fprintf(os.Stderr, "open audit store failed: %v\n", err)
		os.Exit(1)
	}
	entries, err := store.List(*limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list audit entries failed: %v\n", err)
		os.Exit(1)
	}
	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
