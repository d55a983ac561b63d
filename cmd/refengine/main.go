package main

import (
	"fmt"
	"os"
)

var (
	// Version is set via -ldflags at build time.
	Version = "dev"
	// Commit is set via -ldflags at build time.
	Commit = "unknown"
	// BuildTime is set via -ldflags at build time.
	BuildTime = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "resolve":
		resolveCmd(os.Args[2:])
	case "catalog":
		catalogCmd(os.Args[2:])
	case "audit":
		auditCmd(os.Args[2:])
	case "version":
		fmt.Printf("refengine %s (%s) %s\n", Version, Commit, BuildTime)
	default:
		printUsage()
		os.Exit(2)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `refengine

Usage:
  refengine resolve [flags] <filename>
  refengine catalog <import|list> [flags]
  refengine audit [flags]
  refengine version

Commands:
  resolve     Resolve document evidence against the reference catalog and print ranked matches.
  catalog     Import reference cards into a SQLite catalog store, or list stored records.
  audit       Print recent resolution audit entries.
  version     Print build information.

`)
}
