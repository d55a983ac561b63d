package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dealdocs/refengine/internal/auditlog"
	"github.com/dealdocs/refengine/internal/catalog"
	"github.com/dealdocs/refengine/internal/config"
	"github.com/dealdocs/refengine/internal/promptpack"
	"github.com/dealdocs/refengine/internal/resolve"
)

type signalFlags []string

func (s *signalFlags) String() string { return strings.Join(*s, ",") }
func (s *signalFlags) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func resolveCmd(args []string) {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)

	aiContext := fs.String("context", string(resolve.ContextClassification), "Consumer context: classification|filing|extraction|summarization|chat|checklist")
	docType := fs.String("doc-type", "", "Known document type name (identity fast path)")
	category := fs.String("category", "", "Known document category")
	textFile := fs.String("text-file", "", "Path to a text sample file")
	maxResults := fs.Int("max-results", 0, "Max references to return (default 12)")
	format := fs.String("format", string(resolve.FormatFull), "Output shape: full|prompt|compact")
	cardsDir := fs.String("cards-dir", "", "Reference card directory (default: embedded catalog)")
	dbPath := fs.String("db", "", "SQLite catalog store path (overrides --cards-dir)")
	configPath := fs.String("config-path", "", "Config path (default: ~/.refengine/config.json)")
	noAudit := fs.Bool("no-audit", false, "Skip writing a resolution audit entry")

	var signals signalFlags
	fs.Var(&signals, "signal", "Pre-computed signal token (repeatable)")

	_ = fs.Parse(args)

	fileName := strings.TrimSpace(strings.Join(fs.Args(), " "))

	cfg := loadConfigOrDefault(*configPath)
	logger, err := config.NewLogger(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid logging config: %v\n", err)
		os.Exit(1)
	}

	textSample := ""
	if p := strings.TrimSpace(*textFile); p != "" {
		raw, err := os.ReadFile(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read text sample failed: %v\n", err)
			os.Exit(1)
		}
		textSample = string(raw)
	}

	src := catalog.Source{CardsDir: cfg.CardsDir, DBPath: cfg.CatalogDB, Logger: logger}
	if strings.TrimSpace(*cardsDir) != "" {
		src.CardsDir = strings.TrimSpace(*cardsDir)
		src.DBPath = ""
	}
	if strings.TrimSpace(*dbPath) != "" {
		src.DBPath = strings.TrimSpace(*dbPath)
	}

	snap, err := catalog.LoadSnapshot(context.Background(), src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load catalog failed: %v\n", err)
		os.Exit(1)
	}

	engine := resolve.New(resolve.Options{
		Snapshot:  snap,
		CacheSize: cfg.CacheSize,
		Renderer:  promptpack.New(),
		Logger:    logger,
	})

	evidence := resolve.Evidence{
		Context:      resolve.Context(strings.ToLower(strings.TrimSpace(*aiContext))),
		Signals:      signals,
		DocumentType: strings.TrimSpace(*docType),
		Category:     strings.TrimSpace(*category),
		TextSample:   textSample,
		FileName:     fileName,
		MaxResults:   *maxResults,
		Format:       resolve.Format(strings.ToLower(strings.TrimSpace(*format))),
	}

	result, err := engine.Resolve(evidence)
	recordAudit(cfg, logger, *noAudit, evidence, result, err)
	if err != nil {
		switch {
		case errors.Is(err, resolve.ErrUnknownContext):
			fmt.Fprintf(os.Stderr, "unknown context %q\n", *aiContext)
		case errors.Is(err, resolve.ErrUnknownFormat):
			fmt.Fprintf(os.Stderr, "unknown format %q\n", *format)
		case errors.Is(err, resolve.ErrInvalidEvidence):
			fmt.Fprintln(os.Stderr, "nothing to match against: supply a filename, text sample, signals or a known type")
		default:
			fmt.Fprintf(os.Stderr, "resolve failed: %v\n", err)
		}
		os.Exit(1)
	}

	if evidence.Format != resolve.FormatFull && result.Prompt != "" {
		fmt.Println(result.Prompt)
		return
	}
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode result failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func recordAudit(cfg *config.Config, logger *slog.Logger, skip bool, ev resolve.Evidence, result resolve.ResolvedResult, resolveErr error) {
	if skip {
		return
	}
	stateDir := strings.TrimSpace(cfg.StateDir)
	if stateDir == "" {
		stateDir = config.DefaultStateDir()
	}
	store, err := auditlog.New(auditlog.Options{StateDir: stateDir})
	if err != nil {
		logger.Warn("audit store unavailable", "error", err)
		return
	}
	entry := auditlog.Entry{
		Context:        string(ev.Context),
		FileName:       ev.FileName,
		DocumentType:   ev.DocumentType,
		CandidateCount: len(result.Scores),
		CacheHit:       result.CacheHit,
	}
	if resolveErr != nil {
		entry.Error = resolveErr.Error()
	} else if len(result.References) > 0 {
		entry.TopReferenceID = result.References[0].Reference.ID
		entry.TopScore = result.References[0].Score
	}
	store.Append(entry)
}

func loadConfigOrDefault(path string) *config.Config {
	p := strings.TrimSpace(path)
	if p == "" {
		p = config.DefaultConfigPath()
	}
	cfg, err := config.Load(p)
	if err != nil {
		return &config.Config{}
	}
	return cfg
}
