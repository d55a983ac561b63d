// Package resolve implements the reference resolution engine: given a
// document's observable evidence and a compiled catalog snapshot, it selects
// and ranks the reference records that best describe the document.
//
// Resolution is a pure function of (snapshot, evidence): deterministic,
// stateless per call, safe for unbounded concurrent use. The engine never
// touches the network, a language model, or document content beyond the
// evidence handed to it.
package resolve

import (
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/dealdocs/refengine/internal/catalog"
)

// PromptRenderer renders consumer-facing prompt text from a resolved result.
// The concrete implementation lives outside the engine; the engine only
// invokes it for non-"full" output formats.
type PromptRenderer interface {
	Render(ctx Context, format Format, result ResolvedResult) string
}

type Options struct {
	// Snapshot is the initial catalog. May be nil; Resolve then returns
	// ErrCatalogUnavailable until Reload publishes one.
	Snapshot *catalog.Snapshot

	// CacheSize bounds the resolution cache entry count. <=0 uses the default.
	CacheSize int

	// Renderer produces prompt text for non-"full" formats. Optional.
	Renderer PromptRenderer

	Logger *slog.Logger
}

// Engine resolves evidence against an atomically swappable catalog snapshot.
type Engine struct {
	snapshot atomic.Pointer[catalog.Snapshot]
	cache    *resolutionCache
	renderer PromptRenderer
	log      *slog.Logger
}

func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	e := &Engine{
		cache:    newResolutionCache(opts.CacheSize),
		renderer: opts.Renderer,
		log:      logger,
	}
	if opts.Snapshot != nil {
		e.snapshot.Store(opts.Snapshot)
	}
	return e
}

// Reload publishes a new catalog snapshot. The swap is a single atomic
// pointer store, so in-flight resolutions keep their old snapshot and never
// observe a half-updated catalog. Cached results invalidate lazily via the
// snapshot version.
func (e *Engine) Reload(snap *catalog.Snapshot) {
	if snap == nil {
		return
	}
	e.snapshot.Store(snap)
	e.log.Info("catalog snapshot reloaded", "records", snap.Len(), "version", snap.Version())
}

// Snapshot returns the currently published catalog snapshot, or nil.
func (e *Engine) Snapshot() *catalog.Snapshot {
	return e.snapshot.Load()
}

// Resolve scores every applicable catalog record against the evidence and
// returns the ranked result. An evidence set that matches nothing yields an
// empty result, not an error.
func (e *Engine) Resolve(ev Evidence) (ResolvedResult, error) {
	// Context is validated before any catalog work.
	if !ev.Context.Valid() {
		return ResolvedResult{}, ErrUnknownContext
	}
	snap := e.snapshot.Load()
	if snap == nil {
		return ResolvedResult{}, ErrCatalogUnavailable
	}
	norm, err := normalizeEvidence(ev)
	if err != nil {
		return ResolvedResult{}, err
	}

	key := norm.cacheKey()
	if cached, ok := e.cache.get(snap.Version(), key); ok {
		cached.CacheHit = true
		return cached, nil
	}

	candidates := make([]scoredCandidate, 0, snap.Len())
	for _, rec := range snap.Records() {
		if !rec.AppliesTo(string(ev.Context)) {
			continue
		}
		f := matchRecord(rec, norm)
		score, droppedOut := scoreFindings(f)
		if droppedOut {
			continue
		}
		if score == 0 && len(f.tagHits) == 0 && len(f.keywordHits) == 0 &&
			len(f.filenameHits) == 0 && len(f.firedRules) == 0 {
			continue
		}
		candidates = append(candidates, scoredCandidate{findings: f, score: score})
	}

	result := rank(snap, norm, candidates)
	if norm.format != FormatFull && e.renderer != nil {
		result.Prompt = e.renderer.Render(ev.Context, norm.format, result)
	}

	e.cache.put(snap.Version(), key, result)
	return result, nil
}
