package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"
)

// CompiledRecord pairs a reference record with its patterns compiled once at
// load time, so matching never recompiles regexes per resolution.
type CompiledRecord struct {
	Record ReferenceRecord

	FilenamePatterns []*regexp.Regexp
	ExcludePatterns  []*regexp.Regexp

	// contexts is the lower-cased applicable-context set; empty means "all".
	contexts map[string]struct{}
}

// AppliesTo reports whether the record participates in resolutions for the
// given consumer context. A record that declares no contexts applies to all.
func (c *CompiledRecord) AppliesTo(context string) bool {
	if len(c.contexts) == 0 {
		return true
	}
	_, ok := c.contexts[strings.ToLower(strings.TrimSpace(context))]
	return ok
}

// Snapshot is an immutable, fully compiled view of the reference catalog.
// It is built once and shared read-only across any number of resolutions;
// reload publishes a fresh snapshot, never mutates an existing one.
type Snapshot struct {
	records []*CompiledRecord
	byID    map[string]*CompiledRecord
	byType  map[string]*CompiledRecord
	version int
}

type SnapshotOptions struct {
	Logger *slog.Logger
}

// NewSnapshot compiles records into an immutable snapshot.
//
// Duplicate IDs are an authoring error and fail the whole load. A record whose
// filename or exclude patterns do not compile is logged and excluded from
// matching so one bad record never breaks resolution for the rest of the
// catalog. Inactive records never enter the match set but still contribute to
// the aggregate version.
func NewSnapshot(records []ReferenceRecord, opts SnapshotOptions) (*Snapshot, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	snap := &Snapshot{
		records: make([]*CompiledRecord, 0, len(records)),
		byID:    make(map[string]*CompiledRecord, len(records)),
		byType:  make(map[string]*CompiledRecord, len(records)),
	}

	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		id := strings.TrimSpace(rec.ID)
		if id == "" {
			return nil, fmt.Errorf("reference record with empty id (file_type %q)", rec.FileType)
		}
		if _, exists := seen[id]; exists {
			return nil, fmt.Errorf("duplicate reference id: %s", id)
		}
		seen[id] = struct{}{}

		if rec.Version > snap.version {
			snap.version = rec.Version
		}
		if !rec.IsActive {
			continue
		}

		compiled, err := compileRecord(rec)
		if err != nil {
			logger.Warn("excluding reference with invalid pattern",
				"reference_id", id, "error", err)
			continue
		}
		snap.records = append(snap.records, compiled)
		snap.byID[id] = compiled
		if key := strings.ToLower(strings.TrimSpace(rec.FileType)); key != "" {
			snap.byType[key] = compiled
		}
	}

	// Deterministic iteration order regardless of source ordering.
	sort.Slice(snap.records, func(i, j int) bool {
		return snap.records[i].Record.ID < snap.records[j].Record.ID
	})

	warnUnknownRuleSignals(snap.records, logger)
	return snap, nil
}

// Records returns the active, compiled match set in ID order.
func (s *Snapshot) Records() []*CompiledRecord { return s.records }

// ByID looks up an active record by its stable identifier.
func (s *Snapshot) ByID(id string) (*CompiledRecord, bool) {
	rec, ok := s.byID[strings.TrimSpace(id)]
	return rec, ok
}

// ByType looks up an active record by its display type name (case-insensitive).
func (s *Snapshot) ByType(fileType string) (*CompiledRecord, bool) {
	rec, ok := s.byType[strings.ToLower(strings.TrimSpace(fileType))]
	return rec, ok
}

// Version is the aggregate catalog version (max of all record versions).
// The resolution cache keys invalidation off this value.
func (s *Snapshot) Version() int { return s.version }

// Len reports the number of matchable records.
func (s *Snapshot) Len() int { return len(s.records) }

func compileRecord(rec ReferenceRecord) (*CompiledRecord, error) {
	out := &CompiledRecord{Record: rec}

	for _, pattern := range rec.FilenamePatterns {
		re, err := compileInsensitive(pattern)
		if err != nil {
			return nil, fmt.Errorf("filename pattern %q: %w", pattern, err)
		}
		out.FilenamePatterns = append(out.FilenamePatterns, re)
	}
	for _, pattern := range rec.ExcludePatterns {
		re, err := compileInsensitive(pattern)
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", pattern, err)
		}
		out.ExcludePatterns = append(out.ExcludePatterns, re)
	}

	if len(rec.ApplicableContexts) > 0 {
		out.contexts = make(map[string]struct{}, len(rec.ApplicableContexts))
		for _, c := range rec.ApplicableContexts {
			c = strings.ToLower(strings.TrimSpace(c))
			if c == "" {
				continue
			}
			out.contexts[c] = struct{}{}
		}
	}
	return out, nil
}

func compileInsensitive(pattern string) (*regexp.Regexp, error) {
	trimmed := strings.TrimSpace(pattern)
	if trimmed == "" {
		return nil, fmt.Errorf("empty pattern")
	}
	if strings.HasPrefix(trimmed, "(?i)") {
		return regexp.Compile(trimmed)
	}
	return regexp.Compile("(?i)" + trimmed)
}

// warnUnknownRuleSignals flags decision-rule signal keys that appear in no
// tag or keyword set anywhere in the catalog. These are usually authoring
// typos, but callers may also supply detector-derived signals the catalog
// never lists, so this stays a warning rather than a load failure.
func warnUnknownRuleSignals(records []*CompiledRecord, logger *slog.Logger) {
	known := make(map[string]struct{})
	for _, rec := range records {
		for _, tag := range rec.Record.Tags {
			known[strings.ToLower(strings.TrimSpace(tag.Value))] = struct{}{}
		}
		for _, kw := range rec.Record.Keywords {
			known[strings.ToLower(strings.TrimSpace(kw))] = struct{}{}
		}
	}
	for _, rec := range records {
		for _, rule := range rec.Record.DecisionRules {
			for _, sig := range rule.Signals {
				key := strings.ToLower(strings.TrimSpace(sig))
				if key == "" {
					continue
				}
				if _, ok := known[key]; !ok {
					logger.Warn("decision rule signal not present in any catalog tag or keyword",
						"reference_id", rec.Record.ID, "signal", sig)
				}
			}
		}
	}
}
