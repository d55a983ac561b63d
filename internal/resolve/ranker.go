package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dealdocs/refengine/internal/catalog"
)

// ResolvedCandidate is one scored reference with the reasons it matched.
// MatchReasons are for audit and debugging by the calling feature, never
// for end-user display.
type ResolvedCandidate struct {
	Reference    catalog.ReferenceRecord `json:"reference"`
	Score        float64                 `json:"score"`
	MatchReasons []string                `json:"match_reasons,omitempty"`
}

// ResolvedResult is the outcome of one resolution call.
type ResolvedResult struct {
	// References is the ranked top-N, capped at Evidence.MaxResults.
	References []ResolvedCandidate `json:"references"`

	// Scores is the full non-excluded candidate list, uncapped, for
	// diagnostics.
	Scores []ResolvedCandidate `json:"scores,omitempty"`

	// CacheHit reports whether the result was served from the resolution
	// cache. Observability only; it never changes the ranking.
	CacheHit bool `json:"cache_hit"`

	// Prompt carries pre-rendered prompt text for non-"full" formats.
	Prompt string `json:"prompt,omitempty"`
}

type scoredCandidate struct {
	findings *findings
	score    float64
}

// rank orders the surviving candidates and packages the result.
//
// Tie-break chain: score desc, fired require-rule count desc, presence of a
// type-namespace tag hit, then record ID ascending. The final ID comparison
// makes the ordering total and deterministic.
func rank(snap *catalog.Snapshot, ev *normalizedEvidence, candidates []scoredCandidate) ResolvedResult {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		ar, br := a.findings.firedRequireCount(), b.findings.firedRequireCount()
		if ar != br {
			return ar > br
		}
		if a.findings.typeTagHit != b.findings.typeTagHit {
			return a.findings.typeTagHit
		}
		return a.findings.record.Record.ID < b.findings.record.Record.ID
	})

	// Identity fast path: an explicitly known document type outranks every
	// heuristic score, unless that record was vetoed by an exclude pattern.
	if ev.docType != "" {
		if rec, ok := snap.ByType(ev.docType); ok && rec.AppliesTo(string(ev.raw.Context)) {
			idx := -1
			for i, cand := range candidates {
				if cand.findings.record == rec {
					idx = i
					break
				}
			}
			switch {
			case idx > 0:
				promoted := candidates[idx]
				copy(candidates[1:idx+1], candidates[:idx])
				candidates[0] = promoted
			case idx < 0:
				// The record survived no heuristic (e.g. its require gate
				// did not fire) but identity still wins when it was not
				// hard-excluded.
				f := matchRecord(rec, ev)
				if !f.hardExcluded() {
					candidates = append([]scoredCandidate{{findings: f, score: 0}}, candidates...)
				}
			}
		}
	}

	result := ResolvedResult{
		References: make([]ResolvedCandidate, 0, min(len(candidates), ev.maxResults)),
		Scores:     make([]ResolvedCandidate, 0, len(candidates)),
	}
	for i, cand := range candidates {
		out := ResolvedCandidate{
			Reference:    cand.findings.record.Record,
			Score:        cand.score,
			MatchReasons: matchReasons(ev, cand.findings),
		}
		result.Scores = append(result.Scores, out)
		if i < ev.maxResults {
			result.References = append(result.References, out)
		}
	}
	return result
}

func matchReasons(ev *normalizedEvidence, f *findings) []string {
	reasons := make([]string, 0, len(f.filenameHits)+len(f.tagHits)+len(f.keywordHits)+len(f.firedRules)+1)
	if ev.docType != "" && strings.EqualFold(f.record.Record.FileType, ev.raw.DocumentType) {
		reasons = append(reasons, fmt.Sprintf("known document type: %s", f.record.Record.FileType))
	}
	for _, pattern := range f.filenameHits {
		reasons = append(reasons, fmt.Sprintf("filename matched pattern %s", pattern))
	}
	for _, tag := range f.tagHits {
		reasons = append(reasons, fmt.Sprintf("tag hit: %s:%s (+%.1f)", tag.Namespace, tag.Value, tag.EffectiveWeight()))
	}
	for _, kw := range f.keywordHits {
		reasons = append(reasons, fmt.Sprintf("keyword hit: %s", kw))
	}
	for _, rule := range f.firedRules {
		reasons = append(reasons, fmt.Sprintf("rule fired: %s", rule.Condition))
	}
	if len(reasons) == 0 {
		return nil
	}
	return reasons
}
