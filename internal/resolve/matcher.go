package resolve

import (
	"strings"

	"github.com/dealdocs/refengine/internal/catalog"
)

// findings records which indicators of one reference fired against one
// evidence set. The scorer turns findings into a score; the ranker turns
// them into human-readable match reasons.
type findings struct {
	record *catalog.CompiledRecord

	tagHits      []catalog.Tag
	keywordHits  []string
	filenameHits []string // source pattern text
	excludeHits  []string
	firedRules   []catalog.DecisionRule

	typeTagHit bool
}

func (f *findings) hardExcluded() bool { return len(f.excludeHits) > 0 }

func (f *findings) firedRequireCount() int {
	n := 0
	for _, rule := range f.firedRules {
		if rule.Action == catalog.ActionRequire {
			n++
		}
	}
	return n
}

// matchRecord evaluates every indicator of one reference against the
// normalized evidence. It never filters; dropping candidates is the
// scorer's job, and active/context filtering happens before this runs.
func matchRecord(rec *catalog.CompiledRecord, ev *normalizedEvidence) *findings {
	f := &findings{record: rec}

	for _, tag := range rec.Record.Tags {
		value := strings.ToLower(strings.TrimSpace(tag.Value))
		matched := ev.hasSignal(value)
		if !matched && tag.Namespace == catalog.NamespaceType {
			// Type tags also match an explicitly known type or category,
			// exact string comparison only.
			matched = value == ev.docType || (ev.category != "" && value == ev.category)
		}
		if matched {
			f.tagHits = append(f.tagHits, tag)
			if tag.Namespace == catalog.NamespaceType {
				f.typeTagHit = true
			}
		}
	}

	if ev.textSample != "" {
		for _, kw := range rec.Record.Keywords {
			if strings.Contains(ev.textSample, strings.ToLower(kw)) {
				f.keywordHits = append(f.keywordHits, kw)
			}
		}
	}

	if ev.fileName != "" {
		for i, re := range rec.FilenamePatterns {
			if re.MatchString(ev.fileName) {
				f.filenameHits = append(f.filenameHits, rec.Record.FilenamePatterns[i])
			}
		}
		for i, re := range rec.ExcludePatterns {
			if re.MatchString(ev.fileName) {
				f.excludeHits = append(f.excludeHits, rec.Record.ExcludePatterns[i])
			}
		}
	}

	for _, rule := range rec.Record.DecisionRules {
		for _, sig := range rule.Signals {
			if ev.hasSignal(sig) {
				f.firedRules = append(f.firedRules, rule)
				break
			}
		}
	}

	return f
}
