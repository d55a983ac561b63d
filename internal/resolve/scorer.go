package resolve

import (
	"sort"

	"github.com/dealdocs/refengine/internal/catalog"
)

// Scoring constants. Filename hits are strong, near-deterministic evidence
// and outweigh several keyword hits; keywords are abundant but noisy, so
// each contributes less than a default-weight tag.
const (
	keywordHitScore      = 0.5
	filenamePatternScore = 2.5

	// Fired include/require rules add priority * additiveRuleScale.
	additiveRuleScale = 0.5
	// Fired boost rules multiply the running score by 1 + priority * boostRuleScale.
	boostRuleScale = 0.1
)

// scoreFindings converts findings into a non-negative score. dropped reports
// a hard exclusion (exclude-pattern veto) or an unsatisfied require gate;
// dropped candidates never reach the ranking.
func scoreFindings(f *findings) (score float64, dropped bool) {
	// Exclude patterns are an absolute veto; nothing overrides them.
	if f.hardExcluded() {
		return 0, true
	}

	// A record that declares require rules demands at least one of them fires.
	hasRequire := false
	for _, rule := range f.record.Record.DecisionRules {
		if rule.Action == catalog.ActionRequire {
			hasRequire = true
			break
		}
	}
	if hasRequire && f.firedRequireCount() == 0 {
		return 0, true
	}

	for _, tag := range f.tagHits {
		score += tag.EffectiveWeight()
	}
	score += float64(len(f.keywordHits)) * keywordHitScore
	score += float64(len(f.filenameHits)) * filenamePatternScore

	// Fired rules apply in priority order, highest first; equal priorities
	// keep declaration order. Each rule fires at most once.
	rules := append([]catalog.DecisionRule(nil), f.firedRules...)
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Priority > rules[j].Priority })
	for _, rule := range rules {
		switch rule.Action {
		case catalog.ActionInclude, catalog.ActionRequire:
			score += float64(rule.Priority) * additiveRuleScale
		case catalog.ActionBoost:
			score *= 1 + float64(rule.Priority)*boostRuleScale
		}
	}

	return score, false
}
