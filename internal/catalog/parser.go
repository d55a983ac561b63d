package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Reference cards are markdown files with a YAML frontmatter block carrying
// the structured matching data, followed by "##" sections with the prose
// (Description, Identification, Disambiguation, Terminology).

type cardFrontmatter struct {
	ID       string `yaml:"id"`
	FileType string `yaml:"file_type"`
	Category string `yaml:"category"`
	Filing   struct {
		TargetFolder string `yaml:"target_folder"`
		TargetLevel  string `yaml:"target_level"`
	} `yaml:"filing"`
	Tags []struct {
		Namespace string  `yaml:"namespace"`
		Value     string  `yaml:"value"`
		Weight    float64 `yaml:"weight"`
	} `yaml:"tags"`
	Keywords         []string `yaml:"keywords"`
	FilenamePatterns []string `yaml:"filename_patterns"`
	ExcludePatterns  []string `yaml:"exclude_patterns"`
	DecisionRules    []struct {
		Condition string   `yaml:"condition"`
		Signals   []string `yaml:"signals"`
		Priority  int      `yaml:"priority"`
		Action    string   `yaml:"action"`
	} `yaml:"decision_rules"`
	ApplicableContexts []string `yaml:"applicable_contexts"`
	ExpectedFields     []string `yaml:"expected_fields"`
	Source             string   `yaml:"source"`
	Inactive           bool     `yaml:"inactive"`
	Version            int      `yaml:"version"`
	UpdatedAtUnixMs    int64    `yaml:"updated_at_unix_ms"`
}

// LoadCardDir parses every .md reference card under dir and returns the
// records sorted by ID. Duplicate IDs fail the whole load.
func LoadCardDir(dir string) ([]ReferenceRecord, error) {
	root := strings.TrimSpace(dir)
	if root == "" {
		return nil, fmt.Errorf("missing card directory")
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	records := make([]ReferenceRecord, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(filepath.Ext(entry.Name())) != ".md" {
			continue
		}
		path := filepath.Join(root, entry.Name())
		rec, err := ParseCard(path)
		if err != nil {
			return nil, err
		}
		if _, exists := seen[rec.ID]; exists {
			return nil, fmt.Errorf("duplicate reference id: %s", rec.ID)
		}
		seen[rec.ID] = struct{}{}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no reference cards found under %s", root)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

// ParseCard parses a single reference card file.
func ParseCard(path string) (ReferenceRecord, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return ReferenceRecord{}, err
	}
	fmRaw, body, err := splitFrontmatter(string(content))
	if err != nil {
		return ReferenceRecord{}, fmt.Errorf("%s: %w", path, err)
	}

	var fm cardFrontmatter
	if err := yaml.Unmarshal([]byte(fmRaw), &fm); err != nil {
		return ReferenceRecord{}, fmt.Errorf("%s: invalid frontmatter: %w", path, err)
	}

	rec := ReferenceRecord{
		ID:       strings.TrimSpace(fm.ID),
		FileType: strings.TrimSpace(fm.FileType),
		Category: strings.TrimSpace(fm.Category),
		Filing: Filing{
			TargetFolder: strings.TrimSpace(fm.Filing.TargetFolder),
			TargetLevel:  FilingLevel(strings.TrimSpace(fm.Filing.TargetLevel)),
		},
		Keywords:           normalizeStringList(fm.Keywords),
		FilenamePatterns:   trimStringList(fm.FilenamePatterns),
		ExcludePatterns:    trimStringList(fm.ExcludePatterns),
		ApplicableContexts: normalizeStringList(fm.ApplicableContexts),
		ExpectedFields:     trimStringList(fm.ExpectedFields),
		Source:             strings.TrimSpace(fm.Source),
		IsActive:           !fm.Inactive,
		Version:            fm.Version,
		UpdatedAtUnixMs:    fm.UpdatedAtUnixMs,
	}
	if rec.ID == "" {
		return ReferenceRecord{}, fmt.Errorf("%s: missing id", path)
	}
	if rec.FileType == "" {
		return ReferenceRecord{}, fmt.Errorf("%s: missing file_type", path)
	}
	if rec.Version <= 0 {
		return ReferenceRecord{}, fmt.Errorf("%s: invalid version", path)
	}
	switch rec.Filing.TargetLevel {
	case FilingLevelClient, FilingLevelProject:
	default:
		return ReferenceRecord{}, fmt.Errorf("%s: invalid filing target_level %q", path, rec.Filing.TargetLevel)
	}

	for _, tag := range fm.Tags {
		ns := TagNamespace(strings.ToLower(strings.TrimSpace(tag.Namespace)))
		switch ns {
		case NamespaceContext, NamespaceSignal, NamespaceDomain, NamespaceType, NamespaceTrigger:
		default:
			return ReferenceRecord{}, fmt.Errorf("%s: unknown tag namespace %q", path, tag.Namespace)
		}
		value := strings.TrimSpace(tag.Value)
		if value == "" {
			return ReferenceRecord{}, fmt.Errorf("%s: tag with empty value in namespace %q", path, ns)
		}
		rec.Tags = append(rec.Tags, Tag{Namespace: ns, Value: value, Weight: tag.Weight})
	}

	for i, rule := range fm.DecisionRules {
		action := RuleAction(strings.ToLower(strings.TrimSpace(rule.Action)))
		switch action {
		case ActionInclude, ActionBoost, ActionRequire:
		default:
			return ReferenceRecord{}, fmt.Errorf("%s: decision rule %d: unknown action %q", path, i, rule.Action)
		}
		if rule.Priority < 1 || rule.Priority > 10 {
			return ReferenceRecord{}, fmt.Errorf("%s: decision rule %d: priority %d out of range 1..10", path, i, rule.Priority)
		}
		signals := normalizeStringList(rule.Signals)
		if len(signals) == 0 {
			return ReferenceRecord{}, fmt.Errorf("%s: decision rule %d: no signals", path, i)
		}
		rec.DecisionRules = append(rec.DecisionRules, DecisionRule{
			Condition: strings.TrimSpace(rule.Condition),
			Signals:   signals,
			Priority:  rule.Priority,
			Action:    action,
		})
	}

	sections := parseSections(body)
	rec.Description = strings.TrimSpace(strings.Join(sections["Description"], "\n"))
	rec.IdentificationRules = parseIdentificationRules(sections["Identification"])
	rec.Disambiguation = parseBulletList(sections["Disambiguation"])
	rec.Terminology, err = parseTerminology(sections["Terminology"], path)
	if err != nil {
		return ReferenceRecord{}, err
	}
	if rec.Description == "" {
		return ReferenceRecord{}, fmt.Errorf("%s: missing Description section", path)
	}
	if len(rec.IdentificationRules) == 0 {
		return ReferenceRecord{}, fmt.Errorf("%s: Identification section must contain at least one rule", path)
	}

	return rec, nil
}

// parseIdentificationRules converts bullet lines into structured rules. The
// legacy "PRIMARY:" / "CRITICAL:" string prefixes are folded into the
// emphasis field here, at load time, so nothing downstream parses prefixes.
func parseIdentificationRules(lines []string) []IdentificationRule {
	bullets := parseBulletList(lines)
	out := make([]IdentificationRule, 0, len(bullets))
	for _, text := range bullets {
		rule := IdentificationRule{Text: text, Emphasis: EmphasisNormal}
		switch {
		case strings.HasPrefix(text, "PRIMARY:"):
			rule.Text = strings.TrimSpace(strings.TrimPrefix(text, "PRIMARY:"))
			rule.Emphasis = EmphasisPrimary
		case strings.HasPrefix(text, "CRITICAL:"):
			rule.Text = strings.TrimSpace(strings.TrimPrefix(text, "CRITICAL:"))
			rule.Emphasis = EmphasisCritical
		}
		if rule.Text == "" {
			continue
		}
		out = append(out, rule)
	}
	return out
}

func parseTerminology(lines []string, sourcePath string) (map[string]string, error) {
	bullets := parseBulletList(lines)
	if len(bullets) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(bullets))
	for _, entry := range bullets {
		term, definition, found := strings.Cut(entry, ":")
		if !found || strings.TrimSpace(term) == "" || strings.TrimSpace(definition) == "" {
			return nil, fmt.Errorf("%s: invalid terminology entry: %s", sourcePath, entry)
		}
		out[strings.TrimSpace(term)] = strings.TrimSpace(definition)
	}
	return out, nil
}

func parseBulletList(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "-"))
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func splitFrontmatter(content string) (string, string, error) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalized, "---\n") {
		return "", "", fmt.Errorf("missing frontmatter start")
	}
	rest := normalized[len("---\n"):]
	idx := strings.Index(rest, "\n---\n")
	if idx < 0 {
		return "", "", fmt.Errorf("missing frontmatter end")
	}
	return rest[:idx], rest[idx+len("\n---\n"):], nil
}

func parseSections(body string) map[string][]string {
	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
	sections := make(map[string][]string)
	current := ""
	for _, line := range lines {
		if strings.HasPrefix(line, "## ") {
			current = strings.TrimSpace(strings.TrimPrefix(line, "## "))
			if current != "" {
				sections[current] = make([]string, 0, 8)
			}
			continue
		}
		if current == "" {
			continue
		}
		sections[current] = append(sections[current], line)
	}
	for key, values := range sections {
		sections[key] = trimEmptyLines(values)
	}
	return sections
}

func trimEmptyLines(lines []string) []string {
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	end := len(lines)
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	if start >= end {
		return nil
	}
	out := make([]string, 0, end-start)
	for _, line := range lines[start:end] {
		out = append(out, strings.TrimRight(line, " \t"))
	}
	return out
}

func trimStringList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		value := strings.TrimSpace(item)
		if value == "" {
			continue
		}
		out = append(out, value)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func normalizeStringList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		value := strings.TrimSpace(item)
		if value == "" {
			continue
		}
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
