package catalog

// TagNamespace scopes a tag value to the kind of evidence it matches against.
type TagNamespace string

const (
	NamespaceContext TagNamespace = "context"
	NamespaceSignal  TagNamespace = "signal"
	NamespaceDomain  TagNamespace = "domain"
	NamespaceType    TagNamespace = "type"
	NamespaceTrigger TagNamespace = "trigger"
)

// Tag is one namespaced indicator on a reference record. Weight defaults to 1.0
// when the catalog author leaves it unset.
type Tag struct {
	Namespace TagNamespace `json:"namespace"`
	Value     string       `json:"value"`
	Weight    float64      `json:"weight,omitempty"`
}

// EffectiveWeight returns the tag weight with the default applied.
func (t Tag) EffectiveWeight() float64 {
	if t.Weight <= 0 {
		return 1.0
	}
	return t.Weight
}

// RuleAction controls how a fired decision rule affects a candidate's score.
//
//   - include: additive evidence, adds scaled priority to the score.
//   - boost: multiplies the running score, used to separate near-duplicate types.
//   - require: gating evidence; if a record carries require rules, at least one
//     must fire or the record is dropped. A fired require rule also scores like include.
type RuleAction string

const (
	ActionInclude RuleAction = "include"
	ActionBoost   RuleAction = "boost"
	ActionRequire RuleAction = "require"
)

// DecisionRule is a named condition over detected signals.
//
// Priority is 1..10, higher evaluates first. Rules with equal priority are
// evaluated in declaration order within one record.
type DecisionRule struct {
	Condition string     `json:"condition"`
	Signals   []string   `json:"signals"`
	Priority  int        `json:"priority"`
	Action    RuleAction `json:"action"`
}

// RuleEmphasis marks how load-bearing one identification rule is.
type RuleEmphasis string

const (
	EmphasisNormal   RuleEmphasis = "normal"
	EmphasisPrimary  RuleEmphasis = "primary"
	EmphasisCritical RuleEmphasis = "critical"
)

// IdentificationRule is one free-text identifying characteristic of a document
// type, with a structured emphasis level instead of in-band string prefixes.
type IdentificationRule struct {
	Text     string       `json:"text"`
	Emphasis RuleEmphasis `json:"emphasis,omitempty"`
}

// FilingLevel says where the target folder lives in a deal file.
type FilingLevel string

const (
	FilingLevelClient  FilingLevel = "client"
	FilingLevelProject FilingLevel = "project"
)

// Filing is the declared filing destination for documents of this type.
// The engine only exposes it; filing decisions belong to the caller.
type Filing struct {
	TargetFolder string      `json:"target_folder"`
	TargetLevel  FilingLevel `json:"target_level"`
}

// ReferenceRecord fully describes one document type: how to recognise it,
// how to tell it apart from neighbours, and where it files.
type ReferenceRecord struct {
	ID       string `json:"id"`
	FileType string `json:"file_type"`
	Category string `json:"category"`
	Filing   Filing `json:"filing"`

	Description         string               `json:"description,omitempty"`
	IdentificationRules []IdentificationRule `json:"identification_rules,omitempty"`
	Disambiguation      []string             `json:"disambiguation,omitempty"`
	Terminology         map[string]string    `json:"terminology,omitempty"`

	Tags             []Tag          `json:"tags,omitempty"`
	Keywords         []string       `json:"keywords,omitempty"`
	FilenamePatterns []string       `json:"filename_patterns,omitempty"`
	ExcludePatterns  []string       `json:"exclude_patterns,omitempty"`
	DecisionRules    []DecisionRule `json:"decision_rules,omitempty"`

	ApplicableContexts []string `json:"applicable_contexts,omitempty"`
	ExpectedFields     []string `json:"expected_fields,omitempty"`

	Source          string `json:"source,omitempty"`
	IsActive        bool   `json:"is_active"`
	Version         int    `json:"version"`
	UpdatedAtUnixMs int64  `json:"updated_at_unix_ms,omitempty"`
}

// Bundle is the on-disk/embedded catalog payload.
type Bundle struct {
	SchemaVersion int               `json:"schema_version"`
	GeneratedAt   string            `json:"generated_at"`
	Records       []ReferenceRecord `json:"records"`
}

// BundleManifest carries integrity digests for a built bundle.
type BundleManifest struct {
	SchemaVersion int    `json:"schema_version"`
	GeneratedAt   string `json:"generated_at"`
	RecordCount   int    `json:"record_count"`
	BundleSHA256  string `json:"bundle_sha256"`
	RecordsSHA256 string `json:"records_sha256"`
}

const SchemaVersion = 1
