package resolve

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
)

// Evidence is everything one resolution call knows about a document.
// It is immutable for the duration of the call.
type Evidence struct {
	// Context is the consuming feature making the request. Required.
	Context Context

	// Signals are pre-computed detector tokens (e.g. "rics-branding").
	// When empty, a best-effort set is derived from FileName and TextSample.
	Signals []string

	// DocumentType is an already-known display type name, used as the
	// identity fast path when it matches a catalog record exactly.
	DocumentType string
	Category     string

	TextSample string
	FileName   string

	// MaxResults caps the returned reference list. Defaults to 12.
	MaxResults int
	Format     Format
}

const (
	defaultMaxResults = 12

	// maxDerivedTokens bounds signal derivation from large text samples.
	maxDerivedTokens = 512
)

// normalizedEvidence is the canonical matching view of one Evidence value.
// Matching runs on the lower-cased fields; the original casing stays on
// Evidence for reporting.
type normalizedEvidence struct {
	raw Evidence

	fileName   string
	textSample string
	docType    string
	category   string

	signals    map[string]struct{}
	signalList []string // sorted, for the cache key

	maxResults int
	format     Format
}

// normalizeEvidence canonicalizes raw call inputs. It fails only when there
// is nothing at all to match against.
func normalizeEvidence(ev Evidence) (*normalizedEvidence, error) {
	norm := &normalizedEvidence{
		raw:        ev,
		fileName:   strings.ToLower(strings.TrimSpace(ev.FileName)),
		textSample: strings.ToLower(strings.TrimSpace(ev.TextSample)),
		docType:    strings.ToLower(strings.TrimSpace(ev.DocumentType)),
		category:   strings.ToLower(strings.TrimSpace(ev.Category)),
		maxResults: ev.MaxResults,
		format:     ev.Format,
	}
	if norm.maxResults <= 0 {
		norm.maxResults = defaultMaxResults
	}
	if norm.format == "" {
		norm.format = FormatFull
	}
	if !norm.format.Valid() {
		return nil, ErrUnknownFormat
	}

	supplied := make([]string, 0, len(ev.Signals))
	for _, sig := range ev.Signals {
		s := strings.ToLower(strings.TrimSpace(sig))
		if s != "" {
			supplied = append(supplied, s)
		}
	}

	if len(supplied) > 0 {
		norm.setSignals(supplied)
	} else {
		// Best-effort derivation: unigrams and adjacent bigrams from the
		// filename and the text sample. Never fails; worst case the signal
		// set is empty and scoring degrades to keyword/filename matching.
		derived := deriveSignals(norm.fileName, norm.textSample)
		norm.setSignals(derived)
	}

	if norm.fileName == "" && norm.textSample == "" && len(norm.signals) == 0 &&
		norm.docType == "" && norm.category == "" {
		return nil, ErrInvalidEvidence
	}
	return norm, nil
}

func (n *normalizedEvidence) setSignals(values []string) {
	n.signals = make(map[string]struct{}, len(values))
	for _, v := range values {
		n.signals[v] = struct{}{}
	}
	n.signalList = make([]string, 0, len(n.signals))
	for v := range n.signals {
		n.signalList = append(n.signalList, v)
	}
	sort.Strings(n.signalList)
}

func (n *normalizedEvidence) hasSignal(value string) bool {
	_, ok := n.signals[strings.ToLower(strings.TrimSpace(value))]
	return ok
}

// cacheKey is an order-independent fingerprint of the normalized evidence.
// The text sample is hashed separately to keep the key bounded.
func (n *normalizedEvidence) cacheKey() string {
	h := sha256.New()
	sample := sha256.Sum256([]byte(n.textSample))
	parts := []string{
		string(n.raw.Context),
		n.docType,
		n.category,
		strings.Join(n.signalList, ","),
		n.fileName,
		hex.EncodeToString(sample[:]),
		strconv.Itoa(n.maxResults),
		string(n.format),
	}
	for _, part := range parts {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func deriveSignals(fileName, textSample string) []string {
	seen := make(map[string]struct{}, 64)
	out := make([]string, 0, 64)
	add := func(tokens []string) {
		for i, tok := range tokens {
			if _, ok := seen[tok]; !ok {
				seen[tok] = struct{}{}
				out = append(out, tok)
			}
			if i+1 < len(tokens) {
				bigram := tok + " " + tokens[i+1]
				if _, ok := seen[bigram]; !ok {
					seen[bigram] = struct{}{}
					out = append(out, bigram)
				}
			}
		}
	}
	add(tokenize(fileName))
	add(tokenize(textSample))
	return out
}

// tokenize splits lower-cased input on non-alphanumeric runes, deduplicating
// while preserving first-seen order.
func tokenize(input string) []string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return nil
	}
	parts := strings.FieldsFunc(input, func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	})
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		if _, exists := seen[part]; exists {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
		if len(out) >= maxDerivedTokens {
			break
		}
	}
	return out
}
