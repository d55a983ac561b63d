package resolve

import (
	"errors"
	"reflect"
	"testing"
)

func TestNormalizeEvidence_RejectsEmpty(t *testing.T) {
	t.Parallel()

	_, err := normalizeEvidence(Evidence{Context: ContextChat})
	if !errors.Is(err, ErrInvalidEvidence) {
		t.Fatalf("err = %v, want ErrInvalidEvidence", err)
	}
	// Whitespace-only inputs count as empty.
	_, err = normalizeEvidence(Evidence{Context: ContextChat, FileName: "   ", TextSample: "\n"})
	if !errors.Is(err, ErrInvalidEvidence) {
		t.Fatalf("err = %v, want ErrInvalidEvidence", err)
	}
}

func TestNormalizeEvidence_Defaults(t *testing.T) {
	t.Parallel()

	norm, err := normalizeEvidence(Evidence{Context: ContextChat, FileName: "Lease.PDF"})
	if err != nil {
		t.Fatalf("normalizeEvidence: %v", err)
	}
	if norm.maxResults != defaultMaxResults {
		t.Fatalf("maxResults = %d, want %d", norm.maxResults, defaultMaxResults)
	}
	if norm.format != FormatFull {
		t.Fatalf("format = %q, want %q", norm.format, FormatFull)
	}
	if norm.fileName != "lease.pdf" {
		t.Fatalf("fileName = %q, want lowercased", norm.fileName)
	}
}

func TestNormalizeEvidence_RejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := normalizeEvidence(Evidence{Context: ContextChat, FileName: "a.pdf", Format: "banana"})
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("err = %v, want ErrUnknownFormat", err)
	}
}

func TestNormalizeEvidence_SuppliedSignalsSuppressDerivation(t *testing.T) {
	t.Parallel()

	norm, err := normalizeEvidence(Evidence{
		Context:  ContextChat,
		FileName: "valuation_report.pdf",
		Signals:  []string{" RICS-Branding ", "red book", ""},
	})
	if err != nil {
		t.Fatalf("normalizeEvidence: %v", err)
	}
	want := []string{"red book", "rics-branding"}
	if !reflect.DeepEqual(norm.signalList, want) {
		t.Fatalf("signalList = %v, want %v", norm.signalList, want)
	}
	if norm.hasSignal("valuation") {
		t.Fatal("filename tokens must not be derived when signals are supplied")
	}
}

func TestDeriveSignals_UnigramsAndBigrams(t *testing.T) {
	t.Parallel()

	norm, err := normalizeEvidence(Evidence{
		Context:  ContextChat,
		FileName: "insurance_policy_wording_v2.pdf",
	})
	if err != nil {
		t.Fatalf("normalizeEvidence: %v", err)
	}
	for _, sig := range []string{"insurance", "policy", "wording", "insurance policy", "policy wording"} {
		if !norm.hasSignal(sig) {
			t.Fatalf("derived signals missing %q", sig)
		}
	}
}

func TestCacheKey_OrderIndependentSignals(t *testing.T) {
	t.Parallel()

	a, err := normalizeEvidence(Evidence{Context: ContextChat, Signals: []string{"alpha", "beta"}})
	if err != nil {
		t.Fatalf("normalizeEvidence: %v", err)
	}
	b, err := normalizeEvidence(Evidence{Context: ContextChat, Signals: []string{"beta", "alpha"}})
	if err != nil {
		t.Fatalf("normalizeEvidence: %v", err)
	}
	if a.cacheKey() != b.cacheKey() {
		t.Fatal("signal order must not change the cache key")
	}
}

func TestCacheKey_DependsOnEachField(t *testing.T) {
	t.Parallel()

	base := Evidence{Context: ContextChat, FileName: "a.pdf", TextSample: "hello", MaxResults: 5}
	variants := []Evidence{
		{Context: ContextFiling, FileName: "a.pdf", TextSample: "hello", MaxResults: 5},
		{Context: ContextChat, FileName: "b.pdf", TextSample: "hello", MaxResults: 5},
		{Context: ContextChat, FileName: "a.pdf", TextSample: "goodbye", MaxResults: 5},
		{Context: ContextChat, FileName: "a.pdf", TextSample: "hello", MaxResults: 6},
		{Context: ContextChat, FileName: "a.pdf", TextSample: "hello", MaxResults: 5, Format: FormatCompact},
	}

	baseKey := mustKey(t, base)
	for i, variant := range variants {
		if mustKey(t, variant) == baseKey {
			t.Fatalf("variant %d produced the same cache key as the base evidence", i)
		}
	}
}

func mustKey(t *testing.T, ev Evidence) string {
	t.Helper()
	norm, err := normalizeEvidence(ev)
	if err != nil {
		t.Fatalf("normalizeEvidence: %v", err)
	}
	return norm.cacheKey()
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	got := tokenize("Re_ Deal-Update (v2).eml")
	want := []string{"re", "deal", "update", "v2", "eml"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tokenize = %v, want %v", got, want)
	}
	if tokenize("  ") != nil {
		t.Fatal("blank input should tokenize to nil")
	}
	// Repeated words keep only their first occurrence.
	got = tokenize("policy wording policy schedule")
	want = []string{"policy", "wording", "schedule"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tokenize = %v, want %v", got, want)
	}
}
