// Package promptpack renders resolved references into context-specific
// prompt text for the AI features that consume the resolution engine:
// full detail for classification and extraction, a medium form for filing
// and summarization, and a compact form for chat and checklist matching.
package promptpack

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dealdocs/refengine/internal/catalog"
	"github.com/dealdocs/refengine/internal/resolve"
)

// Builder implements resolve.PromptRenderer.
type Builder struct{}

func New() *Builder { return &Builder{} }

func (b *Builder) Render(ctx resolve.Context, format resolve.Format, result resolve.ResolvedResult) string {
	if len(result.References) == 0 {
		return "No matching document types."
	}
	if format == resolve.FormatCompact {
		return renderCompact(result)
	}
	switch ctx {
	case resolve.ContextClassification, resolve.ContextExtraction:
		return renderDetailed(result)
	case resolve.ContextChat, resolve.ContextChecklist:
		return renderCompact(result)
	default:
		return renderSummary(result)
	}
}

// renderCompact is one line per reference: enough for a chat tool to pick a
// type without flooding the context window.
func renderCompact(result resolve.ResolvedResult) string {
	var sb strings.Builder
	sb.WriteString("Known document types, best match first:\n")
	for _, cand := range result.References {
		ref := cand.Reference
		fmt.Fprintf(&sb, "- %s (%s) -> %s/%s\n",
			ref.FileType, ref.Category, ref.Filing.TargetLevel, ref.Filing.TargetFolder)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderSummary(result resolve.ResolvedResult) string {
	var sb strings.Builder
	sb.WriteString("Candidate document types, best match first:\n\n")
	for _, cand := range result.References {
		ref := cand.Reference
		fmt.Fprintf(&sb, "## %s\n", ref.FileType)
		fmt.Fprintf(&sb, "Category: %s\n", ref.Category)
		fmt.Fprintf(&sb, "Files to: %s (%s level)\n", ref.Filing.TargetFolder, ref.Filing.TargetLevel)
		if ref.Description != "" {
			fmt.Fprintf(&sb, "%s\n", ref.Description)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderDetailed(result resolve.ResolvedResult) string {
	var sb strings.Builder
	sb.WriteString("Candidate document types, best match first:\n\n")
	for _, cand := range result.References {
		ref := cand.Reference
		fmt.Fprintf(&sb, "## %s\n", ref.FileType)
		fmt.Fprintf(&sb, "Category: %s\n", ref.Category)
		fmt.Fprintf(&sb, "Files to: %s (%s level)\n", ref.Filing.TargetFolder, ref.Filing.TargetLevel)
		if ref.Description != "" {
			fmt.Fprintf(&sb, "\n%s\n", ref.Description)
		}
		if len(ref.IdentificationRules) > 0 {
			sb.WriteString("\nIdentification:\n")
			for _, rule := range ref.IdentificationRules {
				marker := ""
				switch rule.Emphasis {
				case catalog.EmphasisPrimary:
					marker = " [primary]"
				case catalog.EmphasisCritical:
					marker = " [critical]"
				}
				fmt.Fprintf(&sb, "- %s%s\n", rule.Text, marker)
			}
		}
		if len(ref.Disambiguation) > 0 {
			sb.WriteString("\nDisambiguation:\n")
			for _, note := range ref.Disambiguation {
				fmt.Fprintf(&sb, "- %s\n", note)
			}
		}
		if len(ref.Terminology) > 0 {
			sb.WriteString("\nTerminology:\n")
			terms := make([]string, 0, len(ref.Terminology))
			for term := range ref.Terminology {
				terms = append(terms, term)
			}
			sort.Strings(terms)
			for _, term := range terms {
				fmt.Fprintf(&sb, "- %s: %s\n", term, ref.Terminology[term])
			}
		}
		if len(ref.ExpectedFields) > 0 {
			fmt.Fprintf(&sb, "\nExpected fields: %s\n", strings.Join(ref.ExpectedFields, ", "))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
