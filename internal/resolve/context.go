package resolve

// Context identifies which consuming feature is asking for a resolution.
type Context string

const (
	ContextClassification Context = "classification"
	ContextFiling         Context = "filing"
	ContextExtraction     Context = "extraction"
	ContextSummarization  Context = "summarization"
	ContextChat           Context = "chat"
	ContextChecklist      Context = "checklist"
)

// Valid reports whether the context is one of the enumerated consumer tags.
func (c Context) Valid() bool {
	switch c {
	case ContextClassification, ContextFiling, ContextExtraction,
		ContextSummarization, ContextChat, ContextChecklist:
		return true
	}
	return false
}

// Format selects the output shape of a resolution.
//
// FormatFull returns structured data only. The other shapes additionally carry
// pre-rendered prompt text produced by the configured PromptRenderer.
type Format string

const (
	FormatFull    Format = "full"
	FormatPrompt  Format = "prompt"
	FormatCompact Format = "compact"
)

// Valid reports whether the format is a known output shape.
func (f Format) Valid() bool {
	switch f {
	case FormatFull, FormatPrompt, FormatCompact:
		return true
	}
	return false
}
