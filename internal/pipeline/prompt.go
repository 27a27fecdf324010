package pipeline

import "fmt"

// Generation defaults, carried over from the tool this replaces.
const (
	DefaultMaxTokens = 256
	DefaultTopP      = 0.8
)

// stopTokens terminate generation early; the model tends to start a new
// "Text:"/"Summary:" turn or a dialogue when it is done summarizing.
var stopTokens = []string{"Text:", "Summary:", "\n\n", "User:", "Assistant:"}

// buildPrompt wraps the input in the fixed summarization template.
func buildPrompt(text string) string {
	return fmt.Sprintf("Text: %s\n\nSummary:", text)
}
