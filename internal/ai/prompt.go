package ai

import (
	"fmt"
	"sort"
	"strings"
)

// Entry is one key/value line of prompt context.
type Entry struct {
	Key   string
	Value any
}

// PromptContext is ordered analysis context; entries render in the order given.
type PromptContext []Entry

// BuildPrompt renders the analyst prompt for a statistics summary. ctx may be
// nil, a PromptContext, a map (rendered in key order), or any other value,
// which is rendered with fmt.Sprint. Empty context adds nothing.
func BuildPrompt(stats string, ctx any) string {
	lines := []string{
		"You are a data analyst.",
		"Given the following CSV summary/data, provide a concise, clear analysis and actionable insights.",
		"CSV Data Summary:",
		stats,
	}
	if ctx == nil {
		return strings.Join(lines, "\n")
	}
	lines = append(lines, "", "Additional Analysis Context:")
	switch c := ctx.(type) {
	case string:
		if c == "" {
			return strings.Join(lines[:4], "\n")
		}
		lines = append(lines, c)
	case PromptContext:
		if len(c) == 0 {
			return strings.Join(lines[:4], "\n")
		}
		for _, e := range c {
			lines = append(lines, fmt.Sprintf("- %s: %v", e.Key, e.Value))
		}
	case map[string]any:
		if len(c) == 0 {
			return strings.Join(lines[:4], "\n")
		}
		keys := make([]string, 0, len(c))
		for k := range c {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("- %s: %v", k, c[k]))
		}
	default:
		lines = append(lines, fmt.Sprint(ctx))
	}
	return strings.Join(lines, "\n")
}
