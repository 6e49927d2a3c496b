package utils

import "sort"

// Token estimates use the common 1 token ~= 4 characters heuristic. They size
// prompts against a model's context window; no tokenizer is involved.

// CountTokens estimates the number of tokens in text. Non-empty text is at
// least one token.
func CountTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	tokens := len([]rune(text)) / 4
	if tokens == 0 {
		return 1
	}
	return tokens
}

// TruncateToTokenLimit cuts text to roughly limit tokens.
func TruncateToTokenLimit(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	charLimit := limit * 4
	if charLimit >= len(runes) {
		return text
	}
	return string(runes[:charLimit])
}

// Section is a labelled token count.
type Section struct {
	Label  string
	Tokens int
}

// TokenBreakdown counts tokens per labelled section, ordered by label.
func TokenBreakdown(sections map[string]string) []Section {
	out := make([]Section, 0, len(sections))
	for k, v := range sections {
		out = append(out, Section{Label: k, Tokens: CountTokens(v)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}
