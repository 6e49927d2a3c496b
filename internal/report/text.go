package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/autoreport-cli/internal/ai"
	"github.com/KaramelBytes/autoreport-cli/internal/analysis"
)

// NullNarrative stands in for the interpretation when the model produced nothing.
const NullNarrative = "(no narrative generated)"

const (
	statsHeader  = "=== BASIC STATISTICS ===\n"
	interpHeader = "\n\n=== AI-INTERPRETATION ===\n"
)

// SerializeStats renders the summary as 2-space indented JSON with sections
// and columns in a fixed order.
func SerializeStats(s *analysis.Summary) (string, error) {
	if s == nil {
		return "", errors.New("summary is nil")
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize stats: %w", err)
	}
	return string(b), nil
}

// NarrativeText returns the narrative, or NullNarrative when absent.
func NarrativeText(n ai.Narrative) string {
	if !n.Present {
		return NullNarrative
	}
	return n.Text
}

// ComposeText builds the plain-text report body.
func ComposeText(stats string, n ai.Narrative) string {
	return statsHeader + stats + interpHeader + NarrativeText(n)
}

// ParseInterpretation returns everything after the interpretation header.
// The stats block is JSON, so the header cannot appear inside it.
// A model reply that is literally NullNarrative reads back the same as an
// absent narrative; callers needing the distinction must keep ai.Narrative.
func ParseInterpretation(text string) (string, bool) {
	if !strings.HasPrefix(text, statsHeader) {
		return "", false
	}
	i := strings.Index(text, interpHeader)
	if i < 0 {
		return "", false
	}
	return text[i+len(interpHeader):], true
}
