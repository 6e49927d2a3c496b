package ai

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/sashabaranov/go-openai"
)

// both is a response that exposes choices and text; choices must win.
type both struct{}

func (both) ChoiceContents() []string { return []string{"from choices"} }
func (both) Text() string             { return "from text" }

type textOnly string

func (t textOnly) Text() string { return string(t) }

type noChoices struct{}

func (noChoices) ChoiceContents() []string { return nil }

func TestExtractPrefersChoicesOverText(t *testing.T) {
	got, err := Extract(both{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "from choices" {
		t.Fatalf("got %q", got)
	}
}

func TestExtractShapes(t *testing.T) {
	cases := []struct {
		name string
		raw  any
		want string
	}{
		{"openai value", openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: " a "}}}}, "a"},
		{"openai pointer", &openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "b"}}}}, "b"},
		{"raw json", json.RawMessage(`{"choices":[{"message":{"content":"c\n"}}]}`), "c"},
		{"map", map[string]any{"choices": []any{map[string]any{"message": map[string]any{"content": "d"}}}}, "d"},
		{"map without choices", map[string]any{"result": "hello"}, "map[result:hello]"},
		{"texter", textOnly("\te\t"), "e"},
		{"text response", &TextResponse{Response: "f"}, "f"},
		{"plain string", "  g  ", "g"},
		{"stringer fallback", 42, "42"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Extract(tc.raw)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestExtractErrors(t *testing.T) {
	cases := []struct {
		name string
		raw  any
	}{
		{"nil", nil},
		{"nil openai pointer", (*openai.ChatCompletionResponse)(nil)},
		{"empty choices", openai.ChatCompletionResponse{}},
		{"messenger without choices", noChoices{}},
		{"json missing content", json.RawMessage(`{"choices":[]}`)},
		{"json null content", json.RawMessage(`{"choices":[{"message":{"content":null}}]}`)},
		{"invalid json", []byte("not json")},
		{"map with empty choices", map[string]any{"choices": []any{}}},
		{"blank text", textOnly("   ")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Extract(tc.raw); !errors.Is(err, ErrExtraction) {
				t.Fatalf("expected ErrExtraction, got %v", err)
			}
		})
	}
}
