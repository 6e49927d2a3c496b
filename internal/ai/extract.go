package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/tidwall/gjson"
)

// ChoiceMessenger is implemented by chat responses that carry a list of
// choices. ChoiceContents returns the message content of each choice in order.
type ChoiceMessenger interface {
	ChoiceContents() []string
}

// Texter is implemented by text-completion responses.
type Texter interface {
	Text() string
}

// Extractor reads narrative text from one response shape. matched reports
// whether raw had that shape; err is set when it did but held no content.
type Extractor func(raw any) (text string, matched bool, err error)

// Extractors are tried in order and the first match wins.
var Extractors = []Extractor{
	extractChoices,
	extractJSON,
	extractTexter,
	extractAny,
}

const contentPath = "choices.0.message.content"

// Extract returns the trimmed narrative text held by raw. An empty result is
// an error so a blank completion is retried like any other failure.
func Extract(raw any) (string, error) {
	if raw == nil {
		return "", fmt.Errorf("%w: nil response", ErrExtraction)
	}
	for _, ex := range Extractors {
		text, ok, err := ex(raw)
		if !ok {
			continue
		}
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return "", fmt.Errorf("%w: empty content", ErrExtraction)
		}
		return text, nil
	}
	return "", fmt.Errorf("%w: unsupported response %T", ErrExtraction, raw)
}

func extractChoices(raw any) (string, bool, error) {
	var contents []string
	switch r := raw.(type) {
	case *openai.ChatCompletionResponse:
		if r == nil {
			return "", true, fmt.Errorf("%w: nil response", ErrExtraction)
		}
		contents = openAIContents(r)
	case openai.ChatCompletionResponse:
		contents = openAIContents(&r)
	case ChoiceMessenger:
		contents = r.ChoiceContents()
	default:
		return "", false, nil
	}
	if len(contents) == 0 {
		return "", true, fmt.Errorf("%w: response has no choices", ErrExtraction)
	}
	return contents[0], true, nil
}

func openAIContents(r *openai.ChatCompletionResponse) []string {
	out := make([]string, len(r.Choices))
	for i, c := range r.Choices {
		out[i] = c.Message.Content
	}
	return out
}

func extractJSON(raw any) (string, bool, error) {
	var body []byte
	switch r := raw.(type) {
	case json.RawMessage:
		body = r
	case []byte:
		body = r
	case map[string]any:
		// a mapping without choices falls through to the string form
		if _, ok := r["choices"]; !ok {
			return "", false, nil
		}
		b, err := json.Marshal(r)
		if err != nil {
			return "", true, fmt.Errorf("%w: %v", ErrExtraction, err)
		}
		body = b
	default:
		return "", false, nil
	}
	if !gjson.ValidBytes(body) {
		return "", true, fmt.Errorf("%w: invalid json", ErrExtraction)
	}
	res := gjson.GetBytes(body, contentPath)
	if !res.Exists() || res.Type != gjson.String {
		return "", true, fmt.Errorf("%w: missing %s", ErrExtraction, contentPath)
	}
	return res.String(), true, nil
}

func extractTexter(raw any) (string, bool, error) {
	t, ok := raw.(Texter)
	if !ok {
		return "", false, nil
	}
	return t.Text(), true, nil
}

func extractAny(raw any) (string, bool, error) {
	return fmt.Sprint(raw), true, nil
}
