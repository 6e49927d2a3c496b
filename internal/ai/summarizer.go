package ai

import (
	"context"
	"log/slog"
	"time"

	"github.com/KaramelBytes/autoreport-cli/internal/utils"
)

const (
	DefaultMaxTokens   = 1500
	DefaultMaxAttempts = 2
)

// SummarizerConfig selects a backend and the sampling parameters sent with
// every request.
type SummarizerConfig struct {
	Provider    string
	APIKey      string // falls back to OPENAI_API_KEY for hosted providers
	Model       string
	BaseURL     string
	Host        string // Ollama host
	MaxTokens   int
	Temperature float64
	MaxAttempts int
	HTTPTimeout time.Duration
	Logger      *slog.Logger
}

func (c *SummarizerConfig) applyDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Narrative is the outcome of a summarization. When Present is false the
// model produced nothing usable and Err holds the last failure.
type Narrative struct {
	Text     string
	Present  bool
	Attempts int
	Err      error
}

// Summarizer turns a statistics summary into narrative text.
type Summarizer struct {
	transport Transport
	cfg       SummarizerConfig
	log       *slog.Logger
}

// Build resolves the transport for cfg.Provider. Missing credentials and
// unknown providers fail here rather than at call time.
func Build(cfg SummarizerConfig) (*Summarizer, error) {
	cfg.applyDefaults()
	t, err := GetRuntime(cfg.Provider, RuntimeConfig{
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		HTTPTimeout: cfg.HTTPTimeout,
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Host:        cfg.Host,
	})
	if err != nil {
		return nil, err
	}
	return NewSummarizer(t, cfg), nil
}

// NewSummarizer wraps an existing transport.
func NewSummarizer(t Transport, cfg SummarizerConfig) *Summarizer {
	cfg.applyDefaults()
	return &Summarizer{transport: t, cfg: cfg, log: cfg.Logger}
}

// Model returns the configured model name.
func (s *Summarizer) Model() string { return s.cfg.Model }

func (s *Summarizer) Provider() string { return s.cfg.Provider }

// Summarize makes up to MaxAttempts complete-and-extract rounds with no delay
// between them. It never returns an error; failures end up in Narrative.Err.
func (s *Summarizer) Summarize(ctx context.Context, stats string, pctx any) Narrative {
	prompt := BuildPrompt(stats, pctx)
	s.warnContextWindow(prompt)

	var n Narrative
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			n.Err = err
			break
		}
		n.Attempts = attempt
		s.log.Info("requesting narrative", "attempt", attempt, "max_attempts", s.cfg.MaxAttempts, "model", s.cfg.Model)
		if attempt == s.cfg.MaxAttempts {
			s.log.Debug("final prompt", "prompt", prompt)
		}
		text, err := s.once(ctx, prompt)
		if err == nil {
			s.log.Debug("narrative received", "attempt", attempt, "chars", len(text))
			return Narrative{Text: text, Present: true, Attempts: attempt}
		}
		n.Err = err
		s.log.Warn("narrative attempt failed", "attempt", attempt, "error", err)
	}
	s.log.Error("narrative unavailable", "attempts", n.Attempts, "error", n.Err)
	return n
}

func (s *Summarizer) once(ctx context.Context, prompt string) (string, error) {
	raw, err := s.transport.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return Extract(raw)
}

func (s *Summarizer) warnContextWindow(prompt string) {
	mi, ok := LookupModel(s.cfg.Model)
	if !ok {
		return
	}
	need := utils.CountTokens(prompt) + s.cfg.MaxTokens
	if need > mi.ContextTokens {
		s.log.Warn("prompt may exceed model context window",
			"model", mi.Name, "estimated_tokens", need, "context_tokens", mi.ContextTokens)
	}
}
