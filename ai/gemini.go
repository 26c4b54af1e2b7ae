package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// GeminiConfig controls the Gemini-backed classifier.
type GeminiConfig struct {
	Model                 string
	ExtractionTemperature float32
	CategorizeTemperature float32
	Categories            []string
}

// DefaultGeminiConfig mirrors the generation settings the pipeline was
// tuned with: near-deterministic extraction, slightly freer categorization.
func DefaultGeminiConfig() GeminiConfig {
	return GeminiConfig{
		Model:                 DefaultModel,
		ExtractionTemperature: 0.1,
		CategorizeTemperature: 0.3,
	}
}

// Gemini implements Classifier on top of google.golang.org/genai.
type Gemini struct {
	client *genai.Client
	config GeminiConfig

	mu        sync.Mutex
	prewarmed bool
}

// NewGemini creates the Gemini classifier. The API key comes from the
// environment (GEMINI_API_KEY / GOOGLE_API_KEY); without one the client
// cannot be built and the caller should fall back to NewUnavailable.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("GOOGLE_API_KEY") == "" {
		return nil, ErrUnavailable
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("ai: create genai client: %w", err)
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &Gemini{client: client, config: cfg}, nil
}

func (g *Gemini) IsAvailable() bool {
	return g != nil && g.client != nil
}

func (g *Gemini) Extract(ctx context.Context, text, formatHint string) ([]Candidate, error) {
	if !g.IsAvailable() {
		return nil, ErrUnavailable
	}

	prompt := buildExtractionPrompt(text, formatHint)
	raw, err := g.generate(ctx, prompt, g.config.ExtractionTemperature)
	if err != nil {
		return nil, &GenerationError{Op: "extract", Err: err}
	}

	clean := cleanModelJSON(raw, '[', ']')
	var candidates []Candidate
	if err := json.Unmarshal([]byte(clean), &candidates); err != nil {
		return nil, &GenerationError{Op: "extract", Err: fmt.Errorf("unmarshal model output: %w", err)}
	}
	return candidates, nil
}

func (g *Gemini) Categorize(ctx context.Context, merchant, description, amount string) (Categorization, error) {
	if !g.IsAvailable() {
		return Categorization{}, ErrUnavailable
	}

	prompt := buildCategorizationPrompt(merchant, description, amount, g.config.Categories)
	raw, err := g.generate(ctx, prompt, g.config.CategorizeTemperature)
	if err != nil {
		return Categorization{}, &GenerationError{Op: "categorize", Err: err}
	}

	clean := cleanModelJSON(raw, '{', '}')
	var result Categorization
	if err := json.Unmarshal([]byte(clean), &result); err != nil {
		return Categorization{}, &GenerationError{Op: "categorize", Err: fmt.Errorf("unmarshal model output: %w", err)}
	}
	return result, nil
}

// Prewarm issues one trivial generation so the first real call does not pay
// connection setup. Failures are reported but the classifier stays usable.
func (g *Gemini) Prewarm(ctx context.Context) error {
	if !g.IsAvailable() {
		return ErrUnavailable
	}

	g.mu.Lock()
	if g.prewarmed {
		g.mu.Unlock()
		return nil
	}
	g.mu.Unlock()

	if _, err := g.generate(ctx, "Reply with OK.", 0); err != nil {
		return &GenerationError{Op: "prewarm", Err: err}
	}

	g.mu.Lock()
	g.prewarmed = true
	g.mu.Unlock()
	return nil
}

func (g *Gemini) Reset() {
	if g == nil {
		return
	}
	g.mu.Lock()
	g.prewarmed = false
	g.mu.Unlock()
}

func (g *Gemini) generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature: &temperature,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.config.Model, contents, genCfg)
	if err != nil {
		return "", err
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

// cleanModelJSON strips Markdown fences and surrounding junk the model may
// emit despite instructions, keeping only the outermost open..close span.
func cleanModelJSON(raw string, open, closing byte) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.IndexByte(s, open); start != -1 {
		if end := strings.LastIndexByte(s, closing); end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}

// Unavailable is the closed-gate classifier: every call reports the model
// cannot be used, which routes the pipeline to the fallback extractor.
type Unavailable struct{}

func (Unavailable) IsAvailable() bool { return false }

func (Unavailable) Extract(context.Context, string, string) ([]Candidate, error) {
	return nil, ErrUnavailable
}

func (Unavailable) Categorize(context.Context, string, string, string) (Categorization, error) {
	return Categorization{}, ErrUnavailable
}

func (Unavailable) Prewarm(context.Context) error { return ErrUnavailable }

func (Unavailable) Reset() {}
