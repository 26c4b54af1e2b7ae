// Package ai defines the boundary to the structured-extraction model.
// The pipeline depends only on the Classifier interface; the Gemini
// implementation and the test fake both sit behind it.
package ai

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnavailable means the model capability gate is closed (no API key,
// no network, model disabled). It is a known state, not a failure: the
// pipeline answers it with the fallback extractor.
var ErrUnavailable = errors.New("ai: model unavailable")

// GenerationError wraps a model-side failure: timeout, oversized input,
// malformed output. The pipeline recovers from these by falling back.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("ai: %s failed: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Candidate is a loosely-typed transaction record proposed by the model.
// Every field is a string straight out of the generation; the extractor
// normalizes them.
type Candidate struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency,omitempty"`
	Type        string `json:"type"`
	Balance     string `json:"balance,omitempty"`
}

// Categorization is the model's answer for a single transaction.
type Categorization struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// Classifier is the capability-gated structured-extraction collaborator.
type Classifier interface {
	// IsAvailable reports whether the model can be called at all.
	IsAvailable() bool

	// Extract asks the model for every transaction it can find in the
	// (already truncated) statement text. formatHint is "pdf", "csv" or
	// empty and only flavors the prompt.
	Extract(ctx context.Context, text, formatHint string) ([]Candidate, error)

	// Categorize assigns one transaction to the expense taxonomy.
	Categorize(ctx context.Context, merchant, description, amount string) (Categorization, error)

	// Prewarm readies the model session. Idempotent; failure is non-fatal.
	Prewarm(ctx context.Context) error

	// Reset discards any session state.
	Reset()
}
