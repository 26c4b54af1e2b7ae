// Package extractor turns raw statement text into normalized transactions.
// The model path is tried first; any model failure or a closed capability
// gate demotes the run to the line-oriented fallback extractor. Zero
// transactions is a valid result, never an error.
package extractor

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/expenseatlas/atlas/ai"
	"github.com/expenseatlas/atlas/extractor/common"
	"github.com/expenseatlas/atlas/extractor/fallback"
)

// Format is the caller's hint about where the statement text came from.
type Format string

const (
	FormatPDF     Format = "pdf"
	FormatCSV     Format = "csv"
	FormatUnknown Format = ""
)

// Source records which path produced a result.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// ErrInputUnreadable means no statement text was supplied at all. It is the
// only extraction failure that reaches the caller; everything else demotes
// to the fallback path.
var ErrInputUnreadable = errors.New("extractor: statement text is empty")

// Config carries the tunables of an extraction run.
type Config struct {
	// TruncateChars bounds the prefix sent to the model. The fallback
	// path always sees the full text.
	TruncateChars int
	// DefaultCurrency is used when no currency indicator is detectable.
	DefaultCurrency string
	// DateLayouts override common.DateLayouts when non-empty.
	DateLayouts []string
}

// DefaultConfig returns the tunables the pipeline ships with.
func DefaultConfig() Config {
	return Config{
		TruncateChars:   8000,
		DefaultCurrency: "NZD",
	}
}

// ConfigFromViper reads the extraction config, falling back to defaults
// for anything the config file leaves out.
func ConfigFromViper() Config {
	cfg := DefaultConfig()
	if v := viper.GetInt("extraction.truncate_chars"); v > 0 {
		cfg.TruncateChars = v
	}
	if v := viper.GetString("extraction.default_currency"); v != "" {
		cfg.DefaultCurrency = v
	}
	if v := viper.GetStringSlice("extraction.date_layouts"); len(v) > 0 {
		cfg.DateLayouts = v
	}
	return cfg
}

// Processor is the extraction entry point. One Processor may serve many
// concurrent extractions; it holds no per-document state.
type Processor struct {
	classifier ai.Classifier
	config     Config

	// now is swappable for tests; date-parse failures default to it.
	now func() time.Time
}

// New builds a Processor around a classifier. A nil classifier behaves like
// a permanently closed capability gate.
func New(classifier ai.Classifier, cfg Config) *Processor {
	if classifier == nil {
		classifier = ai.Unavailable{}
	}
	if cfg.TruncateChars <= 0 {
		cfg.TruncateChars = 8000
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "NZD"
	}
	return &Processor{classifier: classifier, config: cfg, now: time.Now}
}

// Result is the outcome of one extraction run.
type Result struct {
	Transactions []common.Transaction `json:"transactions"`
	// Source tells whether the model or the fallback parser produced the
	// records; callers surface fallback results as lower-confidence.
	Source Source `json:"source"`
	// SkippedCandidates counts candidates dropped for unparseable amounts.
	SkippedCandidates int `json:"skipped_candidates,omitempty"`
	// DefaultedDates counts records whose date fell back to today.
	DefaultedDates int `json:"defaulted_dates,omitempty"`
}

// Extract runs the full pipeline over one statement's text. Records come
// back in the order they appear in the source text.
func (p *Processor) Extract(ctx context.Context, text string, format Format) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrInputUnreadable
	}

	if p.classifier.IsAvailable() {
		truncated := text
		if len(truncated) > p.config.TruncateChars {
			truncated = truncated[:p.config.TruncateChars]
		}

		candidates, err := p.classifier.Extract(ctx, truncated, string(format))
		if err == nil {
			return p.assemble(candidates, text), nil
		}
		log.Printf("model extraction failed: %v, using fallback parser", err)
	}

	fb := fallback.Extract(text, fallback.Options{
		DefaultCurrency: p.config.DefaultCurrency,
		DateLayouts:     p.config.DateLayouts,
		Now:             p.now,
	})
	return Result{
		Transactions:      fb.Transactions,
		Source:            SourceFallback,
		SkippedCandidates: fb.SkippedAmounts,
		DefaultedDates:    fb.DefaultedDates,
	}, nil
}

// assemble normalizes model candidates into final records. The statement
// currency is detected once over the full untruncated text.
func (p *Processor) assemble(candidates []ai.Candidate, fullText string) Result {
	statementCurrency, detected := common.DetectCurrency(fullText)
	if !detected {
		statementCurrency = p.config.DefaultCurrency
	}

	result := Result{Source: SourceModel}
	sequence := 0

	for _, c := range candidates {
		// The model's own debit/credit call wins; a leading minus on the
		// amount string is the tiebreak.
		hint := common.ColumnUnknown
		switch {
		case strings.Contains(strings.ToLower(c.Type), "debit"):
			hint = common.ColumnWithdrawal
		case strings.Contains(strings.ToLower(c.Type), "credit"):
			hint = common.ColumnDeposit
		}

		amount, direction, err := common.ResolveAmount(c.Amount, hint)
		if err != nil {
			result.SkippedCandidates++
			continue
		}

		date, parsed := common.ParseDate(c.Date, p.config.DateLayouts...)
		if !parsed {
			n := p.now()
			date = time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.Local)
			result.DefaultedDates++
		}

		currency := strings.ToUpper(strings.TrimSpace(c.Currency))
		if currency == "" {
			currency = statementCurrency
		}

		var balance *decimal.Decimal
		if strings.TrimSpace(c.Balance) != "" {
			if b, err := common.CleanDecimal(strings.ReplaceAll(c.Balance, ",", "")); err == nil {
				if strings.HasPrefix(strings.TrimSpace(c.Balance), "-") {
					b = b.Neg()
				}
				balance = &b
			}
		}

		sequence++
		result.Transactions = append(result.Transactions, common.Transaction{
			Sequence:    sequence,
			Date:        date,
			Description: c.Description,
			Amount:      amount,
			Direction:   direction,
			Currency:    currency,
			Merchant:    common.NormalizeMerchant(c.Description),
			Balance:     balance,
			Category:    common.CategoryUnknown,
		})
	}

	return result
}
