package extractor

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/expenseatlas/atlas/ai"
	"github.com/expenseatlas/atlas/extractor/common"
)

// Item is one transaction to categorize.
type Item struct {
	Merchant    string          `json:"merchant"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Categorized is one streamed categorization result. Index matches the
// position of the input item.
type Categorized struct {
	Index      int             `json:"index"`
	Category   common.Category `json:"category"`
	Confidence float64         `json:"confidence"`
	Reasoning  string          `json:"reasoning,omitempty"`
	Err        error           `json:"-"`
}

// CategorizeOne assigns a single transaction to the expense taxonomy.
func (p *Processor) CategorizeOne(ctx context.Context, merchant, description string, amount decimal.Decimal) (Categorized, error) {
	if !p.classifier.IsAvailable() {
		return Categorized{}, ai.ErrUnavailable
	}
	if merchant == "" {
		merchant = "Unknown"
	}

	result, err := p.classifier.Categorize(ctx, merchant, description, amount.String())
	if err != nil {
		return Categorized{}, err
	}
	return Categorized{
		Category:   common.CategoryFromString(result.Category),
		Confidence: result.Confidence,
		Reasoning:  result.Reasoning,
	}, nil
}

// CategorizeStream categorizes items one model call at a time, in input
// order, and delivers each result as it lands. The model session does not
// tolerate concurrent calls, so there is deliberately no fan-out here.
//
// Cancelling ctx stops further model calls; results already delivered stay
// delivered. A model error is delivered as the final element (Err set) and
// ends the stream. The channel closes when the stream is done; it is
// finite and not restartable.
func (p *Processor) CategorizeStream(ctx context.Context, items []Item) <-chan Categorized {
	out := make(chan Categorized)

	go func() {
		defer close(out)
		for i, item := range items {
			if ctx.Err() != nil {
				return
			}

			result, err := p.CategorizeOne(ctx, item.Merchant, item.Description, item.Amount)
			result.Index = i
			result.Err = err

			select {
			case out <- result:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	return out
}

// Prewarm readies the model session ahead of the first real call. Failure
// is non-fatal; the caller may ignore the error.
func (p *Processor) Prewarm(ctx context.Context) error {
	return p.classifier.Prewarm(ctx)
}
