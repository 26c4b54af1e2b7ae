package extractor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/expenseatlas/atlas/ai"
	"github.com/expenseatlas/atlas/extractor/common"
)

// fakeClassifier is a deterministic Classifier for tests.
type fakeClassifier struct {
	available  bool
	candidates []ai.Candidate
	extractErr error

	categorization ai.Categorization
	categorizeErr  error

	extractTexts    []string
	categorizeCalls int
}

func (f *fakeClassifier) IsAvailable() bool { return f.available }

func (f *fakeClassifier) Extract(ctx context.Context, text, formatHint string) ([]ai.Candidate, error) {
	f.extractTexts = append(f.extractTexts, text)
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	return f.candidates, nil
}

func (f *fakeClassifier) Categorize(ctx context.Context, merchant, description, amount string) (ai.Categorization, error) {
	f.categorizeCalls++
	if f.categorizeErr != nil {
		return ai.Categorization{}, f.categorizeErr
	}
	return f.categorization, nil
}

func (f *fakeClassifier) Prewarm(ctx context.Context) error { return nil }

func (f *fakeClassifier) Reset() {}

func testProcessor(classifier ai.Classifier) *Processor {
	p := New(classifier, DefaultConfig())
	p.now = func() time.Time {
		return time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)
	}
	return p
}

const syntheticStatement = "ANZ Bank Statement $NZ 06-0229\n" +
	"01/02/2026 SALARY PAYMENT ACME CORP 1,500.00\n" +
	"02/02/2026 EFTPOS COUNTDOWN AUCKLAND -45.30\n"

func TestExtract_EmptyInputIsHardFailure(t *testing.T) {
	p := testProcessor(&fakeClassifier{available: true})

	_, err := p.Extract(context.Background(), "   \n ", FormatPDF)
	if !errors.Is(err, ErrInputUnreadable) {
		t.Fatalf("Expected ErrInputUnreadable, got %v", err)
	}
}

func TestExtract_UnavailableClassifierUsesFallback(t *testing.T) {
	p := testProcessor(&fakeClassifier{available: false})

	result, err := p.Extract(context.Background(), syntheticStatement, FormatPDF)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Source != SourceFallback {
		t.Errorf("Expected fallback source, got %s", result.Source)
	}
	if len(result.Transactions) != 2 {
		t.Fatalf("Expected 2 transactions, got %d", len(result.Transactions))
	}

	deposit := result.Transactions[0]
	withdrawal := result.Transactions[1]

	if deposit.Direction != common.Credit {
		t.Errorf("Expected credit for deposit row, got %s", deposit.Direction)
	}
	if !deposit.Amount.Equal(decimal.RequireFromString("1500.00")) {
		t.Errorf("Expected 1500.00, got %s", deposit.Amount.String())
	}
	if withdrawal.Direction != common.Debit {
		t.Errorf("Expected debit for withdrawal row, got %s", withdrawal.Direction)
	}
	if !withdrawal.Amount.Equal(decimal.RequireFromString("45.30")) {
		t.Errorf("Expected 45.30, got %s", withdrawal.Amount.String())
	}
	if deposit.Date.After(withdrawal.Date) {
		t.Error("Expected rows in source order")
	}
}

func TestExtract_ClassifierErrorDemotesToFallback(t *testing.T) {
	classifier := &fakeClassifier{
		available:  true,
		extractErr: &ai.GenerationError{Op: "extract", Err: errors.New("timeout")},
	}
	p := testProcessor(classifier)

	result, err := p.Extract(context.Background(), syntheticStatement, FormatPDF)
	if err != nil {
		t.Fatalf("Classifier error must not propagate, got %v", err)
	}
	if result.Source != SourceFallback {
		t.Errorf("Expected fallback source, got %s", result.Source)
	}
	if len(result.Transactions) != 2 {
		t.Errorf("Expected 2 fallback transactions, got %d", len(result.Transactions))
	}
}

func TestExtract_ModelPath(t *testing.T) {
	classifier := &fakeClassifier{
		available: true,
		candidates: []ai.Candidate{
			{Date: "01/02/2026", Description: "SALARY PAYMENT ACME CORP", Amount: "1,500.00", Type: "credit"},
			{Date: "02/02/2026", Description: "EFTPOS COUNTDOWN AUCKLAND", Amount: "45.30", Type: "debit", Balance: "1,454.70"},
		},
	}
	p := testProcessor(classifier)

	result, err := p.Extract(context.Background(), syntheticStatement, FormatPDF)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Source != SourceModel {
		t.Errorf("Expected model source, got %s", result.Source)
	}
	if len(result.Transactions) != 2 {
		t.Fatalf("Expected 2 transactions, got %d", len(result.Transactions))
	}

	second := result.Transactions[1]
	// The model said debit despite no minus sign on the amount string.
	if second.Direction != common.Debit {
		t.Errorf("Expected debit from the model's type, got %s", second.Direction)
	}
	// Currency comes from the statement-wide detection over the full text.
	if second.Currency != "NZD" {
		t.Errorf("Expected NZD, got %s", second.Currency)
	}
	if second.Balance == nil || !second.Balance.Equal(decimal.RequireFromString("1454.70")) {
		t.Errorf("Expected balance 1454.70, got %v", second.Balance)
	}
	expectedDate := time.Date(2026, 2, 2, 0, 0, 0, 0, time.Local)
	if !second.Date.Equal(expectedDate) {
		t.Errorf("Expected %v, got %v", expectedDate, second.Date)
	}
}

func TestExtract_ModelTypeWinsOverSign(t *testing.T) {
	classifier := &fakeClassifier{
		available: true,
		candidates: []ai.Candidate{
			// Contradictory: type says credit, amount carries a minus.
			{Date: "01/02/2026", Description: "REFUND", Amount: "-10.00", Type: "credit"},
			// No usable type, minus decides.
			{Date: "01/02/2026", Description: "FEE", Amount: "-5.00", Type: ""},
		},
	}
	p := testProcessor(classifier)

	result, err := p.Extract(context.Background(), syntheticStatement, FormatPDF)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Transactions[0].Direction != common.Credit {
		t.Errorf("Expected the model's type to win, got %s", result.Transactions[0].Direction)
	}
	if result.Transactions[1].Direction != common.Debit {
		t.Errorf("Expected minus sign to decide, got %s", result.Transactions[1].Direction)
	}
}

func TestExtract_UnparseableCandidateSkipped(t *testing.T) {
	classifier := &fakeClassifier{
		available: true,
		candidates: []ai.Candidate{
			{Date: "01/02/2026", Description: "GOOD ROW", Amount: "10.00", Type: "debit"},
			{Date: "01/02/2026", Description: "BAD ROW", Amount: "see note", Type: "debit"},
		},
	}
	p := testProcessor(classifier)

	result, err := p.Extract(context.Background(), syntheticStatement, FormatPDF)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Transactions) != 1 {
		t.Fatalf("Expected the bad candidate dropped, got %d transactions", len(result.Transactions))
	}
	if result.SkippedCandidates != 1 {
		t.Errorf("Expected 1 skipped candidate, got %d", result.SkippedCandidates)
	}
}

func TestExtract_UnparseableDateDefaultsToToday(t *testing.T) {
	classifier := &fakeClassifier{
		available: true,
		candidates: []ai.Candidate{
			{Date: "sometime soon", Description: "ROW", Amount: "10.00", Type: "debit"},
		},
	}
	p := testProcessor(classifier)

	result, err := p.Extract(context.Background(), syntheticStatement, FormatPDF)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.DefaultedDates != 1 {
		t.Errorf("Expected 1 defaulted date, got %d", result.DefaultedDates)
	}
	expected := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)
	if !result.Transactions[0].Date.Equal(expected) {
		t.Errorf("Expected day-start today %v, got %v", expected, result.Transactions[0].Date)
	}
}

func TestExtract_TruncatesModelInputNotFallbackInput(t *testing.T) {
	longText := syntheticStatement + strings.Repeat("filler line\n", 2000)
	classifier := &fakeClassifier{available: true, extractErr: errors.New("boom")}
	p := testProcessor(classifier)

	result, err := p.Extract(context.Background(), longText, FormatPDF)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(classifier.extractTexts) != 1 {
		t.Fatalf("Expected one model call, got %d", len(classifier.extractTexts))
	}
	if len(classifier.extractTexts[0]) != DefaultConfig().TruncateChars {
		t.Errorf("Expected model input truncated to %d chars, got %d",
			DefaultConfig().TruncateChars, len(classifier.extractTexts[0]))
	}
	// The fallback pass still saw the full text, so both rows are present.
	if len(result.Transactions) != 2 {
		t.Errorf("Expected fallback over full text to find 2 rows, got %d", len(result.Transactions))
	}
}

func TestExtract_EmptyModelResultIsValid(t *testing.T) {
	classifier := &fakeClassifier{available: true, candidates: []ai.Candidate{}}
	p := testProcessor(classifier)

	result, err := p.Extract(context.Background(), "just a memo, no transactions", FormatUnknown)
	if err != nil {
		t.Fatalf("Zero transactions must not be an error, got %v", err)
	}
	if result.Source != SourceModel {
		t.Errorf("Expected model source, got %s", result.Source)
	}
	if len(result.Transactions) != 0 {
		t.Errorf("Expected no transactions, got %d", len(result.Transactions))
	}
}
