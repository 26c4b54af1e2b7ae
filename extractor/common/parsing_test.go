package common

import (
	"fmt"
	"testing"
	"time"
)

func TestCleanDecimal_SimpleNumber(t *testing.T) {
	result, err := CleanDecimal("123.45")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.String() != "123.45" {
		t.Errorf("Expected '123.45', got '%s'", result.String())
	}
}

func TestCleanDecimal_WithCurrencySymbol(t *testing.T) {
	result, err := CleanDecimal("$NZ 1234.56")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.String() != "1234.56" {
		t.Errorf("Expected '1234.56', got '%s'", result.String())
	}
}

func TestCleanDecimal_EmptyString(t *testing.T) {
	result, err := CleanDecimal("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.IsZero() {
		t.Errorf("Expected zero, got '%s'", result.String())
	}
}

func TestParseDate_DayFirstPreference(t *testing.T) {
	// 07/02/2026 is ambiguous; the fixed order commits to day-first.
	date, ok := ParseDate("07/02/2026")
	if !ok {
		t.Fatal("Expected a parse")
	}
	if date.Day() != 7 || date.Month() != time.February || date.Year() != 2026 {
		t.Errorf("Expected 7 Feb 2026, got %v", date)
	}
}

func TestParseDate_MonthFirstWhenDayFirstImpossible(t *testing.T) {
	date, ok := ParseDate("12/25/2026")
	if !ok {
		t.Fatal("Expected a parse")
	}
	if date.Day() != 25 || date.Month() != time.December {
		t.Errorf("Expected 25 Dec 2026, got %v", date)
	}
}

func TestParseDate_ISO(t *testing.T) {
	date, ok := ParseDate("2026-02-07")
	if !ok {
		t.Fatal("Expected a parse")
	}
	if date.Day() != 7 || date.Month() != time.February || date.Year() != 2026 {
		t.Errorf("Expected 7 Feb 2026, got %v", date)
	}
}

func TestParseDate_AbbreviatedMonth(t *testing.T) {
	date, ok := ParseDate(" 07 Feb 2026 ")
	if !ok {
		t.Fatal("Expected a parse")
	}
	if date.Day() != 7 || date.Month() != time.February || date.Year() != 2026 {
		t.Errorf("Expected 7 Feb 2026, got %v", date)
	}
}

func TestParseDate_NoPartialMatch(t *testing.T) {
	if _, ok := ParseDate("07/02/2026 extra text"); ok {
		t.Error("Expected no parse for token with trailing text")
	}
}

func TestParseDate_NoMatch(t *testing.T) {
	if _, ok := ParseDate("not a date"); ok {
		t.Error("Expected no parse")
	}
}

// Every valid day/month/year formatted as "2 Jan 2006" must round-trip to
// the same calendar date.
func TestParseDate_RoundTripAbbreviatedMonth(t *testing.T) {
	for year := 2020; year <= 2027; year++ {
		for month := time.January; month <= time.December; month++ {
			for _, day := range []int{1, 9, 10, 28} {
				want := time.Date(year, month, day, 0, 0, 0, 0, time.Local)
				token := want.Format("2 Jan 2006")

				got, ok := ParseDate(token)
				if !ok {
					t.Fatalf("No parse for %q", token)
				}
				if !got.Equal(want) {
					t.Errorf("Round trip of %q: expected %v, got %v", token, want, got)
				}
			}
		}
	}
}

func TestResolveAmount_LeadingMinusIsDebit(t *testing.T) {
	amount, direction, err := ResolveAmount("-45.30", ColumnUnknown)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if direction != Debit {
		t.Errorf("Expected debit, got %s", direction)
	}
	if amount.IsNegative() {
		t.Errorf("Magnitude must be non-negative, got %s", amount.String())
	}
	if amount.String() != "45.3" {
		t.Errorf("Expected '45.3', got '%s'", amount.String())
	}
}

func TestResolveAmount_NoSignIsCredit(t *testing.T) {
	_, direction, err := ResolveAmount("1,500.00", ColumnUnknown)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if direction != Credit {
		t.Errorf("Expected credit, got %s", direction)
	}
}

func TestResolveAmount_ColumnHintWinsOverSign(t *testing.T) {
	// A deposit-column amount is a credit even when it carries a minus.
	_, direction, err := ResolveAmount("-100.00", ColumnDeposit)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if direction != Credit {
		t.Errorf("Expected credit from deposit column, got %s", direction)
	}

	_, direction, err = ResolveAmount("100.00", ColumnWithdrawal)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if direction != Debit {
		t.Errorf("Expected debit from withdrawal column, got %s", direction)
	}
}

func TestResolveAmount_StripsThousandsSeparators(t *testing.T) {
	amount, _, err := ResolveAmount("1,234,567.89", ColumnUnknown)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if amount.String() != "1234567.89" {
		t.Errorf("Expected '1234567.89', got '%s'", amount.String())
	}
}

func TestResolveAmount_UnparseableIsError(t *testing.T) {
	if _, _, err := ResolveAmount("not money", ColumnUnknown); err == nil {
		t.Error("Expected an error for a non-numeric amount")
	}
	if _, _, err := ResolveAmount("", ColumnUnknown); err == nil {
		t.Error("Expected an error for an empty amount")
	}
}

func TestResolveAmount_NeverNegative(t *testing.T) {
	hints := []ColumnHint{ColumnUnknown, ColumnWithdrawal, ColumnDeposit}
	inputs := []string{"-5.00", "5.00", "-1,000.25", "0.00"}

	for _, hint := range hints {
		for _, input := range inputs {
			amount, _, err := ResolveAmount(input, hint)
			if err != nil {
				t.Fatalf("Unexpected error for %q: %v", input, err)
			}
			if amount.IsNegative() {
				t.Errorf("%s with hint %d: negative magnitude %s", input, hint, amount.String())
			}
		}
	}
}

func TestCategoryFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected Category
	}{
		{"groceries", CategoryGroceries},
		{" Dining ", CategoryDining},
		{"TRANSPORT", CategoryTransport},
		{"made-up-category", CategoryUnknown},
		{"", CategoryUnknown},
	}

	for _, test := range tests {
		t.Run(fmt.Sprintf("%q", test.input), func(t *testing.T) {
			if got := CategoryFromString(test.input); got != test.expected {
				t.Errorf("Expected %s, got %s", test.expected, got)
			}
		})
	}
}
