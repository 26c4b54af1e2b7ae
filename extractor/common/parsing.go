package common

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var nonNumericRegex = regexp.MustCompile(`[^0-9.]`)

// DateLayouts is the ordered list of layouts ParseDate tries. Day-first
// comes before month-first on purpose: "07/02/2026" is ambiguous and this
// parser commits to 7 February. Override via extraction.date_layouts if a
// statement source is known to be month-first.
var DateLayouts = []string{
	"2/1/2006",
	"1/2/2006",
	"2006-1-2",
	"2 Jan 2006",
}

// CleanDecimal parses a string into a decimal.Decimal, removing everything
// that is not a digit or a decimal point. Sign and suffix markers must be
// handled by the caller before the text reaches here.
func CleanDecimal(text string) (decimal.Decimal, error) {
	cleanText := nonNumericRegex.ReplaceAllString(text, "")
	if cleanText == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(cleanText)
	if err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// ParseDate tries each layout in turn against the whole trimmed token and
// returns the first match. The zero time and false mean no layout fit.
func ParseDate(value string, layouts ...string) (time.Time, bool) {
	if len(layouts) == 0 {
		layouts = DateLayouts
	}
	trimmed := strings.TrimSpace(value)
	for _, layout := range layouts {
		if date, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
			return date, true
		}
	}
	return time.Time{}, false
}

// ResolveAmount turns a raw amount string into a non-negative magnitude and
// a direction. An explicit column hint wins over the sign; otherwise a
// leading minus means debit. Unparseable input is an error so the caller
// can drop the candidate instead of recording a phantom zero.
func ResolveAmount(raw string, hint ColumnHint) (decimal.Decimal, Direction, error) {
	trimmed := strings.TrimSpace(raw)
	cleaned := strings.ReplaceAll(trimmed, ",", "")

	amount, err := CleanDecimal(cleaned)
	if err != nil {
		return decimal.Zero, Credit, fmt.Errorf("resolve amount %q: %w", raw, err)
	}
	if nonNumericRegex.ReplaceAllString(cleaned, "") == "" {
		return decimal.Zero, Credit, fmt.Errorf("resolve amount %q: no digits", raw)
	}

	direction := Credit
	switch hint {
	case ColumnWithdrawal:
		direction = Debit
	case ColumnDeposit:
		direction = Credit
	default:
		if strings.HasPrefix(trimmed, "-") {
			direction = Debit
		}
	}

	return amount.Abs(), direction, nil
}
