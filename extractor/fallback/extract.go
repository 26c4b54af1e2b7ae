// Package fallback is the line-oriented extractor used when the model path
// is unavailable or fails. It is intentionally permissive: a line produces
// a transaction only when a date-shaped and an amount-shaped token co-occur
// on it, and anything else is skipped without error.
package fallback

import (
	"regexp"
	"strings"
	"time"

	"github.com/expenseatlas/atlas/extractor/common"
)

// amountRegex matches money-shaped tokens: optional minus, grouped or
// ungrouped digits, mandatory decimal fraction. The fraction requirement
// keeps bare date digits ("26", "2026") from being read as amounts.
var amountRegex = regexp.MustCompile(`-?\d{1,3}(?:,\d{3})*\.\d{1,2}`)

// dateRegexes are tried in order; first match on the line wins.
var dateRegexes = []*regexp.Regexp{
	regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`),
	regexp.MustCompile(`\d{4}-\d{1,2}-\d{1,2}`),
	regexp.MustCompile(`\d{1,2}\s+[A-Za-z]{3}\s+\d{4}`),
}

// Options configure a fallback pass.
type Options struct {
	// DefaultCurrency is used when the statement text carries no
	// detectable currency indicator.
	DefaultCurrency string
	// DateLayouts override common.DateLayouts when non-empty.
	DateLayouts []string
	// Now supplies the date used when a date token refuses to parse.
	// Nil means time.Now.
	Now func() time.Time
}

// Result is the outcome of one fallback pass, with diagnostics about
// candidates that needed defaulting or were dropped.
type Result struct {
	Transactions   []common.Transaction
	SkippedAmounts int
	DefaultedDates int
}

// Extract runs a single stateless pass over the lines of text. The
// statement currency is detected once for the whole document, not per line.
func Extract(text string, opts Options) Result {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	currency, ok := common.DetectCurrency(text)
	if !ok {
		currency = opts.DefaultCurrency
	}

	var result Result
	sequence := 0

	for _, line := range strings.Split(text, "\n") {
		amountToken := amountRegex.FindString(line)
		if amountToken == "" {
			continue
		}

		dateToken := findDate(line)
		if dateToken == "" {
			continue
		}

		description := strings.TrimSpace(strings.Replace(
			strings.Replace(line, dateToken, "", 1), amountToken, "", 1))
		if description == "" {
			continue
		}

		amount, direction, err := common.ResolveAmount(amountToken, common.ColumnUnknown)
		if err != nil {
			result.SkippedAmounts++
			continue
		}

		date, parsed := common.ParseDate(dateToken, opts.DateLayouts...)
		if !parsed {
			n := now()
			date = time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.Local)
			result.DefaultedDates++
		}

		sequence++
		result.Transactions = append(result.Transactions, common.Transaction{
			Sequence:    sequence,
			Date:        date,
			Description: description,
			Amount:      amount,
			Direction:   direction,
			Currency:    currency,
			Merchant:    common.NormalizeMerchant(description),
			Category:    common.CategoryUnknown,
		})
	}

	return result
}

func findDate(line string) string {
	for _, re := range dateRegexes {
		if match := re.FindString(line); match != "" {
			return match
		}
	}
	return ""
}
