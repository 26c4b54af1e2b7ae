package common

import (
	"regexp"
	"strings"
)

const merchantMaxWords = 4

var transferMarkers = []string{
	"transfer from:",
	"transfer to:",
	"transfer from",
	"transfer to",
}

var directionTokenRegex = regexp.MustCompile(`(?i)(DEBIT|CREDIT)`)

// NormalizeMerchant compresses a noisy statement description into a short
// merchant label. Transfer descriptions are returned whole so account
// numbers and references survive. This is a heuristic label, not merchant
// identity resolution.
func NormalizeMerchant(description string) string {
	trimmed := strings.TrimSpace(description)
	lower := strings.ToLower(trimmed)

	for _, marker := range transferMarkers {
		if strings.Contains(lower, marker) {
			return trimmed
		}
	}

	cleaned := directionTokenRegex.ReplaceAllString(trimmed, "")

	words := strings.Fields(cleaned)
	meaningful := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) > 1 {
			meaningful = append(meaningful, w)
		}
	}

	if len(meaningful) == 0 {
		return trimmed
	}
	if len(meaningful) > merchantMaxWords {
		meaningful = meaningful[:merchantMaxWords]
	}
	return strings.Join(meaningful, " ")
}
