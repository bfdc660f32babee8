package judgment

import (
	"strings"

	"github.com/agext/levenshtein"
)

// DefaultQuoteThreshold is the minimum window similarity for accepting
// a quote that is not an exact substring.
const DefaultQuoteThreshold = 0.60

var quoteParams = levenshtein.NewParams()

// NormalizeQuote lowercases and collapses all whitespace runs so that
// line wrapping and spacing differences never fail a verbatim quote.
func NormalizeQuote(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// ValidateQuote reports whether quote is grounded in source: first an
// exact substring check on normalized text, then a sliding window of
// the quote's length scored with Levenshtein similarity. The fuzzy pass
// absorbs OCR-level noise ("argueed") without admitting paraphrase.
func ValidateQuote(quote, source string, threshold float64) bool {
	q := NormalizeQuote(quote)
	src := NormalizeQuote(source)
	if q == "" {
		return false
	}
	if strings.Contains(src, q) {
		return true
	}
	if threshold <= 0 {
		threshold = DefaultQuoteThreshold
	}
	return bestWindowSimilarity(q, src) >= threshold
}

// BestQuoteScore exposes the raw window score for diagnostics.
func BestQuoteScore(quote, source string) float64 {
	q := NormalizeQuote(quote)
	src := NormalizeQuote(source)
	if q == "" {
		return 0
	}
	if strings.Contains(src, q) {
		return 1
	}
	return bestWindowSimilarity(q, src)
}

func bestWindowSimilarity(q, src string) float64 {
	qr := []rune(q)
	sr := []rune(src)
	if len(sr) == 0 {
		return 0
	}
	if len(qr) >= len(sr) {
		return levenshtein.Similarity(q, src, quoteParams)
	}
	step := len(qr) / 10
	if step < 1 {
		step = 1
	}
	best := 0.0
	for start := 0; start+len(qr) <= len(sr); start += step {
		window := string(sr[start : start+len(qr)])
		if sim := levenshtein.Similarity(q, window, quoteParams); sim > best {
			best = sim
		}
	}
	// Tail window, in case stepping skipped the end.
	tail := string(sr[len(sr)-len(qr):])
	if sim := levenshtein.Similarity(q, tail, quoteParams); sim > best {
		best = sim
	}
	return best
}
