package parser

import (
	"regexp"
	"strings"
)

var (
	indexURLRe   = regexp.MustCompile(`(?i)https?://\S*(indiankanoon|casemine|judis)\S*`)
	multiBlankRe = regexp.MustCompile(`\n\s*\n+`)
	hardWrapRe   = regexp.MustCompile(`([^\n])\n([a-z])`)
	// A and I are excluded: they are legitimate one-letter words.
	spacedCapRe = regexp.MustCompile(`\b([B-HJ-Z]) ([a-z]{2,})\b`)

	pageNumRe = regexp.MustCompile(`^\s*(page\s*)?\d{1,4}\s*$`)
	dateRe    = regexp.MustCompile(`^\s*\d{1,2}[./-]\d{1,2}[./-]\d{2,4}\s*$`)
	symbolRe  = regexp.MustCompile("[\\^{}|~`]{3,}")
)

// CleanText normalizes extracted document text: indexing-site URL debris
// is removed, mid-sentence hard wraps are rejoined, and blank-line runs
// collapse to one paragraph break.
func CleanText(s string) string {
	s = indexURLRe.ReplaceAllString(s, "")
	s = hardWrapRe.ReplaceAllString(s, "$1 $2")
	s = multiBlankRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// FixSpacing repairs OCR letter-splitting at word starts ("B harat" ->
// "Bharat").
func FixSpacing(s string) string {
	return spacedCapRe.ReplaceAllString(s, "$1$2")
}

// IsNoiseLine reports lines that carry no content: stray fragments,
// bare page numbers, bare dates.
func IsNoiseLine(line string) bool {
	t := strings.TrimSpace(line)
	if len(t) < 3 {
		return true
	}
	if pageNumRe.MatchString(t) {
		return true
	}
	return dateRe.MatchString(t)
}

// IsGarbageText flags text that came out of the extractor as mojibake:
// mostly non-ASCII bytes, runs of PDF operator symbols, or unpronounceable
// consonant clusters.
func IsGarbageText(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" {
		return false
	}
	nonASCII := 0
	for _, r := range t {
		if r > 127 {
			nonASCII++
		}
	}
	if float64(nonASCII)/float64(len([]rune(t))) > 0.5 {
		return true
	}
	if symbolRe.MatchString(t) {
		return true
	}
	return hasConsonantRun(t, 8)
}

func hasConsonantRun(s string, n int) bool {
	run := 0
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' && !strings.ContainsRune("aeiouy", r) {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}

// StripMarginNotes drops the short title-case marginal headings that
// statute PDFs interleave with section text.
func StripMarginNotes(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, ln := range lines {
		if isMarginNote(ln) {
			continue
		}
		out = append(out, ln)
	}
	return out
}

func isMarginNote(line string) bool {
	t := strings.TrimSpace(line)
	if t == "" || len(t) > 48 {
		return false
	}
	if strings.ContainsAny(t, "0123456789:;()") {
		return false
	}
	words := strings.Fields(strings.TrimSuffix(t, "."))
	if len(words) < 2 || len(words) > 6 {
		return false
	}
	if words[0][0] < 'A' || words[0][0] > 'Z' {
		return false
	}
	for _, w := range words[1:] {
		if w[0] >= 'A' && w[0] <= 'Z' {
			return false
		}
	}
	return true
}
