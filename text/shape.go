package text

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/pdfoutline/model"
)

// numberedPatterns match outline numbering at the start of a line.
// Order matters: deeper patterns first so "1.2.3" is not reported as "1.".
var numberedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d+\.\d+\.\d+\.?\s`),
	regexp.MustCompile(`^\d+\.\d+\.?\s`),
	regexp.MustCompile(`^\d+[.)]\s`),
	regexp.MustCompile(`^[IVXLCDM]+\.\s`), // Roman numerals
	regexp.MustCompile(`^[A-Z][.)]\s`),    // Letter prefixes
}

// sentenceBreak matches a sentence terminator followed by the start of a new sentence
var sentenceBreak = regexp.MustCompile(`[a-z\p{Ll}][.!?]\s+\p{Lu}`)

// Normalize applies NFKC normalisation, collapses runs of whitespace into a
// single space and trims the result. Ligatures such as "ﬁ" become "fi".
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Length returns the number of characters (runes) in the normalised text
func Length(s string) int {
	return len([]rune(Normalize(s)))
}

// DetectCase classifies the letter case of s.
//
// Text is ALL_CAPS when it has at least three cased letters and 90% or more
// of them are upper case. It is TITLE_CASE when every word of four or more
// letters starts with an upper-case letter and at least one word does.
// Everything else is MIXED.
func DetectCase(s string) model.CasePattern {
	s = strings.TrimSpace(s)

	upper, lower := 0, 0
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper++
		case unicode.IsLower(r):
			lower++
		}
	}
	if upper+lower >= 3 && float64(upper)/float64(upper+lower) >= 0.9 {
		return model.CaseAllCaps
	}

	capitalised := 0
	for _, w := range strings.Fields(stripNumberPrefix(s)) {
		letters := []rune(strings.TrimFunc(w, func(r rune) bool { return !unicode.IsLetter(r) }))
		if len(letters) == 0 {
			continue
		}
		if unicode.IsUpper(letters[0]) {
			capitalised++
			continue
		}
		if len(letters) >= 4 {
			return model.CaseMixed
		}
	}
	if capitalised > 0 {
		return model.CaseTitle
	}
	return model.CaseMixed
}

// HasTrailingPunctuation reports whether s ends like a sentence or a clause:
// a period, exclamation or question mark, comma or semicolon. Closing quotes
// and brackets are ignored. A trailing ellipsis used as a leader in tables of
// contents does not count.
func HasTrailingPunctuation(s string) bool {
	s = strings.TrimRightFunc(strings.TrimSpace(s), func(r rune) bool {
		return r == '"' || r == '\'' || r == ')' || r == ']' || r == '’' || r == '”'
	})
	if s == "" || strings.HasSuffix(s, "..") {
		return false
	}
	if _, ok := NumberPrefix(s + " "); ok && len(strings.Fields(s)) == 1 {
		// A bare "3." is a number, not a sentence.
		return false
	}
	switch s[len(s)-1] {
	case '.', '!', '?', ',', ';':
		return true
	}
	return false
}

// EndsWithColon reports whether s ends with a colon, as run-in headings often do
func EndsWithColon(s string) bool {
	return strings.HasSuffix(strings.TrimSpace(s), ":")
}

// SentenceBreaks counts the sentence boundaries inside s, ignoring any
// leading outline number.
func SentenceBreaks(s string) int {
	return len(sentenceBreak.FindAllStringIndex(stripNumberPrefix(strings.TrimSpace(s)), -1))
}

// NumberPrefix returns the outline number at the start of s, if any.
// For "1.2 Scope" it returns "1.2".
func NumberPrefix(s string) (string, bool) {
	s = strings.TrimSpace(s) + " "
	for _, pattern := range numberedPatterns {
		if match := pattern.FindString(s); match != "" {
			return strings.TrimSpace(match), true
		}
	}
	return "", false
}

// NumberDepth returns the depth implied by an outline number: "1." is 1,
// "1.2" is 2 and "1.2.3" is 3. Text without numbering yields 0.
func NumberDepth(s string) int {
	prefix, ok := NumberPrefix(s)
	if !ok {
		return 0
	}
	prefix = strings.TrimRight(prefix, ".)")
	return strings.Count(prefix, ".") + 1
}

// LeadWord returns the first word of s after any outline number, lower-cased
// and stripped of non-letters. It returns "" when there is no such word.
func LeadWord(s string) string {
	fields := strings.Fields(stripNumberPrefix(Normalize(s)))
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(strings.TrimFunc(fields[0], func(r rune) bool { return !unicode.IsLetter(r) }))
}

func stripNumberPrefix(s string) string {
	if prefix, ok := NumberPrefix(s); ok {
		return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), prefix))
	}
	return s
}
