package lang

import (
	"unicode"

	"golang.org/x/text/language"
)

// MinScriptShare is the share of letters a non-Latin script needs before it
// decides the language
const MinScriptShare = 0.5

// scriptLanguages maps scripts written by essentially one language to it.
// Cyrillic is shared by too many languages to be mapped.
var scriptLanguages = []struct {
	table *unicode.RangeTable
	tag   language.Tag
}{
	{unicode.Arabic, language.Arabic},
	{unicode.Hebrew, language.Hebrew},
	{unicode.Greek, language.Greek},
	{unicode.Thai, language.Thai},
	{unicode.Hangul, language.Korean},
	{unicode.Armenian, language.Armenian},
	{unicode.Georgian, language.Georgian},
}

// DetectScript returns the language implied by the dominant writing system
// of text, or language.Und when Latin or an ambiguous script dominates.
// Han text is Japanese when any kana is present and Chinese otherwise.
func DetectScript(text string) (language.Tag, float64) {
	counts := make([]int, len(scriptLanguages))
	var letters, han, kana int

	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		switch {
		case unicode.Is(unicode.Han, r):
			han++
			continue
		case unicode.In(r, unicode.Hiragana, unicode.Katakana):
			kana++
			continue
		}
		for i, s := range scriptLanguages {
			if unicode.Is(s.table, r) {
				counts[i]++
				break
			}
		}
	}
	if letters == 0 {
		return language.Und, 0
	}

	best, bestN := language.Und, 0
	for i, n := range counts {
		if n > bestN {
			best, bestN = scriptLanguages[i].tag, n
		}
	}
	if cjk := han + kana; cjk > bestN {
		bestN = cjk
		best = language.Chinese
		if kana > 0 {
			best = language.Japanese
		}
	}

	share := float64(bestN) / float64(letters)
	if share < MinScriptShare {
		return language.Und, share
	}
	return best, share
}
