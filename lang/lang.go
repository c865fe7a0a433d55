// Package lang detects the dominant language of a document and counts its
// words.
//
// Text dominated by a script that belongs to one language (Arabic, Greek,
// Hangul and so on) is reported as that language. Latin text is scored by
// the share of tokens that are common function words of each supported
// language. The result is a BCP 47 tag; text in an unsupported language, or
// too short to judge, is reported as "und".
//
//	tag := lang.Detect(text)
//	fmt.Println(tag) // "en"
package lang

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"
)

// MinRatio is the smallest stop-word share accepted as evidence
const MinRatio = 0.05

type profile struct {
	tag   language.Tag
	words map[string]struct{}
}

func newProfile(tag language.Tag, words string) profile {
	p := profile{tag: tag, words: make(map[string]struct{})}
	for _, w := range strings.Fields(words) {
		p.words[w] = struct{}{}
	}
	return p
}

// profiles are checked in order; on equal ratios the earlier one wins
var profiles = []profile{
	newProfile(language.English, "the and of to in is that for it with as was on are be by this have from or an not which but were at they their has been its also will would"),
	newProfile(language.French, "le la les et des du une est que dans pour qui sur au avec pas sont ce cette par plus ou aux ont été sa ses leur mais nous vous"),
	newProfile(language.German, "der die und das den ist nicht mit von sich des ein eine auf dem zu für auch es im werden wird sind wurde oder bei nach aus einer"),
	newProfile(language.Spanish, "el los las del que en una por con para es se al lo como más pero sus le ya este entre cuando muy sin sobre también fue han"),
	newProfile(language.Italian, "il di che la per non una sono della gli del con le nel alla si anche come più questo ha ma dei delle essere stato tra nella"),
	newProfile(language.Portuguese, "o os da do das dos em um uma que para com não se na no mais como mas foi ao pelo pela são também ser está tem seu sua"),
}

// Detect returns the language of text, or language.Und when no supported
// language reaches MinRatio.
func Detect(text string) language.Tag {
	tag, _ := DetectWithRatio(text)
	return tag
}

// DetectWithRatio returns the detected language together with its evidence:
// the script's share of letters, or the share of tokens that matched the
// language's stop-word list.
func DetectWithRatio(text string) (language.Tag, float64) {
	if tag, share := DetectScript(text); tag != language.Und {
		return tag, share
	}

	tokens := tokenize(text)
	if len(tokens) == 0 {
		return language.Und, 0
	}

	best := language.Und
	bestRatio := 0.0
	for _, p := range profiles {
		hits := 0
		for _, t := range tokens {
			if _, ok := p.words[t]; ok {
				hits++
			}
		}
		ratio := float64(hits) / float64(len(tokens))
		if ratio > bestRatio {
			best, bestRatio = p.tag, ratio
		}
	}

	if bestRatio < MinRatio {
		return language.Und, bestRatio
	}
	return best, bestRatio
}

// Supported returns the languages recognised by their stop words
func Supported() []language.Tag {
	tags := make([]language.Tag, len(profiles))
	for i, p := range profiles {
		tags[i] = p.tag
	}
	return tags
}

// WordCount returns the number of whitespace-separated words in text
func WordCount(text string) int {
	return len(strings.Fields(text))
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}
