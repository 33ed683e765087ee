package textproc

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TextCase enumerates the CSL text-case transforms (spec.md §4.8).
type TextCase uint8

const (
	CaseNone TextCase = iota
	CaseLowercase
	CaseUppercase
	CaseTitle
	CaseSentence
	CaseCapitalizeFirst
	CaseCapitalizeAll
)

var (
	titleCaser = cases.Title(language.AmericanEnglish, cases.NoLower)
	upperCaser = cases.Upper(language.Und)
	lowerCaser = cases.Lower(language.Und)
)

// englishStopWords are left lowercase in title case unless they start or
// end the string (spec.md §4.8: "a stop-word list for title case (in
// English only)").
var englishStopWords = map[string]bool{
	"a": true, "an": true, "and": true, "as": true, "at": true, "but": true,
	"by": true, "down": true, "for": true, "from": true, "in": true,
	"into": true, "nor": true, "of": true, "on": true, "onto": true,
	"or": true, "over": true, "so": true, "the": true, "till": true,
	"to": true, "up": true, "via": true, "with": true, "yet": true,
	"is": true, "be": true, "that": true,
}

// Apply runs the requested text-case transform. lang selects whether the
// English-only title-case stop-word list applies (spec.md §4.8); any
// other language falls back to capitalize-all behavior for CaseTitle.
func Apply(tc TextCase, s string, lang string, sentenceStart bool) string {
	switch tc {
	case CaseLowercase:
		return lowerCaser.String(s)
	case CaseUppercase:
		return upperCaser.String(s)
	case CaseCapitalizeFirst:
		return capitalizeFirst(s)
	case CaseCapitalizeAll:
		return capitalizeAllWords(s)
	case CaseTitle:
		if strings.HasPrefix(lang, "en") {
			return titleCaseEnglish(s)
		}
		return capitalizeAllWords(s)
	case CaseSentence:
		return sentenceCase(s, sentenceStart)
	default:
		return s
	}
}

func capitalizeFirst(s string) string {
	r := []rune(s)
	for i, c := range r {
		if unicode.IsLetter(c) {
			r[i] = unicode.ToUpper(c)
			break
		}
		if !unicode.IsSpace(c) && !isQuoteLike(c) {
			break
		}
	}
	return string(r)
}

func isQuoteLike(r rune) bool {
	switch r {
	case '"', '\'', LeftDouble, RightDouble, LeftSingle, RightSingle, FrenchOpen, FrenchClose:
		return true
	}
	return false
}

func capitalizeAllWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = capitalizeFirst(w)
	}
	return joinPreservingSpacing(s, words)
}

// titleCaseEnglish capitalizes every word except the stop-word list,
// always capitalizing the first and last word regardless (standard
// English title-case rule, mirroring the original's first-word/last-word
// preservation).
func titleCaseEnglish(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		lw := strings.ToLower(stripPunct(w))
		if i != 0 && i != len(words)-1 && englishStopWords[lw] {
			words[i] = strings.ToLower(w)
			continue
		}
		words[i] = capitalizeFirst(w)
	}
	return joinPreservingSpacing(s, words)
}

func stripPunct(w string) string {
	return strings.TrimFunc(w, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
}

// sentenceCase lowercases everything then capitalizes only the first
// letter — unless sentenceStart is false, meaning this chunk continues a
// sentence begun elsewhere in the style's output (so nothing is
// capitalized at all).
func sentenceCase(s string, sentenceStart bool) string {
	lower := lowerCaser.String(s)
	if !sentenceStart {
		return lower
	}
	return capitalizeFirst(lower)
}

// joinPreservingSpacing re-joins per-word transformed tokens using the
// original string's whitespace runs, so internal multi-space / tabs survive
// (title/capitalize-all would otherwise collapse them via strings.Fields).
func joinPreservingSpacing(original string, words []string) string {
	var b strings.Builder
	wi := 0
	inWord := false
	for _, r := range original {
		if unicode.IsSpace(r) {
			if inWord {
				inWord = false
			}
			b.WriteRune(r)
			continue
		}
		if !inWord {
			inWord = true
			if wi < len(words) {
				b.WriteString(words[wi])
				wi++
			}
			continue
		}
		// already emitted this word via words[wi-1]; skip the rest of its runes
	}
	return b.String()
}
