// Package sortkey builds and compares the tagged sort keys spec.md §4.7
// describes: references are ordered by rendering each <sort><key> against
// a private-use-area-framed encoding instead of display text, so numeric,
// date, and ordinary comparisons behave correctly regardless of how the
// style would otherwise format them.
package sortkey

import (
	"strconv"
	"strings"

	"github.com/citeproc-go/citeproc/internal/sortframe"
)

// Frame runes delimit a numeric or date token within an encoded key.
// Private-use-area code points can never appear in real CSL-JSON or
// locale text, so a frame boundary is unambiguous wherever it appears.
// Shared with ir via internal/sortframe, which emits the same frames when
// building sort-mode IR for macro keys.
const (
	dateOpen  = sortframe.DateOpen
	dateClose = sortframe.DateClose
	numOpen   = sortframe.NumOpen
	numClose  = sortframe.NumClose
)

func encodeNumber(n uint32) string { return sortframe.EncodeNumber(n) }

func encodeDate(year int32, month, day uint8) string {
	return sortframe.EncodeDate(year, month, day)
}

// Key is one <sort><key>'s encoded value for one reference. Missing is
// set when the variable/macro had no content at all (spec.md §4.7
// "Missing values sort last regardless of direction").
type Key struct {
	Missing bool
	Text    string
}

// token is one parsed segment of an encoded key: either tagged (numeric
// or date, compared by value) or plain text (compared case-folded).
type tokenKind uint8

const (
	tokenText tokenKind = iota
	tokenNumber
	tokenDate
)

type token struct {
	kind tokenKind
	text string // plain text, or the raw digits/date body between frames
}

func tokenize(s string) []token {
	var out []token
	var plain strings.Builder
	flushPlain := func() {
		if plain.Len() > 0 {
			out = append(out, token{kind: tokenText, text: plain.String()})
			plain.Reset()
		}
	}
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case numOpen:
			flushPlain()
			j := i + 1
			for j < len(runes) && runes[j] != numClose {
				j++
			}
			out = append(out, token{kind: tokenNumber, text: string(runes[i+1 : j])})
			i = j
		case dateOpen:
			flushPlain()
			j := i + 1
			for j < len(runes) && runes[j] != dateClose {
				j++
			}
			out = append(out, token{kind: tokenDate, text: string(runes[i+1 : j])})
			i = j
		default:
			plain.WriteRune(r)
		}
	}
	flushPlain()
	return out
}

// Compare implements spec.md §4.7's comparator: tagged frames compare by
// parsed value, untagged runs compare case-insensitively. Two encoded
// strings of different token-shape compare token-by-token until one runs
// out, at which point the shorter sorts first (a natural prefix order).
func Compare(a, b string) int {
	ta, tb := tokenize(a), tokenize(b)
	for i := 0; i < len(ta) && i < len(tb); i++ {
		if c := compareToken(ta[i], tb[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(ta) < len(tb):
		return -1
	case len(ta) > len(tb):
		return 1
	default:
		return 0
	}
}

func compareToken(a, b token) int {
	if a.kind == tokenNumber && b.kind == tokenNumber {
		na, _ := strconv.ParseInt(a.text, 10, 64)
		nb, _ := strconv.ParseInt(b.text, 10, 64)
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}
	if a.kind == tokenDate && b.kind == tokenDate {
		ya, ma, da := parseDateText(a.text)
		yb, mb, db := parseDateText(b.text)
		switch {
		case ya != yb:
			return sign(ya - yb)
		case ma != mb:
			return sign(ma - mb)
		default:
			return sign(da - db)
		}
	}
	return strings.Compare(strings.ToLower(a.text), strings.ToLower(b.text))
}

// parseDateText splits an encodeDate body ("-0500_03_15" or "2000_01_01")
// back into its signed year, month, and day. The leading "-" makes
// strconv.Atoi parse BCE years as negative, so direct numeric comparison
// (rather than the lexical comparison this replaced) orders them correctly
// among themselves, not just relative to CE dates.
func parseDateText(s string) (year, month, day int) {
	parts := strings.SplitN(s, "_", 3)
	if len(parts) > 0 {
		year, _ = strconv.Atoi(parts[0])
	}
	if len(parts) > 1 {
		month, _ = strconv.Atoi(parts[1])
	}
	if len(parts) > 2 {
		day, _ = strconv.Atoi(parts[2])
	}
	return year, month, day
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

// Less orders two keys per spec.md §4.7: missing keys demote to the end
// regardless of direction; otherwise the tagged comparator decides,
// flipped for descending keys.
func (k Key) Less(o Key, ascending bool) bool {
	if k.Missing != o.Missing {
		return !k.Missing
	}
	if k.Missing {
		return false
	}
	c := Compare(k.Text, o.Text)
	if !ascending {
		c = -c
	}
	return c < 0
}
