package refs

import (
	"regexp"
	"strconv"
	"strings"
)

// NumTokenKind tags one element of a parsed numeric-variable token stream
// (spec.md §3: "Sequence<Num(u32) | Sep | Roman | Str>").
type NumTokenKind uint8

const (
	NumTokenNum NumTokenKind = iota
	NumTokenSep
	NumTokenRoman
	NumTokenStr
)

// NumToken is one token of a NumericValue's parsed form.
type NumToken struct {
	Kind  NumTokenKind
	Num   uint32 // valid when Kind == NumTokenNum or NumTokenRoman (decoded value)
	Text  string // the original substring; always set
}

// NumericValue is a Reference numeric-group variable (spec.md §3): either a
// freeform string or (once parsed) a token stream supporting is-numeric
// predicates and range formatting.
type NumericValue struct {
	Raw    string
	Tokens []NumToken
}

var (
	numRun   = regexp.MustCompile(`^[0-9]+`)
	sepRun   = regexp.MustCompile(`^(\s*[-&,]\s*|\s+)`)
	romanRun = regexp.MustCompile(`(?i)^[ivxlcdm]+`)
)

// romanValues maps single roman numerals to their value for subtractive
// decoding (e.g. "IX" = 9).
var romanValues = map[byte]uint32{'I': 1, 'V': 5, 'X': 10, 'L': 50, 'C': 100, 'D': 500, 'M': 1000}

func decodeRoman(s string) (uint32, bool) {
	up := strings.ToUpper(s)
	var total uint32
	for i := 0; i < len(up); i++ {
		v, ok := romanValues[up[i]]
		if !ok {
			return 0, false
		}
		if i+1 < len(up) {
			if nv, ok := romanValues[up[i+1]]; ok && nv > v {
				total -= v
				continue
			}
		}
		total += v
	}
	return total, total > 0
}

// ParseNumericValue tokenizes a raw numeric-variable string into the
// sequence the disambiguation engine and page-range formatter both walk.
// Anything that isn't a recognized arabic run, roman-numeral run, or
// separator falls back to a single NumTokenStr token spanning to the next
// recognized boundary, so the parse never fails outright (spec.md: numeric
// variables "may be a string").
func ParseNumericValue(raw string) NumericValue {
	nv := NumericValue{Raw: raw}
	rest := raw
	for len(rest) > 0 {
		if m := numRun.FindString(rest); m != "" {
			n, _ := strconv.ParseUint(m, 10, 32)
			nv.Tokens = append(nv.Tokens, NumToken{Kind: NumTokenNum, Num: uint32(n), Text: m})
			rest = rest[len(m):]
			continue
		}
		if m := sepRun.FindString(rest); m != "" {
			nv.Tokens = append(nv.Tokens, NumToken{Kind: NumTokenSep, Text: m})
			rest = rest[len(m):]
			continue
		}
		if m := romanRun.FindString(rest); m != "" {
			if v, ok := decodeRoman(m); ok {
				nv.Tokens = append(nv.Tokens, NumToken{Kind: NumTokenRoman, Num: v, Text: m})
				rest = rest[len(m):]
				continue
			}
		}
		// Consume one rune of free text and coalesce with a preceding Str
		// token, so "Appendix A" doesn't produce one token per letter.
		r := []rune(rest)[0]
		chunk := string(r)
		if n := len(nv.Tokens); n > 0 && nv.Tokens[n-1].Kind == NumTokenStr {
			nv.Tokens[n-1].Text += chunk
		} else {
			nv.Tokens = append(nv.Tokens, NumToken{Kind: NumTokenStr, Text: chunk})
		}
		rest = rest[len(chunk):]
	}
	return nv
}

// IsNumeric reports whether the value parses entirely as numbers and
// separators (no Str tokens), the predicate CSL's `is-numeric()` and
// `<choose><if is-numeric="...">` rely on.
func (nv NumericValue) IsNumeric() bool {
	if len(nv.Tokens) == 0 {
		return false
	}
	for _, t := range nv.Tokens {
		if t.Kind == NumTokenStr {
			return false
		}
	}
	return true
}

// Nums returns every NumTokenNum/NumTokenRoman value in document order,
// used by range-collapsing formatters (page ranges, volume ranges).
func (nv NumericValue) Nums() []uint32 {
	var out []uint32
	for _, t := range nv.Tokens {
		if t.Kind == NumTokenNum || t.Kind == NumTokenRoman {
			out = append(out, t.Num)
		}
	}
	return out
}
