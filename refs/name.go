package refs

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/rangetable"
)

// Name is either a structured PersonName or an opaque Literal (an
// organization, a committee, anything without given/family structure).
type Name struct {
	Literal         string
	IsLatinCyrillic bool

	// Person is nil when the value is a Literal name.
	Person *PersonName
}

// PersonName holds one CSL name's fields, post particle-split and
// post-suffix-extraction (spec.md §4.3).
type PersonName struct {
	Family              string
	Given               string
	NonDroppingParticle string
	DroppingParticle    string
	Suffix              string
	CommaSuffix         bool
	StaticParticles     bool
	IsLatinCyrillic     bool
}

// rightSingleQuote is the normalized apostrophe (spec.md §3, §4.3).
const rightSingleQuote = '’'

var apostropheRun = regexp.MustCompile(`['\x{2019}]`)

// normalizeApostrophes rewrites every ASCII apostrophe to U+2019, the form
// the rest of the pipeline (particle splitting, disambiguation edge
// comparisons) assumes throughout.
func normalizeApostrophes(s string) string {
	if !strings.ContainsRune(s, '\'') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\'' {
			b.WriteRune(rightSingleQuote)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// familyParticleRun matches one leading lowercase "particle token" of a
// family name: a run of non-space characters followed by a hyphen,
// apostrophe/right-single-quote, or whitespace. Mirrors the source's
// family_particles_re.
var familyParticleRun = regexp.MustCompile(`^\S+(?:[-\x{2019}]|\s)\s*`)

// givenParticleRun is applied to the given name reversed; it additionally
// tolerates a leading right single quote followed by whitespace (the
// reversed form of a token ending in the U+2019 that normalizeApostrophes
// produces, followed by a space).
var givenParticleRun = regexp.MustCompile(`^(?:[\x{2019}]\s|\s)?\S+\s*`)

// isParticleToken reports whether a matched run (read left-to-right as it
// appears in the original string) looks like a lowercase particle rather
// than the start of a capitalized name token.
func isParticleToken(tok string) bool {
	for _, r := range tok {
		if unicode.IsSpace(r) || r == '-' || r == rightSingleQuote || r == '\'' || r == 'ʻ' {
			continue
		}
		return unicode.IsLower(r)
	}
	return false
}

// reverseString returns s with its runes reversed; used to scan the given
// name's trailing particles by running the same leading-run matcher against
// the reverse.
func reverseString(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// splitParticles extracts a run of lowercase particle tokens from the front
// of family (non-dropping-particle) or from the end of given (scanned in
// reverse, dropping-particle). Returns the particle string (in reading
// order) and the remainder.
func splitParticles(s string, isGiven bool) (particle, remainder string) {
	re := familyParticleRun
	scan := s
	if isGiven {
		re = givenParticleRun
		scan = reverseString(s)
	}

	var eaten int
	for {
		loc := re.FindStringIndex(scan[eaten:])
		if loc == nil || loc[0] != 0 {
			break
		}
		tok := scan[eaten : eaten+loc[1]]
		testTok := tok
		if isGiven {
			// tok is captured from the reversed string; un-reverse it so
			// isParticleToken always examines the token's leading
			// character in its original reading-order orientation.
			testTok = reverseString(tok)
		}
		if !isParticleToken(testTok) {
			break
		}
		eaten = eaten + loc[1]
	}
	if eaten == 0 {
		return "", s
	}
	if isGiven {
		// scan was reversed; un-reverse both pieces back to reading order.
		particle = reverseString(scan[:eaten])
		remainder = reverseString(scan[eaten:])
	} else {
		particle = scan[:eaten]
		remainder = scan[eaten:]
	}
	return strings.TrimSpace(particle), strings.TrimSpace(remainder)
}

// NewPersonName builds a PersonName from raw CSL-JSON-shaped fields,
// applying apostrophe normalization, particle splitting (unless particle
// fields are already explicit or StaticParticles is set), and suffix
// extraction. This is the ingest-time normalization spec.md §4.3 describes;
// it is a fixed point (re-ingesting an already-split PersonName changes
// nothing), which is one of the invariants in spec.md §8.
func NewPersonName(family, given, nonDropping, dropping, suffix string, commaSuffix, staticParticles bool) PersonName {
	family = normalizeApostrophes(family)
	given = normalizeApostrophes(given)
	nonDropping = normalizeApostrophes(nonDropping)
	dropping = normalizeApostrophes(dropping)
	suffix = normalizeApostrophes(suffix)

	pn := PersonName{
		Family:              family,
		Given:               given,
		NonDroppingParticle: nonDropping,
		DroppingParticle:    dropping,
		Suffix:              suffix,
		CommaSuffix:         commaSuffix,
		StaticParticles:     staticParticles,
	}

	if !staticParticles {
		if nonDropping == "" && isQuotedVerbatim(family) {
			// `"Family"` with literal ASCII quotes: preserve verbatim, no split.
		} else if nonDropping == "" {
			if p, rest := splitParticles(family, false); p != "" {
				pn.NonDroppingParticle = p
				pn.Family = rest
			}
		}
		if dropping == "" && pn.Suffix == "" && !strings.Contains(given, ",") {
			if p, rest := splitParticles(given, true); p != "" {
				pn.DroppingParticle = p
				pn.Given = rest
			}
		}
	}

	if pn.Suffix == "" {
		if g, suf, comma2 := extractSuffix(pn.Given); suf != "" {
			pn.Given = g
			pn.Suffix = suf
			if comma2 {
				pn.CommaSuffix = true
			}
		}
	}

	pn.IsLatinCyrillic = isLatinCyrillic(pn.Family) && isLatinCyrillic(pn.Given) &&
		isLatinCyrillic(pn.NonDroppingParticle) && isLatinCyrillic(pn.DroppingParticle) &&
		isLatinCyrillic(pn.Suffix)

	return pn
}

func isQuotedVerbatim(family string) bool {
	return len(family) >= 2 && strings.HasPrefix(family, `"`) && strings.HasSuffix(family, `"`)
}

// etAlSuffix matches the literal "et al"/"et al." that looks like an
// appended suffix but must not be extracted (spec.md §4.3): it is a
// stand-in for additional uncredited authors, not a name suffix.
var etAlSuffix = regexp.MustCompile(`(?i)^\s*et\s*al\.?\s*$`)

// extractSuffix pulls a comma-delimited suffix off the end of given (e.g.
// "John, Jr." -> given="John", suffix="Jr."). A double comma ("John,, Jr.")
// sets comma_suffix.
func extractSuffix(given string) (rest, suffix string, commaSuffix bool) {
	idx := strings.IndexByte(given, ',')
	if idx < 0 {
		return given, "", false
	}
	rest = strings.TrimSpace(given[:idx])
	tail := given[idx+1:]
	if strings.HasPrefix(tail, ",") {
		commaSuffix = true
		tail = tail[1:]
	}
	suffix = strings.TrimSpace(tail)
	if etAlSuffix.MatchString(suffix) {
		// Warning is logged by the caller (refs.Store), which has a logger;
		// this package stays log-free and pure.
		return given, "", false
	}
	return rest, suffix, commaSuffix
}

// latinCyrillic is the union of the Latin and Cyrillic Unicode scripts,
// used to decide whether a name should use LATIN_LONG vs NON_LATIN_LONG
// display ordering (spec.md §4.3).
var latinCyrillic = rangetable.Merge(unicode.Latin, unicode.Cyrillic)

// isLatinCyrillic reports whether every rune in s with a defined script is
// Latin or Cyrillic; punctuation, spaces, and digits don't disqualify a
// field. An empty field is vacuously true, matching the source's behavior
// of ANDing per-field checks where absent fields contribute nothing.
func isLatinCyrillic(s string) bool {
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsDigit(r) {
			continue
		}
		if !unicode.Is(latinCyrillic, r) {
			return false
		}
	}
	return true
}

// NewLiteralName builds an opaque Literal name (spec.md §3: "Literal {
// literal, is_latin_cyrillic }"). CSL treats a bare literal name as a
// single-field person name with only Family set, so callers that need
// display-order logic can still call AsPersonName.
func NewLiteralName(literal string) Name {
	literal = normalizeApostrophes(literal)
	return Name{Literal: literal, IsLatinCyrillic: isLatinCyrillic(literal)}
}

// NewPersonNameValue wraps a PersonName as a Name.
func NewPersonNameValue(pn PersonName) Name {
	return Name{Person: &pn, IsLatinCyrillic: pn.IsLatinCyrillic}
}

// AsPersonName normalizes a literal name into a family-only PersonName, the
// way the source's `NameInput::Literal` conversion does, so the rest of the
// IR/disambiguation machinery never has to special-case literal names.
func (n Name) AsPersonName() PersonName {
	if n.Person != nil {
		return *n.Person
	}
	return PersonName{Family: n.Literal, IsLatinCyrillic: n.IsLatinCyrillic}
}
