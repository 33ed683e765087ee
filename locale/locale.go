// Package locale implements CSL locale chain resolution and localized term
// lookup with form fallback (spec.md §4.5). Loading locale XML from disk or
// network is an external collaborator's job (spec.md §1 non-goal "the locale
// file loader"); this package only merges already-parsed Locale bundles and
// answers term/option queries against the resulting chain.
package locale

import (
	"strings"

	"github.com/gedex/inflector"
	"github.com/sirupsen/logrus"

	"github.com/citeproc-go/citeproc/errs"
)

// Form is a term rendering form. Fallback order depends on which form was
// requested: verb-short → verb → short → long; symbol → short → long.
type Form uint8

const (
	FormLong Form = iota
	FormShort
	FormVerb
	FormVerbShort
	FormSymbol
)

// fallback returns the ordered sequence of forms to probe for a requested
// form, starting with the exact match (spec.md §4.5 "search for exact-match
// then form-fallbacks").
func (f Form) fallback() []Form {
	switch f {
	case FormVerbShort:
		return []Form{FormVerbShort, FormVerb, FormShort, FormLong}
	case FormVerb:
		return []Form{FormVerb, FormShort, FormLong}
	case FormSymbol:
		return []Form{FormSymbol, FormShort, FormLong}
	case FormShort:
		return []Form{FormShort, FormLong}
	default:
		return []Form{FormLong}
	}
}

// Term is one localized term entry. Plural is "" when the term has no
// distinct plural form (in which case Value derives an English plural from
// Singular).
type Term struct {
	Singular string
	Plural   string
	Gender   string // "masculine" | "feminine" | ""
}

// Value resolves which of Singular/Plural to use for a plurality request.
// A locale entry with no distinct <multiple> form falls back to an
// algorithmic English plural rather than repeating the singular, so a
// sparse or machine-generated locale bundle still pluralizes sensibly.
func (t Term) Value(plural bool) string {
	if !plural {
		return t.Singular
	}
	if t.Plural != "" {
		return t.Plural
	}
	if t.Singular == "" {
		return ""
	}
	return inflector.Pluralize(t.Singular)
}

type termKey struct {
	name string
	form Form
}

// Locale is one parsed <locale> bundle: its term table plus the handful of
// locale-level rendering options (punctuation-in-quote, limit-day-ordinals-
// to-day-1, and friends) a style may consult.
type Locale struct {
	Lang    string
	Terms   map[termKey]Term
	Options map[string]string
}

// NewLocale builds an empty bundle ready for AddTerm/SetOption calls; the
// locale file loader (external collaborator) constructs one of these per
// parsed <locale> element and hands it to Store.Add.
func NewLocale(lang string) *Locale {
	return &Locale{Lang: lang, Terms: map[termKey]Term{}, Options: map[string]string{}}
}

// AddTerm registers a term under (name, form); it does not overwrite an
// existing entry for the same key, matching CSL's "first locale wins" merge
// rule.
func (l *Locale) AddTerm(name string, form Form, t Term) {
	key := termKey{name: name, form: form}
	if _, exists := l.Terms[key]; exists {
		return
	}
	l.Terms[key] = t
}

func (l *Locale) lookup(name string, form Form) (Term, bool) {
	for _, f := range form.fallback() {
		if t, ok := l.Terms[termKey{name: name, form: f}]; ok {
			return t, true
		}
	}
	return Term{}, false
}

// Store holds every locale bundle the processor knows about, keyed by
// language tag, plus the style's default locale (spec.md §4.5 step 1).
type Store struct {
	log           logrus.FieldLogger
	bundles       map[string]*Locale
	defaultLocale string
}

// NewStore builds a Store with no bundles loaded; callers add them via Add
// as the locale fetcher (external collaborator) resolves each language.
func NewStore(log logrus.FieldLogger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{
		log:     log.WithField("component", "locale"),
		bundles: map[string]*Locale{},
	}
}

// SetDefaultLocale records the style's default-locale attribute, consulted
// first in the chain (spec.md §4.5 step 1).
func (s *Store) SetDefaultLocale(lang string) {
	s.defaultLocale = lang
}

// Add registers a parsed locale bundle, overwriting any earlier bundle for
// the same language.
func (s *Store) Add(l *Locale) {
	s.bundles[l.Lang] = l
}

// Chain resolves the fallback sequence of locale bundles for a requested
// language, root first (spec.md §4.5): style default locale, requested L,
// xx-YY → xx, then en-US. Missing locales are skipped with a warning
// (errs.ErrUnknownLocale is not fatal) rather than aborting the lookup.
func (s *Store) Chain(requested string) []*Locale {
	var order []string
	if s.defaultLocale != "" {
		order = append(order, s.defaultLocale)
	}
	if requested != "" {
		order = append(order, requested)
		if base, ok := baseLanguage(requested); ok {
			order = append(order, base)
		}
	}
	order = append(order, "en-US")

	seen := map[string]bool{}
	var chain []*Locale
	for _, lang := range order {
		if seen[lang] {
			continue
		}
		seen[lang] = true
		if b, ok := s.bundles[lang]; ok {
			chain = append(chain, b)
		} else if lang != "en-US" {
			s.log.WithField("locale", lang).Warn(errs.ErrUnknownLocale.New(lang).Error())
		}
	}
	// Reverse so the root (en-US or whatever bottomed the chain) comes
	// first and the most specific locale comes last — the order the spec's
	// term-lookup walk wants to "search... root first, specific last" while
	// letting the specific locale's entries win ties via later insertion.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

func baseLanguage(lang string) (string, bool) {
	if i := strings.IndexByte(lang, '-'); i > 0 {
		return lang[:i], true
	}
	return "", false
}

// Term walks a resolved chain specific-to-root (reverse of Chain's return
// order, since later/more-specific bundles should win) looking up (name,
// form); falls back to a hard-coded English default for the handful of
// terms critical enough that the processor cannot proceed without them
// (spec.md §4.5 "caller supplies a hard-coded English default").
func (s *Store) Term(requested, name string, form Form, plural bool) string {
	chain := s.Chain(requested)
	for i := len(chain) - 1; i >= 0; i-- {
		if t, ok := chain[i].lookup(name, form); ok {
			return t.Value(plural)
		}
	}
	if def, ok := builtinDefaults[name]; ok {
		return def.Value(plural)
	}
	return ""
}

// Option walks the same chain for a locale-level style option (e.g.
// "punctuation-in-quote"), specific-to-root, first hit wins.
func (s *Store) Option(requested, name string) (string, bool) {
	chain := s.Chain(requested)
	for i := len(chain) - 1; i >= 0; i-- {
		if v, ok := chain[i].Options[name]; ok {
			return v, true
		}
	}
	return "", false
}
