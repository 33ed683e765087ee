package locale

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTermFormFallback(t *testing.T) {
	en := NewLocale("en-US")
	en.AddTerm("cited", FormLong, Term{Singular: "cited"})
	st := NewStore(nil)
	st.Add(en)

	got := st.Term("en-US", "cited", FormVerbShort, false)
	require.Equal(t, "cited", got, "verb-short should fall back to long when no closer form exists")
}

func TestTermExactFormWins(t *testing.T) {
	en := NewLocale("en-US")
	en.AddTerm("page", FormLong, Term{Singular: "page", Plural: "pages"})
	en.AddTerm("page", FormShort, Term{Singular: "p.", Plural: "pp."})
	st := NewStore(nil)
	st.Add(en)

	require.Equal(t, "p.", st.Term("en-US", "page", FormShort, false))
	require.Equal(t, "pp.", st.Term("en-US", "page", FormShort, true))
	require.Equal(t, "page", st.Term("en-US", "page", FormLong, false))
}

func TestChainFallsBackToBaseThenEnUS(t *testing.T) {
	fr := NewLocale("fr")
	fr.AddTerm("and", FormLong, Term{Singular: "et"})
	st := NewStore(nil)
	st.Add(fr)

	got := st.Term("fr-CA", "and", FormLong, false)
	require.Equal(t, "et", got, "fr-CA should fall back to fr")
}

func TestStyleDefaultLocaleTakesPriority(t *testing.T) {
	en := NewLocale("en-US")
	en.AddTerm("and", FormLong, Term{Singular: "and"})
	de := NewLocale("de-DE")
	de.AddTerm("and", FormLong, Term{Singular: "und"})

	st := NewStore(nil)
	st.Add(en)
	st.Add(de)
	st.SetDefaultLocale("de-DE")

	// Requested language is en-US but the style's default locale (de-DE) is
	// most specific in the chain, so its term wins.
	got := st.Term("en-US", "and", FormLong, false)
	require.Equal(t, "und", got)
}

func TestUnknownTermFallsBackToBuiltinDefault(t *testing.T) {
	st := NewStore(nil)
	got := st.Term("en-US", "et-al", FormLong, false)
	require.Equal(t, "et al.", got)
}

func TestMissingLocaleDoesNotPanicAndStillResolvesEnUS(t *testing.T) {
	en := NewLocale("en-US")
	en.AddTerm("and", FormLong, Term{Singular: "and"})
	st := NewStore(nil)
	st.Add(en)

	got := st.Term("zz-ZZ", "and", FormLong, false)
	require.Equal(t, "and", got)
}

func TestAddTermDoesNotOverwriteExisting(t *testing.T) {
	en := NewLocale("en-US")
	en.AddTerm("and", FormLong, Term{Singular: "and"})
	en.AddTerm("and", FormLong, Term{Singular: "should-not-win"})

	st := NewStore(nil)
	st.Add(en)
	require.Equal(t, "and", st.Term("en-US", "and", FormLong, false))
}

func TestOption(t *testing.T) {
	en := NewLocale("en-US")
	en.Options["punctuation-in-quote"] = "true"
	st := NewStore(nil)
	st.Add(en)

	v, ok := st.Option("en-US", "punctuation-in-quote")
	require.True(t, ok)
	require.Equal(t, "true", v)

	_, ok = st.Option("en-US", "nonexistent")
	require.False(t, ok)
}
