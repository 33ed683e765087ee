package disamb

import (
	"testing"

	"github.com/cespare/xxhash"
	"github.com/stretchr/testify/require"
)

func out(s string) Token { return Token{Kind: TokOutput, TextHash: xxhash.Sum64String(s)} }

func TestDfaAcceptsExactSequence(t *testing.T) {
	n := NewNfa()
	n.AddCompleteSequence([]Token{out("Smith"), out(", "), out("2020")})
	dfa := toDfa(n)
	require.True(t, dfa.Accepts([]Token{out("Smith"), out(", "), out("2020")}))
	require.False(t, dfa.Accepts([]Token{out("Jones"), out(", "), out("2020")}))
	require.False(t, dfa.Accepts([]Token{out("Smith"), out(", ")}))
}

func TestNfaMergesSharedPrefixes(t *testing.T) {
	n := NewNfa()
	n.AddCompleteSequence([]Token{out("a"), out("b"), out("c"), out("e")})
	n.AddCompleteSequence([]Token{out("a"), out("b"), out("e")})
	n.AddCompleteSequence([]Token{out("b"), out("c"), out("d"), out("e")})
	n.AddCompleteSequence([]Token{out("b"), out("d"), out("e")})

	dfa := n.Minimize()
	require.True(t, dfa.Accepts([]Token{out("a"), out("b"), out("e")}))
	require.False(t, dfa.Accepts([]Token{out("a"), out("b"), out("c"), out("d"), out("e")}))
}

func TestMinimizePreservesAcceptance(t *testing.T) {
	n := NewNfa()
	n.AddCompleteSequence([]Token{out("peters"), out(", "), out("20")})
	n.AddCompleteSequence([]Token{out("reuben"), out("peters"), out(", "), out("20")})
	n.AddCompleteSequence([]Token{out("peters"), out(", "), out("reuben"), out(", "), out("20")})

	dfa := n.Minimize()
	require.True(t, dfa.Accepts([]Token{out("peters"), out(", "), out("20")}))
	require.True(t, dfa.Accepts([]Token{out("reuben"), out("peters"), out(", "), out("20")}))
	require.False(t, dfa.Accepts([]Token{out("andy"), out(", "), out("peters"), out(", "), out("20")}))
}
