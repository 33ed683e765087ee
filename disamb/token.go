// Package disamb implements citation disambiguation (spec.md §4.6): a
// finite-automaton matcher over a cite's flattened edge stream grounded on
// _examples/original_source's crates/proc/src/disamb/finite_automata.rs
// (Nfa/Dfa/EdgeData, Brzozowski double-reversal minimization), plus the
// four-pass escalation engine (add names, add given name, add year suffix,
// re-evaluate disambiguate="true" conditionals) that decides when two
// references would render indistinguishably and mutates the render context
// until they don't.
package disamb

import (
	"github.com/cespare/xxhash"

	"github.com/citeproc-go/citeproc/ir"
)

// TokenKind is the disambiguation alphabet: mirrors ir.EdgeKind but drops
// the actual text for the locator, citation-number, frnn and accessed
// placeholders — two cites differing only in their locator value are not
// thereby distinguishable, since a reader can't use an
// absent-at-disambiguation-time locator to tell references apart. A
// year-suffix token keeps a hash of its assigned letter, so two references
// given different letters by gen3 no longer match (before any assignment
// every letter is "" and all year-suffix tokens are equal).
type TokenKind uint8

const (
	TokOutput TokenKind = iota
	TokLocator
	TokYearSuffix
	TokCitationNumber
	TokFrnn
	TokAccessed
)

// Token is one symbol of a Nfa/Dfa alphabet. Two output tokens compare
// equal (as a Go map key, in Dfa.trans/byTok) by their interned text hash
// rather than by comparing the full rendered string byte-for-byte — a
// Dfa can carry one transition per distinct rendered fragment across
// every reference in the library, so this keeps Token a small, cheaply
// comparable fixed-size key instead of letting every transition-map
// lookup re-walk a potentially long output string.
type Token struct {
	Kind     TokenKind
	TextHash uint64 // only meaningful when Kind == TokOutput or TokYearSuffix
}

// TokensFromEdges converts a flattened IR edge stream into the
// disambiguation alphabet.
func TokensFromEdges(edges []ir.Edge) []Token {
	out := make([]Token, 0, len(edges))
	for _, e := range edges {
		out = append(out, tokenFromEdge(e))
	}
	return out
}

func tokenFromEdge(e ir.Edge) Token {
	switch e.Kind {
	case ir.EdgeOutput:
		return Token{Kind: TokOutput, TextHash: xxhash.Sum64String(e.Text)}
	case ir.EdgeLocator:
		return Token{Kind: TokLocator}
	case ir.EdgeYearSuffix:
		return Token{Kind: TokYearSuffix, TextHash: xxhash.Sum64String(e.Text)}
	case ir.EdgeCitationNumber:
		return Token{Kind: TokCitationNumber}
	case ir.EdgeFrnn:
		return Token{Kind: TokFrnn}
	case ir.EdgeAccessed:
		return Token{Kind: TokAccessed}
	default:
		return Token{Kind: TokOutput, TextHash: xxhash.Sum64String(e.Text)}
	}
}
