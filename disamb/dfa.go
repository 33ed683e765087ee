package disamb

import (
	"fmt"
	"sort"
	"strings"
)

// Dfa is a deterministic finite automaton over the Token alphabet,
// produced from an Nfa by subset construction (finite_automata.rs's
// to_dfa) and used directly for minimization (brzozowski_minimise) or as
// the final minimized matcher a reference's possible renderings collapse
// into.
type Dfa struct {
	numStates int
	trans     map[int]map[Token]int
	start     int
	accepting map[int]bool
}

// toDfa performs subset construction: each Dfa state is one epsilon-closed
// set of Nfa states, discovered breadth-first from the closed start set.
func toDfa(n *Nfa) *Dfa {
	dfa := &Dfa{trans: map[int]map[Token]int{}, accepting: map[int]bool{}}

	start := map[int]bool{}
	for s := range n.start {
		start[s] = true
	}
	epsilonClosure(n, start)

	seen := map[string]int{}
	dfa.start = 0
	dfa.numStates = 1
	seen[stateKey(start)] = dfa.start
	if anyIn(start, n.accepting) {
		dfa.accepting[dfa.start] = true
	}

	type pending struct {
		set map[int]bool
		id  int
	}
	queue := []pending{{start, dfa.start}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		byTok := map[Token]map[int]bool{}
		for s := range cur.set {
			for _, e := range n.edges {
				if e.from != s || e.epsilon {
					continue
				}
				if byTok[e.tok] == nil {
					byTok[e.tok] = map[int]bool{}
				}
				byTok[e.tok][e.to] = true
			}
		}

		for tok, targets := range byTok {
			epsilonClosure(n, targets)
			key := stateKey(targets)
			id, ok := seen[key]
			if !ok {
				id = dfa.numStates
				dfa.numStates++
				seen[key] = id
				if anyIn(targets, n.accepting) {
					dfa.accepting[id] = true
				}
				queue = append(queue, pending{targets, id})
			}
			if dfa.trans[cur.id] == nil {
				dfa.trans[cur.id] = map[Token]int{}
			}
			dfa.trans[cur.id][tok] = id
		}
	}
	return dfa
}

func stateKey(set map[int]bool) string {
	ids := make([]int, 0, len(set))
	for s := range set {
		ids = append(ids, s)
	}
	sort.Ints(ids)
	var sb strings.Builder
	for i, id := range ids {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d", id)
	}
	return sb.String()
}

// toReversedNfa turns a Dfa back into an Nfa with every edge flipped and
// start/accepting swapped, the second half of Brzozowski's double
// reversal (finite_automata.rs's Dfa -> reversed Nfa step inside
// brzozowski_minimise).
func (d *Dfa) toReversedNfa() *Nfa {
	n := &Nfa{numStates: d.numStates, start: map[int]bool{}, accepting: map[int]bool{}}
	n.accepting[d.start] = true
	for s := range d.accepting {
		n.start[s] = true
	}
	for from, m := range d.trans {
		for tok, to := range m {
			n.edges = append(n.edges, nfaTransition{from: to, to: from, tok: tok})
		}
	}
	return n
}

// Minimize runs Brzozowski minimization: reverse, determinize, reverse,
// determinize again. Two passes of subset construction over the reversed
// graph throw away every state unreachable from an accepting path, which
// is exactly the states irrelevant to matching (finite_automata.rs's
// brzozowski_minimise).
func (n *Nfa) Minimize() *Dfa {
	once := toDfa(n.reversed())
	twice := once.toReversedNfa()
	return toDfa(twice)
}

// Accepts walks tokens deterministically from the start state, returning
// false the instant no transition exists.
func (d *Dfa) Accepts(tokens []Token) bool {
	cur := d.start
	for _, t := range tokens {
		next, ok := d.trans[cur][t]
		if !ok {
			return false
		}
		cur = next
	}
	return d.accepting[cur]
}
