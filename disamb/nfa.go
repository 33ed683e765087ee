package disamb

// Nfa is a nondeterministic finite automaton over the Token alphabet,
// grounded on original_source/crates/proc/src/disamb/finite_automata.rs's
// Nfa/NfaGraph: an adjacency-list graph with possibly many start states and
// possibly many accepting states, built one complete path per reference
// rendering. No pack example repo depends on a graph library (neither
// gonum nor any other), so the graph here is a hand-rolled slice-of-edges
// structure over the standard library rather than an adopted dependency —
// this is the one package in the module with no third-party grounding for
// its core data structure, recorded in DESIGN.md.
type Nfa struct {
	numStates int
	edges     []nfaTransition
	start     map[int]bool
	accepting map[int]bool
}

type nfaTransition struct {
	from, to int
	epsilon  bool
	tok      Token
}

func NewNfa() *Nfa {
	return &Nfa{start: map[int]bool{}, accepting: map[int]bool{}}
}

func (n *Nfa) newState() int {
	id := n.numStates
	n.numStates++
	return id
}

// AddCompleteSequence adds one start-to-accept path labelled with tokens in
// order: one reference's current rendering is one complete sequence
// (finite_automata.rs's add_complete_sequence).
func (n *Nfa) AddCompleteSequence(tokens []Token) {
	cursor := n.newState()
	n.start[cursor] = true
	for _, t := range tokens {
		next := n.newState()
		n.edges = append(n.edges, nfaTransition{from: cursor, to: next, tok: t})
		cursor = next
	}
	n.accepting[cursor] = true
}

// AddSequenceBetween splices a token path between two existing states,
// used to graft an alternative branch's rendering onto a shared prefix/
// suffix (finite_automata.rs's add_sequence_between) — reserved for a
// future free-condition enumeration of <choose> branches; unused by the
// current single-path escalation engine, kept for API parity with the
// grounding source.
func (n *Nfa) AddSequenceBetween(from, to int, tokens []Token) {
	cursor := from
	for _, t := range tokens {
		next := n.newState()
		n.edges = append(n.edges, nfaTransition{from: cursor, to: next, tok: t})
		cursor = next
	}
	n.edges = append(n.edges, nfaTransition{from: cursor, to: to, epsilon: true})
}

func (n *Nfa) IsEmpty() bool {
	return n.numStates == 0
}

func epsilonClosure(n *Nfa, set map[int]bool) {
	work := make([]int, 0, len(set))
	for s := range set {
		work = append(work, s)
	}
	for len(work) > 0 {
		s := work[len(work)-1]
		work = work[:len(work)-1]
		for _, e := range n.edges {
			if e.from == s && e.epsilon && !set[e.to] {
				set[e.to] = true
				work = append(work, e.to)
			}
		}
	}
}

func anyIn(set, target map[int]bool) bool {
	for s := range set {
		if target[s] {
			return true
		}
	}
	return false
}

// reversed builds the reverse graph used by Brzozowski minimization:
// every edge direction flips and the start/accepting sets swap.
func (n *Nfa) reversed() *Nfa {
	r := &Nfa{numStates: n.numStates, start: map[int]bool{}, accepting: map[int]bool{}}
	for s := range n.accepting {
		r.start[s] = true
	}
	for s := range n.start {
		r.accepting[s] = true
	}
	for _, e := range n.edges {
		r.edges = append(r.edges, nfaTransition{from: e.to, to: e.from, epsilon: e.epsilon, tok: e.tok})
	}
	return r
}
