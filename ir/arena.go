// Package ir builds and mutates the intermediate representation tree that
// sits between a compiled Style and final rendered output (spec.md §3, §4.4).
// IR nodes live in an arena indexed by stable NodeId so disambiguation
// passes can rewrite a subtree in place without invalidating ids held by
// other passes (spec.md §9 "Arena + indices").
package ir

import (
	"github.com/davecgh/go-spew/spew"

	"github.com/citeproc-go/citeproc/style"
)

// NodeId is an opaque index into an Arena. The zero value is never a valid
// id (Arena.New always returns ids starting at 1) so a NodeId field left
// unset reads as "absent" without an extra bool.
type NodeId uint32

// GroupVars tags whether a node's subtree actually rendered content, and
// if not, whether that absence should suppress its enclosing group
// (spec.md §3 "Each node additionally stores a GroupVars tag").
type GroupVars uint8

const (
	GVPlain GroupVars = iota
	GVMissing
	GVImportant
	GVUnresolved
)

// Neighbour combines two sibling GroupVars values per spec.md §4.4's
// group-variable recomputation rule. Important is contagious (an
// Important sibling makes the pair Important regardless of the other);
// failing that, two Plains stay Plain, while a Plain/Missing or
// Missing/Missing pairing is Missing (static text alone does not keep a
// group alive once a variable in it is absent); a Plain/Unresolved pairing
// is Plain; anything else (a Missing/Unresolved pairing) stays Unresolved,
// since neither side has resolved whether the subtree renders.
func (a GroupVars) Neighbour(b GroupVars) GroupVars {
	switch {
	case a == GVImportant || b == GVImportant:
		return GVImportant
	case a == GVPlain && b == GVPlain:
		return GVPlain
	case (a == GVPlain || a == GVMissing) && (b == GVPlain || b == GVMissing):
		return GVMissing
	case a == GVPlain || b == GVPlain:
		return GVPlain
	default:
		return GVUnresolved
	}
}

// NodeKind tags which payload a Node carries (spec.md §3 IR node payloads).
type NodeKind uint8

const (
	NodeRendered NodeKind = iota
	NodeName
	NodeConditionalDisamb
	NodeYearSuffix
	NodeSeq
	NodeNameCounter
)

// Node is one IR arena entry. Exactly one of the payload fields matching
// Kind is populated; the rest are zero.
type Node struct {
	Kind NodeKind
	GV   GroupVars

	Rendered   *Edge
	Name       *NameData
	Cond       *CondData
	YearSuffix *YearSuffixData
	Seq        *SeqData
	NameCount  *NameCounterData
}

// SeqData is the payload for NodeSeq, a grouping node (spec.md §3 "Seq(IrSeq)").
type SeqData struct {
	Formatting style.Formatting
	Affixes    style.Affixes
	Delimiter  string
	Display    string
	Quotes     bool
	TextCase   style.TextCase

	// DroppedGV is set for an implicit conditional group (a compiled
	// <group>): the initial GV the postorder fold starts from. nil means
	// this Seq never collapses regardless of its children's GV (used for
	// the top-level layout and a Choose branch's wrapper).
	DroppedGV *GroupVars

	// IsIntext marks the Seq compiled from a CSL-M <intext> block, the
	// author/in-text marker the render package's AuthorOnly cluster mode
	// (spec.md §4.8) looks for to find the author block without re-walking
	// the style.
	IsIntext bool

	Children []NodeId
}

// CondData is the payload for NodeConditionalDisamb: a compiled <choose>
// whose selected branch may be re-evaluated by gen4 (spec.md §4.6.3).
type CondData struct {
	Choose   *style.ChooseElement
	Selected NodeId // a NodeSeq wrapping the currently selected branch's children
}

// YearSuffixHook distinguishes an explicit <text variable="year-suffix"/>
// from an implicit one rendered right after a date (spec.md §3).
type YearSuffixHook uint8

const (
	YearSuffixExplicit YearSuffixHook = iota
	YearSuffixPlain
)

// YearSuffixData is the payload for NodeYearSuffix, a placeholder filled
// in with a letter during gen3 (spec.md §4.6.3).
type YearSuffixData struct {
	Hook   YearSuffixHook
	Letter string // "" until gen3 assigns one
}

// NameCounterData is the payload for NodeNameCounter (<name form="count"/>).
type NameCounterData struct {
	Count int
}

// Arena owns every Node for one cite's IR tree plus every reference's RefIR
// used by disambiguation (spec.md §9 "Arena + indices" — not owning
// references, opaque ids).
type Arena struct {
	nodes []Node
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{nodes: make([]Node, 1)} // index 0 reserved, NodeId 0 is invalid
}

// New appends a node and returns its stable id.
func (a *Arena) New(n Node) NodeId {
	a.nodes = append(a.nodes, n)
	return NodeId(len(a.nodes) - 1)
}

// Get returns a pointer to the node so callers can mutate it in place
// (disambiguation passes rewrite Cond.Selected, YearSuffix.Letter, etc.
// without reallocating ids).
func (a *Arena) Get(id NodeId) *Node {
	if a == nil || int(id) >= len(a.nodes) {
		return nil
	}
	return &a.nodes[id]
}

// Dump renders the single node at id (its payload, including its child
// ids, but not the children themselves) in human-readable form.
// Processor.render logs it at debug level when a cite is still ambiguous
// after every disambiguation pass.
func (a *Arena) Dump(id NodeId) string {
	n := a.Get(id)
	if n == nil {
		return "<nil>"
	}
	return spew.Sdump(n)
}
