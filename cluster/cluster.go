// Package cluster tracks citation clusters, their document order and note
// numbers, and computes each cite's Position (spec.md §3, §4.2).
package cluster

import "github.com/citeproc-go/citeproc/refs"

// Mode is how a cluster's first cite is rendered relative to the normal
// author-date form (spec.md §3 Cluster).
type Mode uint8

const (
	ModeNormal Mode = iota
	ModeAuthorOnly
	ModeSuppressAuthor
	ModeComposite
)

// Cluster is one citation cluster: a group of cites rendered together,
// optionally in a non-default mode.
type Cluster struct {
	ID    string
	Cites []Cite
	Mode  Mode

	// SuppressFirst is the number of leading cites whose author block is
	// suppressed, used by ModeSuppressAuthor and ModeComposite.
	SuppressFirst int
	// Infix is inserted between the suppressed author and the remaining
	// citation, used by ModeComposite (e.g. "1999, as quoted in").
	Infix string
}

// LocatorType names a CSL locator kind (page, chapter, volume, ...).
type LocatorType string

// Locator is a single pinpoint reference, e.g. "page 12".
type Locator struct {
	Type  LocatorType
	Value refs.NumericValue
}

// Cite is one reference citation within a Cluster.
type Cite struct {
	RefID    string
	Prefix   string
	Suffix   string
	Locators []Locator
}

// HasLocator reports whether this cite carries any pinpoint locator.
func (c Cite) HasLocator() bool {
	return len(c.Locators) > 0
}

// locatorsEqual compares two cites' locator sets the way Position
// assignment needs to: both absent, or equal type+value (spec.md §4.2 step
// 2, "Ibid if ... locators match (both absent or equal)").
func locatorsEqual(a, b Cite) bool {
	if len(a.Locators) != len(b.Locators) {
		return false
	}
	for i := range a.Locators {
		if a.Locators[i].Type != b.Locators[i].Type {
			return false
		}
		if a.Locators[i].Value.Raw != b.Locators[i].Value.Raw {
			return false
		}
	}
	return true
}

// NumberKind distinguishes an in-text cluster number from a footnote
// cluster number (spec.md §3 "ClusterNumber").
type NumberKind uint8

const (
	NumberInText NumberKind = iota
	NumberNote
)

// ClusterNumber is the caller-assigned position of a cluster in the
// document. IntraIndex preserves relative order among clusters sharing one
// note number (e.g. two clusters both attached to footnote 3).
type ClusterNumber struct {
	Kind       NumberKind
	Number     uint32
	IntraIndex uint32
}

func (n ClusterNumber) less(o ClusterNumber) bool {
	if n.Number != o.Number {
		return n.Number < o.Number
	}
	return n.IntraIndex < o.IntraIndex
}

// noteOf returns the note number to use for near/far-note distance
// calculations; in-text clusters have no note, so they compare as note 0.
func (n ClusterNumber) noteOf() uint32 {
	if n.Kind == NumberNote {
		return n.Number
	}
	return 0
}

// Position is the relationship of one cite to the nearest earlier cite of
// the same reference (spec.md §4.2).
type Position uint8

const (
	PositionFirst Position = iota
	PositionIbid
	PositionIbidWithLocator
	PositionSubsequent
	PositionNearNote
	PositionFarNote
)

func (p Position) String() string {
	switch p {
	case PositionFirst:
		return "first"
	case PositionIbid:
		return "ibid"
	case PositionIbidWithLocator:
		return "ibid-with-locator"
	case PositionSubsequent:
		return "subsequent"
	case PositionNearNote:
		return "near-note"
	case PositionFarNote:
		return "far-note"
	default:
		return "unknown"
	}
}

// CitePosition is the computed positional metadata for one cite, consulted
// by <choose position="..."> conditions and by the disambiguation engine.
type CitePosition struct {
	Position Position
	// FirstReferenceNoteNumber is the note number of this ref_id's first
	// occurrence; unset (0) for Position == First.
	FirstReferenceNoteNumber uint32
}
