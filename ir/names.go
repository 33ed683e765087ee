package ir

import (
	"strings"

	"github.com/citeproc-go/citeproc/locale"
	"github.com/citeproc-go/citeproc/refs"
	"github.com/citeproc-go/citeproc/style"
)

// NameData is the ratchet state for one <names> block's expansion
// (spec.md §3 "Name(NameIR) — holds the ratchet state for one name
// variable's expansion"). The disambiguation engine (gen1/gen2) advances
// Context.NameExpansion and rebuilds the IR rather than mutating NameData
// directly, since a deeper expansion changes et-al collapsing and
// delimiter placement throughout the whole block, not just one slot.
type NameData struct {
	Variables []string
	GV        GroupVars

	// Total is how many names this block had available across all its
	// variables, before et-al truncation.
	Total int
	// Shown is how many were actually rendered (<= Total).
	Shown int
	// RenderedText is the fully formatted output for this block, cached
	// here so Flatten doesn't need to re-run name formatting.
	RenderedText string
}

// buildNames compiles a style.NamesElement against the current reference
// into a NodeSeq wrapping a single NodeName leaf (the label, if any, is a
// sibling rendered text node so it composes with the names block through
// ordinary Seq delimiter/affix handling).
func (b *builder) buildNames(e *style.NamesElement) NodeId {
	var all []refs.Name
	for _, v := range e.Variables {
		all = append(all, b.ctx.Reference.Names[v]...)
	}

	data := &NameData{Variables: e.Variables, Total: len(all)}

	if len(all) == 0 {
		if e.Substitute != nil {
			return b.buildSubstitute(e)
		}
		data.GV = GVMissing
		nameNode := b.arena.New(Node{Kind: NodeName, GV: GVMissing, Name: data})
		return b.wrapSingle(nameNode, GVMissing, e.Formatting, e.Affixes)
	}

	nameEl := e.NameEl
	if nameEl == nil {
		nameEl = &style.NameEl{Form: style.NameLong, Delimiter: ", ", EtAlUseFirst: 1}
	}

	shown := len(all)
	etAlMin := nameEl.EtAlMin
	useFirst := nameEl.EtAlUseFirst
	if b.ctx.NameExpansion.MinNamesShown > useFirst {
		useFirst = b.ctx.NameExpansion.MinNamesShown
	}
	truncated := false
	if etAlMin > 0 && len(all) >= etAlMin && useFirst < len(all) {
		shown = useFirst
		truncated = true
	}

	formatted := make([]string, 0, shown)
	for i := 0; i < shown; i++ {
		formatted = append(formatted, formatName(all[i], nameEl, b.ctx.NameExpansion.ForceLongForm))
	}

	text := joinNames(formatted, nameEl, truncated, b.ctx.Locale, b.ctx.Lang)

	data.Shown = shown
	data.RenderedText = text
	data.GV = GVImportant

	nameNode := b.arena.New(Node{Kind: NodeName, GV: GVImportant, Name: data})

	if e.Label != nil {
		labelNode := b.buildNameLabel(e.Label, data.Total)
		children := []NodeId{nameNode}
		if e.LabelAfterName {
			children = []NodeId{nameNode, labelNode}
		} else {
			children = []NodeId{labelNode, nameNode}
		}
		return b.arena.New(Node{
			Kind: NodeSeq,
			GV:   GVImportant,
			Seq: &SeqData{
				Formatting: e.Formatting,
				Affixes:    e.Affixes,
				Delimiter:  " ",
			},
		}.withChildren(children))
	}

	return b.wrapSingle(nameNode, GVImportant, e.Formatting, e.Affixes)
}

func (n Node) withChildren(children []NodeId) Node {
	n.Seq.Children = children
	return n
}

func (b *builder) buildSubstitute(e *style.NamesElement) NodeId {
	for _, child := range e.Substitute.Children {
		id := b.buildElement(child)
		if node := b.arena.Get(id); node != nil && node.GV != GVMissing {
			return id
		}
	}
	return b.arena.New(Node{Kind: NodeRendered, GV: GVMissing})
}

func (b *builder) buildNameLabel(l *style.LabelElement, count int) NodeId {
	plural := l.Plural == style.PluralAlways || (l.Plural == style.PluralContextual && count != 1)
	term := b.ctx.Locale.Term(b.ctx.Lang, l.Variable, formOf(l.Form), plural)
	term = applyAffixes(term, l.Affixes)
	if term == "" {
		return b.arena.New(Node{Kind: NodeRendered, GV: GVMissing})
	}
	return b.arena.New(Node{Kind: NodeRendered, GV: GVPlain, Rendered: &Edge{Kind: EdgeOutput, Text: term}})
}

func (b *builder) wrapSingle(id NodeId, gv GroupVars, formatting style.Formatting, affixes style.Affixes) NodeId {
	return b.arena.New(Node{
		Kind: NodeSeq,
		GV:   gv,
		Seq:  &SeqData{Children: []NodeId{id}, Formatting: formatting, Affixes: affixes},
	})
}

// formatName renders one Name per the <name> element's configuration:
// family-first long form with particles reattached, or a short form
// (family only), with initials applied when requested.
func formatName(n refs.Name, nameEl *style.NameEl, forceLong bool) string {
	if n.Literal != "" {
		return n.Literal
	}
	p := n.Person

	given := p.Given
	if (nameEl.Initialize || nameEl.InitializeWith != "") && !forceLong {
		given = initializeGiven(given, nameEl.InitializeWith)
	}

	family := p.Family
	if p.NonDroppingParticle != "" {
		family = p.NonDroppingParticle + " " + family
	}

	form := nameEl.Form
	if forceLong {
		form = style.NameLong
	}

	switch form {
	case style.NameShort:
		return strings.TrimSpace(family)
	default:
		var parts []string
		if given != "" {
			parts = append(parts, given)
		}
		if p.DroppingParticle != "" {
			parts = append(parts, p.DroppingParticle)
		}
		parts = append(parts, family)
		if p.Suffix != "" {
			sep := ", "
			if p.CommaSuffix {
				sep = ", "
			}
			return strings.Join(parts, " ") + sep + p.Suffix
		}
		return strings.Join(parts, " ")
	}
}

// initializeGiven reduces a given name to initials separated by
// initializeWith (e.g. "J. K." for initializeWith=". ").
func initializeGiven(given, initializeWith string) string {
	if given == "" {
		return ""
	}
	fields := strings.Fields(given)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		r := []rune(f)
		if len(r) == 0 {
			continue
		}
		out = append(out, string(r[0]))
	}
	sep := initializeWith
	if sep == "" {
		sep = ". "
	}
	return strings.TrimSpace(strings.Join(out, sep) + strings.TrimRight(sep, " "))
}

// joinNames assembles the delimiter/and/et-al logic of a <name> element
// over an already-formatted, already-truncated name list.
func joinNames(names []string, nameEl *style.NameEl, truncated bool, store *locale.Store, lang string) string {
	if len(names) == 0 {
		return ""
	}
	delim := nameEl.Delimiter
	if delim == "" {
		delim = ", "
	}

	var sb strings.Builder
	for i, n := range names {
		if i > 0 {
			last := i == len(names)-1
			if last && !truncated && nameEl.And != "" {
				sb.WriteString(andSeparator(nameEl, store, lang))
			} else {
				sb.WriteString(delim)
			}
		}
		sb.WriteString(n)
	}
	if truncated && nameEl.EtAlUseLast {
		sb.WriteString(delim)
		sb.WriteString(store.Term(lang, "and others", locale.FormLong, false))
	} else if truncated {
		sb.WriteString(delim)
		sb.WriteString(store.Term(lang, "et-al", locale.FormLong, false))
	}
	return sb.String()
}

func andSeparator(nameEl *style.NameEl, store *locale.Store, lang string) string {
	if nameEl.And == "symbol" {
		return " & "
	}
	return " " + store.Term(lang, "and", locale.FormLong, false) + " "
}

func formOf(form string) locale.Form {
	switch form {
	case "short":
		return locale.FormShort
	case "verb":
		return locale.FormVerb
	case "verb-short":
		return locale.FormVerbShort
	case "symbol":
		return locale.FormSymbol
	default:
		return locale.FormLong
	}
}

func applyAffixes(s string, a style.Affixes) string {
	if s == "" {
		return s
	}
	return a.Prefix + s + a.Suffix
}
