package ir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/citeproc-go/citeproc/cluster"
	"github.com/citeproc-go/citeproc/internal/sortframe"
	"github.com/citeproc-go/citeproc/locale"
	"github.com/citeproc-go/citeproc/refs"
	"github.com/citeproc-go/citeproc/style"
	"github.com/citeproc-go/citeproc/textproc"
)

// builder holds the arena and context shared across one Build call's
// recursive descent; it never escapes this package (spec.md §4.4).
type builder struct {
	arena *Arena
	ctx   *Context
}

// Build compiles a layout's element list into an IR tree for the given
// render context (spec.md §4.4: "IR construction walks the Style tree
// post-order against the current RenderContext"). The returned NodeId is
// the root Seq; it never collapses regardless of its children's GroupVars,
// since a whole citation/bibliography entry is never itself conditionally
// suppressed.
func Build(elements []style.Element, ctx *Context) (*Arena, NodeId) {
	arena := NewArena()
	b := &builder{arena: arena, ctx: ctx}
	root := b.buildSeqWithConfig(elements, nil, SeqData{})
	return arena, root
}

func (b *builder) buildElement(e style.Element) NodeId {
	switch el := e.(type) {
	case *style.TextElement:
		return b.buildText(el)
	case *style.LabelElement:
		return b.buildLabel(el)
	case *style.GroupElement:
		return b.buildGroup(el)
	case *style.NumberElement:
		return b.buildNumber(el)
	case *style.NamesElement:
		return b.buildNames(el)
	case *style.ChooseElement:
		return b.buildChoose(el)
	case *style.DateElement:
		return b.buildDate(el)
	case *style.IntextElement:
		return b.buildSeqWithConfig(el.Children, nil, SeqData{IsIntext: true})
	default:
		return b.arena.New(Node{Kind: NodeRendered, GV: GVMissing})
	}
}

// buildSeqWithConfig folds children's GroupVars onto droppedGV (the seed
// the spec calls "the initial GV the postorder fold starts from"); a
// compiled <group> passes a non-nil GVMissing seed so an empty or
// all-missing group collapses, while every other sequence (layout, a
// choose branch, an intext block) passes nil so it never collapses no
// matter what its children resolve to.
func (b *builder) buildSeqWithConfig(els []style.Element, droppedGV *GroupVars, cfg SeqData) NodeId {
	seed := GVPlain
	if droppedGV != nil {
		seed = *droppedGV
	}
	fold := seed
	children := make([]NodeId, 0, len(els))
	for _, el := range els {
		id := b.buildElement(el)
		children = append(children, id)
		gv := GVMissing
		if n := b.arena.Get(id); n != nil {
			gv = n.GV
		}
		fold = fold.Neighbour(gv)
	}
	cfg.Children = children
	cfg.DroppedGV = droppedGV
	return b.arena.New(Node{Kind: NodeSeq, GV: fold, Seq: &cfg})
}

func (b *builder) buildGroup(e *style.GroupElement) NodeId {
	dropped := GVMissing
	return b.buildSeqWithConfig(e.Children, &dropped, SeqData{
		Formatting: e.Formatting,
		Affixes:    e.Affixes,
		Delimiter:  e.Delimiter,
		Display:    e.Display,
		Quotes:     e.Quotes,
		TextCase:   e.TextCase,
	})
}

// ---- Text ----

func (b *builder) buildText(e *style.TextElement) NodeId {
	switch e.Source {
	case style.TextValue:
		return b.renderPlain(e.Value, e.Affixes, e.TextCase, e.Quotes, e.StripPeriods, EdgeOutput)
	case style.TextVariable:
		return b.buildVariableText(e)
	case style.TextTerm:
		plural := false
		if e.Plural != nil {
			plural = *e.Plural
		}
		term := b.ctx.Locale.Term(b.ctx.Lang, e.Term, formOf(e.Form), plural)
		return b.renderPlain(term, e.Affixes, e.TextCase, e.Quotes, e.StripPeriods, EdgeOutput)
	case style.TextMacro:
		return b.buildMacro(e)
	default:
		return b.arena.New(Node{Kind: NodeRendered, GV: GVMissing})
	}
}

func (b *builder) buildMacro(e *style.TextElement) NodeId {
	body, ok := b.ctx.Style.Macro(e.Macro)
	if !ok {
		return b.arena.New(Node{Kind: NodeRendered, GV: GVMissing})
	}
	if !b.ctx.pushMacro(e.Macro) {
		// Recursive macro invocation at render time: render nothing rather
		// than loop forever. style.Compile does not reject macro cycles, so
		// this guard is what stops any recursion, static or conditional.
		return b.arena.New(Node{Kind: NodeRendered, GV: GVMissing})
	}
	id := b.buildSeqWithConfig(body, nil, SeqData{})
	b.ctx.popMacro()
	if e.Affixes != (style.Affixes{}) || e.TextCase != style.TextCaseNone || e.Quotes {
		n := b.arena.Get(id)
		gv := GVMissing
		if n != nil {
			gv = n.GV
		}
		return b.arena.New(Node{Kind: NodeSeq, GV: gv, Seq: &SeqData{
			Affixes:  e.Affixes,
			TextCase: e.TextCase,
			Quotes:   e.Quotes,
			Children: []NodeId{id},
		}})
	}
	return id
}

func (b *builder) buildVariableText(e *style.TextElement) NodeId {
	v := e.Variable
	switch v {
	case "citation-number":
		return b.renderSpecial(strconv.Itoa(b.ctx.CitationNumber), e.Affixes, e.TextCase, EdgeCitationNumber)
	case "year-suffix":
		letter := b.ctx.YearSuffix
		id := b.arena.New(Node{
			Kind: NodeYearSuffix,
			GV:   GVPlain,
			YearSuffix: &YearSuffixData{Hook: YearSuffixExplicit, Letter: letter},
		})
		return id
	case "locator":
		text := b.locatorText()
		if text == "" {
			return b.arena.New(Node{Kind: NodeRendered, GV: GVMissing})
		}
		return b.renderSpecial(text, e.Affixes, e.TextCase, EdgeLocator)
	case "first-reference-note-number":
		if b.ctx.Position.FirstReferenceNoteNumber == 0 {
			return b.arena.New(Node{Kind: NodeRendered, GV: GVMissing})
		}
		return b.renderSpecial(strconv.FormatUint(uint64(b.ctx.Position.FirstReferenceNoteNumber), 10), e.Affixes, e.TextCase, EdgeFrnn)
	}

	switch refs.ClassifyVariable(v) {
	case refs.GroupOrdinary:
		s, ok := b.ctx.Reference.Ordinary[v]
		if !ok || s == "" {
			return b.arena.New(Node{Kind: NodeRendered, GV: GVMissing})
		}
		return b.renderPlainImportant(s, e.Affixes, e.TextCase, e.Quotes, e.StripPeriods, EdgeOutput)
	case refs.GroupNumeric:
		nv, ok := b.ctx.Reference.Numeric[v]
		if !ok || nv.Raw == "" {
			return b.arena.New(Node{Kind: NodeRendered, GV: GVMissing})
		}
		return b.renderPlainImportant(nv.Raw, e.Affixes, e.TextCase, e.Quotes, e.StripPeriods, EdgeOutput)
	case refs.GroupDate:
		return b.buildDateFromVariable(v, e.Affixes, e.TextCase)
	default:
		return b.arena.New(Node{Kind: NodeRendered, GV: GVMissing})
	}
}

func (b *builder) locatorText() string {
	for _, loc := range b.ctx.Cite.Locators {
		return loc.Value.Raw
	}
	return ""
}

func (b *builder) renderSpecial(text string, a style.Affixes, tc style.TextCase, kind EdgeKind) NodeId {
	text = textproc.Apply(textproc.TextCase(tc), text, b.ctx.Lang, true)
	text = applyAffixes(text, a)
	return b.arena.New(Node{Kind: NodeRendered, GV: GVImportant, Rendered: &Edge{Kind: kind, Text: text}})
}

// renderPlain builds a node for static style-authored text: always Plain
// (never Missing just because the resolved string is empty would be wrong
// here since an author-written literal is never "absent"), unless it
// genuinely reduces to the empty string after transforms.
func (b *builder) renderPlain(raw string, a style.Affixes, tc style.TextCase, quotes, stripPeriods bool, kind EdgeKind) NodeId {
	text := transform(raw, b.ctx.Lang, tc, quotes, stripPeriods)
	text = applyAffixes(text, a)
	if text == "" {
		return b.arena.New(Node{Kind: NodeRendered, GV: GVMissing})
	}
	return b.arena.New(Node{Kind: NodeRendered, GV: GVPlain, Rendered: &Edge{Kind: kind, Text: text}})
}

// renderPlainImportant is renderPlain's variable-text counterpart: content
// sourced from a present reference variable is Important, not Plain, so an
// enclosing group collapses if every variable in it is missing (spec.md
// §4.4 group-variable recomputation).
func (b *builder) renderPlainImportant(raw string, a style.Affixes, tc style.TextCase, quotes, stripPeriods bool, kind EdgeKind) NodeId {
	text := transform(raw, b.ctx.Lang, tc, quotes, stripPeriods)
	text = applyAffixes(text, a)
	if text == "" {
		return b.arena.New(Node{Kind: NodeRendered, GV: GVMissing})
	}
	return b.arena.New(Node{Kind: NodeRendered, GV: GVImportant, Rendered: &Edge{Kind: kind, Text: text}})
}

func transform(raw string, lang string, tc style.TextCase, quotes, stripPeriods bool) string {
	text := raw
	if stripPeriods {
		text = strings.ReplaceAll(text, ".", "")
	}
	text = textproc.Apply(textproc.TextCase(tc), text, lang, true)
	if quotes {
		text = textproc.SmartQuotes(text)
	}
	return text
}

// ---- Label ----

func (b *builder) buildLabel(e *style.LabelElement) NodeId {
	count := b.pluralCount(e.Variable)
	plural := e.Plural == style.PluralAlways || (e.Plural == style.PluralContextual && count != 1)
	term := b.ctx.Locale.Term(b.ctx.Lang, e.Variable, formOf(e.Form), plural)
	term = textproc.Apply(textproc.TextCase(e.TextCase), term, b.ctx.Lang, true)
	term = applyAffixes(term, e.Affixes)
	if term == "" {
		return b.arena.New(Node{Kind: NodeRendered, GV: GVMissing})
	}
	return b.arena.New(Node{Kind: NodeRendered, GV: GVPlain, Rendered: &Edge{Kind: EdgeOutput, Text: term}})
}

func (b *builder) pluralCount(variable string) int {
	if variable == "locator" {
		count := 1
		for _, loc := range b.ctx.Cite.Locators {
			if n := len(loc.Value.Nums()); n > 0 {
				count = n
			}
		}
		return count
	}
	if nv, ok := b.ctx.Reference.Numeric[variable]; ok {
		if n := len(nv.Nums()); n > 0 {
			return n
		}
	}
	return 1
}

// ---- Number ----

func (b *builder) buildNumber(e *style.NumberElement) NodeId {
	nv, ok := b.ctx.Reference.Numeric[e.Variable]
	if !ok || nv.Raw == "" {
		return b.arena.New(Node{Kind: NodeRendered, GV: GVMissing})
	}
	if b.ctx.SortMode {
		return b.buildSortFrame(nv)
	}
	text := formatNumber(nv, e.Form, b.ctx.Locale, b.ctx.Lang)
	text = textproc.Apply(textproc.TextCase(e.TextCase), text, b.ctx.Lang, true)
	text = applyAffixes(text, e.Affixes)
	if text == "" {
		return b.arena.New(Node{Kind: NodeRendered, GV: GVMissing})
	}
	return b.arena.New(Node{Kind: NodeRendered, GV: GVImportant, Rendered: &Edge{Kind: EdgeOutput, Text: text}})
}

// buildSortFrame emits nv's leading numeric token as a sortframe-tagged
// frame instead of display-formatted text, bypassing form/affixes/text-case
// entirely: sortkey.extractMacroKey needs the raw value, not how the style
// would print it (spec.md §4.7).
func (b *builder) buildSortFrame(nv refs.NumericValue) NodeId {
	nums := nv.Nums()
	if len(nums) == 0 {
		return b.arena.New(Node{Kind: NodeRendered, GV: GVMissing})
	}
	text := sortframe.EncodeNumber(nums[0])
	return b.arena.New(Node{Kind: NodeRendered, GV: GVImportant, Rendered: &Edge{Kind: EdgeOutput, Text: text}})
}

func formatNumber(nv refs.NumericValue, form style.NumberForm, store *locale.Store, lang string) string {
	switch form {
	case style.NumberOrdinal, style.NumberLongOrdinal:
		var sb strings.Builder
		for _, t := range nv.Tokens {
			if t.Kind == refs.NumTokenNum {
				sb.WriteString(strconv.FormatUint(uint64(t.Num), 10))
				sb.WriteString(ordinalSuffix(t.Num, store, lang))
			} else {
				sb.WriteString(t.Text)
			}
		}
		return sb.String()
	case style.NumberRoman:
		var sb strings.Builder
		for _, t := range nv.Tokens {
			if t.Kind == refs.NumTokenNum {
				sb.WriteString(toRoman(t.Num))
			} else {
				sb.WriteString(t.Text)
			}
		}
		return sb.String()
	default:
		return nv.Raw
	}
}

func ordinalSuffix(n uint32, store *locale.Store, lang string) string {
	mod100 := n % 100
	key := "ordinal"
	switch {
	case mod100 >= 11 && mod100 <= 13:
		key = "ordinal"
	case n%10 == 1:
		key = "ordinal-01"
	case n%10 == 2:
		key = "ordinal-02"
	case n%10 == 3:
		key = "ordinal-03"
	}
	return store.Term(lang, key, locale.FormLong, false)
}

func toRoman(n uint32) string {
	if n == 0 {
		return "0"
	}
	vals := []struct {
		v uint32
		s string
	}{
		{1000, "m"}, {900, "cm"}, {500, "d"}, {400, "cd"}, {100, "c"}, {90, "xc"},
		{50, "l"}, {40, "xl"}, {10, "x"}, {9, "ix"}, {5, "v"}, {4, "iv"}, {1, "i"},
	}
	var sb strings.Builder
	for _, vs := range vals {
		for n >= vs.v {
			sb.WriteString(vs.s)
			n -= vs.v
		}
	}
	return sb.String()
}

// ---- Date ----

func (b *builder) buildDate(e *style.DateElement) NodeId {
	d, ok := b.ctx.Reference.Dates[e.Variable]
	if !ok {
		return b.arena.New(Node{Kind: NodeRendered, GV: GVMissing})
	}
	if b.ctx.SortMode {
		return b.buildDateSortFrame(d)
	}
	text := b.formatDateOrRange(d, e)
	if text == "" {
		return b.arena.New(Node{Kind: NodeRendered, GV: GVMissing})
	}
	text = textproc.Apply(textproc.TextCase(e.TextCase), text, b.ctx.Lang, true)
	text = applyAffixes(text, e.Affixes)
	kind := EdgeOutput
	if e.Variable == "accessed" {
		kind = EdgeAccessed
	}
	return b.arena.New(Node{Kind: NodeRendered, GV: GVImportant, Rendered: &Edge{Kind: kind, Text: text}})
}

func (b *builder) buildDateFromVariable(variable string, a style.Affixes, tc style.TextCase) NodeId {
	d, ok := b.ctx.Reference.Dates[variable]
	if !ok {
		return b.arena.New(Node{Kind: NodeRendered, GV: GVMissing})
	}
	if b.ctx.SortMode {
		return b.buildDateSortFrame(d)
	}
	text := b.formatDateOrRange(d, &style.DateElement{})
	if text == "" {
		return b.arena.New(Node{Kind: NodeRendered, GV: GVMissing})
	}
	text = textproc.Apply(textproc.TextCase(tc), text, b.ctx.Lang, true)
	text = applyAffixes(text, a)
	kind := EdgeOutput
	if variable == "accessed" {
		kind = EdgeAccessed
	}
	return b.arena.New(Node{Kind: NodeRendered, GV: GVImportant, Rendered: &Edge{Kind: kind, Text: text}})
}

// buildDateSortFrame emits d as a sortframe-tagged frame instead of
// display-formatted text, mirroring sortkey.extractDateKey's variable-key
// encoding so a macro key wrapping <date>/<date-part> compares
// chronologically rather than lexically (spec.md §4.7). Range dates key on
// their "from" end, and literal dates (which carry no structured
// year/month/day) fall back to their case-folded text, same as the
// variable-key path.
func (b *builder) buildDateSortFrame(d refs.DateOrRange) NodeId {
	var single refs.Date
	switch d.Kind {
	case refs.DateLiteral:
		if d.Literal == "" {
			return b.arena.New(Node{Kind: NodeRendered, GV: GVMissing})
		}
		text := strings.ToLower(d.Literal)
		return b.arena.New(Node{Kind: NodeRendered, GV: GVImportant, Rendered: &Edge{Kind: EdgeOutput, Text: text}})
	case refs.DateRange:
		single = d.From
	default:
		single = d.Single
	}
	text := sortframe.EncodeDate(single.Year, clampDatePart(single.Month), clampDatePart(single.Day))
	return b.arena.New(Node{Kind: NodeRendered, GV: GVImportant, Rendered: &Edge{Kind: EdgeOutput, Text: text}})
}

func clampDatePart(v uint8) uint8 {
	if v > 12 {
		return 0
	}
	return v
}

func (b *builder) formatDateOrRange(d refs.DateOrRange, e *style.DateElement) string {
	switch d.Kind {
	case refs.DateLiteral:
		return d.Literal
	case refs.DateRange:
		from := b.formatOneDate(d.From, e)
		to := b.formatOneDate(d.To, e)
		if from == "" && to == "" {
			return ""
		}
		delim := e.RangeDelimiter
		if delim == "" {
			delim = "–"
		}
		return from + delim + to
	default:
		return b.formatOneDate(d.Single, e)
	}
}

func (b *builder) formatOneDate(d refs.Date, e *style.DateElement) string {
	parts := e.DateParts
	if len(parts) == 0 {
		parts = []style.DatePart{{Name: "year"}, {Name: "month"}, {Name: "day"}}
	}
	var pieces []string
	for _, p := range parts {
		if s := b.formatDatePart(d, p); s != "" {
			pieces = append(pieces, s)
		}
	}
	if len(pieces) == 0 {
		return ""
	}
	delim := e.Delimiter
	if delim == "" {
		delim = " "
	}
	return strings.Join(pieces, delim)
}

func (b *builder) formatDatePart(d refs.Date, p style.DatePart) string {
	var s string
	switch p.Name {
	case "year":
		if d.Year == 0 && !d.HasMonth() && !d.HasDay() {
			return ""
		}
		year := d.Year
		neg := year < 0
		if neg {
			year = -year
		}
		s = strconv.Itoa(int(year))
		if neg {
			s += b.ctx.Locale.Term(b.ctx.Lang, "bc", locale.FormLong, false)
		}
	case "month":
		if season := d.AsSeason(); season != refs.SeasonNone {
			s = b.ctx.Locale.Term(b.ctx.Lang, seasonTermName(season), locale.FormLong, false)
		} else if d.HasMonth() {
			if p.Form == "numeric-leading-zeros" {
				s = fmt.Sprintf("%02d", d.Month)
			} else if p.Form == "numeric" {
				s = strconv.Itoa(int(d.Month))
			} else {
				s = b.ctx.Locale.Term(b.ctx.Lang, monthTermName(d.Month), formOf(p.Form), false)
			}
		}
	case "day":
		if d.HasDay() {
			if p.Form == "ordinal" {
				s = strconv.Itoa(int(d.Day)) + ordinalSuffix(uint32(d.Day), b.ctx.Locale, b.ctx.Lang)
			} else {
				s = strconv.Itoa(int(d.Day))
			}
		}
	}
	if s == "" {
		return ""
	}
	if p.Formatting != (style.Formatting{}) {
		// Formatting (bold/italic/...) is a render-time concern applied by
		// the render package over the flattened edge stream, not baked into
		// the IR text itself; this branch exists only to document that
		// restriction, not to apply it here.
		_ = p.Formatting
	}
	s = textproc.Apply(textproc.TextCase(p.TextCase), s, b.ctx.Lang, true)
	s = applyAffixes(s, p.Affixes)
	return s
}

func seasonTermName(s refs.Season) string {
	return fmt.Sprintf("season-%02d", int(s))
}

func monthTermName(month uint8) string {
	return fmt.Sprintf("month-%02d", month)
}

// ---- Choose ----

func (b *builder) buildChoose(e *style.ChooseElement) NodeId {
	branches := append([]style.Branch{e.If}, e.ElseIfs...)
	for _, br := range branches {
		if b.evalCondition(br.Condition) {
			return b.wrapChoiceResult(e, b.buildSeqWithConfig(br.Children, nil, SeqData{}))
		}
	}
	if e.Else != nil {
		return b.wrapChoiceResult(e, b.buildSeqWithConfig(e.Else, nil, SeqData{}))
	}
	return b.wrapChoiceResult(e, b.arena.New(Node{Kind: NodeRendered, GV: GVMissing}))
}

func (b *builder) wrapChoiceResult(e *style.ChooseElement, selected NodeId) NodeId {
	gv := GVMissing
	if n := b.arena.Get(selected); n != nil {
		gv = n.GV
	}
	if !e.HasDisambiguateCondition() {
		return selected
	}
	return b.arena.New(Node{
		Kind: NodeConditionalDisamb,
		GV:   gv,
		Cond: &CondData{Choose: e, Selected: selected},
	})
}

func (b *builder) evalCondition(c style.Condition) bool {
	var results []bool
	for _, t := range c.Types {
		results = append(results, b.ctx.Reference.Type == t)
	}
	for _, v := range c.Variables {
		results = append(results, b.variablePresent(v))
	}
	for _, v := range c.IsNumeric {
		results = append(results, b.variableIsNumeric(v))
	}
	for _, v := range c.IsUncertainDate {
		results = append(results, b.variableIsUncertainDate(v))
	}
	for _, v := range c.Locator {
		results = append(results, b.hasLocatorType(v))
	}
	for _, v := range c.Position {
		results = append(results, cluster.MatchesPositionCondition(b.ctx.Position.Position, v))
	}
	if c.Disambiguate != nil {
		results = append(results, *c.Disambiguate == (b.ctx.DisambiguateCount > 0))
	}
	if len(results) == 0 {
		return true
	}
	switch c.Match {
	case "any":
		for _, r := range results {
			if r {
				return true
			}
		}
		return false
	case "none":
		for _, r := range results {
			if r {
				return false
			}
		}
		return true
	default: // "all"
		for _, r := range results {
			if !r {
				return false
			}
		}
		return true
	}
}

func (b *builder) variablePresent(v string) bool {
	if v == "locator" {
		return b.ctx.Cite.HasLocator()
	}
	switch refs.ClassifyVariable(v) {
	case refs.GroupName:
		ns, ok := b.ctx.Reference.Names[v]
		return ok && len(ns) > 0
	case refs.GroupDate:
		_, ok := b.ctx.Reference.Dates[v]
		return ok
	case refs.GroupNumeric:
		nv, ok := b.ctx.Reference.Numeric[v]
		return ok && nv.Raw != ""
	default:
		s, ok := b.ctx.Reference.Ordinary[v]
		return ok && s != ""
	}
}

func (b *builder) variableIsNumeric(v string) bool {
	nv, ok := b.ctx.Reference.Numeric[v]
	return ok && nv.IsNumeric()
}

func (b *builder) variableIsUncertainDate(v string) bool {
	d, ok := b.ctx.Reference.Dates[v]
	if !ok {
		return false
	}
	switch d.Kind {
	case refs.DateLiteral:
		return d.Circa
	case refs.DateRange:
		return d.From.Circa || d.To.Circa
	default:
		return d.Single.Circa
	}
}

func (b *builder) hasLocatorType(t string) bool {
	for _, loc := range b.ctx.Cite.Locators {
		if string(loc.Type) == t {
			return true
		}
	}
	return false
}
