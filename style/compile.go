package style

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/citeproc-go/citeproc/errs"
)

// Compile parses and validates a CSL style document, returning a Style
// whose macro references are all resolved, whose enumerated attributes are
// all narrowed to a known variant, and whose <choose> blocks all have
// exactly one <if> at the head (spec.md §4.1 contract). On failure it
// returns *errs.StyleError (via errs.NewStyleError) carrying every
// diagnostic collected before giving up, not just the first.
func Compile(xmlText string) (*Style, error) {
	root, err := parseXML(xmlText)
	if err != nil {
		return nil, errs.NewStyleError([]errs.Diagnostic{{
			Severity: errs.SeverityError,
			Message:  "malformed XML: " + err.Error(),
		}})
	}
	if root.name != "style" {
		return nil, errs.NewStyleError([]errs.Diagnostic{{
			Severity: errs.SeverityError,
			Span:     errs.Span(root.span),
			Message:  "root element must be <style>, got <" + root.name + ">",
		}})
	}

	c := &compiler{features: map[string]bool{}}
	st := c.compileStyle(root)

	var hardErrors []errs.Diagnostic
	for _, d := range c.diags {
		if d.Severity == errs.SeverityError {
			hardErrors = append(hardErrors, d)
		}
	}
	if len(hardErrors) > 0 {
		return nil, errs.NewStyleError(c.diags)
	}
	return st, nil
}

type compiler struct {
	diags    []errs.Diagnostic
	features map[string]bool
	isCslM   bool
}

func (c *compiler) errorf(n *rawNode, hint string, format string, args ...interface{}) {
	c.diags = append(c.diags, errs.Diagnostic{
		Severity: errs.SeverityError,
		Span:     errs.Span(n.span),
		Message:  fmt.Sprintf(format, args...),
		Hint:     hint,
	})
}

func (c *compiler) warnf(n *rawNode, format string, args ...interface{}) {
	c.diags = append(c.diags, errs.Diagnostic{
		Severity: errs.SeverityWarning,
		Span:     errs.Span(n.span),
		Message:  fmt.Sprintf(format, args...),
	})
}

func (c *compiler) compileStyle(root *rawNode) *Style {
	st := &Style{
		Class:         root.attrOr("class", "in-text"),
		DefaultLocale: root.attrOr("default-locale", ""),
		Version:       root.attrOr("version", "1.0"),
		Macros:        map[string][]Element{},
		Features:      map[string]bool{},
	}
	if feat, ok := root.firstChildNamed("features"); ok {
		for _, f := range feat.children {
			st.Features[f.name] = true
			c.features[f.name] = true
		}
	}
	c.isCslM = strings.Contains(st.Version, "-M") || len(st.Features) > 0

	// Macros first: a macro may reference another macro declared later in
	// the document (spec.md §9 "Cyclic graphs"), so resolve names before
	// bodies so every reference finds its target regardless of order.
	for _, m := range root.childrenNamed("macro") {
		name, ok := m.attr("name")
		if !ok {
			c.errorf(m, "", "<macro> requires a name attribute")
			continue
		}
		st.MacroOrder = append(st.MacroOrder, name)
		st.Macros[name] = nil // placeholder so self/forward references resolve to "known"
	}
	for _, m := range root.childrenNamed("macro") {
		name, _ := m.attr("name")
		st.Macros[name] = c.elements(m.children, true)
	}

	if citation, ok := root.firstChildNamed("citation"); ok {
		st.Citation = c.compileCitation(citation, st)
	} else {
		c.errorf(root, "", "<style> requires a <citation> element")
	}

	if bib, ok := root.firstChildNamed("bibliography"); ok {
		st.Bibliography = c.compileBibliography(bib, st)
	}

	// Every macro reference is validated in one final pass, once every
	// macro body, the citation layout and the bibliography layout (if any)
	// all exist, so a reference in any of them resolves against the full
	// set of declared macros regardless of declaration order (spec.md §9
	// "Cyclic graphs").
	for _, name := range st.MacroOrder {
		c.walkMacroRefs(st, st.Macros[name])
	}
	if st.Citation != nil {
		c.walkMacroRefs(st, st.Citation.Layout.Elements)
	}
	if st.Bibliography != nil {
		c.walkMacroRefs(st, st.Bibliography.Layout.Elements)
	}

	return st
}

// walkMacroRefs checks that every Text(macro) reference reachable from els
// names a declared macro (spec.md §4.1 contract).
func (c *compiler) walkMacroRefs(st *Style, els []Element) {
	for _, el := range els {
		switch e := el.(type) {
		case *TextElement:
			if e.Source == TextMacro {
				if _, ok := st.Macros[e.Macro]; !ok {
					c.diags = append(c.diags, errs.Diagnostic{
						Severity: errs.SeverityError,
						Span:     errs.Span(e.span),
						Message:  "reference to undeclared macro " + strconv.Quote(e.Macro),
					})
				}
			}
		case *GroupElement:
			c.walkMacroRefs(st, e.Children)
		case *NamesElement:
			if e.Substitute != nil {
				c.walkMacroRefs(st, e.Substitute.Children)
			}
		case *ChooseElement:
			c.walkMacroRefs(st, e.If.Children)
			for _, b := range e.ElseIfs {
				c.walkMacroRefs(st, b.Children)
			}
			c.walkMacroRefs(st, e.Else)
		case *IntextElement:
			c.walkMacroRefs(st, e.Children)
		}
	}
}

func (c *compiler) compileCitation(n *rawNode, st *Style) *Citation {
	layouts := n.childrenNamed("layout")
	if len(layouts) != 1 {
		c.errorf(n, "", "<citation> must contain exactly one <layout>, found %d", len(layouts))
		return &Citation{Layout: Layout{}}
	}
	cit := &Citation{
		DisambiguateAddNames:      n.boolAttr("disambiguate-add-names", false),
		DisambiguateAddGivenname:  n.boolAttr("disambiguate-add-givenname", false),
		DisambiguateAddYearSuffix: n.boolAttr("disambiguate-add-year-suffix", false),
		NearNoteDistance:          n.intAttr("near-note-distance", 5),
		Layout:                    c.compileLayout(layouts[0]),
	}
	switch n.attrOr("givenname-disambiguation-rule", "by-cite") {
	case "all-names":
		cit.GivenNameDisambiguationRule = RuleAllNames
	case "all-names-with-initials":
		cit.GivenNameDisambiguationRule = RuleAllNamesWithInitials
	case "primary-name":
		cit.GivenNameDisambiguationRule = RulePrimaryName
	case "primary-name-with-initials":
		cit.GivenNameDisambiguationRule = RulePrimaryNameWithInitials
	default:
		cit.GivenNameDisambiguationRule = RuleByCite
	}
	return cit
}

func (c *compiler) compileBibliography(n *rawNode, st *Style) *Bibliography {
	layouts := n.childrenNamed("layout")
	if len(layouts) != 1 {
		c.errorf(n, "", "<bibliography> must contain exactly one <layout>, found %d", len(layouts))
		return nil
	}
	bib := &Bibliography{
		Layout:                     c.compileLayout(layouts[0]),
		SecondFieldAlign:           n.attrOr("second-field-align", "none"),
		LineSpacing:                n.intAttr("line-spacing", 1),
		EntrySpacing:               n.intAttr("entry-spacing", 1),
		HangingIndent:              n.boolAttr("hanging-indent", false),
		SubsequentAuthorSubstitute: n.attrOr("subsequent-author-substitute", ""),
	}
	if sort, ok := n.firstChildNamed("sort"); ok {
		for _, key := range sort.childrenNamed("key") {
			sk := SortKey{Ascending: key.attrOr("sort", "ascending") != "descending"}
			if m, ok := key.attr("macro"); ok {
				sk.Macro = m
			} else if v, ok := key.attr("variable"); ok {
				sk.Variable = v
			} else {
				c.errorf(key, "", "<key> requires a macro or variable attribute")
				continue
			}
			bib.SortKeys = append(bib.SortKeys, sk)
		}
	}
	return bib
}

func (c *compiler) compileLayout(n *rawNode) Layout {
	return Layout{
		Formatting: c.formatting(n),
		Affixes:    c.affixes(n),
		Delimiter:  n.attrOr("delimiter", ""),
		Elements:   c.elements(n.children, true),
	}
}

func (c *compiler) formatting(n *rawNode) Formatting {
	return Formatting{
		FontStyle:      n.attrOr("font-style", ""),
		FontVariant:    n.attrOr("font-variant", ""),
		FontWeight:     n.attrOr("font-weight", ""),
		TextDecoration: n.attrOr("text-decoration", ""),
		VerticalAlign:  n.attrOr("vertical-align", ""),
		Display:        n.attrOr("display", ""),
		StripPeriods:   n.boolAttr("strip-periods", false),
	}
}

func (c *compiler) affixes(n *rawNode) Affixes {
	return Affixes{Prefix: n.attrOr("prefix", ""), Suffix: n.attrOr("suffix", "")}
}

func (c *compiler) textCase(n *rawNode) TextCase {
	switch n.attrOr("text-case", "") {
	case "lowercase":
		return TextCaseLowercase
	case "uppercase":
		return TextCaseUppercase
	case "title":
		return TextCaseTitle
	case "sentence":
		return TextCaseSentence
	case "capitalize-first":
		return TextCaseCapitalizeFirst
	case "capitalize-all":
		return TextCaseCapitalizeAll
	default:
		return TextCaseNone
	}
}

// elements compiles every element child of n, dropping (with a warning)
// any tag this compiler doesn't recognize rather than failing the whole
// style — CSL-M styles routinely carry extension elements gated by
// <features> this compiler doesn't implement (SPEC_FULL.md §3).
func (c *compiler) elements(nodes []*rawNode, dateFull bool) []Element {
	var out []Element
	for _, n := range nodes {
		el, ok := c.element(n, dateFull)
		if ok {
			out = append(out, el)
		}
	}
	return out
}

func (c *compiler) element(n *rawNode, dateFull bool) (Element, bool) {
	switch n.name {
	case "text":
		return c.textElement(n), true
	case "label":
		return c.labelElement(n), true
	case "group":
		return c.groupElement(n), true
	case "number":
		return c.numberElement(n), true
	case "names":
		return c.namesElement(n), true
	case "choose":
		return c.chooseElement(n), true
	case "date":
		return c.dateElement(n, dateFull), true
	case "intext":
		if !c.features["intext-citations"] && c.isCslM {
			c.warnf(n, "<intext> requires the intext-citations CSL-M feature")
		}
		return &IntextElement{span: n.span, Children: c.elements(n.children, dateFull)}, true
	default:
		c.warnf(n, "unrecognized style element <%s>, ignoring", n.name)
		return nil, false
	}
}

func (c *compiler) textElement(n *rawNode) *TextElement {
	e := &TextElement{
		span:       n.span,
		Form:       n.attrOr("form", "long"),
		Formatting: c.formatting(n),
		Affixes:    c.affixes(n),
		TextCase:   c.textCase(n),
		Quotes:     n.boolAttr("quotes", false),
	}
	switch {
	case has(n, "variable"):
		e.Source = TextVariable
		e.Variable, _ = n.attr("variable")
	case has(n, "macro"):
		e.Source = TextMacro
		e.Macro, _ = n.attr("macro")
	case has(n, "term"):
		e.Source = TextTerm
		e.Term, _ = n.attr("term")
		if p, ok := n.attr("plural"); ok {
			b := p == "true"
			e.Plural = &b
		}
	case has(n, "value"):
		e.Source = TextValue
		e.Value, _ = n.attr("value")
	default:
		c.errorf(n, "", "<text> requires one of variable, macro, term, value")
	}
	return e
}

func has(n *rawNode, attr string) bool {
	_, ok := n.attr(attr)
	return ok
}

func (c *compiler) labelElement(n *rawNode) *LabelElement {
	e := &LabelElement{
		span:       n.span,
		Variable:   n.attrOr("variable", ""),
		Form:       n.attrOr("form", "long"),
		Formatting: c.formatting(n),
		Affixes:    c.affixes(n),
		TextCase:   c.textCase(n),
	}
	switch n.attrOr("plural", "contextual") {
	case "always":
		e.Plural = PluralAlways
	case "never":
		e.Plural = PluralNever
	default:
		e.Plural = PluralContextual
	}
	return e
}

func (c *compiler) groupElement(n *rawNode) *GroupElement {
	return &GroupElement{
		span:       n.span,
		Formatting: c.formatting(n),
		Affixes:    c.affixes(n),
		Delimiter:  n.attrOr("delimiter", ""),
		Display:    n.attrOr("display", ""),
		Quotes:     n.boolAttr("quotes", false),
		TextCase:   c.textCase(n),
		Children:   c.elements(n.children, true),
	}
}

func (c *compiler) numberElement(n *rawNode) *NumberElement {
	e := &NumberElement{
		span:       n.span,
		Variable:   n.attrOr("variable", ""),
		Formatting: c.formatting(n),
		Affixes:    c.affixes(n),
		TextCase:   c.textCase(n),
	}
	switch n.attrOr("form", "numeric") {
	case "ordinal":
		e.Form = NumberOrdinal
	case "long-ordinal":
		e.Form = NumberLongOrdinal
	case "roman":
		e.Form = NumberRoman
	default:
		e.Form = NumberNumeric
	}
	return e
}

func (c *compiler) namesElement(n *rawNode) *NamesElement {
	e := &NamesElement{
		span:       n.span,
		Formatting: c.formatting(n),
		Affixes:    c.affixes(n),
		Delimiter:  n.attrOr("delimiter", ""),
	}
	if v, ok := n.attr("variable"); ok {
		e.Variables = strings.Fields(v)
	}
	labelSeen := false
	for _, child := range n.children {
		switch child.name {
		case "name":
			e.NameEl = c.nameEl(child)
		case "label":
			e.Label = c.labelElement(child)
			e.LabelAfterName = labelSeen
		case "et-al":
			e.EtAl = &EtAlEl{Term: child.attrOr("term", "et-al")}
		case "substitute":
			e.Substitute = &SubstituteEl{Children: c.elements(child.children, true)}
		}
		if child.name == "name" {
			labelSeen = true
		}
	}
	return e
}

func (c *compiler) nameEl(n *rawNode) *NameEl {
	e := &NameEl{
		Delimiter:              n.attrOr("delimiter", ", "),
		DelimiterPrecedesEtAl:  n.attrOr("delimiter-precedes-et-al", "contextual"),
		DelimiterPrecedesLast:  n.attrOr("delimiter-precedes-last", "contextual"),
		And:                    n.attrOr("and", ""),
		SortSeparator:          n.attrOr("sort-separator", ", "),
		InitializeWith:         n.attrOr("initialize-with", ""),
		Initialize:             n.boolAttr("initialize", true),
		NameAsSortOrder:        n.attrOr("name-as-sort-order", ""),
		EtAlMin:                n.intAttr("et-al-min", 0),
		EtAlUseFirst:           n.intAttr("et-al-use-first", 1),
		EtAlSubsequentMin:      n.intAttr("et-al-subsequent-min", 0),
		EtAlSubsequentUseFirst: n.intAttr("et-al-subsequent-use-first", 0),
		EtAlUseLast:            n.boolAttr("et-al-use-last", false),
		Formatting:             c.formatting(n),
		Affixes:                c.affixes(n),
	}
	switch n.attrOr("form", "long") {
	case "short":
		e.Form = NameShort
	case "count":
		e.Form = NameCount
	default:
		e.Form = NameLong
	}
	for _, np := range n.childrenNamed("name-part") {
		e.Parts = append(e.Parts, NamePart{
			Name:       np.attrOr("name", ""),
			Formatting: c.formatting(np),
			Affixes:    c.affixes(np),
			TextCase:   c.textCase(np),
		})
	}
	return e
}

func (c *compiler) chooseElement(n *rawNode) *ChooseElement {
	var ifs, elseIfs, elses []*rawNode
	for _, ch := range n.children {
		switch ch.name {
		case "if":
			ifs = append(ifs, ch)
		case "else-if":
			elseIfs = append(elseIfs, ch)
		case "else":
			elses = append(elses, ch)
		}
	}
	if len(ifs) != 1 {
		c.errorf(n, "a <choose> must start with exactly one <if>", "<choose> has %d <if> children, want 1", len(ifs))
	}
	if len(elses) > 1 {
		c.errorf(n, "", "<choose> has %d <else> children, want at most 1", len(elses))
	}
	// Validate declaration order: if, else-if*, else?.
	order := 0
	for _, ch := range n.children {
		switch ch.name {
		case "if":
			if order != 0 {
				c.errorf(ch, "", "<if> must be the first child of <choose>")
			}
			order = 1
		case "else-if":
			if order == 0 {
				c.errorf(ch, "", "<else-if> before <if>")
			}
			order = 2
		case "else":
			order = 3
		}
	}
	e := &ChooseElement{span: n.span}
	if len(ifs) > 0 {
		e.If = c.branch(ifs[0])
	}
	for _, ei := range elseIfs {
		e.ElseIfs = append(e.ElseIfs, c.branch(ei))
	}
	if len(elses) == 1 {
		e.Else = c.elements(elses[0].children, true)
	}
	return e
}

func (c *compiler) branch(n *rawNode) Branch {
	cond := Condition{Match: n.attrOr("match", "all")}
	if v, ok := n.attr("type"); ok {
		cond.Types = strings.Fields(v)
	}
	if v, ok := n.attr("variable"); ok {
		cond.Variables = strings.Fields(v)
	}
	if v, ok := n.attr("is-numeric"); ok {
		cond.IsNumeric = strings.Fields(v)
	}
	if v, ok := n.attr("is-uncertain-date"); ok {
		cond.IsUncertainDate = strings.Fields(v)
	}
	if v, ok := n.attr("locator"); ok {
		cond.Locator = strings.Fields(v)
	}
	if v, ok := n.attr("position"); ok {
		cond.Position = strings.Fields(v)
	}
	if v, ok := n.attr("disambiguate"); ok {
		if v != "true" && v != "false" {
			c.errorf(n, "disambiguate must be \"true\"", "invalid disambiguate value %q", v)
		} else {
			b := v == "true"
			cond.Disambiguate = &b
		}
	}
	return Branch{Condition: cond, Children: c.elements(n.children, true)}
}

func (c *compiler) dateElement(n *rawNode, parentFull bool) *DateElement {
	form := DateFormNone
	full := parentFull
	switch n.attrOr("form", "") {
	case "text":
		form = DateFormText
		full = false
	case "numeric":
		form = DateFormNumeric
		full = false
	}
	e := &DateElement{
		span:           n.span,
		Variable:       n.attrOr("variable", ""),
		Form:           form,
		Formatting:     c.formatting(n),
		Affixes:        c.affixes(n),
		Delimiter:      n.attrOr("delimiter", ""),
		TextCase:       c.textCase(n),
		RangeDelimiter: n.attrOr("range-delimiter", "–"),
		Full:           full,
	}
	for _, dp := range n.childrenNamed("date-part") {
		part := DatePart{Name: dp.attrOr("name", ""), Form: dp.attrOr("form", "")}
		if !full {
			// Not-full dates may not carry formatting/affixes/text-case/
			// range-delimiter on date-parts (spec.md §4.1 validation rule).
			if hasAnyAttr(dp, "font-style", "font-weight", "font-variant", "text-decoration", "vertical-align", "display", "prefix", "suffix", "text-case", "range-delimiter") {
				c.errorf(dp, "move formatting to the enclosing <date>", "date-part formatting/affixes/text-case/range-delimiter only legal on a full (locale) <date>")
			}
		} else {
			part.Formatting = c.formatting(dp)
			part.Affixes = c.affixes(dp)
			part.TextCase = c.textCase(dp)
			part.RangeDelimiter = dp.attrOr("range-delimiter", "")
		}
		e.DateParts = append(e.DateParts, part)
	}
	return e
}

func hasAnyAttr(n *rawNode, names ...string) bool {
	for _, name := range names {
		if has(n, name) {
			return true
		}
	}
	return false
}
