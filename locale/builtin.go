package locale

// builtinDefaults is the hard-coded English fallback spec.md §4.5 calls for:
// "the caller supplies a hard-coded English default for a handful of
// critical terms" when no locale bundle (including en-US) has an entry.
// This keeps the processor from emitting an empty string for the terms a
// style almost always needs even with a threadbare or missing locale file.
var builtinDefaults = map[string]Term{
	"et-al":        {Singular: "et al."},
	"and":          {Singular: "and"},
	"and others":   {Singular: "and others"},
	"ibid":         {Singular: "ibid."},
	"ibid-locator": {Singular: "ibid."},
	"page":         {Singular: "page", Plural: "pages"},
	"no date":      {Singular: "n.d."},
	"in":           {Singular: "in"},
	"anonymous":    {Singular: "anonymous", Plural: "anonymous"},
	"editor":       {Singular: "editor", Plural: "editors"},
	"translator":   {Singular: "translator", Plural: "translators"},
	"ordinal":      {Singular: "th"},
	"ordinal-01":   {Singular: "st"},
	"ordinal-02":   {Singular: "nd"},
	"ordinal-03":   {Singular: "rd"},
	"open-quote":       {Singular: "“"},
	"close-quote":      {Singular: "”"},
	"open-inner-quote":  {Singular: "‘"},
	"close-inner-quote": {Singular: "’"},
	"bc":  {Singular: "BC"},
	"ad":  {Singular: "AD"},
	"month-01": {Singular: "January"}, "month-02": {Singular: "February"},
	"month-03": {Singular: "March"}, "month-04": {Singular: "April"},
	"month-05": {Singular: "May"}, "month-06": {Singular: "June"},
	"month-07": {Singular: "July"}, "month-08": {Singular: "August"},
	"month-09": {Singular: "September"}, "month-10": {Singular: "October"},
	"month-11": {Singular: "November"}, "month-12": {Singular: "December"},
	"season-01": {Singular: "Spring"}, "season-02": {Singular: "Summer"},
	"season-03": {Singular: "Autumn"}, "season-04": {Singular: "Winter"},
}
