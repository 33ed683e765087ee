package disamb

// NameKey identifies one physical name slot within one reference's
// rendering, the cache key citeproc-rs's global name-disambiguation
// pre-pass (crates/proc/src/disamb/names.rs) dedupes on: which reference,
// which <names variable="...">, which person within that variable's name
// list, and whether that <names> block is the "primary" one a style's
// disambiguate-add-givenname rule targets first.
type NameKey struct {
	RefID        string
	NameVariable string
	PersonIndex  int
	IsPrimary    bool
}

// NameVariableCount pairs a name variable with how many people it holds,
// in the declared order of a <names variables="..."> list.
type NameVariableCount struct {
	Variable string
	Count    int
}

// NameKeysForReference enumerates every NameKey a reference's name
// variables produce, in variable-then-person order. The first entry in
// variables is the "primary" slot, the one
// style.RulePrimaryName/RulePrimaryNameWithInitials targets first
// (engine.go currently expands every name in a cite uniformly via
// NameExpansionState.ForceLongForm rather than per-slot; this type
// records the finer-grained key the original keys its pre-pass cache by,
// an Open Question resolution documented in DESIGN.md: per-slot
// expansion is not yet wired into the escalation loop itself).
func NameKeysForReference(refID string, variables []NameVariableCount) []NameKey {
	keys := make([]NameKey, 0)
	for i, v := range variables {
		for person := 0; person < v.Count; person++ {
			keys = append(keys, NameKey{
				RefID:        refID,
				NameVariable: v.Variable,
				PersonIndex:  person,
				IsPrimary:    i == 0,
			})
		}
	}
	return keys
}
