// Package refs implements the bibliographic Reference model of spec.md §3:
// the four disjoint variable groups (ordinary, numeric, name, date), name
// normalization (§4.3), and the in-memory reference store the rest of the
// processor reads through.
//
// Parsing the external CSL-JSON wire format itself is out of scope (spec.md
// §1 calls the JSON library ingestion an external collaborator); this
// package's ingestion entry points accept already-decoded Go values
// (map[string]interface{}, []interface{}, ...) the way a JSON decoder would
// hand them back, and apply the normalization CSL itself requires.
package refs

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"github.com/citeproc-go/citeproc/errs"
	"github.com/citeproc-go/citeproc/textproc"
)

// VariableGroup tags which of the four disjoint groups a variable belongs
// to (spec.md §3).
type VariableGroup uint8

const (
	GroupOrdinary VariableGroup = iota
	GroupNumeric
	GroupName
	GroupDate
)

// Reference is a mapping from variable identifier to typed value. Only one
// of the four maps holds a given key; ClassifyVariable(key) tells callers
// which.
type Reference struct {
	ID string
	// Type is the CSL reference type ("book", "article-journal", ...),
	// which is itself an ordinary variable in CSL-JSON ("type") but is
	// promoted to a field because `<choose><if type="...">` is pervasive.
	Type string

	Ordinary map[string]string
	Numeric  map[string]NumericValue
	Names    map[string][]Name
	Dates    map[string]DateOrRange
}

// NewReference returns an empty Reference ready to be populated by a
// builder or by Store.Ingest.
func NewReference(id string) *Reference {
	return &Reference{
		ID:       id,
		Ordinary: map[string]string{},
		Numeric:  map[string]NumericValue{},
		Names:    map[string][]Name{},
		Dates:    map[string]DateOrRange{},
	}
}

// nameVariables, dateVariables and numericVariables classify every
// CSL-JSON variable this package knows about. Store.Ingest treats any key
// not found in them as ordinary, which is the CSL-conformant default for
// future/unrecognized variables.
var nameVariables = map[string]bool{
	"author": true, "editor": true, "translator": true, "recipient": true,
	"interviewer": true, "composer": true, "original-author": true,
	"container-author": true, "collection-editor": true, "editorial-director": true,
	"illustrator": true, "director": true, "authority": true,
	"editor-translator": true, "contributor": true, "curator": true,
	"performer": true, "producer": true, "script-writer": true, "guest": true,
	"narrator": true, "reviewed-author": true,
}

var dateVariables = map[string]bool{
	"issued": true, "event-date": true, "accessed": true, "container": true,
	"original-date": true, "submitted": true, "available-date": true,
}

var numericVariables = map[string]bool{
	"edition": true, "volume": true, "issue": true, "number": true,
	"number-of-volumes": true, "number-of-pages": true, "page": true,
	"page-first": true, "locator": true, "chapter-number": true,
	"collection-number": true, "version": true, "citation-number": true,
	"first-reference-note-number": true,
}

// ClassifyVariable returns which group a CSL variable name belongs to.
func ClassifyVariable(name string) VariableGroup {
	switch {
	case nameVariables[name]:
		return GroupName
	case dateVariables[name]:
		return GroupDate
	case numericVariables[name]:
		return GroupNumeric
	default:
		return GroupOrdinary
	}
}

// Store holds the processor's reference library, keyed by id (spec.md §3
// invariant: ids are unique within the store; a later SetReferences/
// InsertReference call with the same id overwrites). It is the "Reference
// store" component of spec.md §2.
type Store struct {
	log  logrus.FieldLogger
	refs map[string]*Reference
}

// NewStore builds an empty reference store. A nil logger falls back to
// logrus' standard logger, tagged with component=refs (SPEC_FULL.md §2.2).
func NewStore(log logrus.FieldLogger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{log: log.WithField("component", "refs"), refs: map[string]*Reference{}}
}

// Get returns the reference with the given id, or (nil, false).
func (s *Store) Get(id string) (*Reference, bool) {
	r, ok := s.refs[id]
	return r, ok
}

// All returns every reference currently in the store, in no particular
// order; callers that need a stable order (e.g. the sorter) must sort it
// themselves.
func (s *Store) All() []*Reference {
	out := make([]*Reference, 0, len(s.refs))
	for _, r := range s.refs {
		out = append(out, r)
	}
	return out
}

// Insert adds or replaces a single reference.
func (s *Store) Insert(r *Reference) {
	s.refs[r.ID] = r
}

// SetAll replaces the entire library. Invalid entries are skipped with a
// warning and the rest of the library still loads (spec.md §7
// InvalidReference semantics); it returns the ids that were skipped.
func (s *Store) SetAll(raw []map[string]interface{}) (skipped []string) {
	next := map[string]*Reference{}
	for _, m := range raw {
		r, err := s.ingestOne(m)
		if err != nil {
			id, _ := m["id"].(string)
			skipped = append(skipped, id)
			s.log.WithError(err).WithField("ref_id", id).Warn(errs.ErrInvalidReference.New(id, err.Error()).Error())
			continue
		}
		next[r.ID] = r
	}
	s.refs = next
	return skipped
}

// Ingest normalizes and inserts one CSL-JSON-shaped reference map.
func (s *Store) Ingest(raw map[string]interface{}) error {
	r, err := s.ingestOne(raw)
	if err != nil {
		return err
	}
	s.Insert(r)
	return nil
}

func (s *Store) ingestOne(raw map[string]interface{}) (*Reference, error) {
	id, _ := raw["id"].(string)
	if id == "" {
		id = cast.ToString(raw["id"])
	}
	if id == "" {
		return nil, errors.New("reference has no id")
	}
	r := NewReference(id)
	r.Type, _ = raw["type"].(string)

	for key, val := range raw {
		switch key {
		case "id", "type":
			continue
		}
		switch ClassifyVariable(key) {
		case GroupName:
			names, err := s.ingestNames(val)
			if err != nil {
				return nil, errors.Wrapf(err, "variable %q", key)
			}
			r.Names[key] = names
		case GroupDate:
			m, ok := val.(map[string]interface{})
			if !ok {
				continue // malformed date value: ignore the field, keep the reference
			}
			d, err := ParseDateOrRange(m)
			if err != nil {
				return nil, errors.Wrapf(err, "variable %q", key)
			}
			r.Dates[key] = d
		case GroupNumeric:
			r.Numeric[key] = ParseNumericValue(cast.ToString(val))
		default:
			r.Ordinary[key] = textproc.IngestField(cast.ToString(val))
		}
	}
	return r, nil
}

func (s *Store) ingestNames(val interface{}) ([]Name, error) {
	arr, ok := val.([]interface{})
	if !ok {
		return nil, errors.New("expected an array of names")
	}
	out := make([]Name, 0, len(arr))
	for _, item := range arr {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, errors.New("expected a name object")
		}
		if lit, ok := m["literal"]; ok {
			out = append(out, NewLiteralName(cast.ToString(lit)))
			continue
		}
		pn := NewPersonName(
			cast.ToString(m["family"]),
			cast.ToString(m["given"]),
			cast.ToString(m["non-dropping-particle"]),
			cast.ToString(m["dropping-particle"]),
			cast.ToString(m["suffix"]),
			cast.ToBool(m["comma-suffix"]),
			cast.ToBool(m["static-particles"]),
		)
		if i := strings.IndexByte(pn.Given, ','); i >= 0 && pn.Suffix == "" &&
			etAlSuffix.MatchString(strings.TrimPrefix(pn.Given[i+1:], ",")) {
			s.log.WithField("given", pn.Given).Warn(`"et al" in a given name is not extracted as a suffix`)
		}
		out = append(out, NewPersonNameValue(pn))
	}
	return out, nil
}
