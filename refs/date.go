package refs

import (
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// Date is a single calendar point with CSL's partial-precision semantics
// (spec.md §3): month 0 means absent, month 13..16 encodes a season
// (Spring..Winter), day 0 means absent. Year may be negative (BCE).
type Date struct {
	Year  int32
	Month uint8
	Day   uint8
	Circa bool
}

// Season identifies one of the four CSL pseudo-months.
type Season uint8

const (
	SeasonNone Season = iota
	SeasonSpring
	SeasonSummer
	SeasonAutumn
	SeasonWinter
)

// HasMonth reports whether Month encodes an actual month 1..12.
func (d Date) HasMonth() bool { return d.Month != 0 && d.Month <= 12 }

// HasDay reports whether Day is present.
func (d Date) HasDay() bool { return d.Day != 0 }

// AsSeason returns the season this date's Month encodes, or SeasonNone if
// Month is absent or an ordinary calendar month.
func (d Date) AsSeason() Season {
	if d.Month < 13 || d.Month > 16 {
		return SeasonNone
	}
	return Season(d.Month - 12)
}

// Compare orders two dates: year first, then month (but only when neither
// is a season — an absent month compares as "less specific", so it sorts
// before a fully-specified one at the same year; when either month is a
// season the months are not compared at all), then day. This matches the
// source's Date::cmp (spec.md §3 invariant: BCE
// sorts before CE, which falls out of Year being signed).
func (d Date) Compare(o Date) int {
	if d.Year != o.Year {
		return cmpInt32(d.Year, o.Year)
	}
	if d.Month < 13 && o.Month < 13 {
		if d.Month != o.Month {
			return cmpUint8(d.Month, o.Month)
		}
	}
	return cmpUint8(d.Day, o.Day)
}

func cmpInt32(a, b int32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpUint8(a, b uint8) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// DateOrRange is the Reference variable value for a date field (spec.md
// §3). Exactly one of Single/Range/Literal is populated; Kind says which.
type DateOrRangeKind uint8

const (
	DateSingle DateOrRangeKind = iota
	DateRange
	DateLiteral
)

type DateOrRange struct {
	Kind    DateOrRangeKind
	Single  Date
	From    Date
	To      Date
	Literal string
	Circa   bool // only meaningful for DateLiteral
}

// Compare implements the partial order from the source: a Literal compares
// to nothing (callers must demote literals to sort-last, per spec.md §4.7).
// Returns (0, false) when the comparison is undefined.
func (d DateOrRange) Compare(o DateOrRange) (int, bool) {
	if d.Kind == DateLiteral || o.Kind == DateLiteral {
		return 0, false
	}
	a1, a2 := d.bounds()
	b1, b2 := o.bounds()
	c := a1.Compare(b1)
	if c != 0 {
		return c, true
	}
	return a2.Compare(b2), true
}

func (d DateOrRange) bounds() (Date, Date) {
	switch d.Kind {
	case DateRange:
		return d.From, d.To
	default:
		return d.Single, d.Single
	}
}

// seasonFromInt maps the CSL-JSON {"season": N} form (1..4) onto month
// 13..16, silently clamping out-of-range values to "absent" (unknown keys
// and malformed scalars are ignored on ingest per spec.md §6).
func seasonFromInt(n int) uint8 {
	if n < 1 || n > 4 {
		return 0
	}
	return uint8(12 + n)
}

// ParseDateParts builds a Date from a CSL-JSON date-parts triple
// ([]interface{}{year, month, day}, any suffix omitted). Scalars may
// legitimately arrive as either JSON numbers or numeral strings
// ("2020"), so each component is coerced with spf13/cast rather than
// type-asserted, matching the CSL-JSON producers in the wild that this
// library treats as an external, best-effort collaborator (spec.md §6).
func ParseDateParts(parts []interface{}, circa bool) (Date, error) {
	var d Date
	d.Circa = circa
	if len(parts) > 0 {
		y, err := cast.ToInt64E(parts[0])
		if err != nil {
			return Date{}, errors.Wrap(err, "date-parts[0] (year)")
		}
		d.Year = int32(y)
	}
	if len(parts) > 1 {
		m, err := cast.ToInt64E(parts[1])
		if err != nil {
			return Date{}, errors.Wrap(err, "date-parts[1] (month)")
		}
		if m < 0 || m > 16 {
			return Date{}, errors.Errorf("date-parts[1] (month) out of range: %d", m)
		}
		d.Month = uint8(m)
	}
	if len(parts) > 2 {
		day, err := cast.ToInt64E(parts[2])
		if err != nil {
			return Date{}, errors.Wrap(err, "date-parts[2] (day)")
		}
		if day < 0 || day > 31 {
			return Date{}, errors.Errorf("date-parts[2] (day) out of range: %d", day)
		}
		d.Day = uint8(day)
	}
	return d, nil
}

// ParseDateOrRange builds a DateOrRange from the union of CSL-JSON date
// shapes spec.md §6 enumerates: {"date-parts": [[...], [...]]}, {"literal":
// "..."}, {"raw": "..."}, {"year": N}, {"season": N, "circa": bool}.
func ParseDateOrRange(raw map[string]interface{}) (DateOrRange, error) {
	if lit, ok := raw["literal"]; ok {
		return DateOrRange{Kind: DateLiteral, Literal: cast.ToString(lit), Circa: cast.ToBool(raw["circa"])}, nil
	}
	if lit, ok := raw["raw"]; ok {
		// "raw" is an unparsed human string; treat exactly like literal for
		// rendering purposes, the original implementation's fallback path.
		return DateOrRange{Kind: DateLiteral, Literal: cast.ToString(lit)}, nil
	}
	circa := cast.ToBool(raw["circa"])
	if partsAny, ok := raw["date-parts"]; ok {
		parts, ok := partsAny.([]interface{})
		if !ok || len(parts) == 0 {
			return DateOrRange{}, errors.New("date-parts must be a non-empty array")
		}
		first, ok := parts[0].([]interface{})
		if !ok {
			return DateOrRange{}, errors.New("date-parts[0] must be an array")
		}
		d1, err := ParseDateParts(first, circa)
		if err != nil {
			return DateOrRange{}, err
		}
		if len(parts) == 1 {
			return DateOrRange{Kind: DateSingle, Single: d1}, nil
		}
		second, ok := parts[1].([]interface{})
		if !ok {
			return DateOrRange{}, errors.New("date-parts[1] must be an array")
		}
		d2, err := ParseDateParts(second, circa)
		if err != nil {
			return DateOrRange{}, err
		}
		return DateOrRange{Kind: DateRange, From: d1, To: d2}, nil
	}
	if y, ok := raw["year"]; ok {
		year, err := cast.ToInt64E(y)
		if err != nil {
			return DateOrRange{}, errors.Wrap(err, "year")
		}
		d := Date{Year: int32(year), Circa: circa}
		if s, ok := raw["season"]; ok {
			season, err := cast.ToInt64E(s)
			if err == nil {
				d.Month = seasonFromInt(int(season))
			}
		}
		return DateOrRange{Kind: DateSingle, Single: d}, nil
	}
	if s, ok := raw["season"]; ok {
		season, err := cast.ToInt64E(s)
		if err != nil {
			return DateOrRange{}, errors.Wrap(err, "season")
		}
		return DateOrRange{Kind: DateSingle, Single: Date{Month: seasonFromInt(int(season)), Circa: circa}}, nil
	}
	return DateOrRange{}, errors.New("no recognized date shape among date-parts/literal/raw/year/season")
}
