// Package domain implements the bound/enum extractor of spec §4.3: it
// partially evaluates a column's CHECK predicates to derive a conservative
// ValueDomain before any sampling happens. The domain is advisory — the
// expression evaluator in internal/expr remains the source of truth for
// whether a generated row actually satisfies its constraints.
package domain

import (
	"math"
	"regexp"
	"time"
)

// Kind classifies the shape of a ValueDomain (spec §3).
type Kind int

const (
	KindAny Kind = iota
	KindNumeric
	KindString
	KindDate
	KindEnum
)

// Domain is the per-column ValueDomain of spec §3. It is deliberately
// weaker than the predicates it was derived from — samplers treat it as a
// bias, never as a correctness guarantee.
type Domain struct {
	Kind Kind

	Min, Max             float64
	HasMin, HasMax       bool
	InclusiveMin         bool
	InclusiveMax         bool

	DateMin, DateMax     time.Time
	HasDateMin, HasDateMax bool

	EnumSet []string

	Regex    *regexp.Regexp
	RegexSrc string

	MaxLength int // 0 = unbounded
	HasMaxLength bool

	Nullable bool
}

// Clone returns a deep-enough copy safe to mutate independently.
func (d Domain) Clone() Domain {
	out := d
	if len(d.EnumSet) > 0 {
		out.EnumSet = append([]string(nil), d.EnumSet...)
	}
	return out
}

// IntersectNumeric tightens d's numeric bounds against a newly discovered
// bound. Bounds across AND conjuncts intersect (spec §4.3).
func (d *Domain) IntersectNumeric(min, max float64, hasMin, hasMax, inclusiveMin, inclusiveMax bool) {
	if hasMin {
		if !d.HasMin || min > d.Min || (min == d.Min && !inclusiveMin) {
			d.Min = min
			d.InclusiveMin = inclusiveMin
			d.HasMin = true
		}
	}
	if hasMax {
		if !d.HasMax || max < d.Max || (max == d.Max && !inclusiveMax) {
			d.Max = max
			d.InclusiveMax = inclusiveMax
			d.HasMax = true
		}
	}
}

// IntersectEnum narrows the enum set to the overlap with newValues, the
// first time it is called; subsequent calls further intersect.
func (d *Domain) IntersectEnum(newValues []string) {
	if len(d.EnumSet) == 0 {
		d.EnumSet = append([]string(nil), newValues...)
		d.Kind = KindEnum
		return
	}
	set := map[string]bool{}
	for _, v := range newValues {
		set[v] = true
	}
	var out []string
	for _, v := range d.EnumSet {
		if set[v] {
			out = append(out, v)
		}
	}
	d.EnumSet = out
}

// Within reports whether f lies inside the numeric bounds, honoring
// inclusivity.
func (d Domain) Within(f float64) bool {
	if d.HasMin {
		if d.InclusiveMin {
			if f < d.Min {
				return false
			}
		} else if f <= d.Min {
			return false
		}
	}
	if d.HasMax {
		if d.InclusiveMax {
			if f > d.Max {
				return false
			}
		} else if f >= d.Max {
			return false
		}
	}
	return true
}

// WithinDate reports whether t lies inside the date bounds.
func (d Domain) WithinDate(t time.Time) bool {
	if d.HasDateMin && t.Before(d.DateMin) {
		return false
	}
	if d.HasDateMax && t.After(d.DateMax) {
		return false
	}
	return true
}

func clampInt(f float64) int64 {
	if f > math.MaxInt64 {
		return math.MaxInt64
	}
	if f < math.MinInt64 {
		return math.MinInt64
	}
	return int64(f)
}
