// Package mapping resolves each column to a Sampler: the offline, seeded
// value source that replaces an LLM call with a deterministic generator
// driven by the column's extracted ValueDomain (spec §9's Sampler interface).
// Column names are additionally fuzzy-matched against a small registry of
// realistic categories (email, name, phone, city...) using the same
// normalize-then-levenshtein approach used elsewhere in the corpus for
// schema-column matching.
package mapping

import (
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/seedforge/seedforge/internal/ddl"
	"github.com/seedforge/seedforge/internal/domain"
	"github.com/seedforge/seedforge/internal/expr"
)

// Sampler produces one candidate value per call. Apart from SerialSampler,
// which keeps its own counter, implementations are pure functions of rng's
// state: calling Sample with a freshly re-seeded rng of the same seed always
// replays the same sequence (spec §6's per-table determinism).
type Sampler interface {
	Sample(rng *rand.Rand) expr.Value
}

// SamplerFunc adapts a function to a Sampler.
type SamplerFunc func(rng *rand.Rand) expr.Value

func (f SamplerFunc) Sample(rng *rand.Rand) expr.Value { return f(rng) }

// NumericSampler draws a uniform int or decimal within a domain's bounds.
func NumericSampler(d domain.Domain, isDecimal bool, scale int) Sampler {
	lo, hi := boundsOrDefault(d)
	return SamplerFunc(func(rng *rand.Rand) expr.Value {
		f := lo + rng.Float64()*(hi-lo)
		if isDecimal {
			return expr.DecimalVal(expr.DecimalFromFloat(f, scale))
		}
		return expr.IntVal(int64(math.Round(f)))
	})
}

func boundsOrDefault(d domain.Domain) (float64, float64) {
	lo, hi := -1000.0, 1000.0
	if d.HasMin {
		lo = d.Min
		if !d.InclusiveMin {
			lo++
		}
	}
	if d.HasMax {
		hi = d.Max
		if !d.InclusiveMax {
			hi--
		}
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// EnumSampler draws uniformly from a fixed set of string values.
func EnumSampler(values []string) Sampler {
	return SamplerFunc(func(rng *rand.Rand) expr.Value {
		if len(values) == 0 {
			return expr.StringVal("")
		}
		return expr.StringVal(values[rng.Intn(len(values))])
	})
}

// BoolSampler draws a uniform boolean.
func BoolSampler() Sampler {
	return SamplerFunc(func(rng *rand.Rand) expr.Value {
		return expr.BoolVal(rng.Intn(2) == 1)
	})
}

// DateSampler draws a uniform date within a domain's date bounds. now anchors
// the open-ended upper bound to the run's frozen CURRENT_DATE rather than the
// wall clock, so two runs with the same seed and Config.Now produce identical
// output (spec §4.2).
func DateSampler(d domain.Domain, now time.Time) Sampler {
	min, max := d.DateMin, d.DateMax
	if !d.HasDateMin {
		min = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if !d.HasDateMax {
		max = now.AddDate(10, 0, 0)
	}
	span := max.Sub(min)
	if span <= 0 {
		span = 24 * time.Hour
	}
	return SamplerFunc(func(rng *rand.Rand) expr.Value {
		d := time.Duration(rng.Int63n(int64(span)))
		return expr.DateVal(min.Add(d))
	})
}

// RegexSampler produces strings that satisfy a small, non-backtracking
// subset of regex syntax well enough to pass the corresponding CHECK; it
// falls back to a plain random string when the pattern isn't one of the
// recognized shapes (spec §4.3's regex domain is advisory, not a full regex
// generator).
func RegexSampler(d domain.Domain, maxLen int) Sampler {
	src := d.RegexSrc
	return SamplerFunc(func(rng *rand.Rand) expr.Value {
		if gen, ok := generateFromKnownPattern(src, rng); ok {
			return expr.StringVal(gen)
		}
		return expr.StringVal(randomAlnum(rng, clampLen(maxLen, 12)))
	})
}

// generateFromKnownPattern handles a handful of common fixed-digit-count
// patterns like `^[0-9]{13}$` that appear in ISBN/SSN/phone-style CHECKs.
func generateFromKnownPattern(pattern string, rng *rand.Rand) (string, bool) {
	p := strings.TrimPrefix(strings.TrimSuffix(pattern, "$"), "^")
	switch {
	case p == "[0-9]{13}", p == `\d{13}`:
		return randomDigits(rng, 13), true
	case p == "[0-9]{10}", p == `\d{10}`:
		return randomDigits(rng, 10), true
	case p == "[0-9]{9}", p == `\d{9}`:
		return randomDigits(rng, 9), true
	case p == "[A-Z]{2}[0-9]{6}":
		return randomUpper(rng, 2) + randomDigits(rng, 6), true
	}
	return "", false
}

func randomDigits(rng *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('0' + rng.Intn(10))
	}
	return string(b)
}

func randomUpper(rng *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('A' + rng.Intn(26))
	}
	return string(b)
}

// StringSampler draws a random alphanumeric string bounded by maxLen.
func StringSampler(maxLen int) Sampler {
	n := clampLen(maxLen, 16)
	return SamplerFunc(func(rng *rand.Rand) expr.Value {
		return expr.StringVal(randomAlnum(rng, n))
	})
}

func clampLen(requested, fallback int) int {
	if requested <= 0 {
		return fallback
	}
	if requested > 64 {
		return 64
	}
	return requested
}

const alnumAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomAlnum(rng *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alnumAlphabet[rng.Intn(len(alnumAlphabet))]
	}
	return string(b)
}

// UserProvidedSampler draws uniformly from a fixed, config-supplied list,
// for predefined_values entries in spec §6's configuration surface.
func UserProvidedSampler(values []string) Sampler {
	return EnumSampler(values)
}

// SerialSampler hands out consecutive dense integers starting at 1 (Open
// Question: dense SERIAL IDs are mandated for reproducible FK targets).
func SerialSampler() Sampler {
	next := int64(1)
	return SamplerFunc(func(rng *rand.Rand) expr.Value {
		v := expr.IntVal(next)
		next++
		return v
	})
}

// ForColumn picks a Sampler for col given its extracted domain and the
// fuzzy-matched realistic category, if any (threshold controls how close a
// column name must be to a known category before the realistic generator
// wins over the generic domain-driven one).
func ForColumn(col *ddl.ColumnDef, d domain.Domain, threshold float64, now time.Time) Sampler {
	if col.Type.Kind == ddl.SERIAL {
		return SerialSampler()
	}
	if d.Kind == domain.KindEnum && len(d.EnumSet) > 0 {
		return EnumSampler(d.EnumSet)
	}
	if col.Type.Kind == ddl.BOOLEAN {
		return BoolSampler()
	}
	if d.Regex != nil {
		return RegexSampler(d, maxLenOf(d, col))
	}
	if cat, score := BestCategory(col.Name); score >= threshold {
		return RealisticSampler(cat)
	}
	switch d.Kind {
	case domain.KindNumeric:
		return NumericSampler(d, col.Type.Kind == ddl.DECIMAL, col.Type.Scale)
	case domain.KindDate:
		return DateSampler(d, now)
	case domain.KindString:
		return StringSampler(maxLenOf(d, col))
	default:
		return StringSampler(maxLenOf(d, col))
	}
}

func maxLenOf(d domain.Domain, col *ddl.ColumnDef) int {
	if d.HasMaxLength {
		return d.MaxLength
	}
	if col.Type.Length > 0 {
		return col.Type.Length
	}
	return 16
}
