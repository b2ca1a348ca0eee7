// Package calculator implements the probability calculator of spec.md
// §4.4: a second, independent visitor over the same AST that produces an
// exact discrete distribution by convolution instead of a sampled value.
package calculator

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/gregersn/trill/pkgs/value"
)

// Outcome is a distribution key. A Group outcome is the sorted-tuple
// representation of a multiset of dice (spec.md §4.4 "group outcome",
// §9's "Group(sorted sequence of integers)"); everything else — numbers,
// strings, pairs, and lists produced by reducing a Group — is a Scalar
// holding the value directly.
type Outcome struct {
	IsGroup bool
	Group   []int64
	Scalar  value.Value
}

func scalarOutcome(v value.Value) Outcome { return Outcome{Scalar: v} }

func groupOutcome(g []int64) Outcome {
	sorted := append([]int64{}, g...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return Outcome{IsGroup: true, Group: sorted}
}

// Values renders the outcome as the list of scalar values an operator like
// sum/largest/different would see, whether it is backed by a Group tuple or
// already a Scalar list.
func (o Outcome) Values() []value.Value {
	if o.IsGroup {
		out := make([]value.Value, len(o.Group))
		for i, g := range o.Group {
			out[i] = value.Int(g)
		}
		return out
	}
	return o.Scalar.AsList()
}

// AsValue renders the outcome as a single value.Value, used when an
// operator needs the whole outcome rather than its list view (e.g. the
// left-hand side of arithmetic).
func (o Outcome) AsValue() value.Value {
	if o.IsGroup {
		return value.List(o.Values())
	}
	return o.Scalar
}

func (o Outcome) key() string {
	if o.IsGroup {
		parts := make([]string, len(o.Group))
		for i, g := range o.Group {
			parts[i] = strconv.FormatInt(g, 10)
		}
		return "G:" + strings.Join(parts, ",")
	}
	return fmt.Sprintf("S:%d:%s", o.Scalar.Kind(), o.Scalar.String())
}

type entry struct {
	outcome Outcome
	weight  float64
}

// Distribution is an unnormalized mapping from Outcome to weight, matching
// spec.md §3's "Distribution" data model: normalization only happens at the
// top level report.
type Distribution struct {
	entries map[string]*entry
}

func newDistribution() *Distribution {
	return &Distribution{entries: map[string]*entry{}}
}

// single builds the one-outcome distribution produced by an atom.
func single(o Outcome) *Distribution {
	d := newDistribution()
	d.add(o, 1)
	return d
}

func (d *Distribution) add(o Outcome, w float64) {
	k := o.key()
	if e, ok := d.entries[k]; ok {
		e.weight += w
		return
	}
	d.entries[k] = &entry{outcome: o, weight: w}
}

// Each calls fn once per distinct outcome with its accumulated weight.
func (d *Distribution) Each(fn func(Outcome, float64)) {
	for _, e := range d.entries {
		fn(e.outcome, e.weight)
	}
}

func (d *Distribution) totalWeight() float64 {
	var total float64
	d.Each(func(_ Outcome, w float64) { total += w })
	return total
}

// lift applies f to every outcome of d, accumulating weight for outcomes
// that collide after reduction — the canonical unary lift of spec.md §4.4.
func lift(d *Distribution, f func(Outcome) Outcome) *Distribution {
	out := newDistribution()
	d.Each(func(o Outcome, w float64) {
		out.add(f(o), w)
	})
	return out
}

// convolve combines two distributions via their Cartesian product,
// multiplying weights and accumulating collisions (spec.md §4.4 "Binary
// arithmetic").
func convolve(a, b *Distribution, f func(Outcome, Outcome) Outcome) *Distribution {
	out := newDistribution()
	a.Each(func(oa Outcome, wa float64) {
		b.Each(func(ob Outcome, wb float64) {
			out.add(f(oa, ob), wa*wb)
		})
	})
	return out
}

// Report is the normalized top-level view of a distribution (spec.md §4.4
// "Top-level report").
type Report struct {
	Entries []ReportEntry
	Numeric bool
	Mean    float64
	Spread  float64
	MeanDev float64
}

// ReportEntry is one normalized (outcome, probability) pair.
type ReportEntry struct {
	Value       value.Value
	Probability float64
}

// normalize produces the Report for a finished Distribution.
func normalize(d *Distribution) Report {
	total := d.totalWeight()
	var entries []ReportEntry
	numeric := true
	d.Each(func(o Outcome, w float64) {
		v := o.AsValue()
		if !v.IsNumber() {
			numeric = false
		}
		p := w
		if total > 0 {
			p = w / total
		}
		entries = append(entries, ReportEntry{Value: v, Probability: p})
	})
	sort.Slice(entries, func(i, j int) bool {
		return value.Less(entries[i].Value, entries[j].Value)
	})

	report := Report{Entries: entries, Numeric: numeric}
	if !numeric {
		return report
	}

	var mean float64
	for _, e := range entries {
		mean += e.Value.AsFloat() * e.Probability
	}
	var variance, meanDev float64
	for _, e := range entries {
		d := e.Value.AsFloat() - mean
		variance += d * d * e.Probability
		if d < 0 {
			d = -d
		}
		meanDev += d * e.Probability
	}
	report.Mean = mean
	report.Spread = math.Sqrt(variance)
	report.MeanDev = meanDev
	return report
}
