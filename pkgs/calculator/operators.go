package calculator

import (
	"github.com/gregersn/trill/pkgs/ast"
	"github.com/gregersn/trill/pkgs/token"
	"github.com/gregersn/trill/pkgs/value"
)

func (c *Calculator) calcUnary(n *ast.Unary) (value.Value, *Distribution) {
	op := n.Op

	if op.Kind == token.DICE {
		sidesRep, _ := c.calc(n.Right)
		return diceDistribution(op, sidesRep)
	}

	childRep, childDist := c.calc(n.Right)

	switch op.Kind {
	case token.CHOOSE:
		_, dist := c.chooseDistribution(childDist)
		return applyUnaryValue(op, childRep), dist
	case token.PROBABILITY:
		return probabilityDistribution(childRep)
	}

	rep := applyUnaryValue(op, childRep)
	dist := lift(childDist, func(o Outcome) Outcome {
		return scalarOutcome(applyUnaryValue(op, o.AsValue()))
	})
	return rep, dist
}

func (c *Calculator) calcBinary(n *ast.Binary) (value.Value, *Distribution) {
	op := n.Op

	switch op.Kind {
	case token.DEFAULT:
		leftRep, leftDist := c.calc(n.Left)
		if leftRep.Truthy() {
			return leftRep, leftDist
		}
		return c.calc(n.Right)

	case token.AND:
		leftRep, leftDist := c.calc(n.Left)
		if !leftRep.Truthy() {
			return leftRep, leftDist
		}
		return c.calc(n.Right)

	case token.SAMPLES:
		leftRep, _ := c.calc(n.Left)
		_, rightDist := c.calc(n.Right)
		k := leftRep.AsInt()
		return value.List(nil), selfConvolve(rightDist, k)

	case token.DICE:
		countRep, _ := c.calc(n.Left)
		sidesRep, _ := c.calc(n.Right)
		return diceGroupDistribution(op, countRep, sidesRep)
	}

	leftRep, leftDist := c.calc(n.Left)
	rightRep, rightDist := c.calc(n.Right)

	if op.Kind == token.LARGEST || op.Kind == token.LEAST {
		wantLargest := op.Kind == token.LARGEST
		dist := convolve(leftDist, rightDist, func(countOutcome, bagOutcome Outcome) Outcome {
			return scalarOutcome(value.ExtremeN(bagOutcome.Values(), countOutcome.AsValue().AsInt(), wantLargest))
		})
		rep := value.ExtremeN(rightRep.AsList(), leftRep.AsInt(), wantLargest)
		return rep, dist
	}

	rep := applyBinaryValue(op, leftRep, rightRep)
	dist := convolve(leftDist, rightDist, func(a, b Outcome) Outcome {
		return scalarOutcome(applyBinaryValue(op, a.AsValue(), b.AsValue()))
	})
	return rep, dist
}

// applyUnaryValue is the deterministic reduction shared by every unary
// operator's distribution lift. Dice/choose/probability fall back to their
// average-mode value, matching the interpreter's expected-value rule,
// since those three are handled with full distribution support by their
// callers before reaching here.
func applyUnaryValue(op token.Token, v value.Value) value.Value {
	switch op.Kind {
	case token.NOT:
		return value.Not(v)
	case token.PAIR_VALUE:
		result, _ := value.PairValue(v, op.Literal.(int64))
		return result
	case token.MINUS:
		if v.IsFloat() {
			return value.Float(-v.AsFloat())
		}
		return value.Int(-v.AsInt())
	case token.SUM:
		result, _ := value.Sum(v.AsList())
		return result
	case token.SIGN:
		return value.Sign(v)
	case token.COUNT:
		return value.Int(int64(len(v.AsList())))
	case token.MIN:
		return value.Extreme(v.AsList(), false)
	case token.MAX:
		return value.Extreme(v.AsList(), true)
	case token.MINIMAL:
		return value.ExtremeSet(v.AsList(), false)
	case token.MAXIMAL:
		return value.ExtremeSet(v.AsList(), true)
	case token.MEDIAN:
		return value.Median(v.AsList())
	case token.DIFFERENT:
		return value.List(value.Distinct(v.AsList()))
	case token.DICE:
		start := int64(1)
		if op.Lexeme == "z" || op.Lexeme == "Z" {
			start = 0
		}
		return value.Float(float64(v.AsInt()+start) / 2.0)
	case token.CHOOSE:
		list := v.AsList()
		if len(list) == 0 {
			return value.Empty
		}
		return list[len(list)/2]
	case token.PROBABILITY:
		if v.AsFloat() >= 0.5 {
			return value.Int(1)
		}
		return value.Empty
	default:
		return value.Empty
	}
}

var arithOps = map[token.Kind]value.ArithOp{
	token.PLUS:     value.Add,
	token.MINUS:    value.Sub,
	token.MULTIPLY: value.Mul,
	token.DIVIDE:   value.Div,
	token.MODULO:   value.Mod,
}

var compareOps = map[token.Kind]value.CompareOp{
	token.EQUAL:                 value.CmpEqual,
	token.NOT_EQUAL:             value.CmpNotEqual,
	token.LESS_THAN:             value.CmpLess,
	token.LESS_THAN_OR_EQUAL:    value.CmpLessEqual,
	token.GREATER_THAN:          value.CmpGreater,
	token.GREATER_THAN_OR_EQUAL: value.CmpGreaterEqual,
}

// applyBinaryValue is the deterministic reduction shared by every binary
// operator's distribution convolution (arithmetic, comparison-as-filter,
// collection ops, range). PICK falls back to its average-mode centered
// window rather than an exact without-replacement subset distribution —
// see DESIGN.md.
func applyBinaryValue(op token.Token, left, right value.Value) value.Value {
	if arithOp, ok := arithOps[op.Kind]; ok {
		v, err := value.Arithmetic(arithOp, left, right)
		if err != nil {
			return value.Empty
		}
		return v
	}
	if cmpOp, ok := compareOps[op.Kind]; ok {
		return value.List(value.FilterCompare(cmpOp, left, right.AsList()))
	}

	switch op.Kind {
	case token.RANGE:
		return value.List(value.Range(left.AsInt(), right.AsInt()))
	case token.UNION:
		return value.List(value.BagUnion(left.AsList(), right.AsList()))
	case token.DROP:
		return value.List(value.BagDrop(left.AsList(), right.AsList()))
	case token.KEEP:
		return value.List(value.BagKeep(left.AsList(), right.AsList()))
	case token.MINUSMINUS:
		return value.List(value.BagSubtract(left.AsList(), right.AsList()))
	case token.PICK:
		return centeredPick(left.AsList(), right.AsInt())
	default:
		return value.Empty
	}
}

func centeredPick(bag []value.Value, k int64) value.Value {
	if k <= 0 || len(bag) == 0 {
		return value.List(nil)
	}
	if k > int64(len(bag)) {
		k = int64(len(bag))
	}
	sorted := value.SortValues(bag)
	mid := len(sorted) / 2
	offset := int(k) / 2
	lo := mid - offset
	hi := lo + int(k)
	if lo < 0 {
		hi -= lo
		lo = 0
	}
	if hi > len(sorted) {
		lo -= hi - len(sorted)
		hi = len(sorted)
	}
	if lo < 0 {
		lo = 0
	}
	return value.List(sorted[lo:hi])
}

// diceDistribution builds the uniform distribution of a unary "d N"/"z N"
// roll. N is taken from sidesRep's representative value: a randomly-sized
// die is not supported, matching spec.md §4.4's atoms being closed-form.
func diceDistribution(op token.Token, sidesRep value.Value) (value.Value, *Distribution) {
	start := int64(1)
	if op.Lexeme == "z" || op.Lexeme == "Z" {
		start = 0
	}
	n := sidesRep.AsInt()

	dist := newDistribution()
	for v := start; v < start+n; v++ {
		dist.add(scalarOutcome(value.Int(v)), 1)
	}
	rep := value.Float(float64(n+start) / 2.0)
	return rep, dist
}

// diceGroupDistribution builds the group distribution of "M d N": the
// N^M equally likely ordered rolls, folded into sorted-tuple outcomes with
// multinomial weights (spec.md §4.4 "Binary dice").
func diceGroupDistribution(op token.Token, countRep, sidesRep value.Value) (value.Value, *Distribution) {
	start := int64(1)
	if op.Lexeme == "z" || op.Lexeme == "Z" {
		start = 0
	}
	m := countRep.AsInt()
	n := sidesRep.AsInt()

	dist := newDistribution()
	dist.add(groupOutcome(nil), 1)
	for d := int64(0); d < m; d++ {
		next := newDistribution()
		dist.Each(func(o Outcome, w float64) {
			for v := start; v < start+n; v++ {
				next.add(groupOutcome(append(append([]int64{}, o.Group...), v)), w)
			}
		})
		dist = next
	}

	avg := value.Float(float64(n+start) / 2.0)
	rep := make([]value.Value, m)
	for i := range rep {
		rep[i] = avg
	}
	return value.List(rep), dist
}

// selfConvolve flattens k independent draws from d into one distribution,
// matching "k # expr" evaluating expr k times and flattening list results.
func selfConvolve(d *Distribution, k int64) *Distribution {
	acc := newDistribution()
	acc.add(scalarOutcome(value.List(nil)), 1)
	for n := int64(0); n < k; n++ {
		acc = convolve(acc, d, func(accOutcome, next Outcome) Outcome {
			list := append([]value.Value{}, accOutcome.Values()...)
			list = append(list, next.Values()...)
			return scalarOutcome(value.List(list))
		})
	}
	return acc
}

// chooseDistribution implements "choose" over a distribution: each outcome
// list distributes its weight uniformly over its own elements.
func (c *Calculator) chooseDistribution(child *Distribution) (value.Value, *Distribution) {
	out := newDistribution()
	child.Each(func(o Outcome, w float64) {
		list := o.Values()
		if len(list) == 0 {
			out.add(scalarOutcome(value.Empty), w)
			return
		}
		share := w / float64(len(list))
		for _, v := range list {
			out.add(scalarOutcome(v), share)
		}
	})
	return value.Empty, out
}

// probabilityDistribution implements "? p" as a Bernoulli trial using p's
// representative value (randomness in how p itself was derived is not
// re-expanded into the result distribution).
func probabilityDistribution(pRep value.Value) (value.Value, *Distribution) {
	p := pRep.AsFloat()
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	dist := newDistribution()
	dist.add(scalarOutcome(value.Int(1)), p)
	dist.add(scalarOutcome(value.Empty), 1-p)
	rep := value.Value(value.Empty)
	if p >= 0.5 {
		rep = value.Int(1)
	}
	return rep, dist
}
