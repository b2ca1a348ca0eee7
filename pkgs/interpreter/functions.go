package interpreter

import (
	"github.com/gregersn/trill/pkgs/token"
	"github.com/gregersn/trill/pkgs/value"
)

// applyUnary implements every prefix/postfix operator of spec.md §4.3 that
// needs only its already-evaluated operand: shared between
// ordinary Unary nodes and a compositional's singleton operand. Operators
// that do consult the random source (dice, choose, probability) are
// resolved here too, since they need the op token's lexeme/position even
// though the actual draw delegates to i.rand.
func (i *Interpreter) applyUnary(op token.Token, right value.Value) value.Value {
	switch op.Kind {
	case token.NOT:
		return value.Not(right)

	case token.PAIR_VALUE:
		v, err := value.PairValue(right, op.Literal.(int64))
		if err != nil {
			i.fail(op.Line, op.Column, "%s", err)
		}
		return v

	case token.MINUS:
		switch {
		case right.IsInt():
			return value.Int(-right.AsInt())
		case right.IsFloat():
			return value.Float(-right.AsFloat())
		default:
			i.fail(op.Line, op.Column, "Cannot negate a non-number")
			return value.Empty
		}

	case token.DICE:
		return i.rollDice(op, right)

	case token.SUM:
		v, err := value.Sum(right.AsList())
		if err != nil {
			i.fail(op.Line, op.Column, "%s", err)
		}
		return v

	case token.SIGN:
		return value.Sign(right)

	case token.CHOOSE:
		list := right.AsList()
		if len(list) == 0 {
			return value.Empty
		}
		var idx int64
		if i.average {
			idx = int64(len(list)) / 2
		} else {
			idx = i.rand.IntRange(0, int64(len(list)-1))
		}
		return list[idx]

	case token.COUNT:
		return value.Int(int64(len(right.AsList())))

	case token.MIN:
		return value.Extreme(right.AsList(), false)

	case token.MAX:
		return value.Extreme(right.AsList(), true)

	case token.MINIMAL:
		return value.ExtremeSet(right.AsList(), false)

	case token.MAXIMAL:
		return value.ExtremeSet(right.AsList(), true)

	case token.MEDIAN:
		return value.Median(right.AsList())

	case token.DIFFERENT:
		return value.List(value.Distinct(right.AsList()))

	case token.PROBABILITY:
		p := right.AsFloat()
		if i.average {
			if p >= 0.5 {
				return value.Int(1)
			}
			return value.Empty
		}
		if i.rand.Float() < p {
			return value.Int(1)
		}
		return value.Empty

	default:
		i.fail(op.Line, op.Column, "Unknown unary operator: %s", op.Lexeme)
		return value.Empty
	}
}

// rollDice implements the unary "d N" / "z N" roll: d starts at 1, z at 0.
func (i *Interpreter) rollDice(op token.Token, sides value.Value) value.Value {
	if !sides.IsInt() {
		i.fail(op.Line, op.Column, "Dice sides must be an integer")
	}
	start := int64(1)
	if op.Lexeme == "z" || op.Lexeme == "Z" {
		start = 0
	}
	n := sides.AsInt()

	if i.average {
		return value.Float(float64(n+start) / 2.0)
	}
	return value.Int(i.rand.IntRange(start, n))
}
