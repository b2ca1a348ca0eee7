package interpreter

import (
	"github.com/gregersn/trill/pkgs/ast"
	"github.com/gregersn/trill/pkgs/token"
	"github.com/gregersn/trill/pkgs/value"
)

// evalBinary dispatches a Binary node. DEFAULT, AND and SAMPLES need the
// unevaluated right-hand expression (laziness, repeated sampling); every
// other operator is handled by applyBinary once both sides are evaluated.
func (i *Interpreter) evalBinary(b *ast.Binary) value.Value {
	switch b.Op.Kind {
	case token.DEFAULT:
		left := i.eval(b.Left)
		if left.Truthy() {
			return left
		}
		return i.eval(b.Right)

	case token.AND:
		left := i.eval(b.Left)
		if !left.Truthy() {
			return left
		}
		return i.eval(b.Right)

	case token.SAMPLES:
		left := i.eval(b.Left)
		count := left.AsInt()
		var out []value.Value
		for n := int64(0); n < count; n++ {
			v := i.eval(b.Right)
			out = append(out, v.AsList()...)
		}
		return value.List(out)

	default:
		left := i.eval(b.Left)
		right := i.eval(b.Right)
		return i.applyBinary(b.Op, left, right)
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

// applyBinary implements every infix operator that only needs its two
// already-evaluated operands, shared between ordinary Binary nodes and a
// compositional's union operand.
func (i *Interpreter) applyBinary(op token.Token, left, right value.Value) value.Value {
	if arithOp, ok := arithOps[op.Kind]; ok {
		v, err := value.Arithmetic(arithOp, left, right)
		if err != nil {
			i.fail(op.Line, op.Column, "%s", err)
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
		return i.pick(op, left, right)

	case token.LARGEST:
		return value.ExtremeN(right.AsList(), left.AsInt(), true)

	case token.LEAST:
		return value.ExtremeN(right.AsList(), left.AsInt(), false)

	case token.DICE:
		return i.rollDiceBinary(op, left, right)

	default:
		i.fail(op.Line, op.Column, "Unknown binary operator: %s", op.Lexeme)
		return value.Empty
	}
}

// rollDiceBinary implements "N d M" / "N z M": N independent rolls of one
// M-sided die, returned as a list (spec.md §4.3 "binary dice form").
func (i *Interpreter) rollDiceBinary(op token.Token, count, sides value.Value) value.Value {
	if !sides.IsInt() {
		i.fail(op.Line, op.Column, "Dice sides must be an integer")
	}
	n := count.AsInt()
	out := make([]value.Value, 0, n)
	for k := int64(0); k < n; k++ {
		out = append(out, i.rollDice(op, sides))
	}
	return value.List(out)
}

// pick implements "bag pick k": average mode takes the k values centered on
// the sorted bag's middle; sampling mode draws k distinct elements without
// replacement (spec.md §4.3).
func (i *Interpreter) pick(op token.Token, bagVal, countVal value.Value) value.Value {
	if !bagVal.IsList() {
		i.fail(op.Line, op.Column, "pick requires a list left operand")
	}
	bag := bagVal.AsList()
	k := countVal.AsInt()
	if k <= 0 || len(bag) == 0 {
		return value.List(nil)
	}
	if k > int64(len(bag)) {
		k = int64(len(bag))
	}

	if i.average {
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

	if int(k) == len(bag) {
		// Picking the whole bag selects nothing away; preserve order.
		return value.List(append([]value.Value{}, bag...))
	}

	pool := append([]value.Value{}, bag...)
	out := make([]value.Value, 0, k)
	for n := int64(0); n < k; n++ {
		idx := i.rand.IntRange(0, int64(len(pool)-1))
		out = append(out, pool[idx])
		pool = append(pool[:idx], pool[idx+1:]...)
	}
	return value.List(out)
}
