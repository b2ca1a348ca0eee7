// Package interpreter implements the sampling interpreter of spec.md
// §4.3: a tree walk producing a concrete value from either a random
// source or, in average mode, the expected value of each random draw.
package interpreter

import (
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/gregersn/trill/pkgs/ast"
	"github.com/gregersn/trill/pkgs/errors"
	"github.com/gregersn/trill/pkgs/randsrc"
	"github.com/gregersn/trill/pkgs/token"
	"github.com/gregersn/trill/pkgs/value"
)

// evalError unwinds to Run's recovery point once a type violation has
// been reported; per spec.md §7 a type violation is fatal for the whole
// evaluation.
type evalError struct{}

// Interpreter walks one program's AST. It is single-threaded and not
// re-entrant across goroutines, matching spec.md §3's scope-chain note.
type Interpreter struct {
	handler   *errors.Handler
	rand      randsrc.Source
	average   bool
	frames    []map[string]value.Value
	functions map[string]ast.Stmt
}

// New creates an Interpreter reporting into handler and drawing randomness
// from src.
func New(handler *errors.Handler, src randsrc.Source) *Interpreter {
	return &Interpreter{handler: handler, rand: src}
}

// Run evaluates a parsed program. Function and compositional declarations
// are registered before any other statement executes, so forward
// references work regardless of source order (spec.md §3 "Lifecycle").
func (i *Interpreter) Run(nodes []ast.Node, average bool) (results []value.Value, err error) {
	i.average = average
	i.frames = []map[string]value.Value{{}}
	i.functions = map[string]ast.Stmt{}

	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(evalError); ok {
				results = nil
				if d := i.handler.First(); d != nil {
					err = *d
				}
				return
			}
			panic(r)
		}
	}()

	for _, n := range nodes {
		if isDecl(n) {
			i.declare(n)
		}
	}

	for _, n := range nodes {
		if isDecl(n) {
			continue
		}
		results = append(results, i.execNode(n))
	}

	return results, nil
}

func isDecl(n ast.Node) bool {
	switch n.(type) {
	case *ast.Function, *ast.Compositional:
		return true
	default:
		return false
	}
}

func (i *Interpreter) declare(n ast.Node) {
	switch v := n.(type) {
	case *ast.Function:
		i.functions[v.Name.Literal.(string)] = v
	case *ast.Compositional:
		i.functions[v.Name.Literal.(string)] = v
	}
}

func (i *Interpreter) execNode(n ast.Node) value.Value {
	switch v := n.(type) {
	case *ast.Print:
		rendered := i.eval(v.Expr)
		out := make([]value.Value, v.Repeats)
		for idx := range out {
			out[idx] = value.Str(rendered.String())
		}
		return value.List(out)
	case ast.Expr:
		return i.eval(v)
	default:
		return value.Empty
	}
}

func (i *Interpreter) fail(line, col int, format string, args ...interface{}) {
	i.handler.Report(errors.Interpreter, line, col, format, args...)
	panic(evalError{})
}

// --- scope chain --------------------------------------------------------

func (i *Interpreter) push() {
	i.frames = append(i.frames, map[string]value.Value{})
}

func (i *Interpreter) pop() {
	i.frames = i.frames[:len(i.frames)-1]
}

func (i *Interpreter) set(name string, v value.Value) {
	i.frames[len(i.frames)-1][name] = v
}

func (i *Interpreter) get(name string) (value.Value, bool) {
	for idx := len(i.frames) - 1; idx >= 0; idx-- {
		if v, ok := i.frames[idx][name]; ok {
			return v, true
		}
	}
	return value.Empty, false
}

// --- expression dispatch -------------------------------------------------

func (i *Interpreter) eval(e ast.Expr) value.Value {
	switch n := e.(type) {
	case *ast.Literal:
		return i.evalLiteral(n)
	case *ast.Variable:
		return i.evalVariable(n)
	case *ast.Grouping:
		return i.eval(n.Expr)
	case *ast.Unary:
		return i.applyUnary(n.Op, i.eval(n.Right))
	case *ast.Binary:
		return i.evalBinary(n)
	case *ast.List:
		return i.evalList(n)
	case *ast.Pair:
		return value.Pair(i.eval(n.First), i.eval(n.Second))
	case *ast.Block:
		return i.evalBlock(n)
	case *ast.Assign:
		return i.evalAssign(n)
	case *ast.Conditional:
		if i.eval(n.Cond).Truthy() {
			return i.eval(n.Then)
		}
		return i.eval(n.Else)
	case *ast.Foreach:
		return i.evalForeach(n)
	case *ast.Repeat:
		return i.evalRepeat(n)
	case *ast.Accumulate:
		return i.evalAccumulate(n)
	case *ast.Call:
		return i.evalCall(n)
	case *ast.TextAlign:
		left := i.eval(n.Left)
		right := i.eval(n.Right)
		return value.TextAlign(left, right, value.AlignOp(n.Op.Lexeme))
	default:
		i.fail(0, 0, "Unknown expression node %T", e)
		return value.Empty
	}
}

func (i *Interpreter) evalLiteral(n *ast.Literal) value.Value {
	switch v := n.Value.(type) {
	case nil:
		return value.Empty
	case int64:
		return value.Int(v)
	case float64:
		return value.Float(v)
	case string:
		return value.ExpandAlignmentMarkers(v)
	default:
		return value.Empty
	}
}

func (i *Interpreter) evalVariable(n *ast.Variable) value.Value {
	name, _ := n.Name.Literal.(string)
	v, ok := i.get(name)
	if !ok {
		if closest := findClosestName(name, i.knownNames()); closest != "" {
			i.fail(n.Name.Line, n.Name.Column, "Unbound identifier: %s (did you mean '%s'?)", name, closest)
		}
		i.fail(n.Name.Line, n.Name.Column, "Unbound identifier: %s", name)
	}
	return v
}

// knownNames lists every variable and function name currently in scope, for
// findClosestName's suggestion when a lookup misses.
func (i *Interpreter) knownNames() []string {
	names := make([]string, 0, len(i.functions))
	for _, frame := range i.frames {
		for name := range frame {
			names = append(names, name)
		}
	}
	for name := range i.functions {
		names = append(names, name)
	}
	return names
}

// findClosestName returns the candidate fuzzy-closest to target, or "" if
// none are close enough to be worth suggesting.
func findClosestName(target string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) > 0 {
		return ranks[0].Target
	}
	return ""
}

func (i *Interpreter) evalList(n *ast.List) value.Value {
	var out []value.Value
	for _, item := range n.Items {
		v := i.eval(item)
		if v.IsList() {
			out = append(out, v.AsList()...)
		} else {
			out = append(out, v)
		}
	}
	return value.List(out)
}

func (i *Interpreter) evalBlock(n *ast.Block) value.Value {
	i.push()
	defer i.pop()

	result := value.Empty
	for _, e := range n.Exprs {
		result = i.eval(e)
	}
	return result
}

func (i *Interpreter) evalAssign(n *ast.Assign) value.Value {
	v := i.eval(n.Value)
	name, _ := n.Name.Literal.(string)
	i.set(name, v)
	return v
}

func (i *Interpreter) evalForeach(n *ast.Foreach) value.Value {
	src := i.eval(n.Source)

	i.push()
	defer i.pop()

	name, _ := n.Iter.Name.Literal.(string)
	var out []value.Value
	for _, item := range src.AsList() {
		i.set(name, item)
		out = append(out, i.eval(n.Body))
	}
	return value.List(out)
}

func (i *Interpreter) evalRepeat(n *ast.Repeat) value.Value {
	i.push()
	defer i.pop()

	name, _ := n.Action.Name.Literal.(string)
	i.eval(n.Action)

	if !i.average {
		for {
			cond := i.eval(n.Qualifier).Truthy()
			if n.Kind == ast.RepeatWhile && !cond {
				break
			}
			if n.Kind == ast.RepeatUntil && cond {
				break
			}
			i.eval(n.Action)
		}
	}

	result, _ := i.get(name)
	return result
}

func (i *Interpreter) evalAccumulate(n *ast.Accumulate) value.Value {
	i.push()
	defer i.pop()

	name, _ := n.Action.Name.Literal.(string)
	i.eval(n.Action)

	var out []value.Value
	v, _ := i.get(name)
	out = appendAccumulated(out, v)

	if !i.average {
		for i.eval(n.Qualifier).Truthy() {
			i.eval(n.Action)
			v, _ := i.get(name)
			out = appendAccumulated(out, v)
		}
	}

	return value.List(out)
}

func appendAccumulated(out []value.Value, v value.Value) []value.Value {
	if v.IsList() {
		return append(out, v.AsList()...)
	}
	return append(out, v)
}

func (i *Interpreter) evalCall(n *ast.Call) value.Value {
	name, _ := n.Name.Literal.(string)
	stmt, ok := i.functions[name]
	if !ok {
		i.fail(n.Name.Line, n.Name.Column, "Unknown function: %s", name)
	}

	switch fn := stmt.(type) {
	case *ast.Function:
		return i.callFunction(fn, n.Params)
	case *ast.Compositional:
		return i.callCompositional(fn, n.Params)
	default:
		i.fail(n.Name.Line, n.Name.Column, "Unknown function kind for %s", name)
		return value.Empty
	}
}

func (i *Interpreter) callFunction(fn *ast.Function, argExprs []ast.Expr) value.Value {
	i.push()
	defer i.pop()

	for idx, param := range fn.Params {
		var arg value.Value
		if idx < len(argExprs) {
			arg = i.eval(argExprs[idx])
		}
		i.set(param.Literal.(string), arg)
	}
	return i.eval(fn.Body)
}

// callNamed invokes a user function by name with already-evaluated
// arguments, used by callCompositional to dispatch to an identifier
// operand without re-evaluating an AST node.
func (i *Interpreter) callNamed(name string, args []value.Value) value.Value {
	stmt, ok := i.functions[name]
	if !ok {
		i.fail(0, 0, "Unknown function: %s", name)
	}
	fn, ok := stmt.(*ast.Function)
	if !ok {
		i.fail(0, 0, "%s is not an ordinary function", name)
	}

	i.push()
	defer i.pop()
	for idx, param := range fn.Params {
		var arg value.Value
		if idx < len(args) {
			arg = args[idx]
		}
		i.set(param.Literal.(string), arg)
	}
	return i.eval(fn.Body)
}

func (i *Interpreter) callCompositional(fn *ast.Compositional, argExprs []ast.Expr) value.Value {
	if len(argExprs) == 0 {
		i.fail(fn.Name.Line, fn.Name.Column, "Compositional %s requires one argument", fn.Name.Literal)
	}

	i.push()
	defer i.pop()

	res := i.eval(fn.Empty)
	arg := i.eval(argExprs[0])

	if arg.IsList() {
		for _, elem := range arg.AsList() {
			if fn.Union.Kind == token.IDENTIFIER {
				res = i.callNamed(fn.Union.Literal.(string), []value.Value{res, elem})
			} else {
				res = i.applyBinary(fn.Union, res, elem)
			}
		}
		return res
	}

	if fn.Singleton.Kind == token.IDENTIFIER {
		return i.callNamed(fn.Singleton.Literal.(string), []value.Value{arg})
	}
	return i.applyUnary(fn.Singleton, arg)
}
