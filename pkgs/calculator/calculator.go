package calculator

import (
	"github.com/gregersn/trill/pkgs/ast"
	"github.com/gregersn/trill/pkgs/errors"
	"github.com/gregersn/trill/pkgs/token"
	"github.com/gregersn/trill/pkgs/value"
)

// calcError unwinds to Run's recovery point, mirroring the interpreter's
// own panic/recover boundary for a fatal type violation.
type calcError struct{}

// binding is a variable's compiled value inside the calculator: a
// representative scalar (used for structural reasoning — counts, pair
// indices) alongside its full distribution.
type binding struct {
	rep  value.Value
	dist *Distribution
}

// Calculator is the probability-calculator visitor of spec.md §4.4: an
// independent tree walk over the same AST the interpreter uses, producing
// distributions by convolution instead of sampled values.
type Calculator struct {
	handler   *errors.Handler
	frames    []map[string]binding
	functions map[string]ast.Stmt
}

// New creates a Calculator reporting into handler.
func New(handler *errors.Handler) *Calculator {
	return &Calculator{handler: handler}
}

// Result is one top-level statement's calculator output.
type Result struct {
	Value  value.Value
	Report Report
}

// Run evaluates every non-declaration statement in nodes, returning one
// Result per statement. Declarations are registered first, as in the
// interpreter.
func (c *Calculator) Run(nodes []ast.Node) (results []Result, err error) {
	c.frames = []map[string]binding{{}}
	c.functions = map[string]ast.Stmt{}

	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(calcError); ok {
				results = nil
				if d := c.handler.First(); d != nil {
					err = *d
				}
				return
			}
			panic(r)
		}
	}()

	for _, n := range nodes {
		if isDecl(n) {
			c.declare(n)
		}
	}
	for _, n := range nodes {
		if isDecl(n) {
			continue
		}
		expr, ok := n.(ast.Expr)
		if !ok {
			c.fail(0, 0, "Unsupported top-level statement in probability calculator")
		}
		rep, dist := c.calc(expr)
		results = append(results, Result{Value: rep, Report: normalize(dist)})
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

func (c *Calculator) declare(n ast.Node) {
	switch v := n.(type) {
	case *ast.Function:
		c.functions[v.Name.Literal.(string)] = v
	case *ast.Compositional:
		c.functions[v.Name.Literal.(string)] = v
	}
}

func (c *Calculator) fail(line, col int, format string, args ...interface{}) {
	c.handler.Report(errors.Interpreter, line, col, format, args...)
	panic(calcError{})
}

func (c *Calculator) push() { c.frames = append(c.frames, map[string]binding{}) }
func (c *Calculator) pop()  { c.frames = c.frames[:len(c.frames)-1] }

func (c *Calculator) set(name string, b binding) {
	c.frames[len(c.frames)-1][name] = b
}

func (c *Calculator) get(name string) (binding, bool) {
	for idx := len(c.frames) - 1; idx >= 0; idx-- {
		if b, ok := c.frames[idx][name]; ok {
			return b, true
		}
	}
	return binding{}, false
}

// calc is the main dispatch: every node produces a representative value
// (for structural use — counts, conditions) and the distribution over its
// outcomes.
func (c *Calculator) calc(e ast.Expr) (value.Value, *Distribution) {
	switch n := e.(type) {
	case *ast.Literal:
		return c.calcLiteral(n)
	case *ast.Variable:
		return c.calcVariable(n)
	case *ast.Grouping:
		return c.calc(n.Expr)
	case *ast.Unary:
		return c.calcUnary(n)
	case *ast.Binary:
		return c.calcBinary(n)
	case *ast.List:
		return c.calcList(n)
	case *ast.Pair:
		return c.calcPair(n)
	case *ast.Block:
		return c.calcBlock(n)
	case *ast.Assign:
		return c.calcAssign(n)
	case *ast.Conditional:
		return c.calcConditional(n)
	case *ast.Call:
		return c.calcCall(n)
	case *ast.Foreach:
		c.fail(0, 0, "foreach is not supported in the probability calculator")
	case *ast.Repeat:
		c.fail(0, 0, "repeat is not supported in the probability calculator")
	case *ast.Accumulate:
		c.fail(0, 0, "accumulate is not supported in the probability calculator")
	case *ast.TextAlign:
		c.fail(0, 0, "text alignment is not supported in the probability calculator")
	default:
		c.fail(0, 0, "Unknown expression node %T", e)
	}
	return value.Empty, nil
}

func (c *Calculator) calcLiteral(n *ast.Literal) (value.Value, *Distribution) {
	var v value.Value
	switch lit := n.Value.(type) {
	case nil:
		v = value.Empty
	case int64:
		v = value.Int(lit)
	case float64:
		v = value.Float(lit)
	case string:
		v = value.Str(lit)
	default:
		v = value.Empty
	}
	return v, single(scalarOutcome(v))
}

func (c *Calculator) calcVariable(n *ast.Variable) (value.Value, *Distribution) {
	name, _ := n.Name.Literal.(string)
	b, ok := c.get(name)
	if !ok {
		c.fail(n.Name.Line, n.Name.Column, "Unbound identifier: %s", name)
	}
	return b.rep, b.dist
}

func (c *Calculator) calcList(n *ast.List) (value.Value, *Distribution) {
	// A literal list's components are independent random variables: the
	// distribution over the whole list is their Cartesian product.
	dist := single(scalarOutcome(value.List(nil)))
	var repItems []value.Value
	for _, item := range n.Items {
		rep, idist := c.calc(item)
		repItems = append(repItems, rep)
		dist = convolve(dist, idist, func(acc, next Outcome) Outcome {
			list := append([]value.Value{}, acc.Values()...)
			if next.IsGroup || next.Scalar.IsList() {
				list = append(list, next.Values()...)
			} else {
				list = append(list, next.Scalar)
			}
			return scalarOutcome(value.List(list))
		})
	}
	return value.List(repItems), dist
}

func (c *Calculator) calcPair(n *ast.Pair) (value.Value, *Distribution) {
	firstRep, firstDist := c.calc(n.First)
	secondRep, secondDist := c.calc(n.Second)
	dist := convolve(firstDist, secondDist, func(a, b Outcome) Outcome {
		return scalarOutcome(value.Pair(a.AsValue(), b.AsValue()))
	})
	return value.Pair(firstRep, secondRep), dist
}

func (c *Calculator) calcBlock(n *ast.Block) (value.Value, *Distribution) {
	c.push()
	defer c.pop()

	rep := value.Empty
	dist := single(scalarOutcome(value.Empty))
	for _, e := range n.Exprs {
		rep, dist = c.calc(e)
	}
	return rep, dist
}

func (c *Calculator) calcAssign(n *ast.Assign) (value.Value, *Distribution) {
	rep, dist := c.calc(n.Value)
	name, _ := n.Name.Literal.(string)
	c.set(name, binding{rep: rep, dist: dist})
	return rep, dist
}

func (c *Calculator) calcConditional(n *ast.Conditional) (value.Value, *Distribution) {
	cond, _ := c.calc(n.Cond)
	if cond.Truthy() {
		return c.calc(n.Then)
	}
	return c.calc(n.Else)
}

func (c *Calculator) calcCall(n *ast.Call) (value.Value, *Distribution) {
	name, _ := n.Name.Literal.(string)
	stmt, ok := c.functions[name]
	if !ok {
		c.fail(n.Name.Line, n.Name.Column, "Unknown function: %s", name)
	}

	switch fn := stmt.(type) {
	case *ast.Function:
		return c.callFunction(fn, n.Params)
	case *ast.Compositional:
		return c.callCompositional(fn, n.Params)
	default:
		c.fail(n.Name.Line, n.Name.Column, "Unknown function kind for %s", name)
		return value.Empty, nil
	}
}

func (c *Calculator) callFunction(fn *ast.Function, argExprs []ast.Expr) (value.Value, *Distribution) {
	c.push()
	defer c.pop()

	for idx, param := range fn.Params {
		var b binding
		if idx < len(argExprs) {
			rep, dist := c.calc(argExprs[idx])
			b = binding{rep: rep, dist: dist}
		} else {
			b = binding{rep: value.Empty, dist: single(scalarOutcome(value.Empty))}
		}
		c.set(param.Literal.(string), b)
	}
	return c.calc(fn.Body)
}

func (c *Calculator) callNamed(name string, args []binding) (value.Value, *Distribution) {
	stmt, ok := c.functions[name]
	if !ok {
		c.fail(0, 0, "Unknown function: %s", name)
	}
	fn, ok := stmt.(*ast.Function)
	if !ok {
		c.fail(0, 0, "%s is not an ordinary function", name)
	}

	c.push()
	defer c.pop()
	for idx, param := range fn.Params {
		var b binding
		if idx < len(args) {
			b = args[idx]
		} else {
			b = binding{rep: value.Empty, dist: single(scalarOutcome(value.Empty))}
		}
		c.set(param.Literal.(string), b)
	}
	return c.calc(fn.Body)
}

func (c *Calculator) callCompositional(fn *ast.Compositional, argExprs []ast.Expr) (value.Value, *Distribution) {
	if len(argExprs) == 0 {
		c.fail(fn.Name.Line, fn.Name.Column, "Compositional %s requires one argument", fn.Name.Literal)
	}

	c.push()
	defer c.pop()

	resRep, resDist := c.calc(fn.Empty)
	argRep, argDist := c.calc(argExprs[0])

	if argRep.IsList() {
		for _, elemRep := range argRep.AsList() {
			elemDist := single(scalarOutcome(elemRep))
			if fn.Union.Kind == token.IDENTIFIER {
				resRep, resDist = c.callNamed(fn.Union.Literal.(string), []binding{
					{rep: resRep, dist: resDist},
					{rep: elemRep, dist: elemDist},
				})
				continue
			}
			newDist := convolve(resDist, elemDist, func(a, b Outcome) Outcome {
				return scalarOutcome(applyBinaryValue(fn.Union, a.AsValue(), b.AsValue()))
			})
			resRep = applyBinaryValue(fn.Union, resRep, elemRep)
			resDist = newDist
		}
		return resRep, resDist
	}

	if fn.Singleton.Kind == token.IDENTIFIER {
		return c.callNamed(fn.Singleton.Literal.(string), []binding{{rep: argRep, dist: argDist}})
	}
	rep := applyUnaryValue(fn.Singleton, argRep)
	dist := lift(argDist, func(o Outcome) Outcome { return scalarOutcome(applyUnaryValue(fn.Singleton, o.AsValue())) })
	return rep, dist
}
