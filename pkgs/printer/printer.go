// Package printer renders a parsed program back to the canonical
// S-expression form used by the test suite's round-trip property (spec.md
// §4.5, §8 property 3). Every node has one fixed shape; Print never
// consults the value model or any evaluator state.
package printer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gregersn/trill/pkgs/ast"
)

// Print renders a single node.
func Print(n ast.Node) string {
	switch v := n.(type) {
	case *ast.Literal:
		return printLiteral(v)
	case *ast.Variable:
		return v.Name.Lexeme
	case *ast.Grouping:
		return Print(v.Expr)
	case *ast.Unary:
		return printUnary(v)
	case *ast.Binary:
		return printBinary(v)
	case *ast.List:
		return printList(v)
	case *ast.Pair:
		return fmt.Sprintf("(pair %s %s)", Print(v.First), Print(v.Second))
	case *ast.Block:
		return printBlock(v)
	case *ast.Assign:
		return fmt.Sprintf("(assign %s %s)", v.Name.Lexeme, Print(v.Value))
	case *ast.Conditional:
		return fmt.Sprintf("(if %s %s %s)", Print(v.Cond), Print(v.Then), Print(v.Else))
	case *ast.Foreach:
		return fmt.Sprintf("(foreach %s %s %s)", Print(v.Iter), Print(v.Source), Print(v.Body))
	case *ast.Repeat:
		return fmt.Sprintf("(repeat %s %s %s)", Print(v.Action), repeatKindWord(v.Kind), Print(v.Qualifier))
	case *ast.Accumulate:
		return fmt.Sprintf("(accumulate %s %s)", Print(v.Action), Print(v.Qualifier))
	case *ast.Call:
		return printCall(v)
	case *ast.TextAlign:
		return fmt.Sprintf("(textalign %s %s %s)", v.Op.Lexeme, Print(v.Left), Print(v.Right))
	case *ast.Function:
		return printFunction(v)
	case *ast.Compositional:
		return printCompositional(v)
	case *ast.Print:
		return fmt.Sprintf("(textbox %d %s)", v.Repeats, Print(v.Expr))
	default:
		return fmt.Sprintf("(unknown %T)", n)
	}
}

// Program renders a whole parsed source, one S-expression per top-level
// statement, separated by a single space — matching how §8's scenarios
// list one expected value per statement.
func Program(nodes []ast.Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = Print(n)
	}
	return strings.Join(parts, " ")
}

func printLiteral(n *ast.Literal) string {
	switch lit := n.Value.(type) {
	case nil:
		return "()"
	case int64:
		return strconv.FormatInt(lit, 10)
	case float64:
		return strconv.FormatFloat(lit, 'g', -1, 64)
	case string:
		return strconv.Quote(lit)
	default:
		return "()"
	}
}

func repeatKindWord(k ast.RepeatKind) string {
	if k == ast.RepeatUntil {
		return "until"
	}
	return "while"
}

// printUnary renders every prefix operator, including the unary dice forms
// ("d N" / "z N"), as "(<lexeme> right)" — spec.md §4.5's "(d M N)" shape
// with the M operand simply absent in the unary case.
func printUnary(n *ast.Unary) string {
	return fmt.Sprintf("(%s %s)", n.Op.Lexeme, Print(n.Right))
}

// printBinary renders every infix operator, including the binary dice form
// ("M d N" -> "(d M N)") and "count largest/least bag", as
// "(<lexeme> left right)".
func printBinary(n *ast.Binary) string {
	return fmt.Sprintf("(%s %s %s)", n.Op.Lexeme, Print(n.Left), Print(n.Right))
}

func printList(n *ast.List) string {
	parts := make([]string, len(n.Items))
	for i, item := range n.Items {
		parts[i] = Print(item)
	}
	return "(collection " + strings.Join(parts, " ") + ")"
}

func printBlock(n *ast.Block) string {
	parts := make([]string, len(n.Exprs))
	for i, e := range n.Exprs {
		parts[i] = Print(e)
	}
	return "(block " + strings.Join(parts, "; ") + ")"
}

func printCall(n *ast.Call) string {
	parts := make([]string, len(n.Params))
	for i, p := range n.Params {
		parts[i] = Print(p)
	}
	args := strings.Join(parts, " ")
	if args == "" {
		return fmt.Sprintf("(call %s)", n.Name.Lexeme)
	}
	return fmt.Sprintf("(call %s %s)", n.Name.Lexeme, args)
}

func printFunction(n *ast.Function) string {
	params := make([]string, len(n.Params))
	for i, p := range n.Params {
		params[i] = p.Lexeme
	}
	return fmt.Sprintf("(function %s (%s) %s)", n.Name.Lexeme, strings.Join(params, ","), Print(n.Body))
}

func printCompositional(n *ast.Compositional) string {
	return fmt.Sprintf("(compositional %s %s %s %s)", n.Name.Lexeme, Print(n.Empty), n.Singleton.Lexeme, n.Union.Lexeme)
}
