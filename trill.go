// Package trill is the library entry point for the Trill dice-probability
// language: tokenize, parse, then either sample the program or compute its
// exact outcome distribution, per spec.md §6.
package trill

import (
	"time"

	"github.com/gregersn/trill/pkgs/ast"
	"github.com/gregersn/trill/pkgs/calculator"
	"github.com/gregersn/trill/pkgs/errors"
	"github.com/gregersn/trill/pkgs/interpreter"
	"github.com/gregersn/trill/pkgs/lexer"
	"github.com/gregersn/trill/pkgs/parser"
	"github.com/gregersn/trill/pkgs/randsrc"
	"github.com/gregersn/trill/pkgs/value"
)

// Options controls a single evaluation. The zero value samples with a
// freshly-seeded random source.
type Options struct {
	Average bool  // use expected values instead of random draws
	Seed    int64 // fixes the random source when Seeded is true
	Seeded  bool
}

// Run implements the library entry point of spec.md §6: tokenize, parse,
// then evaluate, halting at the first phase that reports an error.
func Run(source string, opts Options) ([]value.Value, []errors.Diagnostic) {
	handler := errors.New()

	nodes, ok := compile(source, handler)
	if !ok {
		return nil, handler.Errors
	}

	seed := opts.Seed
	if !opts.Seeded {
		seed = time.Now().UnixNano()
	}
	src := randsrc.New(seed)

	interp := interpreter.New(handler, src)
	results, err := interp.Run(nodes, opts.Average)
	if err != nil {
		return nil, handler.Errors
	}
	return results, nil
}

// Distribute runs the probability calculator over source, returning one
// Report per top-level statement (spec.md §4.4).
func Distribute(source string) ([]calculator.Result, []errors.Diagnostic) {
	handler := errors.New()

	nodes, ok := compile(source, handler)
	if !ok {
		return nil, handler.Errors
	}

	calc := calculator.New(handler)
	results, err := calc.Run(nodes)
	if err != nil {
		return nil, handler.Errors
	}
	return results, nil
}

// compile runs the tokenize/parse phases shared by Run and Distribute,
// halting before evaluation if either phase reports an error (spec.md §6
// steps 1-4).
func compile(source string, handler *errors.Handler) ([]ast.Node, bool) {
	toks := lexer.New(source, handler).Tokenize()
	if handler.HasErrors() {
		return nil, false
	}

	nodes := parser.New(toks, handler).Parse()
	if handler.HasErrors() {
		return nil, false
	}
	return nodes, true
}
