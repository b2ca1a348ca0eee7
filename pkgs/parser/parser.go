// Package parser implements the recursive-descent parser of spec.md §4.2:
// tokens to an AST, reporting syntactic errors into an errors.Handler
// instead of failing outright. On a parse error the offending declaration
// is dropped and the parser resynchronizes at the next statement boundary
// so later problems in the same source can still be surfaced.
package parser

import (
	"github.com/gregersn/trill/pkgs/ast"
	"github.com/gregersn/trill/pkgs/errors"
	"github.com/gregersn/trill/pkgs/token"
)

// Parser holds the token stream and cursor for one parse.
type Parser struct {
	tokens  []token.Token
	current int
	handler *errors.Handler
}

// New creates a Parser over tokens, reporting into handler.
func New(tokens []token.Token, handler *errors.Handler) *Parser {
	return &Parser{tokens: tokens, handler: handler}
}

// Parse consumes the whole token stream, returning the top-level program
// as a flat list of declarations (spec.md §4.2's
// "declaration → function | compositional | print | expression").
// Semicolons between top-level entries are separators, not terminators: a
// ';' with nothing meaningful after it is itself a parse error.
func (p *Parser) Parse() []ast.Node {
	var nodes []ast.Node

	for !p.atEnd() {
		if p.check(token.SEMICOLON) {
			tok := p.advance()
			p.handler.Report(errors.Parser, tok.Line, tok.Column, "Unexpected semicolon: ;")
			continue
		}

		if node := p.safeDeclaration(); node != nil {
			nodes = append(nodes, node)
		}

		if p.check(token.SEMICOLON) {
			semi := p.advance()
			if p.atEnd() {
				p.handler.Report(errors.Parser, semi.Line, semi.Column, "Unexpected semicolon: ;")
			}
		}
	}

	return nodes
}

// --- cursor primitives -----------------------------------------------

func (p *Parser) atEnd() bool {
	return p.peek().Kind == token.EOF
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.current]
}

func (p *Parser) peekAt(offset int) token.Token {
	idx := p.current + offset
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) previous() token.Token {
	return p.tokens[p.current-1]
}

func (p *Parser) check(kind token.Kind) bool {
	if p.atEnd() {
		return kind == token.EOF
	}
	return p.peek().Kind == kind
}

func (p *Parser) advance() token.Token {
	if !p.atEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(kind token.Kind, message string) token.Token {
	if p.check(kind) {
		return p.advance()
	}
	p.fail(p.peek(), message)
	return token.Token{}
}

// parseError unwinds a single declaration to Parse's recovery point.
type parseError struct{}

func (p *Parser) fail(tok token.Token, message string) {
	p.handler.Report(errors.Parser, tok.Line, tok.Column, "%s", message)
	panic(parseError{})
}

func (p *Parser) synchronize() {
	for !p.atEnd() {
		if p.check(token.SEMICOLON) {
			return
		}
		p.advance()
	}
}

func (p *Parser) safeDeclaration() (node ast.Node) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseError); ok {
				p.synchronize()
				node = nil
				return
			}
			panic(r)
		}
	}()
	return p.declaration()
}

// --- declarations ------------------------------------------------------

func (p *Parser) declaration() ast.Node {
	if p.check(token.FUNCTION) {
		return p.functionDecl()
	}
	if p.check(token.COMPOSITIONAL) {
		return p.compositionalDecl()
	}
	if p.check(token.TEXTBOX) {
		return p.printDecl(1)
	}
	if p.check(token.INTEGER) && p.peekAt(1).Kind == token.TEXTBOX {
		count := p.advance()
		return p.printDecl(int(count.Literal.(int64)))
	}
	return p.topExpression()
}

func (p *Parser) functionDecl() *ast.Function {
	p.advance() // FUNCTION
	name := p.consume(token.IDENTIFIER, "Expected function name")
	p.consume(token.LPAREN, "Expected '(' after function name")

	var params []token.Token
	if !p.check(token.RPAREN) {
		params = append(params, p.consume(token.IDENTIFIER, "Expected parameter name"))
		for p.match(token.COMMA) {
			params = append(params, p.consume(token.IDENTIFIER, "Expected parameter name"))
		}
	}
	p.consume(token.RPAREN, "Expected ')' after parameters")
	p.consume(token.EQUAL, "Expected '=' before function body")
	body := p.parseExpression()

	return &ast.Function{Name: name, Params: params, Body: body}
}

func (p *Parser) compositionalDecl() *ast.Compositional {
	p.advance() // COMPOSITIONAL
	name := p.consume(token.IDENTIFIER, "Expected compositional name")
	p.consume(token.LPAREN, "Expected '(' after compositional name")

	empty := p.parseExpression()
	p.consume(token.COMMA, "Expected ',' after empty value")
	singleton := p.operand()
	p.consume(token.COMMA, "Expected ',' after singleton operand")
	union := p.operand()
	p.consume(token.RPAREN, "Expected ')' after compositional operands")

	return &ast.Compositional{Name: name, Empty: empty, Singleton: singleton, Union: union}
}

// operand consumes the single token naming a compositional's singleton or
// union step: either an IDENTIFIER referencing another function, or a
// single operator token applied via Unary/Binary.
func (p *Parser) operand() ast.Operand {
	if p.atEnd() {
		p.fail(p.peek(), "Expected an operand")
	}
	return p.advance()
}

func (p *Parser) printDecl(repeats int) *ast.Print {
	p.consume(token.TEXTBOX, "Expected \"'\"")
	expr := p.parseExpression()
	return &ast.Print{Expr: expr, Repeats: repeats}
}

// topExpression parses one expression and folds any following TEXTALIGN
// operators into a left-associative chain (spec.md §4.2's "at top level").
func (p *Parser) topExpression() ast.Expr {
	expr := p.parseExpression()
	for p.check(token.TEXTALIGN) {
		op := p.advance()
		right := p.parseExpression()
		expr = &ast.TextAlign{Left: expr, Op: op, Right: right}
	}
	return expr
}

// --- expression precedence chain ---------------------------------------

func (p *Parser) parseExpression() ast.Expr {
	if p.match(token.IF) {
		return p.ifExpression()
	}
	if p.match(token.ACCUMULATE) {
		return p.accumulateExpression()
	}
	if p.match(token.REPEAT) {
		return p.repeatExpression()
	}
	if p.match(token.FOREACH) {
		return p.foreachExpression()
	}
	return p.assignment()
}

func (p *Parser) ifExpression() ast.Expr {
	cond := p.parseExpression()
	p.consume(token.THEN, "Missing THEN after condition")
	then := p.parseExpression()
	p.consume(token.ELSE, "Missing ELSE after true result")
	els := p.parseExpression()
	return &ast.Conditional{Cond: cond, Then: then, Else: els}
}

func (p *Parser) foreachExpression() ast.Expr {
	iterExpr := p.primary()
	iter, ok := iterExpr.(*ast.Variable)
	if !ok {
		p.fail(p.previous(), "Expected a variable after FOREACH")
	}
	p.consume(token.IN, "Expecting IN")
	source := p.parseExpression()
	p.consume(token.DO, "Expected DO")
	body := p.parseExpression()
	return &ast.Foreach{Iter: iter, Source: source, Body: body}
}

func (p *Parser) repeatExpression() ast.Expr {
	action := p.assignment()
	assign, ok := action.(*ast.Assign)
	if !ok {
		p.fail(p.previous(), "Expected an assignment as the repeat action")
	}

	var kind ast.RepeatKind
	switch {
	case p.match(token.WHILE):
		kind = ast.RepeatWhile
	case p.match(token.UNTIL):
		kind = ast.RepeatUntil
	default:
		p.fail(p.peek(), "Expected WHILE or UNTIL after repeat action")
	}

	qualifier := p.parseExpression()
	return &ast.Repeat{Kind: kind, Action: assign, Qualifier: qualifier}
}

func (p *Parser) accumulateExpression() ast.Expr {
	action := p.assignment()
	assign, ok := action.(*ast.Assign)
	if !ok {
		p.fail(p.previous(), "Expected an assignment as the accumulate action")
	}
	p.consume(token.WHILE, "Expect a WHILE clause in accumulation")
	qualifier := p.parseExpression()
	return &ast.Accumulate{Action: assign, Qualifier: qualifier}
}

func (p *Parser) assignment() ast.Expr {
	expr := p.comparison()

	if p.match(token.ASSIGN) {
		value := p.assignment()
		if v, ok := expr.(*ast.Variable); ok {
			return &ast.Assign{Name: v.Name, Value: value}
		}
		p.fail(p.previous(), "Invalid assignment target")
	}

	return expr
}

func (p *Parser) comparison() ast.Expr {
	expr := p.picker()
	for p.match(token.RANGE, token.DEFAULT) {
		op := p.previous()
		right := p.picker()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) picker() ast.Expr {
	expr := p.combination()
	for p.match(token.DROP, token.KEEP, token.PICK, token.MINUSMINUS) {
		op := p.previous()
		right := p.combination()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) combination() ast.Expr {
	expr := p.term()
	for p.match(token.UNION, token.AND) {
		op := p.previous()
		right := p.term()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) term() ast.Expr {
	expr := p.factor()
	for p.match(token.PLUS, token.MINUS) {
		op := p.previous()
		right := p.factor()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) factor() ast.Expr {
	expr := p.unary()
	for p.match(token.MULTIPLY, token.DIVIDE, token.MODULO) {
		op := p.previous()
		right := p.unary()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) unary() ast.Expr {
	if p.match(token.CALL) {
		return p.call()
	}
	if p.match(token.MINUS, token.PROBABILITY) {
		op := p.previous()
		right := p.qualifier()
		return &ast.Unary{Op: op, Right: right}
	}
	return p.qualifier()
}

func (p *Parser) call() ast.Expr {
	name := p.consume(token.IDENTIFIER, "Expected function name after CALL")
	p.consume(token.LPAREN, "Expected '(' after function name")

	var params []ast.Expr
	if !p.check(token.RPAREN) {
		params = append(params, p.parseExpression())
		for p.match(token.COMMA) {
			params = append(params, p.parseExpression())
		}
	}
	p.consume(token.RPAREN, "Expected ')' after call arguments")
	return &ast.Call{Name: name, Params: params}
}

var qualifierPrefixOps = []token.Kind{
	token.CHOOSE, token.COUNT, token.SUM, token.SIGN, token.MIN, token.MAX,
	token.DIFFERENT, token.MINIMAL, token.MAXIMAL, token.MEDIAN,
	token.PAIR_VALUE, token.NOT,
}

func (p *Parser) qualifier() ast.Expr {
	if p.match(token.LARGEST, token.LEAST) {
		op := p.previous()
		count := p.parseExpression()
		atom := p.diceroll()
		return &ast.Binary{Left: count, Op: op, Right: atom}
	}

	if p.match(qualifierPrefixOps...) {
		op := p.previous()
		right := p.qualifier()
		return &ast.Unary{Op: op, Right: right}
	}

	return p.filter()
}

var comparisonOps = []token.Kind{
	token.LESS_THAN, token.GREATER_THAN, token.LESS_THAN_OR_EQUAL,
	token.GREATER_THAN_OR_EQUAL, token.EQUAL, token.NOT_EQUAL,
}

func (p *Parser) filter() ast.Expr {
	expr := p.samples()
	for p.match(comparisonOps...) {
		op := p.previous()
		right := p.factor()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) samples() ast.Expr {
	expr := p.diceroll()
	if p.match(token.SAMPLES) {
		op := p.previous()
		right := p.parseExpression()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) diceroll() ast.Expr {
	if p.match(token.DICE) {
		op := p.previous()
		right := p.primary()
		return &ast.Unary{Op: op, Right: right}
	}

	expr := p.primary()

	if p.match(token.DICE) {
		op := p.previous()
		right := p.primary()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}

	return expr
}

func (p *Parser) primary() ast.Expr {
	if p.match(token.INTEGER, token.FLOAT) {
		return &ast.Literal{Value: p.previous().Literal}
	}

	if p.match(token.STRING) {
		return &ast.Literal{Value: p.previous().Literal}
	}

	if p.match(token.IDENTIFIER) {
		return &ast.Variable{Name: p.previous()}
	}

	if p.match(token.LPAREN) {
		return p.groupingOrBlock()
	}

	if p.match(token.LBRACKET) {
		var items []ast.Expr
		for !p.check(token.RBRACKET) {
			items = append(items, p.parseExpression())
			if !p.check(token.RBRACKET) {
				p.consume(token.COMMA, "Expect ',' to separate elements.")
			}
		}
		p.consume(token.RBRACKET, "Missing '}' to close list.")
		return &ast.List{Items: items}
	}

	if p.match(token.LSQUARE) {
		a := p.parseExpression()
		p.consume(token.COMMA, "Expect ',' to separate pair.")
		b := p.parseExpression()
		p.consume(token.RSQUARE, "Missing ']' to close pair.")
		return &ast.Pair{First: a, Second: b}
	}

	p.fail(p.peek(), "Unexpected token: "+p.peek().Kind.String())
	return nil
}

func (p *Parser) groupingOrBlock() ast.Expr {
	first := p.parseExpression()

	if p.match(token.SEMICOLON) {
		exprs := []ast.Expr{first}
		for !p.match(token.RPAREN) {
			exprs = append(exprs, p.parseExpression())
			if !p.check(token.RPAREN) {
				p.consume(token.SEMICOLON, "Expected a semi colon")
			}
		}
		return &ast.Block{Exprs: exprs}
	}

	p.consume(token.RPAREN, "Expected closing parenthesis.")
	return &ast.Grouping{Expr: first}
}
