// Package token defines the closed set of lexical token kinds produced by
// the Trill tokenizer and the Token record the parser consumes.
package token

import "fmt"

// Kind identifies the lexical category of a Token.
type Kind int

const (
	ILLEGAL Kind = iota
	EOF

	PLUS
	MINUS
	MULTIPLY
	DIVIDE
	MODULO

	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	LSQUARE
	RSQUARE
	COMMA
	SEMICOLON

	SAMPLES
	DICE

	INTEGER
	FLOAT
	STRING
	IDENTIFIER

	UNION
	SUM
	SIGN
	COUNT
	PICK
	CHOOSE
	DEFAULT
	AND
	NOT

	ASSIGN
	EQUAL
	NOT_EQUAL
	LESS_THAN
	LESS_THAN_OR_EQUAL
	GREATER_THAN
	GREATER_THAN_OR_EQUAL

	MINUSMINUS
	DROP
	KEEP
	DIFFERENT
	MIN
	MAX
	MINIMAL
	MAXIMAL
	MEDIAN
	LARGEST
	LEAST

	RANGE
	PAIR_VALUE

	IF
	THEN
	ELSE
	FOREACH
	IN
	DO
	REPEAT
	WHILE
	UNTIL
	ACCUMULATE

	FUNCTION
	COMPOSITIONAL
	CALL

	PROBABILITY
	TEXTBOX
	TEXTALIGN

	COMMENT
)

var names = [...]string{
	ILLEGAL:               "ILLEGAL",
	EOF:                   "EOF",
	PLUS:                  "PLUS",
	MINUS:                 "MINUS",
	MULTIPLY:              "MULTIPLY",
	DIVIDE:                "DIVIDE",
	MODULO:                "MODULO",
	LPAREN:                "LPAREN",
	RPAREN:                "RPAREN",
	LBRACKET:              "LBRACKET",
	RBRACKET:              "RBRACKET",
	LSQUARE:               "LSQUARE",
	RSQUARE:               "RSQUARE",
	COMMA:                 "COMMA",
	SEMICOLON:             "SEMICOLON",
	SAMPLES:               "SAMPLES",
	DICE:                  "DICE",
	INTEGER:               "INTEGER",
	FLOAT:                 "FLOAT",
	STRING:                "STRING",
	IDENTIFIER:            "IDENTIFIER",
	UNION:                 "UNION",
	SUM:                   "SUM",
	SIGN:                  "SIGN",
	COUNT:                 "COUNT",
	PICK:                  "PICK",
	CHOOSE:                "CHOOSE",
	DEFAULT:               "DEFAULT",
	AND:                   "AND",
	NOT:                   "NOT",
	ASSIGN:                "ASSIGN",
	EQUAL:                 "EQUAL",
	NOT_EQUAL:             "NOT_EQUAL",
	LESS_THAN:             "LESS_THAN",
	LESS_THAN_OR_EQUAL:    "LESS_THAN_OR_EQUAL",
	GREATER_THAN:          "GREATER_THAN",
	GREATER_THAN_OR_EQUAL: "GREATER_THAN_OR_EQUAL",
	MINUSMINUS:            "MINUSMINUS",
	DROP:                  "DROP",
	KEEP:                  "KEEP",
	DIFFERENT:             "DIFFERENT",
	MIN:                   "MIN",
	MAX:                   "MAX",
	MINIMAL:               "MINIMAL",
	MAXIMAL:               "MAXIMAL",
	MEDIAN:                "MEDIAN",
	LARGEST:               "LARGEST",
	LEAST:                 "LEAST",
	RANGE:                 "RANGE",
	PAIR_VALUE:            "PAIR_VALUE",
	IF:                    "IF",
	THEN:                  "THEN",
	ELSE:                  "ELSE",
	FOREACH:               "FOREACH",
	IN:                    "IN",
	DO:                    "DO",
	REPEAT:                "REPEAT",
	WHILE:                 "WHILE",
	UNTIL:                 "UNTIL",
	ACCUMULATE:            "ACCUMULATE",
	FUNCTION:              "FUNCTION",
	COMPOSITIONAL:         "COMPOSITIONAL",
	CALL:                  "CALL",
	PROBABILITY:           "PROBABILITY",
	TEXTBOX:               "TEXTBOX",
	TEXTALIGN:             "TEXTALIGN",
	COMMENT:               "COMMENT",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(names) && names[k] != "" {
		return names[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Keywords maps reserved identifier spellings to their token kind. Anything
// not present here lexes as IDENTIFIER.
var Keywords = map[string]Kind{
	"mod":           MODULO,
	"sgn":           SIGN,
	"sum":           SUM,
	"count":         COUNT,
	"pick":          PICK,
	"choose":        CHOOSE,
	"drop":          DROP,
	"keep":          KEEP,
	"different":     DIFFERENT,
	"min":           MIN,
	"max":           MAX,
	"minimal":       MINIMAL,
	"maximal":       MAXIMAL,
	"median":        MEDIAN,
	"largest":       LARGEST,
	"least":         LEAST,
	"if":            IF,
	"then":          THEN,
	"else":          ELSE,
	"foreach":       FOREACH,
	"in":            IN,
	"do":            DO,
	"repeat":        REPEAT,
	"while":         WHILE,
	"until":         UNTIL,
	"accumulate":    ACCUMULATE,
	"function":      FUNCTION,
	"compositional": COMPOSITIONAL,
	"call":          CALL,
}

// Literal is the optional scanned value carried by a token: nil, an int64,
// a float64, or a string.
type Literal interface{}

// Token is an immutable lexical record. Equality (see Equal) ignores
// position, matching §3 of the language spec.
type Token struct {
	Kind    Kind
	Lexeme  string
	Literal Literal
	Line    int
	Column  int
}

// New constructs a Token at the given source position.
func New(kind Kind, lexeme string, literal Literal, line, column int) Token {
	return Token{Kind: kind, Lexeme: lexeme, Literal: literal, Line: line, Column: column}
}

// Equal reports whether two tokens carry the same kind, lexeme and literal,
// ignoring line/column.
func (t Token) Equal(o Token) bool {
	return t.Kind == o.Kind && t.Lexeme == o.Lexeme && t.Literal == o.Literal
}

func (t Token) String() string {
	if t.Literal == nil {
		return fmt.Sprintf("%s %s", t.Kind, t.Lexeme)
	}
	return fmt.Sprintf("%s %s %v", t.Kind, t.Lexeme, t.Literal)
}
