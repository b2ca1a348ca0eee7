package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gregersn/trill/pkgs/errors"
	"github.com/gregersn/trill/pkgs/token"
)

func kindsOf(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeKinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []token.Kind
	}{
		{
			name:  "unary dice",
			input: "d6",
			want:  []token.Kind{token.DICE, token.INTEGER, token.EOF},
		},
		{
			name:  "binary dice",
			input: "4d6",
			want:  []token.Kind{token.INTEGER, token.DICE, token.INTEGER, token.EOF},
		},
		{
			name:  "qualifier keywords",
			input: "sum largest 3 4d6",
			want: []token.Kind{
				token.SUM, token.LARGEST, token.INTEGER,
				token.INTEGER, token.DICE, token.INTEGER, token.EOF,
			},
		},
		{
			name:  "assignment and comparison",
			input: "x := 2; y := 3; if x = 2 & y = 3 then 42 else 24",
			want: []token.Kind{
				token.IDENTIFIER, token.ASSIGN, token.INTEGER, token.SEMICOLON,
				token.IDENTIFIER, token.ASSIGN, token.INTEGER, token.SEMICOLON,
				token.IF, token.IDENTIFIER, token.EQUAL, token.INTEGER, token.AND,
				token.IDENTIFIER, token.EQUAL, token.INTEGER, token.THEN, token.INTEGER,
				token.ELSE, token.INTEGER, token.EOF,
			},
		},
		{
			name:  "text align chain",
			input: `"1" |> "two" |> "three"`,
			want: []token.Kind{
				token.STRING, token.TEXTALIGN, token.STRING, token.TEXTALIGN, token.STRING, token.EOF,
			},
		},
		{
			name:  "pair value selector",
			input: "%1",
			want:  []token.Kind{token.PAIR_VALUE, token.EOF},
		},
		{
			name:  "comment is dropped",
			input: "1 \\ this is a comment\n2",
			want:  []token.Kind{token.INTEGER, token.INTEGER, token.EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := errors.New()
			toks := New(tt.input, handler).Tokenize()
			if diff := cmp.Diff(tt.want, kindsOf(toks)); diff != "" {
				t.Fatalf("token kinds mismatch (-want +got):\n%s", diff)
			}
			if handler.HasErrors() {
				t.Fatalf("unexpected lexer errors: %v", handler.Errors)
			}
		})
	}
}

func TestTokenizeAlwaysEndsInEOF(t *testing.T) {
	handler := errors.New()
	toks := New("1 + 2", handler).Tokenize()
	if len(toks) == 0 || toks[len(toks)-1].Kind != token.EOF {
		t.Fatalf("expected final token to be EOF, got %v", toks)
	}
}

func TestTokenizeReportsUnexpectedCharacter(t *testing.T) {
	handler := errors.New()
	New("1 $ 2", handler).Tokenize()
	if !handler.HasErrors() {
		t.Fatalf("expected a scanner error for an unexpected character")
	}
	if handler.Errors[0].Kind != errors.Scanner {
		t.Fatalf("expected Scanner error kind, got %v", handler.Errors[0].Kind)
	}
}

func TestNewResetsHandler(t *testing.T) {
	handler := errors.New()
	New("1 $ 2", handler).Tokenize()
	if !handler.HasErrors() {
		t.Fatalf("expected the first run to report an error")
	}
	New("1 + 2", handler).Tokenize()
	if handler.HasErrors() {
		t.Fatalf("expected construction to reset prior errors")
	}
}
