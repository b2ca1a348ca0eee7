package parser

import (
	"testing"

	"github.com/gregersn/trill/pkgs/errors"
	"github.com/gregersn/trill/pkgs/lexer"
	"github.com/gregersn/trill/pkgs/printer"
)

func parseSource(t *testing.T, src string) ([]string, *errors.Handler) {
	t.Helper()
	handler := errors.New()
	toks := lexer.New(src, handler).Tokenize()
	nodes := New(toks, handler).Parse()
	rendered := make([]string, len(nodes))
	for i, n := range nodes {
		rendered[i] = printer.Print(n)
	}
	return rendered, handler
}

func TestParseCanonicalForm(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{name: "unary dice", src: "d6", want: []string{"(d 6)"}},
		{name: "binary dice", src: "4d6", want: []string{"(d 4 6)"}},
		{
			name: "largest qualifier",
			src:  "sum largest 3 4d6",
			want: []string{"(sum (largest 3 (d 4 6)))"},
		},
		{
			name: "pick",
			src:  "{1,2,3} pick 4",
			want: []string{"(pick (collection 1 2 3) 4)"},
		},
		{
			name: "assign and conditional",
			src:  "x := 2; y := 3; if x = 2 & y = 3 then 42 else 24",
			want: []string{
				"(assign x 2)",
				"(assign y 3)",
				"(if (& (= x 2) (= y 3)) 42 24)",
			},
		},
		{
			name: "repeat until",
			src:  "repeat x := d8 until x < 8",
			want: []string{"(repeat (assign x (d 8)) until (< x 8))"},
		},
		{
			name: "text align chain",
			src:  `"1" |> "two" |> "three"`,
			want: []string{`(textalign |> (textalign |> "1" "two") "three")`},
		},
		{
			name: "function declaration",
			src:  "function double(n) = n * 2",
			want: []string{"(function double (n) (* n 2))"},
		},
		{
			name: "compositional declaration",
			src:  "compositional total(0, +, +)",
			want: []string{"(compositional total 0 + +)"},
		},
		{
			name: "textbox",
			src:  "3' d6",
			want: []string{"(textbox 3 (d 6))"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, handler := parseSource(t, tt.src)
			if handler.HasErrors() {
				t.Fatalf("unexpected parse errors: %v", handler.Errors)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d statements, want %d: %v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("statement %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseTrailingSemicolonIsAnError(t *testing.T) {
	_, handler := parseSource(t, "3d6;")
	if !handler.HasErrors() {
		t.Fatalf("expected a trailing ';' to be reported as a parse error")
	}
	first := handler.Errors[0]
	if first.Kind != errors.Parser {
		t.Fatalf("expected Parser error kind, got %v", first.Kind)
	}
	if first.Line != 1 || first.Column != 3 {
		t.Fatalf("expected error at line 1 column 3, got line %d column %d", first.Line, first.Column)
	}
}

func TestParseTotality(t *testing.T) {
	// Property: on any input the parser either returns a statement list
	// with no errors, or reports at least one error.
	cases := []string{
		"1 + 2",
		"(",
		"if 1 then 2",
		"function () = 1",
		"{1,2,3}",
	}
	for _, src := range cases {
		nodes, handler := parseSource(t, src)
		if handler.HasErrors() && len(nodes) > 0 {
			// Partial statements may still have parsed before the error;
			// the totality property only requires at least one error to
			// be present, not that parsing stopped immediately.
			continue
		}
		if !handler.HasErrors() && len(nodes) == 0 {
			t.Errorf("source %q: got no statements and no error", src)
		}
	}
}
