package value

import "strings"

// AlignOp names one of the four text-align operators (spec.md §4.6).
type AlignOp string

const (
	AlignLeft   AlignOp = "|>"
	AlignRight  AlignOp = "<|"
	AlignCenter AlignOp = "<>"
	AlignBeside AlignOp = "||"
)

// rows splits a Value into display rows: a multi-line string splits on
// '\n', a list becomes one row per element's rendering, and a scalar
// becomes a single row.
func rows(v Value) []string {
	switch v.kind {
	case KindString:
		return strings.Split(v.str, "\n")
	case KindList:
		out := make([]string, len(v.list))
		for i, item := range v.list {
			out[i] = item.String()
		}
		return out
	default:
		return []string{v.String()}
	}
}

func maxWidth(rs []string) int {
	w := 0
	for _, r := range rs {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

func padCenter(s string, width int) string {
	if len(s) >= width {
		return s
	}
	total := width - len(s)
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// TextAlign combines left and right as text blocks per spec.md §4.6 and
// returns the result as a Str value.
func TextAlign(left, right Value, op AlignOp) Value {
	leftRows := rows(left)
	rightRows := rows(right)

	switch op {
	case AlignLeft, AlignRight, AlignCenter:
		width := maxWidth(leftRows)
		if w := maxWidth(rightRows); w > width {
			width = w
		}

		pad := padLeft
		if op == AlignRight {
			pad = padRight
		} else if op == AlignCenter {
			pad = padCenter
		}

		out := make([]string, 0, len(leftRows)+len(rightRows))
		for _, r := range leftRows {
			out = append(out, pad(r, width))
		}
		for _, r := range rightRows {
			out = append(out, pad(r, width))
		}
		return Str(strings.Join(out, "\n"))

	case AlignBeside:
		leftWidth := maxWidth(leftRows)
		rightWidth := maxWidth(rightRows)
		height := len(leftRows)
		if len(rightRows) > height {
			height = len(rightRows)
		}

		out := make([]string, height)
		for i := 0; i < height; i++ {
			l := ""
			if i < len(leftRows) {
				l = leftRows[i]
			}
			r := ""
			if i < len(rightRows) {
				r = rightRows[i]
			}
			out[i] = padLeft(l, leftWidth) + padLeft(r, rightWidth)
		}
		return Str(strings.Join(out, "\n"))
	}

	return Empty
}

// ExpandAlignmentMarkers preprocesses a string literal containing embedded
// alignment markers ("|>", "<|", "<>", "||") into the same layout TextAlign
// produces, splitting the literal into segments at each marker and folding
// them left-associatively (spec.md §4.6). A literal with no markers is
// returned unchanged.
func ExpandAlignmentMarkers(s string) Value {
	markers := []string{"|>", "<|", "<>", "||"}

	var texts []string
	var ops []AlignOp

	remaining := s
	for {
		idx := -1
		var found string
		for _, m := range markers {
			if i := strings.Index(remaining, m); i >= 0 && (idx == -1 || i < idx) {
				idx = i
				found = m
			}
		}
		if idx == -1 {
			texts = append(texts, remaining)
			break
		}
		texts = append(texts, remaining[:idx])
		ops = append(ops, AlignOp(found))
		remaining = remaining[idx+len(found):]
	}

	if len(texts) <= 1 {
		return Str(s)
	}

	result := Str(texts[0])
	for i, op := range ops {
		result = TextAlign(result, Str(texts[i+1]), op)
	}
	return result
}
