package mathvm

import (
	"strconv"
	"strings"
)

// Position is a location in the source text.
type Position struct {
	// Line is the 1-based line number.
	Line int
	// Col is the 1-based column number, counted in runes.
	Col int
	// Offset is the 0-based byte offset.
	Offset int
}

func (p Position) String() string {
	return "line " + strconv.Itoa(p.Line) + ", column " + strconv.Itoa(p.Col)
}

// errpos is a shortcut to create an error message with a position.
func errpos(msg string, pos Position) string {
	return msg + " at " + pos.String()
}

// PosError is an error with source position information. Every error
// Compile returns implements PosError.
type PosError interface {
	error
	// Position returns the position of the source construct that caused
	// the error.
	Position() Position
}

var (
	_ PosError = (*LexError)(nil)
	_ PosError = (*EmptyExpressionError)(nil)
	_ PosError = (*UnexpectedTokenError)(nil)
	_ PosError = (*UnmatchedParenError)(nil)
	_ PosError = (*UnknownFunctionError)(nil)
	_ PosError = (*ArityError)(nil)
)

// Render formats an error for display. For a PosError it appends the
// offending source line with a caret under the exact column, and a fix-it
// hint when one applies:
//
//	function "sin" expects 1 argument, got 2 at line 1, column 5
//	  1 | 2 + sin(1, 2)
//	          ^
//	hint: check the function documentation for the correct number of arguments
//
// Other errors render as their message alone.
func Render(err error, src string) string {
	var b strings.Builder
	b.WriteString(err.Error())
	if pe, ok := err.(PosError); ok {
		pos := pe.Position()
		lines := strings.Split(src, "\n")
		if pos.Line >= 1 && pos.Line <= len(lines) {
			gutter := "  " + strconv.Itoa(pos.Line) + " | "
			b.WriteByte('\n')
			b.WriteString(gutter)
			b.WriteString(lines[pos.Line-1])
			b.WriteByte('\n')
			b.WriteString(strings.Repeat(" ", len(gutter)+pos.Col-1))
			b.WriteByte('^')
		}
	}
	if h := hint(err); h != "" {
		b.WriteString("\nhint: ")
		b.WriteString(h)
	}
	return b.String()
}

func hint(err error) string {
	switch err.(type) {
	case *UnmatchedParenError:
		return "check that every opening parenthesis has a matching closing parenthesis"
	case *UnknownFunctionError:
		return "available functions: " + strings.Join(Funcs(), ", ")
	case *ArityError:
		return "check the function documentation for the correct number of arguments"
	}
	return ""
}
