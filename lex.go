package mathvm

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

type lexToken struct {
	text string
	kind tokenKind
	pos  Position
}

func (t lexToken) String() string {
	return t.kind.String() + ":" + t.text + "@" + strconv.Itoa(t.pos.Line) + ":" + strconv.Itoa(t.pos.Col)
}

type tokenKind int

const (
	tokenNone tokenKind = iota
	// tokenEOF indicates the end of the input.
	tokenEOF
	// tokenNum is a decimal or scientific-notation number token.
	tokenNum
	// tokenIdent is a variable or function name.
	tokenIdent
	// tokenOp is one of the operators + - * / ^.
	tokenOp
	// tokenOpen is an open parenthesis.
	tokenOpen
	// tokenClose is a close parenthesis.
	tokenClose
	// tokenSep is the function argument separator, a comma.
	tokenSep
)

//go:generate go mod edit -require=golang.org/x/tools@v0.1.0
//go:generate go mod download
//go:generate go run golang.org/x/tools/cmd/stringer -type=tokenKind -trimprefix=token
//go:generate go mod tidy

type lexer struct {
	src  string
	off  int
	line int
	col  int
}

func lex(src string) *lexer {
	return &lexer{
		src:  src,
		line: 1,
		col:  1,
	}
}

// position reports the position of the next rune to be scanned.
func (l *lexer) position() Position {
	return Position{Line: l.line, Col: l.col, Offset: l.off}
}

// peek decodes the next rune without consuming it. At the end of the input,
// the result is -1 with size zero.
func (l *lexer) peek() (rune, int) {
	if l.off >= len(l.src) {
		return -1, 0
	}
	return utf8.DecodeRuneInString(l.src[l.off:])
}

// advance consumes a rune previously returned from peek, updating the
// lexer's position info.
func (l *lexer) advance(r rune, sz int) {
	l.off += sz
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

// next scans the next token from the input. At the end of the input, it
// returns tokenEOF forever.
func (l *lexer) next() (lexToken, error) {
	for {
		r, sz := l.peek()
		if r < 0 || !unicode.IsSpace(r) {
			break
		}
		l.advance(r, sz)
	}
	tok := lexToken{pos: l.position()}
	r, sz := l.peek()
	switch {
	case r < 0:
		tok.kind = tokenEOF
		return tok, nil
	case '0' <= r && r <= '9', r == '.':
		text, err := l.scanNum()
		if err != nil {
			return tok, err
		}
		tok.text = text
		tok.kind = tokenNum
		return tok, nil
	case r == '_', unicode.IsLetter(r):
		tok.text = l.scanIdent()
		tok.kind = tokenIdent
		return tok, nil
	case r == '+', r == '-', r == '*', r == '/', r == '^':
		l.advance(r, sz)
		tok.text = string(r)
		tok.kind = tokenOp
		return tok, nil
	case r == '(':
		l.advance(r, sz)
		tok.text = "("
		tok.kind = tokenOpen
		return tok, nil
	case r == ')':
		l.advance(r, sz)
		tok.text = ")"
		tok.kind = tokenClose
		return tok, nil
	case r == ',':
		l.advance(r, sz)
		tok.text = ","
		tok.kind = tokenSep
		return tok, nil
	default:
		return tok, &LexError{Char: r, Pos: tok.pos}
	}
}

// scanNum scans a number token: digits with an optional fraction and an
// optional exponent. The exponent marker is consumed only when it is
// actually followed by an exponent, so that "2e" scans as the number 2
// followed by the identifier e.
func (l *lexer) scanNum() (string, error) {
	start := l.off
	pos := l.position()
	dig := false
	for {
		r, sz := l.peek()
		if '0' <= r && r <= '9' {
			dig = true
			l.advance(r, sz)
			continue
		}
		break
	}
	if r, sz := l.peek(); r == '.' {
		l.advance(r, sz)
		for {
			r, sz := l.peek()
			if '0' <= r && r <= '9' {
				dig = true
				l.advance(r, sz)
				continue
			}
			break
		}
	}
	if !dig {
		// A lone dot with no digits on either side.
		r, _ := utf8.DecodeRuneInString(l.src[start:])
		return "", &LexError{Char: r, Pos: pos}
	}
	if r, _ := l.peek(); r == 'e' || r == 'E' {
		// Look ahead past the marker and an optional sign for a digit
		// before committing to an exponent.
		j := l.off + 1
		if j < len(l.src) && (l.src[j] == '+' || l.src[j] == '-') {
			j++
		}
		if j < len(l.src) && '0' <= l.src[j] && l.src[j] <= '9' {
			for l.off < j {
				r, sz := l.peek()
				l.advance(r, sz)
			}
			for {
				r, sz := l.peek()
				if '0' <= r && r <= '9' {
					l.advance(r, sz)
					continue
				}
				break
			}
		}
	}
	return l.src[start:l.off], nil
}

func (l *lexer) scanIdent() string {
	start := l.off
	for {
		r, sz := l.peek()
		switch {
		case r == '_', unicode.IsLetter(r), unicode.IsDigit(r):
			l.advance(r, sz)
		default:
			return l.src[start:l.off]
		}
	}
}

// LexError indicates a character the lexer does not recognize. It
// implements PosError.
type LexError struct {
	// Char is the offending character.
	Char rune
	// Pos is the position of the character.
	Pos Position
}

func (err *LexError) Error() string {
	return errpos("unexpected character "+strconv.QuoteRune(err.Char), err.Pos)
}

func (err *LexError) Position() Position {
	return err.Pos
}
