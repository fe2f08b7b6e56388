package mathvm

import (
	"strconv"
)

// Expr = num | name | Call | Neg | Add | Sub | Mul | Div | Pow | '(' Expr ')'
// Call = funcname '(' ')' | funcname '(' Expr { ',' Expr } ')'
// Neg = '-' Expr
// Add = Expr '+' Expr
// Sub = Expr '-' Expr
// Mul = Expr '*' Expr
// Div = Expr '/' Expr
// Pow = Expr '^' Expr

type parser struct {
	scan *lexer
	// cur is the single token of lookahead.
	cur lexToken
}

// parse parses a whole expression from scan, consuming every token.
func parse(scan *lexer) (*node, error) {
	p := parser{scan: scan}
	if err := p.next(); err != nil {
		return nil, err
	}
	if p.cur.kind == tokenEOF {
		return nil, &EmptyExpressionError{Pos: p.cur.pos}
	}
	n, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokenEOF {
		return nil, unexpected(p.cur)
	}
	return n, nil
}

func (p *parser) next() error {
	tok, err := p.scan.next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

// parseExpr parses an expression whose binary operators all bind more
// tightly than minBP.
func (p *parser) parseExpr(minBP int8) (*node, error) {
	n, err := p.nud()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokenOp {
		tok := p.cur
		lbp, rbp, kind := infix(tok.text)
		if lbp < minBP {
			break
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		rhs, err := p.parseExpr(rbp)
		if err != nil {
			return nil, err
		}
		n = &node{kind: kind, pos: tok.pos, left: n, right: rhs}
	}
	return n, nil
}

// nud parses a token in prefix position: a number, a variable, a unary
// minus, a parenthesized subexpression, or a function call.
func (p *parser) nud() (*node, error) {
	tok := p.cur
	if err := p.next(); err != nil {
		return nil, err
	}
	switch tok.kind {
	case tokenNum:
		v, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			// Out-of-range literals overflow to an infinity, which is the
			// value IEEE arithmetic on the literal would reach anyway.
			ne, _ := err.(*strconv.NumError)
			if ne == nil || ne.Err != strconv.ErrRange {
				panic("mathvm: lexed invalid number " + strconv.Quote(tok.text))
			}
		}
		return &node{kind: nodeNum, val: v, pos: tok.pos}, nil
	case tokenIdent:
		if p.cur.kind != tokenOpen {
			return &node{kind: nodeVar, name: tok.text, pos: tok.pos}, nil
		}
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return &node{kind: nodeCall, name: tok.text, pos: tok.pos, args: args}, nil
	case tokenOp:
		if tok.text != "-" {
			return nil, unexpected(tok)
		}
		operand, err := p.parseExpr(negBP)
		if err != nil {
			return nil, err
		}
		return &node{kind: nodeNeg, pos: tok.pos, left: operand}, nil
	case tokenOpen:
		n, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if p.cur.kind != tokenClose {
			return nil, unmatched(p.cur)
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, unexpected(tok)
	}
}

// parseArgs parses a parenthesized, comma-separated, possibly empty
// argument list, starting at the open parenthesis. Any argument count is
// accepted; arity is the compiler's concern.
func (p *parser) parseArgs() ([]*node, error) {
	if err := p.next(); err != nil { // consume (
		return nil, err
	}
	var args []*node
	if p.cur.kind != tokenClose {
		for {
			a, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if p.cur.kind != tokenSep {
				break
			}
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if p.cur.kind != tokenClose {
		return nil, unmatched(p.cur)
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	return args, nil
}

// Binding powers. Each binary operator has a left and a right power; equal
// powers parse left-associative and a lower right power parses
// right-associative, which is how ^ gets 2^3^2 = 2^(3^2). Unary minus
// binds tighter than any binary operator, so -2^2 is (-2)^2.
const negBP = 99

func infix(text string) (lbp, rbp int8, kind nodeKind) {
	switch text {
	case "+":
		return 10, 11, nodeAdd
	case "-":
		return 10, 11, nodeSub
	case "*":
		return 20, 21, nodeMul
	case "/":
		return 20, 21, nodeDiv
	case "^":
		return 30, 29, nodePow
	default:
		panic("mathvm: unknown operator " + strconv.Quote(text))
	}
}

// unexpected returns the error for a token that cannot appear where it
// did.
func unexpected(tok lexToken) error {
	return &UnexpectedTokenError{Token: tokdesc(tok), Pos: tok.pos}
}

// unmatched returns the error for a token found where a close parenthesis
// was required. Running out of input means the parenthesis is missing;
// anything else is an ordinary unexpected token.
func unmatched(tok lexToken) error {
	if tok.kind == tokenEOF {
		return &UnmatchedParenError{Pos: tok.pos}
	}
	return &UnexpectedTokenError{Token: tokdesc(tok), Pos: tok.pos}
}

// tokdesc describes a token for an error message.
func tokdesc(tok lexToken) string {
	if tok.kind == tokenEOF {
		return "end of input"
	}
	return strconv.Quote(tok.text)
}
