package mathvm

// EmptyExpressionError is an error indicating that the input contains no
// expression at all. It implements PosError.
type EmptyExpressionError struct {
	// Pos is the position at which an expression was expected.
	Pos Position
}

func (err *EmptyExpressionError) Error() string {
	return errpos("empty expression", err.Pos)
}

func (err *EmptyExpressionError) Position() Position {
	return err.Pos
}

// UnexpectedTokenError is an error indicating a token that cannot appear
// where it did, including tokens left over after a complete expression.
// It implements PosError.
type UnexpectedTokenError struct {
	// Token describes the offending token.
	Token string
	// Pos is the position of the token.
	Pos Position
}

func (err *UnexpectedTokenError) Error() string {
	return errpos("unexpected "+err.Token, err.Pos)
}

func (err *UnexpectedTokenError) Position() Position {
	return err.Pos
}

// UnmatchedParenError is an error indicating an open parenthesis with no
// matching close parenthesis. It implements PosError.
type UnmatchedParenError struct {
	// Pos is the position at which the close parenthesis was required.
	Pos Position
}

func (err *UnmatchedParenError) Error() string {
	return errpos("missing closing parenthesis", err.Pos)
}

func (err *UnmatchedParenError) Position() Position {
	return err.Pos
}
