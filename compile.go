package mathvm

import (
	"math"
	"strconv"
)

// Compile compiles an expression into a Program. The returned error, if
// any, is a PosError describing the first problem found in the source.
func Compile(src string) (*Program, error) {
	root, err := parse(lex(src))
	if err != nil {
		return nil, err
	}
	c := compiler{
		p:      &Program{},
		vars:   make(map[string]uint16),
		consts: make(map[uint64]uint16),
		funcs:  make(map[string]uint16),
	}
	if err := c.emit(fold(root)); err != nil {
		return nil, err
	}
	return c.p, nil
}

type compiler struct {
	p *Program
	// vars maps variable names to their interned index.
	vars map[string]uint16
	// consts maps constant bit patterns to their pool index. Keying on
	// bits rather than values keeps distinct NaN encodings distinct.
	consts map[uint64]uint16
	// funcs maps builtin names to their index in the program's function
	// table.
	funcs map[string]uint16
}

// fold rewrites a subtree in post order, replacing constant subtrees with
// the value the VM would compute for them and applying the algebraic
// identities that cannot change the result for any input. Identities that
// would alter NaN or infinity propagation, like x*0 = 0, are not applied
// to runtime operands; a constant-zero product folds only when both
// operands are constants.
func fold(n *node) *node {
	switch n.kind {
	case nodeNum, nodeVar:
		return n
	case nodeNeg:
		l := fold(n.left)
		if l.kind == nodeNum {
			return &node{kind: nodeNum, val: -l.val, pos: n.pos}
		}
		n.left = l
		return n
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodePow:
		l, r := fold(n.left), fold(n.right)
		if l.kind == nodeNum && r.kind == nodeNum {
			return &node{kind: nodeNum, val: arith(n.kind, l.val, r.val), pos: n.pos}
		}
		switch {
		case n.kind == nodeAdd && l.kind == nodeNum && l.val == 0:
			return r
		case n.kind == nodeAdd && r.kind == nodeNum && r.val == 0:
			return l
		case n.kind == nodeSub && r.kind == nodeNum && r.val == 0:
			return l
		case n.kind == nodeMul && l.kind == nodeNum && l.val == 1:
			return r
		case n.kind == nodeMul && r.kind == nodeNum && r.val == 1:
			return l
		case n.kind == nodePow && r.kind == nodeNum && r.val == 1:
			return l
		}
		n.left, n.right = l, r
		return n
	case nodeCall:
		for i, a := range n.args {
			n.args[i] = fold(a)
		}
		return n
	default:
		panic("mathvm: fold on invalid node " + n.kind.String())
	}
}

// arith performs a binary operation with the same IEEE-754 semantics the
// VM uses, so folded programs are observationally identical to unfolded
// ones. In particular 1/0 folds to an infinity, not an error.
func arith(kind nodeKind, a, b float64) float64 {
	switch kind {
	case nodeAdd:
		return a + b
	case nodeSub:
		return a - b
	case nodeMul:
		return a * b
	case nodeDiv:
		return a / b
	case nodePow:
		return math.Pow(a, b)
	default:
		panic("mathvm: arith on invalid node " + kind.String())
	}
}

// emit generates code for a folded subtree in post order.
func (c *compiler) emit(n *node) error {
	switch n.kind {
	case nodeNum:
		c.op(opLoadConst)
		c.u16(c.constIndex(n.val))
	case nodeVar:
		c.op(opLoadVar)
		c.u16(c.varIndex(n.name))
	case nodeNeg:
		if err := c.emit(n.left); err != nil {
			return err
		}
		c.op(opNeg)
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodePow:
		if err := c.emit(n.left); err != nil {
			return err
		}
		if err := c.emit(n.right); err != nil {
			return err
		}
		c.op(binops[n.kind])
	case nodeCall:
		idx, err := c.funcIndex(n)
		if err != nil {
			return err
		}
		for _, a := range n.args {
			if err := c.emit(a); err != nil {
				return err
			}
		}
		c.op(opCall)
		c.u16(idx)
		c.p.code = append(c.p.code, byte(len(n.args)))
	default:
		panic("mathvm: emit on invalid node " + n.kind.String())
	}
	return nil
}

var binops = map[nodeKind]opcode{
	nodeAdd: opAdd,
	nodeSub: opSub,
	nodeMul: opMul,
	nodeDiv: opDiv,
	nodePow: opPow,
}

// constIndex interns a constant by its bit pattern.
func (c *compiler) constIndex(v float64) uint16 {
	bits := math.Float64bits(v)
	if idx, ok := c.consts[bits]; ok {
		return idx
	}
	idx := uint16(len(c.p.consts))
	c.p.consts = append(c.p.consts, v)
	c.consts[bits] = idx
	return idx
}

// varIndex interns a variable name in first-occurrence order.
func (c *compiler) varIndex(name string) uint16 {
	if idx, ok := c.vars[name]; ok {
		return idx
	}
	idx := uint16(len(c.p.vars))
	c.p.vars = append(c.p.vars, name)
	c.vars[name] = idx
	return idx
}

// funcIndex resolves a call against the builtin table, checking arity
// eagerly so a bad call never reaches evaluation.
func (c *compiler) funcIndex(n *node) (uint16, error) {
	k, ok := builtinNames[n.name]
	if !ok {
		return 0, &UnknownFunctionError{Name: n.name, Pos: n.pos}
	}
	b := builtins[k]
	if len(n.args) != b.arity {
		return 0, &ArityError{Name: n.name, Expected: b.arity, Got: len(n.args), Pos: n.pos}
	}
	if idx, ok := c.funcs[n.name]; ok {
		return idx, nil
	}
	idx := uint16(len(c.p.funcs))
	c.p.funcs = append(c.p.funcs, b)
	c.funcs[n.name] = idx
	return idx, nil
}

func (c *compiler) op(op opcode) {
	c.p.code = append(c.p.code, byte(op))
}

func (c *compiler) u16(v uint16) {
	c.p.code = append(c.p.code, byte(v>>8), byte(v))
}

// UnknownFunctionError is an error indicating a call to a function that is
// not in the builtin table. It implements PosError.
type UnknownFunctionError struct {
	// Name is the function name that was called.
	Name string
	// Pos is the position of the call.
	Pos Position
}

func (err *UnknownFunctionError) Error() string {
	return errpos("unknown function "+strconv.Quote(err.Name), err.Pos)
}

func (err *UnknownFunctionError) Position() Position {
	return err.Pos
}

// ArityError is an error indicating a function call with the wrong number
// of arguments. It implements PosError.
type ArityError struct {
	// Name is the function name that was called.
	Name string
	// Expected is the function's declared arity.
	Expected int
	// Got is the number of arguments in the call.
	Got int
	// Pos is the position of the call.
	Pos Position
}

func (err *ArityError) Error() string {
	s := "s"
	if err.Expected == 1 {
		s = ""
	}
	return errpos("function "+strconv.Quote(err.Name)+" expects "+strconv.Itoa(err.Expected)+" argument"+s+", got "+strconv.Itoa(err.Got), err.Pos)
}

func (err *ArityError) Position() Position {
	return err.Pos
}
