package mathvm

import (
	"math"
	"strconv"
)

// Context holds the variable values for evaluating a Program, one slot per
// entry of Vars, indexed positionally. A Context belongs to one Program
// and one caller; it is not safe to share a Context across concurrent
// evaluations, but any number of Contexts may evaluate the same Program
// concurrently.
type Context struct {
	// vars is the owning program's name table, shared, never written.
	vars   []string
	values []float64
	// stack is the operand stack, kept across evaluations so sequential
	// Eval calls reuse its capacity.
	stack []float64
}

// NewContext creates a Context sized for p with every variable set to
// zero.
func (p *Program) NewContext() *Context {
	return &Context{
		vars:   p.vars,
		values: make([]float64, len(p.vars)),
	}
}

// Set sets the value of a variable by name.
func (c *Context) Set(name string, v float64) error {
	for i, n := range c.vars {
		if n == name {
			c.values[i] = v
			return nil
		}
	}
	return &NameError{Name: name}
}

// SetIndex sets the value of the variable at index i of Vars. It panics if
// i is out of range, like a slice store.
func (c *Context) SetIndex(i int, v float64) {
	c.values[i] = v
}

// Get returns the value of a variable and whether the expression uses it.
func (c *Context) Get(name string) (float64, bool) {
	for i, n := range c.vars {
		if n == name {
			return c.values[i], true
		}
	}
	return 0, false
}

// Eval executes the program against ctx and returns the result.
func (p *Program) Eval(ctx *Context) (float64, error) {
	if len(ctx.values) != len(p.vars) {
		return 0, &ContextError{Expected: len(p.vars), Got: len(ctx.values)}
	}
	r, stack, err := p.run(ctx.values, ctx.stack[:0])
	ctx.stack = stack
	return r, err
}

// EvalBatch executes the program once per slice of variable values and
// returns one result per slice, in order. Every slice must have exactly
// len(Vars()) values; on a mismatch the whole call fails with a BatchError
// identifying the offending slice and no results are returned. One operand
// stack is reused across all slices.
func (p *Program) EvalBatch(sets [][]float64) ([]float64, error) {
	out := make([]float64, len(sets))
	stack := make([]float64, 0, 16)
	for i, values := range sets {
		if len(values) != len(p.vars) {
			return nil, &BatchError{Slice: i, Expected: len(p.vars), Got: len(values)}
		}
		r, s, err := p.run(values, stack[:0])
		stack = s
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// run executes the instruction stream with the given variable values and
// operand stack. It returns the stack so callers can reuse its capacity.
// Stack underflow is impossible for programs produced by the compiler; the
// checks below turn an implementation bug into a RuntimeError instead of a
// crash.
func (p *Program) run(values, stack []float64) (float64, []float64, error) {
	code := p.code
	for pc := 0; pc < len(code); {
		op := opcode(code[pc])
		pc++
		switch op {
		case opLoadConst:
			stack = append(stack, p.consts[p.readU16(pc)])
			pc += 2
		case opLoadVar:
			stack = append(stack, values[p.readU16(pc)])
			pc += 2
		case opAdd, opSub, opMul, opDiv, opPow:
			if len(stack) < 2 {
				return 0, stack, &RuntimeError{Cause: "stack underflow", PC: pc - 1}
			}
			a, b := stack[len(stack)-2], stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			stack[len(stack)-1] = arithOp(op, a, b)
		case opNeg:
			if len(stack) < 1 {
				return 0, stack, &RuntimeError{Cause: "stack underflow", PC: pc - 1}
			}
			stack[len(stack)-1] = -stack[len(stack)-1]
		case opCall:
			idx := p.readU16(pc)
			argc := int(code[pc+2])
			pc += 3
			if len(stack) < argc {
				return 0, stack, &RuntimeError{Cause: "stack underflow", PC: pc - 4}
			}
			args := stack[len(stack)-argc:]
			r := p.funcs[idx].fn(args)
			stack = stack[:len(stack)-argc]
			stack = append(stack, r)
		default:
			return 0, stack, &RuntimeError{Cause: "unknown opcode " + strconv.Itoa(int(op)), PC: pc - 1}
		}
	}
	if len(stack) != 1 {
		return 0, stack, &RuntimeError{Cause: "stack left with " + strconv.Itoa(len(stack)) + " values", PC: len(code)}
	}
	return stack[0], stack, nil
}

// arithOp applies a binary opcode with plain IEEE-754 semantics; division
// by zero yields an infinity or NaN, never a failure.
func arithOp(op opcode, a, b float64) float64 {
	switch op {
	case opAdd:
		return a + b
	case opSub:
		return a - b
	case opMul:
		return a * b
	case opDiv:
		return a / b
	default:
		return math.Pow(a, b)
	}
}

// NameError is an error from setting or reading a variable the expression
// does not use.
type NameError struct {
	// Name is the unknown name.
	Name string
}

func (err *NameError) Error() string {
	return "no variable " + strconv.Quote(err.Name) + " in expression"
}

// ContextError is an error from evaluating a Program with a Context built
// for a different Program.
type ContextError struct {
	// Expected is the program's variable count.
	Expected int
	// Got is the context's value count.
	Got int
}

func (err *ContextError) Error() string {
	return "context has " + strconv.Itoa(err.Got) + " values, program expects " + strconv.Itoa(err.Expected)
}

// BatchError is an error from an EvalBatch slice whose length does not
// match the program's variable count.
type BatchError struct {
	// Slice is the index of the offending slice.
	Slice int
	// Expected is the program's variable count.
	Expected int
	// Got is the slice's length.
	Got int
}

func (err *BatchError) Error() string {
	return "slice " + strconv.Itoa(err.Slice) + " has " + strconv.Itoa(err.Got) + " values, expected " + strconv.Itoa(err.Expected)
}

// RuntimeError reports an internal inconsistency in a compiled program,
// such as an operand stack underflow. It is not reachable through correct
// compilation; it exists to distinguish implementation bugs from
// user-facing failures.
type RuntimeError struct {
	// Cause describes the inconsistency.
	Cause string
	// PC is the instruction offset at which it was detected.
	PC int
}

func (err *RuntimeError) Error() string {
	return "internal error: " + err.Cause + " at pc " + strconv.Itoa(err.PC)
}
