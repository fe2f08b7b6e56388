package mathvm

import (
	"fmt"
	"strings"
)

// opcode is a one-byte instruction tag. Every instruction has a statically
// known stack effect; the compiler's post-order emission guarantees each
// instruction's operands are on the stack when it executes.
type opcode byte

const (
	// opLoadConst pushes constants[idx]. Operand: 2-byte constant index.
	opLoadConst opcode = iota
	// opLoadVar pushes the context value at idx. Operand: 2-byte variable
	// index.
	opLoadVar
	// opAdd through opPow pop b, pop a, and push a OP b.
	opAdd
	opSub
	opMul
	opDiv
	opPow
	// opNeg pops a and pushes -a.
	opNeg
	// opCall pops argc operands in left-to-right argument order, invokes a
	// builtin, and pushes its result. Operands: 2-byte function index,
	// 1-byte argc.
	opCall
)

//go:generate go mod edit -require=golang.org/x/tools@v0.1.0
//go:generate go mod download
//go:generate go run golang.org/x/tools/cmd/stringer -type=opcode -trimprefix=op
//go:generate go mod tidy

// Program is a compiled expression. A Program is immutable and may be
// evaluated concurrently by any number of callers, each with its own
// Context.
type Program struct {
	// code is the instruction stream: opcode bytes with big-endian
	// operands.
	code []byte
	// consts is the constant pool, deduplicated by bit pattern.
	consts []float64
	// vars is the variable names in first-occurrence order.
	vars []string
	// funcs is the builtin functions referenced by opCall, in first-use
	// order.
	funcs []builtin
}

// Vars returns the expression's variable names in order of first
// occurrence, which is the order of values in a Context and in every
// EvalBatch slice.
func (p *Program) Vars() []string {
	return append([]string(nil), p.vars...)
}

// Disassemble renders the instruction stream in a human-readable form,
// one instruction per line.
func (p *Program) Disassemble() string {
	var b strings.Builder
	for pc := 0; pc < len(p.code); {
		op := opcode(p.code[pc])
		fmt.Fprintf(&b, "%04d %s", pc, op)
		pc++
		switch op {
		case opLoadConst:
			idx := p.readU16(pc)
			pc += 2
			fmt.Fprintf(&b, " %d ; %g", idx, p.consts[idx])
		case opLoadVar:
			idx := p.readU16(pc)
			pc += 2
			fmt.Fprintf(&b, " %d ; %s", idx, p.vars[idx])
		case opCall:
			idx := p.readU16(pc)
			argc := p.code[pc+2]
			pc += 3
			fmt.Fprintf(&b, " %d %d ; %s", idx, argc, p.funcs[idx].name)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (p *Program) readU16(pc int) int {
	return int(p.code[pc])<<8 | int(p.code[pc+1])
}
