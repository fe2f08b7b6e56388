// Package mathvm compiles arithmetic expressions to bytecode and evaluates
// the result on a small stack machine.
//
// An expression is compiled once into an immutable Program and then
// evaluated any number of times against different variable bindings:
//
//	p, err := mathvm.Compile("max(S - K, 0) * discount")
//	ctx := p.NewContext()
//	ctx.Set("S", 110)
//	ctx.Set("K", 105)
//	ctx.Set("discount", 0.95)
//	r, err := p.Eval(ctx)
//
// Variables are indexed in order of first occurrence, so Vars reports the
// order callers use to build value slices for EvalBatch, which evaluates
// one program against many bindings while reusing the operand stack.
//
// Arithmetic is IEEE-754 float64 throughout. Division by zero and
// out-of-domain function arguments produce infinities and NaNs, never
// errors; the only evaluation-time failures are internal-consistency
// guards that a well-formed Program cannot trip.
package mathvm
