package mathvm

import "math"

// builtinFunc evaluates a builtin on its arguments. Arguments follow
// IEEE-754 semantics: out-of-domain inputs produce NaN, never an error.
type builtinFunc func(args []float64) float64

// builtin is one entry of the fixed function table. The table is resolved
// once at package initialization; compilation looks names up in it and
// never registers new entries.
type builtin struct {
	name  string
	arity int
	fn    builtinFunc
}

var builtins = []builtin{
	{"sin", 1, func(a []float64) float64 { return math.Sin(a[0]) }},
	{"cos", 1, func(a []float64) float64 { return math.Cos(a[0]) }},
	{"tan", 1, func(a []float64) float64 { return math.Tan(a[0]) }},
	{"sqrt", 1, func(a []float64) float64 { return math.Sqrt(a[0]) }},
	{"abs", 1, func(a []float64) float64 { return math.Abs(a[0]) }},
	{"floor", 1, func(a []float64) float64 { return math.Floor(a[0]) }},
	{"ceil", 1, func(a []float64) float64 { return math.Ceil(a[0]) }},
	{"round", 1, func(a []float64) float64 { return math.Round(a[0]) }},
	{"exp", 1, func(a []float64) float64 { return math.Exp(a[0]) }},
	{"ln", 1, func(a []float64) float64 { return math.Log(a[0]) }},
	{"log10", 1, func(a []float64) float64 { return math.Log10(a[0]) }},
	{"max", 2, func(a []float64) float64 { return math.Max(a[0], a[1]) }},
	{"min", 2, func(a []float64) float64 { return math.Min(a[0], a[1]) }},
}

var builtinNames = make(map[string]int, len(builtins))

func init() {
	for i, b := range builtins {
		builtinNames[b.name] = i
	}
}

// Funcs returns the names of the builtin functions in table order.
func Funcs() []string {
	names := make([]string, len(builtins))
	for i, b := range builtins {
		names[i] = b.name
	}
	return names
}
