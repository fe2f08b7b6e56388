package mathvm_test

import (
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"

	"github.com/floatbeam/mathvm"
)

func TestEval(t *testing.T) {
	type vv struct {
		n string
		v float64
	}
	cases := []struct {
		name string
		src  string
		vars []vv
		r    float64
	}{
		{"num", "1", nil, 1},
		{"ident", "x", []vv{{"x", 4}}, 4},
		{"neg", "-x", []vv{{"x", 4}}, -4},
		{"add", "4+5+6", nil, 4 + 5 + 6},
		{"sub", "4-5-6", nil, 4 - 5 - 6},
		{"sub-left-assoc", "2-3-2", nil, -3},
		{"mul", "4*5*6", nil, 4 * 5 * 6},
		{"div", "4/5/6", nil, 4.0 / 5.0 / 6.0},
		{"pow", "2^3^2", nil, 512},
		{"pow-frac", "x^0.5", []vv{{"x", 9}}, 3},
		{"precedence", "2+3*4", nil, 14},
		{"paren", "(2+3)*4", nil, 20},
		{"sin", "sin(0)", nil, 0},
		{"cos", "cos(0)", nil, 1},
		{"sqrt", "sqrt(x)", []vv{{"x", 4}}, 2},
		{"abs", "abs(0-5)", nil, 5},
		{"floor", "floor(2.7)", nil, 2},
		{"ceil", "ceil(2.2)", nil, 3},
		{"round", "round(2.5)", nil, 3},
		{"exp", "exp(0)", nil, 1},
		{"ln", "ln(1)", nil, 0},
		{"log10", "log10(1)", nil, 0},
		{"max", "max(x, y)", []vv{{"x", 2}, {"y", 5}}, 5},
		{"min", "min(x, y)", []vv{{"x", 2}, {"y", 5}}, 2},
		{"call-arg-order", "x - y", []vv{{"x", 10}, {"y", 4}}, 6},
		{"option", "max(S - K, 0) * discount", []vv{{"S", 110}, {"K", 105}, {"discount", 0.95}}, 4.75},
		{"div-by-zero", "x/0", []vv{{"x", 1}}, math.Inf(1)},
		{"div-by-zero-neg", "x/0", []vv{{"x", -1}}, math.Inf(-1)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p, err := mathvm.Compile(c.src)
			if err != nil {
				t.Fatalf("%q failed to compile: %v", c.src, err)
			}
			ctx := p.NewContext()
			for _, v := range c.vars {
				if err := ctx.Set(v.n, v.v); err != nil {
					t.Fatalf("setting %s: %v", v.n, err)
				}
			}
			r, err := p.Eval(ctx)
			if err != nil {
				t.Fatalf("evaluating %q: %v", c.src, err)
			}
			if r != c.r {
				t.Errorf("evaluating %q: want %g, got %g", c.src, c.r, r)
			}
		})
	}
}

// TestEvalApprox covers the transcendental builtins, whose results are not
// exactly representable and may differ from a reference value in the last
// unit of precision.
func TestEvalApprox(t *testing.T) {
	cases := []struct {
		src string
		r   float64
	}{
		{"sin(1)", math.Sin(1)},
		{"tan(1)", math.Tan(1)},
		{"exp(1)", math.E},
		{"ln(exp(2))", 2},
		{"log10(1000)", 3},
		{"sin(x)^2 + cos(x)^2", 1},
	}
	for _, c := range cases {
		p, err := mathvm.Compile(c.src)
		if err != nil {
			t.Fatalf("%q failed to compile: %v", c.src, err)
		}
		ctx := p.NewContext()
		ctx.Set("x", 0.7)
		r, err := p.Eval(ctx)
		if err != nil {
			t.Fatalf("evaluating %q: %v", c.src, err)
		}
		if math.Abs(r-c.r) > 1e-12 {
			t.Errorf("evaluating %q: want %g, got %g", c.src, c.r, r)
		}
	}
}

func TestEvalNaN(t *testing.T) {
	cases := []struct {
		name string
		src  string
		x    float64
	}{
		// The x*0 identity must never fire against a runtime operand.
		{"mul-zero-nan", "x*0", math.NaN()},
		{"zero-mul-nan", "0*x", math.NaN()},
		{"mul-zero-inf", "x*0", math.Inf(1)},
		{"sqrt-neg", "sqrt(x)", -1},
		{"ln-neg", "ln(x)", -1},
		{"zero-div-zero", "x/x", 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p, err := mathvm.Compile(c.src)
			if err != nil {
				t.Fatalf("%q failed to compile: %v", c.src, err)
			}
			ctx := p.NewContext()
			ctx.Set("x", c.x)
			r, err := p.Eval(ctx)
			if err != nil {
				t.Fatalf("evaluating %q: %v", c.src, err)
			}
			if !math.IsNaN(r) {
				t.Errorf("evaluating %q with x=%g: want NaN, got %g", c.src, c.x, r)
			}
		})
	}
}

func TestContext(t *testing.T) {
	p, err := mathvm.Compile("x + y")
	if err != nil {
		t.Fatal(err)
	}
	ctx := p.NewContext()
	if err := ctx.Set("x", 10); err != nil {
		t.Fatal(err)
	}
	ctx.SetIndex(1, 20)
	if v, ok := ctx.Get("x"); !ok || v != 10 {
		t.Errorf("Get(x) = %g, %v", v, ok)
	}
	if v, ok := ctx.Get("y"); !ok || v != 20 {
		t.Errorf("Get(y) = %g, %v", v, ok)
	}
	if _, ok := ctx.Get("z"); ok {
		t.Error("Get(z) reported a variable the expression does not use")
	}
	err = ctx.Set("z", 1)
	var ne *mathvm.NameError
	if !errors.As(err, &ne) || ne.Name != "z" {
		t.Errorf("Set(z): want NameError, got %#v", err)
	}
	r, err := p.Eval(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if r != 30 {
		t.Errorf("want 30, got %g", r)
	}
	// A context from another program is rejected.
	q, err := mathvm.Compile("a")
	if err != nil {
		t.Fatal(err)
	}
	_, err = q.Eval(ctx)
	var ce *mathvm.ContextError
	if !errors.As(err, &ce) || ce.Expected != 1 || ce.Got != 2 {
		t.Errorf("want ContextError{1, 2}, got %#v", err)
	}
}

func TestEvalBatch(t *testing.T) {
	p, err := mathvm.Compile("x * 2 + y")
	if err != nil {
		t.Fatal(err)
	}
	sets := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	got, err := p.EvalBatch(sets)
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{4, 10, 16}; !reflect.DeepEqual(got, want) {
		t.Errorf("want %v, got %v", want, got)
	}
}

func TestEvalBatchEmpty(t *testing.T) {
	p, err := mathvm.Compile("x + y")
	if err != nil {
		t.Fatal(err)
	}
	got, err := p.EvalBatch(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("want no results, got %v", got)
	}
}

func TestEvalBatchMismatch(t *testing.T) {
	p, err := mathvm.Compile("x+y")
	if err != nil {
		t.Fatal(err)
	}
	_, err = p.EvalBatch([][]float64{{1}})
	var be *mathvm.BatchError
	if !errors.As(err, &be) {
		t.Fatalf("want BatchError, got %#v", err)
	}
	if be.Slice != 0 || be.Expected != 2 || be.Got != 1 {
		t.Errorf("want BatchError{0, 2, 1}, got %#v", be)
	}
	// All or nothing: a late mismatch fails the whole call.
	got, err := p.EvalBatch([][]float64{{1, 2}, {3, 4}, {5}})
	if got != nil {
		t.Errorf("partial results returned: %v", got)
	}
	if !errors.As(err, &be) || be.Slice != 2 {
		t.Errorf("want BatchError for slice 2, got %#v", err)
	}
}

func TestEvalBatchMatchesEval(t *testing.T) {
	cases := []string{
		"x * 2 + y",
		"max(S - K, 0) * discount",
		"sin(a) + cos(b) * sqrt(abs(c))",
		"x^y - y/x",
	}
	for _, src := range cases {
		p, err := mathvm.Compile(src)
		if err != nil {
			t.Fatalf("%q failed to compile: %v", src, err)
		}
		n := len(p.Vars())
		var sets [][]float64
		v := 0.5
		for i := 0; i < 8; i++ {
			s := make([]float64, n)
			for j := range s {
				s[j] = v
				v = v*1.7 - 0.3
			}
			sets = append(sets, s)
		}
		batch, err := p.EvalBatch(sets)
		if err != nil {
			t.Fatalf("%q batch: %v", src, err)
		}
		ctx := p.NewContext()
		for i, s := range sets {
			for j, x := range s {
				ctx.SetIndex(j, x)
			}
			r, err := p.Eval(ctx)
			if err != nil {
				t.Fatalf("%q eval %d: %v", src, i, err)
			}
			if r != batch[i] {
				t.Errorf("%q slice %d: batch %g, eval %g", src, i, batch[i], r)
			}
		}
	}
}

func TestEvalConcurrent(t *testing.T) {
	p, err := mathvm.Compile("max(S - K, 0) * discount")
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			ctx := p.NewContext()
			for i := 0; i < 100; i++ {
				s := float64(g*100 + i)
				ctx.SetIndex(0, s)
				ctx.SetIndex(1, 105)
				ctx.SetIndex(2, 0.95)
				r, err := p.Eval(ctx)
				if err != nil {
					t.Errorf("goroutine %d: %v", g, err)
					return
				}
				if want := math.Max(s-105, 0) * 0.95; r != want {
					t.Errorf("goroutine %d: want %g, got %g", g, want, r)
					return
				}
			}
		}(g)
	}
	wg.Wait()
}

func BenchmarkEval(b *testing.B) {
	p, err := mathvm.Compile("max(S - K, 0) * discount")
	if err != nil {
		b.Fatal(err)
	}
	ctx := p.NewContext()
	ctx.SetIndex(0, 110)
	ctx.SetIndex(1, 105)
	ctx.SetIndex(2, 0.95)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.Eval(ctx); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEvalBatch(b *testing.B) {
	p, err := mathvm.Compile("max(S - K, 0) * discount")
	if err != nil {
		b.Fatal(err)
	}
	sets := make([][]float64, 1000)
	for i := range sets {
		sets[i] = []float64{float64(90 + i%40), 105, 0.95}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.EvalBatch(sets); err != nil {
			b.Fatal(err)
		}
	}
}
