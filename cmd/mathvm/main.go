// Command mathvm compiles arithmetic expressions to bytecode and evaluates
// them.
//
// Expressions given as arguments are evaluated and printed one per line:
//
//	mathvm -given x=3 "x^2 + 1"
//
// With -csv, one expression is evaluated against every row of a CSV file
// through the batch path; a header row may name the columns in any order.
// With no arguments, mathvm reads expressions interactively, where
// "name = expr" lines define variables for later expressions.
package main

import (
	"bufio"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/floatbeam/mathvm"
)

func main() {
	log.SetFlags(0)
	var (
		verb    string
		csvname string
		disasm  bool
	)
	vars := map[string]float64{}
	given := func(s string) error {
		d := strings.SplitN(s, "=", 2)
		if len(d) != 2 {
			return fmt.Errorf(`variable definitions must be "name=value", not %q`, s)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(d[1]), 64)
		if err != nil {
			return err
		}
		vars[strings.TrimSpace(d[0])] = v
		return nil
	}
	flag.StringVar(&verb, "fmt", "%g", "result formatting string")
	flag.Func("given", "name=value variable definition (any number of times)", given)
	flag.StringVar(&csvname, "csv", "", "evaluate against every row of a CSV file (batch)")
	flag.BoolVar(&disasm, "d", false, "print compiled bytecode")
	flag.Parse()
	verb += "\n"

	if csvname != "" {
		if flag.NArg() != 1 {
			log.Fatal("-csv needs exactly one expression argument")
		}
		if err := runBatch(flag.Arg(0), csvname, verb, disasm); err != nil {
			log.Fatal(err)
		}
		return
	}
	if flag.NArg() > 0 {
		for _, src := range flag.Args() {
			r, err := eval(src, vars, disasm)
			if err != nil {
				log.Fatal(mathvm.Render(err, src))
			}
			fmt.Printf(verb, r)
		}
		return
	}
	runREPL(vars, verb, disasm)
}

// eval compiles src and evaluates it with the variables it uses bound
// from vars.
func eval(src string, vars map[string]float64, disasm bool) (float64, error) {
	p, err := mathvm.Compile(src)
	if err != nil {
		return 0, err
	}
	if disasm {
		fmt.Print(p.Disassemble())
	}
	ctx := p.NewContext()
	for _, name := range p.Vars() {
		v, ok := vars[name]
		if !ok {
			return 0, fmt.Errorf("variable %q is not defined; define it with -given %s=value", name, name)
		}
		ctx.Set(name, v)
	}
	return p.Eval(ctx)
}

// runBatch evaluates one expression against every row of a CSV file. A
// non-numeric first row names the columns; otherwise columns must already
// be in first-occurrence variable order.
func runBatch(src, csvname, verb string, disasm bool) error {
	p, err := mathvm.Compile(src)
	if err != nil {
		return errors.New(mathvm.Render(err, src))
	}
	if disasm {
		fmt.Print(p.Disassemble())
	}
	f, err := os.Open(csvname)
	if err != nil {
		return err
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return err
	}
	names := p.Vars()
	order := make([]int, len(names))
	for i := range order {
		order[i] = i
	}
	if len(records) > 0 {
		if _, err := strconv.ParseFloat(strings.TrimSpace(records[0][0]), 64); err != nil {
			order, err = headerOrder(records[0], names)
			if err != nil {
				return err
			}
			records = records[1:]
		}
	}
	sets := make([][]float64, len(records))
	for i, rec := range records {
		if len(rec) != len(names) {
			return fmt.Errorf("%s: row %d has %d columns, expected %d", csvname, i+1, len(rec), len(names))
		}
		row := make([]float64, len(names))
		for j, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return fmt.Errorf("%s: row %d: %v", csvname, i+1, err)
			}
			row[order[j]] = v
		}
		sets[i] = row
	}
	results, err := p.EvalBatch(sets)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Printf(verb, r)
	}
	return nil
}

// headerOrder maps CSV column positions to variable indices.
func headerOrder(header, names []string) ([]int, error) {
	if len(header) != len(names) {
		return nil, fmt.Errorf("header has %d columns, expression uses %d variables", len(header), len(names))
	}
	order := make([]int, len(header))
	for j, col := range header {
		col = strings.TrimSpace(col)
		k := -1
		for i, name := range names {
			if name == col {
				k = i
				break
			}
		}
		if k < 0 {
			return nil, fmt.Errorf("column %q is not a variable of the expression", col)
		}
		order[j] = k
	}
	return order, nil
}

func runREPL(vars map[string]float64, verb string, disasm bool) {
	if !isInteractive() {
		scan := bufio.NewScanner(os.Stdin)
		for scan.Scan() {
			replLine(scan.Text(), vars, verb, disasm)
		}
		if err := scan.Err(); err != nil {
			log.Fatal(err)
		}
		return
	}

	state := liner.NewLiner()
	defer state.Close()
	state.SetCtrlCAborts(true)

	historyPath := replHistoryPath()
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			state.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(historyPath); err == nil {
				state.WriteHistory(f)
				f.Close()
			}
		}()
	}

	for {
		input, err := state.Prompt("mathvm> ")
		if err != nil {
			switch {
			case errors.Is(err, liner.ErrPromptAborted):
				fmt.Println()
				continue
			case errors.Is(err, io.EOF):
				fmt.Println()
				return
			default:
				fmt.Fprintf(os.Stderr, "read error: %v\n", err)
				return
			}
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		state.AppendHistory(input)
		replLine(input, vars, verb, disasm)
	}
}

// replLine evaluates one line of input. A line of the form "name = expr"
// defines a variable for later lines.
func replLine(line string, vars map[string]float64, verb string, disasm bool) {
	src := line
	name := ""
	if i := strings.Index(line, "="); i >= 0 {
		if n := strings.TrimSpace(line[:i]); isName(n) {
			name = n
			src = line[i+1:]
		}
	}
	r, err := eval(src, vars, disasm)
	if err != nil {
		fmt.Fprintln(os.Stderr, mathvm.Render(err, src))
		return
	}
	if name != "" {
		vars[name] = r
		return
	}
	fmt.Printf(verb, r)
}

// isName reports whether s is a plausible variable name, distinguishing
// assignments from expressions.
func isName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case i > 0 && '0' <= r && r <= '9':
		default:
			return false
		}
	}
	return true
}

func replHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".mathvm_history")
}

func isInteractive() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
