// Command neolithic is the compiler driver: it wires the preprocessor,
// lexer, parser, symbol generator, call-graph analyzer, memory
// allocator, code generator, and output writers into a single
// synchronous pipeline, and writes the four P.* output files for
// project name P.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/splendidnut/Neolithic-sub000/internal/ast"
	"github.com/splendidnut/Neolithic-sub000/internal/callgraph"
	"github.com/splendidnut/Neolithic-sub000/internal/codegen"
	"github.com/splendidnut/Neolithic-sub000/internal/diag"
	"github.com/splendidnut/Neolithic-sub000/internal/ilist"
	"github.com/splendidnut/Neolithic-sub000/internal/lex"
	"github.com/splendidnut/Neolithic-sub000/internal/machine"
	"github.com/splendidnut/Neolithic-sub000/internal/memalloc"
	"github.com/splendidnut/Neolithic-sub000/internal/output"
	"github.com/splendidnut/Neolithic-sub000/internal/parse"
	"github.com/splendidnut/Neolithic-sub000/internal/sym"
	"github.com/splendidnut/Neolithic-sub000/internal/symgen"
)

// options holds the parsed CLI state. The flags are
// glued onto their letter (`-e<name>`, `-i<path>`, `-m<machine>`) rather
// than space-separated, so they're scanned by hand instead of through the
// standard library's flag package.
type options struct {
	project    string
	entryName  string
	machine    string
	includes   []string
	dumpMem    bool
	showTree   bool
	quiet      bool
	optimize   bool
	optimizeV  bool
	view       string // "", "va", "vc", "vr", "vl"
}

func main() {
	opt, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		usage()
		os.Exit(1)
	}

	os.Exit(run(opt))
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <projectName> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Options:\n")
	fmt.Fprintf(os.Stderr, "  -d           dump internal memory usage report\n")
	fmt.Fprintf(os.Stderr, "  -e<name>     override entry-point function name (default main)\n")
	fmt.Fprintf(os.Stderr, "  -f           enable call-tree display\n")
	fmt.Fprintf(os.Stderr, "  -h           print this help\n")
	fmt.Fprintf(os.Stderr, "  -i<path>     add an include file to the preprocessor\n")
	fmt.Fprintf(os.Stderr, "  -m<machine>  select target machine (Atari2600, Atari5200, Atari7800)\n")
	fmt.Fprintf(os.Stderr, "  -o / -ov     accepted; no optimizer pass is run\n")
	fmt.Fprintf(os.Stderr, "  -q           quiet mode\n")
	fmt.Fprintf(os.Stderr, "  -va|-vc|-vr|-vl  accepted; no view output is produced\n")
}

func parseArgs(args []string) (options, error) {
	opt := options{entryName: "main"}
	for _, a := range args {
		switch {
		case a == "-h":
			usage()
			os.Exit(0)
		case a == "-d":
			opt.dumpMem = true
		case a == "-f":
			opt.showTree = true
		case a == "-q":
			opt.quiet = true
		case a == "-ov":
			opt.optimize, opt.optimizeV = true, true
		case a == "-o":
			opt.optimize = true
		case a == "-va", a == "-vc", a == "-vr", a == "-vl":
			opt.view = a[1:]
		case strings.HasPrefix(a, "-e"):
			opt.entryName = a[2:]
		case strings.HasPrefix(a, "-i"):
			opt.includes = append(opt.includes, a[2:])
		case strings.HasPrefix(a, "-m"):
			opt.machine = a[2:]
		case strings.HasPrefix(a, "-"):
			return opt, fmt.Errorf("unknown option %q", a)
		default:
			if opt.project != "" {
				return opt, fmt.Errorf("unexpected argument %q", a)
			}
			opt.project = a
		}
	}
	if opt.project == "" {
		return opt, fmt.Errorf("missing projectName")
	}
	return opt, nil
}

// run executes the full pipeline and returns the process exit code:
// 0 on success, non-zero on any fatal condition.
func run(opt options) int {
	rep := diag.NewReporter(os.Stderr, 3)

	src, err := loadSource(opt.project, opt.includes, rep)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: missing include: %v\n", opt.project, err)
		return 1
	}

	interp := lex.NewStringTable()
	toks := lexAll(src, interp)

	types := sym.NewTypeRegistry()
	p := parse.New(toks, interp, types, rep)
	prog := p.ParseProgram()

	writeASTDump(opt.project, prog, interp)
	if rep.ErrorCount() > 0 {
		return 1
	}

	mach, err := resolveMachine(opt.machine, src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", opt.project, err)
		return 1
	}

	sg := symgen.New(interp, types, rep)
	sg.Run(prog)
	global := sg.Global

	graph := callgraph.Analyze(prog, global, interp, rep, callgraph.DefaultDepthLimit)
	if opt.showTree && !opt.quiet {
		dumpCallTree(graph, prog, interp)
	}

	alloc := memalloc.New(mach.ZPBase, mach.RAMBase)
	alloc.AllocateGlobals(global)
	alloc.AllocateLocals(prog, global, interp)

	if opt.dumpMem && !opt.quiet {
		dumpMemoryReport(global, mach)
	}

	entryFn := global.FindSymbol(opt.entryName)
	if entryFn == nil || !entryFn.IsFunction() {
		fmt.Fprintf(os.Stderr, "%s: entry point %q not found\n", opt.project, opt.entryName)
		return 1
	}

	labels := ilist.NewTable()
	gen := codegen.New(global, labels, interp, rep, mach)
	gen.Generate(prog)

	if rep.ErrorCount() > 0 {
		return 1
	}

	writeSymDump(opt.project, global, interp)

	lo := buildLayout(prog, global, interp, mach)

	if err := writeDasm(opt.project, lo, mach, opt.entryName); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", opt.project, err)
		return 1
	}
	if err := writeBinary(opt.project, lo, mach, opt.entryName, global, labels); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", opt.project, err)
		return 1
	}

	if rep.ErrorCount() > 0 {
		return 1
	}
	return 0
}

// loadSource reads the project's source file plus any -i includes,
// running each through the preprocessor and concatenating the results.
func loadSource(project string, includes []string, rep *diag.Reporter) (string, error) {
	var b strings.Builder
	for _, inc := range includes {
		data, err := os.ReadFile(inc)
		if err != nil {
			return "", err
		}
		pp := lex.Preprocess(string(data), warnFunc(rep, inc))
		b.WriteString(strings.Join(pp.Lines, "\n"))
		b.WriteString("\n")
		for _, nested := range pp.Includes {
			data, err := os.ReadFile(nested)
			if err != nil {
				return "", err
			}
			nestedPP := lex.Preprocess(string(data), warnFunc(rep, nested))
			b.WriteString(strings.Join(nestedPP.Lines, "\n"))
			b.WriteString("\n")
		}
	}

	mainPath := project
	if _, err := os.Stat(mainPath); err != nil {
		mainPath = project + ".c"
	}
	data, err := os.ReadFile(mainPath)
	if err != nil {
		return "", err
	}
	pp := lex.Preprocess(string(data), warnFunc(rep, mainPath))
	for _, nested := range pp.Includes {
		data, err := os.ReadFile(nested)
		if err != nil {
			return "", err
		}
		nestedPP := lex.Preprocess(string(data), warnFunc(rep, nested))
		b.WriteString(strings.Join(nestedPP.Lines, "\n"))
		b.WriteString("\n")
	}
	b.WriteString(strings.Join(pp.Lines, "\n"))
	return b.String(), nil
}

func warnFunc(rep *diag.Reporter, file string) func(int, string) {
	return func(line int, msg string) { rep.Warnf("preprocess:"+file, line, "%s", msg) }
}

func lexAll(src string, interp *lex.StringTable) []lex.Token {
	lx := lex.NewLexer(src, interp)
	var toks []lex.Token
	for {
		t := lx.Next()
		toks = append(toks, t)
		if t.Kind == lex.KindEOF {
			break
		}
	}
	return toks
}

// resolveMachine applies precedence: an explicit -m flag, else a
// #machine directive scanned from the raw source, else the 2600
// default.
func resolveMachine(flagName string, src string) (machine.Info, error) {
	if flagName != "" {
		info, ok := machine.Lookup(flagName)
		if !ok {
			return machine.Info{}, fmt.Errorf("unknown target machine %q", flagName)
		}
		return info, nil
	}
	pp := lex.Preprocess(src, nil)
	if pp.Machine != "" {
		info, ok := machine.Lookup(pp.Machine)
		if !ok {
			return machine.Info{}, fmt.Errorf("unknown target machine %q", pp.Machine)
		}
		return info, nil
	}
	return machine.Default(), nil
}

func writeASTDump(project string, prog *ast.List, interp *lex.StringTable) {
	var b strings.Builder
	prog.Print(&b, 0, interp.Text)
	_ = os.WriteFile(project+".ast", []byte(b.String()), 0644)
}

func writeSymDump(project string, global *sym.Table, interp *lex.StringTable) {
	f, err := os.Create(project + ".sym")
	if err != nil {
		return
	}
	defer f.Close()
	global.ShowTable(f, interp.Text)
}

func dumpCallTree(graph *callgraph.Graph, prog *ast.List, interp *lex.StringTable) {
	for _, n := range prog.Operands() {
		if n.Kind != ast.KList || n.List.Op().Token != ast.PtDefun {
			continue
		}
		name := interp.Text(n.List.Nodes[1].Str)
		callees := graph.FindFunction(name)
		fmt.Printf("%s -> %s\n", name, strings.Join(callees, ", "))
	}
}

func dumpMemoryReport(global *sym.Table, mach machine.Info) {
	zpBytes, ramBytes := 0, 0
	for s := global.First(); s != nil; s = s.Next() {
		if !s.IsVariable() {
			continue
		}
		if s.IsZeroPage() {
			zpBytes += s.CalcVarSize()
		} else {
			ramBytes += s.CalcVarSize()
		}
	}
	fmt.Printf("memory usage: zero page %d bytes, RAM %d bytes (machine %s)\n", zpBytes, ramBytes, mach.Name)
}

// buildLayout appends every function's generated code block, in program
// order, followed by every global variable's data block.
func buildLayout(prog *ast.List, global *sym.Table, interp *lex.StringTable, mach machine.Info) *output.Layout {
	lo := output.NewLayout(mach.ROMOrigin)

	for _, n := range prog.Operands() {
		if n.Kind != ast.KList || n.List.Op().Token != ast.PtDefun {
			continue
		}
		name := interp.Text(n.List.Nodes[1].Str)
		fn := global.FindSymbol(name)
		if fn == nil || fn.Ext == nil || fn.Ext.CodeBlock == nil {
			continue
		}
		blk, ok := fn.Ext.CodeBlock.(*ilist.Block)
		if !ok {
			continue
		}
		lo.OB_AddCode(name, fn, blk)
	}

	for s := global.First(); s != nil; s = s.Next() {
		if !s.IsVariable() {
			continue
		}
		kind := output.KindData
		if s.Base == sym.TypeStruct {
			kind = output.KindStruct
		}
		item := output.DataItem{Bytes: dataBytesFor(s), Note: s.NameText}
		lo.OB_AddData(s, s.NameText, []output.DataItem{item}, kind)
	}

	return lo
}

// dataBytesFor renders a global's initial contents: its folded constant
// value in little-endian form when one is known, zero-filled bytes of its
// allocated size otherwise.
func dataBytesFor(s *sym.Record) []byte {
	size := s.CalcVarSize()
	buf := make([]byte, size)
	if s.HasValue {
		v := uint32(s.ConstValue)
		for i := 0; i < size && i < 4; i++ {
			buf[i] = byte(v >> (8 * i))
		}
	}
	return buf
}

func writeDasm(project string, lo *output.Layout, mach machine.Info, entry string) error {
	f, err := os.Create(project + ".asm")
	if err != nil {
		return err
	}
	defer f.Close()
	w := output.NewDasmWriter(f)
	return output.Emit(w, lo, mach, entry)
}

func writeBinary(project string, lo *output.Layout, mach machine.Info, entry string, global *sym.Table, labels *ilist.Table) error {
	bw := output.NewBinaryWriter(global, labels)
	if err := output.Emit(bw, lo, mach, entry); err != nil {
		return err
	}
	return os.WriteFile(project+".binary", bw.Bytes(), 0644)
}
