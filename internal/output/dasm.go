package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/splendidnut/Neolithic-sub000/internal/ilist"
	"github.com/splendidnut/Neolithic-sub000/internal/isa"
	"github.com/splendidnut/Neolithic-sub000/internal/machine"
	"github.com/splendidnut/Neolithic-sub000/internal/sym"
)

// DasmWriter emits the DASM-format source file: a processor/origin
// prologue, a symbol header per function, instruction lines formatted by
// addressing-mode template, and a trailing vector table at the
// machine's VectorTop.
type DasmWriter struct {
	w     io.Writer
	mach  machine.Info
	entry string
}

func NewDasmWriter(w io.Writer) *DasmWriter { return &DasmWriter{w: w} }

func (d *DasmWriter) Ext() string { return ".asm" }

func (d *DasmWriter) Init(mach machine.Info, entryName string, lo *Layout) error {
	d.mach = mach
	d.entry = entryName
	fmt.Fprintf(d.w, "\tprocessor 6502\n")
	fmt.Fprintf(d.w, "; target %s, entry %s\n", mach.Name, entryName)
	fmt.Fprintf(d.w, "\torg $%04X\n", mach.ROMOrigin)
	return nil
}

func (d *DasmWriter) Done() error {
	fmt.Fprintf(d.w, "\n\torg $%04X\n", d.mach.VectorTop)
	words := (0x10000 - d.mach.VectorTop) / 2
	for i := 0; i < words; i++ {
		fmt.Fprintf(d.w, "\t.word %s\n", d.entry)
	}
	return nil
}

func (d *DasmWriter) StartBlock(b *Block) error {
	fmt.Fprintf(d.w, "\n; --- %s ---\n", b.Name)
	return nil
}

func (d *DasmWriter) EndBlock(b *Block) error { return nil }

// WriteFunction prints the function's symbol header (params then locals)
// followed by its instruction stream; the function's own entry label is
// carried on the stream's first instruction, not printed separately.
func (d *DasmWriter) WriteFunction(b *Block) error {
	if rec := b.Sym; rec != nil && rec.Ext != nil {
		d.writeSymbolHeader("params", rec.Ext.Params)
		d.writeSymbolHeader("locals", rec.Ext.Locals)
	}
	for in := b.Code.First(); in != nil; in = in.Next() {
		d.writeInstr(in)
	}
	return nil
}

func (d *DasmWriter) writeSymbolHeader(title string, t *sym.Table) {
	if t == nil || t.First() == nil {
		return
	}
	names := make([]string, 0, 4)
	for s := t.First(); s != nil; s = s.Next() {
		names = append(names, s.NameText)
	}
	fmt.Fprintf(d.w, "; %s: %s\n", title, strings.Join(names, " "))
}

func (d *DasmWriter) writeInstr(in *ilist.Instr) {
	if in.Label != nil {
		fmt.Fprintf(d.w, "%s:\n", in.Label.Name)
	}
	if in.Mne == isa.MneNone {
		if in.Comment != "" {
			fmt.Fprintf(d.w, "\t; %s\n", in.Comment)
		}
		return
	}

	line := "\t" + in.Mne.Name()
	if operand := in.Mode.Format(dasmOperandText(in)); operand != "" {
		line += "\t" + operand
	}
	if in.Comment != "" {
		line += "\t; " + in.Comment
	}
	fmt.Fprintln(d.w, line)
}

// WriteArray renders a flat data block as a `.byte` run.
func (d *DasmWriter) WriteArray(b *Block) error {
	fmt.Fprintf(d.w, "%s:\n", b.Name)
	for _, item := range b.Data {
		d.writeDataItem(item)
	}
	return nil
}

// WriteStruct renders a struct-typed global the same way as a plain
// array: DASM has no notion of field layout, only byte runs.
func (d *DasmWriter) WriteStruct(b *Block) error { return d.WriteArray(b) }

func (d *DasmWriter) writeDataItem(item DataItem) {
	if len(item.Bytes) == 0 {
		return
	}
	parts := make([]string, len(item.Bytes))
	for i, by := range item.Bytes {
		parts[i] = "$" + strconv.FormatUint(uint64(by), 16)
	}
	line := "\t.byte " + strings.Join(parts, ",")
	if item.Note != "" {
		line += "\t; " + item.Note
	}
	fmt.Fprintln(d.w, line)
}
