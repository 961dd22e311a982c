// Package output implements the output/layout stage: the output-block
// list, and the DASM text and binary writers that walk it.
package output

import (
	"github.com/splendidnut/Neolithic-sub000/internal/ilist"
	"github.com/splendidnut/Neolithic-sub000/internal/sym"
)

// Kind tags an output block's payload shape.
type Kind int

const (
	KindCode Kind = iota
	KindData
	KindStruct
)

// DataItem is one piece of a data block's payload: a run of bytes,
// optionally introducing a named element of the symbol's ConstNotes
// listing comment.
type DataItem struct {
	Bytes []byte
	Note  string
}

// Block is an output block: an address, size, and either a code block or
// a run of data items; blocks form a singly linked list in emission order.
type Block struct {
	Addr    int
	Size    int
	Name    string
	BankNum int
	Kind    Kind

	Code *ilist.Block
	Data []DataItem
	Sym  *sym.Record

	next *Block
}

func (b *Block) Next() *Block { return b.next }

// Layout is the process-wide output-block list, tracking the
// monotonically rising curAddr that OB_AddCode/OB_AddData/
// OB_MoveToNextPage advance.
type Layout struct {
	first, last *Block
	curAddr     int
	origin      int
}

// NewLayout starts curAddr at origin, the target machine's ROM origin.
func NewLayout(origin int) *Layout {
	return &Layout{curAddr: origin, origin: origin}
}

func (lo *Layout) Origin() int  { return lo.origin }
func (lo *Layout) CurAddr() int { return lo.curAddr }

func (lo *Layout) append(b *Block) {
	b.Addr = lo.curAddr
	lo.curAddr += b.Size
	if lo.first == nil {
		lo.first, lo.last = b, b
		return
	}
	lo.last.next = b
	lo.last = b
}

// OB_AddCode appends a function's finished instruction block.
func (lo *Layout) OB_AddCode(name string, fn *sym.Record, code *ilist.Block) *Block {
	b := &Block{Name: name, Kind: KindCode, Code: code, Sym: fn, Size: code.GetCodeSize()}
	lo.append(b)
	return b
}

// OB_AddData appends a global's initialized-data payload. kind selects
// Data vs. Struct for the writer dispatch.
func (lo *Layout) OB_AddData(s *sym.Record, name string, data []DataItem, kind Kind) *Block {
	size := 0
	for _, d := range data {
		size += len(d.Bytes)
	}
	b := &Block{Name: name, Kind: kind, Sym: s, Data: data, Size: size}
	lo.append(b)
	return b
}

// OB_MoveToNextPage aligns curAddr up to the next 256-byte boundary, for a
// function the code generator needs to start on a fresh page.
func (lo *Layout) OB_MoveToNextPage() {
	if lo.curAddr&0xFF != 0 {
		lo.curAddr = (lo.curAddr + 0xFF) &^ 0xFF
	}
}

// All returns every block in emission order.
func (lo *Layout) All() []*Block {
	var out []*Block
	for b := lo.first; b != nil; b = b.next {
		out = append(out, b)
	}
	return out
}
