package ilist

import "github.com/splendidnut/Neolithic-sub000/internal/isa"

// Block is the per-function instruction stream.
// FuncSym is declared as interface{} here to avoid an ilist<->sym import
// cycle; callers type-assert to *sym.Record where needed.
type Block struct {
	Name     string
	FuncSym  interface{}
	first, cur, last *Instr

	pendingLabel   *Label
	pendingComment string

	showCycles  bool
	cycleTotal  int
}

// StartBlock begins a new per-function instruction block.
func StartBlock(name string) *Block {
	return &Block{Name: name}
}

// ShowCycles and HideCycles toggle the block-wide cycle-count annotation.
func (b *Block) ShowCycles() { b.showCycles = true; b.cycleTotal = 0 }
func (b *Block) HideCycles() { b.showCycles = false }

// SetLabel and SetLineComment publish into the pending slots; the next
// emitted instruction consumes and clears them.
func (b *Block) SetLabel(l *Label) { b.pendingLabel = l }
func (b *Block) SetLineComment(c string) { b.pendingComment = c }

func (b *Block) append(in *Instr) *Instr {
	in.Label = b.pendingLabel
	if in.Label != nil {
		in.Label.HasLocation = false // location assigned later by the allocator/output stage
	}
	in.Comment = b.pendingComment
	b.pendingLabel, b.pendingComment = nil, ""

	if b.showCycles && in.Mne != isa.MneNone {
		_, cycles, _ := isa.Lookup(in.Mne, in.Mode)
		b.cycleTotal += cycles
		in.ShowCycles = true
		in.Comment = cycleComment(cycles, b.cycleTotal, in.Comment)
	} else if in.Mne != isa.MneNone {
		b.cycleTotal = 0 // running total resets on the first non-cycles instruction
	}

	if b.first == nil {
		b.first, b.last = in, in
	} else {
		in.prev = b.last
		b.last.next = in
		b.last = in
	}
	b.cur = in
	return in
}

func cycleComment(cycles, total int, rest string) string {
	base := itoaCycle(cycles) + "/" + itoaCycle(total)
	if rest == "" {
		return base
	}
	return base + " " + rest
}

func itoaCycle(n int) string {
	if n == 0 {
		return "0"
	}
	digits := [8]byte{}
	i := len(digits)
	neg := n < 0
	if neg {
		n = -n
	}
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		digits[i] = '-'
	}
	return string(digits[i:])
}

// AddInstrS adds an instruction with one or two string operands, the form
// used for (param1+param2[+1]) composition.
func (b *Block) AddInstrS(mne isa.Mnemonic, mode isa.AddrMode, param1, param2 string, ext ParamExt) *Instr {
	return b.append(&Instr{Mne: mne, Mode: mode, Param1: param1, Param2: param2, Ext: ext})
}

// AddInstrN adds an instruction with a purely numeric operand (a literal
// offset or immediate value).
func (b *Block) AddInstrN(mne isa.Mnemonic, mode isa.AddrMode, n int) *Instr {
	return b.append(&Instr{Mne: mne, Mode: mode, Offset: n, IsNumeric: true})
}

// AddInstrB adds a bare (implied-addressing, no-operand) instruction.
func (b *Block) AddInstrB(mne isa.Mnemonic) *Instr {
	return b.append(&Instr{Mne: mne, Mode: isa.ModeNone})
}

// AddCommentToCode inserts a no-mnemonic pseudo-instruction carrying only
// a comment, used to annotate source lines in the emitted listing.
func (b *Block) AddCommentToCode(comment string) *Instr {
	return b.append(&Instr{Mne: isa.MneNone, Comment: comment})
}

// GetCodeSize sums InstrSize over every instruction in the block.
func (b *Block) GetCodeSize() int {
	size := 0
	for i := b.first; i != nil; i = i.next {
		size += i.InstrSize()
	}
	return size
}

// First and Last expose block traversal for writers and optimizer passes.
func (b *Block) First() *Instr { return b.first }
func (b *Block) Last() *Instr  { return b.last }
