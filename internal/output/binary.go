package output

import (
	"github.com/pkg/errors"

	"github.com/splendidnut/Neolithic-sub000/internal/ilist"
	"github.com/splendidnut/Neolithic-sub000/internal/isa"
	"github.com/splendidnut/Neolithic-sub000/internal/machine"
	"github.com/splendidnut/Neolithic-sub000/internal/sym"
)

// BinaryWriter emits the raw ROM image as a two-pass encoder: it first
// walks every code block to resolve label addresses, then re-walks to
// encode opcode and operand bytes into a flat bank buffer.
type BinaryWriter struct {
	global *sym.Table
	labels *ilist.Table

	mach   machine.Info
	entry  string
	bank   []byte
	origin int
}

func NewBinaryWriter(global *sym.Table, labels *ilist.Table) *BinaryWriter {
	return &BinaryWriter{global: global, labels: labels}
}

func (bw *BinaryWriter) Ext() string { return ".binary" }

// Init runs the address-resolution pre-pass over every block of lo,
// assigning each instruction's label a Location, and allocates the
// zero-filled bank buffer the second pass will fill in.
func (bw *BinaryWriter) Init(mach machine.Info, entryName string, lo *Layout) error {
	bw.mach = mach
	bw.entry = entryName
	bw.origin = mach.ROMOrigin
	bw.bank = make([]byte, 0x10000-mach.ROMOrigin)

	for _, b := range lo.All() {
		if b.Kind != KindCode || b.Code == nil {
			continue
		}
		addr := b.Addr
		for in := b.Code.First(); in != nil; in = in.Next() {
			if in.Label != nil {
				in.Label.HasLocation = true
				in.Label.Location = addr
			}
			if in.Mne != isa.MneNone {
				addr += in.InstrSize()
			}
		}
	}
	return nil
}

// Done resolves the entry point's address and fills the vector table at
// VectorTop with it, every word pointing at the same reset/IRQ/NMI target
// since the target machines have no separate interrupt handlers to
// distinguish.
func (bw *BinaryWriter) Done() error {
	addr, ok := bw.entryAddr()
	if !ok {
		return errors.Errorf("binary writer: entry point %q never resolved", bw.entry)
	}
	words := (0x10000 - bw.mach.VectorTop) / 2
	data := make([]byte, 0, words*2)
	for i := 0; i < words; i++ {
		data = append(data, byte(addr&0xFF), byte((addr>>8)&0xFF))
	}
	return bw.place(bw.mach.VectorTop, data)
}

func (bw *BinaryWriter) entryAddr() (int, bool) {
	if lbl := bw.labels.FindLabel(bw.entry); lbl != nil {
		lbl = lbl.Resolve()
		if lbl.HasLocation {
			return lbl.Location, true
		}
	}
	if s := bw.global.FindSymbol(bw.entry); s != nil && s.Location != sym.NoLocation {
		return s.Location, true
	}
	return 0, false
}

// place copies data into the bank buffer at addr, relative to origin.
func (bw *BinaryWriter) place(addr int, data []byte) error {
	off := addr - bw.origin
	if off < 0 || off+len(data) > len(bw.bank) {
		return errors.Errorf("binary writer: write at $%04X falls outside the ROM bank", addr)
	}
	copy(bw.bank[off:], data)
	return nil
}

func (bw *BinaryWriter) StartBlock(b *Block) error { return nil }
func (bw *BinaryWriter) EndBlock(b *Block) error   { return nil }

// WriteFunction resolves and encodes every instruction of b's block into
// the bank buffer at its already-assigned address.
func (bw *BinaryWriter) WriteFunction(b *Block) error {
	scope := scopeFor(b)
	addr := b.Addr
	for in := b.Code.First(); in != nil; in = in.Next() {
		if in.Mne == isa.MneNone {
			continue
		}
		n, err := bw.encode(in, addr, scope)
		if err != nil {
			return err
		}
		if err := bw.place(addr, n); err != nil {
			return err
		}
		addr += len(n)
	}
	return nil
}

func (bw *BinaryWriter) WriteArray(b *Block) error {
	data := make([]byte, 0, b.Size)
	for _, item := range b.Data {
		data = append(data, item.Bytes...)
	}
	return bw.place(b.Addr, data)
}

func (bw *BinaryWriter) WriteStruct(b *Block) error { return bw.WriteArray(b) }

// encode resolves in's operand and returns its encoded bytes, applying the
// 6502's little-endian absolute-operand order and the branch-relative
// signed-offset rule for ModeRel.
func (bw *BinaryWriter) encode(in *ilist.Instr, pc int, scope *sym.Table) ([]byte, error) {
	opcode, _, ok := isa.Lookup(in.Mne, in.Mode)
	if !ok {
		return nil, errors.Errorf("binary writer: %s has no encoding in mode %v", in.Mne.Name(), in.Mode)
	}
	size := isa.GetInstrSize(in.Mne, in.Mode)

	mode := in.Mode
	if mode == isa.ModeZPY && !isa.HasZPY(in.Mne) {
		mode = isa.ModeAbsY
	}

	switch mode {
	case isa.ModeNone, isa.ModeAcc:
		return []byte{opcode}, nil
	}

	if mode == isa.ModeRel {
		target, ok := resolveExprAddr(in.Param1, scope, bw.global, bw.labels)
		if !ok {
			return nil, errors.Errorf("binary writer: unresolved branch target %q", in.Param1)
		}
		rel := target - (pc + 2)
		if rel < -128 || rel > 127 {
			return nil, errors.Errorf("binary writer: branch to %q out of range (%d)", in.Param1, rel)
		}
		return []byte{opcode, byte(int8(rel))}, nil
	}

	value, ok := operandValue(in, scope, bw.global, bw.labels)
	if !ok {
		return nil, errors.Errorf("binary writer: unresolved operand %q", in.Param1)
	}

	switch size {
	case 1:
		return []byte{opcode}, nil
	case 2:
		return []byte{opcode, byte(value & 0xFF)}, nil
	case 3:
		return []byte{opcode, byte(value & 0xFF), byte((value >> 8) & 0xFF)}, nil
	default:
		return nil, errors.Errorf("binary writer: unexpected instruction size %d for %s", size, in.Mne.Name())
	}
}

// Bytes returns the finished bank buffer, for a driver to write to P.binary.
func (bw *BinaryWriter) Bytes() []byte { return bw.bank }
