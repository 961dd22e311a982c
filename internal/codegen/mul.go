package codegen

import (
	"github.com/splendidnut/Neolithic-sub000/internal/ast"
	"github.com/splendidnut/Neolithic-sub000/internal/ilist"
	"github.com/splendidnut/Neolithic-sub000/internal/isa"
)

// genMultiply lowers `mul`. The 6502 has no multiply instruction, so a
// literal multiplier of 16 or less synthesizes a compile-time shift/add
// sequence tuned to that constant's bit pattern (mulByConstant); larger
// literals and any variable-by-variable product fall back to the
// generic 8x8->16 shift-and-add loop, which produces a 16-bit result
// (low byte in A, high byte in X).
func (g *Generator) genMultiply(l *ast.List, dest DestType) {
	left, right := l.Nodes[1], l.Nodes[2]

	if _, ok := right.AsInt32(); !ok {
		if lv, ok := left.AsInt32(); ok {
			left, right = right, left
			_ = lv
		}
	}

	if k, ok := right.AsInt32(); ok && k >= 0 && k <= 16 {
		g.genExpr(left, DestChar)
		g.mulByConstant(uint8(k))
		g.lastA = regUse{}
		return
	}

	g.genMultiplyVariable(left, right)
}

// mulByConstant multiplies the value already in A by the literal k,
// stashing the original in the scratch temp and building the product
// MSB-first: double the running total for every bit of k, adding the
// original back in whenever that bit is set. 1, and any pure power of
// two, reduce to a handful of ASLs with no add at all.
func (g *Generator) mulByConstant(k uint8) {
	switch k {
	case 0:
		g.block.AddInstrS(isa.LDA, isa.ModeImm, "0", "", ilist.ExtNormal)
		return
	case 1:
		return
	}

	if k&(k-1) == 0 {
		shifts := 0
		for v := k; v > 1; v >>= 1 {
			shifts++
		}
		for i := 0; i < shifts; i++ {
			g.block.AddInstrB(isa.ASL)
		}
		return
	}

	g.block.AddInstrS(isa.STA, isa.ModeZP, "L_TMP", "", ilist.ExtNormal)

	highBit := 7
	for highBit > 0 && k&(1<<uint(highBit)) == 0 {
		highBit--
	}
	for bit := highBit - 1; bit >= 0; bit-- {
		g.block.AddInstrB(isa.ASL)
		if k&(1<<uint(bit)) != 0 {
			g.block.AddInstrB(isa.CLC)
			g.block.AddInstrS(isa.ADC, isa.ModeZP, "L_TMP", "", ilist.ExtNormal)
		}
	}
}

// genMultiplyVariable emits the classic 8x8->16 shift-and-add kernel for a
// runtime-by-runtime product: the multiplier is shifted out one bit at a
// time, and each set bit adds the (growing, now 16-bit-wide) multiplicand
// into a running 16-bit total kept in a zero-page quad. The multiplicand
// is doubled every iteration via ASL/ROL so its own overflow past bit 7
// feeds into the high byte instead of being lost, matching the standard
// widening multiply kernel. The finished product is left low byte in A,
// high byte in X.
func (g *Generator) genMultiplyVariable(left, right ast.Node) {
	g.genExpr(left, DestChar)
	g.block.AddInstrS(isa.STA, isa.ModeZP, "L_MUL_A", "", ilist.ExtNormal)
	g.genExpr(right, DestChar)
	g.block.AddInstrS(isa.STA, isa.ModeZP, "L_MUL_B", "", ilist.ExtNormal)

	g.block.AddInstrS(isa.LDA, isa.ModeImm, "0", "", ilist.ExtNormal)
	g.block.AddInstrS(isa.STA, isa.ModeZP, "L_MUL_AH", "", ilist.ExtNormal)
	g.block.AddInstrS(isa.STA, isa.ModeZP, "L_MUL_RL", "", ilist.ExtNormal)
	g.block.AddInstrS(isa.STA, isa.ModeZP, "L_MUL_RH", "", ilist.ExtNormal)
	g.block.AddInstrS(isa.LDX, isa.ModeImm, "8", "", ilist.ExtNormal)

	top := g.Labels.NewGenericLabel(ilist.LabelCode)
	skip := g.Labels.NewGenericLabel(ilist.LabelCode)

	g.placeLabel(top)
	g.block.AddInstrS(isa.LSR, isa.ModeZP, "L_MUL_B", "", ilist.ExtNormal)
	g.emitBranch(isa.BCC, skip)
	g.block.AddInstrS(isa.LDA, isa.ModeZP, "L_MUL_RL", "", ilist.ExtNormal)
	g.block.AddInstrB(isa.CLC)
	g.block.AddInstrS(isa.ADC, isa.ModeZP, "L_MUL_A", "", ilist.ExtNormal)
	g.block.AddInstrS(isa.STA, isa.ModeZP, "L_MUL_RL", "", ilist.ExtNormal)
	g.block.AddInstrS(isa.LDA, isa.ModeZP, "L_MUL_RH", "", ilist.ExtNormal)
	g.block.AddInstrS(isa.ADC, isa.ModeZP, "L_MUL_AH", "", ilist.ExtNormal)
	g.block.AddInstrS(isa.STA, isa.ModeZP, "L_MUL_RH", "", ilist.ExtNormal)
	g.placeLabel(skip)
	g.block.AddInstrS(isa.ASL, isa.ModeZP, "L_MUL_A", "", ilist.ExtNormal)
	g.block.AddInstrS(isa.ROL, isa.ModeZP, "L_MUL_AH", "", ilist.ExtNormal)
	g.block.AddInstrB(isa.DEX)
	g.emitBranch(isa.BNE, top)

	g.block.AddInstrS(isa.LDA, isa.ModeZP, "L_MUL_RL", "", ilist.ExtNormal)
	g.block.AddInstrS(isa.LDX, isa.ModeZP, "L_MUL_RH", "", ilist.ExtNormal)
	g.lastA = regUse{}
	g.lastX = regUse{}
}
