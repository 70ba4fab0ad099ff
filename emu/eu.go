package emu

import (
	"fmt"

	"github.com/sarchlab/sim8086/insts"
)

// Change is one register write made by an executed instruction.
type Change struct {
	Name string
	Old  uint16
	New  uint16
}

// String formats the change as "cx:0x0->0xc".
func (c Change) String() string {
	return fmt.Sprintf("%s:%#x->%#x", c.Name, c.Old, c.New)
}

// ExecResult reports what executing one instruction did.
type ExecResult struct {
	// Executed is false when the instruction class has no execution
	// semantics yet; state is then unchanged.
	Executed bool

	// Changes lists register writes that changed a value, in order.
	Changes []Change

	// Err is the reason a supported instruction could not execute.
	Err error
}

// EU models the 8086 execution unit. It executes data transfers into
// general and segment registers; ALU operations and memory writes are not
// executed.
type EU struct {
	regFile *RegFile
	biu     *BIU
	lsu     *LoadStoreUnit
}

// NewEU creates an execution unit over the given state.
func NewEU(regFile *RegFile, biu *BIU, memory *Memory) *EU {
	return &EU{
		regFile: regFile,
		biu:     biu,
		lsu:     NewLoadStoreUnit(regFile, biu, memory),
	}
}

// LoadStoreUnit returns the unit the EU uses for memory operands.
func (eu *EU) LoadStoreUnit() *LoadStoreUnit {
	return eu.lsu
}

// Execute runs one decoded instruction with its resolved operands.
func (eu *EU) Execute(p insts.Payload, ops insts.Operands) ExecResult {
	x := &executor{eu: eu, ops: ops}
	p.Accept(x)
	return x.result
}

type executor struct {
	eu     *EU
	ops    insts.Operands
	result ExecResult
}

func (x *executor) VisitAluRegMem(*insts.AluRegMem)         {}
func (x *executor) VisitAluImmediate(*insts.AluImmediate)   {}
func (x *executor) VisitDecodeFailure(*insts.DecodeFailure) {}

func (x *executor) VisitMovWithMode(*insts.MovWithMode) {
	x.result = x.eu.move(x.ops)
}

func (x *executor) VisitMovWithoutMode(*insts.MovWithoutMode) {
	x.result = x.eu.move(x.ops)
}

func (eu *EU) move(ops insts.Operands) ExecResult {
	if ops.Dst == nil || ops.Src == nil {
		return ExecResult{}
	}

	value := eu.read(ops.Src, ops.Width)

	switch dst := ops.Dst.(type) {
	case *insts.RegisterOperand:
		return ExecResult{Executed: true, Changes: eu.writeRegister(dst.Reg, value)}
	case *insts.SegmentOperand:
		return ExecResult{Executed: true, Changes: eu.writeSegment(dst.Seg, value)}
	case *insts.MemoryOperand:
		return ExecResult{Err: eu.lsu.Store(dst, ops.Width, value)}
	}
	return ExecResult{}
}

func (eu *EU) read(op insts.Operand, w insts.Width) uint16 {
	var v uint16
	switch src := op.(type) {
	case *insts.RegisterOperand:
		v = eu.regFile.Read(src.Reg)
	case *insts.SegmentOperand:
		v = eu.biu.Segment(src.Seg)
	case *insts.MemoryOperand:
		v = eu.lsu.Load(src, w)
	case *insts.ImmediateOperand:
		v = src.Value
	}
	if w == insts.WidthByte {
		v &= 0x00FF
	}
	return v
}

// writeRegister reports the change against the full 16-bit register.
func (eu *EU) writeRegister(name insts.RegName, value uint16) []Change {
	word := insts.AX + insts.RegName(name.Index())
	old := eu.regFile.Read(word)
	eu.regFile.Write(name, value)
	now := eu.regFile.Read(word)
	if old == now {
		return nil
	}
	return []Change{{Name: word.String(), Old: old, New: now}}
}

func (eu *EU) writeSegment(seg insts.Segment, value uint16) []Change {
	old := eu.biu.Segment(seg)
	eu.biu.SetSegment(seg, value)
	if old == value {
		return nil
	}
	return []Change{{Name: seg.String(), Old: old, New: value}}
}
