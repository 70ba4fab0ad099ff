package emu

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/sim8086/insts"
)

// ErrStoreNotImplemented is returned for memory writes, which the execution
// unit does not perform.
var ErrStoreNotImplemented = errors.New("memory store not implemented")

// LoadStoreUnit computes effective addresses and performs memory reads for
// the execution unit.
type LoadStoreUnit struct {
	regFile *RegFile
	biu     *BIU
	memory  *Memory
}

// NewLoadStoreUnit creates a LoadStoreUnit connected to the given register
// file, segment registers and memory.
func NewLoadStoreUnit(regFile *RegFile, biu *BIU, memory *Memory) *LoadStoreUnit {
	return &LoadStoreUnit{
		regFile: regFile,
		biu:     biu,
		memory:  memory,
	}
}

// EffectiveAddress returns the 16-bit offset of a memory operand and the
// segment it is relative to: SS when BP is a base, DS otherwise.
func (lsu *LoadStoreUnit) EffectiveAddress(m *insts.MemoryOperand) (uint16, insts.Segment) {
	if addr, ok := m.Direct.Get(); ok {
		return addr, insts.SegDS
	}

	seg := insts.SegDS
	ea := uint16(m.Disp)
	for _, base := range m.Bases {
		if base == insts.BP {
			seg = insts.SegSS
		}
		ea += lsu.regFile.Read(base)
	}
	return ea, seg
}

// PhysicalAddress returns the 20-bit address of a memory operand.
func (lsu *LoadStoreUnit) PhysicalAddress(m *insts.MemoryOperand) uint32 {
	ea, seg := lsu.EffectiveAddress(m)
	return PhysicalAddress(lsu.biu.Segment(seg), ea)
}

// Load reads a value of width w from a memory operand.
func (lsu *LoadStoreUnit) Load(m *insts.MemoryOperand, w insts.Width) uint16 {
	return lsu.memory.Read(lsu.PhysicalAddress(m), w)
}

// Store is the extension point for memory writes. It always returns
// ErrStoreNotImplemented and leaves memory unchanged.
func (lsu *LoadStoreUnit) Store(m *insts.MemoryOperand, w insts.Width, value uint16) error {
	return errors.Wrapf(ErrStoreNotImplemented, "%s store of %#x to %#05x",
		w, value, lsu.PhysicalAddress(m))
}
