// Package latency estimates 8086 instruction clock counts.
//
// The counts are based on the 8086 family user's manual and can be
// configured via TimingConfig. Transfer penalties for words at odd
// addresses are not modeled.
package latency

import (
	"github.com/sarchlab/sim8086/insts"
)

// Table provides instruction latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with default 8086 timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}

// GetLatency returns the estimated clocks of an instruction, including the
// effective address calculation. A decode failure costs nothing.
func (t *Table) GetLatency(p insts.Payload, ops insts.Operands) uint64 {
	c := &classifier{}
	p.Accept(c)
	if c.failed {
		return 0
	}

	base := t.baseLatency(c, ops)
	if c.accumulator {
		return base
	}
	if m, ok := ops.Dst.(*insts.MemoryOperand); ok {
		return base + t.EALatency(c.mode, m)
	}
	if m, ok := ops.Src.(*insts.MemoryOperand); ok {
		return base + t.EALatency(c.mode, m)
	}
	return base
}

func (t *Table) baseLatency(c *classifier, ops insts.Operands) uint64 {
	_, dstMem := ops.Dst.(*insts.MemoryOperand)
	_, srcMem := ops.Src.(*insts.MemoryOperand)
	_, srcImm := ops.Src.(*insts.ImmediateOperand)

	if c.mnemonic == insts.MnemonicMOV {
		switch {
		case c.accumulator:
			return t.config.MovAccumulatorLatency
		case dstMem && srcImm:
			return t.config.MovMemImmLatency
		case dstMem:
			return t.config.MovMemRegLatency
		case srcMem:
			return t.config.MovRegMemLatency
		case srcImm:
			return t.config.MovRegImmLatency
		default:
			return t.config.MovRegRegLatency
		}
	}

	cmp := !c.mnemonic.WritesDestination()
	switch {
	case dstMem && srcImm && cmp:
		return t.config.CmpMemImmLatency
	case dstMem && srcImm:
		return t.config.AluMemImmLatency
	case dstMem && cmp:
		return t.config.CmpMemRegLatency
	case dstMem:
		return t.config.AluMemRegLatency
	case srcMem:
		return t.config.AluRegMemLatency
	case srcImm:
		return t.config.AluRegImmLatency
	default:
		return t.config.AluRegRegLatency
	}
}

// EALatency returns the effective address calculation time of a memory
// operand encoded with the given MOD field.
func (t *Table) EALatency(mode insts.Mode, m *insts.MemoryOperand) uint64 {
	if m.Direct.Present() {
		return t.config.EADirectLatency
	}

	var ea uint64
	switch len(m.Bases) {
	case 1:
		ea = t.config.EABaseOrIndexLatency
	case 2:
		if fastPair(m.Bases[0], m.Bases[1]) {
			ea = t.config.EABaseIndexFastLatency
		} else {
			ea = t.config.EABaseIndexSlowLatency
		}
	}

	if mode == insts.ModeMemDisp8 || mode == insts.ModeMemDisp16 {
		ea += t.config.EADisplacementLatency
	}
	return ea
}

// fastPair reports whether a base+index pair is BP+DI or BX+SI, which the
// 8086 adds one clock faster than BP+SI and BX+DI.
func fastPair(base, index insts.RegName) bool {
	return (base == insts.BP && index == insts.DI) || (base == insts.BX && index == insts.SI)
}

// IsMemoryOp reports whether the instruction has a memory operand.
func (t *Table) IsMemoryOp(ops insts.Operands) bool {
	_, dst := ops.Dst.(*insts.MemoryOperand)
	_, src := ops.Src.(*insts.MemoryOperand)
	return dst || src
}

// classifier extracts the fields timing depends on.
type classifier struct {
	mnemonic    insts.Mnemonic
	mode        insts.Mode
	accumulator bool
	failed      bool
}

func (c *classifier) VisitAluRegMem(p *insts.AluRegMem) {
	c.mnemonic, c.mode = p.Mnemonic, p.Mode
}

func (c *classifier) VisitAluImmediate(p *insts.AluImmediate) {
	c.mnemonic, c.mode = p.Mnemonic, p.Mode
}

func (c *classifier) VisitMovWithMode(p *insts.MovWithMode) {
	c.mnemonic, c.mode = p.Mnemonic, p.Mode
}

func (c *classifier) VisitMovWithoutMode(p *insts.MovWithoutMode) {
	c.mnemonic = p.Mnemonic
	c.accumulator = p.Address.Present()
}

func (c *classifier) VisitDecodeFailure(*insts.DecodeFailure) {
	c.failed = true
}
