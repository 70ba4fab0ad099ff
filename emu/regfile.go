package emu

import (
	"strings"

	"github.com/sarchlab/sim8086/insts"
)

// RegFile is the 8086 general register file: AX, CX, DX, BX, SP, BP, SI and
// DI in REG-code order, plus the flags. The low and high bytes of the first
// four registers are addressable on their own.
type RegFile struct {
	// R holds the eight 16-bit registers indexed by REG code.
	R [8]uint16

	// Flags holds the status and control flags.
	Flags Flags
}

// Read reads a register or register half.
func (r *RegFile) Read(name insts.RegName) uint16 {
	v := r.R[name.Index()&0b111]
	switch name.Part() {
	case insts.PartLow:
		return v & 0x00FF
	case insts.PartHigh:
		return v >> 8
	}
	return v
}

// Write writes a register or register half. Writing a half preserves the
// other half of the same 16-bit register.
func (r *RegFile) Write(name insts.RegName, value uint16) {
	idx := name.Index() & 0b111
	switch name.Part() {
	case insts.PartLow:
		r.R[idx] = r.R[idx]&0xFF00 | value&0x00FF
	case insts.PartHigh:
		r.R[idx] = r.R[idx]&0x00FF | (value&0x00FF)<<8
	default:
		r.R[idx] = value
	}
}

// Flags are the nine 8086 flag bits.
type Flags struct {
	CF bool // carry
	PF bool // parity
	AF bool // auxiliary carry
	ZF bool // zero
	SF bool // sign
	TF bool // trap
	IF bool // interrupt enable
	DF bool // direction
	OF bool // overflow
}

// Flag bit positions in the FLAGS word.
const (
	FlagCF = 1 << 0
	FlagPF = 1 << 2
	FlagAF = 1 << 4
	FlagZF = 1 << 6
	FlagSF = 1 << 7
	FlagTF = 1 << 8
	FlagIF = 1 << 9
	FlagDF = 1 << 10
	FlagOF = 1 << 11
)

// Word packs the flags into the FLAGS register layout.
func (f Flags) Word() uint16 {
	var w uint16
	for _, b := range f.bits() {
		if b.set {
			w |= b.mask
		}
	}
	return w
}

// SetWord unpacks the FLAGS register layout. Reserved bits are ignored.
func (f *Flags) SetWord(w uint16) {
	f.CF = w&FlagCF != 0
	f.PF = w&FlagPF != 0
	f.AF = w&FlagAF != 0
	f.ZF = w&FlagZF != 0
	f.SF = w&FlagSF != 0
	f.TF = w&FlagTF != 0
	f.IF = w&FlagIF != 0
	f.DF = w&FlagDF != 0
	f.OF = w&FlagOF != 0
}

// String lists the set flags by letter, e.g. "CZS".
func (f Flags) String() string {
	var sb strings.Builder
	for _, b := range f.bits() {
		if b.set {
			sb.WriteByte(b.letter)
		}
	}
	return sb.String()
}

type flagBit struct {
	set    bool
	mask   uint16
	letter byte
}

func (f Flags) bits() [9]flagBit {
	return [9]flagBit{
		{f.CF, FlagCF, 'C'},
		{f.PF, FlagPF, 'P'},
		{f.AF, FlagAF, 'A'},
		{f.ZF, FlagZF, 'Z'},
		{f.SF, FlagSF, 'S'},
		{f.TF, FlagTF, 'T'},
		{f.IF, FlagIF, 'I'},
		{f.DF, FlagDF, 'D'},
		{f.OF, FlagOF, 'O'},
	}
}
