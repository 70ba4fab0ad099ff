// Package insts provides Intel 8086 instruction definitions and decoding.
//
// This package implements decoding of 8086 machine code into structured
// instruction payloads. It supports:
//   - ALU register/memory with register to either (ADD, OR, ADC, SBB, AND, SUB, XOR, CMP)
//   - ALU immediate to register/memory (opcodes 0x80-0x83)
//   - MOV register/memory, segment register and immediate forms
//   - MOV immediate to register and accumulator/memory forms
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	p := decoder.Decode(insts.Window{0x03, 0xCA}) // add cx, dx
//	ops, err := insts.Locate(p)
package insts

import "fmt"

// MaxLength is the longest 8086 instruction this package decodes, in bytes.
// It is also the size of the bus prefetch queue.
const MaxLength = 6

// Window is a fixed lookahead of instruction bytes starting at the opcode.
// Bytes past the end of the input stream are zero.
type Window [MaxLength]byte

// Mode is the 2-bit MOD field.
type Mode uint8

// MOD field encodings.
const (
	ModeMemNoDisp Mode = 0b00 // Memory, no displacement (except direct address)
	ModeMemDisp8  Mode = 0b01 // Memory, 8-bit displacement
	ModeMemDisp16 Mode = 0b10 // Memory, 16-bit displacement
	ModeRegister  Mode = 0b11 // Register mode
)

func (m Mode) String() string {
	switch m {
	case ModeMemNoDisp:
		return "mem"
	case ModeMemDisp8:
		return "mem8"
	case ModeMemDisp16:
		return "mem16"
	case ModeRegister:
		return "reg"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// Register is the 3-bit REG field. The register it names depends on Width.
type Register uint8

// REG field encodings, named by their byte and word meaning.
const (
	RegALAX Register = 0b000
	RegCLCX Register = 0b001
	RegDLDX Register = 0b010
	RegBLBX Register = 0b011
	RegAHSP Register = 0b100
	RegCHBP Register = 0b101
	RegDHSI Register = 0b110
	RegBHDI Register = 0b111
)

// RM is the 3-bit R/M field. In register mode it names a register; in the
// memory modes it selects a base register combination.
type RM uint8

// R/M field encodings for the memory modes.
const (
	RMBXSI RM = 0b000
	RMBXDI RM = 0b001
	RMBPSI RM = 0b010
	RMBPDI RM = 0b011
	RMSI   RM = 0b100
	RMDI   RM = 0b101
	RMBP   RM = 0b110 // Direct address when MOD = 00
	RMBX   RM = 0b111
)

// RMDirect is the R/M code that means a direct 16-bit address under
// ModeMemNoDisp.
const RMDirect = RMBP

// Register reinterprets the R/M code as a register code (register mode).
func (r RM) Register() Register {
	return Register(r)
}

// Direction is the D bit.
type Direction uint8

// D bit encodings.
const (
	DirRegIsSource      Direction = 0
	DirRegIsDestination Direction = 1
)

// Width is the W bit.
type Width uint8

// W bit encodings.
const (
	WidthByte Width = 0
	WidthWord Width = 1
)

func (w Width) String() string {
	if w == WidthWord {
		return "word"
	}
	return "byte"
}

// Sign is the S bit of the immediate group.
type Sign uint8

// S bit encodings.
const (
	SignNone   Sign = 0 // Immediate is taken as-is
	SignExtend Sign = 1 // 8-bit immediate is sign-extended to 16 bits
)

// Segment is the 2-bit segment register selector.
type Segment uint8

// Segment register encodings.
const (
	SegES Segment = 0b00
	SegCS Segment = 0b01
	SegSS Segment = 0b10
	SegDS Segment = 0b11
)

var segmentNames = [4]string{"es", "cs", "ss", "ds"}

func (s Segment) String() string {
	return segmentNames[s&0b11]
}

// Mnemonic identifies the operation of a decoded instruction.
type Mnemonic uint8

// Mnemonics. The ALU mnemonics are ordered by their 3-bit operation code,
// which appears in opcode bits 5-3 of the register/memory group and in the
// REG field of the immediate group.
const (
	MnemonicADD Mnemonic = iota
	MnemonicOR
	MnemonicADC
	MnemonicSBB
	MnemonicAND
	MnemonicSUB
	MnemonicXOR
	MnemonicCMP
	MnemonicMOV
)

var mnemonicNames = [...]string{"add", "or", "adc", "sbb", "and", "sub", "xor", "cmp", "mov"}

func (m Mnemonic) String() string {
	if int(m) < len(mnemonicNames) {
		return mnemonicNames[m]
	}
	return fmt.Sprintf("Mnemonic(%d)", uint8(m))
}

// WritesDestination reports whether executing the operation stores a result.
// CMP only sets flags.
func (m Mnemonic) WritesDestination() bool {
	return m != MnemonicCMP
}

// aluMnemonic maps a 3-bit ALU operation code to its mnemonic.
func aluMnemonic(op uint8) Mnemonic {
	return Mnemonic(op & 0b111)
}

// RegName names an addressable register, including the byte halves of the
// first four general registers.
type RegName uint8

// Register names. Byte registers come first in REG-code order, then the
// word registers in REG-code order.
const (
	AL RegName = iota
	CL
	DL
	BL
	AH
	CH
	DH
	BH
	AX
	CX
	DX
	BX
	SP
	BP
	SI
	DI
)

var regNames = [...]string{
	"al", "cl", "dl", "bl", "ah", "ch", "dh", "bh",
	"ax", "cx", "dx", "bx", "sp", "bp", "si", "di",
}

func (r RegName) String() string {
	if int(r) < len(regNames) {
		return regNames[r]
	}
	return fmt.Sprintf("RegName(%d)", uint8(r))
}

// RegPart selects which bits of a 16-bit register a RegName covers.
type RegPart uint8

// Register parts.
const (
	PartWord RegPart = iota
	PartLow
	PartHigh
)

// IsByte reports whether the name is an 8-bit register half.
func (r RegName) IsByte() bool {
	return r < AX
}

// Index returns the index (0-7) of the 16-bit register that holds r.
// AL/AH live in AX (0), CL/CH in CX (1), DL/DH in DX (2), BL/BH in BX (3).
func (r RegName) Index() uint8 {
	if r.IsByte() {
		return uint8(r) & 0b11
	}
	return uint8(r - AX)
}

// Part returns the part of the 16-bit register that r covers.
func (r RegName) Part() RegPart {
	switch {
	case !r.IsByte():
		return PartWord
	case r >= AH:
		return PartHigh
	default:
		return PartLow
	}
}

// RegisterName resolves a 3-bit register code to a register name using the
// operand width to pick between the byte and word register sets.
func RegisterName(code Register, w Width) RegName {
	if w == WidthWord {
		return AX + RegName(code&0b111)
	}
	return RegName(code & 0b111)
}
