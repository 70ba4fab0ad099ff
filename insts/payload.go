package insts

// Payload is a decoded instruction. It is one of *AluRegMem, *AluImmediate,
// *MovWithMode, *MovWithoutMode or *DecodeFailure.
//
// Consumers dispatch with Accept; the Visitor interface makes every
// consumer handle every variant.
type Payload interface {
	// Op returns the opcode byte.
	Op() byte
	// Len returns the encoded length in bytes, 0 for a failure.
	Len() int
	// Accept calls the Visitor method for the payload's variant.
	Accept(v Visitor)
}

// Visitor handles each payload variant.
type Visitor interface {
	VisitAluRegMem(p *AluRegMem)
	VisitAluImmediate(p *AluImmediate)
	VisitMovWithMode(p *MovWithMode)
	VisitMovWithoutMode(p *MovWithoutMode)
	VisitDecodeFailure(p *DecodeFailure)
}

// AluRegMem is an ALU operation between a register and a register or memory
// operand, in either direction.
//
//	[00 op 0|d|w] [mod|reg|r/m] [disp-lo] [disp-hi]
type AluRegMem struct {
	Opcode    byte
	Mnemonic  Mnemonic
	Direction Direction
	Width     Width
	Mode      Mode
	Reg       Register
	RM        RM
	DispLow   Opt[byte]
	DispHigh  Opt[byte]
	Length    int
}

// AluImmediate is an ALU operation with immediate data and a register or
// memory destination. Exactly one of the data fields is present:
//
//	S=0 W=0  Data8           one byte
//	S=0 W=1  Data16          two bytes
//	S=1 W=0  SignedData8     one byte
//	S=1 W=1  SignExtended16  one byte, sign-extended
//
//	[100000|s|w] [mod|op|r/m] [disp-lo] [disp-hi] [data-lo] [data-hi]
type AluImmediate struct {
	Opcode         byte
	Mnemonic       Mnemonic
	Sign           Sign
	Width          Width
	Mode           Mode
	RM             RM
	DispLow        Opt[byte]
	DispHigh       Opt[byte]
	Data8          Opt[uint8]
	Data16         Opt[uint16]
	SignedData8    Opt[int8]
	SignExtended16 Opt[int16]
	Length         int
}

// Immediate returns the immediate data as the 16-bit pattern the operation
// uses, and whether it should be read as signed.
func (p *AluImmediate) Immediate() (value uint16, signed bool) {
	if v, ok := p.Data8.Get(); ok {
		return uint16(v), false
	}
	if v, ok := p.Data16.Get(); ok {
		return v, false
	}
	if v, ok := p.SignedData8.Get(); ok {
		return uint16(uint8(v)), true
	}
	if v, ok := p.SignExtended16.Get(); ok {
		return uint16(v), true
	}
	return 0, false
}

// MovWithMode is a MOV that carries a MOD byte: register/memory to/from
// register, segment register to/from register/memory, and immediate to
// register/memory.
//
//	[100010|d|w] [mod|reg|r/m] [disp-lo] [disp-hi]
//	[100011|d|0] [mod|0|sr|r/m] [disp-lo] [disp-hi]
//	[1100011|w]  [mod|000|r/m] [disp-lo] [disp-hi] [data-lo] [data-hi]
type MovWithMode struct {
	Opcode    byte
	Mnemonic  Mnemonic
	Direction Opt[Direction]
	Width     Opt[Width]
	Mode      Mode
	Reg       Opt[Register]
	Segment   Opt[Segment]
	RM        RM
	DispLow   Opt[byte]
	DispHigh  Opt[byte]
	DataLow   Opt[byte]
	DataHigh  Opt[byte]
	Length    int
}

// MovWithoutMode is a MOV with no MOD byte: immediate to register, and
// memory to/from accumulator.
//
//	[1011|w|reg] [data-lo] [data-hi]
//	[101000|d|w] [addr-lo] [addr-hi]
type MovWithoutMode struct {
	Opcode   byte
	Mnemonic Mnemonic
	Width    Width
	Register Opt[Register]
	DataLow  Opt[byte]
	DataHigh Opt[byte]
	Address  Opt[uint16]
	Length   int
}

// AccumulatorIsDestination reports, for the accumulator forms, whether the
// accumulator receives the value (0xA0/0xA1) rather than memory (0xA2/0xA3).
func (p *MovWithoutMode) AccumulatorIsDestination() bool {
	return p.Opcode&0b10 == 0
}

// DecodeFailure is an opcode the decoder could not turn into a payload.
type DecodeFailure struct {
	Opcode byte
	Kind   Kind
	Err    error
}

// Error returns the failure as an error value.
func (p *DecodeFailure) Error() string {
	return p.AsError(-1).Error()
}

// AsError returns the failure as an *Error located at offset.
func (p *DecodeFailure) AsError(offset int) *Error {
	return &Error{Kind: p.Kind, Opcode: p.Opcode, Offset: offset, Err: p.Err}
}

func (p *AluRegMem) Op() byte      { return p.Opcode }
func (p *AluImmediate) Op() byte   { return p.Opcode }
func (p *MovWithMode) Op() byte    { return p.Opcode }
func (p *MovWithoutMode) Op() byte { return p.Opcode }
func (p *DecodeFailure) Op() byte  { return p.Opcode }

func (p *AluRegMem) Len() int      { return p.Length }
func (p *AluImmediate) Len() int   { return p.Length }
func (p *MovWithMode) Len() int    { return p.Length }
func (p *MovWithoutMode) Len() int { return p.Length }
func (p *DecodeFailure) Len() int  { return 0 }

func (p *AluRegMem) Accept(v Visitor)      { v.VisitAluRegMem(p) }
func (p *AluImmediate) Accept(v Visitor)   { v.VisitAluImmediate(p) }
func (p *MovWithMode) Accept(v Visitor)    { v.VisitMovWithMode(p) }
func (p *MovWithoutMode) Accept(v Visitor) { v.VisitMovWithoutMode(p) }
func (p *DecodeFailure) Accept(v Visitor)  { v.VisitDecodeFailure(p) }
