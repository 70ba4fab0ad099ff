package insts

import "github.com/pkg/errors"

// Operand is one side of an instruction: *RegisterOperand,
// *SegmentOperand, *MemoryOperand or *ImmediateOperand.
type Operand interface {
	isOperand()
}

// RegisterOperand is a general register or register half.
type RegisterOperand struct {
	Reg RegName
}

// SegmentOperand is a segment register.
type SegmentOperand struct {
	Seg Segment
}

// MemoryOperand is an effective address: zero to two base registers plus a
// signed displacement, or a direct 16-bit address.
type MemoryOperand struct {
	Bases  []RegName
	Disp   int16
	Direct Opt[uint16]
}

// ImmediateOperand is immediate data in the operand width.
type ImmediateOperand struct {
	Value  uint16
	Signed bool
}

func (*RegisterOperand) isOperand()  {}
func (*SegmentOperand) isOperand()   {}
func (*MemoryOperand) isOperand()    {}
func (*ImmediateOperand) isOperand() {}

// Operands are the resolved destination and source of an instruction.
type Operands struct {
	Dst   Operand
	Src   Operand
	Width Width
}

// effectiveBases is Table 4-10 of the 8086 family user's manual, keyed by
// R/M. R/M 110 under MOD=00 is the direct address instead of BP.
var effectiveBases = [8][]RegName{
	RMBXSI: {BX, SI},
	RMBXDI: {BX, DI},
	RMBPSI: {BP, SI},
	RMBPDI: {BP, DI},
	RMSI:   {SI},
	RMDI:   {DI},
	RMBP:   {BP},
	RMBX:   {BX},
}

// EffectiveBases returns the base registers an R/M code adds together.
func EffectiveBases(rm RM) []RegName {
	return effectiveBases[rm&0b111]
}

// Displacement is the raw displacement bytes of an instruction.
type Displacement struct {
	Low  Opt[byte]
	High Opt[byte]
}

// value returns the displacement sign-extended to 16 bits.
func (d Displacement) value() int16 {
	lo, okLo := d.Low.Get()
	if !okLo {
		return 0
	}
	hi, okHi := d.High.Get()
	if !okHi {
		return int16(int8(lo))
	}
	return int16(uint16(lo) | uint16(hi)<<8)
}

// RMOperand resolves the R/M side of a MOD byte: a register in register
// mode, otherwise an effective address.
func RMOperand(mode Mode, rm RM, w Width, disp Displacement) Operand {
	switch mode {
	case ModeRegister:
		return &RegisterOperand{Reg: RegisterName(rm.Register(), w)}
	case ModeMemNoDisp:
		if rm == RMDirect {
			return &MemoryOperand{Direct: Some(uint16(disp.value()))}
		}
		return &MemoryOperand{Bases: EffectiveBases(rm)}
	case ModeMemDisp8, ModeMemDisp16:
		return &MemoryOperand{Bases: EffectiveBases(rm), Disp: disp.value()}
	}
	return &MemoryOperand{Bases: EffectiveBases(rm)}
}

// LocateModRM resolves the source and destination of a MOD byte encoding.
// The register side is absent for encodings whose REG field is an opcode
// extension; then the R/M side is the destination and Src is nil for the
// caller to fill.
func LocateModRM(mode Mode, rm RM, reg Opt[Register], w Width, dir Direction, disp Displacement) Operands {
	rmSide := RMOperand(mode, rm, w, disp)

	code, ok := reg.Get()
	if !ok {
		return Operands{Dst: rmSide, Width: w}
	}

	regSide := &RegisterOperand{Reg: RegisterName(code, w)}
	if dir == DirRegIsDestination {
		return Operands{Dst: regSide, Src: rmSide, Width: w}
	}
	return Operands{Dst: rmSide, Src: regSide, Width: w}
}

// Locate resolves the operands of a decoded payload. A *DecodeFailure has
// no operands and returns its failure.
func Locate(p Payload) (Operands, error) {
	l := &locator{}
	p.Accept(l)
	return l.ops, l.err
}

type locator struct {
	ops Operands
	err error
}

func (l *locator) VisitAluRegMem(p *AluRegMem) {
	l.ops = LocateModRM(p.Mode, p.RM, Some(p.Reg), p.Width, p.Direction,
		Displacement{Low: p.DispLow, High: p.DispHigh})
}

func (l *locator) VisitAluImmediate(p *AluImmediate) {
	l.ops = LocateModRM(p.Mode, p.RM, None[Register](), p.Width, DirRegIsSource,
		Displacement{Low: p.DispLow, High: p.DispHigh})
	value, signed := p.Immediate()
	l.ops.Src = &ImmediateOperand{Value: value, Signed: signed}
}

func (l *locator) VisitMovWithMode(p *MovWithMode) {
	disp := Displacement{Low: p.DispLow, High: p.DispHigh}

	if seg, ok := p.Segment.Get(); ok {
		dir, okDir := p.Direction.Get()
		if !okDir {
			l.err = errors.Wrap(ErrMalformedField, "segment move without direction")
			return
		}
		rmSide := RMOperand(p.Mode, p.RM, WidthWord, disp)
		segSide := &SegmentOperand{Seg: seg}
		if dir == DirRegIsDestination {
			l.ops = Operands{Dst: segSide, Src: rmSide, Width: WidthWord}
		} else {
			l.ops = Operands{Dst: rmSide, Src: segSide, Width: WidthWord}
		}
		return
	}

	w, ok := p.Width.Get()
	if !ok {
		l.err = errors.Wrap(ErrMalformedField, "move without width")
		return
	}

	if p.Reg.Present() {
		dir, okDir := p.Direction.Get()
		if !okDir {
			l.err = errors.Wrap(ErrMalformedField, "register move without direction")
			return
		}
		l.ops = LocateModRM(p.Mode, p.RM, p.Reg, w, dir, disp)
		return
	}

	l.ops = LocateModRM(p.Mode, p.RM, None[Register](), w, DirRegIsSource, disp)
	l.ops.Src = &ImmediateOperand{Value: data(p.DataLow, p.DataHigh)}
}

func (l *locator) VisitMovWithoutMode(p *MovWithoutMode) {
	if code, ok := p.Register.Get(); ok {
		l.ops = Operands{
			Dst:   &RegisterOperand{Reg: RegisterName(code, p.Width)},
			Src:   &ImmediateOperand{Value: data(p.DataLow, p.DataHigh)},
			Width: p.Width,
		}
		return
	}

	addr, ok := p.Address.Get()
	if !ok {
		l.err = errors.Wrap(ErrMalformedField, "accumulator move without address")
		return
	}
	acc := &RegisterOperand{Reg: RegisterName(RegALAX, p.Width)}
	mem := &MemoryOperand{Direct: Some(addr)}
	if p.AccumulatorIsDestination() {
		l.ops = Operands{Dst: acc, Src: mem, Width: p.Width}
	} else {
		l.ops = Operands{Dst: mem, Src: acc, Width: p.Width}
	}
}

func (l *locator) VisitDecodeFailure(p *DecodeFailure) {
	l.err = p.AsError(-1)
}

// data assembles immediate data bytes; a missing high byte is zero.
func data(lo, hi Opt[byte]) uint16 {
	return uint16(lo.Or(0)) | uint16(hi.Or(0))<<8
}
