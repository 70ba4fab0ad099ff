package insts

import "github.com/pkg/errors"

// Family is the classification of an opcode byte by encoding layout.
type Family uint8

// Instruction families.
const (
	FamilyUnsupported    Family = iota
	FamilyAluRegMem             // 00 op 0dw   ALU reg/mem with register to either
	FamilyAluImmediate          // 100000sw    ALU immediate to reg/mem
	FamilyMovRegMem             // 100010dw    MOV reg/mem to/from register
	FamilyMovSegment            // 100011d0    MOV segment register to/from reg/mem
	FamilyMovImmRegMem          // 1100011w    MOV immediate to reg/mem
	FamilyMovImmReg             // 1011wreg    MOV immediate to register
	FamilyMovAccumulator        // 101000dw    MOV memory to/from accumulator
)

// Group is one of the four decode paths.
type Group uint8

// Decode groups.
const (
	GroupUnsupported Group = iota
	GroupAluRegMem
	GroupAluImmediate
	GroupMovWithMode
	GroupMovWithoutMode
)

// Group returns the decode path that handles the family.
func (f Family) Group() Group {
	switch f {
	case FamilyAluRegMem:
		return GroupAluRegMem
	case FamilyAluImmediate:
		return GroupAluImmediate
	case FamilyMovRegMem, FamilyMovSegment, FamilyMovImmRegMem:
		return GroupMovWithMode
	case FamilyMovImmReg, FamilyMovAccumulator:
		return GroupMovWithoutMode
	case FamilyUnsupported:
		return GroupUnsupported
	}
	return GroupUnsupported
}

// Classify returns the family of an opcode byte.
func Classify(op byte) Family {
	switch {
	case op>>6 == 0b00 && op&0b100 == 0:
		return FamilyAluRegMem
	case op>>2 == 0b100000:
		return FamilyAluImmediate
	case op>>2 == 0b100010:
		return FamilyMovRegMem
	case op == 0x8C || op == 0x8E:
		return FamilyMovSegment
	case op>>1 == 0b1100011:
		return FamilyMovImmRegMem
	case op>>4 == 0b1011:
		return FamilyMovImmReg
	case op>>2 == 0b101000:
		return FamilyMovAccumulator
	default:
		return FamilyUnsupported
	}
}

// Decoder decodes 8086 machine code into instruction payloads.
type Decoder struct{}

// NewDecoder creates a new 8086 instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes the instruction at the start of w. It never fails on data
// values; an opcode outside the supported families yields a *DecodeFailure
// with KindUnsupportedOpcode.
func (d *Decoder) Decode(w Window) Payload {
	op := w[0]
	fam := Classify(op)

	switch fam.Group() {
	case GroupAluRegMem:
		return d.decodeAluRegMem(w)
	case GroupAluImmediate:
		return d.decodeAluImmediate(w)
	case GroupMovWithMode:
		return d.decodeMovWithMode(fam, w)
	case GroupMovWithoutMode:
		return d.decodeMovWithoutMode(fam, w)
	case GroupUnsupported:
		return unsupported(op)
	}

	return unsupported(op)
}

// DecodeBytes decodes the instruction at the start of b. Bytes past the end
// of b read as zero.
func (d *Decoder) DecodeBytes(b []byte) Payload {
	var w Window
	copy(w[:], b)
	return d.Decode(w)
}

func unsupported(op byte) *DecodeFailure {
	return &DecodeFailure{Opcode: op, Kind: KindUnsupportedOpcode}
}

func malformed(op byte, err error) *DecodeFailure {
	return &DecodeFailure{Opcode: op, Kind: KindMalformedField, Err: err}
}

// byteReader walks a window, counting the bytes consumed.
type byteReader struct {
	w   Window
	pos int
}

func (r *byteReader) next() byte {
	b := r.w[r.pos]
	r.pos++
	return b
}

// displacement reads the displacement bytes that the mode and r/m require.
func (r *byteReader) displacement(mode Mode, rm RM) (lo, hi Opt[byte]) {
	switch DisplacementSize(mode, rm) {
	case 1:
		lo = Some(r.next())
	case 2:
		lo = Some(r.next())
		hi = Some(r.next())
	}
	return lo, hi
}

func (r *byteReader) word() uint16 {
	lo := r.next()
	hi := r.next()
	return uint16(lo) | uint16(hi)<<8
}

// finish checks that the length calculation and the bytes consumed agree.
func (r *byteReader) finish(fam Family, lf LengthFields) (int, error) {
	n, err := Length(fam, lf)
	if err != nil {
		return 0, err
	}
	if n != r.pos {
		return 0, errors.Wrapf(ErrMalformedField, "length %d but %d bytes consumed", n, r.pos)
	}
	return n, nil
}

// [00 op 0|d|w] [mod|reg|r/m] [disp-lo] [disp-hi]
func (d *Decoder) decodeAluRegMem(w Window) Payload {
	r := &byteReader{w: w}
	op := r.next()
	b1 := r.next()

	p := &AluRegMem{
		Opcode:    op,
		Mnemonic:  aluMnemonic(OpcodeOpField(op)),
		Direction: DirectionField(op),
		Width:     WidthField(op),
		Mode:      ModeField(b1),
		Reg:       RegField(b1),
		RM:        RMField(b1),
	}
	p.DispLow, p.DispHigh = r.displacement(p.Mode, p.RM)

	n, err := r.finish(FamilyAluRegMem, LengthFields{Mode: Some(p.Mode), RM: Some(p.RM)})
	if err != nil {
		return malformed(op, err)
	}
	p.Length = n
	return p
}

// [100000|s|w] [mod|op|r/m] [disp-lo] [disp-hi] [data-lo] [data-hi]
func (d *Decoder) decodeAluImmediate(w Window) Payload {
	r := &byteReader{w: w}
	op := r.next()
	b1 := r.next()

	p := &AluImmediate{
		Opcode:   op,
		Mnemonic: aluMnemonic(SubOpcodeField(b1)),
		Sign:     SignField(op),
		Width:    WidthField(op),
		Mode:     ModeField(b1),
		RM:       RMField(b1),
	}
	p.DispLow, p.DispHigh = r.displacement(p.Mode, p.RM)

	switch {
	case p.Sign == SignNone && p.Width == WidthByte:
		p.Data8 = Some(r.next())
	case p.Sign == SignNone && p.Width == WidthWord:
		p.Data16 = Some(r.word())
	case p.Sign == SignExtend && p.Width == WidthByte:
		p.SignedData8 = Some(int8(r.next()))
	default:
		p.SignExtended16 = Some(int16(int8(r.next())))
	}

	n, err := r.finish(FamilyAluImmediate, LengthFields{
		Width: Some(p.Width),
		Sign:  Some(p.Sign),
		Mode:  Some(p.Mode),
		RM:    Some(p.RM),
	})
	if err != nil {
		return malformed(op, err)
	}
	p.Length = n
	return p
}

func (d *Decoder) decodeMovWithMode(fam Family, w Window) Payload {
	r := &byteReader{w: w}
	op := r.next()
	b1 := r.next()

	p := &MovWithMode{
		Opcode:   op,
		Mnemonic: MnemonicMOV,
		Mode:     ModeField(b1),
		RM:       RMField(b1),
	}
	lf := LengthFields{Mode: Some(p.Mode), RM: Some(p.RM)}

	switch fam {
	case FamilyMovRegMem:
		p.Direction = Some(DirectionField(op))
		p.Width = Some(WidthField(op))
		p.Reg = Some(RegField(b1))
		p.DispLow, p.DispHigh = r.displacement(p.Mode, p.RM)

	case FamilyMovSegment:
		// Segment transfers are always word sized; bit 0 is not a W bit.
		// Bit 5 of the MOD byte is the high bit of a 2-bit SR and must be 0.
		if b1&0b00100000 != 0 {
			return malformed(op, errors.Wrapf(ErrMalformedField, "segment move with REG=%03b", RegField(b1)))
		}
		p.Direction = Some(DirectionField(op))
		p.Segment = Some(SegmentField(b1))
		p.DispLow, p.DispHigh = r.displacement(p.Mode, p.RM)

	case FamilyMovImmRegMem:
		if reg := RegField(b1); reg != 0 {
			return malformed(op, errors.Wrapf(ErrMalformedField, "immediate move with REG=%03b", reg))
		}
		width := WidthField(op)
		p.Width = Some(width)
		lf.Width = p.Width
		p.DispLow, p.DispHigh = r.displacement(p.Mode, p.RM)
		p.DataLow = Some(r.next())
		if width == WidthWord {
			p.DataHigh = Some(r.next())
		}

	default:
		return unsupported(op)
	}

	n, err := r.finish(fam, lf)
	if err != nil {
		return malformed(op, err)
	}
	p.Length = n
	return p
}

func (d *Decoder) decodeMovWithoutMode(fam Family, w Window) Payload {
	r := &byteReader{w: w}
	op := r.next()

	p := &MovWithoutMode{
		Opcode:   op,
		Mnemonic: MnemonicMOV,
	}

	switch fam {
	case FamilyMovImmReg:
		p.Width = ShortWidthField(op)
		p.Register = Some(ShortRegField(op))
		p.DataLow = Some(r.next())
		if p.Width == WidthWord {
			p.DataHigh = Some(r.next())
		}

	case FamilyMovAccumulator:
		p.Width = WidthField(op)
		p.Address = Some(r.word())

	default:
		return unsupported(op)
	}

	n, err := r.finish(fam, LengthFields{Width: Some(p.Width)})
	if err != nil {
		return malformed(op, err)
	}
	p.Length = n
	return p
}
