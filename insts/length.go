package insts

import "github.com/pkg/errors"

// LengthFields are the fields the length calculation depends on. Which of
// them are required depends on the family.
type LengthFields struct {
	Width Opt[Width]
	Sign  Opt[Sign]
	Mode  Opt[Mode]
	RM    Opt[RM]
}

// DisplacementSize returns the number of displacement bytes that follow the
// MOD byte. MOD=00 with R/M=110 is the direct address form and always
// carries a 16-bit address.
func DisplacementSize(mode Mode, rm RM) int {
	switch mode {
	case ModeMemNoDisp:
		if rm == RMDirect {
			return 2
		}
		return 0
	case ModeMemDisp8:
		return 1
	case ModeMemDisp16:
		return 2
	case ModeRegister:
		return 0
	}
	return 0
}

// ImmediateSize returns the number of immediate data bytes of an ALU
// immediate-group instruction: two for a word operand without sign
// extension, one otherwise.
func ImmediateSize(w Width, s Sign) int {
	if w == WidthWord && s == SignNone {
		return 2
	}
	return 1
}

// Length returns the total encoded length (1-6 bytes) of an instruction of
// family f. Unsupported families are rejected with ErrUnsupportedOpcode and
// a missing required field with ErrMalformedField.
func Length(f Family, lf LengthFields) (int, error) {
	switch f {
	case FamilyAluRegMem, FamilyMovRegMem, FamilyMovSegment:
		return modRMLength(lf)

	case FamilyAluImmediate:
		base, err := modRMLength(lf)
		if err != nil {
			return 0, err
		}
		w, okW := lf.Width.Get()
		s, okS := lf.Sign.Get()
		if !okW || !okS {
			return 0, errors.Wrap(ErrMalformedField, "immediate group needs width and sign")
		}
		return base + ImmediateSize(w, s), nil

	case FamilyMovImmRegMem:
		base, err := modRMLength(lf)
		if err != nil {
			return 0, err
		}
		w, ok := lf.Width.Get()
		if !ok {
			return 0, errors.Wrap(ErrMalformedField, "immediate move needs width")
		}
		return base + dataSize(w), nil

	case FamilyMovImmReg:
		w, ok := lf.Width.Get()
		if !ok {
			return 0, errors.Wrap(ErrMalformedField, "immediate move needs width")
		}
		return 1 + dataSize(w), nil

	case FamilyMovAccumulator:
		// opcode + addr-lo + addr-hi
		return 3, nil

	case FamilyUnsupported:
		return 0, ErrUnsupportedOpcode
	}
	return 0, ErrUnsupportedOpcode
}

// modRMLength is the opcode byte, the MOD byte and the displacement.
func modRMLength(lf LengthFields) (int, error) {
	mode, okMode := lf.Mode.Get()
	rm, okRM := lf.RM.Get()
	if !okMode || !okRM {
		return 0, errors.Wrap(ErrMalformedField, "MOD byte fields missing")
	}
	return 2 + DisplacementSize(mode, rm), nil
}

func dataSize(w Width) int {
	if w == WidthWord {
		return 2
	}
	return 1
}
