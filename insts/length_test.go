package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/sarchlab/sim8086/insts"
)

var _ = Describe("Length", func() {
	modRM := func(mode insts.Mode, rm insts.RM) insts.LengthFields {
		return insts.LengthFields{Mode: insts.Some(mode), RM: insts.Some(rm)}
	}

	It("should follow the MOD/RM table for every pair", func() {
		for m := 0; m < 4; m++ {
			for r := 0; r < 8; r++ {
				mode, rm := insts.Mode(m), insts.RM(r)
				want := map[insts.Mode]int{
					insts.ModeMemNoDisp: 2,
					insts.ModeMemDisp8:  3,
					insts.ModeMemDisp16: 4,
					insts.ModeRegister:  2,
				}[mode]
				if mode == insts.ModeMemNoDisp && rm == insts.RMDirect {
					want = 4
				}

				for _, fam := range []insts.Family{insts.FamilyAluRegMem, insts.FamilyMovRegMem, insts.FamilyMovSegment} {
					n, err := insts.Length(fam, modRM(mode, rm))
					Expect(err).NotTo(HaveOccurred())
					Expect(n).To(Equal(want), "mode %v rm %03b", mode, rm)
				}
			}
		}
	})

	It("should give the direct address form a 16-bit displacement", func() {
		Expect(insts.DisplacementSize(insts.ModeMemNoDisp, insts.RMDirect)).To(Equal(2))
		Expect(insts.DisplacementSize(insts.ModeMemNoDisp, insts.RMBX)).To(Equal(0))
		Expect(insts.DisplacementSize(insts.ModeRegister, insts.RMDirect)).To(Equal(0))
	})

	DescribeTable("immediate group",
		func(w insts.Width, s insts.Sign, mode insts.Mode, rm insts.RM, want int) {
			lf := modRM(mode, rm)
			lf.Width = insts.Some(w)
			lf.Sign = insts.Some(s)
			Expect(insts.Length(insts.FamilyAluImmediate, lf)).To(Equal(want))
		},
		Entry("byte, register", insts.WidthByte, insts.SignNone, insts.ModeRegister, insts.RMBX, 3),
		Entry("word no sign, register", insts.WidthWord, insts.SignNone, insts.ModeRegister, insts.RMBX, 4),
		Entry("word sign-extended, register", insts.WidthWord, insts.SignExtend, insts.ModeRegister, insts.RMBX, 3),
		Entry("word sign-extended, disp16", insts.WidthWord, insts.SignExtend, insts.ModeMemDisp16, insts.RMBPSI, 5),
		Entry("word no sign, direct", insts.WidthWord, insts.SignNone, insts.ModeMemNoDisp, insts.RMDirect, 6),
		Entry("byte signed, disp8", insts.WidthByte, insts.SignExtend, insts.ModeMemDisp8, insts.RMSI, 4),
	)

	DescribeTable("immediate moves",
		func(fam insts.Family, lf insts.LengthFields, want int) {
			Expect(insts.Length(fam, lf)).To(Equal(want))
		},
		Entry("reg byte", insts.FamilyMovImmReg, insts.LengthFields{Width: insts.Some(insts.WidthByte)}, 2),
		Entry("reg word", insts.FamilyMovImmReg, insts.LengthFields{Width: insts.Some(insts.WidthWord)}, 3),
		Entry("mem byte no disp", insts.FamilyMovImmRegMem, insts.LengthFields{
			Width: insts.Some(insts.WidthByte), Mode: insts.Some(insts.ModeMemNoDisp), RM: insts.Some(insts.RMBXSI)}, 3),
		Entry("mem word disp16", insts.FamilyMovImmRegMem, insts.LengthFields{
			Width: insts.Some(insts.WidthWord), Mode: insts.Some(insts.ModeMemDisp16), RM: insts.Some(insts.RMDI)}, 6),
		Entry("accumulator", insts.FamilyMovAccumulator, insts.LengthFields{Width: insts.Some(insts.WidthWord)}, 3),
	)

	It("should not assign a length to unsupported opcodes", func() {
		_, err := insts.Length(insts.FamilyUnsupported, insts.LengthFields{})
		Expect(errors.Is(err, insts.ErrUnsupportedOpcode)).To(BeTrue())
	})

	It("should report missing fields as malformed", func() {
		_, err := insts.Length(insts.FamilyAluRegMem, insts.LengthFields{Mode: insts.Some(insts.ModeRegister)})
		Expect(errors.Is(err, insts.ErrMalformedField)).To(BeTrue())

		_, err = insts.Length(insts.FamilyMovImmReg, insts.LengthFields{})
		Expect(errors.Is(err, insts.ErrMalformedField)).To(BeTrue())
	})
})
