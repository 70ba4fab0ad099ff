package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/sarchlab/sim8086/insts"
)

var _ = Describe("Operand locator", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	locate := func(b ...byte) insts.Operands {
		ops, err := insts.Locate(decoder.DecodeBytes(b))
		Expect(err).NotTo(HaveOccurred())
		return ops
	}

	It("should alias byte registers in register mode", func() {
		// mov dl, ch
		ops := locate(0x88, 0xEA)

		Expect(ops.Src).To(Equal(&insts.RegisterOperand{Reg: insts.CH}))
		Expect(ops.Dst).To(Equal(&insts.RegisterOperand{Reg: insts.DL}))
		Expect(ops.Width).To(Equal(insts.WidthByte))
	})

	It("should swap sides when REG is the destination", func() {
		// add cx, dx
		ops := locate(0x03, 0xCA)

		Expect(ops.Dst).To(Equal(&insts.RegisterOperand{Reg: insts.CX}))
		Expect(ops.Src).To(Equal(&insts.RegisterOperand{Reg: insts.DX}))
	})

	It("should resolve the direct address form", func() {
		// mov bp, [5]
		ops := locate(0x8B, 0x2E, 0x05, 0x00)

		Expect(ops.Dst).To(Equal(&insts.RegisterOperand{Reg: insts.BP}))
		mem := ops.Src.(*insts.MemoryOperand)
		Expect(mem.Bases).To(BeEmpty())
		Expect(mem.Direct).To(Equal(insts.Some(uint16(5))))
	})

	It("should sign-extend an 8-bit displacement", func() {
		// sub [bp+di-37], si
		ops := locate(0x29, 0x73, 0xDB)

		mem := ops.Dst.(*insts.MemoryOperand)
		Expect(mem.Bases).To(Equal([]insts.RegName{insts.BP, insts.DI}))
		Expect(mem.Disp).To(Equal(int16(-37)))
		Expect(mem.Direct.Present()).To(BeFalse())
	})

	It("should read a 16-bit displacement", func() {
		// mov [bx+si-300], cx -> 89 88 D4 FE
		ops := locate(0x89, 0x88, 0xD4, 0xFE)

		mem := ops.Dst.(*insts.MemoryOperand)
		Expect(mem.Bases).To(Equal([]insts.RegName{insts.BX, insts.SI}))
		Expect(mem.Disp).To(Equal(int16(-300)))
	})

	DescribeTable("effective address bases",
		func(rm insts.RM, want []insts.RegName) {
			Expect(insts.EffectiveBases(rm)).To(Equal(want))
		},
		Entry("000", insts.RMBXSI, []insts.RegName{insts.BX, insts.SI}),
		Entry("001", insts.RMBXDI, []insts.RegName{insts.BX, insts.DI}),
		Entry("010", insts.RMBPSI, []insts.RegName{insts.BP, insts.SI}),
		Entry("011", insts.RMBPDI, []insts.RegName{insts.BP, insts.DI}),
		Entry("100", insts.RMSI, []insts.RegName{insts.SI}),
		Entry("101", insts.RMDI, []insts.RegName{insts.DI}),
		Entry("110", insts.RMBP, []insts.RegName{insts.BP}),
		Entry("111", insts.RMBX, []insts.RegName{insts.BX}),
	)

	It("should put the immediate on the source side", func() {
		// add word [bp+si+15620], 12
		ops := locate(0x83, 0x82, 0x04, 0x3D, 0x0C)

		Expect(ops.Src).To(Equal(&insts.ImmediateOperand{Value: 12, Signed: true}))
		Expect(ops.Dst.(*insts.MemoryOperand).Disp).To(Equal(int16(0x3D04)))
		Expect(ops.Width).To(Equal(insts.WidthWord))
	})

	It("should resolve segment register moves", func() {
		// mov [bx+3], es -> 8C 47 03
		ops := locate(0x8C, 0x47, 0x03)

		Expect(ops.Src).To(Equal(&insts.SegmentOperand{Seg: insts.SegES}))
		Expect(ops.Dst.(*insts.MemoryOperand).Disp).To(Equal(int16(3)))
		Expect(ops.Width).To(Equal(insts.WidthWord))
	})

	It("should resolve accumulator moves in both directions", func() {
		load := locate(0xA1, 0xFB, 0x09)
		Expect(load.Dst).To(Equal(&insts.RegisterOperand{Reg: insts.AX}))

		store := locate(0xA2, 0x0F, 0x00)
		Expect(store.Src).To(Equal(&insts.RegisterOperand{Reg: insts.AL}))
		Expect(store.Dst.(*insts.MemoryOperand).Direct).To(Equal(insts.Some(uint16(15))))
	})

	It("should resolve immediate to register", func() {
		ops := locate(0xB9, 0xF4, 0xFF)

		Expect(ops.Dst).To(Equal(&insts.RegisterOperand{Reg: insts.CX}))
		Expect(ops.Src).To(Equal(&insts.ImmediateOperand{Value: 0xFFF4}))
	})

	It("should return the failure of an undecodable payload", func() {
		_, err := insts.Locate(decoder.DecodeBytes([]byte{0xF4}))

		Expect(errors.Is(err, insts.ErrUnsupportedOpcode)).To(BeTrue())
		Expect(insts.KindOf(err)).To(Equal(insts.KindUnsupportedOpcode))
	})
})
