package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/sim8086/emu"
	"github.com/sarchlab/sim8086/insts"
)

var _ = Describe("Memory", func() {
	var memory *emu.Memory

	BeforeEach(func() {
		memory = emu.NewMemory()
	})

	It("should store words little-endian", func() {
		memory.Write16(0x1000, 0xBEEF)

		Expect(memory.Read8(0x1000)).To(Equal(byte(0xEF)))
		Expect(memory.Read8(0x1001)).To(Equal(byte(0xBE)))
		Expect(memory.Read16(0x1000)).To(Equal(uint16(0xBEEF)))
	})

	It("should read by operand width", func() {
		memory.Write16(0x20, 0x1234)

		Expect(memory.Read(0x20, insts.WidthByte)).To(Equal(uint16(0x34)))
		Expect(memory.Read(0x20, insts.WidthWord)).To(Equal(uint16(0x1234)))
	})

	It("should wrap at 20 bits", func() {
		memory.Write16(emu.MemorySize-1, 0xA55A)

		Expect(memory.Read8(emu.MemorySize - 1)).To(Equal(byte(0x5A)))
		Expect(memory.Read8(0)).To(Equal(byte(0xA5)))
	})

	It("should load a program image", func() {
		memory.LoadProgram(0x100, []byte{0xB9, 0x0C, 0x00})

		buf := make([]byte, 4)
		memory.ReadBlock(0x100, buf)
		Expect(buf).To(Equal([]byte{0xB9, 0x0C, 0x00, 0x00}))
	})

	It("should zero a range", func() {
		memory.LoadProgram(0x100, []byte{0xB9, 0x0C, 0x00})
		memory.Zero(0x100, 2)

		buf := make([]byte, 3)
		memory.ReadBlock(0x100, buf)
		Expect(buf).To(Equal([]byte{0x00, 0x00, 0x00}))
	})

	It("should clear the plane", func() {
		memory.Write8(0x42, 1)
		memory.Clear()
		Expect(memory.Read8(0x42)).To(BeZero())
	})

	DescribeTable("physical addresses",
		func(seg, off uint16, want uint32) {
			Expect(emu.PhysicalAddress(seg, off)).To(Equal(want))
		},
		Entry("zero segment", uint16(0), uint16(0x1234), uint32(0x01234)),
		Entry("segment shift", uint16(0x1000), uint16(0x0010), uint32(0x10010)),
		Entry("wraps past 1 MiB", uint16(0xFFFF), uint16(0x0010), uint32(0x00000)),
	)
})
