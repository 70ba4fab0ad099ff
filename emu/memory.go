package emu

import "github.com/sarchlab/sim8086/insts"

// MemorySize is the size of the 8086 physical address space.
const MemorySize = 1 << 20

const addrMask = MemorySize - 1

// Memory is the 1 MiB physical memory plane. Addresses wrap at 20 bits.
type Memory struct {
	data []byte
}

// NewMemory creates a zeroed memory plane.
func NewMemory() *Memory {
	return &Memory{data: make([]byte, MemorySize)}
}

// PhysicalAddress forms a 20-bit address from a segment and an offset.
func PhysicalAddress(segment, offset uint16) uint32 {
	return (uint32(segment)<<4 + uint32(offset)) & addrMask
}

// Read8 reads a byte.
func (m *Memory) Read8(addr uint32) byte {
	return m.data[addr&addrMask]
}

// Read16 reads a little-endian word.
func (m *Memory) Read16(addr uint32) uint16 {
	return uint16(m.Read8(addr)) | uint16(m.Read8(addr+1))<<8
}

// Write8 writes a byte.
func (m *Memory) Write8(addr uint32, v byte) {
	m.data[addr&addrMask] = v
}

// Write16 writes a little-endian word.
func (m *Memory) Write16(addr uint32, v uint16) {
	m.Write8(addr, byte(v))
	m.Write8(addr+1, byte(v>>8))
}

// Read reads a value of the given width.
func (m *Memory) Read(addr uint32, w insts.Width) uint16 {
	if w == insts.WidthByte {
		return uint16(m.Read8(addr))
	}
	return m.Read16(addr)
}

// ReadBlock fills buf with the bytes starting at addr.
func (m *Memory) ReadBlock(addr uint32, buf []byte) {
	for i := range buf {
		buf[i] = m.Read8(addr + uint32(i))
	}
}

// LoadProgram copies a program image to addr.
func (m *Memory) LoadProgram(addr uint32, program []byte) {
	for i, b := range program {
		m.Write8(addr+uint32(i), b)
	}
}

// Zero clears n bytes starting at addr.
func (m *Memory) Zero(addr uint32, n int) {
	for i := 0; i < n; i++ {
		m.Write8(addr+uint32(i), 0)
	}
}

// Clear zeroes the whole plane.
func (m *Memory) Clear() {
	clear(m.data)
}
