package emu

import "github.com/sarchlab/sim8086/insts"

// Fetcher supplies instruction bytes to the BIU from physical memory,
// typically through a prefetch cache. Fetch fills buf with the bytes at
// addr and returns the estimated clocks the transfer took.
type Fetcher interface {
	Fetch(addr uint32, buf []byte) int
}

// BIU models the 8086 bus interface unit: the instruction prefetch queue,
// the segment registers and the instruction pointer.
//
// The BIU does not decide instruction length; the decode loop advances it.
type BIU struct {
	queue    insts.Window
	segments [4]uint16
	ip       uint16
}

// NewBIU creates a BIU with an empty queue and all registers zero.
func NewBIU() *BIU {
	return &BIU{}
}

// Refill overwrites the queue with up to six bytes of stream starting at
// cursor. Slots past the end of the stream are zero.
func (b *BIU) Refill(stream []byte, cursor int) {
	b.queue = insts.Window{}
	if cursor < 0 || cursor >= len(stream) {
		return
	}
	copy(b.queue[:], stream[cursor:])
}

// RefillFrom overwrites the queue from physical memory at addr through f,
// returning the clocks f reported.
func (b *BIU) RefillFrom(f Fetcher, addr uint32) int {
	b.queue = insts.Window{}
	return f.Fetch(addr, b.queue[:])
}

// Get returns the queue byte at index i, or 0 outside the queue.
func (b *BIU) Get(i int) byte {
	if i < 0 || i >= len(b.queue) {
		return 0
	}
	return b.queue[i]
}

// Window returns a copy of the queue.
func (b *BIU) Window() insts.Window {
	return b.queue
}

// IP returns the instruction pointer.
func (b *BIU) IP() uint16 {
	return b.ip
}

// SetIP sets the instruction pointer.
func (b *BIU) SetIP(ip uint16) {
	b.ip = ip
}

// Advance moves the instruction pointer forward by n bytes, wrapping at 16
// bits.
func (b *BIU) Advance(n int) {
	b.ip += uint16(n)
}

// Segment reads a segment register.
func (b *BIU) Segment(s insts.Segment) uint16 {
	return b.segments[s&0b11]
}

// SetSegment writes a segment register.
func (b *BIU) SetSegment(s insts.Segment, v uint16) {
	b.segments[s&0b11] = v
}

// CodeAddress returns the physical address of CS:IP.
func (b *BIU) CodeAddress() uint32 {
	return PhysicalAddress(b.Segment(insts.SegCS), b.ip)
}

// Reset clears the queue and all registers.
func (b *BIU) Reset() {
	*b = BIU{}
}
