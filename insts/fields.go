package insts

// Field extraction for the two leading instruction bytes.
//
//	byte0: [opcode........|d|w]  or  [100000|s|w]  or  [1011|w|reg]
//	byte1: [mod|reg|r/m]         or  [mod|0|sr|r/m]
//
// Every 1, 2 and 3 bit pattern is a valid member of its field type, so none
// of these functions can fail.

// DirectionField extracts the D bit (bit 1) of the opcode byte.
func DirectionField(b0 byte) Direction {
	return Direction((b0 >> 1) & 0b1)
}

// WidthField extracts the W bit (bit 0) of the opcode byte.
func WidthField(b0 byte) Width {
	return Width(b0 & 0b1)
}

// SignField extracts the S bit (bit 1) of an immediate-group opcode byte.
func SignField(b0 byte) Sign {
	return Sign((b0 >> 1) & 0b1)
}

// ModeField extracts MOD (bits 7-6) of the MOD byte.
func ModeField(b1 byte) Mode {
	return Mode(b1 >> 6)
}

// RegField extracts REG (bits 5-3) of the MOD byte.
func RegField(b1 byte) Register {
	return Register((b1 >> 3) & 0b111)
}

// RMField extracts R/M (bits 2-0) of the MOD byte.
func RMField(b1 byte) RM {
	return RM(b1 & 0b111)
}

// SegmentField extracts the segment register selector (bits 4-3) of the
// MOD byte.
func SegmentField(b1 byte) Segment {
	return Segment((b1 >> 3) & 0b11)
}

// SubOpcodeField extracts the 3-bit operation code that the immediate group
// carries in the REG position of the MOD byte.
func SubOpcodeField(b1 byte) uint8 {
	return (b1 >> 3) & 0b111
}

// OpcodeOpField extracts the 3-bit ALU operation code (bits 5-3) of a
// register/memory ALU opcode byte.
func OpcodeOpField(b0 byte) uint8 {
	return (b0 >> 3) & 0b111
}

// ShortWidthField extracts the W bit (bit 3) of a MOV immediate-to-register
// opcode byte.
func ShortWidthField(b0 byte) Width {
	return Width((b0 >> 3) & 0b1)
}

// ShortRegField extracts the register code (bits 2-0) of a MOV
// immediate-to-register opcode byte.
func ShortRegField(b0 byte) Register {
	return Register(b0 & 0b111)
}
