package benchmarks

// GetMicrobenchmarks returns the standard set of microbenchmarks for clock
// table calibration. Each benchmark targets one encoding family.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		registerMoves(),
		immediateLoads(),
		memoryLoads(),
		memoryStores(),
		accumulatorMoves(),
		aluRegister(),
		aluImmediate(),
		aluMemory(),
		prefetchStream(),
	}
}

// GetCoreBenchmarks returns a minimal set of benchmarks for quick validation.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		registerMoves(),
		memoryLoads(),
		aluImmediate(),
	}
}

// BuildProgram concatenates encoded instructions.
func BuildProgram(instrs ...[]byte) []byte {
	var program []byte
	for _, inst := range instrs {
		program = append(program, inst...)
	}
	return program
}

// Repeat returns n copies of inst.
func Repeat(inst []byte, n int) []byte {
	program := make([]byte, 0, len(inst)*n)
	for i := 0; i < n; i++ {
		program = append(program, inst...)
	}
	return program
}

func registerMoves() Benchmark {
	return Benchmark{
		Name:        "register_moves",
		Description: "register to register MOV",
		Program: BuildProgram(
			[]byte{0x89, 0xD9}, // mov cx, bx
			[]byte{0x88, 0xE5}, // mov ch, ah
			[]byte{0x89, 0xDA}, // mov dx, bx
			[]byte{0x89, 0xDE}, // mov si, bx
			[]byte{0x89, 0xFB}, // mov bx, di
			[]byte{0x88, 0xC8}, // mov al, cl
			[]byte{0x89, 0xE0}, // mov ax, sp
		),
		ExpectedInstructions: 7,
	}
}

func immediateLoads() Benchmark {
	return Benchmark{
		Name:        "immediate_loads",
		Description: "immediate to register MOV in both widths",
		Program: BuildProgram(
			[]byte{0xB9, 0x0C, 0x00}, // mov cx, 12
			[]byte{0xB1, 0x0C},       // mov cl, 12
			[]byte{0xBA, 0x6C, 0x0F}, // mov dx, 3948
			[]byte{0xB5, 0xF4},       // mov ch, -12
			[]byte{0xBE, 0x28, 0x00}, // mov si, 40
		),
		ExpectedInstructions: 5,
	}
}

func memoryLoads() Benchmark {
	return Benchmark{
		Name:        "memory_loads",
		Description: "memory to register MOV across every displacement size",
		Program: BuildProgram(
			[]byte{0x8A, 0x00},             // mov al, [bx+si]
			[]byte{0x8B, 0x1B},             // mov bx, [bp+di]
			[]byte{0x8B, 0x56, 0x00},       // mov dx, [bp]
			[]byte{0x8A, 0x60, 0x04},       // mov ah, [bx+si+4]
			[]byte{0x8A, 0x80, 0x87, 0x13}, // mov al, [bx+si+4999]
			[]byte{0x8B, 0x2E, 0x05, 0x00}, // mov bp, [5]
		),
		ExpectedInstructions: 6,
	}
}

func memoryStores() Benchmark {
	return Benchmark{
		Name:        "memory_stores",
		Description: "register and immediate to memory MOV",
		Program: BuildProgram(
			[]byte{0x89, 0x09},                         // mov [bx+di], cx
			[]byte{0x88, 0x0A},                         // mov [bp+si], cl
			[]byte{0x88, 0x6E, 0x00},                   // mov [bp], ch
			[]byte{0xC6, 0x03, 0x07},                   // mov byte [bp+di], 7
			[]byte{0xC7, 0x85, 0x85, 0x03, 0x5B, 0x01}, // mov word [di+901], 347
		),
		ExpectedInstructions: 5,
	}
}

func accumulatorMoves() Benchmark {
	return Benchmark{
		Name:        "accumulator_moves",
		Description: "memory to and from accumulator",
		Program: BuildProgram(
			[]byte{0xA1, 0xFB, 0x09}, // mov ax, [2555]
			[]byte{0xA1, 0x10, 0x00}, // mov ax, [16]
			[]byte{0xA3, 0xFA, 0x09}, // mov [2554], ax
			[]byte{0xA3, 0x0F, 0x00}, // mov [15], ax
			[]byte{0xA0, 0x10, 0x00}, // mov al, [16]
		),
		ExpectedInstructions: 5,
	}
}

func aluRegister() Benchmark {
	return Benchmark{
		Name:        "alu_register",
		Description: "register to register arithmetic",
		Program: BuildProgram(
			[]byte{0x01, 0xD8}, // add ax, bx
			[]byte{0x29, 0xD8}, // sub ax, bx
			[]byte{0x39, 0xD8}, // cmp ax, bx
			[]byte{0x03, 0xCA}, // add cx, dx
			[]byte{0x00, 0xE0}, // add al, ah
			[]byte{0x31, 0xC9}, // xor cx, cx
		),
		ExpectedInstructions: 6,
	}
}

func aluImmediate() Benchmark {
	return Benchmark{
		Name:        "alu_immediate",
		Description: "immediate arithmetic with sign-extended and full data",
		Program: BuildProgram(
			[]byte{0x83, 0xC6, 0x02},       // add si, 2
			[]byte{0x83, 0xC5, 0x02},       // add bp, 2
			[]byte{0x83, 0xC1, 0x08},       // add cx, 8
			[]byte{0x83, 0xEE, 0x02},       // sub si, 2
			[]byte{0x83, 0xFE, 0x02},       // cmp si, 2
			[]byte{0x80, 0xC3, 0x22},       // add bl, 34
			[]byte{0x81, 0xC1, 0xE8, 0x03}, // add cx, 1000
		),
		ExpectedInstructions: 7,
	}
}

func aluMemory() Benchmark {
	return Benchmark{
		Name:        "alu_memory",
		Description: "arithmetic with a memory operand on either side",
		Program: BuildProgram(
			[]byte{0x03, 0x18},                   // add bx, [bx+si]
			[]byte{0x03, 0x5E, 0x00},             // add bx, [bp]
			[]byte{0x83, 0x82, 0x04, 0x3D, 0x0C}, // add word [bp+si+15620], 12
			[]byte{0x29, 0x73, 0xDB},             // sub [bp+di-37], si
			[]byte{0x80, 0x3F, 0x22},             // cmp byte [bx], 34
			[]byte{0x83, 0x06, 0xE2, 0x12, 0x1D}, // add word [4834], 29
		),
		ExpectedInstructions: 6,
	}
}

// prefetchStream is twice the default prefetch cache size, so the second
// half of the stream evicts the first.
func prefetchStream() Benchmark {
	return Benchmark{
		Name:                 "prefetch_stream",
		Description:          "2 KiB of register moves, exercising prefetch misses and evictions",
		Program:              Repeat([]byte{0x89, 0xD9}, 1024), // mov cx, bx
		ExpectedInstructions: 1024,
	}
}
