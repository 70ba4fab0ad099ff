package latency_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/sim8086/insts"
	"github.com/sarchlab/sim8086/timing/latency"
)

var _ = Describe("Latency", func() {
	var (
		table   *latency.Table
		decoder *insts.Decoder
	)

	BeforeEach(func() {
		table = latency.NewTable()
		decoder = insts.NewDecoder()
	})

	clocks := func(t *latency.Table, b ...byte) uint64 {
		p := decoder.DecodeBytes(b)
		ops, err := insts.Locate(p)
		Expect(err).NotTo(HaveOccurred())
		return t.GetLatency(p, ops)
	}

	Describe("Default Timing Values", func() {
		It("should have the register move latency", func() {
			Expect(table.Config().MovRegRegLatency).To(Equal(uint64(2)))
		})

		It("should have the EA table", func() {
			config := table.Config()
			Expect(config.EADirectLatency).To(Equal(uint64(6)))
			Expect(config.EABaseOrIndexLatency).To(Equal(uint64(5)))
			Expect(config.EABaseIndexFastLatency).To(Equal(uint64(7)))
			Expect(config.EABaseIndexSlowLatency).To(Equal(uint64(8)))
			Expect(config.EADisplacementLatency).To(Equal(uint64(4)))
		})
	})

	DescribeTable("MOV latencies",
		func(code []byte, want uint64) {
			Expect(clocks(table, code...)).To(Equal(want))
		},
		Entry("mov cx, bx", []byte{0x89, 0xD9}, uint64(2)),
		Entry("mov bp, [5]", []byte{0x8B, 0x2E, 0x05, 0x00}, uint64(8+6)),
		Entry("mov [bx+si-300], cx", []byte{0x89, 0x88, 0xD4, 0xFE}, uint64(9+7+4)),
		Entry("mov byte [bp+di], 7", []byte{0xC6, 0x03, 0x07}, uint64(10+7)),
		Entry("mov cl, 12", []byte{0xB1, 0x0C}, uint64(4)),
		Entry("mov ax, [2555]", []byte{0xA1, 0xFB, 0x09}, uint64(10)),
		Entry("mov [15], al", []byte{0xA2, 0x0F, 0x00}, uint64(10)),
		Entry("mov ds, ax", []byte{0x8E, 0xD8}, uint64(2)),
		Entry("mov [bx+3], es", []byte{0x8C, 0x47, 0x03}, uint64(9+5+4)),
	)

	DescribeTable("ALU latencies",
		func(code []byte, want uint64) {
			Expect(clocks(table, code...)).To(Equal(want))
		},
		Entry("add cx, dx", []byte{0x03, 0xCA}, uint64(3)),
		Entry("add cx, [bp]", []byte{0x03, 0x4E, 0x00}, uint64(9+5+4)),
		Entry("sub [bp+di-37], si", []byte{0x29, 0x73, 0xDB}, uint64(16+7+4)),
		Entry("cmp [bx+si], bx", []byte{0x39, 0x18}, uint64(9+7)),
		Entry("add word [bp+si+15620], 12", []byte{0x83, 0x82, 0x04, 0x3D, 0x0C}, uint64(17+8+4)),
		Entry("cmp byte [bx], 5", []byte{0x80, 0x3F, 0x05}, uint64(10+5)),
		Entry("cmp si, -2", []byte{0x83, 0xFE, 0xFE}, uint64(4)),
	)

	It("should cost nothing for a decode failure", func() {
		Expect(table.GetLatency(decoder.DecodeBytes([]byte{0xF4}), insts.Operands{})).To(BeZero())
	})

	Describe("EA calculation", func() {
		It("should charge a displacement even when it is zero", func() {
			m := &insts.MemoryOperand{Bases: []insts.RegName{insts.BP}}
			Expect(table.EALatency(insts.ModeMemDisp8, m)).To(Equal(uint64(9)))
			Expect(table.EALatency(insts.ModeMemNoDisp, &insts.MemoryOperand{Bases: []insts.RegName{insts.SI}})).To(Equal(uint64(5)))
		})

		It("should distinguish fast and slow base+index pairs", func() {
			fast := &insts.MemoryOperand{Bases: []insts.RegName{insts.BX, insts.SI}}
			slow := &insts.MemoryOperand{Bases: []insts.RegName{insts.BX, insts.DI}}
			Expect(table.EALatency(insts.ModeMemDisp16, fast)).To(Equal(uint64(11)))
			Expect(table.EALatency(insts.ModeMemDisp16, slow)).To(Equal(uint64(12)))
		})
	})

	Describe("Instruction Type Detection", func() {
		It("should detect memory operations", func() {
			p := decoder.DecodeBytes([]byte{0x8B, 0x2E, 0x05, 0x00})
			ops, _ := insts.Locate(p)
			Expect(table.IsMemoryOp(ops)).To(BeTrue())

			p = decoder.DecodeBytes([]byte{0x89, 0xD9})
			ops, _ = insts.Locate(p)
			Expect(table.IsMemoryOp(ops)).To(BeFalse())
		})
	})

	Describe("Custom Configuration", func() {
		It("should use custom config values", func() {
			config := latency.DefaultTimingConfig()
			config.MovRegRegLatency = 5
			config.EADirectLatency = 1
			customTable := latency.NewTableWithConfig(config)

			Expect(clocks(customTable, 0x89, 0xD9)).To(Equal(uint64(5)))
			Expect(clocks(customTable, 0x8B, 0x2E, 0x05, 0x00)).To(Equal(uint64(8 + 1)))
		})
	})
})

var _ = Describe("TimingConfig", func() {
	Describe("Default Config", func() {
		It("should create valid default config", func() {
			config := latency.DefaultTimingConfig()
			Expect(config.Validate()).To(Succeed())
		})
	})

	Describe("Validation", func() {
		It("should reject zero instruction latency", func() {
			config := latency.DefaultTimingConfig()
			config.AluMemRegLatency = 0
			Expect(config.Validate()).To(MatchError(ContainSubstring("alu_mem_reg_latency")))
		})

		It("should reject a block size that is not a power of two", func() {
			config := latency.DefaultTimingConfig()
			config.PrefetchBlockSize = 12
			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should reject zero associativity", func() {
			config := latency.DefaultTimingConfig()
			config.PrefetchAssociativity = 0
			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should reject a cache size that does not fill whole sets", func() {
			config := latency.DefaultTimingConfig()
			config.PrefetchCacheSize = 1000
			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should allow a zero prefetch hit latency", func() {
			config := latency.DefaultTimingConfig()
			config.PrefetchHitLatency = 0
			Expect(config.Validate()).To(Succeed())
		})
	})

	Describe("Clone", func() {
		It("should create independent copy", func() {
			original := latency.DefaultTimingConfig()
			clone := original.Clone()

			clone.AluRegRegLatency = 100

			Expect(original.AluRegRegLatency).To(Equal(uint64(3)))
			Expect(clone.AluRegRegLatency).To(Equal(uint64(100)))
		})
	})

	Describe("File Operations", func() {
		var tempDir string

		BeforeEach(func() {
			var err error
			tempDir, err = os.MkdirTemp("", "latency-test")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = os.RemoveAll(tempDir)
		})

		It("should save and load config", func() {
			original := latency.DefaultTimingConfig()
			original.AluRegMemLatency = 5
			original.PrefetchMissLatency = 10

			path := filepath.Join(tempDir, "timing.json")
			Expect(original.SaveConfig(path)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(original))
		})

		It("should keep defaults for fields missing from the file", func() {
			path := filepath.Join(tempDir, "partial.json")
			Expect(os.WriteFile(path, []byte(`{"mov_reg_reg_latency": 7}`), 0644)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.MovRegRegLatency).To(Equal(uint64(7)))
			Expect(loaded.MovRegMemLatency).To(Equal(uint64(8)))
		})

		It("should return error for non-existent file", func() {
			_, err := latency.LoadConfig("/nonexistent/path/timing.json")
			Expect(err).To(HaveOccurred())
		})

		It("should return error for invalid JSON", func() {
			path := filepath.Join(tempDir, "invalid.json")
			err := os.WriteFile(path, []byte("not valid json"), 0644)
			Expect(err).NotTo(HaveOccurred())

			_, err = latency.LoadConfig(path)
			Expect(err).To(HaveOccurred())
		})
	})
})
