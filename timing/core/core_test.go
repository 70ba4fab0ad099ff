package core_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/sim8086/emu"
	"github.com/sarchlab/sim8086/timing/core"
	"github.com/sarchlab/sim8086/timing/latency"
)

type lineSink struct{ lines []string }

func (s *lineSink) WriteLine(line string) error {
	s.lines = append(s.lines, line)
	return nil
}

type discardSink struct{ lines int }

func (s *discardSink) WriteLine(string) error {
	s.lines++
	return nil
}

var _ = Describe("Core", func() {
	var (
		c    *core.Core
		sink *discardSink
	)

	BeforeEach(func() {
		c = core.NewCore(latency.DefaultTimingConfig())
		sink = &discardSink{}
	})

	Describe("NewCore", func() {
		It("should create a core with initialized components", func() {
			Expect(c).NotTo(BeNil())
			Expect(c.Emulator).NotTo(BeNil())
			Expect(c.Prefetch).NotTo(BeNil())
			Expect(c.Config().MovRegRegLatency).To(Equal(uint64(2)))
		})

		It("should derive the prefetch cache from the timing config", func() {
			config := latency.DefaultTimingConfig()
			config.PrefetchBlockSize = 32
			config.PrefetchMissLatency = 8

			pc := core.PrefetchConfig(config)
			Expect(pc.BlockSize).To(Equal(32))
			Expect(pc.MissLatency).To(Equal(uint64(8)))
			Expect(pc.Size).To(Equal(config.PrefetchCacheSize))
		})
	})

	Describe("Run", func() {
		It("should estimate clocks for a straight-line program", func() {
			// mov cx, bx ; mov cl, 12 ; add cx, dx
			c.LoadProgram([]byte{0x89, 0xD9, 0xB1, 0x0C, 0x03, 0xCA})

			runStats, err := c.Run(sink)
			Expect(err).NotTo(HaveOccurred())
			Expect(sink.lines).To(Equal(3))
			Expect(runStats.Instructions).To(Equal(3))

			stats := c.Stats()
			Expect(stats.Instructions).To(Equal(uint64(3)))
			Expect(stats.Cycles).To(Equal(runStats.Cycles))

			// One miss for the first line, then hits at no cost.
			Expect(stats.Fetch.Misses).To(Equal(uint64(1)))
			Expect(stats.Fetch.Hits).To(Equal(uint64(2)))
			Expect(stats.Cycles).To(Equal(uint64(4 + 2 + 4 + 3)))
			Expect(stats.CPI()).To(BeNumerically("~", 13.0/3.0, 1e-9))
		})

		It("should count a fetch crossing into a new line", func() {
			program := make([]byte, 14)
			for i := 0; i < 14; i += 2 {
				program[i], program[i+1] = 0x89, 0xD9
			}
			c.LoadProgram(program)

			_, err := c.Run(sink)
			Expect(err).NotTo(HaveOccurred())
			stats := c.Stats()
			// The refill at offset 12 reaches into the second 16-byte line.
			Expect(stats.Fetch.Misses).To(Equal(uint64(2)))
		})

		It("should count failures", func() {
			c.LoadProgram([]byte{0xF4, 0x00, 0x89, 0xD9})

			_, err := c.Run(sink)
			Expect(err).NotTo(HaveOccurred())
			stats := c.Stats()
			Expect(stats.Failures).To(Equal(uint64(1)))
			Expect(stats.Instructions).To(Equal(uint64(1)))
		})

		It("should pass emulator options through", func() {
			c = core.NewCore(latency.DefaultTimingConfig(), emu.WithExecution(true))
			c.LoadProgram([]byte{0xB9, 0x0C, 0x00})

			_, err := c.Run(sink)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Emulator.RegFile().R[1]).To(Equal(uint16(12)))
		})
	})

	Describe("LoadProgram", func() {
		It("should decode a reloaded program from the new image", func() {
			first := &lineSink{}
			c.LoadProgram([]byte{0x89, 0xD9})
			_, err := c.Run(first)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.lines).To(Equal([]string{"mov cx, bx"}))

			second := &lineSink{}
			c.LoadProgram([]byte{0x88, 0xEA})
			_, err = c.Run(second)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.lines).To(Equal([]string{"mov dl, ch"}))
		})

		It("should refill from memory after a reload", func() {
			c.LoadProgram([]byte{0x89, 0xD9})
			_, _ = c.Run(sink)
			missesBefore := c.Prefetch.Stats().Misses

			c.LoadProgram([]byte{0x89, 0xD9})
			_, _ = c.Run(sink)

			Expect(c.Prefetch.Stats().Misses).To(Equal(missesBefore + 1))
		})

		It("should not see bytes of a longer previous image", func() {
			c.LoadProgram([]byte{0x89, 0xD9, 0x8B, 0x2E, 0x05, 0x00})
			_, _ = c.Run(sink)

			lines := &lineSink{}
			// mov dl, ch followed by a truncated mov cx, imm16
			c.LoadProgram([]byte{0x88, 0xEA, 0xB9})
			_, _ = c.Run(lines)

			Expect(lines.lines).To(Equal([]string{"mov dl, ch"}))
			Expect(c.Emulator.Memory().Read8(c.Emulator.LoadAddress() + 3)).To(BeZero())
		})
	})

	Describe("Reset", func() {
		It("should clear statistics and the prefetch cache", func() {
			c.LoadProgram([]byte{0x89, 0xD9})
			_, _ = c.Run(sink)
			c.Reset()

			Expect(c.Stats()).To(Equal(core.Stats{}))
			Expect(c.Prefetch.Stats().Reads).To(BeZero())
		})
	})
})
