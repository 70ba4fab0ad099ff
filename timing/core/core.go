// Package core provides the timed 8086 core model.
// It wraps the emulator with a prefetch cache and a latency table to
// estimate clocks while decoding.
package core

import (
	"github.com/sarchlab/sim8086/emu"
	"github.com/sarchlab/sim8086/insts"
	"github.com/sarchlab/sim8086/timing/cache"
	"github.com/sarchlab/sim8086/timing/latency"
)

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of estimated clocks.
	Cycles uint64
	// Instructions is the number of instructions decoded and written.
	Instructions uint64
	// Failures is the number of instructions skipped.
	Failures uint64
	// Fetch holds the prefetch cache statistics.
	Fetch cache.Statistics
}

// CPI returns clocks per processed instruction.
func (s Stats) CPI() float64 {
	n := s.Instructions + s.Failures
	if n == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(n)
}

// Core represents a timed 8086 core: the decode loop with its prefetch
// queue served through a cache in front of memory.
type Core struct {
	// Emulator is the underlying decode loop.
	Emulator *emu.Emulator

	// Prefetch is the cache the BIU refills from.
	Prefetch *cache.Cache

	table *latency.Table
	stats Stats

	// imageBase and imageEnd bound the addresses refills can reach for the
	// loaded image.
	imageBase uint32
	imageEnd  uint32
}

// PrefetchConfig derives the prefetch cache geometry from a timing
// configuration.
func PrefetchConfig(config *latency.TimingConfig) cache.Config {
	return cache.Config{
		Size:          config.PrefetchCacheSize,
		Associativity: config.PrefetchAssociativity,
		BlockSize:     config.PrefetchBlockSize,
		HitLatency:    config.PrefetchHitLatency,
		MissLatency:   config.PrefetchMissLatency,
	}
}

// NewCore creates a Core with the given timing configuration. The options
// configure the emulator; memory, fetcher and latency table are set by the
// core.
func NewCore(config *latency.TimingConfig, opts ...emu.EmulatorOption) *Core {
	memory := emu.NewMemory()
	prefetch := cache.New(PrefetchConfig(config), cache.NewMemoryBacking(memory))
	table := latency.NewTableWithConfig(config)

	opts = append(opts,
		emu.WithMemory(memory),
		emu.WithFetcher(prefetch),
		emu.WithLatencyTable(table),
	)

	return &Core{
		Emulator: emu.NewEmulator(opts...),
		Prefetch: prefetch,
		table:    table,
	}
}

// Config returns the timing configuration.
func (c *Core) Config() *latency.TimingConfig {
	return c.table.Config()
}

// LoadProgram loads an instruction stream. Prefetch lines filled from the
// previous image are invalidated first.
func (c *Core) LoadProgram(program []byte) {
	c.invalidateImage()
	c.Emulator.LoadProgram(program)

	c.imageBase = c.Emulator.LoadAddress()
	c.imageEnd = c.imageBase + uint32(len(program)+insts.MaxLength)
}

// invalidateImage drops every line a refill over the loaded image can
// reach. Refills read up to MaxLength bytes past the last instruction.
func (c *Core) invalidateImage() {
	block := uint32(c.Prefetch.Config().BlockSize)
	for addr := c.imageBase / block * block; addr < c.imageEnd; addr += block {
		c.Prefetch.Invalidate(addr)
	}
	c.imageBase, c.imageEnd = 0, 0
}

// Run processes the stream to completion, writing rendered lines to sink.
// The core's statistics accumulate across runs.
func (c *Core) Run(sink emu.Sink) (emu.RunStats, error) {
	runStats, err := c.Emulator.Run(sink)

	c.stats.Cycles += runStats.Cycles
	c.stats.Instructions += uint64(runStats.Instructions)
	c.stats.Failures += uint64(runStats.Failures)
	c.stats.Fetch = c.Prefetch.Stats()

	return runStats, err
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	return c.stats
}

// Reset clears all core state.
func (c *Core) Reset() {
	c.Emulator.Reset()
	c.Prefetch.Reset()
	c.stats = Stats{}
	c.imageBase, c.imageEnd = 0, 0
}
