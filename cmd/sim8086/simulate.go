package main

import (
	"fmt"
	"io"

	"github.com/k0kubun/pp/v3"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/sim8086/disasm"
	"github.com/sarchlab/sim8086/emu"
	"github.com/sarchlab/sim8086/insts"
	"github.com/sarchlab/sim8086/loader"
	"github.com/sarchlab/sim8086/timing/cache"
	"github.com/sarchlab/sim8086/timing/core"
	"github.com/sarchlab/sim8086/timing/latency"
)

// options selects what a simulation run does beyond decoding.
type options struct {
	execute  bool
	fallback int
	// timing enables clock estimation when non-nil.
	timing *latency.TimingConfig
	// debug receives a dump of every decoded payload when non-nil.
	debug io.Writer
}

// report is what a run produced besides the listing.
type report struct {
	stats emu.RunStats
	cache *cache.Statistics
}

// simulate decodes prog and writes the listing to out. Execution state and
// the timing report are appended to the listing as comments, so the output
// still assembles.
func simulate(prog *loader.Program, opts options, out io.Writer, logger logrus.FieldLogger) (*report, error) {
	emuOpts := []emu.EmulatorOption{
		emu.WithLogger(logger),
		emu.WithFallbackStep(opts.fallback),
		emu.WithExecution(opts.execute),
	}

	if opts.debug != nil {
		printer := pp.New()
		printer.SetOutput(opts.debug)
		printer.SetColoringEnabled(false)
		emuOpts = append(emuOpts, emu.WithTrace(func(r emu.StepResult) {
			printer.Printf("offset %d: ", r.Offset)
			printer.Println(r.Payload)
		}))
	}

	var (
		e     *emu.Emulator
		timed *core.Core
	)
	if opts.timing != nil {
		timed = core.NewCore(opts.timing, emuOpts...)
		e = timed.Emulator
	} else {
		e = emu.NewEmulator(emuOpts...)
	}
	e.LoadProgram(prog.Data)

	w := disasm.NewWriter(out)
	if prog.Name != "" {
		if err := w.Comment(prog.Name); err != nil {
			return nil, err
		}
	}
	if err := w.WriteHeader(); err != nil {
		return nil, err
	}

	var (
		stats emu.RunStats
		err   error
	)
	if timed != nil {
		stats, err = timed.Run(w)
	} else {
		stats, err = e.Run(w)
	}
	if err != nil {
		logger.WithError(err).Error("listing is incomplete")
	}

	rep := &report{stats: stats}

	if opts.execute {
		if err := writeRegisters(w, e); err != nil {
			return rep, err
		}
	}

	if timed != nil {
		ts := timed.Stats()
		rep.cache = &ts.Fetch
		if err := writeTiming(w, ts); err != nil {
			return rep, err
		}
	}

	if err := w.Flush(); err != nil {
		return rep, err
	}
	return rep, nil
}

var (
	wordRegisters    = []insts.RegName{insts.AX, insts.BX, insts.CX, insts.DX, insts.SP, insts.BP, insts.SI, insts.DI}
	segmentRegisters = []insts.Segment{insts.SegES, insts.SegCS, insts.SegSS, insts.SegDS}
)

// writeRegisters lists the non-zero registers after the run.
func writeRegisters(w *disasm.Writer, e *emu.Emulator) error {
	lines := []string{"", "Final registers:"}
	for _, r := range wordRegisters {
		if v := e.RegFile().Read(r); v != 0 {
			lines = append(lines, fmt.Sprintf("    %s: 0x%04x (%d)", r, v, v))
		}
	}
	for _, s := range segmentRegisters {
		if v := e.BIU().Segment(s); v != 0 {
			lines = append(lines, fmt.Sprintf("    %s: 0x%04x (%d)", s, v, v))
		}
	}
	ip := e.BIU().IP()
	lines = append(lines, fmt.Sprintf("    ip: 0x%04x (%d)", ip, ip))
	if flags := e.RegFile().Flags.String(); flags != "" {
		lines = append(lines, "    flags: "+flags)
	}
	return writeComments(w, lines)
}

// writeTiming appends the clock estimate and prefetch cache statistics.
func writeTiming(w *disasm.Writer, ts core.Stats) error {
	return writeComments(w, []string{
		"",
		"Timing:",
		fmt.Sprintf("    instructions: %d", ts.Instructions),
		fmt.Sprintf("    estimated clocks: %d", ts.Cycles),
		fmt.Sprintf("    clocks per instruction: %.2f", ts.CPI()),
		fmt.Sprintf("    prefetch hits: %d, misses: %d, evictions: %d",
			ts.Fetch.Hits, ts.Fetch.Misses, ts.Fetch.Evictions),
	})
}

func writeComments(w *disasm.Writer, lines []string) error {
	for _, l := range lines {
		if err := w.Comment(l); err != nil {
			return err
		}
	}
	return nil
}
