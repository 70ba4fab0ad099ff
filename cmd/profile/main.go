// Package main provides a profiling wrapper for sim8086 to identify performance bottlenecks.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/sim8086/emu"
	"github.com/sarchlab/sim8086/loader"
	"github.com/sarchlab/sim8086/timing/core"
	"github.com/sarchlab/sim8086/timing/latency"
)

var (
	timing     = flag.Bool("timing", false, "Enable timing simulation mode")
	execute    = flag.Bool("exec", false, "Execute supported instructions")
	cpuProfile = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile = flag.String("memprofile", "", "write memory profile to file")
	duration   = flag.Duration("duration", 30*time.Second, "max duration to run (for profiling)")
	passes     = flag.Int("n", 1000, "number of passes over the program")
)

// discard counts rendered lines without keeping them.
type discard struct {
	lines int
}

func (d *discard) WriteLine(string) error {
	d.lines++
	return nil
}

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: profile [options] <program.bin>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Start CPU profiling if requested
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	programPath := flag.Arg(0)

	prog, err := loader.Load(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded: %s\n", programPath)
	fmt.Printf("Size: %d bytes\n", len(prog.Data))

	start := time.Now()

	// Set timeout
	go func() {
		time.Sleep(*duration)
		fmt.Printf("\nTimeout reached after %v - stopping execution\n", *duration)
		os.Exit(2)
	}()

	var instrCount, failures uint64
	if *timing {
		instrCount, failures = runTimingProfile(prog)
	} else {
		instrCount, failures = runEmulationProfile(prog)
	}

	elapsed := time.Since(start)

	// Write memory profile if requested
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
		}
	}

	fmt.Printf("\nProfiling Results:\n")
	fmt.Printf("Passes: %d\n", *passes)
	fmt.Printf("Instructions decoded: %d\n", instrCount)
	fmt.Printf("Decode failures: %d\n", failures)
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if instrCount > 0 {
		fmt.Printf("Instructions/second: %.0f\n", float64(instrCount)/elapsed.Seconds())
	}
}

// quietLogger drops everything below errors so fallback warnings do not
// dominate the profile.
func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

// runEmulationProfile decodes the program repeatedly without timing.
func runEmulationProfile(prog *loader.Program) (uint64, uint64) {
	emulator := emu.NewEmulator(
		emu.WithLogger(quietLogger()),
		emu.WithExecution(*execute),
	)
	sink := &discard{}

	var instrCount, failures uint64
	for i := 0; i < *passes; i++ {
		emulator.Reset()
		emulator.LoadProgram(prog.Data)

		stats, err := emulator.Run(sink)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error on pass %d: %v\n", i, err)
			break
		}
		instrCount += uint64(stats.Instructions)
		failures += uint64(stats.Failures)
	}

	return instrCount, failures
}

// runTimingProfile decodes the program repeatedly through the timing core.
func runTimingProfile(prog *loader.Program) (uint64, uint64) {
	c := core.NewCore(latency.DefaultTimingConfig(),
		emu.WithLogger(quietLogger()),
		emu.WithExecution(*execute),
	)
	sink := &discard{}

	for i := 0; i < *passes; i++ {
		c.Emulator.Reset()
		c.LoadProgram(prog.Data)

		if _, err := c.Run(sink); err != nil {
			fmt.Fprintf(os.Stderr, "Error on pass %d: %v\n", i, err)
			break
		}
	}

	stats := c.Stats()
	fmt.Printf("Estimated clocks: %d (CPI %.2f)\n", stats.Cycles, stats.CPI())
	fmt.Printf("Prefetch hits: %d, misses: %d\n", stats.Fetch.Hits, stats.Fetch.Misses)

	return stats.Instructions, stats.Failures
}
