// Package main provides the entry point for sim8086.
// sim8086 decodes raw 8086 machine code into NASM-compatible assembly and
// optionally simulates register transfers and instruction timing.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/sim8086/emu"
	"github.com/sarchlab/sim8086/loader"
	"github.com/sarchlab/sim8086/timing/latency"
)

var (
	outputPath = flag.String("o", "", "Write the listing to this file instead of stdout")
	execute    = flag.Bool("exec", false, "Execute data transfers and annotate register changes")
	timing     = flag.Bool("timing", false, "Estimate 8086 clocks and report prefetch cache statistics")
	configPath = flag.String("config", "", "Path to timing configuration JSON file")
	verbose    = flag.Bool("v", false, "Verbose output")
	debug      = flag.Bool("debug", false, "Dump every decoded instruction to stderr")
	fallback   = flag.Int("fallback", emu.DefaultFallbackStep, "Bytes to skip after an undecodable instruction")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: sim8086 [options] <program.bin>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	programPath := flag.Arg(0)

	prog, err := loader.Load(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}
	logger.WithFields(logrus.Fields{
		"path":  programPath,
		"bytes": len(prog.Data),
	}).Debug("loaded image")

	opts := options{
		execute:  *execute,
		fallback: *fallback,
	}

	if *timing {
		opts.timing = latency.DefaultTimingConfig()
		if *configPath != "" {
			opts.timing, err = latency.LoadConfig(*configPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error loading timing config: %v\n", err)
				os.Exit(1)
			}
		}
		if err := opts.timing.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid timing config: %v\n", err)
			os.Exit(1)
		}
	}

	if *debug {
		opts.debug = os.Stderr
	}

	var out io.Writer = os.Stdout
	if *outputPath != "" {
		f, err := os.Create(*outputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	if _, err := simulate(prog, opts, out, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing listing: %v\n", err)
		os.Exit(1)
	}
}
