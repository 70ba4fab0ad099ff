// Command benchmark runs the sim8086 timing benchmark harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv     Output results in CSV format (default: human-readable)
//	-json    Output results in JSON format
//	-config  Path to timing configuration JSON file
//	-core    Run only the core benchmarks
//
// Example:
//
//	# Run all benchmarks with human-readable output
//	go run ./cmd/benchmark
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark -csv > results.csv
//
// The estimated clocks can be compared against published 8086 instruction
// timings to calibrate the clock table.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/sim8086/benchmarks"
	"github.com/sarchlab/sim8086/timing/latency"
)

func main() {
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results in JSON format")
	configPath := flag.String("config", "", "Path to timing configuration JSON file")
	coreOnly := flag.Bool("core", false, "Run only the core benchmarks")
	flag.Parse()

	config := benchmarks.DefaultConfig()
	config.Output = os.Stdout
	if *configPath != "" {
		timing, err := latency.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		if err := timing.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
			os.Exit(1)
		}
		config.Timing = timing
	}

	harness := benchmarks.NewHarness(config)
	if *coreOnly {
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
	} else {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	}

	if !*csvOutput && !*jsonOutput {
		fmt.Println("sim8086 Timing Benchmark Harness")
		fmt.Println("================================")
		fmt.Printf("Prefetch cache: %d bytes, %d-way, %d-byte lines\n",
			config.Timing.PrefetchCacheSize,
			config.Timing.PrefetchAssociativity,
			config.Timing.PrefetchBlockSize)
		fmt.Println("")
	}

	results := harness.RunAll()

	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
			os.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)

		summary := benchmarks.Summarize(results)
		fmt.Println("=== Summary ===")
		fmt.Printf("Benchmarks: %d\n", summary.TotalBenchmarks)
		fmt.Printf("Estimated clocks: %d\n", summary.TotalClocks)
		fmt.Printf("Average CPI: %.3f\n", summary.AverageCPI)
	}

	for _, r := range results {
		if !r.Valid {
			fmt.Fprintf(os.Stderr, "benchmark %s did not decode cleanly\n", r.Name)
			os.Exit(1)
		}
	}
}
