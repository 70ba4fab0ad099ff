// Package benchmarks provides the clock estimate harness for sim8086 calibration.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/sim8086/emu"
	"github.com/sarchlab/sim8086/timing/core"
	"github.com/sarchlab/sim8086/timing/latency"
)

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// Bytes is the size of the instruction stream
	Bytes int `json:"bytes"`

	// EstimatedClocks is the total clock estimate from the timing core
	EstimatedClocks uint64 `json:"estimated_clocks"`

	// Instructions is the number of decoded instructions
	Instructions uint64 `json:"instructions"`

	// Failures is the number of undecodable positions
	Failures uint64 `json:"failures"`

	// CPI is clocks per instruction
	CPI float64 `json:"cpi"`

	PrefetchHits      uint64 `json:"prefetch_hits"`
	PrefetchMisses    uint64 `json:"prefetch_misses"`
	PrefetchEvictions uint64 `json:"prefetch_evictions"`

	// Valid reports whether the instruction count matched the expected count
	Valid bool `json:"valid"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Program is the 8086 machine code to decode
	Program []byte

	// ExpectedInstructions is the number of instructions the program holds
	ExpectedInstructions uint64
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Timing is the clock table and prefetch cache configuration
	Timing *latency.TimingConfig

	// Execute runs supported instructions while estimating
	Execute bool

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Logger receives emulator diagnostics (default: discarded)
	Logger logrus.FieldLogger
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Timing: latency.DefaultTimingConfig(),
		Output: os.Stdout,
	}
}

// Harness runs timing benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Timing == nil {
		config.Timing = latency.DefaultTimingConfig()
	}
	if config.Logger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		config.Logger = logger
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result := h.runBenchmark(bench)
		results = append(results, result)
	}

	return results
}

type nullSink struct{}

func (nullSink) WriteLine(string) error { return nil }

// runBenchmark executes a single benchmark on a fresh core.
func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	c := core.NewCore(h.config.Timing,
		emu.WithLogger(h.config.Logger),
		emu.WithExecution(h.config.Execute),
	)
	c.LoadProgram(bench.Program)

	start := time.Now()
	_, err := c.Run(nullSink{})
	wallTime := time.Since(start)
	if err != nil {
		h.config.Logger.WithError(err).WithField("benchmark", bench.Name).Error("benchmark run failed")
	}

	stats := c.Stats()
	return BenchmarkResult{
		Name:              bench.Name,
		Description:       bench.Description,
		Bytes:             len(bench.Program),
		EstimatedClocks:   stats.Cycles,
		Instructions:      stats.Instructions,
		Failures:          stats.Failures,
		CPI:               stats.CPI(),
		PrefetchHits:      stats.Fetch.Hits,
		PrefetchMisses:    stats.Fetch.Misses,
		PrefetchEvictions: stats.Fetch.Evictions,
		Valid:             err == nil && stats.Instructions == bench.ExpectedInstructions,
		WallTime:          wallTime,
	}
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== sim8086 Timing Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(h.config.Output, "  Valid: %v\n", r.Valid)
		_, _ = fmt.Fprintln(h.config.Output, "  --- Timing ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Estimated Clocks: %d\n", r.EstimatedClocks)
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions:     %d\n", r.Instructions)
		_, _ = fmt.Fprintf(h.config.Output, "  CPI:              %.3f\n", r.CPI)
		if r.Failures > 0 {
			_, _ = fmt.Fprintf(h.config.Output, "  Failures:         %d\n", r.Failures)
		}

		_, _ = fmt.Fprintln(h.config.Output, "  --- Prefetch ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Hits:      %d\n", r.PrefetchHits)
		_, _ = fmt.Fprintf(h.config.Output, "  Misses:    %d\n", r.PrefetchMisses)
		_, _ = fmt.Fprintf(h.config.Output, "  Evictions: %d\n", r.PrefetchEvictions)

		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,bytes,clocks,instructions,failures,cpi,prefetch_hits,prefetch_misses,prefetch_evictions,valid")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%d,%d,%.3f,%d,%d,%d,%v\n",
			r.Name,
			r.Bytes,
			r.EstimatedClocks,
			r.Instructions,
			r.Failures,
			r.CPI,
			r.PrefetchHits,
			r.PrefetchMisses,
			r.PrefetchEvictions,
			r.Valid,
		)
	}
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// Timestamp when the benchmark was run
	Timestamp string `json:"timestamp"`

	// Config is the timing configuration used
	Config *latency.TimingConfig `json:"config"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	TotalBenchmarks   int           `json:"total_benchmarks"`
	TotalClocks       uint64        `json:"total_clocks"`
	TotalInstructions uint64        `json:"total_instructions"`
	AverageCPI        float64       `json:"average_cpi"`
	TotalWallTime     time.Duration `json:"total_wall_time_ns"`
}

// Summarize aggregates results.
func Summarize(results []BenchmarkResult) ReportSummary {
	summary := ReportSummary{TotalBenchmarks: len(results)}
	for _, r := range results {
		summary.TotalClocks += r.EstimatedClocks
		summary.TotalInstructions += r.Instructions
		summary.TotalWallTime += r.WallTime
	}
	if summary.TotalInstructions > 0 {
		summary.AverageCPI = float64(summary.TotalClocks) / float64(summary.TotalInstructions)
	}
	return summary
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Config:    h.config.Timing,
		},
		Results: results,
		Summary: Summarize(results),
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
