package benchmarks_test

import (
	"bytes"
	"encoding/json"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/sim8086/benchmarks"
)

var _ = Describe("Timing harness", func() {
	var (
		out     *bytes.Buffer
		harness *benchmarks.Harness
	)

	BeforeEach(func() {
		out = &bytes.Buffer{}
		config := benchmarks.DefaultConfig()
		config.Output = out
		harness = benchmarks.NewHarness(config)
	})

	It("should run every microbenchmark to its expected instruction count", func() {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())

		results := harness.RunAll()

		Expect(results).To(HaveLen(len(benchmarks.GetMicrobenchmarks())))
		for _, r := range results {
			Expect(r.Valid).To(BeTrue(), r.Name)
			Expect(r.Failures).To(BeZero(), r.Name)
			Expect(r.EstimatedClocks).To(BeNumerically(">", r.Instructions), r.Name)
			Expect(r.PrefetchMisses).To(BeNumerically(">=", 1), r.Name)
		}
	})

	It("should charge memory operands more than register operands", func() {
		harness.AddBenchmark(benchmarks.Benchmark{
			Name:                 "reg",
			Program:              benchmarks.Repeat([]byte{0x89, 0xD9}, 8), // mov cx, bx
			ExpectedInstructions: 8,
		})
		harness.AddBenchmark(benchmarks.Benchmark{
			Name:                 "mem",
			Program:              benchmarks.Repeat([]byte{0x8B, 0x0F}, 8), // mov cx, [bx]
			ExpectedInstructions: 8,
		})

		results := harness.RunAll()

		Expect(results[1].EstimatedClocks).To(BeNumerically(">", results[0].EstimatedClocks))
	})

	It("should evict when the stream outgrows the prefetch cache", func() {
		for _, b := range benchmarks.GetMicrobenchmarks() {
			if b.Name == "prefetch_stream" {
				harness.AddBenchmark(b)
			}
		}

		results := harness.RunAll()

		Expect(results).To(HaveLen(1))
		Expect(results[0].Instructions).To(Equal(uint64(1024)))
		Expect(results[0].PrefetchEvictions).To(BeNumerically(">", 0))
	})

	It("should mark a benchmark with skipped bytes invalid", func() {
		harness.AddBenchmark(benchmarks.Benchmark{
			Name:                 "broken",
			Program:              []byte{0xF4, 0x00, 0x89, 0xD9},
			ExpectedInstructions: 2,
		})

		results := harness.RunAll()

		Expect(results[0].Valid).To(BeFalse())
		Expect(results[0].Failures).To(Equal(uint64(1)))
		Expect(results[0].Instructions).To(Equal(uint64(1)))
	})

	It("should print one CSV row per benchmark", func() {
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())

		harness.PrintCSV(harness.RunAll())

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		Expect(lines).To(HaveLen(4))
		Expect(lines[0]).To(HavePrefix("name,bytes,clocks"))
		Expect(lines[1]).To(HavePrefix("register_moves,14,"))
	})

	It("should print the human-readable report", func() {
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())

		harness.PrintResults(harness.RunAll())

		Expect(out.String()).To(ContainSubstring("Benchmark: memory_loads"))
		Expect(out.String()).To(ContainSubstring("--- Prefetch ---"))
	})

	It("should encode a JSON report with a summary", func() {
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
		results := harness.RunAll()

		Expect(harness.PrintJSON(results)).To(Succeed())

		var report benchmarks.BenchmarkReport
		Expect(json.Unmarshal(out.Bytes(), &report)).To(Succeed())
		Expect(report.Results).To(HaveLen(3))
		Expect(report.Summary.TotalBenchmarks).To(Equal(3))
		Expect(report.Summary.TotalInstructions).To(Equal(uint64(7 + 6 + 7)))
		Expect(report.Metadata.Config).NotTo(BeNil())
		Expect(report.Metadata.Config.MovRegRegLatency).To(Equal(uint64(2)))
	})
})

var _ = Describe("Summarize", func() {
	It("should average clocks over instructions", func() {
		s := benchmarks.Summarize([]benchmarks.BenchmarkResult{
			{EstimatedClocks: 10, Instructions: 4},
			{EstimatedClocks: 20, Instructions: 6},
		})

		Expect(s.TotalBenchmarks).To(Equal(2))
		Expect(s.AverageCPI).To(BeNumerically("~", 3.0))
	})

	It("should leave the average at zero without instructions", func() {
		Expect(benchmarks.Summarize(nil).AverageCPI).To(BeZero())
	})
})
