// Validate decoder allocations - measures allocations per decode and per locate
package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/sarchlab/sim8086/insts"
)

func main() {
	decoder := insts.NewDecoder()

	mix := []insts.Window{
		window(0x89, 0xD9),                   // mov cx, bx
		window(0x8B, 0x56, 0x00),             // mov dx, [bp]
		window(0x03, 0x18),                   // add bx, [bx+si]
		window(0x83, 0x82, 0x04, 0x3D, 0x0C), // add word [bp+si+15620], 12
		window(0xBA, 0x6C, 0x0F),             // mov dx, 3948
		window(0xA1, 0xFB, 0x09),             // mov ax, [2555]
	}

	// Warm up
	for i := 0; i < 1000; i++ {
		decoder.Decode(mix[0])
	}

	runtime.GC()
	var m1, m2 runtime.MemStats
	runtime.ReadMemStats(&m1)

	start := time.Now()
	iterations := 100000

	for i := 0; i < iterations; i++ {
		for _, w := range mix {
			decoder.Decode(w)
		}
	}

	elapsed := time.Since(start)
	runtime.ReadMemStats(&m2)

	totalDecodes := iterations * len(mix)
	allocations := m2.Mallocs - m1.Mallocs
	allocatedBytes := m2.TotalAlloc - m1.TotalAlloc

	fmt.Printf("Decoder Allocation Results:\n")
	fmt.Printf("===========================\n")
	fmt.Printf("Total decode operations: %d\n", totalDecodes)
	fmt.Printf("Time elapsed: %v\n", elapsed)
	fmt.Printf("Decodes per second: %.0f\n", float64(totalDecodes)/elapsed.Seconds())
	fmt.Printf("Allocations: %d\n", allocations)
	fmt.Printf("Allocated bytes: %d\n", allocatedBytes)
	fmt.Printf("Allocations per decode: %.3f\n", float64(allocations)/float64(totalDecodes))
	fmt.Printf("Bytes per decode: %.1f\n", float64(allocatedBytes)/float64(totalDecodes))

	// Each payload is one heap value; locating adds the operand values.
	perDecode := float64(allocations) / float64(totalDecodes)
	switch {
	case perDecode <= 1.0:
		fmt.Printf("\nOK: one payload allocation per decode\n")
	default:
		fmt.Printf("\nWARNING: more than one allocation per decode\n")
	}

	locateAllocs := 0.0
	for _, w := range mix {
		p := decoder.Decode(w)
		locateAllocs += allocsPerRun(func() { _, _ = insts.Locate(p) })
	}
	fmt.Printf("Allocations per locate: %.2f\n", locateAllocs/float64(len(mix)))
}

func window(b ...byte) insts.Window {
	var w insts.Window
	copy(w[:], b)
	return w
}

// allocsPerRun reports the average allocations of fn over a fixed number of
// runs.
func allocsPerRun(fn func()) float64 {
	const runs = 1000
	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	for i := 0; i < runs; i++ {
		fn()
	}
	runtime.ReadMemStats(&after)
	return float64(after.Mallocs-before.Mallocs) / runs
}
