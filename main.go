// Package main provides the entry point for sim8086.
// sim8086 decodes and simulates a subset of the Intel 8086 instruction set,
// with an optional clock estimate built on Akita.
//
// For the full CLI, use: go run ./cmd/sim8086
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("sim8086 - Intel 8086 Decoder and Simulator")
	fmt.Println("Built on Akita simulation framework")
	fmt.Println("")
	fmt.Println("Usage: sim8086 [options] <program.bin>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -o         Write the listing to a file instead of stdout")
	fmt.Println("  -exec      Execute supported instructions and report registers")
	fmt.Println("  -timing    Enable clock estimation")
	fmt.Println("  -config    Path to timing configuration JSON file")
	fmt.Println("  -fallback  Bytes to skip past an undecodable opcode")
	fmt.Println("  -debug     Dump decoded payloads to stderr")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/sim8086' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/sim8086' instead.")
	}
}
