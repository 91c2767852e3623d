// Package main provides the entry point for oopipe.
// oopipe is a cycle-accurate out-of-order superscalar pipeline scheduler.
//
// For the full CLI, use: go run ./cmd/oopipe
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("oopipe - out-of-order superscalar pipeline scheduler")
	fmt.Println("")
	fmt.Println("Usage: oopipe [options] <input> <output>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config    Path to a run configuration JSON file")
	fmt.Println("  -v         Enable debug-level cycle tracing")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/oopipe' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/oopipe' instead.")
	}
}
