// Package main provides the entry point for oopipe, a cycle-accurate
// out-of-order superscalar pipeline scheduler.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/kestrel-sim/oopipe/loader"
	"github.com/kestrel-sim/oopipe/report"
	"github.com/kestrel-sim/oopipe/timing/config"
	"github.com/kestrel-sim/oopipe/timing/scheduler"
)

var (
	configPath = flag.String("config", "", "Path to a run configuration JSON file")
	verbose    = flag.Bool("v", false, "Enable debug-level cycle tracing")
)

func main() {
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "Usage: oopipe [options] <input> <output>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	inputPath := flag.Arg(0)
	outputPath := flag.Arg(1)

	cfg, err := loadRunConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading run config: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		cfg.Verbose = true
	}

	prog, err := loader.Load(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading input file: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Verbose)
	sched := scheduler.New(prog, cfg, scheduler.WithLogger(logger))
	stats := sched.Run()

	if err := report.Write(outputPath, sched.Instructions(), stats.Stuck); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Instructions: %d\n", stats.Instructions)
		fmt.Printf("Cycles: %d\n", stats.Cycles)
		fmt.Printf("Stuck: %t\n", stats.Stuck)
	}
}

func loadRunConfig(path string) (*config.RunConfig, error) {
	if path == "" {
		return config.DefaultRunConfig(), nil
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
