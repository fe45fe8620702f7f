package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"ForecastBench/internal/di"
	"ForecastBench/pkg/config"
	"ForecastBench/pkg/runner"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run parses args, wires the app and executes the selected mode. It returns
// the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	l := log.New(stderr, "", log.LstdFlags)

	// Parse flags
	fs := flag.NewFlagSet("app", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", config.DefaultPath, "config file path")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: app [-config path] [%s|%s]\n", runner.ModePlot, runner.ModeCompare)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	mode, err := runner.ParseMode(fs.Args())
	switch {
	case errors.Is(err, runner.ErrInvalidArgs):
		fmt.Fprintln(stdout, err)
		return 0
	case err != nil:
		fmt.Fprintf(stdout, "%v; run without arguments for the experiment, or use %q or %q\n", err, runner.ModePlot, runner.ModeCompare)
		return 0
	}

	// Load config
	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		l.Printf("config load failed: %v", err)
		return 1
	}

	// Wire DI: Initialize all dependencies
	app, err := di.InitializeApp(cfg)
	if err != nil {
		l.Printf("app initialization failed: %v", err)
		return 1
	}

	// The app logs its own failure with the run id.
	if err := app.Run(context.Background(), mode); err != nil {
		return 1
	}
	return 0
}
