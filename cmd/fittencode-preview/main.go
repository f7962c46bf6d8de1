// Package main runs the terminal preview of the suggestion engine.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cxwx/fittencode.nvim/internal/app"
	"github.com/cxwx/fittencode.nvim/internal/config"
	"github.com/cxwx/fittencode.nvim/internal/preview"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if opts.debug {
		cfg.LogLevel = "debug"
	}
	if opts.logPath != "" {
		cfg.LogFile = opts.logPath
	}

	popts := preview.Options{Config: cfg}

	// The preview owns the terminal, so logging is file-only.
	if opts.logPath != "" {
		logger, logFile, err := app.NewLoggerFromConfig(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot open log file: %v\n", err)
			return 1
		}
		defer logFile.Close()
		popts.Logger = logger
	}

	ui, err := preview.New(popts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}

	if err := ui.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

type options struct {
	configPath string
	logPath    string
	debug      bool
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.logPath, "log-file", "", "Write engine logs to this file")
	flag.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&opts.debug, "d", false, "Enable debug logging (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "fittencode-preview - terminal harness for the suggestion engine\n\n")
		fmt.Fprintf(os.Stderr, "Usage: fittencode-preview [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  Tab    accept the whole suggestion (or insert a literal tab)\n")
		fmt.Fprintf(os.Stderr, "  w      accept the next word\n")
		fmt.Fprintf(os.Stderr, "  l      accept the next line\n")
		fmt.Fprintf(os.Stderr, "  c      clear the overlay\n")
		fmt.Fprintf(os.Stderr, "  r      render the next sample suggestion\n")
		fmt.Fprintf(os.Stderr, "  q      quit\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("fittencode-preview %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	return opts
}
