// Package main is the entry point for the linkedit text editor.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/linkedit/internal/app"
	"github.com/dshills/linkedit/internal/config"
	"golang.org/x/term"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	configPath string
	logLevel   string
	script     string
	file       string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	path := opts.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	overrides := map[string]any{}
	if opts.logLevel != "" {
		overrides["logging.level"] = opts.logLevel
	}
	load := func() (*config.Config, error) {
		return config.Load(path, config.WithOverrides(overrides))
	}

	cfg, err := load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
		return 1
	}

	logOut := io.Writer(os.Stderr)
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to open log file: %v\n", err)
			return 1
		}
		defer f.Close()
		logOut = f
	}
	logger := app.NewLogger(app.LoggerConfig{
		Level:  app.ParseLogLevel(cfg.Logging.Level),
		Output: logOut,
		Prefix: "linkedit",
	})

	in := io.Reader(os.Stdin)
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if opts.script != "" {
		f, err := os.Open(opts.script)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to open script: %v\n", err)
			return 1
		}
		defer f.Close()
		in = f
		interactive = false
	}

	session := app.NewSession(
		app.WithConfig(cfg),
		app.WithLogger(logger),
		app.WithInteractive(interactive),
	)
	defer session.Close()

	if cfg.Session.WatchConfig && cfg.Source != "" {
		if err := session.WatchConfig(cfg.Source, load); err != nil {
			logger.Warn("config watching disabled: %v", err)
		}
	}

	// Handle signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.file != "" {
		if err := session.Load(opts.file); err != nil {
			fmt.Println(app.Message(err))
		}
	}

	if err := session.Run(ctx, in); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file (.toml, .yaml)")
	flag.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.script, "e", "", "Run commands from a file instead of stdin")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "linkedit - linked list text editor\n\n")
		fmt.Fprintf(os.Stderr, "Usage: linkedit [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  linkedit                    Start with an empty document\n")
		fmt.Fprintf(os.Stderr, "  linkedit notes.txt          Load a file first\n")
		fmt.Fprintf(os.Stderr, "  linkedit -e edits.txt       Run commands from a file\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("linkedit %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch opts.logLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.logLevel)
		os.Exit(1)
	}

	if flag.NArg() > 0 {
		opts.file = flag.Arg(0)
	}

	return opts
}
