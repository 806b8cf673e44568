//go:build linux

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/psitop/psitop/pkg/app"
	"github.com/psitop/psitop/pkg/collector/pressure"
	"github.com/psitop/psitop/pkg/config"
	"github.com/psitop/psitop/pkg/logging"
	"github.com/psitop/psitop/pkg/ui"
)

const defaultConfigPath = "psitop.yaml"

func parseConfig() (config.Config, error) {
	configPath := flag.String("config", defaultConfigPath, "optional YAML config file")
	threshold := flag.Int("t", -1, "event threshold percent, snapped to a multiple of 5 in [5,95]")
	interval := flag.Int("i", 0, "event interval in seconds (1, 3, 10, 60, 300)")
	period := flag.Duration("period", 0, "sampling tick period (e.g. 1s)")
	debug := flag.Bool("D", false, "debug mode: plain text lines, no terminal takeover")
	logLevel := flag.String("log-level", "", "log level (debug, info, warn, error)")
	logFile := flag.String("log-file", "", "log destination file")
	flag.Parse()

	// A config file is only mandatory when the user pointed at one.
	required := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			required = true
		}
	})

	cfg, err := config.Load(*configPath, required)
	if err != nil {
		return cfg, err
	}
	if *threshold >= 0 {
		cfg.Threshold = *threshold
	}
	if *interval > 0 {
		cfg.Interval = *interval
	}
	if *period > 0 {
		cfg.Period = *period
	}
	if *debug {
		cfg.Debug = true
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}
	return cfg.Normalize(), nil
}

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := parseConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "psitop:", err)
		return 1
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFile, cfg.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "psitop:", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	src, err := pressure.NewSource(log)
	if err != nil {
		// Fatal startup error: reported once, no partial UI, non-zero exit.
		fmt.Fprintln(os.Stderr, "psitop:", err)
		return 1
	}
	defer src.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := app.Options{Threshold: cfg.Threshold, Interval: cfg.Interval, Period: cfg.Period}

	if cfg.Debug {
		log.Infow("starting in debug mode",
			"threshold", cfg.Threshold, "interval", cfg.Interval, "period", cfg.Period)
		if err := app.New(src, nil, log, opts).RunDebug(ctx); err != nil {
			log.Errorw("debug loop failed", "error", err)
			return 1
		}
		return 0
	}

	sf, err := ui.NewSurface()
	if err != nil {
		fmt.Fprintln(os.Stderr, "psitop:", err)
		return 1
	}
	// The terminal must be restored on every exit path, panics included,
	// before anything else is reported.
	defer sf.Release()

	a := app.New(src, sf, log, opts)
	runErr := a.Run(ctx)
	sf.Release()

	for _, line := range a.ExitReport() {
		fmt.Println(line)
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, "psitop:", runErr)
		return 1
	}
	return 0
}
