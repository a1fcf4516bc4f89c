// cmd/slalom/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/opd-ai/go-slalom/pkg/config"
	"github.com/opd-ai/go-slalom/pkg/logging"
)

func main() {
	configPath := flag.String("config", "config.json", "Path to configuration file")
	createDefault := flag.Bool("default", false, "Create default configuration file")
	headless := flag.Bool("headless", false, "Let the autopilot paddle and log the result")
	showFrame := flag.Bool("frame", false, "Print the final frame after a headless run")
	sound := flag.Bool("sound", true, "Play sound cues")
	flag.Parse()

	ctx := context.Background()
	boot := logging.NewLogger()

	if *createDefault {
		if err := config.Save(config.DefaultConfig(), *configPath); err != nil {
			boot.Error(ctx, "Failed to create default configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
		boot.Info(ctx, "Created default configuration file",
			"config_path", *configPath,
		)
		return
	}

	cfg, err := loadConfig(ctx, boot, *configPath)
	if err != nil {
		boot.Error(ctx, "Failed to load configuration", err,
			"config_path", *configPath,
		)
		os.Exit(1)
	}

	if *headless {
		logger, closeLog, err := openLogger(cfg, os.Stdout)
		if err != nil {
			boot.Error(ctx, "Failed to open log file", err, "log_file", cfg.Log.File)
			os.Exit(1)
		}
		defer closeLog()

		if err := runHeadless(ctx, cfg, logger, *showFrame, os.Stdout); err != nil {
			logger.Error(ctx, "Headless run failed", err)
			closeLog()
			os.Exit(1)
		}
		return
	}

	// The terminal belongs to the UI, so logs go to the configured file or
	// nowhere.
	logger, closeLog, err := openLogger(cfg, io.Discard)
	if err != nil {
		boot.Error(ctx, "Failed to open log file", err, "log_file", cfg.Log.File)
		os.Exit(1)
	}
	defer closeLog()

	summary, err := runUI(ctx, cfg, logger, *sound)
	if err != nil {
		closeLog()
		fmt.Fprintf(os.Stderr, "slalom: %v\n", err)
		os.Exit(1)
	}
	if summary != "" {
		fmt.Println(summary)
	}
}

// loadConfig reads path if it exists and falls back to the defaults
// otherwise. Environment overrides apply either way.
func loadConfig(ctx context.Context, logger *logging.Logger, path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Debug(ctx, "Configuration file not found, using default configuration",
			"config_path", path,
		)
		return config.Load("")
	}
	return config.Load(path)
}

// openLogger builds the run logger. Output goes to cfg.Log.File when set and
// to fallback otherwise.
func openLogger(cfg *config.Config, fallback io.Writer) (*logging.Logger, func(), error) {
	out := fallback
	closer := func() {}

	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		out = f
		closer = func() { _ = f.Close() }
	}

	if out == io.Discard {
		return logging.Discard(), closer, nil
	}
	return logging.New(logging.Options{Writer: out, Level: cfg.Log.Level}), closer, nil
}
