// Package main is the entry point for the interactive mesh viewer.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/meshcast/internal/config"
	"github.com/Faultbox/meshcast/internal/logger"
)

var flagServe = flag.Bool("serve", false, "Also stream frames over websocket on the configured address")

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(loggerOptions(cfg))
	defer logger.Sync()

	logger.Info("=== meshcast viewer ===")
	logger.Debug("config loaded", zap.Any("config", cfg))

	v, err := newViewer(cfg, *flagServe)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer v.Close()

	if err := v.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}

func loggerOptions(cfg *config.Config) logger.Options {
	opts := logger.Options{Level: cfg.Logging.Level, Console: true, JSON: cfg.Logging.JSON}
	if cfg.Logging.LogFile != "" {
		opts.File = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	return opts
}
