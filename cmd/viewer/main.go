// Package main is the entry point for the model viewer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/radiance-viewer/internal/app"
	"github.com/Faultbox/radiance-viewer/internal/config"
	"github.com/Faultbox/radiance-viewer/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	code := run(cfg)
	logger.Sync()
	os.Exit(code)
}

// run owns the viewer's lifetime so teardown completes before the
// logger is flushed.
func run(cfg *config.Config) int {
	logger.Info("=== Radiance Viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	v, err := app.New(cfg)
	if err != nil {
		logger.Error("failed to start viewer", zap.Error(err))
		return 1
	}

	code := 0
	if err := v.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		code = 1
	}
	if err := v.Close(); err != nil {
		logger.Error("teardown error", zap.Error(err))
		code = 1
	}
	if code == 0 {
		logger.Info("viewer closed normally")
	}
	return code
}
